package gmailstore

import (
	"testing"

	"github.com/mikey/gmail-triage/internal/core"
	"github.com/stretchr/testify/assert"
	gmail "google.golang.org/api/gmail/v1"
)

func TestParseMessage(t *testing.T) {
	msg := &gmail.Message{
		Id:      "msg-1",
		Snippet: "Hello from the team",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Weekly update"},
				{Name: "From", Value: "Alice <alice@example.com>"},
				{Name: "Date", Value: "Mon, 24 Aug 2026 10:00:00 +0000"},
			},
		},
	}

	got := parseMessage(msg)

	assert.Equal(t, "msg-1", got.ID)
	assert.Equal(t, "Weekly update", got.Subject)
	assert.Equal(t, "Alice <alice@example.com>", got.Sender)
	assert.Equal(t, "Hello from the team", got.Snippet)
}

func TestParseMessageMissingHeaders(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-2",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Date", Value: "Mon, 24 Aug 2026 10:00:00 +0000"},
			},
		},
	}

	got := parseMessage(msg)

	assert.Equal(t, core.NoSubject, got.Subject)
	assert.Equal(t, core.NoSender, got.Sender)
}

func TestParseMessageEmptyHeaderValues(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-3",
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: ""},
				{Name: "From", Value: ""},
			},
		},
	}

	got := parseMessage(msg)

	assert.Equal(t, core.NoSubject, got.Subject)
	assert.Equal(t, core.NoSender, got.Sender)
}

func TestParseMessageNilPayload(t *testing.T) {
	got := parseMessage(&gmail.Message{Id: "msg-4", Snippet: "snippet"})

	assert.Equal(t, "msg-4", got.ID)
	assert.Equal(t, core.NoSubject, got.Subject)
	assert.Equal(t, core.NoSender, got.Sender)
	assert.Equal(t, "snippet", got.Snippet)
}

func TestLabelIDs(t *testing.T) {
	assert.Nil(t, labelIDs(nil))
	assert.Nil(t, labelIDs([]core.LabelRef{}))
	assert.Equal(t,
		[]string{"SPAM", "Label_7"},
		labelIDs([]core.LabelRef{{ID: "SPAM", Name: "SPAM"}, {ID: "Label_7", Name: "ML_PROCESSED"}}),
	)
}
