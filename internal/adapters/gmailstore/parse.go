package gmailstore

import (
	"github.com/mikey/gmail-triage/internal/core"
	gmail "google.golang.org/api/gmail/v1"
)

// parseMessage maps a Gmail metadata message onto the core model. Missing
// headers are replaced with the sentinel values so the classification text
// always has the same shape.
func parseMessage(msg *gmail.Message) *core.Message {
	out := &core.Message{
		ID:      msg.Id,
		Subject: core.NoSubject,
		Sender:  core.NoSender,
		Snippet: msg.Snippet,
	}
	if msg.Payload == nil {
		return out
	}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			if h.Value != "" {
				out.Subject = h.Value
			}
		case "From":
			if h.Value != "" {
				out.Sender = h.Value
			}
		}
	}
	return out
}
