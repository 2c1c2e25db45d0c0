package core

import (
	"time"
)

// Message is the metadata slice of a mailbox message that triage operates on.
// The provider is the source of truth; a Message is never persisted locally
// and is identified solely by its provider ID.
type Message struct {
	ID      string
	Subject string
	Sender  string
	Snippet string
}

// Header sentinels used when the provider returns a message without the
// corresponding header. They are explicit values, not zero strings, so that
// classification input and logs stay unambiguous.
const (
	NoSubject = "[No Subject]"
	NoSender  = "[No Sender]"
)

// LabelRef is an opaque reference to a provider-side label.
type LabelRef struct {
	ID   string
	Name string
}

// Gmail system labels have fixed IDs equal to their names.
var (
	LabelSpam  = LabelRef{ID: "SPAM", Name: "SPAM"}
	LabelInbox = LabelRef{ID: "INBOX", Name: "INBOX"}
)

// LabelSpec describes a label to be created. Hidden labels stay out of both
// the label list and the message list UI; the processed marker is bookkeeping
// only, never a mailbox folder.
type LabelSpec struct {
	Name   string
	Hidden bool
}

// Decision is the outcome of the triage pipeline for one message.
type Decision int

const (
	// DecisionTrusted means the sender matched a trusted domain and the
	// classifier was bypassed entirely.
	DecisionTrusted Decision = iota
	// DecisionSpam means the spam probability exceeded the threshold.
	DecisionSpam
	// DecisionHam means the message was classified and passed review.
	DecisionHam
)

// String returns the log-friendly name of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionTrusted:
		return "trusted"
	case DecisionSpam:
		return "spam"
	case DecisionHam:
		return "ham"
	default:
		return "unknown"
	}
}

// Verdict pairs a message with its decision and, for classified messages,
// the spam probability that produced it. Probability is 0 for trusted
// messages since the classifier never ran.
type Verdict struct {
	Message     Message
	Decision    Decision
	Probability float64
	DecidedAt   time.Time
}

// TriageOutcome is the label mutation a verdict requires. It is a pure value;
// the MailStore performs the actual modification.
type TriageOutcome struct {
	MessageID string
	Add       []LabelRef
	Remove    []LabelRef
}

// MessageFailure records one message that could not be triaged this cycle.
// Failures are values collected into the CycleReport so the loop's
// continue-on-failure behavior is an explicit branch.
type MessageFailure struct {
	MessageID string
	Err       error
}

// CycleReport tallies one complete poll cycle.
type CycleReport struct {
	Listed   int
	Trusted  int
	Spam     int
	Ham      int
	Failures []MessageFailure
}

// Failed returns the number of messages that errored this cycle.
func (r *CycleReport) Failed() int {
	return len(r.Failures)
}

// ReputationEntry is a cached per-sender classification result, used only
// when the optional reputation cache is enabled.
type ReputationEntry struct {
	Sender      string
	Probability float64
	LastSeen    time.Time
	ExpiresAt   time.Time
}
