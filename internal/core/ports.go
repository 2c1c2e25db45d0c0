package core

import (
	"context"
)

// Classifier maps texts to spam probabilities in [0,1]. Results are
// order-preserving and the slice is the same length as the input. A non-nil
// error means the model is unavailable; callers degrade to all-zero
// probabilities rather than aborting (see TriageEngine).
type Classifier interface {
	ClassifyBatch(ctx context.Context, texts []string) ([]float64, error)
}

// MailStore is the provider capability triage depends on. Implementations
// wrap every provider failure as *ProviderError; the core never distinguishes
// transport, auth, or quota errors.
type MailStore interface {
	// ListCandidates returns the IDs of messages matching the query.
	ListCandidates(ctx context.Context, query string) ([]string, error)

	// GetMetadata fetches subject, sender, and snippet for one message.
	// Missing headers map to the NoSubject / NoSender sentinels.
	GetMetadata(ctx context.Context, id string) (*Message, error)

	// ModifyLabels applies a label mutation to one message. Label
	// operations are idempotent on the provider side, so re-running a
	// mutation after a crash is always safe.
	ModifyLabels(ctx context.Context, id string, add, remove []LabelRef) error

	// ListLabels returns all labels defined on the account.
	ListLabels(ctx context.Context) ([]LabelRef, error)

	// CreateLabel creates a label and returns its reference.
	CreateLabel(ctx context.Context, spec LabelSpec) (LabelRef, error)
}

// ReputationCache stores per-sender classification results. It is consulted
// only when the operator enables the optional reputation cache; the default
// deployment keeps no local state.
type ReputationCache interface {
	// Get retrieves the cached entry for a sender.
	Get(ctx context.Context, sender string) (*ReputationEntry, error)

	// Set stores an entry.
	Set(ctx context.Context, entry *ReputationEntry) error

	// Delete removes the entry for a sender.
	Delete(ctx context.Context, sender string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}
