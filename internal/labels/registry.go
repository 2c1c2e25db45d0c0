// Package labels resolves the processed-label marker against the provider.
package labels

import (
	"context"
	"fmt"

	"github.com/mikey/gmail-triage/internal/core"
	"go.uber.org/zap"
)

// Registry resolves human-readable label names to provider references. It is
// used once at startup to obtain the processed marker; the resolved ref is
// then passed explicitly to the poll loop for the life of the run.
type Registry struct {
	store  core.MailStore
	logger *zap.Logger
}

// NewRegistry creates a new label registry backed by the given store.
func NewRegistry(store core.MailStore, logger *zap.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger,
	}
}

// Ensure returns the reference for the named label, creating it if absent.
// It is idempotent: an existing label with an exact name match is always
// reused, never duplicated. Any provider failure wraps
// core.ErrLabelUnavailable, which callers treat as fatal; without the
// marker there is no safe way to keep messages from being re-evaluated.
func (r *Registry) Ensure(ctx context.Context, name string) (core.LabelRef, error) {
	existing, err := r.store.ListLabels(ctx)
	if err != nil {
		return core.LabelRef{}, fmt.Errorf("%w: listing labels: %w", core.ErrLabelUnavailable, err)
	}

	for _, label := range existing {
		if label.Name == name {
			r.logger.Info("Found existing label",
				zap.String("name", name),
				zap.String("id", label.ID))
			return label, nil
		}
	}

	r.logger.Info("Creating label", zap.String("name", name))
	created, err := r.store.CreateLabel(ctx, core.LabelSpec{Name: name, Hidden: true})
	if err != nil {
		return core.LabelRef{}, fmt.Errorf("%w: creating %q: %w", core.ErrLabelUnavailable, name, err)
	}

	return created, nil
}
