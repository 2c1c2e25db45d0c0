package factory

import (
	"context"

	"github.com/mikey/gmail-triage/internal/adapters/gmailstore"
	"github.com/mikey/gmail-triage/internal/config"
	"github.com/mikey/gmail-triage/internal/core"
	"go.uber.org/zap"
)

// MailStoreFactory creates mail stores
type MailStoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailStoreFactory creates a new mail store factory
func NewMailStoreFactory(cfg *config.Config, logger *zap.Logger) *MailStoreFactory {
	return &MailStoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailStore creates a Gmail-backed mail store. The context governs the
// OAuth exchange during startup, not the store's lifetime.
func (f *MailStoreFactory) CreateMailStore(ctx context.Context) (core.MailStore, error) {
	gmailCfg := f.cfg.GetGmail()

	return gmailstore.NewStore(
		ctx,
		f.logger,
		gmailCfg.CredentialsFile,
		gmailCfg.TokenFile,
		gmailCfg.MaxResults,
	)
}
