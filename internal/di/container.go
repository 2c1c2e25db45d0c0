package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/gmail-triage/internal/config"
	"github.com/mikey/gmail-triage/internal/core"
	"github.com/mikey/gmail-triage/internal/factory"
	"github.com/mikey/gmail-triage/internal/labels"
	"github.com/mikey/gmail-triage/internal/logging"
	"github.com/mikey/gmail-triage/internal/poll"
	"github.com/mikey/gmail-triage/internal/ports"
	"github.com/mikey/gmail-triage/internal/trust"
	"github.com/mikey/gmail-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.Classifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register reputation cache, TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (core.ReputationCache, error) {
		return f.CreateReputationCache()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register trusted domain matcher
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.TrustChecker {
		return trust.NewMatcher(cfg.GetStringSlice("spam.trusted_domains"), logger)
	}); err != nil {
		return nil, err
	}

	// Register spam threshold
	if err := container.Provide(func(cfg *config.Config) float64 {
		return cfg.GetFloat64("spam.threshold")
	}); err != nil {
		return nil, err
	}

	// Register mail store
	if err := container.Provide(func(f *factory.MailStoreFactory) (core.MailStore, error) {
		return f.CreateMailStore(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register the label registry and the resolved processed label
	if err := container.Provide(labels.NewRegistry); err != nil {
		return nil, err
	}
	if err := container.Provide(func(reg *labels.Registry, cfg *config.Config) (core.LabelRef, error) {
		return reg.Ensure(context.Background(), cfg.GetString("labels.processed_name"))
	}); err != nil {
		return nil, err
	}

	// Register triage engine
	if err := container.Provide(core.NewTriageEngine); err != nil {
		return nil, err
	}

	// Register the poll loop as the triage runner
	if err := container.Provide(func(
		store core.MailStore,
		engine *core.TriageEngine,
		processed core.LabelRef,
		cfg *config.Config,
		logger *zap.Logger,
	) (ports.TriageRunner, error) {
		interval, err := cfg.GetDuration("poll.interval")
		if err != nil {
			return nil, fmt.Errorf("invalid poll interval: %w", err)
		}
		jitter, err := cfg.GetDuration("poll.jitter")
		if err != nil {
			return nil, fmt.Errorf("invalid poll jitter: %w", err)
		}
		return poll.NewLoop(store, engine, processed, logger, interval, jitter, nil), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
