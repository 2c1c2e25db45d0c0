package huggingface

import (
	"net/http"

	"github.com/mikey/gmail-triage/internal/config"
	"github.com/mikey/gmail-triage/internal/core"
	"github.com/mikey/gmail-triage/internal/utils"
	"go.uber.org/zap"
)

// Factory creates new instances of the Hugging Face classifier
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for Hugging Face classifier instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a new Hugging Face classifier
func (f *Factory) CreateClassifier() (core.Classifier, error) {
	hfCfg := f.cfg.GetHuggingFace()

	httpClient := &http.Client{Timeout: hfCfg.Timeout}

	return NewClassifier(
		httpClient,
		hfCfg.BaseURL,
		hfCfg.ModelName,
		hfCfg.APIKey,
		hfCfg.SpamLabel,
		f.cfg.GetClassifier().MaxTextSize,
		f.logger,
		f.textProcessor,
	), nil
}
