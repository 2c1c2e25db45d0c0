package di

import (
	"flag"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/gmail-triage/internal/adapters/check"
	"github.com/mikey/gmail-triage/internal/config"
	"github.com/mikey/gmail-triage/internal/core"
	"github.com/mikey/gmail-triage/internal/factory"
	"github.com/mikey/gmail-triage/internal/logging"
	"github.com/mikey/gmail-triage/internal/trust"
	"github.com/mikey/gmail-triage/internal/utils"
)

// CLIFlags contains all command line flags for the check application
type CLIFlags struct {
	// Classifier provider flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxTextSize int

	// Hugging Face flags
	HFModelName string
	HFAPIKey    string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Triage flags
	SpamThreshold  float64
	TrustedDomains string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Classifier provider flags
	flag.StringVar(&flags.Provider, "provider", "huggingface", "Classifier provider (huggingface, bedrock, gemini, openai)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	flag.IntVar(&flags.MaxTextSize, "max-text-size", 4096, "Maximum text size to send to the classifier")

	// Hugging Face flags
	flag.StringVar(&flags.HFModelName, "hf-model", "mariagrandury/roberta-base-finetuned-sms-spam-detection", "Hugging Face model name")
	flag.StringVar(&flags.HFAPIKey, "hf-api-key", "", "API key for the Hugging Face Inference API")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	// Triage flags
	flag.Float64Var(&flags.SpamThreshold, "threshold", 0.95, "Spam probability threshold")
	flag.StringVar(&flags.TrustedDomains, "trusted-domains", "", "Comma-separated trusted domains that bypass classification")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container
// for the check application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
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

	// Register spam threshold
	if err := container.Provide(func(cfg *config.Config) float64 {
		return cfg.GetFloat64("spam.threshold")
	}); err != nil {
		return nil, err
	}

	// Register trusted domain matcher
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.TrustChecker {
		return trust.NewMatcher(cfg.GetStringSlice("spam.trusted_domains"), logger)
	}); err != nil {
		return nil, err
	}

	// Register triage engine with no reputation cache
	if err := container.Provide(func(
		classifier core.Classifier,
		trusted core.TrustChecker,
		logger *zap.Logger,
		spamThreshold float64,
	) *core.TriageEngine {
		return core.NewTriageEngine(
			classifier,
			trusted,
			nil, // No cache for the check command
			logger,
			false, // Cache disabled
			0,     // No TTL
			spamThreshold,
		)
	}); err != nil {
		return nil, err
	}

	// Register checker
	if err := container.Provide(func(engine *core.TriageEngine, logger *zap.Logger, flags *CLIFlags) *check.Checker {
		return check.NewChecker(engine, logger, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set classifier provider
	v.Set("classifier.provider", flags.Provider)
	v.Set("classifier.max_text_size", flags.MaxTextSize)

	// Set provider-specific configuration
	switch flags.Provider {
	case "huggingface":
		v.Set("huggingface.model_name", flags.HFModelName)
		v.Set("huggingface.api_key", flags.HFAPIKey)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
	}

	// Set triage settings
	v.Set("spam.threshold", flags.SpamThreshold)
	v.Set("spam.trusted_domains", splitDomains(flags.TrustedDomains))

	return config.NewFromViper(v)
}

// splitDomains splits a comma-separated domain list into a slice. An empty
// flag value means no trust bypass at all, not the daemon's defaults.
func splitDomains(domains string) []string {
	if domains == "" {
		return []string{}
	}
	return strings.Split(domains, ",")
}
