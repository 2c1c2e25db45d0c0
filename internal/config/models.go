package config

import "time"

// ClassifierConfig represents the provider-independent classifier settings
type ClassifierConfig struct {
	Provider    string
	MaxTextSize int
}

// HuggingFaceConfig represents the configuration for the Hugging Face
// Inference API
type HuggingFaceConfig struct {
	BaseURL   string
	ModelName string
	APIKey    string
	SpamLabel string
	Timeout   time.Duration
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GmailConfig represents the Gmail account settings
type GmailConfig struct {
	CredentialsFile string
	TokenFile       string
	MaxResults      int64
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Provider:    c.GetString("classifier.provider"),
		MaxTextSize: c.GetInt("classifier.max_text_size"),
	}
}

// GetHuggingFace returns the Hugging Face configuration. An unparseable
// timeout falls back to 30 seconds rather than disabling the client timeout.
func (c *Config) GetHuggingFace() HuggingFaceConfig {
	timeout, err := c.GetDuration("huggingface.timeout")
	if err != nil {
		timeout = 30 * time.Second
	}
	return HuggingFaceConfig{
		BaseURL:   c.GetString("huggingface.base_url"),
		ModelName: c.GetString("huggingface.model_name"),
		APIKey:    c.GetString("huggingface.api_key"),
		SpamLabel: c.GetString("huggingface.spam_label"),
		Timeout:   timeout,
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetGmail returns the Gmail configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		CredentialsFile: c.GetString("gmail.credentials_file"),
		TokenFile:       c.GetString("gmail.token_file"),
		MaxResults:      c.GetInt64("gmail.max_results"),
	}
}
