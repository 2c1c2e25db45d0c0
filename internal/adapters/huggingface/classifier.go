// Package huggingface scores message texts with a text-classification model
// served by the Hugging Face Inference API. It is the default classifier
// backend and the only one that scores a whole batch in a single request.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mikey/gmail-triage/internal/utils"
	"go.uber.org/zap"
)

// Classifier implements core.Classifier against the Hugging Face Inference
// API.
type Classifier struct {
	httpClient    *http.Client
	endpoint      string
	apiKey        string
	spamLabel     string
	maxTextSize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// classifyRequest is the Inference API request body. wait_for_model keeps
// the first request of the day from failing while the model container cold
// starts.
type classifyRequest struct {
	Inputs  []string        `json:"inputs"`
	Options classifyOptions `json:"options"`
}

type classifyOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// labelScore is one label/score pair from a text-classification response.
type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewClassifier creates a new Hugging Face classifier for the given model.
// The apiKey may be empty for public models, subject to anonymous rate
// limits.
func NewClassifier(
	httpClient *http.Client,
	baseURL string,
	model string,
	apiKey string,
	spamLabel string,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Classifier {
	return &Classifier{
		httpClient:    httpClient,
		endpoint:      strings.TrimSuffix(baseURL, "/") + "/models/" + model,
		apiKey:        apiKey,
		spamLabel:     spamLabel,
		maxTextSize:   maxTextSize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// ClassifyBatch returns one spam probability per input text, in input order.
// All texts are submitted in a single request; the Inference API preserves
// input order in its response.
func (c *Classifier) ClassifyBatch(ctx context.Context, texts []string) ([]float64, error) {
	inputs := make([]string, 0, len(texts))
	for _, text := range texts {
		inputs = append(inputs, c.textProcessor.ProcessText(text, c.maxTextSize))
	}

	body, err := json.Marshal(classifyRequest{
		Inputs:  inputs,
		Options: classifyOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call inference API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var results [][]labelScore
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	if len(results) != len(texts) {
		return nil, fmt.Errorf("inference API returned %d results for %d inputs", len(results), len(texts))
	}

	scores := make([]float64, 0, len(results))
	for _, entries := range results {
		score, err := c.spamScore(entries)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// spamScore extracts the spam probability from one message's label scores.
// The API returns every label for the model; a top-1 response carrying only
// the ham label is inverted instead.
func (c *Classifier) spamScore(entries []labelScore) (float64, error) {
	for _, e := range entries {
		if e.Label == c.spamLabel {
			return e.Score, nil
		}
	}
	if len(entries) == 1 {
		return 1 - entries[0].Score, nil
	}
	return 0, fmt.Errorf("label %q not found in inference response", c.spamLabel)
}
