// Package check classifies a single raw email from disk or stdin and prints
// the verdict. It lets an operator sanity-check classifier and threshold
// settings without touching the mailbox.
package check

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/gmail-triage/internal/core"
	"go.uber.org/zap"
)

// snippetLength approximates the preview size the mailbox provider serves,
// so local checks score the same text shape the daemon would.
const snippetLength = 200

// Checker runs the triage engine over one locally supplied email.
type Checker struct {
	engine  *core.TriageEngine
	logger  *zap.Logger
	verbose bool
}

// NewChecker creates a new checker
func NewChecker(engine *core.TriageEngine, logger *zap.Logger, verbose bool) *Checker {
	return &Checker{
		engine:  engine,
		logger:  logger,
		verbose: verbose,
	}
}

// CheckFile classifies the email at path, or stdin when path is empty, and
// prints a human-readable report.
func (c *Checker) CheckFile(ctx context.Context, path string) (core.Verdict, error) {
	var r io.Reader = os.Stdin
	id := "stdin"
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return core.Verdict{}, fmt.Errorf("failed to open email file: %w", err)
		}
		defer f.Close()
		r = f
		id = filepath.Base(path)
	}
	return c.check(ctx, id, r)
}

func (c *Checker) check(ctx context.Context, id string, r io.Reader) (core.Verdict, error) {
	msg, err := mail.ReadMessage(bufio.NewReader(r))
	if err != nil {
		return core.Verdict{}, fmt.Errorf("failed to parse email: %w", err)
	}

	subject := msg.Header.Get("Subject")
	if subject == "" {
		subject = core.NoSubject
	}
	sender := msg.Header.Get("From")
	if sender == "" {
		sender = core.NoSender
	}

	text, err := extractTextFromMessage(msg)
	if err != nil {
		return core.Verdict{}, fmt.Errorf("failed to extract text content: %w", err)
	}

	m := core.Message{
		ID:      id,
		Subject: subject,
		Sender:  sender,
		Snippet: snippetFrom(text, snippetLength),
	}

	c.logger.Debug("Checking email", zap.String("sender", m.Sender))

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", m.Sender)
	fmt.Printf("Subject: %s\n", m.Subject)
	fmt.Printf("Body length: %d bytes\n", len(text))

	if c.verbose {
		fmt.Printf("\nSnippet:\n%s\n", m.Snippet)
	}

	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Classifying email...\n")
	startTime := time.Now()
	verdict := c.engine.Decide(ctx, m)
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Decision: %s\n", verdict.Decision)
	if verdict.Decision != core.DecisionTrusted {
		fmt.Printf("Spam probability: %.4f\n", verdict.Probability)
	}
	fmt.Printf("Processing time: %v\n", duration)

	return verdict, nil
}
