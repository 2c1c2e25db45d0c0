package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TrustChecker reports whether a sender belongs to a trusted domain.
type TrustChecker interface {
	Match(sender string) bool
}

// TriageEngine is the core decision pipeline. For each message it evaluates,
// in strict order: the trust bypass, then classification, then the threshold
// policy. The engine computes verdicts and outcomes only; label mutations are
// performed by the MailStore under the poll loop's direction.
type TriageEngine struct {
	classifier   Classifier
	trusted      TrustChecker
	cache        ReputationCache
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	threshold    float64
}

// NewTriageEngine creates a new triage engine.
func NewTriageEngine(
	classifier Classifier,
	trusted TrustChecker,
	cache ReputationCache,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	threshold float64,
) *TriageEngine {
	return &TriageEngine{
		classifier:   classifier,
		trusted:      trusted,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
		threshold:    threshold,
	}
}

// ClassificationText builds the single text representation submitted to the
// classifier. The field order and separators are fixed; changing them would
// shift model scores.
func ClassificationText(m Message) string {
	return fmt.Sprintf("Subject: %s From: %s Body: %s", m.Subject, m.Sender, m.Snippet)
}

// Decide triages a single message. It is TriageBatch over a batch of one.
func (e *TriageEngine) Decide(ctx context.Context, msg Message) Verdict {
	return e.TriageBatch(ctx, []Message{msg})[0]
}

// TriageBatch triages a batch of messages with at most one classifier call.
// Trusted messages never reach the classifier; the remaining texts are
// submitted together, order preserved. Batching is an optimization only and
// produces the same verdicts as deciding one message at a time.
func (e *TriageEngine) TriageBatch(ctx context.Context, msgs []Message) []Verdict {
	now := time.Now()
	verdicts := make([]Verdict, len(msgs))

	var pending []int
	var texts []string

	for i, msg := range msgs {
		if e.trusted.Match(msg.Sender) {
			e.logger.Info("Trusted sender, bypassing classifier",
				zap.String("id", msg.ID),
				zap.String("sender", msg.Sender),
				zap.String("subject", msg.Subject))
			verdicts[i] = Verdict{Message: msg, Decision: DecisionTrusted, DecidedAt: now}
			continue
		}

		if e.cacheEnabled {
			if entry, err := e.cache.Get(ctx, msg.Sender); err == nil {
				e.logger.Debug("Reputation cache hit",
					zap.String("sender", msg.Sender),
					zap.Float64("probability", entry.Probability))
				verdicts[i] = e.verdictFor(msg, entry.Probability, now)
				continue
			}
		}

		pending = append(pending, i)
		texts = append(texts, ClassificationText(msg))
	}

	if len(pending) == 0 {
		return verdicts
	}

	probs, degraded := e.classify(ctx, texts)
	for n, i := range pending {
		msg := msgs[i]
		verdicts[i] = e.verdictFor(msg, probs[n], now)

		// Degraded scores are placeholders, not reputations.
		if e.cacheEnabled && !degraded {
			entry := &ReputationEntry{
				Sender:      msg.Sender,
				Probability: probs[n],
				LastSeen:    now,
				ExpiresAt:   now.Add(e.cacheTTL),
			}
			if err := e.cache.Set(ctx, entry); err != nil {
				e.logger.Error("Failed to update reputation cache", zap.Error(err))
			}
		}
	}

	return verdicts
}

// classify submits texts to the classifier and degrades any failure to
// all-zero probabilities, so a model outage routes messages to ham instead
// of crashing the loop or marking anything spam.
func (e *TriageEngine) classify(ctx context.Context, texts []string) ([]float64, bool) {
	probs, err := e.classifier.ClassifyBatch(ctx, texts)
	if err != nil {
		e.logger.Warn("Classifier degraded, treating batch as non-spam",
			zap.Int("batch_size", len(texts)),
			zap.Error(err))
		return make([]float64, len(texts)), true
	}
	if len(probs) != len(texts) {
		e.logger.Warn("Classifier returned short batch, treating as non-spam",
			zap.Int("want", len(texts)),
			zap.Int("got", len(probs)))
		return make([]float64, len(texts)), true
	}
	return probs, false
}

// verdictFor applies the threshold policy. The inequality is strict: a
// probability equal to the threshold stays ham. The threshold is set high
// because losing a legitimate mail to spam costs more than leaving one more
// spam unread.
func (e *TriageEngine) verdictFor(msg Message, probability float64, now time.Time) Verdict {
	if probability > e.threshold {
		e.logger.Warn("Spam detected",
			zap.String("id", msg.ID),
			zap.String("subject", msg.Subject),
			zap.String("probability", fmt.Sprintf("%.2f%%", probability*100)))
		return Verdict{Message: msg, Decision: DecisionSpam, Probability: probability, DecidedAt: now}
	}
	e.logger.Info("Not spam",
		zap.String("id", msg.ID),
		zap.String("subject", msg.Subject),
		zap.String("probability", fmt.Sprintf("%.2f%%", probability*100)))
	return Verdict{Message: msg, Decision: DecisionHam, Probability: probability, DecidedAt: now}
}

// Apply maps a verdict to the label mutation it requires. Trusted and ham
// messages get the processed marker so the next poll excludes them. Spam
// relies on the provider's own SPAM label for exclusion; the processed marker
// is reserved for messages the classifier reviewed and passed.
func Apply(v Verdict, processed LabelRef) TriageOutcome {
	switch v.Decision {
	case DecisionSpam:
		return TriageOutcome{
			MessageID: v.Message.ID,
			Add:       []LabelRef{LabelSpam},
			Remove:    []LabelRef{LabelInbox},
		}
	default:
		return TriageOutcome{
			MessageID: v.Message.ID,
			Add:       []LabelRef{processed},
		}
	}
}
