// Package poll drives the triage engine over successive mailbox batches.
package poll

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mikey/gmail-triage/internal/core"
	"go.uber.org/zap"
)

// Loop polls the mail store on a fixed interval and feeds each batch through
// the triage engine. One cycle fully completes before the next begins; the
// interval sleep is the sole backpressure against the provider's API quota.
//
// Failure containment is scoped per the smallest unit possible: one
// message's failure never stops its siblings, and a failed list call is
// treated like an empty batch. The only retry policy is re-listing on the
// next interval: anything already labeled processed or spam drops out of
// the query, so re-attempting a transient failure is always safe.
type Loop struct {
	store     core.MailStore
	engine    *core.TriageEngine
	processed core.LabelRef
	logger    *zap.Logger
	interval  time.Duration
	jitter    time.Duration
	clock     Clock

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop creates a poll loop. The processed ref must already be resolved by
// the label registry; it is held read-only for the life of the loop. A nil
// clock selects the system clock.
func NewLoop(
	store core.MailStore,
	engine *core.TriageEngine,
	processed core.LabelRef,
	logger *zap.Logger,
	interval time.Duration,
	jitter time.Duration,
	clock Clock,
) *Loop {
	if clock == nil {
		clock = SystemClock()
	}
	return &Loop{
		store:     store,
		engine:    engine,
		processed: processed,
		logger:    logger,
		interval:  interval,
		jitter:    jitter,
		clock:     clock,
	}
}

// SearchQuery builds the candidate query for a processed-label name:
// unread messages that do not yet carry the marker. Names containing
// whitespace are quoted for the provider's query syntax.
func SearchQuery(processedName string) string {
	name := processedName
	if strings.ContainsAny(name, " \t") {
		name = `"` + name + `"`
	}
	return fmt.Sprintf("is:unread -label:%s", name)
}

// Run executes poll cycles until ctx is canceled. A cycle runs immediately;
// every subsequent cycle waits one interval (plus jitter, when configured).
func (l *Loop) Run(ctx context.Context) {
	query := SearchQuery(l.processed.Name)
	l.logger.Info("Poll loop started",
		zap.String("query", query),
		zap.Duration("interval", l.interval),
		zap.String("processed_label", l.processed.Name))

	for {
		l.runCycle(ctx, query)

		l.clock.Sleep(ctx, l.waitFor())
		if ctx.Err() != nil {
			l.logger.Info("Poll loop stopped")
			return
		}
	}
}

// runCycle performs one list → fetch → triage → label pass.
func (l *Loop) runCycle(ctx context.Context, query string) core.CycleReport {
	var report core.CycleReport

	ids, err := l.store.ListCandidates(ctx, query)
	if err != nil {
		// Treated identically to an empty batch; the next interval retries.
		l.logger.Error("Failed to list candidate messages", zap.Error(err))
		return report
	}
	if len(ids) == 0 {
		l.logger.Info("No new unread messages")
		return report
	}

	l.logger.Info("Found new messages to process", zap.Int("count", len(ids)))
	report.Listed = len(ids)

	msgs := make([]core.Message, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return report
		}
		msg, err := l.store.GetMetadata(ctx, id)
		if err != nil {
			l.logger.Error("Failed to fetch message metadata",
				zap.String("id", id),
				zap.Error(err))
			report.Failures = append(report.Failures, core.MessageFailure{MessageID: id, Err: err})
			continue
		}
		msgs = append(msgs, *msg)
	}

	for _, verdict := range l.engine.TriageBatch(ctx, msgs) {
		outcome := core.Apply(verdict, l.processed)
		if err := l.store.ModifyLabels(ctx, outcome.MessageID, outcome.Add, outcome.Remove); err != nil {
			l.logger.Error("Failed to modify labels",
				zap.String("id", outcome.MessageID),
				zap.String("decision", verdict.Decision.String()),
				zap.Error(err))
			report.Failures = append(report.Failures, core.MessageFailure{MessageID: outcome.MessageID, Err: err})
			continue
		}

		switch verdict.Decision {
		case core.DecisionTrusted:
			report.Trusted++
		case core.DecisionSpam:
			report.Spam++
		case core.DecisionHam:
			report.Ham++
		}
	}

	l.logger.Info("Cycle complete",
		zap.Int("listed", report.Listed),
		zap.Int("trusted", report.Trusted),
		zap.Int("spam", report.Spam),
		zap.Int("ham", report.Ham),
		zap.Int("failed", report.Failed()))
	return report
}

// waitFor returns the next inter-cycle wait: the fixed interval plus a
// uniform random slice of the configured jitter.
func (l *Loop) waitFor() time.Duration {
	if l.jitter <= 0 {
		return l.interval
	}
	return l.interval + time.Duration(rand.Int63n(int64(l.jitter)))
}

// Start begins polling in the background. It implements ports.TriageRunner
// for the daemon's lifecycle wiring.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return errors.New("poll loop already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)
		l.Run(ctx)
	}()

	return nil
}

// Stop cancels polling and waits for the in-flight cycle to wind down.
func (l *Loop) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel == nil {
		return nil
	}

	l.cancel()
	<-l.done
	l.cancel = nil
	l.done = nil
	return nil
}
