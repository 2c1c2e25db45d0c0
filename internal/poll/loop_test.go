package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikey/gmail-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var processedRef = core.LabelRef{ID: "Label_7", Name: "ML_PROCESSED"}

type modification struct {
	id     string
	add    []core.LabelRef
	remove []core.LabelRef
}

// fakeStore scripts the mail store. Metadata defaults to sentinel-only
// messages so tests only spell out what they care about.
type fakeStore struct {
	mu            sync.Mutex
	ids           []string
	listErr       error
	failFirstList bool
	listCalls     int
	meta          map[string]*core.Message
	metaErr       map[string]error
	modifyErr     map[string]error
	modified      []modification
	listed        chan struct{}
}

func (s *fakeStore) ListCandidates(_ context.Context, query string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listed != nil {
		select {
		case s.listed <- struct{}{}:
		default:
		}
	}
	if s.failFirstList && s.listCalls == 1 {
		return nil, core.NewProviderError("messages.list", errors.New("timeout"))
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]string(nil), s.ids...), nil
}

func (s *fakeStore) GetMetadata(_ context.Context, id string) (*core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.metaErr[id]; err != nil {
		return nil, err
	}
	if m, ok := s.meta[id]; ok {
		return m, nil
	}
	return &core.Message{ID: id, Subject: core.NoSubject, Sender: core.NoSender}, nil
}

func (s *fakeStore) ModifyLabels(_ context.Context, id string, add, remove []core.LabelRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.modifyErr[id]; err != nil {
		return err
	}
	s.modified = append(s.modified, modification{id: id, add: add, remove: remove})
	return nil
}

func (s *fakeStore) ListLabels(context.Context) ([]core.LabelRef, error) {
	return []core.LabelRef{processedRef}, nil
}

func (s *fakeStore) CreateLabel(_ context.Context, spec core.LabelSpec) (core.LabelRef, error) {
	return core.LabelRef{ID: "Label_new", Name: spec.Name}, nil
}

func (s *fakeStore) modifications() []modification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]modification(nil), s.modified...)
}

type classifierFunc func(ctx context.Context, texts []string) ([]float64, error)

func (f classifierFunc) ClassifyBatch(ctx context.Context, texts []string) ([]float64, error) {
	return f(ctx, texts)
}

func hamClassifier() core.Classifier {
	return classifierFunc(func(_ context.Context, texts []string) ([]float64, error) {
		return make([]float64, len(texts)), nil
	})
}

func scoringClassifier(scores map[string]float64) core.Classifier {
	return classifierFunc(func(_ context.Context, texts []string) ([]float64, error) {
		out := make([]float64, len(texts))
		for i, text := range texts {
			out[i] = scores[text]
		}
		return out, nil
	})
}

type noTrust struct{}

func (noTrust) Match(string) bool { return false }

// stopAfterClock cancels the loop's context after a fixed number of sleeps,
// without any wall-clock waiting.
type stopAfterClock struct {
	sleeps int
	limit  int
	cancel context.CancelFunc
}

func (c *stopAfterClock) Sleep(ctx context.Context, d time.Duration) {
	c.sleeps++
	if c.sleeps >= c.limit {
		c.cancel()
	}
}

// blockingClock parks between cycles until the loop is stopped.
type blockingClock struct{}

func (blockingClock) Sleep(ctx context.Context, d time.Duration) {
	<-ctx.Done()
}

func newTestLoop(store core.MailStore, clf core.Classifier, clock Clock) *Loop {
	engine := core.NewTriageEngine(clf, noTrust{}, nil, zap.NewNop(), false, 0, 0.95)
	return NewLoop(store, engine, processedRef, zap.NewNop(), time.Millisecond, 0, clock)
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, "is:unread -label:ML_PROCESSED", SearchQuery("ML_PROCESSED"))
	assert.Equal(t, `is:unread -label:"My Label"`, SearchQuery("My Label"))
}

func TestRunCycleLabelsEachDecision(t *testing.T) {
	spam := &core.Message{ID: "m2", Subject: "WIN NOW", Sender: "x@bad.test", Snippet: "free money"}
	store := &fakeStore{
		ids:  []string{"m1", "m2"},
		meta: map[string]*core.Message{"m2": spam},
	}
	clf := scoringClassifier(map[string]float64{core.ClassificationText(*spam): 0.99})
	loop := newTestLoop(store, clf, blockingClock{})

	report := loop.runCycle(context.Background(), SearchQuery(processedRef.Name))

	assert.Equal(t, 2, report.Listed)
	assert.Equal(t, 1, report.Ham)
	assert.Equal(t, 1, report.Spam)
	assert.Zero(t, report.Failed())

	mods := store.modifications()
	require.Len(t, mods, 2)
	assert.Equal(t, modification{id: "m1", add: []core.LabelRef{processedRef}}, mods[0])
	assert.Equal(t, modification{
		id:     "m2",
		add:    []core.LabelRef{core.LabelSpam},
		remove: []core.LabelRef{core.LabelInbox},
	}, mods[1])
}

func TestRunCycleMetadataFailureIsolated(t *testing.T) {
	store := &fakeStore{
		ids:     []string{"m1", "m2", "m3"},
		metaErr: map[string]error{"m2": core.NewProviderError("messages.get", errors.New("500"))},
	}
	loop := newTestLoop(store, hamClassifier(), blockingClock{})

	report := loop.runCycle(context.Background(), SearchQuery(processedRef.Name))

	assert.Equal(t, 3, report.Listed)
	assert.Equal(t, 2, report.Ham)
	require.Equal(t, 1, report.Failed())
	assert.Equal(t, "m2", report.Failures[0].MessageID)

	mods := store.modifications()
	require.Len(t, mods, 2, "the failing message must not block its siblings")
	assert.Equal(t, "m1", mods[0].id)
	assert.Equal(t, "m3", mods[1].id)
}

func TestRunCycleModifyFailureIsolated(t *testing.T) {
	store := &fakeStore{
		ids:       []string{"m1", "m2", "m3"},
		modifyErr: map[string]error{"m2": core.NewProviderError("messages.modify", errors.New("429"))},
	}
	loop := newTestLoop(store, hamClassifier(), blockingClock{})

	report := loop.runCycle(context.Background(), SearchQuery(processedRef.Name))

	assert.Equal(t, 2, report.Ham)
	require.Equal(t, 1, report.Failed())
	assert.Equal(t, "m2", report.Failures[0].MessageID)

	mods := store.modifications()
	require.Len(t, mods, 2)
	assert.Equal(t, "m1", mods[0].id)
	assert.Equal(t, "m3", mods[1].id)
}

func TestRunCycleListFailure(t *testing.T) {
	store := &fakeStore{listErr: core.NewProviderError("messages.list", errors.New("503"))}
	loop := newTestLoop(store, hamClassifier(), blockingClock{})

	report := loop.runCycle(context.Background(), SearchQuery(processedRef.Name))

	assert.Zero(t, report.Listed)
	assert.Zero(t, report.Failed())
	assert.Empty(t, store.modifications())
}

func TestRunCycleEmptyMailbox(t *testing.T) {
	store := &fakeStore{}
	loop := newTestLoop(store, hamClassifier(), blockingClock{})

	report := loop.runCycle(context.Background(), SearchQuery(processedRef.Name))

	assert.Zero(t, report.Listed)
	assert.Empty(t, store.modifications())
}

func TestRunRecoversAfterListFailure(t *testing.T) {
	store := &fakeStore{ids: []string{"m1"}, failFirstList: true}
	ctx, cancel := context.WithCancel(context.Background())
	clock := &stopAfterClock{limit: 2, cancel: cancel}

	loop := newTestLoop(store, hamClassifier(), clock)
	loop.Run(ctx)

	assert.Equal(t, 2, store.listCalls, "the loop must keep polling after a failed list")
	mods := store.modifications()
	require.Len(t, mods, 1)
	assert.Equal(t, "m1", mods[0].id)
}

func TestRunStopsWhenContextCanceled(t *testing.T) {
	store := &fakeStore{}
	ctx, cancel := context.WithCancel(context.Background())
	clock := &stopAfterClock{limit: 1, cancel: cancel}

	loop := newTestLoop(store, hamClassifier(), clock)
	loop.Run(ctx)

	assert.Equal(t, 1, store.listCalls)
}

func TestStartStop(t *testing.T) {
	store := &fakeStore{listed: make(chan struct{}, 1)}
	loop := newTestLoop(store, hamClassifier(), blockingClock{})

	require.NoError(t, loop.Start())
	assert.Error(t, loop.Start(), "a second Start must be rejected")

	select {
	case <-store.listed:
	case <-time.After(time.Second):
		t.Fatal("poll loop never ran a cycle")
	}

	require.NoError(t, loop.Stop())

	// Stopping an already stopped loop is a no-op.
	require.NoError(t, loop.Stop())
}
