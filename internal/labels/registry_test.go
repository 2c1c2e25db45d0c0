package labels

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/gmail-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore implements core.MailStore with scripted label behavior. The
// message operations are never reached by the registry.
type fakeStore struct {
	labels    []core.LabelRef
	listErr   error
	createErr error
	created   []core.LabelSpec
}

func (s *fakeStore) ListCandidates(context.Context, string) ([]string, error) {
	return nil, nil
}

func (s *fakeStore) GetMetadata(context.Context, string) (*core.Message, error) {
	return nil, nil
}

func (s *fakeStore) ModifyLabels(context.Context, string, []core.LabelRef, []core.LabelRef) error {
	return nil
}

func (s *fakeStore) ListLabels(context.Context) ([]core.LabelRef, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.labels, nil
}

func (s *fakeStore) CreateLabel(_ context.Context, spec core.LabelSpec) (core.LabelRef, error) {
	if s.createErr != nil {
		return core.LabelRef{}, s.createErr
	}
	s.created = append(s.created, spec)
	ref := core.LabelRef{ID: "Label_new", Name: spec.Name}
	s.labels = append(s.labels, ref)
	return ref, nil
}

func TestEnsureReusesExistingLabel(t *testing.T) {
	store := &fakeStore{labels: []core.LabelRef{
		{ID: "INBOX", Name: "INBOX"},
		{ID: "Label_3", Name: "ML_PROCESSED"},
	}}
	reg := NewRegistry(store, zap.NewNop())

	ref, err := reg.Ensure(context.Background(), "ML_PROCESSED")

	require.NoError(t, err)
	assert.Equal(t, core.LabelRef{ID: "Label_3", Name: "ML_PROCESSED"}, ref)
	assert.Empty(t, store.created, "an existing label must never be duplicated")
}

func TestEnsureCreatesMissingLabelHidden(t *testing.T) {
	store := &fakeStore{labels: []core.LabelRef{{ID: "INBOX", Name: "INBOX"}}}
	reg := NewRegistry(store, zap.NewNop())

	ref, err := reg.Ensure(context.Background(), "ML_PROCESSED")

	require.NoError(t, err)
	assert.Equal(t, "Label_new", ref.ID)
	assert.Equal(t, "ML_PROCESSED", ref.Name)
	require.Len(t, store.created, 1)
	assert.Equal(t, core.LabelSpec{Name: "ML_PROCESSED", Hidden: true}, store.created[0])
}

func TestEnsureIsIdempotent(t *testing.T) {
	store := &fakeStore{}
	reg := NewRegistry(store, zap.NewNop())

	first, err := reg.Ensure(context.Background(), "ML_PROCESSED")
	require.NoError(t, err)
	second, err := reg.Ensure(context.Background(), "ML_PROCESSED")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, store.created, 1, "the second Ensure must reuse, not recreate")
}

func TestEnsureListFailureIsFatal(t *testing.T) {
	store := &fakeStore{listErr: errors.New("boom")}
	reg := NewRegistry(store, zap.NewNop())

	_, err := reg.Ensure(context.Background(), "ML_PROCESSED")

	assert.ErrorIs(t, err, core.ErrLabelUnavailable)
}

func TestEnsureCreateFailureIsFatal(t *testing.T) {
	store := &fakeStore{createErr: errors.New("quota exceeded")}
	reg := NewRegistry(store, zap.NewNop())

	_, err := reg.Ensure(context.Background(), "ML_PROCESSED")

	assert.ErrorIs(t, err, core.ErrLabelUnavailable)
}
