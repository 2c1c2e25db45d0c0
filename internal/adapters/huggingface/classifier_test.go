package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mikey/gmail-triage/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClassifier(serverURL, apiKey string) *Classifier {
	return NewClassifier(
		http.DefaultClient,
		serverURL,
		"test-model",
		apiKey,
		"LABEL_1",
		4096,
		zap.NewNop(),
		utils.NewTextProcessor(zap.NewNop()),
	)
}

func TestClassifyBatchScoresInOrder(t *testing.T) {
	var gotReq classifyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Write([]byte(`[
			[{"label":"LABEL_0","score":0.98},{"label":"LABEL_1","score":0.02}],
			[{"label":"LABEL_1","score":0.97},{"label":"LABEL_0","score":0.03}]
		]`))
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, "")
	scores, err := c.ClassifyBatch(context.Background(), []string{"first text", "second text"})

	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 0.02, scores[0])
	assert.Equal(t, 0.97, scores[1])

	assert.Equal(t, []string{"first text", "second text"}, gotReq.Inputs)
	assert.True(t, gotReq.Options.WaitForModel)
}

func TestClassifyBatchInvertsTopOneHam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[{"label":"LABEL_0","score":0.98}]]`))
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, "")
	scores, err := c.ClassifyBatch(context.Background(), []string{"text"})

	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.InDelta(t, 0.02, scores[0], 1e-9)
}

func TestClassifyBatchAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[[{"label":"LABEL_1","score":0.5}]]`))
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, "secret-token")
	_, err := c.ClassifyBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	c = newTestClassifier(srv.URL, "")
	_, err = c.ClassifyBatch(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no Authorization header without an API key")
}

func TestClassifyBatchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, "")
	_, err := c.ClassifyBatch(context.Background(), []string{"text"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestClassifyBatchCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[{"label":"LABEL_1","score":0.5}]]`))
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, "")
	_, err := c.ClassifyBatch(context.Background(), []string{"one", "two"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 results for 2 inputs")
}

func TestClassifyBatchMissingSpamLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[{"label":"POSITIVE","score":0.6},{"label":"NEGATIVE","score":0.4}]]`))
	}))
	defer srv.Close()

	c := newTestClassifier(srv.URL, "")
	_, err := c.ClassifyBatch(context.Background(), []string{"text"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"LABEL_1" not found`)
}
