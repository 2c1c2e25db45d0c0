package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const truncationMarker = "\n[... Content truncated due to size limits ...]"

func newTestProcessor() *TextProcessor {
	return NewTextProcessor(zap.NewNop())
}

func TestTruncateText(t *testing.T) {
	tp := newTestProcessor()

	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", tp.TruncateText("hello", 100))
	})

	t.Run("no limit", func(t *testing.T) {
		long := strings.Repeat("a", 1000)
		assert.Equal(t, long, tp.TruncateText(long, 0))
	})

	t.Run("exactly at limit", func(t *testing.T) {
		assert.Equal(t, "abcde", tp.TruncateText("abcde", 5))
	})

	t.Run("over limit gets marker", func(t *testing.T) {
		got := tp.TruncateText("abcdef", 5)
		assert.Equal(t, "abcde"+truncationMarker, got)
	})

	t.Run("never splits a rune", func(t *testing.T) {
		// "héllo" with é as two bytes; cutting at 2 lands mid-rune.
		got := tp.TruncateText("héllo", 2)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, "h"+truncationMarker, got)
	})
}

func TestSanitizeUTF8(t *testing.T) {
	tp := newTestProcessor()

	t.Run("valid text unchanged", func(t *testing.T) {
		assert.Equal(t, "héllo wörld", tp.SanitizeUTF8("héllo wörld"))
	})

	t.Run("invalid bytes dropped", func(t *testing.T) {
		got := tp.SanitizeUTF8("abc\xff\xfedef")
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, "abcdef", got)
	})
}

func TestNormalize(t *testing.T) {
	tp := newTestProcessor()

	// e + combining acute accent normalizes to the precomposed é.
	decomposed := "café"
	assert.Equal(t, "café", tp.Normalize(decomposed))
	assert.Equal(t, "café", tp.Normalize("café"))
}

func TestProcessText(t *testing.T) {
	tp := newTestProcessor()

	t.Run("sanitizes then normalizes then truncates", func(t *testing.T) {
		// Invalid byte dropped, combining accent composed, then cut to 5 bytes.
		got := tp.ProcessText("caf\xffé!", 5)
		assert.Equal(t, "café"+truncationMarker, got)
	})

	t.Run("clean text passes through", func(t *testing.T) {
		assert.Equal(t, "hello", tp.ProcessText("hello", 100))
	})
}
