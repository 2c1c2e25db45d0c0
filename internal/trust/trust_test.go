package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMatch(t *testing.T) {
	m := NewMatcher([]string{"@google.com", "github.com"}, zap.NewNop())

	tests := []struct {
		name   string
		sender string
		want   bool
	}{
		{"bare address", "alice@google.com", true},
		{"display name", "Alice Smith <alice@google.com>", true},
		{"angle brackets only", "<bot@github.com>", true},
		{"subdomain", "noreply@mail.google.com", true},
		{"case insensitive", "Alice@GOOGLE.COM", true},
		{"lookalike suffix", "alice@evilgoogle.com", false},
		{"trusted domain as prefix", "alice@google.com.evil.net", false},
		{"untrusted domain", "alice@example.com", false},
		{"domain embedded in local part", "google.com@evil.net", false},
		{"no at sign", "not-an-address", false},
		{"empty sender", "", false},
		{"missing sender sentinel", "[No Sender]", false},
		{"trailing at", "alice@", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.Match(tc.sender), "sender %q", tc.sender)
		})
	}
}

func TestMatchNoDomainsConfigured(t *testing.T) {
	m := NewMatcher(nil, zap.NewNop())
	assert.False(t, m.Match("alice@google.com"))
}

func TestNewMatcherNormalizesEntries(t *testing.T) {
	m := NewMatcher([]string{" @Gmail.com ", "example.org.", "", "   "}, zap.NewNop())

	assert.True(t, m.Match("bob@gmail.com"))
	assert.True(t, m.Match("bob@example.org"))
	assert.False(t, m.Match("bob@"))
}

func TestSenderDomain(t *testing.T) {
	tests := []struct {
		sender string
		want   string
	}{
		{"alice@google.com", "google.com"},
		{"Alice <alice@google.com>", "google.com"},
		{"\"Smith, Alice\" <alice@google.com>", "google.com"},
		{"ALICE@GOOGLE.COM", "google.com"},
		{"<weird@multiple@signs.test>", "signs.test"},
		{"no-address-here", ""},
		{"", ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, senderDomain(tc.sender), "sender %q", tc.sender)
	}
}
