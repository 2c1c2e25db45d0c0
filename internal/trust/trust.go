package trust

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Matcher checks whether a sender belongs to one of the configured trusted
// domains. Trusted senders bypass spam classification entirely, both to save
// inference cost and to guarantee known-good correspondents are never
// auto-spammed by model error.
//
// Matching is done on the domain part of the address in the From header,
// exact or dot-boundary suffix: entry "google.com" matches a@google.com and
// a@mail.google.com but not a@google.com.evil.net. Entries may be written
// with the leading "@" ("@gmail.com"); it is normalized away.
type Matcher struct {
	domains []string
	logger  *zap.Logger
}

// NewMatcher creates a new trusted domain matcher.
func NewMatcher(domains []string, logger *zap.Logger) *Matcher {
	normalized := make([]string, 0, len(domains))
	for _, domain := range domains {
		d := strings.ToLower(strings.TrimSpace(domain))
		d = strings.TrimPrefix(d, "@")
		d = strings.TrimSuffix(d, ".")
		if d != "" {
			normalized = append(normalized, d)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trusted domain matcher", zap.Strings("domains", normalized))
	}

	return &Matcher{
		domains: normalized,
		logger:  logger,
	}
}

// Match reports whether the sender's domain is trusted.
func (m *Matcher) Match(sender string) bool {
	if len(m.domains) == 0 {
		return false
	}

	domain := senderDomain(sender)
	if domain == "" {
		return false
	}

	for _, trusted := range m.domains {
		if domain == trusted || strings.HasSuffix(domain, "."+trusted) {
			if m.logger != nil {
				m.logger.Debug("Sender domain is trusted",
					zap.String("domain", domain),
					zap.String("sender", sender))
			}
			return true
		}
	}

	return false
}

// senderDomain extracts the lower-cased domain from a From header value.
// Display names are stripped via RFC 5322 parsing; headers that do not parse
// fall back to a raw scan for the last "@". An empty result means the header
// carries no usable address.
func senderDomain(sender string) string {
	addr := sender
	if parsed, err := mail.ParseAddress(sender); err == nil {
		addr = parsed.Address
	} else {
		addr = strings.Trim(addr, "<> ")
	}

	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(addr[at+1:]))
}
