package remote

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrSuspended     = errors.New("remote store suspended")
	ErrNotConfigured = errors.New("remote store not configured")
)

type Config struct {
	URL         string
	APIKey      string
	Schema      string
	DatabaseURL string
	Suspended   bool
	Timeout     time.Duration
	MaxAttempts int
}

// placeholderMarkers are substrings found in the sample values shipped in
// .env.example files.
var placeholderMarkers = []string{
	"your-", "your_", "<", "placeholder", "changeme", "example.supabase.co", "xxxx",
}

// IsPlaceholder reports whether v is empty or one of the sample values.
func IsPlaceholder(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" {
		return true
	}
	for _, m := range placeholderMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// UsesDatabase reports whether the direct Postgres backend applies.
func (c Config) UsesDatabase() bool {
	return !IsPlaceholder(c.DatabaseURL)
}

// Validate decides whether the remote leaf may be constructed at all.
func Validate(c Config) error {
	if c.Suspended {
		return ErrSuspended
	}
	if c.UsesDatabase() {
		return nil
	}
	if IsPlaceholder(c.URL) {
		return fmt.Errorf("%w: missing or placeholder url", ErrNotConfigured)
	}
	if IsPlaceholder(c.APIKey) {
		return fmt.Errorf("%w: missing or placeholder api key", ErrNotConfigured)
	}
	u, err := url.Parse(strings.TrimSpace(c.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url must be http(s)", ErrNotConfigured)
	}
	return nil
}
