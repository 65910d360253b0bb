package util

import (
	"fmt"
	"strings"
	"time"
)

const Name = "org-social-go"

const version = "0.1.0"

// GetVersion returns the release version.
func GetVersion() string {
	return version
}

// Timestamp layouts accepted for post IDs and poll deadlines. Org-social
// clients mostly emit RFC 3339, but a few write numeric offsets without
// the colon, e.g. 2025-08-20T15:23:45+0200.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z0700",
}

// ParseTimestamp parses an org-social timestamp string.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q: %w", s, lastErr)
}

// CurrentTimestamp returns the current local time in RFC 3339 format,
// suitable for use as a new post ID.
func CurrentTimestamp() string {
	return time.Now().Format(time.RFC3339)
}

// TruncateRunes shortens s to at most n runes, appending "..." when
// content was cut. It never splits a multi-byte character.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
