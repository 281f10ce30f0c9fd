package acme

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrRetryAfterUnparseable is returned by ParseRetryAfter for header
// values that are neither delta-seconds nor a recognized date form. The
// header is advisory, so callers normally treat this as "no hint".
var ErrRetryAfterUnparseable = errors.New("acme: unparseable Retry-After value")

// ParseRetryAfter parses a Retry-After header value into a number of
// seconds to wait, relative to now. The forms accepted, in order, are:
//
//  1. a non-negative decimal integer (delta-seconds),
//  2. an RFC 3339 datetime,
//  3. an RFC 7231 HTTP-date (RFC 1123, obsolete RFC 850 or ANSI C form).
//
// Leading and trailing whitespace is tolerated. Dates in the past and the
// integer 0 both yield 0.
//
// See https://tools.ietf.org/html/rfc7231#section-7.1.3
func ParseRetryAfter(value string, now time.Time) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrRetryAfterUnparseable
	}

	if isDigits(value) {
		seconds, err := strconv.Atoi(value)
		if err != nil {
			// Digits only but out of int range.
			return 0, ErrRetryAfterUnparseable
		}
		return seconds, nil
	}

	if when, err := time.Parse(time.RFC3339, value); err == nil {
		return secondsUntil(now, when), nil
	}

	// http.ParseTime covers the RFC 1123 and obsolete RFC 850/ANSI C date
	// forms allowed by RFC 7231.
	if when, err := http.ParseTime(value); err == nil {
		return secondsUntil(now, when), nil
	}

	return 0, ErrRetryAfterUnparseable
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func secondsUntil(now, when time.Time) int {
	delta := when.Sub(now)
	if delta < 0 {
		return 0
	}
	return int(delta.Round(time.Second) / time.Second)
}
