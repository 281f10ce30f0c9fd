package acme

import (
	"errors"
	"testing"
	"time"
)

func TestParseRetryAfterSeconds(t *testing.T) {
	now := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		value    string
		expected int
	}{
		{name: "plain seconds", value: "120", expected: 120},
		{name: "zero", value: "0", expected: 0},
		{name: "surrounding whitespace", value: "  300 ", expected: 300},
		{name: "rfc3339 in the future", value: "2023-05-01T12:04:00Z", expected: 240},
		{name: "rfc3339 in the past", value: "2023-05-01T11:00:00Z", expected: 0},
		{name: "rfc1123 in the future", value: "Mon, 01 May 2023 12:01:30 GMT", expected: 90},
		{name: "rfc1123 in the past", value: "Mon, 01 May 2023 11:59:00 GMT", expected: 0},
		{name: "ansi c in the future", value: "Mon May  1 12:00:10 2023", expected: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seconds, err := ParseRetryAfter(tc.value, now)
			if err != nil {
				t.Fatalf("ParseRetryAfter(%q) returned unexpected error: %v", tc.value, err)
			}
			if seconds != tc.expected {
				t.Errorf("ParseRetryAfter(%q) = %d, expected %d", tc.value, seconds, tc.expected)
			}
		})
	}
}

func TestParseRetryAfterInvalid(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "only whitespace", value: "   "},
		{name: "negative seconds", value: "-30"},
		{name: "fractional seconds", value: "60.5"},
		{name: "words", value: "soon"},
		{name: "mangled date", value: "Mon, 32 May 2023 12:00:00 GMT"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRetryAfter(tc.value, now)
			if !errors.Is(err, ErrRetryAfterUnparseable) {
				t.Errorf("ParseRetryAfter(%q) error = %v, expected ErrRetryAfterUnparseable",
					tc.value, err)
			}
		})
	}
}
