package acme

import (
	"encoding/json"
	"fmt"
)

// Problem is an RFC 7807 problem document returned by the server with an
// "application/problem+json" content type. The typed fields cover what
// RFC 8555 specifies; the Raw field preserves the full document since
// servers are free to add fields.
//
// See https://tools.ietf.org/html/rfc8555#section-6.7
type Problem struct {
	Type        string       `json:"type"`
	Detail      string       `json:"detail"`
	Status      int          `json:"status"`
	Subproblems []Subproblem `json:"subproblems,omitempty"`

	// The undecoded problem document.
	Raw map[string]interface{} `json:"-"`
}

// Subproblem is a per-identifier problem nested in a Problem document.
// See https://tools.ietf.org/html/rfc8555#section-6.7.1
type Subproblem struct {
	Type       string `json:"type"`
	Detail     string `json:"detail"`
	Identifier struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"identifier"`
}

// ParseProblem decodes a problem document body. The raw map is retained
// alongside the typed fields.
func ParseProblem(body []byte) (*Problem, error) {
	var prob Problem
	if err := json.Unmarshal(body, &prob); err != nil {
		return nil, fmt.Errorf("invalid problem document: %w", err)
	}
	if err := json.Unmarshal(body, &prob.Raw); err != nil {
		return nil, fmt.Errorf("invalid problem document: %w", err)
	}
	return &prob, nil
}

func (p *Problem) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("acme: %s: %s", p.Type, p.Detail)
	}
	return fmt.Sprintf("acme: %s", p.Type)
}

// IsType returns true when the problem's type URN matches the given one.
func (p *Problem) IsType(urn string) bool {
	return p.Type == urn
}

// HTTPError is returned when the server replies with a non-2xx status and
// no parseable body.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("acme: server returned HTTP status %d", e.StatusCode)
}

// RetryAfterError is returned when an error response carries a parseable
// Retry-After header. It wraps the problem document when one was present.
// The delay is advisory; the client never sleeps on the caller's behalf.
type RetryAfterError struct {
	// Seconds the server asked us to wait before retrying.
	Seconds int
	// The problem document from the response body, if any.
	Problem *Problem
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("acme: server asked to retry after %d seconds", e.Seconds)
}

func (e *RetryAfterError) Unwrap() error {
	if e.Problem == nil {
		return nil
	}
	return e.Problem
}

// NonceError is returned when a fresh nonce could not be obtained from the
// newNonce endpoint.
type NonceError struct {
	Reason string
}

func (e *NonceError) Error() string {
	return fmt.Sprintf("acme: nonce unavailable: %s", e.Reason)
}
