package resources

import (
	"time"

	"github.com/jtdowney/ex-acme/acme"
)

// The ACME Challenge resource represents an action that the client must
// take to authorize a given account for a specific identifier.
//
// For information about the Challenge resource see
// https://tools.ietf.org/html/rfc8555#section-7.1.5
//
// To understand the Challenge types specified by RFC 8555 see
// https://tools.ietf.org/html/rfc8555#section-8
type Challenge struct {
	// The Type of the challenge ("dns-01", "http-01", "tls-alpn-01").
	Type string `json:"type"`
	// The URL of the challenge, used both to refetch it and to trigger
	// validation.
	URL string `json:"url"`
	// The Token used for constructing the key authorization for this
	// challenge.
	Token string `json:"token"`
	// The Status of the challenge.
	Status string `json:"status"`
	// When the challenge was validated, for "valid" challenges.
	Validated *time.Time `json:"validated,omitempty"`
	// The Error associated with an invalid challenge.
	Error *acme.Problem `json:"error,omitempty"`
}

// String returns the URL of the Challenge.
func (c Challenge) String() string {
	return c.URL
}

// UnmarshalChallenge decodes a challenge document. The url argument is
// used when the body omits its own URL (it normally does not).
func UnmarshalChallenge(data []byte, url string) (*Challenge, error) {
	var chall Challenge
	if err := decode("challenge", data, &chall); err != nil {
		return nil, err
	}
	if chall.URL == "" {
		chall.URL = url
	}
	return &chall, nil
}
