package resources

import "time"

// The ACME Authorization resource represents an Account's authorization
// to issue for a specified identifier, based on interactions with the
// associated Challenges.
//
// For information about the Authorization resource see
// https://tools.ietf.org/html/rfc8555#section-7.1.4
//
// To understand the Authorization Status changes specified by ACME see
// https://tools.ietf.org/html/rfc8555#section-7.1.6
type Authorization struct {
	// The server-assigned URL identifying the Authorization. Not part of
	// the wire form.
	URL string `json:"-"`
	// The status of this authorization. Possible values are: "pending",
	// "valid", "invalid", "deactivated", "expired", and "revoked".
	Status string `json:"status"`
	// The identifier that the account holding this Authorization is
	// authorized to represent.
	Identifier Identifier `json:"identifier"`
	// For pending authorizations, the challenges that the client can
	// fulfill. For valid authorizations, the challenge that was
	// validated. For invalid authorizations, the challenge that was
	// attempted and failed.
	Challenges []Challenge `json:"challenges"`
	// When the server considers the Authorization expired.
	Expires *time.Time `json:"expires,omitempty"`
	// True for authorizations created from a newOrder identifier that
	// carried a wildcard prefix.
	Wildcard bool `json:"wildcard,omitempty"`
}

// String returns the Authorization's URL.
func (a Authorization) String() string {
	return a.URL
}

// ChallengeByType returns the authorization's challenge of the given
// type ("dns-01", "http-01", "tls-alpn-01"), or false when the server
// offered no such challenge.
func (a *Authorization) ChallengeByType(challType string) (*Challenge, bool) {
	for i := range a.Challenges {
		if a.Challenges[i].Type == challType {
			return &a.Challenges[i], true
		}
	}
	return nil, false
}

// UnmarshalAuthorization decodes an authorization document fetched from
// the given URL.
func UnmarshalAuthorization(data []byte, url string) (*Authorization, error) {
	var authz Authorization
	if err := decode("authorization", data, &authz); err != nil {
		return nil, err
	}
	authz.URL = url
	return &authz, nil
}
