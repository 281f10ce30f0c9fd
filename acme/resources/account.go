package resources

import "encoding/json"

// Account holds a snapshot of a server-side ACME Account resource. The
// URL field is the server assigned account URL from the Location header
// of the newAccount response; it doubles as the JWS key ID for all
// subsequent requests authenticated by the account key.
//
// See https://tools.ietf.org/html/rfc8555#section-7.1.2
type Account struct {
	// The server assigned account URL. Not part of the wire form.
	URL string `json:"-"`
	// Status is one of "valid", "deactivated" or "revoked".
	Status string `json:"status"`
	// Contact URIs (typically "mailto:" addresses).
	Contact []string `json:"contact,omitempty"`
	// Whether the account agreed to the server's terms of service.
	TermsOfServiceAgreed bool `json:"termsOfServiceAgreed,omitempty"`
	// The external account binding JWS echoed by the server, if the
	// account was registered with one. Kept raw since its shape is
	// CA-specific.
	ExternalAccountBinding json.RawMessage `json:"externalAccountBinding,omitempty"`
	// URL of the account's orders list.
	Orders string `json:"orders,omitempty"`
}

// String returns the Account's URL or an empty string if it has not been
// created with the ACME server.
func (a Account) String() string {
	return a.URL
}

// UnmarshalAccount decodes an account document. The url argument is the
// account URL the snapshot was fetched from (or assigned by Location).
func UnmarshalAccount(data []byte, url string) (*Account, error) {
	var acct Account
	if err := decode("account", data, &acct); err != nil {
		return nil, err
	}
	acct.URL = url
	return &acct, nil
}
