package client

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/jtdowney/ex-acme/acme"
	"github.com/jtdowney/ex-acme/acme/keys"
	"github.com/jtdowney/ex-acme/acme/resources"
)

// OrderBuilder accumulates the fields of a newOrder request. Identifier
// order is preserved and duplicates are kept; deduplication is the
// caller's concern.
type OrderBuilder struct {
	identifiers []resources.Identifier
	profile     string
	notBefore   *time.Time
	notAfter    *time.Time
}

// NewOrder creates an empty order builder.
func NewOrder() *OrderBuilder {
	return &OrderBuilder{}
}

// AddDNSIdentifier appends one "dns" type identifier per domain given.
func (b *OrderBuilder) AddDNSIdentifier(domains ...string) *OrderBuilder {
	for _, domain := range domains {
		b.identifiers = append(b.identifiers, resources.Identifier{
			Type:  acme.IdentifierTypeDNS,
			Value: domain,
		})
	}
	return b
}

// WithProfile selects a server-side certificate profile by name. The
// name is passed through opaquely.
func (b *OrderBuilder) WithProfile(name string) *OrderBuilder {
	b.profile = name
	return b
}

// WithNotBefore requests a certificate notBefore value.
func (b *OrderBuilder) WithNotBefore(t time.Time) *OrderBuilder {
	b.notBefore = &t
	return b
}

// WithNotAfter requests a certificate notAfter value.
func (b *OrderBuilder) WithNotAfter(t time.Time) *OrderBuilder {
	b.notAfter = &t
	return b
}

// Identifiers returns the accumulated identifiers.
func (b *OrderBuilder) Identifiers() []resources.Identifier {
	return b.identifiers
}

type orderRequest struct {
	Identifiers []resources.Identifier `json:"identifiers"`
	Profile     string                 `json:"profile,omitempty"`
	NotBefore   *time.Time             `json:"notBefore,omitempty"`
	NotAfter    *time.Time             `json:"notAfter,omitempty"`
}

// payload serializes the order to its wire form, failing with
// acme.ErrNoIdentifiers when no identifier was added.
func (b *OrderBuilder) payload() ([]byte, error) {
	if len(b.identifiers) == 0 {
		return nil, acme.ErrNoIdentifiers
	}
	return json.Marshal(&orderRequest{
		Identifiers: b.identifiers,
		Profile:     b.profile,
		NotBefore:   b.notBefore,
		NotAfter:    b.notAfter,
	})
}

// Registration accumulates the fields of a newAccount request.
type Registration struct {
	contact            []string
	tosAgreed          bool
	onlyReturnExisting bool
	eabKID             string
	eabMACKey          string
}

// NewRegistration creates an empty registration builder. Terms of
// service are not agreed to until AgreeToTerms is called.
func NewRegistration() *Registration {
	return &Registration{}
}

// WithContacts sets the account's contact URIs (e.g.
// "mailto:admin@example.com").
func (r *Registration) WithContacts(contacts ...string) *Registration {
	r.contact = append(r.contact, contacts...)
	return r
}

// WithContactEmail adds a contact email address, prepending the
// "mailto:" scheme.
func (r *Registration) WithContactEmail(email string) *Registration {
	if email != "" {
		r.contact = append(r.contact, fmt.Sprintf("mailto:%s", email))
	}
	return r
}

// AgreeToTerms records agreement with the server's terms of service.
// Idempotent.
func (r *Registration) AgreeToTerms() *Registration {
	r.tosAgreed = true
	return r
}

// OnlyReturnExisting asks the server to return an existing account for
// the key instead of creating one.
func (r *Registration) OnlyReturnExisting() *Registration {
	r.onlyReturnExisting = true
	return r
}

// WithExternalAccountBinding attaches CA-issued external account
// binding credentials: the EAB key identifier and the base64url encoded
// HMAC key.
//
// See https://tools.ietf.org/html/rfc8555#section-7.3.4
func (r *Registration) WithExternalAccountBinding(kid, macKey string) *Registration {
	r.eabKID = kid
	r.eabMACKey = macKey
	return r
}

type registrationRequest struct {
	Contact                []string        `json:"contact,omitempty"`
	TermsOfServiceAgreed   bool            `json:"termsOfServiceAgreed,omitempty"`
	OnlyReturnExisting     bool            `json:"onlyReturnExisting,omitempty"`
	ExternalAccountBinding json.RawMessage `json:"externalAccountBinding,omitempty"`
}

// payload serializes the registration to its wire form. The EAB JWS is
// computed here because it signs over the account key's public JWK and
// the newAccount URL.
func (r *Registration) payload(acctKey *keys.Key, newAccountURL string) ([]byte, error) {
	req := registrationRequest{
		Contact:              r.contact,
		TermsOfServiceAgreed: r.tosAgreed,
		OnlyReturnExisting:   r.onlyReturnExisting,
	}

	if r.eabKID != "" {
		eab, err := signExternalAccountBinding(acctKey, r.eabKID, r.eabMACKey, newAccountURL)
		if err != nil {
			return nil, err
		}
		req.ExternalAccountBinding = eab
	}

	return json.Marshal(&req)
}

// Revocation accumulates the fields of a revokeCert request. The
// certificate may be supplied as a parsed certificate, raw DER, or PEM;
// PEM is converted to DER at ingest.
type Revocation struct {
	der    []byte
	reason *int
}

// NewRevocation creates an empty revocation builder.
func NewRevocation() *Revocation {
	return &Revocation{}
}

// FromDER sets the certificate to revoke from its DER encoding.
func (r *Revocation) FromDER(der []byte) *Revocation {
	r.der = der
	return r
}

// FromCertificate sets the certificate to revoke from a parsed
// certificate.
func (r *Revocation) FromCertificate(cert *x509.Certificate) *Revocation {
	r.der = cert.Raw
	return r
}

// FromPEM sets the certificate to revoke from its PEM encoding. The
// first CERTIFICATE block is used.
func (r *Revocation) FromPEM(pemBytes []byte) error {
	for {
		var block *pem.Block
		block, pemBytes = pem.Decode(pemBytes)
		if block == nil {
			return acme.ErrInvalidPEM
		}
		if block.Type == "CERTIFICATE" {
			r.der = block.Bytes
			return nil
		}
	}
}

// WithReason sets a numeric RFC 5280 revocation reason code.
func (r *Revocation) WithReason(code int) error {
	if code < acme.ReasonUnspecified || code > acme.ReasonAACompromise || code == 7 {
		return fmt.Errorf("%w: %d", acme.ErrInvalidReasonCode, code)
	}
	r.reason = &code
	return nil
}

// WithReasonName sets a revocation reason by its named alias
// ("unspecified", "key_compromise", "affiliation_changed", "superseded",
// "cessation_of_operation").
func (r *Revocation) WithReasonName(name string) error {
	code, ok := acme.ReasonAliases[name]
	if !ok {
		return fmt.Errorf("%w: %q", acme.ErrInvalidReasonCode, name)
	}
	r.reason = &code
	return nil
}

type revocationRequest struct {
	Certificate string `json:"certificate"`
	Reason      *int   `json:"reason,omitempty"`
}

// payload serializes the revocation to its wire form.
func (r *Revocation) payload() ([]byte, error) {
	if len(r.der) == 0 {
		return nil, fmt.Errorf("revoke: no certificate provided")
	}
	return json.Marshal(&revocationRequest{
		Certificate: base64.RawURLEncoding.EncodeToString(r.der),
		Reason:      r.reason,
	})
}
