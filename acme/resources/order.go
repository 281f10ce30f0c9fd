package resources

import (
	"time"

	"github.com/jtdowney/ex-acme/acme"
)

// The Order resource represents a collection of identifiers that an
// account wishes to have certified. The server is the source of truth;
// an Order value is a point-in-time snapshot and must be refetched to
// observe status changes.
//
// See https://tools.ietf.org/html/rfc8555#section-7.1.3
//
// To understand the Status changes specified by ACME for the Order
// resource see https://tools.ietf.org/html/rfc8555#section-7.1.6
type Order struct {
	// The server-assigned URL identifying the Order. Not part of the wire
	// form; populated from the Location header at creation.
	URL string `json:"-"`
	// The Status of the Order: "pending", "ready", "processing", "valid"
	// or "invalid".
	Status string `json:"status"`
	// When the server considers the Order expired.
	Expires *time.Time `json:"expires,omitempty"`
	// The Identifiers the Order covers.
	Identifiers []Identifier `json:"identifiers"`
	// The certificate profile the Order was submitted under, if any.
	Profile string `json:"profile,omitempty"`
	// Requested notBefore/notAfter values echoed by the server.
	NotBefore *time.Time `json:"notBefore,omitempty"`
	NotAfter  *time.Time `json:"notAfter,omitempty"`
	// The error that occurred while processing the Order, if any.
	Error *acme.Problem `json:"error,omitempty"`
	// URLs for the Authorization resources the server created for the
	// Order's identifiers.
	Authorizations []string `json:"authorizations"`
	// The URL used to finalize the Order with a CSR once it is "ready".
	Finalize string `json:"finalize"`
	// The URL the issued certificate can be fetched from. Present when
	// the Order is "valid".
	Certificate string `json:"certificate,omitempty"`
}

// String returns the Order's URL.
func (o Order) String() string {
	return o.URL
}

// UnmarshalOrder decodes an order document. The url argument is the
// canonical order URL; a finalize response carrying a divergent Location
// header does not rebind it.
func UnmarshalOrder(data []byte, url string) (*Order, error) {
	var order Order
	if err := decode("order", data, &order); err != nil {
		return nil, err
	}
	order.URL = url
	return &order, nil
}
