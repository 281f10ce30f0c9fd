// Package resources provides typed representations of ACME protocol
// resources and decoders for the server's wire form.
package resources

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jtdowney/ex-acme/acme"
)

// The Identifier resource represents a subject identifier that can be
// included in a certificate.
//
// See:
// https://tools.ietf.org/html/rfc8555#section-7.5
// https://tools.ietf.org/html/rfc8555#section-9.7.7
//
// This client only supports "dns" type identifiers, where the value is
// a fully qualified domain name. A DNS identifier used in a newOrder
// request may carry a wildcard prefix (e.g. "*."); the corresponding
// Authorization drops the prefix and sets its Wildcard field instead.
type Identifier struct {
	// The Type of the Identifier value.
	Type string `json:"type"`
	// The Identifier value.
	Value string `json:"value"`
}

// decode unmarshals a resource body and converts malformed timestamp
// failures into acme.ErrInvalidTimestamp.
func decode(what string, data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		var parseErr *time.ParseError
		if errors.As(err, &parseErr) {
			return fmt.Errorf("decode %s: %w", what, acme.ErrInvalidTimestamp)
		}
		return fmt.Errorf("decode %s: %w", what, err)
	}
	return nil
}
