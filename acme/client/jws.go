package client

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jose "github.com/go-jose/go-jose/v4"

	"github.com/jtdowney/ex-acme/acme/keys"
)

// SigningOptions allows specifying signature related options when
// calling the Client's Sign function.
type SigningOptions struct {
	// The key that signs the JWS. Mandatory.
	Key *keys.Key
	// If true, embed the key's public JWK in the protected header even
	// when the key carries a kid. When false the dispatch follows the
	// key's state: a bound key (non-empty KID) signs with a "kid"
	// header, an unbound key embeds its JWK.
	EmbedJWK bool
	// If true, omit the "nonce" protected header. Used for the inner
	// JWS of a key rollover, which RFC 8555 requires to carry only alg,
	// jwk and url.
	OmitNonce bool
}

// SignResult holds the input and output from a Sign operation.
type SignResult struct {
	// The url argument given to Sign.
	InputURL string
	// The data argument given to Sign.
	InputData []byte
	// The JWS produced by signing the given data.
	JWS *jose.JSONWebSignature
	// The JWS in flattened JSON serialization.
	SerializedJWS []byte
}

// Sign produces a SignResult by signing the provided data with
// a protected header carrying alg, url, the nonce (unless omitted) and
// exactly one of jwk or kid. POST-as-GET requests sign the empty octet
// string.
func (c *Client) Sign(url string, data []byte, opts SigningOptions) (*SignResult, error) {
	if opts.Key == nil {
		return nil, errors.New("sign: no key specified in SigningOptions")
	}

	alg := opts.Key.Algorithm()
	joseOpts := &jose.SignerOptions{
		ExtraHeaders: map[jose.HeaderKey]interface{}{
			"url": url,
		},
	}
	if !opts.OmitNonce {
		joseOpts.NonceSource = c
	}

	var signingKey jose.SigningKey
	if opts.EmbedJWK || opts.Key.KID == "" {
		joseOpts.EmbedJWK = true
		signingKey = jose.SigningKey{
			Algorithm: alg,
			Key:       opts.Key.Signer,
		}
	} else {
		jwk := &jose.JSONWebKey{
			Key:       opts.Key.Signer,
			Algorithm: string(alg),
			KeyID:     opts.Key.KID,
		}
		signingKey = jose.SigningKey{
			Algorithm: alg,
			Key:       jwk,
		}
	}

	signer, err := jose.NewSigner(signingKey, joseOpts)
	if err != nil {
		return nil, err
	}

	signed, err := signer.Sign(data)
	if err != nil {
		return nil, err
	}

	serialized := []byte(signed.FullSerialize())

	// Reparse the serialized body to get a fully populated JWS object
	parsedJWS, err := jose.ParseSigned(string(serialized),
		[]jose.SignatureAlgorithm{alg})
	if err != nil {
		return nil, err
	}

	return &SignResult{
		InputURL:      url,
		InputData:     data,
		JWS:           parsedJWS,
		SerializedJWS: serialized,
	}, nil
}

// signExternalAccountBinding produces the externalAccountBinding JWS
// for a newAccount request: an HMAC-SHA-256 signature over the public
// JWK of the account key being registered, keyed by the CA-provided MAC
// key and identified by the CA-provided key ID.
//
// See https://tools.ietf.org/html/rfc8555#section-7.3.4
func signExternalAccountBinding(acctKey *keys.Key, eabKID, eabMACKey, url string) (json.RawMessage, error) {
	macKey, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(eabMACKey, "="))
	if err != nil {
		return nil, fmt.Errorf("invalid EAB MAC key: %w", err)
	}

	jwk := acctKey.PublicJWK()
	payload, err := json.Marshal(&jwk)
	if err != nil {
		return nil, err
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{
			Algorithm: jose.HS256,
			Key: jose.JSONWebKey{
				Key:   macKey,
				KeyID: eabKID,
			},
		},
		&jose.SignerOptions{
			ExtraHeaders: map[jose.HeaderKey]interface{}{
				"url": url,
			},
		})
	if err != nil {
		return nil, err
	}

	signed, err := signer.Sign(payload)
	if err != nil {
		return nil, err
	}

	return json.RawMessage(signed.FullSerialize()), nil
}
