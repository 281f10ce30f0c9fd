// Package keys implements the ACME account key abstraction: key
// generation, JWS algorithm mapping, RFC 7638 thumbprints, challenge key
// authorizations and a lossless JSON serialization.
package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	jose "github.com/go-jose/go-jose/v4"
)

// KeyType tags the algorithm family of an account key.
type KeyType string

const (
	// EC256 is a P-256 ECDSA key signing with ES256.
	EC256 KeyType = "ec256"
	// ED25519 is an Ed25519 key signing with EdDSA.
	ED25519 KeyType = "ed25519"
	// RS256 is an RSA key signing with RS256.
	RS256 KeyType = "rs256"
)

// DefaultKeyType is used when no explicit type is requested. ES256 is
// universally supported by public ACME servers.
const DefaultKeyType = EC256

// Key is an ACME account key: a private key, its algorithm tag, and the
// server assigned account URL (the JWS "kid") once the key is bound to
// an account. Once KID is set the key signs with a "kid" protected
// header; while it is empty signatures embed the public JWK instead.
type Key struct {
	// The private key.
	Signer crypto.Signer
	// The algorithm family tag.
	Type KeyType
	// The account URL the key is bound to, or empty before registration.
	KID string
}

// Generate creates a fresh private key of the given type.
func Generate(keyType KeyType) (*Key, error) {
	var signer crypto.Signer
	var err error
	switch keyType {
	case EC256:
		signer, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	case ED25519:
		_, signer, err = ed25519.GenerateKey(rand.Reader)
	case RS256:
		signer, err = rsa.GenerateKey(rand.Reader, 2048)
	default:
		err = fmt.Errorf("unknown key type: %q", keyType)
	}
	if err != nil {
		return nil, err
	}
	return &Key{Signer: signer, Type: keyType}, nil
}

// New wraps an existing private key, deriving its type tag.
func New(signer crypto.Signer) (*Key, error) {
	keyType, err := typeForSigner(signer)
	if err != nil {
		return nil, err
	}
	return &Key{Signer: signer, Type: keyType}, nil
}

func typeForSigner(signer crypto.Signer) (KeyType, error) {
	switch k := signer.(type) {
	case *ecdsa.PrivateKey:
		if k.Curve != elliptic.P256() {
			return "", fmt.Errorf("unsupported ECDSA curve: %s", k.Curve.Params().Name)
		}
		return EC256, nil
	case ed25519.PrivateKey:
		return ED25519, nil
	case *rsa.PrivateKey:
		return RS256, nil
	}
	return "", fmt.Errorf("signer was unknown type: %T", signer)
}

// Algorithm returns the JWS signature algorithm for the key.
func (k *Key) Algorithm() jose.SignatureAlgorithm {
	switch k.Type {
	case ED25519:
		return jose.EdDSA
	case RS256:
		return jose.RS256
	}
	return jose.ES256
}

// WithKID returns a copy of the key bound to the given account URL. The
// receiver is never mutated.
func (k *Key) WithKID(kid string) *Key {
	return &Key{Signer: k.Signer, Type: k.Type, KID: kid}
}

// PublicJWK returns the canonical public JWK for the key.
func (k *Key) PublicJWK() jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       k.Signer.Public(),
		Algorithm: string(k.Algorithm()),
	}
}

// Thumbprint returns the RFC 7638 JWK thumbprint of the key: the
// base64url-no-pad encoding of the SHA-256 hash of the canonical public
// JWK JSON.
func (k *Key) Thumbprint() (string, error) {
	jwk := k.PublicJWK()
	thumbBytes, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(thumbBytes), nil
}

// KeyAuthorization returns the key authorization string for a challenge
// token: "{token}.{thumbprint}".
//
// See https://tools.ietf.org/html/rfc8555#section-8.1
func (k *Key) KeyAuthorization(token string) (string, error) {
	thumbprint, err := k.Thumbprint()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s", token, thumbprint), nil
}

// DNS01TXTValue returns the TXT record value proving control of the
// account key for a dns-01 challenge token: the base64url-no-pad SHA-256
// digest of the key authorization.
//
// See https://tools.ietf.org/html/rfc8555#section-8.4
func (k *Key) DNS01TXTValue(token string) (string, error) {
	keyAuth, err := k.KeyAuthorization(token)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256([]byte(keyAuth))
	return base64.RawURLEncoding.EncodeToString(digest[:]), nil
}

// wireKey is the serialized form of a Key:
// {"key": <private JWK>, "kid": <string|null>, "type": <tag>}.
type wireKey struct {
	Key  json.RawMessage `json:"key"`
	KID  *string         `json:"kid"`
	Type KeyType         `json:"type"`
}

// MarshalJSON serializes the key, private material included, in
// a round-trippable form.
func (k *Key) MarshalJSON() ([]byte, error) {
	jwk := jose.JSONWebKey{
		Key:       k.Signer,
		Algorithm: string(k.Algorithm()),
	}
	jwkJSON, err := jwk.MarshalJSON()
	if err != nil {
		return nil, err
	}
	wire := wireKey{Key: jwkJSON, Type: k.Type}
	if k.KID != "" {
		wire.KID = &k.KID
	}
	return json.Marshal(&wire)
}

// UnmarshalJSON restores a key serialized by MarshalJSON.
func (k *Key) UnmarshalJSON(data []byte) error {
	var wire wireKey
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(wire.Key); err != nil {
		return err
	}
	signer, ok := jwk.Key.(crypto.Signer)
	if !ok {
		return fmt.Errorf("JWK did not contain a private key (%T)", jwk.Key)
	}

	keyType, err := typeForSigner(signer)
	if err != nil {
		return err
	}
	if wire.Type != "" && wire.Type != keyType {
		return fmt.Errorf("key type tag %q does not match key material (%q)",
			wire.Type, keyType)
	}

	k.Signer = signer
	k.Type = keyType
	if wire.KID != nil {
		k.KID = *wire.KID
	} else {
		k.KID = ""
	}
	return nil
}

// Save persists the key, private material included, to the given file
// path.
func Save(path string, key *Key) error {
	frozen, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, frozen, 0600)
}

// Restore loads a key previously written by Save.
func Restore(path string) (*Key, error) {
	frozen, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key := &Key{}
	if err := json.Unmarshal(frozen, key); err != nil {
		return nil, err
	}
	return key, nil
}
