package client

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v4"
	log "github.com/sirupsen/logrus"

	"github.com/jtdowney/ex-acme/acme"
	"github.com/jtdowney/ex-acme/acme/keys"
	"github.com/jtdowney/ex-acme/acme/resources"
)

// RegisterAccount creates (or, with OnlyReturnExisting, looks up) an
// account for the given key. The request is signed with the embedded
// JWK since no account URL exists yet. On success the returned key is
// a copy bound to the account URL from the Location header; the input
// key is not mutated.
//
// See https://tools.ietf.org/html/rfc8555#section-7.3
func (c *Client) RegisterAccount(key *keys.Key, reg *Registration) (*resources.Account, *keys.Key, error) {
	if reg == nil {
		reg = NewRegistration()
	}

	newAcctURL, err := c.endpointURL(acme.NEW_ACCOUNT_ENDPOINT)
	if err != nil {
		return nil, nil, err
	}

	payload, err := reg.payload(key, newAcctURL)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.send(newAcctURL, payload, SigningOptions{Key: key, EmbedJWK: true})
	if err != nil {
		return nil, nil, err
	}

	kid := resp.Location()
	if kid == "" {
		return nil, nil, errors.New("newAccount response had no Location header")
	}

	acct, err := resources.UnmarshalAccount(resp.Body, kid)
	if err != nil {
		return nil, nil, err
	}

	log.WithField("account", kid).Debug("registered account")
	return acct, key.WithKID(kid), nil
}

// FetchAccount retrieves the account bound to the key with
// a POST-as-GET to the account URL.
func (c *Client) FetchAccount(key *keys.Key) (*resources.Account, error) {
	if key.KID == "" {
		return nil, errors.New("fetchAccount: key is not bound to an account")
	}

	resp, err := c.postAsGet(key.KID, key)
	if err != nil {
		return nil, err
	}
	return resources.UnmarshalAccount(resp.Body, key.KID)
}

// UpdateAccountContacts replaces the account's contact URIs.
//
// See https://tools.ietf.org/html/rfc8555#section-7.3.2
func (c *Client) UpdateAccountContacts(key *keys.Key, contacts []string) (*resources.Account, error) {
	if key.KID == "" {
		return nil, errors.New("updateAccount: key is not bound to an account")
	}

	payload, err := json.Marshal(struct {
		Contact []string `json:"contact"`
	}{Contact: contacts})
	if err != nil {
		return nil, err
	}

	resp, err := c.send(key.KID, payload, SigningOptions{Key: key})
	if err != nil {
		return nil, err
	}
	return resources.UnmarshalAccount(resp.Body, key.KID)
}

// DeactivateAccount permanently deactivates the account bound to the
// key. The server refuses all further requests authenticated by it.
//
// See https://tools.ietf.org/html/rfc8555#section-7.3.6
func (c *Client) DeactivateAccount(key *keys.Key) (*resources.Account, error) {
	if key.KID == "" {
		return nil, errors.New("deactivateAccount: key is not bound to an account")
	}

	payload := []byte(`{"status":"deactivated"}`)
	resp, err := c.send(key.KID, payload, SigningOptions{Key: key})
	if err != nil {
		return nil, err
	}

	log.WithField("account", key.KID).Debug("deactivated account")
	return resources.UnmarshalAccount(resp.Body, key.KID)
}

// CreateOrder submits a new order built with an OrderBuilder. The
// returned Order's URL is taken from the Location header.
//
// For more information on Order creation see "Applying for Certificate
// Issuance" in RFC 8555:
// https://tools.ietf.org/html/rfc8555#section-7.4
func (c *Client) CreateOrder(key *keys.Key, order *OrderBuilder) (*resources.Order, error) {
	payload, err := order.payload()
	if err != nil {
		return nil, err
	}

	newOrderURL, err := c.endpointURL(acme.NEW_ORDER_ENDPOINT)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(newOrderURL, payload, SigningOptions{Key: key})
	if err != nil {
		return nil, err
	}

	orderURL := resp.Location()
	if orderURL == "" {
		return nil, errors.New("newOrder response had no Location header")
	}

	created, err := resources.UnmarshalOrder(resp.Body, orderURL)
	if err != nil {
		return nil, err
	}

	log.WithField("order", orderURL).Debug("created order")
	return created, nil
}

// FetchOrder refreshes an order snapshot from its URL. Polling an order
// until it reaches "ready" or "valid" is the caller's responsibility;
// a *acme.RetryAfterError carries the server's delay hint.
func (c *Client) FetchOrder(key *keys.Key, url string) (*resources.Order, error) {
	resp, err := c.postAsGet(url, key)
	if err != nil {
		return nil, err
	}
	return resources.UnmarshalOrder(resp.Body, url)
}

// FetchAuthorization retrieves an authorization snapshot from its URL.
func (c *Client) FetchAuthorization(key *keys.Key, url string) (*resources.Authorization, error) {
	resp, err := c.postAsGet(url, key)
	if err != nil {
		return nil, err
	}
	return resources.UnmarshalAuthorization(resp.Body, url)
}

// DeactivateAuthorization relinquishes an authorization before it
// expires.
//
// See https://tools.ietf.org/html/rfc8555#section-7.5.2
func (c *Client) DeactivateAuthorization(key *keys.Key, url string) (*resources.Authorization, error) {
	payload := []byte(`{"status":"deactivated"}`)
	resp, err := c.send(url, payload, SigningOptions{Key: key})
	if err != nil {
		return nil, err
	}
	return resources.UnmarshalAuthorization(resp.Body, url)
}

// FetchChallenge retrieves a challenge snapshot from its URL.
func (c *Client) FetchChallenge(key *keys.Key, url string) (*resources.Challenge, error) {
	resp, err := c.postAsGet(url, key)
	if err != nil {
		return nil, err
	}
	return resources.UnmarshalChallenge(resp.Body, url)
}

// TriggerChallenge tells the server the challenge response is in place
// and validation may begin, by POSTing the empty JSON object to the
// challenge URL.
//
// See https://tools.ietf.org/html/rfc8555#section-7.5.1
func (c *Client) TriggerChallenge(key *keys.Key, url string) (*resources.Challenge, error) {
	resp, err := c.send(url, []byte(`{}`), SigningOptions{Key: key})
	if err != nil {
		return nil, err
	}
	return resources.UnmarshalChallenge(resp.Body, url)
}

// FinalizeOrder submits the DER encoded CSR to a ready order's finalize
// URL. The returned snapshot keeps the original order URL as canonical
// even when the response carries a divergent Location header.
//
// See https://tools.ietf.org/html/rfc8555#section-7.4
func (c *Client) FinalizeOrder(key *keys.Key, order *resources.Order, csrDER []byte) (*resources.Order, error) {
	if order == nil || order.Finalize == "" {
		return nil, errors.New("finalize: order has no finalize URL")
	}

	payload, err := json.Marshal(struct {
		CSR string `json:"csr"`
	}{CSR: base64.RawURLEncoding.EncodeToString(csrDER)})
	if err != nil {
		return nil, err
	}

	resp, err := c.send(order.Finalize, payload, SigningOptions{Key: key})
	if err != nil {
		return nil, err
	}

	log.WithField("order", order.URL).Debug("finalized order")
	return resources.UnmarshalOrder(resp.Body, order.URL)
}

// FetchCertificate downloads the PEM certificate chain for a valid
// order with a POST-as-GET to its certificate URL.
//
// See https://tools.ietf.org/html/rfc8555#section-7.4.2
func (c *Client) FetchCertificate(key *keys.Key, url string) ([]byte, error) {
	resp, err := c.postAsGet(url, key)
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, fmt.Errorf("certificate response from %q was empty", url)
	}
	return resp.Body, nil
}

// RevokeCertificate revokes a certificate built with a Revocation. The
// key may be an account key (signing with its kid) or an unbound key
// wrapping the certificate's own private key (signing with an embedded
// JWK) for out-of-account revocation.
//
// See https://tools.ietf.org/html/rfc8555#section-7.6
func (c *Client) RevokeCertificate(key *keys.Key, rev *Revocation) error {
	payload, err := rev.payload()
	if err != nil {
		return err
	}

	revokeURL, err := c.endpointURL(acme.REVOKE_CERT_ENDPOINT)
	if err != nil {
		return err
	}

	if _, err := c.send(revokeURL, payload, SigningOptions{Key: key}); err != nil {
		return err
	}

	log.Debug("revoked certificate")
	return nil
}

// rolloverRequest is the inner payload of a key change: the account URL
// and the public form of the key being replaced.
type rolloverRequest struct {
	Account string          `json:"account"`
	OldKey  jose.JSONWebKey `json:"oldKey"`
}

// RolloverKey replaces the account key bound to oldKey with newKey. The
// inner JWS is signed by the new key with an embedded JWK and no nonce;
// the outer JWS is signed by the old account key as usual. This proves
// simultaneous possession of both keys. On success the returned key is
// newKey bound to the existing account URL.
//
// See https://tools.ietf.org/html/rfc8555#section-7.3.5
func (c *Client) RolloverKey(oldKey, newKey *keys.Key) (*keys.Key, error) {
	if oldKey.KID == "" {
		return nil, errors.New("rollover: old key is not bound to an account")
	}

	keyChangeURL, err := c.endpointURL(acme.KEY_CHANGE_ENDPOINT)
	if err != nil {
		return nil, err
	}

	innerPayload, err := json.Marshal(&rolloverRequest{
		Account: oldKey.KID,
		OldKey:  oldKey.PublicJWK(),
	})
	if err != nil {
		return nil, fmt.Errorf("rollover: marshaling inner payload: %w", err)
	}

	inner, err := c.Sign(keyChangeURL, innerPayload, SigningOptions{
		Key:       newKey,
		EmbedJWK:  true,
		OmitNonce: true,
	})
	if err != nil {
		return nil, fmt.Errorf("rollover: signing inner JWS: %w", err)
	}

	if _, err := c.send(keyChangeURL, inner.SerializedJWS, SigningOptions{Key: oldKey}); err != nil {
		return nil, err
	}

	log.WithField("account", oldKey.KID).Debug("rolled over account key")
	return newKey.WithKID(oldKey.KID), nil
}
