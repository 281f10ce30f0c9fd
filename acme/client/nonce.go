package client

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/jtdowney/ex-acme/acme"
)

// Nonce satisfies the JWS "NonceSource" interface. It consumes the
// cached nonce if one is present, otherwise it synchronously fetches
// a fresh one from the server's newNonce endpoint. A nonce is never
// handed to two callers: the cache read removes it, and contending
// callers that find the cache empty each HEAD for their own.
//
// See https://tools.ietf.org/html/rfc8555#section-6.5
func (c *Client) Nonce() (string, error) {
	c.nonceMu.Lock()
	nonce := c.nonce
	c.nonce = ""
	c.nonceMu.Unlock()

	if nonce != "" {
		return nonce, nil
	}
	return c.fetchNonce()
}

// fetchNonce HEADs the newNonce endpoint and returns the Replay-Nonce
// header value. The result is returned to the caller rather than
// cached, since the caller is about to consume it.
//
// See https://tools.ietf.org/html/rfc8555#section-7.2
func (c *Client) fetchNonce() (string, error) {
	nonceURL, err := c.endpointURL(acme.NEW_NONCE_ENDPOINT)
	if err != nil {
		return "", &acme.NonceError{Reason: err.Error()}
	}

	resp, err := c.net.HeadURL(nonceURL)
	if err != nil {
		return "", &acme.NonceError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &acme.NonceError{
			Reason: "newNonce returned HTTP status " + resp.Status,
		}
	}

	nonce := resp.Header.Get(acme.REPLAY_NONCE_HEADER)
	if nonce == "" {
		return "", &acme.NonceError{
			Reason: "newNonce response had no " + acme.REPLAY_NONCE_HEADER + " header",
		}
	}

	log.WithField("nonce", nonce).Debug("fetched fresh nonce")
	return nonce, nil
}

// storeNonce replaces the cached nonce with the Replay-Nonce header of
// a response. Responses without the header leave the cache untouched;
// the next request will fetch its own. Called for every response,
// success or error, so bad-nonce recovery always makes progress.
func (c *Client) storeNonce(header http.Header) {
	nonce := header.Get(acme.REPLAY_NONCE_HEADER)
	if nonce == "" {
		return
	}

	c.nonceMu.Lock()
	c.nonce = nonce
	c.nonceMu.Unlock()
	log.WithField("nonce", nonce).Debug("updated nonce")
}
