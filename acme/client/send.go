package client

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jtdowney/ex-acme/acme"
	"github.com/jtdowney/ex-acme/acme/keys"
)

// Response holds the decoded result of one signed request: the HTTP
// status, the response headers, and the body bytes. JSON bodies are
// decoded by the per-resource decoders in the resources package;
// "application/pem-certificate-chain" and unrecognized content types
// are surfaced as raw bytes.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Location returns the response's Location header value, or an empty
// string.
func (r *Response) Location() string {
	return r.Header.Get(acme.LOCATION_HEADER)
}

// send is the signed request pipeline every operation funnels through:
// consume one nonce, sign the payload into a flattened JWS, POST it,
// refresh the nonce cache from the response, and classify the result.
// A nil payload signs the empty octet string (POST-as-GET).
//
// A badNonce rejection is retried exactly once, reusing the envelope
// and key; the nonce refresh from the failed response supplies the
// fresh nonce. A second consecutive badNonce propagates as a normal
// protocol error.
func (c *Client) send(url string, payload []byte, opts SigningOptions) (*Response, error) {
	return c.sendAttempt(url, payload, opts, true)
}

func (c *Client) sendAttempt(url string, payload []byte, opts SigningOptions, canRetryNonce bool) (*Response, error) {
	if payload == nil {
		payload = []byte{}
	}

	signResult, err := c.Sign(url, payload, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.net.PostURL(url, signResult.SerializedJWS)
	if err != nil {
		// Transport error. The consumed nonce is lost; the next request
		// HEADs for a fresh one.
		return nil, err
	}

	c.storeNonce(resp.Response.Header)

	status := resp.Response.StatusCode
	log.WithFields(log.Fields{
		"url":    url,
		"status": status,
	}).Debug("sent signed request")

	if status < http.StatusBadRequest {
		return &Response{
			StatusCode: status,
			Header:     resp.Response.Header,
			Body:       resp.RespBody,
		}, nil
	}

	var problem *acme.Problem
	if len(resp.RespBody) > 0 && isJSONContentType(resp.Response.Header.Get("Content-Type")) {
		problem, _ = acme.ParseProblem(resp.RespBody)
	}

	if problem != nil && problem.IsType(acme.ErrorTypeBadNonce) && canRetryNonce {
		log.WithField("url", url).Debug("retrying request rejected for a bad nonce")
		return c.sendAttempt(url, payload, opts, false)
	}

	if retryAfter := resp.Response.Header.Get(acme.RETRY_AFTER_HEADER); retryAfter != "" {
		if seconds, err := acme.ParseRetryAfter(retryAfter, time.Now()); err == nil {
			return nil, &acme.RetryAfterError{Seconds: seconds, Problem: problem}
		}
	}

	if problem != nil {
		return nil, problem
	}
	if len(resp.RespBody) > 0 {
		return nil, fmt.Errorf("acme: server returned status %d: %s",
			status, strings.TrimSpace(string(resp.RespBody)))
	}
	return nil, &acme.HTTPError{StatusCode: status}
}

// postAsGet issues an authenticated read: the same signed envelope with
// an empty payload.
//
// See https://tools.ietf.org/html/rfc8555#section-6.3
func (c *Client) postAsGet(url string, key *keys.Key) (*Response, error) {
	return c.send(url, nil, SigningOptions{Key: key})
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == acme.JSON_CONTENT_TYPE ||
		mediaType == acme.PROBLEM_JSON_CONTENT_TYPE
}
