// Package net provides the HTTP transport used for ACME requests.
package net

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
)

const (
	version       = "0.1.0"
	userAgentBase = "ex-acme"
	locale        = "en-us"
)

// Config holds the options for constructing an ACMENet.
type Config struct {
	// Optional file path to one or more PEM encoded CA certificates used
	// as trust roots for HTTPS requests to the ACME server. When empty
	// the system roots are used.
	CABundlePath string
	// Optional prefix prepended to the client's User-Agent header.
	UserAgentPrefix string
	// Optional caller-supplied HTTP client. Timeout, retry and proxy
	// behaviour belong to this client; ACMENet adds nothing on top. When
	// nil a client is built from CABundlePath.
	HTTPClient *http.Client
}

// ACMENet makes HTTP GET/HEAD/POST requests to an ACME server with the
// User-Agent and Accept-Language headers ACME clients are expected to
// send.
//
// See https://tools.ietf.org/html/rfc8555#section-6.1
type ACMENet struct {
	httpClient *http.Client
	userAgent  string
}

// New creates an ACMENet from the given Config.
func New(config Config) (*ACMENet, error) {
	httpClient := config.HTTPClient
	if httpClient == nil {
		var caBundle *x509.CertPool
		if config.CABundlePath != "" {
			pemBundle, err := os.ReadFile(config.CABundlePath)
			if err != nil {
				return nil, err
			}
			caBundle = x509.NewCertPool()
			caBundle.AppendCertsFromPEM(pemBundle)
		}
		httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					RootCAs: caBundle,
				},
			},
		}
	}

	ua := fmt.Sprintf("%s %s (%s; %s)",
		userAgentBase, version, runtime.GOOS, runtime.GOARCH)
	if config.UserAgentPrefix != "" {
		ua = fmt.Sprintf("%s %s", config.UserAgentPrefix, ua)
	}

	return &ACMENet{
		httpClient: httpClient,
		userAgent:  ua,
	}, nil
}

// NetResponse holds the results from calling Do with an HTTP Request.
type NetResponse struct {
	// The HTTP Response object from making the request.
	Response *http.Response
	// The response body. The body on the Response has already been
	// consumed and can not be read again.
	RespBody []byte
}

// Do performs an HTTP request, returning a pointer to a NetResponse
// instance or an error. User-Agent and Accept-Language headers are
// automatically added to the request.
func (c *ACMENet) Do(req *http.Request) (*NetResponse, error) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", locale)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &NetResponse{
		Response: resp,
		RespBody: respBody,
	}, nil
}

// HeadURL issues a HEAD request to the given URL.
func (c *ACMENet) HeadURL(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", locale)
	return c.httpClient.Do(req)
}

// PostRequest constructs a POST request to the given URL with the given
// body and the "application/jose+json" content type all ACME writes use.
func (c *ACMENet) PostRequest(url string, body []byte) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/jose+json")
	return req, nil
}

// PostURL POSTs the given body to the given URL. This is a wrapper
// combining PostRequest and Do.
func (c *ACMENet) PostURL(url string, body []byte) (*NetResponse, error) {
	req, err := c.PostRequest(url, body)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// GetURL issues a GET request to the given URL.
func (c *ACMENet) GetURL(url string) (*NetResponse, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}
