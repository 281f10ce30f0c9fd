// Package client provides a low-level ACME v2 client.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/jtdowney/ex-acme/acme"
	"github.com/jtdowney/ex-acme/acme/resources"
	acmenet "github.com/jtdowney/ex-acme/net"
)

// Client allows interaction with an ACME server. A Client owns the
// server's directory (fetched once at bootstrap and immutable
// afterwards), a one-slot replay nonce cache, and the HTTP transport.
// It is safe for concurrent use by multiple goroutines; the nonce cache
// is the only shared mutable state and is guarded by a short-held lock.
//
// Account keys are not owned by the Client. Every operation takes the
// *keys.Key that should authenticate it, so one Client can serve any
// number of accounts.
type Client struct {
	// A parsed *url.URL pointer for the ACME server's directory URL.
	DirectoryURL *url.URL

	// the net object is used to make HTTP GET/POST/HEAD requests to the
	// ACME server.
	net *acmenet.ACMENet
	// directory is the server's directory document, immutable after
	// bootstrap.
	directory *resources.Directory

	// nonce holds at most one unused replay nonce. Reads consume it;
	// every server response replaces it.
	nonceMu sync.Mutex
	nonce   string
}

// ClientConfig contains configuration options provided to NewClient when
// creating a Client instance.
type ClientConfig struct {
	// The URL for the ACME server's directory resource, or one of the
	// well known aliases "lets_encrypt", "lets_encrypt_staging",
	// "zerossl". Mandatory.
	DirectoryURL string
	// An optional file path to one or more PEM encoded CA certificates
	// to be used as trust roots for HTTPS requests to the ACME server.
	CACert string
	// An optional prefix for the User-Agent header sent with every
	// request. The client version is appended.
	UserAgentPrefix string
	// An optional caller-supplied HTTP client. Timeouts, proxies and
	// transport-level retries are its concern; the core performs no
	// retries of its own beyond the single bad-nonce recovery.
	HTTPClient *http.Client
}

// normalize validates a ClientConfig and expands directory aliases.
func (conf *ClientConfig) normalize() error {
	// Clean up any junk whitespace that might have snuck in
	conf.DirectoryURL = strings.TrimSpace(conf.DirectoryURL)
	conf.DirectoryURL = acme.ResolveDirectoryURL(conf.DirectoryURL)

	if conf.DirectoryURL == "" {
		return fmt.Errorf("DirectoryURL must not be empty")
	}

	if _, err := url.Parse(conf.DirectoryURL); err != nil {
		return fmt.Errorf("DirectoryURL invalid: %s", err.Error())
	}

	return nil
}

// NewClient creates a Client instance from the given ClientConfig. The
// server's directory is fetched during bootstrap; if that fails no
// Client is produced. The nonce cache starts empty and is filled lazily
// by the first signed request.
func NewClient(config ClientConfig) (*Client, error) {
	if err := config.normalize(); err != nil {
		return nil, err
	}

	net, err := acmenet.New(acmenet.Config{
		CABundlePath:    config.CACert,
		UserAgentPrefix: config.UserAgentPrefix,
		HTTPClient:      config.HTTPClient,
	})
	if err != nil {
		return nil, err
	}

	// NOTE: Its safe to throw away the returned err here because we check
	// that `url.Parse` will succeed in `config.normalize()` above.
	dirURL, _ := url.Parse(config.DirectoryURL)

	client := &Client{
		DirectoryURL: dirURL,
		net:          net,
	}

	if err := client.fetchDirectory(); err != nil {
		return nil, err
	}

	return client, nil
}

// fetchDirectory loads and decodes the server's directory document.
func (c *Client) fetchDirectory() error {
	url := c.DirectoryURL.String()

	resp, err := c.net.GetURL(url)
	if err != nil {
		return fmt.Errorf("fetching directory %q: %w", url, err)
	}
	if resp.Response.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching directory %q: unexpected status %d",
			url, resp.Response.StatusCode)
	}

	directory, err := resources.UnmarshalDirectory(resp.RespBody)
	if err != nil {
		return err
	}

	c.directory = directory
	log.WithField("directory", url).Debug("loaded directory")
	return nil
}

// Directory returns the server's directory document.
func (c *Client) Directory() *resources.Directory {
	return c.directory
}

// TermsOfService returns the server's terms of service URL, or an empty
// string when the server does not advertise one.
func (c *Client) TermsOfService() string {
	return c.directory.Meta.TermsOfService
}

// Profiles returns the certificate profiles offered by the server. The
// map keys are profile names, the values human readable descriptions.
// Profile names are opaque and not validated client-side.
func (c *Client) Profiles() map[string]string {
	return c.directory.Meta.Profiles
}

// ExternalAccountRequired reports whether the server requires new
// accounts to carry an external account binding. Defaults to false when
// the directory meta omits the field.
func (c *Client) ExternalAccountRequired() bool {
	return c.directory.Meta.ExternalAccountRequired
}

// endpointURL looks up a directory endpoint by key, failing when the
// server does not advertise it.
func (c *Client) endpointURL(name string) (string, error) {
	url, ok := c.directory.Endpoint(name)
	if !ok {
		return "", fmt.Errorf("ACME server missing %q endpoint in directory", name)
	}
	return url, nil
}
