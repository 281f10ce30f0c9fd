// Package shell provides an interactive developer shell for exercising
// the ACME client library against a live server (Pebble or a staging
// environment). The shell embeds a challtestsrv instance so challenge
// responses can be served during development; the library core itself
// contains no challenge fulfillment code.
package shell

import (
	"crypto/ecdsa"
	"fmt"
	"io"
	stdlog "log"
	"os"

	"github.com/abiosoft/ishell"
	"github.com/abiosoft/readline"
	"github.com/letsencrypt/challtestsrv"
	log "github.com/sirupsen/logrus"

	acmeclient "github.com/jtdowney/ex-acme/acme/client"
	"github.com/jtdowney/ex-acme/acme/keys"
)

// BasePrompt is the shell prompt.
const BasePrompt = "acme> "

// Session state key for the account key, which commands replace after
// registration and rollover.
const acctKeyKey = "key"

// Options configures a Shell: the client configuration plus the ports
// the embedded challenge response server listens on.
type Options struct {
	acmeclient.ClientConfig
	// Optional contact email used when registering an account.
	ContactEmail string
	// Optional path the account key is restored from and saved to.
	KeyPath string
	// Port number the ACME server validates HTTP-01 challenges over.
	HTTPPort int
	// Port number the ACME server validates TLS-ALPN-01 challenges over.
	TLSPort int
	// Port number the ACME server validates DNS-01 challenges over.
	DNSPort int
}

// Shell is an ishell.Shell wired up with the ACME commands.
type Shell struct {
	*ishell.Shell

	client   *acmeclient.Client
	challSrv *challtestsrv.ChallSrv

	contactEmail string
	keyPath      string
	// URLs of orders created during the session.
	orders []string
	// Certificate private keys generated by finalize, by order URL.
	certKeys map[string]*ecdsa.PrivateKey
	// PEM chain from the most recent getCert, fed to revoke.
	lastCertPEM []byte
}

// New creates a Shell: an ACME client, an account key (restored from
// Options.KeyPath when the file exists, freshly generated otherwise),
// and a challtestsrv instance. The challenge server does not listen
// until Run is called.
func New(opts *Options) (*Shell, error) {
	client, err := acmeclient.NewClient(opts.ClientConfig)
	if err != nil {
		return nil, err
	}

	key, err := loadOrGenerateKey(opts.KeyPath)
	if err != nil {
		return nil, err
	}

	challSrv, err := challtestsrv.New(challtestsrv.Config{
		HTTPOneAddrs:    []string{fmt.Sprintf(":%d", opts.HTTPPort)},
		DNSOneAddrs:     []string{fmt.Sprintf(":%d", opts.DNSPort)},
		TLSALPNOneAddrs: []string{fmt.Sprintf(":%d", opts.TLSPort)},
		Log:             stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return nil, err
	}

	sh := ishell.NewWithConfig(&readline.Config{
		Prompt: BasePrompt,
	})

	shell := &Shell{
		Shell:        sh,
		client:       client,
		challSrv:     challSrv,
		contactEmail: opts.ContactEmail,
		keyPath:      opts.KeyPath,
		certKeys:     make(map[string]*ecdsa.PrivateKey),
	}
	shell.setKey(key)
	shell.registerCommands()
	return shell, nil
}

// Run starts the challenge response server and the interactive shell,
// blocking until the shell exits.
func (s *Shell) Run() {
	go s.challSrv.Run()
	defer s.challSrv.Shutdown()

	log.WithField("directory", s.client.DirectoryURL).Info("starting shell")
	s.Shell.Run()
}

// setKey replaces the session account key and makes it visible to
// command contexts.
func (s *Shell) setKey(key *keys.Key) {
	s.Set(acctKeyKey, key)
}

// key returns the session account key.
func (s *Shell) key(c *ishell.Context) *keys.Key {
	return c.Get(acctKeyKey).(*keys.Key)
}

// saveKey persists the session key when a key path was configured.
func (s *Shell) saveKey(key *keys.Key) {
	if s.keyPath == "" {
		return
	}
	if err := keys.Save(s.keyPath, key); err != nil {
		log.WithError(err).Warnf("unable to save account key to %q", s.keyPath)
		return
	}
	log.WithField("path", s.keyPath).Info("saved account key")
}

func loadOrGenerateKey(path string) (*keys.Key, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			key, err := keys.Restore(path)
			if err != nil {
				return nil, fmt.Errorf("restoring key from %q: %w", path, err)
			}
			log.WithField("path", path).Info("restored account key")
			return key, nil
		}
	}
	return keys.Generate(keys.DefaultKeyType)
}
