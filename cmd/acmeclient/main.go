// acmeclient provides a developer-oriented command-line shell for
// exercising the ex-acme client library against an ACME server.
package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	acmeclient "github.com/jtdowney/ex-acme/acme/client"
	"github.com/jtdowney/ex-acme/cmd"
	"github.com/jtdowney/ex-acme/shell"
)

const (
	DIRECTORY_DEFAULT = "lets_encrypt_staging"
	CA_DEFAULT        = "/etc/ssl/cert.pem"
	CONTACT_DEFAULT   = ""
	KEY_DEFAULT       = ""
	HTTP_PORT_DEFAULT = 5002
	TLS_PORT_DEFAULT  = 5001
	DNS_PORT_DEFAULT  = 5252
)

func main() {
	directory := flag.String(
		"directory",
		DIRECTORY_DEFAULT,
		"Directory URL or alias (lets_encrypt, lets_encrypt_staging, zerossl) for ACME server")

	caCert := flag.String(
		"ca",
		CA_DEFAULT,
		"CA certificate(s) for verifying ACME server HTTPS")

	email := flag.String(
		"contact",
		CONTACT_DEFAULT,
		"Optional contact email address for account registration")

	keyPath := flag.String(
		"key",
		KEY_DEFAULT,
		"Optional JSON filepath to save/restore the account key to")

	httpPort := flag.Int(
		"httpPort",
		HTTP_PORT_DEFAULT,
		"HTTP-01 challenge server port")

	tlsPort := flag.Int(
		"tlsPort",
		TLS_PORT_DEFAULT,
		"TLS-ALPN-01 challenge server port")

	dnsPort := flag.Int(
		"dnsPort",
		DNS_PORT_DEFAULT,
		"DNS-01 challenge server port")

	pebble := flag.Bool(
		"pebble",
		false,
		"Use Pebble defaults")

	verbose := flag.Bool(
		"verbose",
		false,
		"Enable debug logging")

	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *pebble {
		pebbleDirectory := "https://localhost:14000/dir"
		directory = &pebbleDirectory
		pebbleBaseDir := os.Getenv("GOPATH")
		pebbleCA := pebbleBaseDir + "/src/github.com/letsencrypt/pebble/test/certs/pebble.minica.pem"
		caCert = &pebbleCA
	}

	opts := &shell.Options{
		ClientConfig: acmeclient.ClientConfig{
			DirectoryURL: *directory,
			CACert:       *caCert,
		},
		ContactEmail: *email,
		KeyPath:      *keyPath,
		HTTPPort:     *httpPort,
		TLSPort:      *tlsPort,
		DNSPort:      *dnsPort,
	}

	sh, err := shell.New(opts)
	cmd.FailOnError(err, "unable to create shell")
	sh.Run()
}
