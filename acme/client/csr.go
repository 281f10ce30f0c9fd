package client

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// PEMCSR is the PEM encoding of an x509 Certificate Signing Request (CSR)
type PEMCSR string

// B64CSR is the Base64URLSafe encoding of an x509 Certificate Signing
// Request (CSR), as used in an order finalize request body.
type B64CSR string

// CSR produces a CertificateSigningRequest for the provided names,
// signed by the given private key. The key should not be the account
// key (see https://tools.ietf.org/html/rfc8555#section-11.1). The first
// name becomes the CommonName and all names are included as SANs. CSR
// returns the base64url-no-pad encoding of the DER CSR (the finalize
// wire form), the PEM encoding, and the raw DER.
func CSR(privateKey crypto.Signer, names []string) (B64CSR, PEMCSR, []byte, error) {
	if len(names) == 0 {
		return "", "", nil, fmt.Errorf("no names specified")
	}

	template := x509.CertificateRequest{
		Subject: pkix.Name{
			CommonName: names[0],
		},
		DNSNames: names,
	}

	csrBytes, err := x509.CreateCertificateRequest(rand.Reader, &template, privateKey)
	if err != nil {
		return "", "", nil, err
	}

	pemBytes := pem.EncodeToMemory(&pem.Block{
		Type: "CERTIFICATE REQUEST", Bytes: csrBytes,
	})

	return B64CSR(base64.RawURLEncoding.EncodeToString(csrBytes)),
		PEMCSR(pemBytes),
		csrBytes,
		nil
}
