package resources

// Directory is the root JSON document advertised by an ACME server. It
// maps operation names to endpoint URLs and carries server metadata. It
// is fetched once at client bootstrap and immutable afterwards.
//
// See https://tools.ietf.org/html/rfc8555#section-7.1.1
type Directory struct {
	NewNonce   string `json:"newNonce"`
	NewAccount string `json:"newAccount"`
	NewOrder   string `json:"newOrder"`
	NewAuthz   string `json:"newAuthz,omitempty"`
	RevokeCert string `json:"revokeCert"`
	KeyChange  string `json:"keyChange"`

	Meta DirectoryMeta `json:"meta"`
}

// DirectoryMeta is the "meta" block of a Directory. Profile names are
// opaque server-side strings and are never validated client-side.
type DirectoryMeta struct {
	TermsOfService          string            `json:"termsOfService"`
	Website                 string            `json:"website"`
	CAAIdentities           []string          `json:"caaIdentities"`
	ExternalAccountRequired bool              `json:"externalAccountRequired"`
	Profiles                map[string]string `json:"profiles"`
}

// UnmarshalDirectory decodes a directory document.
func UnmarshalDirectory(data []byte) (*Directory, error) {
	var dir Directory
	if err := decode("directory", data, &dir); err != nil {
		return nil, err
	}
	return &dir, nil
}

// Endpoint returns the URL for a directory endpoint key (e.g.
// "newNonce"). The second return value is false when the server did not
// advertise the endpoint.
func (d *Directory) Endpoint(name string) (string, bool) {
	var url string
	switch name {
	case "newNonce":
		url = d.NewNonce
	case "newAccount":
		url = d.NewAccount
	case "newOrder":
		url = d.NewOrder
	case "newAuthz":
		url = d.NewAuthz
	case "revokeCert":
		url = d.RevokeCert
	case "keyChange":
		url = d.KeyChange
	}
	return url, url != ""
}
