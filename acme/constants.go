// Package acme provides ACME protocol constants, problem documents and
// error types. See RFC 8555.
package acme

const (
	// Directory constants
	// See https://tools.ietf.org/html/rfc8555#section-9.7.5

	// The ACME directory key for the newNonce endpoint
	NEW_NONCE_ENDPOINT = "newNonce"
	// The ACME directory key for the newAccount endpoint.
	NEW_ACCOUNT_ENDPOINT = "newAccount"
	// The ACME directory key for the newOrder endpoint.
	NEW_ORDER_ENDPOINT = "newOrder"
	// The ACME directory key for the revokeCert endpoint.
	REVOKE_CERT_ENDPOINT = "revokeCert"
	// The ACME directory key for the keyChange endpoint.
	KEY_CHANGE_ENDPOINT = "keyChange"

	// The HTTP response header used by ACME to communicate a fresh nonce. See
	// https://tools.ietf.org/html/rfc8555#section-9.3
	REPLAY_NONCE_HEADER = "Replay-Nonce"
	// The HTTP response header carrying the URL of a created resource.
	LOCATION_HEADER = "Location"
	// The HTTP response header used to communicate a polling delay hint.
	RETRY_AFTER_HEADER = "Retry-After"

	// Content types recognized on ACME requests and responses. See
	// https://tools.ietf.org/html/rfc8555#section-6.2
	JOSE_JSON_CONTENT_TYPE    = "application/jose+json"
	JSON_CONTENT_TYPE         = "application/json"
	PROBLEM_JSON_CONTENT_TYPE = "application/problem+json"
	PEM_CHAIN_CONTENT_TYPE    = "application/pem-certificate-chain"
)

// Resource status values. See
// https://tools.ietf.org/html/rfc8555#section-7.1.6
const (
	StatusPending     = "pending"
	StatusReady       = "ready"
	StatusProcessing  = "processing"
	StatusValid       = "valid"
	StatusInvalid     = "invalid"
	StatusDeactivated = "deactivated"
	StatusExpired     = "expired"
	StatusRevoked     = "revoked"
)

// Challenge types specified by RFC 8555 and RFC 8737.
const (
	ChallengeTypeDNS01     = "dns-01"
	ChallengeTypeHTTP01    = "http-01"
	ChallengeTypeTLSALPN01 = "tls-alpn-01"
)

// The identifier type supported by this client. See
// https://tools.ietf.org/html/rfc8555#section-9.7.7
const IdentifierTypeDNS = "dns"

// ACME error type URNs. See
// https://tools.ietf.org/html/rfc8555#section-6.7
const (
	errorNamespace = "urn:ietf:params:acme:error:"

	ErrorTypeBadNonce                = errorNamespace + "badNonce"
	ErrorTypeMalformed               = errorNamespace + "malformed"
	ErrorTypeAccountDoesNotExist     = errorNamespace + "accountDoesNotExist"
	ErrorTypeAgreementRequired       = errorNamespace + "agreementRequired"
	ErrorTypeUnauthorized            = errorNamespace + "unauthorized"
	ErrorTypeRateLimited             = errorNamespace + "rateLimited"
	ErrorTypeExternalAccountRequired = errorNamespace + "externalAccountRequired"
)

// Certificate revocation reason codes. See
// https://tools.ietf.org/html/rfc5280#section-5.3.1
const (
	ReasonUnspecified          = 0
	ReasonKeyCompromise        = 1
	ReasonCACompromise         = 2
	ReasonAffiliationChanged   = 3
	ReasonSuperseded           = 4
	ReasonCessationOfOperation = 5
	ReasonCertificateHold      = 6
	ReasonRemoveFromCRL        = 8
	ReasonPrivilegeWithdrawn   = 9
	ReasonAACompromise         = 10
)

// ReasonAliases maps the named revocation reasons accepted by the
// revocation builder to their RFC 5280 codes.
var ReasonAliases = map[string]int{
	"unspecified":            ReasonUnspecified,
	"key_compromise":         ReasonKeyCompromise,
	"affiliation_changed":    ReasonAffiliationChanged,
	"superseded":             ReasonSuperseded,
	"cessation_of_operation": ReasonCessationOfOperation,
}

// Well known directory URLs, keyed by the aliases accepted in
// a ClientConfig DirectoryURL.
var directoryAliases = map[string]string{
	"lets_encrypt":         "https://acme-v02.api.letsencrypt.org/directory",
	"lets_encrypt_staging": "https://acme-staging-v02.api.letsencrypt.org/directory",
	"zerossl":              "https://acme.zerossl.com/v2/DV90",
}

// ResolveDirectoryURL expands a well known directory alias
// ("lets_encrypt", "lets_encrypt_staging", "zerossl") to its directory
// URL. Values that are not aliases are returned unchanged.
func ResolveDirectoryURL(value string) string {
	if url, ok := directoryAliases[value]; ok {
		return url
	}
	return value
}
