package resources

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtdowney/ex-acme/acme"
)

func TestUnmarshalDirectory(t *testing.T) {
	body := []byte(`{
		"newNonce": "https://example.com/acme/new-nonce",
		"newAccount": "https://example.com/acme/new-acct",
		"newOrder": "https://example.com/acme/new-order",
		"revokeCert": "https://example.com/acme/revoke-cert",
		"keyChange": "https://example.com/acme/key-change",
		"meta": {
			"termsOfService": "https://example.com/acme/terms/2021-10-05",
			"website": "https://example.com",
			"caaIdentities": ["example.com"],
			"externalAccountRequired": true,
			"profiles": {
				"classic": "The same profile you're accustomed to",
				"shortlived": "A short-lived cert profile"
			}
		}
	}`)

	dir, err := UnmarshalDirectory(body)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/acme/new-nonce", dir.NewNonce)
	assert.True(t, dir.Meta.ExternalAccountRequired)
	assert.Equal(t, []string{"example.com"}, dir.Meta.CAAIdentities)
	assert.Len(t, dir.Meta.Profiles, 2)
	assert.Contains(t, dir.Meta.Profiles, "shortlived")

	url, ok := dir.Endpoint(acme.NEW_ORDER_ENDPOINT)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/acme/new-order", url)

	// newAuthz is optional and was not advertised.
	_, ok = dir.Endpoint("newAuthz")
	assert.False(t, ok)

	_, ok = dir.Endpoint("renewalInfo")
	assert.False(t, ok)
}

func TestUnmarshalAccount(t *testing.T) {
	body := []byte(`{
		"status": "valid",
		"contact": ["mailto:admin@example.com"],
		"termsOfServiceAgreed": true,
		"orders": "https://example.com/acme/acct/1/orders"
	}`)

	acct, err := UnmarshalAccount(body, "https://example.com/acme/acct/1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/acme/acct/1", acct.URL)
	assert.Equal(t, acme.StatusValid, acct.Status)
	assert.Equal(t, []string{"mailto:admin@example.com"}, acct.Contact)
	assert.True(t, acct.TermsOfServiceAgreed)
	assert.Equal(t, acct.URL, acct.String())
}

func TestUnmarshalOrder(t *testing.T) {
	body := []byte(`{
		"status": "pending",
		"expires": "2023-05-08T12:00:00Z",
		"identifiers": [
			{"type": "dns", "value": "example.com"},
			{"type": "dns", "value": "www.example.com"}
		],
		"profile": "shortlived",
		"authorizations": [
			"https://example.com/acme/authz/1",
			"https://example.com/acme/authz/2"
		],
		"finalize": "https://example.com/acme/order/1/finalize"
	}`)

	order, err := UnmarshalOrder(body, "https://example.com/acme/order/1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/acme/order/1", order.URL)
	assert.Equal(t, acme.StatusPending, order.Status)
	require.NotNil(t, order.Expires)
	assert.Equal(t, time.Date(2023, 5, 8, 12, 0, 0, 0, time.UTC), order.Expires.UTC())
	assert.Len(t, order.Identifiers, 2)
	assert.Equal(t, "shortlived", order.Profile)
	assert.Len(t, order.Authorizations, 2)
	assert.Empty(t, order.Certificate)
	assert.Nil(t, order.Error)
}

func TestUnmarshalOrderWithError(t *testing.T) {
	body := []byte(`{
		"status": "invalid",
		"identifiers": [{"type": "dns", "value": "example.com"}],
		"authorizations": [],
		"finalize": "https://example.com/acme/order/2/finalize",
		"error": {
			"type": "urn:ietf:params:acme:error:unauthorized",
			"detail": "authorization expired",
			"status": 403
		}
	}`)

	order, err := UnmarshalOrder(body, "https://example.com/acme/order/2")
	require.NoError(t, err)
	require.NotNil(t, order.Error)
	assert.True(t, order.Error.IsType(acme.ErrorTypeUnauthorized))
}

func TestUnmarshalOrderMalformedTimestamp(t *testing.T) {
	body := []byte(`{
		"status": "pending",
		"expires": "next tuesday",
		"identifiers": [{"type": "dns", "value": "example.com"}],
		"authorizations": [],
		"finalize": "https://example.com/acme/order/3/finalize"
	}`)

	_, err := UnmarshalOrder(body, "https://example.com/acme/order/3")
	assert.True(t, errors.Is(err, acme.ErrInvalidTimestamp),
		"expected ErrInvalidTimestamp, got %v", err)
}

func TestUnmarshalAuthorization(t *testing.T) {
	body := []byte(`{
		"status": "pending",
		"identifier": {"type": "dns", "value": "example.com"},
		"expires": "2023-05-08T12:00:00Z",
		"wildcard": true,
		"challenges": [
			{
				"type": "dns-01",
				"url": "https://example.com/acme/chall/1",
				"token": "LoqXcYV8q5ONbJQxbmR7SCTNo3tiAXDfowyjxAjEuX0",
				"status": "pending"
			}
		]
	}`)

	authz, err := UnmarshalAuthorization(body, "https://example.com/acme/authz/1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/acme/authz/1", authz.URL)
	assert.Equal(t, "example.com", authz.Identifier.Value)
	assert.True(t, authz.Wildcard)

	chall, ok := authz.ChallengeByType(acme.ChallengeTypeDNS01)
	require.True(t, ok)
	assert.Equal(t, "LoqXcYV8q5ONbJQxbmR7SCTNo3tiAXDfowyjxAjEuX0", chall.Token)

	_, ok = authz.ChallengeByType(acme.ChallengeTypeTLSALPN01)
	assert.False(t, ok)
}

func TestUnmarshalChallenge(t *testing.T) {
	body := []byte(`{
		"type": "http-01",
		"url": "https://example.com/acme/chall/2",
		"token": "evaGxfADs6pSRb2LAv9IZf17Dt3juxGJ-PCt92wr-oA",
		"status": "valid",
		"validated": "2023-05-01T12:05:00Z"
	}`)

	chall, err := UnmarshalChallenge(body, "https://example.com/acme/chall/2")
	require.NoError(t, err)
	assert.Equal(t, acme.ChallengeTypeHTTP01, chall.Type)
	assert.Equal(t, acme.StatusValid, chall.Status)
	require.NotNil(t, chall.Validated)

	// A body without its own URL falls back to the fetch URL.
	bare, err := UnmarshalChallenge([]byte(`{"type": "dns-01", "token": "x"}`),
		"https://example.com/acme/chall/3")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/acme/chall/3", bare.URL)
}
