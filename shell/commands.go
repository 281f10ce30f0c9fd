package shell

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/jtdowney/ex-acme/acme"
	acmeclient "github.com/jtdowney/ex-acme/acme/client"
	"github.com/jtdowney/ex-acme/acme/keys"
)

// registerCommands adds the ACME commands to the shell.
func (s *Shell) registerCommands() {
	s.AddCmd(&ishell.Cmd{
		Name: "directory",
		Help: "Print the server's directory resource",
		Func: s.directoryHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "register",
		Help: "Register an account for the session key: register [email]",
		Func: s.registerHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "account",
		Help: "Fetch the account bound to the session key",
		Func: s.accountHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "newOrder",
		Help: "Create an order: newOrder <domain> [domain...]",
		Func: s.newOrderHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "orders",
		Help: "List orders created this session",
		Func: s.ordersHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "getOrder",
		Help: "Fetch an order: getOrder <url|index>",
		Func: s.getOrderHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "getAuthz",
		Help: "Fetch an authorization: getAuthz <url>",
		Func: s.getAuthzHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "getChall",
		Help: "Fetch a challenge: getChall <url>",
		Func: s.getChallHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "keyAuth",
		Help: "Print the key authorization and DNS-01 TXT value for a token: keyAuth <token>",
		Func: s.keyAuthHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "solve",
		Help: "Install a challenge response and trigger validation: solve <authz-url> [dns-01|http-01]",
		Func: s.solveHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "finalize",
		Help: "Generate a certificate key and CSR, then finalize: finalize <url|index>",
		Func: s.finalizeHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "getCert",
		Help: "Download the certificate for a valid order: getCert <url|index>",
		Func: s.getCertHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "revoke",
		Help: "Revoke the last downloaded certificate: revoke [reason]",
		Func: s.revokeHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "rollover",
		Help: "Replace the account key with a freshly generated one",
		Func: s.rolloverHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "deactivateAuthz",
		Help: "Deactivate an authorization: deactivateAuthz <url>",
		Func: s.deactivateAuthzHandler,
	})
	s.AddCmd(&ishell.Cmd{
		Name: "deactivateAccount",
		Help: "Permanently deactivate the session account",
		Func: s.deactivateAccountHandler,
	})
}

// printJSON pretty prints a resource to the shell.
func printJSON(c *ishell.Context, v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		c.Printf("marshaling response: %v\n", err)
		return
	}
	c.Println(string(out))
}

func (s *Shell) directoryHandler(c *ishell.Context) {
	printJSON(c, s.client.Directory())
}

func (s *Shell) registerHandler(c *ishell.Context) {
	email := s.contactEmail
	if len(c.Args) > 0 {
		email = c.Args[0]
	}

	reg := acmeclient.NewRegistration().AgreeToTerms().WithContactEmail(email)
	acct, boundKey, err := s.client.RegisterAccount(s.key(c), reg)
	if err != nil {
		c.Printf("register: %v\n", err)
		return
	}

	s.setKey(boundKey)
	s.saveKey(boundKey)
	c.Printf("account: %s\n", acct.URL)
	printJSON(c, acct)
}

func (s *Shell) accountHandler(c *ishell.Context) {
	acct, err := s.client.FetchAccount(s.key(c))
	if err != nil {
		c.Printf("account: %v\n", err)
		return
	}
	printJSON(c, acct)
}

func (s *Shell) newOrderHandler(c *ishell.Context) {
	if len(c.Args) == 0 {
		c.Println("newOrder requires at least one domain")
		return
	}

	builder := acmeclient.NewOrder().AddDNSIdentifier(c.Args...)
	order, err := s.client.CreateOrder(s.key(c), builder)
	if err != nil {
		c.Printf("newOrder: %v\n", err)
		return
	}

	s.orders = append(s.orders, order.URL)
	c.Printf("order %d: %s\n", len(s.orders)-1, order.URL)
	printJSON(c, order)
}

func (s *Shell) ordersHandler(c *ishell.Context) {
	if len(s.orders) == 0 {
		c.Println("no orders created this session")
		return
	}
	for i, url := range s.orders {
		c.Printf("%3d) %s\n", i, url)
	}
}

// resolveOrderURL accepts either a full order URL or an index into the
// session's order list.
func (s *Shell) resolveOrderURL(arg string) (string, error) {
	if strings.HasPrefix(arg, "http") {
		return arg, nil
	}
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 0 || idx >= len(s.orders) {
		return "", fmt.Errorf("%q is neither an order URL nor a session order index", arg)
	}
	return s.orders[idx], nil
}

func (s *Shell) getOrderHandler(c *ishell.Context) {
	if len(c.Args) != 1 {
		c.Println("getOrder requires an order URL or index")
		return
	}
	url, err := s.resolveOrderURL(c.Args[0])
	if err != nil {
		c.Println(err)
		return
	}

	order, err := s.client.FetchOrder(s.key(c), url)
	if err != nil {
		c.Printf("getOrder: %v\n", err)
		return
	}
	printJSON(c, order)
}

func (s *Shell) getAuthzHandler(c *ishell.Context) {
	if len(c.Args) != 1 {
		c.Println("getAuthz requires an authorization URL")
		return
	}

	authz, err := s.client.FetchAuthorization(s.key(c), c.Args[0])
	if err != nil {
		c.Printf("getAuthz: %v\n", err)
		return
	}
	printJSON(c, authz)
}

func (s *Shell) getChallHandler(c *ishell.Context) {
	if len(c.Args) != 1 {
		c.Println("getChall requires a challenge URL")
		return
	}

	chall, err := s.client.FetchChallenge(s.key(c), c.Args[0])
	if err != nil {
		c.Printf("getChall: %v\n", err)
		return
	}
	printJSON(c, chall)
}

func (s *Shell) keyAuthHandler(c *ishell.Context) {
	if len(c.Args) != 1 {
		c.Println("keyAuth requires a challenge token")
		return
	}

	key := s.key(c)
	token := c.Args[0]
	keyAuth, err := key.KeyAuthorization(token)
	if err != nil {
		c.Printf("keyAuth: %v\n", err)
		return
	}
	txtValue, err := key.DNS01TXTValue(token)
	if err != nil {
		c.Printf("keyAuth: %v\n", err)
		return
	}
	c.Printf("key authorization: %s\n", keyAuth)
	c.Printf("dns-01 TXT value:  %s\n", txtValue)
}

func (s *Shell) solveHandler(c *ishell.Context) {
	if len(c.Args) == 0 {
		c.Println("solve requires an authorization URL")
		return
	}
	challType := acme.ChallengeTypeDNS01
	if len(c.Args) > 1 {
		challType = c.Args[1]
	}

	key := s.key(c)
	authz, err := s.client.FetchAuthorization(key, c.Args[0])
	if err != nil {
		c.Printf("solve: %v\n", err)
		return
	}

	chall, ok := authz.ChallengeByType(challType)
	if !ok {
		c.Printf("authorization offers no %q challenge\n", challType)
		return
	}

	host := authz.Identifier.Value
	switch challType {
	case acme.ChallengeTypeDNS01:
		txtValue, err := key.DNS01TXTValue(chall.Token)
		if err != nil {
			c.Printf("solve: %v\n", err)
			return
		}
		s.challSrv.AddDNSOneChallenge(host, txtValue)
		c.Printf("serving TXT record for _acme-challenge.%s\n", host)
	case acme.ChallengeTypeHTTP01:
		keyAuth, err := key.KeyAuthorization(chall.Token)
		if err != nil {
			c.Printf("solve: %v\n", err)
			return
		}
		s.challSrv.AddHTTPOneChallenge(chall.Token, keyAuth)
		c.Printf("serving key authorization for http://%s/.well-known/acme-challenge/%s\n", host, chall.Token)
	default:
		c.Printf("solve does not support %q challenges\n", challType)
		return
	}

	updated, err := s.client.TriggerChallenge(key, chall.URL)
	if err != nil {
		c.Printf("solve: %v\n", err)
		return
	}
	printJSON(c, updated)
}

func (s *Shell) finalizeHandler(c *ishell.Context) {
	if len(c.Args) != 1 {
		c.Println("finalize requires an order URL or index")
		return
	}
	url, err := s.resolveOrderURL(c.Args[0])
	if err != nil {
		c.Println(err)
		return
	}

	key := s.key(c)
	order, err := s.client.FetchOrder(key, url)
	if err != nil {
		c.Printf("finalize: %v\n", err)
		return
	}

	names := make([]string, len(order.Identifiers))
	for i, ident := range order.Identifiers {
		names[i] = ident.Value
	}

	certKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		c.Printf("finalize: generating certificate key: %v\n", err)
		return
	}

	_, _, csrDER, err := acmeclient.CSR(certKey, names)
	if err != nil {
		c.Printf("finalize: building CSR: %v\n", err)
		return
	}

	finalized, err := s.client.FinalizeOrder(key, order, csrDER)
	if err != nil {
		c.Printf("finalize: %v\n", err)
		return
	}

	s.certKeys[order.URL] = certKey
	printJSON(c, finalized)
}

func (s *Shell) getCertHandler(c *ishell.Context) {
	if len(c.Args) != 1 {
		c.Println("getCert requires an order URL or index")
		return
	}
	url, err := s.resolveOrderURL(c.Args[0])
	if err != nil {
		c.Println(err)
		return
	}

	key := s.key(c)
	order, err := s.client.FetchOrder(key, url)
	if err != nil {
		c.Printf("getCert: %v\n", err)
		return
	}
	if order.Certificate == "" {
		c.Printf("order %s has no certificate URL (status %q)\n", order.URL, order.Status)
		return
	}

	chainPEM, err := s.client.FetchCertificate(key, order.Certificate)
	if err != nil {
		c.Printf("getCert: %v\n", err)
		return
	}

	s.lastCertPEM = chainPEM
	c.Println(string(chainPEM))
}

func (s *Shell) revokeHandler(c *ishell.Context) {
	if len(s.lastCertPEM) == 0 {
		c.Println("no certificate downloaded this session (use getCert first)")
		return
	}

	rev := acmeclient.NewRevocation()
	if err := rev.FromPEM(s.lastCertPEM); err != nil {
		c.Printf("revoke: %v\n", err)
		return
	}
	if len(c.Args) > 0 {
		if err := rev.WithReasonName(c.Args[0]); err != nil {
			c.Printf("revoke: %v\n", err)
			return
		}
	}

	if err := s.client.RevokeCertificate(s.key(c), rev); err != nil {
		c.Printf("revoke: %v\n", err)
		return
	}
	c.Println("certificate revoked")
}

func (s *Shell) rolloverHandler(c *ishell.Context) {
	oldKey := s.key(c)
	newKey, err := keys.Generate(keys.DefaultKeyType)
	if err != nil {
		c.Printf("rollover: %v\n", err)
		return
	}

	boundKey, err := s.client.RolloverKey(oldKey, newKey)
	if err != nil {
		c.Printf("rollover: %v\n", err)
		return
	}

	s.setKey(boundKey)
	s.saveKey(boundKey)
	c.Printf("account %s now uses a fresh %s key\n", boundKey.KID, boundKey.Type)
}

func (s *Shell) deactivateAuthzHandler(c *ishell.Context) {
	if len(c.Args) != 1 {
		c.Println("deactivateAuthz requires an authorization URL")
		return
	}

	authz, err := s.client.DeactivateAuthorization(s.key(c), c.Args[0])
	if err != nil {
		c.Printf("deactivateAuthz: %v\n", err)
		return
	}
	printJSON(c, authz)
}

func (s *Shell) deactivateAccountHandler(c *ishell.Context) {
	c.Print("deactivation is permanent. type the account URL to confirm: ")
	confirm := c.ReadLine()
	key := s.key(c)
	if confirm != key.KID {
		c.Println("confirmation did not match the account URL, aborting")
		return
	}

	acct, err := s.client.DeactivateAccount(key)
	if err != nil {
		c.Printf("deactivateAccount: %v\n", err)
		return
	}
	printJSON(c, acct)
}
