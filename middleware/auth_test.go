package middleware

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/charmbracelet/ssh"
	"github.com/lens-forum/app/util"
	gossh "golang.org/x/crypto/ssh"
)

func newKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	pk, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("Failed to convert key: %v", err)
	}
	return pk
}

func TestResolveAccount(t *testing.T) {
	known := newKey(t)
	unknown := newKey(t)

	conf := &util.AppConfig{}
	conf.Accounts = []util.AccountConf{{
		Handle:    "alice",
		Name:      "Alice",
		Account:   "0xa11ce",
		Wallet:    "0xwa11et",
		PublicKey: util.PublicKeyToString(known) + " alice@laptop",
	}}

	acc := ResolveAccount(conf, known)
	if !acc.IsLoggedIn() || acc.Handle != "alice" || acc.WalletAddress != "0xwa11et" {
		t.Errorf("Expected alice, got %+v", acc)
	}
	if acc.PublicKeyHash != util.PkToHash(util.PublicKeyToString(known)) {
		t.Error("Expected the key hash to be recorded")
	}

	guest := ResolveAccount(conf, unknown)
	if guest.IsLoggedIn() {
		t.Errorf("Unknown key should be read-only, got %+v", guest)
	}
	if guest.PublicKeyHash == "" {
		t.Error("Unknown key should still carry its hash")
	}

	if ResolveAccount(conf, nil).IsLoggedIn() {
		t.Error("Missing key should be read-only")
	}
}

func TestAccountFromConf(t *testing.T) {
	acc := AccountFromConf(util.AccountConf{Handle: "bob", Account: "0xb0b"}, "hash")

	if acc.Name() != "bob" || acc.AccountAddress != "0xb0b" || acc.PublicKeyHash != "hash" {
		t.Errorf("Unexpected account %+v", acc)
	}
}
