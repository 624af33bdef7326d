package weavetest

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/poa"
	"golang.org/x/crypto/ed25519"
)

// NewKey returns a fresh ed25519 key pair.
func NewKey() (ed25519.PublicKey, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return pub, priv
}

// NewCondition returns the signature condition of a fresh ed25519 key, in the
// same format x/sigs produces.
func NewCondition() poa.Condition {
	pub, _ := NewKey()
	return poa.NewCondition("sigs", "ed25519", pub)
}

// NewPubKey returns a fresh ed25519 public key.
func NewPubKey() []byte {
	pub, _ := NewKey()
	return pub
}

// ParseAddress takes an address in a human readable format and returns its
// binary representation.
func ParseAddress(t testing.TB, encoded string) poa.Address {
	t.Helper()

	addr, err := poa.ParseAddress(encoded)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encoded, err)
	}
	return addr
}
