// Package crypto provides key derivation for the block object graph.
//
// It supports BIP-39 mnemonics and SLIP-10 ed25519 derivation along hardened Bip44 chains.
package crypto

import (
	"crypto/rand"
)

const (
	EdSeedLength       = 32
	EdPrivateKeyLength = 64
)

// RandomBytes returns size bytes from the system random source.
func RandomBytes(size int) []byte {
	r := make([]byte, size)
	if _, err := rand.Read(r); err != nil {
		panic(err)
	}
	return r
}
