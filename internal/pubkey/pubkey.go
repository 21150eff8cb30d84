// Package pubkey validates Solana-style addresses at the service boundary.
// Core classification never rejects records on address validity; the
// positional user-wallet convention is preserved as-is.
package pubkey

import (
	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// pubkeyLen is the byte length of an ed25519 public key.
const pubkeyLen = 32

// IsValid reports whether s decodes as a 32-byte base58 value.
func IsValid(s string) bool {
	if s == "" {
		return false
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == pubkeyLen
}

// IsOnCurve reports whether s decodes to a point on the ed25519 curve.
// Wallet addresses are on-curve; program-derived addresses are not.
func IsOnCurve(s string) bool {
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != pubkeyLen {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
