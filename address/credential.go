// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package address

import (
	"crypto/ed25519"
	"fmt"

	"github.com/complex-gh/adawallet/codec"
	"golang.org/x/crypto/blake2b"
)

// KeyHashSize is the length of a credential: a Blake2b-224 digest.
const KeyHashSize = 28

// KeyHash is the hash of a verification key, used as a payment or stake
// credential inside addresses.
type KeyHash [KeyHashSize]byte

// HashKey returns the Blake2b-224 digest of a raw 32-byte Ed25519 public key.
func HashKey(pub ed25519.PublicKey) (KeyHash, error) {
	var kh KeyHash
	if len(pub) != ed25519.PublicKeySize {
		return kh, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrInvalidKey, ed25519.PublicKeySize, len(pub))
	}
	h, err := blake2b.New(KeyHashSize, nil)
	if err != nil {
		return kh, fmt.Errorf("could not create blake2b-224 hasher: %w", err)
	}
	h.Write(pub)
	copy(kh[:], h.Sum(nil))
	return kh, nil
}

// KeyHashFromBytes copies a 28-byte slice into a KeyHash.
func KeyHashFromBytes(b []byte) (KeyHash, error) {
	var kh KeyHash
	if len(b) != KeyHashSize {
		return kh, fmt.Errorf("%w: key hash must be %d bytes, got %d", ErrInvalidKey, KeyHashSize, len(b))
	}
	copy(kh[:], b)
	return kh, nil
}

// Bytes returns the hash as a slice.
func (kh KeyHash) Bytes() []byte {
	return kh[:]
}

// Hex returns the lowercase hex form.
func (kh KeyHash) Hex() string {
	return codec.Hex(kh[:])
}

// String implements fmt.Stringer.
func (kh KeyHash) String() string {
	return kh.Hex()
}

// Bech32 encodes the hash under prefix, normally codec.PrefixPaymentKeyHash
// or codec.PrefixStakeKeyHash.
func (kh KeyHash) Bech32(prefix string) (string, error) {
	return codec.Encode(prefix, kh[:])
}
