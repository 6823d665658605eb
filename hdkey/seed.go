// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package hdkey implements Ed25519-BIP32 hierarchical deterministic keys as
// used by Cardano wallets: root generation from BIP39 entropy, hardened and
// soft child derivation, and the CIP-1852 derivation path.
//
// This is not the secp256k1 BIP32 scheme. Private keys are 64-byte extended
// Ed25519 scalars (kL||kR) and child keys are obtained by adding multiples of
// the HMAC output to the parent scalar without reducing modulo the group
// order, so that public derivation stays possible.
package hdkey

import (
	"crypto/sha512"
	"errors"
	"fmt"

	"github.com/complex-gh/adawallet/secret"
	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrInvalidEntropyLength is returned when entropy is not 128, 160, 192,
	// 224 or 256 bits long.
	ErrInvalidEntropyLength = errors.New("invalid entropy length")

	// ErrInvalidIndex is returned when a raw child index already has the
	// hardened bit set.
	ErrInvalidIndex = errors.New("invalid child index")

	// ErrHardenedPublicDerivation is returned when a hardened child is
	// requested from a public key.
	ErrHardenedPublicDerivation = errors.New("hardened derivation requires a private key")

	// ErrDerivationFailed signals an internal curve arithmetic failure. It
	// cannot happen for keys produced by this package.
	ErrDerivationFailed = errors.New("key derivation failed")
)

// pbkdf2Iterations and rootKeySize define the root generation from entropy.
const (
	pbkdf2Iterations = 4096
	rootKeySize      = 96
)

// validEntropySizes lists the permitted BIP39 entropy sizes in bytes.
var validEntropySizes = map[int]bool{
	16: true, // 128 bits, 12 words
	20: true, // 160 bits, 15 words
	24: true, // 192 bits, 18 words
	28: true, // 224 bits, 21 words
	32: true, // 256 bits, 24 words
}

// ValidEntropySize reports whether n bytes is a permitted entropy length.
func ValidEntropySize(n int) bool {
	return validEntropySizes[n]
}

// NewRootFromEntropy derives the root extended private key from BIP39
// entropy and an optional passphrase.
//
// The 96 bytes of PBKDF2-HMAC-SHA512(passphrase, entropy, 4096) are split
// into kL, kR and the chain code. kL is clamped so that it is a multiple of
// eight with the second highest bit set and the top three bits otherwise
// clear; the clamping is what makes the key usable as an Ed25519 scalar.
//
// The entropy is the raw BIP39 entropy, not the BIP39 seed: Cardano wallets
// skip the mnemonic-to-seed PBKDF2 step.
func NewRootFromEntropy(entropy, passphrase []byte) (*XPrv, error) {
	if !ValidEntropySize(len(entropy)) {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidEntropyLength, len(entropy))
	}

	k := secret.Wrap(pbkdf2.Key(passphrase, entropy, pbkdf2Iterations, rootKeySize, sha512.New))
	defer k.Destroy()

	raw := k.Expose()
	raw[0] &= 0b1111_1000
	raw[31] &= 0b0001_1111
	raw[31] |= 0b0100_0000

	return newXPrv(raw[:ExtendedKeySize], raw[ExtendedKeySize:])
}
