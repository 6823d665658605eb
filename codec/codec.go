// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package codec implements the text encodings used for keys, key hashes and
// addresses: bech32 with a fixed table of human-readable prefixes, and plain
// lowercase hex.
package codec

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

var (
	// ErrChecksumMismatch is returned when a string is not valid bech32:
	// bad checksum, characters outside the charset, a missing separator or
	// mixed case.
	ErrChecksumMismatch = errors.New("bech32 checksum mismatch")

	// ErrUnknownPrefix is returned when a valid bech32 string carries a
	// human-readable part that is not in the prefix table.
	ErrUnknownPrefix = errors.New("unknown bech32 prefix")
)

// Key and key hash prefixes. The ed25519* prefixes are the ones used by the
// serialization library for raw keys; the rest follow CIP-5.
const (
	PrefixSigningKey         = "ed25519_sk"
	PrefixExtendedSigningKey = "ed25519e_sk"
	PrefixVerificationKey    = "ed25519_pk"

	PrefixRootExtendedSigningKey    = "root_xsk"
	PrefixAccountExtendedSigningKey = "acct_xsk"
	PrefixAccountExtendedVerifyKey  = "acct_xvk"
	PrefixPaymentExtendedSigningKey = "addr_xsk"
	PrefixPaymentVerificationKey    = "addr_vk"
	PrefixStakeExtendedSigningKey   = "stake_xsk"
	PrefixStakeVerificationKey      = "stake_vk"
	PrefixPaymentKeyHash            = "addr_vkh"
	PrefixStakeKeyHash              = "stake_vkh"
)

// Address prefixes, one pair per network. Preprod uses the standard testnet
// prefixes; preview has its own so the two test networks never collide.
const (
	PrefixAddressMainnet = "addr"
	PrefixAddressPreprod = "addr_test"
	PrefixAddressPreview = "addr_preview"

	PrefixRewardMainnet = "stake"
	PrefixRewardPreprod = "stake_test"
	PrefixRewardPreview = "stake_preview"
)

// knownPrefixes is the set Decode accepts.
var knownPrefixes = map[string]struct{}{
	PrefixSigningKey:                {},
	PrefixExtendedSigningKey:        {},
	PrefixVerificationKey:           {},
	PrefixRootExtendedSigningKey:    {},
	PrefixAccountExtendedSigningKey: {},
	PrefixAccountExtendedVerifyKey:  {},
	PrefixPaymentExtendedSigningKey: {},
	PrefixPaymentVerificationKey:    {},
	PrefixStakeExtendedSigningKey:   {},
	PrefixStakeVerificationKey:      {},
	PrefixPaymentKeyHash:            {},
	PrefixStakeKeyHash:              {},
	PrefixAddressMainnet:            {},
	PrefixAddressPreprod:            {},
	PrefixAddressPreview:            {},
	PrefixRewardMainnet:             {},
	PrefixRewardPreprod:             {},
	PrefixRewardPreview:             {},
}

// IsKnownPrefix reports whether hrp is in the prefix table.
func IsKnownPrefix(hrp string) bool {
	_, ok := knownPrefixes[hrp]
	return ok
}

// Encode encodes payload as a bech32 string under hrp. The payload is
// regrouped from 8-bit to 5-bit words before the checksum is computed.
// Unlike BIP173 there is no 90 character limit: base addresses exceed it.
func Encode(hrp string, payload []byte) (string, error) {
	if hrp == "" {
		return "", fmt.Errorf("could not encode bech32: empty prefix")
	}
	words, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("could not convert payload to 5-bit words: %w", err)
	}
	s, err := bech32.Encode(hrp, words)
	if err != nil {
		return "", fmt.Errorf("could not encode bech32 with prefix %q: %w", hrp, err)
	}
	return s, nil
}

// Decode is the inverse of Encode. It returns the human-readable part and
// the 8-bit payload.
//
// Any structural problem with the string is reported as ErrChecksumMismatch.
// A valid string whose prefix is not in the table is reported as
// ErrUnknownPrefix, together with the decoded prefix.
func Decode(text string) (string, []byte, error) {
	hrp, words, err := bech32.DecodeNoLimit(text)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrChecksumMismatch, err)
	}
	payload, err := bech32.ConvertBits(words, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrChecksumMismatch, err)
	}
	if !IsKnownPrefix(hrp) {
		return hrp, nil, fmt.Errorf("%w: %q", ErrUnknownPrefix, hrp)
	}
	return hrp, payload, nil
}

// DecodeAs decodes text and requires its prefix to be want.
func DecodeAs(text, want string) ([]byte, error) {
	hrp, payload, err := Decode(text)
	if err != nil {
		return nil, err
	}
	if hrp != want {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrUnknownPrefix, hrp, want)
	}
	return payload, nil
}

// Hex returns the lowercase hex form of b, without a prefix.
func Hex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex decodes a hex string produced by Hex.
func FromHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("could not decode hex: %w", err)
	}
	return b, nil
}
