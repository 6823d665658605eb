// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package address builds Shelley-era enterprise, base and reward addresses
// from key hashes and converts them to and from their binary and bech32
// forms.
//
// The binary layout is a single header byte followed by the credentials.
// The high nibble of the header is the address kind and the low nibble is
// the network discriminator:
//
//	Base        0b0000 | network  payment(28) || stake(28)
//	Enterprise  0b0110 | network  payment(28)
//	Reward      0b1110 | network  stake(28)
package address

import (
	"errors"
	"fmt"

	"github.com/complex-gh/adawallet/codec"
)

var (
	// ErrMalformedAddress is returned when bytes or text do not form a
	// supported address for the requested network.
	ErrMalformedAddress = errors.New("malformed address")

	// ErrInvalidKey is returned when a key or key hash has the wrong length.
	ErrInvalidKey = errors.New("invalid key")
)

// Kind is the address type carried in the header's high nibble.
type Kind byte

// Address kinds. The values are the header tags shifted into place.
const (
	KindBase       Kind = 0b0000
	KindEnterprise Kind = 0b0110
	KindReward     Kind = 0b1110
)

// String returns the kind name used in record field names.
func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindEnterprise:
		return "enterprise"
	case KindReward:
		return "reward"
	default:
		return fmt.Sprintf("Kind(%#04b)", byte(k))
	}
}

// Address is a single address bound to one network.
type Address struct {
	kind    Kind
	network Network
	payment KeyHash
	stake   KeyHash
}

// NewEnterprise returns an address carrying only a payment credential.
func NewEnterprise(net Network, payment KeyHash) (Address, error) {
	if !net.Valid() {
		return Address{}, fmt.Errorf("%w: unsupported network %s", ErrMalformedAddress, net)
	}
	return Address{kind: KindEnterprise, network: net, payment: payment}, nil
}

// NewBase returns an address carrying a payment and a stake credential.
func NewBase(net Network, payment, stake KeyHash) (Address, error) {
	if !net.Valid() {
		return Address{}, fmt.Errorf("%w: unsupported network %s", ErrMalformedAddress, net)
	}
	return Address{kind: KindBase, network: net, payment: payment, stake: stake}, nil
}

// NewReward returns a reward (stake) address.
func NewReward(net Network, stake KeyHash) (Address, error) {
	if !net.Valid() {
		return Address{}, fmt.Errorf("%w: unsupported network %s", ErrMalformedAddress, net)
	}
	return Address{kind: KindReward, network: net, stake: stake}, nil
}

// Kind returns the address kind.
func (a Address) Kind() Kind { return a.kind }

// Network returns the network the address is bound to.
func (a Address) Network() Network { return a.network }

// Payment returns the payment credential. ok is false for reward addresses.
func (a Address) Payment() (KeyHash, bool) {
	return a.payment, a.kind != KindReward
}

// Stake returns the stake credential. ok is false for enterprise addresses.
func (a Address) Stake() (KeyHash, bool) {
	return a.stake, a.kind != KindEnterprise
}

// Header returns the first byte of the binary form.
func (a Address) Header() byte {
	return byte(a.kind)<<4 | a.network.ID()&0x0f
}

// Bytes returns the binary form: header followed by the credentials.
func (a Address) Bytes() []byte {
	out := make([]byte, 0, 1+2*KeyHashSize)
	out = append(out, a.Header())
	switch a.kind {
	case KindBase:
		out = append(out, a.payment[:]...)
		out = append(out, a.stake[:]...)
	case KindEnterprise:
		out = append(out, a.payment[:]...)
	case KindReward:
		out = append(out, a.stake[:]...)
	}
	return out
}

// Prefix returns the bech32 prefix for this address.
func (a Address) Prefix() string {
	if a.kind == KindReward {
		return a.network.RewardPrefix()
	}
	return a.network.AddressPrefix()
}

// Bech32 returns the bech32 text form.
func (a Address) Bech32() (string, error) {
	s, err := codec.Encode(a.Prefix(), a.Bytes())
	if err != nil {
		return "", fmt.Errorf("could not encode %s address: %w", a.kind, err)
	}
	return s, nil
}

// String returns the bech32 form, or a placeholder if encoding fails.
func (a Address) String() string {
	s, err := a.Bech32()
	if err != nil {
		return fmt.Sprintf("<invalid %s address>", a.kind)
	}
	return s
}

// FromBytes decodes the binary form for a given network. The header's
// network discriminator must match net.
func FromBytes(net Network, raw []byte) (Address, error) {
	if !net.Valid() {
		return Address{}, fmt.Errorf("%w: unsupported network %s", ErrMalformedAddress, net)
	}
	if len(raw) == 0 {
		return Address{}, fmt.Errorf("%w: empty payload", ErrMalformedAddress)
	}

	header := raw[0]
	if id := header & 0x0f; id != net.ID() {
		return Address{}, fmt.Errorf("%w: network id %d does not match %s", ErrMalformedAddress, id, net)
	}

	body := raw[1:]
	a := Address{kind: Kind(header >> 4), network: net}
	switch a.kind {
	case KindBase:
		if len(body) != 2*KeyHashSize {
			return Address{}, fmt.Errorf("%w: base address needs %d credential bytes, got %d", ErrMalformedAddress, 2*KeyHashSize, len(body))
		}
		copy(a.payment[:], body[:KeyHashSize])
		copy(a.stake[:], body[KeyHashSize:])
	case KindEnterprise:
		if len(body) != KeyHashSize {
			return Address{}, fmt.Errorf("%w: enterprise address needs %d credential bytes, got %d", ErrMalformedAddress, KeyHashSize, len(body))
		}
		copy(a.payment[:], body)
	case KindReward:
		if len(body) != KeyHashSize {
			return Address{}, fmt.Errorf("%w: reward address needs %d credential bytes, got %d", ErrMalformedAddress, KeyHashSize, len(body))
		}
		copy(a.stake[:], body)
	default:
		return Address{}, fmt.Errorf("%w: unsupported header %#02x", ErrMalformedAddress, header)
	}
	return a, nil
}

// Parse decodes a bech32 address. The prefix selects the network; addr_test
// and stake_test resolve to Preprod. Reward prefixes only accept reward
// addresses and address prefixes never accept them.
func Parse(text string) (Address, error) {
	hrp, payload, err := codec.Decode(text)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %w", ErrMalformedAddress, err)
	}

	net, reward, ok := networkForPrefix(hrp)
	if !ok {
		return Address{}, fmt.Errorf("%w: %q is not an address prefix", ErrMalformedAddress, hrp)
	}

	a, err := FromBytes(net, payload)
	if err != nil {
		return Address{}, err
	}
	if reward != (a.kind == KindReward) {
		return Address{}, fmt.Errorf("%w: %s address under prefix %q", ErrMalformedAddress, a.kind, hrp)
	}
	return a, nil
}
