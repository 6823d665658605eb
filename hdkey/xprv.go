// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package hdkey

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/complex-gh/adawallet/secret"
)

// Key sizes in bytes.
const (
	ExtendedKeySize = 64 // kL || kR
	ChainCodeSize   = 32
	PublicKeySize   = ed25519.PublicKeySize

	// HardenedOffset is added to an index to request hardened derivation.
	HardenedOffset uint32 = 0x80000000
)

// Derivation domain tags prefixed to the HMAC input.
const (
	tagHardenedZ     = 0x00
	tagHardenedChain = 0x01
	tagSoftZ         = 0x02
	tagSoftChain     = 0x03
)

// XPrv is an extended Ed25519 private key: the 64-byte scalar pair kL||kR
// plus a 32-byte chain code. The scalar lives in a secret buffer; call
// Destroy when the key is no longer needed.
type XPrv struct {
	key       *secret.Bytes
	chainCode [ChainCodeSize]byte
}

func newXPrv(key, chainCode []byte) (*XPrv, error) {
	if len(key) != ExtendedKeySize {
		return nil, fmt.Errorf("extended key must be %d bytes, got %d", ExtendedKeySize, len(key))
	}
	if len(chainCode) != ChainCodeSize {
		return nil, fmt.Errorf("chain code must be %d bytes, got %d", ChainCodeSize, len(chainCode))
	}
	k := &XPrv{key: secret.From(key)}
	copy(k.chainCode[:], chainCode)
	return k, nil
}

// NewXPrv rebuilds an extended private key from its 96-byte serialisation
// kL||kR||chainCode, as produced by Bytes.
func NewXPrv(b []byte) (*XPrv, error) {
	if len(b) != ExtendedKeySize+ChainCodeSize {
		return nil, fmt.Errorf("extended private key must be %d bytes, got %d", ExtendedKeySize+ChainCodeSize, len(b))
	}
	return newXPrv(b[:ExtendedKeySize], b[ExtendedKeySize:])
}

// Derive derives the child at index. The index is the raw, unhardened value;
// hardened selects hardened derivation, which adds HardenedOffset before the
// index is mixed in. An index that already has the hardened bit set is
// rejected with ErrInvalidIndex.
func (k *XPrv) Derive(index uint32, hardened bool) (*XPrv, error) {
	if index >= HardenedOffset {
		return nil, fmt.Errorf("%w: %d is not below 2^31", ErrInvalidIndex, index)
	}
	if k.key.Destroyed() {
		return nil, fmt.Errorf("%w: parent key was destroyed", ErrDerivationFailed)
	}
	if hardened {
		index += HardenedOffset
	}

	var ser [4]byte
	binary.LittleEndian.PutUint32(ser[:], index)

	parent := k.key.Expose()
	var z, c []byte
	if hardened {
		z = k.mac(tagHardenedZ, parent, ser[:])
		c = k.mac(tagHardenedChain, parent, ser[:])
	} else {
		pub, err := publicFromScalar(parent[:32])
		if err != nil {
			return nil, err
		}
		z = k.mac(tagSoftZ, pub, ser[:])
		c = k.mac(tagSoftChain, pub, ser[:])
	}
	zs := secret.Wrap(z)
	defer zs.Destroy()

	child := secret.New(ExtendedKeySize)
	out := child.Expose()
	add28Mul8(out[:32], parent[:32], z[:28])
	add256(out[32:], parent[32:], z[32:])

	x := &XPrv{key: child}
	copy(x.chainCode[:], c[32:])
	return x, nil
}

// DerivePath derives along path. Intermediate keys are destroyed; k itself
// is left untouched.
func (k *XPrv) DerivePath(path Path) (*XPrv, error) {
	current := k
	for i, seg := range path {
		child, err := current.Derive(seg.Index, seg.Hardened)
		if current != k {
			current.Destroy()
		}
		if err != nil {
			return nil, fmt.Errorf("derive %s at depth %d: %w", seg, i+1, err)
		}
		current = child
	}
	if current == k {
		// empty path: hand back an independent copy so the caller can
		// destroy either key without affecting the other
		return newXPrv(k.key.Expose(), k.chainCode[:])
	}
	return current, nil
}

// Public returns the extended public key A||chainCode where A = kL·B.
func (k *XPrv) Public() *XPub {
	if k.key.Destroyed() {
		panic("hdkey: Public called on a destroyed key")
	}
	pub, err := publicFromScalar(k.key.Expose()[:32])
	if err != nil {
		// unreachable: a live kL is always 32 bytes
		panic(err)
	}
	p := &XPub{chainCode: k.chainCode}
	copy(p.key[:], pub)
	return p
}

// PublicKey returns the raw 32-byte Ed25519 public key.
func (k *XPrv) PublicKey() ed25519.PublicKey {
	return k.Public().PublicKey()
}

// Key returns a copy of the 64-byte extended secret kL||kR.
func (k *XPrv) Key() []byte {
	return k.key.Copy()
}

// ChainCode returns a copy of the chain code.
func (k *XPrv) ChainCode() []byte {
	out := make([]byte, ChainCodeSize)
	copy(out, k.chainCode[:])
	return out
}

// Bytes returns the 96-byte serialisation kL||kR||chainCode.
func (k *XPrv) Bytes() []byte {
	out := make([]byte, 0, ExtendedKeySize+ChainCodeSize)
	out = append(out, k.key.Expose()...)
	return append(out, k.chainCode[:]...)
}

// Destroy wipes the secret scalar and the chain code.
func (k *XPrv) Destroy() {
	if k == nil {
		return
	}
	k.key.Destroy()
	clear(k.chainCode[:])
}

// String implements fmt.Stringer without revealing key material.
func (k *XPrv) String() string {
	return "XPrv(" + secret.Redacted + ")"
}

// Format implements fmt.Formatter so no verb can dump the key.
func (k *XPrv) Format(f fmt.State, _ rune) {
	_, _ = fmt.Fprint(f, k.String())
}

func (k *XPrv) mac(tag byte, parts ...[]byte) []byte {
	h := hmac.New(sha512.New, k.chainCode[:])
	h.Write([]byte{tag})
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

// publicFromScalar computes kL·B. kL is not reduced and may exceed the group
// order, so it is widened to 64 bytes and reduced first; B has order l, so
// the result is unchanged.
func publicFromScalar(kl []byte) ([]byte, error) {
	s, err := scalarFromBytes(kl)
	if err != nil {
		return nil, err
	}
	return new(edwards25519.Point).ScalarBaseMult(s).Bytes(), nil
}

func scalarFromBytes(b []byte) (*edwards25519.Scalar, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: scalar must be 32 bytes, got %d", ErrDerivationFailed, len(b))
	}
	var wide [64]byte
	copy(wide[:], b)
	defer clear(wide[:])
	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	return s, nil
}

// add28Mul8 sets out = x + 8·y as 256-bit little-endian integers, where y is
// 28 bytes. The final carry is dropped.
func add28Mul8(out, x, y []byte) {
	var carry uint16
	for i := 0; i < 28; i++ {
		r := uint16(x[i]) + uint16(y[i])<<3 + carry
		out[i] = byte(r)
		carry = r >> 8
	}
	for i := 28; i < 32; i++ {
		r := uint16(x[i]) + carry
		out[i] = byte(r)
		carry = r >> 8
	}
}

// add256 sets out = x + y mod 2^256, little-endian.
func add256(out, x, y []byte) {
	var carry uint16
	for i := 0; i < 32; i++ {
		r := uint16(x[i]) + uint16(y[i]) + carry
		out[i] = byte(r)
		carry = r >> 8
	}
}
