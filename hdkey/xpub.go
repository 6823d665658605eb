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
)

// XPub is an extended Ed25519 public key. It can derive soft children only.
type XPub struct {
	key       [PublicKeySize]byte
	chainCode [ChainCodeSize]byte
}

// NewXPub builds an extended public key from a 32-byte point and a chain
// code. The point is checked to be on the curve.
func NewXPub(key, chainCode []byte) (*XPub, error) {
	if len(key) != PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", PublicKeySize, len(key))
	}
	if len(chainCode) != ChainCodeSize {
		return nil, fmt.Errorf("chain code must be %d bytes, got %d", ChainCodeSize, len(chainCode))
	}
	if _, err := new(edwards25519.Point).SetBytes(key); err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	p := &XPub{}
	copy(p.key[:], key)
	copy(p.chainCode[:], chainCode)
	return p, nil
}

// Derive derives the soft child at index. Hardened indices cannot be
// derived without the private key.
func (p *XPub) Derive(index uint32) (*XPub, error) {
	if index >= HardenedOffset {
		return nil, fmt.Errorf("%w: index %d", ErrHardenedPublicDerivation, index)
	}

	var ser [4]byte
	binary.LittleEndian.PutUint32(ser[:], index)

	z := p.mac(tagSoftZ, ser[:])
	c := p.mac(tagSoftChain, ser[:])

	var zl8 [32]byte
	var zero [32]byte
	add28Mul8(zl8[:], zero[:], z[:28])
	s, err := scalarFromBytes(zl8[:])
	if err != nil {
		return nil, err
	}

	parent, err := new(edwards25519.Point).SetBytes(p.key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	point := new(edwards25519.Point).Add(parent, new(edwards25519.Point).ScalarBaseMult(s))

	child := &XPub{}
	copy(child.key[:], point.Bytes())
	copy(child.chainCode[:], c[32:])
	return child, nil
}

// DerivePath derives along a path of soft segments.
func (p *XPub) DerivePath(path Path) (*XPub, error) {
	current := p
	for i, seg := range path {
		if seg.Hardened {
			return nil, fmt.Errorf("derive %s at depth %d: %w", seg, i+1, ErrHardenedPublicDerivation)
		}
		child, err := current.Derive(seg.Index)
		if err != nil {
			return nil, fmt.Errorf("derive %s at depth %d: %w", seg, i+1, err)
		}
		current = child
	}
	return current, nil
}

// PublicKey returns the raw 32-byte Ed25519 public key.
func (p *XPub) PublicKey() ed25519.PublicKey {
	out := make(ed25519.PublicKey, PublicKeySize)
	copy(out, p.key[:])
	return out
}

// ChainCode returns a copy of the chain code.
func (p *XPub) ChainCode() []byte {
	out := make([]byte, ChainCodeSize)
	copy(out, p.chainCode[:])
	return out
}

// Bytes returns the 64-byte serialisation A||chainCode.
func (p *XPub) Bytes() []byte {
	out := make([]byte, 0, PublicKeySize+ChainCodeSize)
	out = append(out, p.key[:]...)
	return append(out, p.chainCode[:]...)
}

func (p *XPub) mac(tag byte, ser []byte) []byte {
	h := hmac.New(sha512.New, p.chainCode[:])
	h.Write([]byte{tag})
	h.Write(p.key[:])
	h.Write(ser)
	return h.Sum(nil)
}
