// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package hdkey

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/complex-gh/adawallet/codec"
	"github.com/matryer/is"
)

// Serialization-lib test wallet:
// "test walk nut penalty hip pave soap entry language right filter choice"
const libEntropyHex = "df9ed25ed146bf43336a5d7cf7395994"

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// TestNewRootFromEntropy_KnownVectors checks root keys against vectors
// computed with the reference Icarus construction
func TestNewRootFromEntropy_KnownVectors(t *testing.T) {
	tests := []struct {
		name       string
		entropy    string
		passphrase string
		want       string
	}{
		{
			name:    "serialization-lib 12 words",
			entropy: libEntropyHex,
			want:    "608621fb4c0101feb31f6f2fd7018bee54101ff67d555079671893225ee1a45e2331497029d885b5634405f350508cd95dce3991503b10f128d04f34b7b625783a1e3bd5dcf11fd4f989ec2cdcdea3a54db8997398174ecdcc87006c274176a0",
		},
		{
			name:    "zero entropy 24 words",
			entropy: strings.Repeat("00", 32),
			want:    "b07ff3e63c17cd2e0504e4bfd52a98c47abde183ccd0738efc385e764fd91d4bd7d399eeef3c4df68facb3f11e4a4d45513ea1e2a8018aa35b3c078714cfdcedccc42249e17984c44cf380b489f62c57f84089e150245bf49c436d0b9709c58f",
		},
		{
			name:       "zero entropy 24 words with passphrase",
			entropy:    strings.Repeat("00", 32),
			passphrase: "foo",
			want:       "48ef4c4b97c1036bd0370989b654bf8e678dee2031756e2745f182e08784b4535b8fbff2bfd90e858170df7609b75bb33fc4ddcc7a787631878666a48fd8dcb49a9aa21b5d4b5ddb51fee8f7c8696e2c86981607e7ae41a6fe6e2ae73c6d1bc4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)

			root, err := NewRootFromEntropy(mustHex(t, tt.entropy), []byte(tt.passphrase))
			is.NoErr(err)
			defer root.Destroy()

			is.Equal(hex.EncodeToString(root.Bytes()), tt.want)
		})
	}
}

// TestNewRootFromEntropy_Clamped verifies the clamping bits on kL
func TestNewRootFromEntropy_Clamped(t *testing.T) {
	is := is.New(t)

	for _, size := range []int{16, 20, 24, 28, 32} {
		entropy := bytes.Repeat([]byte{0xff}, size)
		root, err := NewRootFromEntropy(entropy, nil)
		is.NoErr(err)

		key := root.Key()
		is.Equal(key[0]&0b0000_0111, byte(0))
		is.Equal(key[31]&0b1110_0000, byte(0b0100_0000))
		root.Destroy()
	}
}

// TestNewRootFromEntropy_InvalidLength verifies non-BIP39 sizes are refused
func TestNewRootFromEntropy_InvalidLength(t *testing.T) {
	for _, size := range []int{0, 1, 15, 17, 31, 33, 64} {
		t.Run(fmt.Sprintf("%d bytes", size), func(t *testing.T) {
			is := is.New(t)
			_, err := NewRootFromEntropy(make([]byte, size), nil)
			is.True(errors.Is(err, ErrInvalidEntropyLength))
		})
	}
}

// TestDerivePath_KnownVectors checks the CIP-1852 payment and stake keys
func TestDerivePath_KnownVectors(t *testing.T) {
	is := is.New(t)

	root, err := NewRootFromEntropy(mustHex(t, libEntropyHex), nil)
	is.NoErr(err)
	defer root.Destroy()

	payment, err := root.DerivePath(CIP1852(0, RoleExternal, 0))
	is.NoErr(err)
	defer payment.Destroy()

	is.Equal(hex.EncodeToString(payment.Key()), "b813a62becba674d8e29ce907ee3533f622d41e155768d58793cbad373e1a45e47f9d20ab7f78b023a2cf363c2217400a8c658dfd1c8057c4f62b6f6746d1c41")
	is.Equal(hex.EncodeToString(payment.ChainCode()), "dd75e154da417becec55cdd249327454138f082110297d5e87ab25e15fad150f")
	is.Equal(hex.EncodeToString(payment.PublicKey()), "73fea80d424276ad0978d4fe5310e8bc2d485f5f6bb3bf87612989f112ad5a7d")

	stake, err := root.DerivePath(CIP1852(0, RoleStaking, 0))
	is.NoErr(err)
	defer stake.Destroy()
	is.Equal(hex.EncodeToString(stake.PublicKey()), "2c041c9c6a676ac54d25e2fdce44c56581e316ae43adc4c7bf17f23214d8d892")

	account, err := root.DerivePath(Path{Hard(Purpose), Hard(CoinType), Hard(0)})
	is.NoErr(err)
	defer account.Destroy()

	xvk, err := codec.Encode(codec.PrefixAccountExtendedVerifyKey, account.Public().Bytes())
	is.NoErr(err)
	is.Equal(xvk, "acct_xvk1eame4ge0x5yrwpuqs5eyw89kfmjpgfkfh02xzdx6c2k9k2swcr5clf0u634tm82x6nv2j750x3j7938g70ya4k0lv6pr59s7etw2vpqgfmule")
}

// TestDerivePath_Deterministic verifies repeated derivations are byte-identical
func TestDerivePath_Deterministic(t *testing.T) {
	is := is.New(t)

	entropy := mustHex(t, libEntropyHex)
	var first []byte
	for i := 0; i < 3; i++ {
		root, err := NewRootFromEntropy(entropy, []byte("pass"))
		is.NoErr(err)
		key, err := root.DerivePath(CIP1852(0, RoleExternal, 0))
		is.NoErr(err)

		if first == nil {
			first = key.Bytes()
		} else {
			is.Equal(key.Bytes(), first)
		}
		key.Destroy()
		root.Destroy()
	}
}

// TestDerive_HardenedDiffersFromSoft verifies the hardened flag changes the child
func TestDerive_HardenedDiffersFromSoft(t *testing.T) {
	is := is.New(t)

	root, err := NewRootFromEntropy(mustHex(t, libEntropyHex), nil)
	is.NoErr(err)
	defer root.Destroy()

	hard, err := root.Derive(0, true)
	is.NoErr(err)
	soft, err := root.Derive(0, false)
	is.NoErr(err)

	is.True(!bytes.Equal(hard.Key(), soft.Key()))
	is.True(!bytes.Equal(hard.ChainCode(), soft.ChainCode()))
}

// TestDerive_InvalidIndex verifies a pre-hardened raw index is refused
func TestDerive_InvalidIndex(t *testing.T) {
	is := is.New(t)

	root, err := NewRootFromEntropy(mustHex(t, libEntropyHex), nil)
	is.NoErr(err)
	defer root.Destroy()

	_, err = root.Derive(HardenedOffset+1852, true)
	is.True(errors.Is(err, ErrInvalidIndex))

	_, err = root.Derive(HardenedOffset, false)
	is.True(errors.Is(err, ErrInvalidIndex))

	_, err = root.Derive(HardenedOffset-1, true)
	is.NoErr(err)
}

// TestXPub_SoftDerivationMatchesPrivate verifies that soft children computed
// from the account public key equal the public half of the private children
func TestXPub_SoftDerivationMatchesPrivate(t *testing.T) {
	is := is.New(t)

	root, err := NewRootFromEntropy(mustHex(t, libEntropyHex), nil)
	is.NoErr(err)
	defer root.Destroy()

	account, err := root.DerivePath(Path{Hard(Purpose), Hard(CoinType), Hard(0)})
	is.NoErr(err)
	defer account.Destroy()

	for _, role := range []uint32{RoleExternal, RoleInternal, RoleStaking} {
		for _, index := range []uint32{0, 1, 7, 1000} {
			priv, err := account.DerivePath(Path{Soft(role), Soft(index)})
			is.NoErr(err)

			pub, err := account.Public().DerivePath(Path{Soft(role), Soft(index)})
			is.NoErr(err)

			is.Equal(pub.Bytes(), priv.Public().Bytes())
			priv.Destroy()
		}
	}
}

// TestXPub_HardenedRefused verifies public keys cannot derive hardened children
func TestXPub_HardenedRefused(t *testing.T) {
	is := is.New(t)

	root, err := NewRootFromEntropy(mustHex(t, libEntropyHex), nil)
	is.NoErr(err)
	defer root.Destroy()

	pub := root.Public()
	_, err = pub.Derive(HardenedOffset)
	is.True(errors.Is(err, ErrHardenedPublicDerivation))

	_, err = pub.DerivePath(CIP1852(0, 0, 0))
	is.True(errors.Is(err, ErrHardenedPublicDerivation))
}

// TestNewXPub_Validation verifies point and size checks
func TestNewXPub_Validation(t *testing.T) {
	is := is.New(t)

	root, err := NewRootFromEntropy(mustHex(t, libEntropyHex), nil)
	is.NoErr(err)
	defer root.Destroy()

	pub := root.Public()
	rebuilt, err := NewXPub(pub.PublicKey(), pub.ChainCode())
	is.NoErr(err)
	is.Equal(rebuilt.Bytes(), pub.Bytes())

	_, err = NewXPub(make([]byte, 31), pub.ChainCode())
	is.True(err != nil)

	// y = 2 is not the y-coordinate of any curve point
	bad := make([]byte, 32)
	bad[0] = 2
	_, err = NewXPub(bad, pub.ChainCode())
	is.True(err != nil)
}

// TestNewXPrv_RoundTrip verifies the 96-byte serialisation
func TestNewXPrv_RoundTrip(t *testing.T) {
	is := is.New(t)

	root, err := NewRootFromEntropy(mustHex(t, libEntropyHex), nil)
	is.NoErr(err)
	defer root.Destroy()

	again, err := NewXPrv(root.Bytes())
	is.NoErr(err)
	defer again.Destroy()
	is.Equal(again.Bytes(), root.Bytes())

	_, err = NewXPrv(make([]byte, 64))
	is.True(err != nil)
}

// TestXPrv_DestroyAndRedaction verifies keys wipe and never print
func TestXPrv_DestroyAndRedaction(t *testing.T) {
	is := is.New(t)

	root, err := NewRootFromEntropy(mustHex(t, libEntropyHex), nil)
	is.NoErr(err)

	keyHex := hex.EncodeToString(root.Key())
	for _, verb := range []string{"%v", "%+v", "%x", "%s", "%#v"} {
		is.True(!strings.Contains(fmt.Sprintf(verb, root), keyHex[:16]))
	}

	root.Destroy()
	is.Equal(root.ChainCode(), make([]byte, ChainCodeSize))
	_, err = root.Derive(0, true)
	is.True(errors.Is(err, ErrDerivationFailed))
}

// TestDerivePath_EmptyPathCopies verifies an empty path returns an independent key
func TestDerivePath_EmptyPathCopies(t *testing.T) {
	is := is.New(t)

	root, err := NewRootFromEntropy(mustHex(t, libEntropyHex), nil)
	is.NoErr(err)
	defer root.Destroy()

	same, err := root.DerivePath(nil)
	is.NoErr(err)
	is.Equal(same.Bytes(), root.Bytes())

	same.Destroy()
	is.True(len(root.Key()) == ExtendedKeySize)
}

// TestParsePath covers parsing and formatting
func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want Path
		str  string
	}{
		{in: "m/1852'/1815'/0'/0/0", want: CIP1852(0, 0, 0), str: "m/1852'/1815'/0'/0/0"},
		{in: "1852h/1815H/0'/2/0", want: CIP1852(0, RoleStaking, 0), str: "m/1852'/1815'/0'/2/0"},
		{in: "m", want: Path{}, str: "m"},
		{in: "m/44'/0", want: Path{Hard(44), Soft(0)}, str: "m/44'/0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			is := is.New(t)
			got, err := ParsePath(tt.in)
			is.NoErr(err)
			is.Equal(got, tt.want)
			is.Equal(got.String(), tt.str)
		})
	}
}

// TestParsePath_Invalid covers malformed paths
func TestParsePath_Invalid(t *testing.T) {
	is := is.New(t)

	for _, in := range []string{"m/abc", "m/1852''", "m//0", "m/-1"} {
		_, err := ParsePath(in)
		is.True(err != nil)
	}

	_, err := ParsePath("m/2147483648")
	is.True(errors.Is(err, ErrInvalidIndex))
}
