// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package adawallet assembles Cardano wallets: it turns a fresh Ed25519
// key, a freshly generated mnemonic or an existing mnemonic into a Record
// holding the keys, key hashes and addresses for each network.
//
// Mnemonic wallets follow the Icarus root derivation and the CIP-1852 path
// m/1852'/1815'/0'/role/0, with role 0 for the payment key and role 2 for
// the stake key. Each wallet gets enterprise, base and reward addresses on
// mainnet, preprod and preview. Single-key wallets are not hierarchical and
// only get enterprise addresses.
//
// All intermediate secrets (entropy, passphrase copies, extended keys) are
// wiped before Assemble returns. The Record itself holds the secrets in
// text form for the caller to persist.
package adawallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/complex-gh/adawallet/address"
	"github.com/complex-gh/adawallet/codec"
	"github.com/complex-gh/adawallet/hdkey"
	"github.com/complex-gh/adawallet/internal/log"
	"github.com/complex-gh/adawallet/secret"
)

// The single account and address index a wallet is derived at.
const (
	Account      uint32 = 0
	AddressIndex uint32 = 0
)

// Mode selects how a wallet is created. It is implemented by
// GenerateSingleKey, GenerateWithMnemonic and RestoreFromMnemonic only.
type Mode interface {
	modeName() string
}

// GenerateSingleKey creates a wallet from one Ed25519 key pair, without a
// mnemonic. If Key is nil a new key is generated from the random source.
type GenerateSingleKey struct {
	Key ed25519.PrivateKey
}

// GenerateWithMnemonic generates a new mnemonic of WordCount words and
// derives the wallet from it. WordCount 0 means DefaultWordCount.
type GenerateWithMnemonic struct {
	WordCount  int
	Passphrase []byte
}

// RestoreFromMnemonic derives the wallet from an existing phrase.
type RestoreFromMnemonic struct {
	Phrase     string
	Passphrase []byte
}

func (GenerateSingleKey) modeName() string    { return "single-key" }
func (GenerateWithMnemonic) modeName() string { return "generate-mnemonic" }
func (RestoreFromMnemonic) modeName() string  { return "restore-mnemonic" }

// ModeName returns a short name for m, used in logs.
func ModeName(m Mode) string {
	if m == nil {
		return "none"
	}
	return m.modeName()
}

type options struct {
	rand     io.Reader
	networks []address.Network
}

// Option configures Assemble.
type Option func(*options)

// WithRand sets the source of entropy for new keys and mnemonics. The
// default is crypto/rand.
func WithRand(r io.Reader) Option {
	return func(o *options) {
		o.rand = r
	}
}

// WithNetworks restricts the addresses built to nets, in the given order.
// The default is every supported network.
func WithNetworks(nets ...address.Network) Option {
	return func(o *options) {
		o.networks = append([]address.Network(nil), nets...)
	}
}

// Assemble creates a wallet record according to mode.
func Assemble(mode Mode, opts ...Option) (*Record, error) {
	o := options{
		rand:     rand.Reader,
		networks: address.Networks(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.networks) == 0 {
		return nil, errors.New("no networks selected")
	}
	for _, n := range o.networks {
		if !n.Valid() {
			return nil, fmt.Errorf("unsupported network %s", n)
		}
	}

	logger := log.Wallet.With().Str("mode", ModeName(mode)).Logger()
	done := log.Benchmark(logger, "assemble")
	defer done()

	var (
		rec *Record
		err error
	)
	switch m := mode.(type) {
	case GenerateSingleKey:
		rec, err = assembleSingleKey(m, &o)
	case GenerateWithMnemonic:
		rec, err = assembleGenerated(m, &o)
	case RestoreFromMnemonic:
		rec, err = assembleRestored(m.Phrase, m.Passphrase, &o, m.modeName())
	default:
		return nil, fmt.Errorf("unsupported wallet mode %T", mode)
	}
	if err != nil {
		logger.Debug().Err(err).Msg("wallet assembly failed")
		return nil, err
	}

	logger.Info().Int("networks", len(o.networks)).Int("fields", len(rec.fields)).Msg("wallet assembled")
	return rec, nil
}

func assembleSingleKey(m GenerateSingleKey, o *options) (*Record, error) {
	var key *secret.Bytes
	if m.Key == nil {
		seed := secret.New(ed25519.SeedSize)
		defer seed.Destroy()
		if _, err := io.ReadFull(o.rand, seed.Expose()); err != nil {
			return nil, fmt.Errorf("could not generate ed25519 key: %w", err)
		}
		key = secret.Wrap(ed25519.NewKeyFromSeed(seed.Expose()))
	} else {
		if len(m.Key) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", address.ErrInvalidKey, ed25519.PrivateKeySize, len(m.Key))
		}
		key = secret.From(m.Key)
	}
	defer key.Destroy()

	priv := ed25519.PrivateKey(key.Expose())
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("could not derive ed25519 public key")
	}

	b := newRecordBuilder(m.modeName())

	seed := priv.Seed()
	defer clear(seed)
	skey, err := codec.Encode(codec.PrefixSigningKey, seed)
	if err != nil {
		return nil, fmt.Errorf("could not encode signing key: %w", err)
	}
	b.set(FieldSigningKey, skey)
	b.set(FieldSigningKeyHex, codec.Hex(seed))

	if err := setVerificationKey(b, FieldVerificationKey, FieldVerificationKeyHex, codec.PrefixVerificationKey, pub); err != nil {
		return nil, err
	}

	payment, err := setKeyHash(b, FieldKeyHash, FieldKeyHashBech32, codec.PrefixPaymentKeyHash, pub)
	if err != nil {
		return nil, err
	}

	for _, net := range o.networks {
		a, err := address.NewEnterprise(net, payment)
		if err != nil {
			return nil, err
		}
		if err := setAddress(b, a); err != nil {
			return nil, err
		}
	}
	return b.build(), nil
}

func assembleGenerated(m GenerateWithMnemonic, o *options) (*Record, error) {
	words := m.WordCount
	if words == 0 {
		words = DefaultWordCount
	}
	phrase, err := GenerateMnemonic(o.rand, words)
	if err != nil {
		return nil, err
	}
	return assembleRestored(phrase, m.Passphrase, o, m.modeName())
}

func assembleRestored(phrase string, passphrase []byte, o *options, name string) (*Record, error) {
	phrase = NormalizeMnemonic(phrase)

	raw, err := MnemonicToEntropy(phrase)
	if err != nil {
		return nil, err
	}
	entropy := secret.Wrap(raw)
	defer entropy.Destroy()

	pass := secret.From(passphrase)
	defer pass.Destroy()

	root, err := hdkey.NewRootFromEntropy(entropy.Expose(), pass.Expose())
	if err != nil {
		return nil, fmt.Errorf("could not derive root key: %w", err)
	}
	defer root.Destroy()

	paymentPath := hdkey.CIP1852(Account, hdkey.RoleExternal, AddressIndex)
	stakePath := hdkey.CIP1852(Account, hdkey.RoleStaking, AddressIndex)

	paymentKey, err := root.DerivePath(paymentPath)
	if err != nil {
		return nil, fmt.Errorf("could not derive payment key: %w", err)
	}
	defer paymentKey.Destroy()

	stakeKey, err := root.DerivePath(stakePath)
	if err != nil {
		return nil, fmt.Errorf("could not derive stake key: %w", err)
	}
	defer stakeKey.Destroy()

	b := newRecordBuilder(name)
	b.set(FieldMnemonic, phrase)
	b.set(FieldDerivationPath, paymentPath.String())
	b.set(FieldStakeDerivationPath, stakePath.String())

	rootBytes := secret.Wrap(root.Bytes())
	rootXsk, err := codec.Encode(codec.PrefixRootExtendedSigningKey, rootBytes.Expose())
	rootBytes.Destroy()
	if err != nil {
		return nil, fmt.Errorf("could not encode root key: %w", err)
	}
	b.set(FieldRootKey, rootXsk)

	if err := setExtendedSigningKey(b, FieldSigningKey, FieldSigningKeyHex, paymentKey); err != nil {
		return nil, err
	}
	paymentPub := paymentKey.PublicKey()
	if err := setVerificationKey(b, FieldVerificationKey, FieldVerificationKeyHex, codec.PrefixPaymentVerificationKey, paymentPub); err != nil {
		return nil, err
	}
	payment, err := setKeyHash(b, FieldKeyHash, FieldKeyHashBech32, codec.PrefixPaymentKeyHash, paymentPub)
	if err != nil {
		return nil, err
	}

	if err := setExtendedSigningKey(b, FieldStakeSigningKey, FieldStakeSigningKeyHex, stakeKey); err != nil {
		return nil, err
	}
	stakePub := stakeKey.PublicKey()
	if err := setVerificationKey(b, FieldStakeVerifyKey, FieldStakeVerifyKeyHex, codec.PrefixStakeVerificationKey, stakePub); err != nil {
		return nil, err
	}
	stake, err := setKeyHash(b, FieldStakeKeyHash, FieldStakeKeyHashBech32, codec.PrefixStakeKeyHash, stakePub)
	if err != nil {
		return nil, err
	}

	// Enterprise first, then base, then reward, each across every network.
	for _, net := range o.networks {
		a, err := address.NewEnterprise(net, payment)
		if err != nil {
			return nil, err
		}
		if err := setAddress(b, a); err != nil {
			return nil, err
		}
	}
	for _, net := range o.networks {
		a, err := address.NewBase(net, payment, stake)
		if err != nil {
			return nil, err
		}
		if err := setAddress(b, a); err != nil {
			return nil, err
		}
	}
	for _, net := range o.networks {
		a, err := address.NewReward(net, stake)
		if err != nil {
			return nil, err
		}
		if err := setAddress(b, a); err != nil {
			return nil, err
		}
	}
	return b.build(), nil
}

// setExtendedSigningKey records the 64-byte kL||kR of k, which is what
// signing tools expect for an extended key.
func setExtendedSigningKey(b *recordBuilder, field, hexField string, k *hdkey.XPrv) error {
	raw := secret.Wrap(k.Key())
	defer raw.Destroy()

	s, err := codec.Encode(codec.PrefixExtendedSigningKey, raw.Expose())
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", field, err)
	}
	b.set(field, s)
	b.set(hexField, codec.Hex(raw.Expose()))
	return nil
}

func setVerificationKey(b *recordBuilder, field, hexField, prefix string, pub ed25519.PublicKey) error {
	s, err := codec.Encode(prefix, pub)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", field, err)
	}
	b.set(field, s)
	b.set(hexField, codec.Hex(pub))
	return nil
}

func setKeyHash(b *recordBuilder, field, bech32Field, prefix string, pub ed25519.PublicKey) (address.KeyHash, error) {
	kh, err := address.HashKey(pub)
	if err != nil {
		return kh, fmt.Errorf("could not hash %s: %w", field, err)
	}
	s, err := kh.Bech32(prefix)
	if err != nil {
		return kh, fmt.Errorf("could not encode %s: %w", bech32Field, err)
	}
	b.set(field, kh.Hex())
	b.set(bech32Field, s)
	return kh, nil
}

func setAddress(b *recordBuilder, a address.Address) error {
	s, err := a.Bech32()
	if err != nil {
		return err
	}
	b.set(AddressField(a.Kind(), a.Network()), s)
	return nil
}
