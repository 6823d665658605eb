package main

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/complex-gh/adawallet"
	"github.com/complex-gh/adawallet/address"
	"github.com/complex-gh/adawallet/codec"
	"github.com/complex-gh/adawallet/hdkey"
	"github.com/complex-gh/adawallet/internal/log"
)

var errWalletMismatch = errors.New("wallet file does not match its keys")

func inspect(w io.Writer, arg string) error {
	arg = strings.TrimSpace(arg)
	if strings.HasSuffix(strings.ToLower(arg), adawallet.RecordExt) {
		return inspectWallet(w, arg)
	}

	hrp, payload, err := codec.Decode(arg)
	if err != nil {
		return usageError{err}
	}
	defer clear(payload)

	switch hrp {
	case codec.PrefixAddressMainnet, codec.PrefixAddressPreprod, codec.PrefixAddressPreview,
		codec.PrefixRewardMainnet, codec.PrefixRewardPreprod, codec.PrefixRewardPreview:
		a, err := address.Parse(arg)
		if err != nil {
			return err
		}
		printAddress(w, a)
		return nil

	case codec.PrefixVerificationKey, codec.PrefixPaymentVerificationKey, codec.PrefixStakeVerificationKey:
		return printPublicKey(w, hrp, payload)

	case codec.PrefixPaymentKeyHash, codec.PrefixStakeKeyHash:
		kh, err := address.KeyHashFromBytes(payload)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "[%s]\n\n%s (key hash)\n\n", hrp, kh.Hex())
		return nil

	case codec.PrefixSigningKey:
		if len(payload) != ed25519.SeedSize {
			return fmt.Errorf("%w: %s must be %d bytes", address.ErrInvalidKey, hrp, ed25519.SeedSize)
		}
		priv := ed25519.NewKeyFromSeed(payload)
		defer clear(priv)
		pub, _ := priv.Public().(ed25519.PublicKey)
		return printPublicKey(w, hrp, pub)

	case codec.PrefixExtendedSigningKey:
		if len(payload) != hdkey.ExtendedKeySize {
			return fmt.Errorf("%w: %s must be %d bytes", address.ErrInvalidKey, hrp, hdkey.ExtendedKeySize)
		}
		// The chain code plays no part in the public key.
		buf := make([]byte, hdkey.ExtendedKeySize+hdkey.ChainCodeSize)
		copy(buf, payload)
		k, err := hdkey.NewXPrv(buf)
		clear(buf)
		if err != nil {
			return err
		}
		defer k.Destroy()
		return printPublicKey(w, hrp, k.PublicKey())

	case codec.PrefixRootExtendedSigningKey:
		k, err := hdkey.NewXPrv(payload)
		if err != nil {
			return err
		}
		defer k.Destroy()
		acct, err := k.DerivePath(hdkey.Path{
			hdkey.Hard(hdkey.Purpose), hdkey.Hard(hdkey.CoinType), hdkey.Hard(adawallet.Account),
		})
		if err != nil {
			return err
		}
		defer acct.Destroy()
		if err := printPublicKey(w, hrp, k.PublicKey()); err != nil {
			return err
		}
		return printAccount(w, acct.Public())

	case codec.PrefixAccountExtendedSigningKey:
		k, err := hdkey.NewXPrv(payload)
		if err != nil {
			return err
		}
		defer k.Destroy()
		return printAccount(w, k.Public())

	case codec.PrefixPaymentExtendedSigningKey, codec.PrefixStakeExtendedSigningKey:
		k, err := hdkey.NewXPrv(payload)
		if err != nil {
			return err
		}
		defer k.Destroy()
		return printPublicKey(w, hrp, k.PublicKey())

	case codec.PrefixAccountExtendedVerifyKey:
		if len(payload) != hdkey.PublicKeySize+hdkey.ChainCodeSize {
			return fmt.Errorf("%w: %s must be %d bytes", address.ErrInvalidKey, hrp, hdkey.PublicKeySize+hdkey.ChainCodeSize)
		}
		xpub, err := hdkey.NewXPub(payload[:hdkey.PublicKeySize], payload[hdkey.PublicKeySize:])
		if err != nil {
			return err
		}
		return printAccount(w, xpub)

	default:
		return usageError{fmt.Errorf("cannot inspect %q values", hrp)}
	}
}

func printAddress(w io.Writer, a address.Address) {
	_, _ = fmt.Fprintf(w, "[%s address]\n\n", a.Kind())
	_, _ = fmt.Fprintf(w, "%s (network)\n", a.Network())
	_, _ = fmt.Fprintf(w, "%08b (header)\n", a.Header())
	if kh, ok := a.Payment(); ok {
		_, _ = fmt.Fprintf(w, "%s (payment key hash)\n", kh.Hex())
	}
	if kh, ok := a.Stake(); ok {
		_, _ = fmt.Fprintf(w, "%s (stake key hash)\n", kh.Hex())
	}
	_, _ = fmt.Fprintln(w)
}

func printPublicKey(w io.Writer, hrp string, pub ed25519.PublicKey) error {
	kh, err := address.HashKey(pub)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "[%s]\n\n", hrp)
	_, _ = fmt.Fprintf(w, "%s (public key)\n", codec.Hex(pub))
	_, _ = fmt.Fprintf(w, "%s (key hash)\n\n", kh.Hex())
	return nil
}

// printAccount derives the first payment and stake keys of an account and
// prints their hashes and base addresses.
func printAccount(w io.Writer, acct *hdkey.XPub) error {
	payment, err := acct.DerivePath(hdkey.Path{hdkey.Soft(hdkey.RoleExternal), hdkey.Soft(adawallet.AddressIndex)})
	if err != nil {
		return err
	}
	stake, err := acct.DerivePath(hdkey.Path{hdkey.Soft(hdkey.RoleStaking), hdkey.Soft(adawallet.AddressIndex)})
	if err != nil {
		return err
	}
	pkh, err := address.HashKey(payment.PublicKey())
	if err != nil {
		return err
	}
	skh, err := address.HashKey(stake.PublicKey())
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "[account %d]\n\n", adawallet.Account)
	_, _ = fmt.Fprintf(w, "%s (payment key hash)\n", pkh.Hex())
	_, _ = fmt.Fprintf(w, "%s (stake key hash)\n\n", skh.Hex())

	_, _ = fmt.Fprintln(w, "[base addresses]")
	_, _ = fmt.Fprintln(w)
	for _, net := range address.Networks() {
		a, err := address.NewBase(net, pkh, skh)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s (%s)\n", a, net)
	}
	_, _ = fmt.Fprintln(w)
	return nil
}

// inspectWallet decodes every address in a wallet file and checks it
// against the key hashes stored next to it.
func inspectWallet(w io.Writer, path string) error {
	rec, err := adawallet.LoadRecord(path)
	if err != nil {
		return err
	}

	var (
		payment, stake       address.KeyHash
		hasPayment, hasStake bool
	)
	if v, ok := rec.Get(adawallet.FieldKeyHash); ok {
		if payment, err = keyHashFromHex(v); err != nil {
			return err
		}
		hasPayment = true
	}
	if v, ok := rec.Get(adawallet.FieldStakeKeyHash); ok {
		if stake, err = keyHashFromHex(v); err != nil {
			return err
		}
		hasStake = true
	}

	_, _ = fmt.Fprintf(w, "[%s wallet]\n\n", rec.Mode())
	var problems []string
	for _, f := range rec.Fields() {
		kindName, netName, ok := strings.Cut(f.Key, "_address_")
		if !ok {
			continue
		}
		a, err := address.Parse(f.Value)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", f.Key, err))
			continue
		}
		if a.Kind().String() != kindName || a.Network().String() != netName {
			problems = append(problems, fmt.Sprintf("%s: holds a %s address on %s", f.Key, a.Kind(), a.Network()))
			continue
		}
		if kh, ok := a.Payment(); ok && (!hasPayment || kh != payment) {
			problems = append(problems, f.Key+": payment credential does not match "+adawallet.FieldKeyHash)
			continue
		}
		if kh, ok := a.Stake(); ok && (!hasStake || kh != stake) {
			problems = append(problems, f.Key+": stake credential does not match "+adawallet.FieldStakeKeyHash)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s (%s, ok)\n", f.Value, f.Key)
	}
	_, _ = fmt.Fprintln(w)

	if len(problems) > 0 {
		for _, p := range problems {
			log.CLI.Error().Str("path", path).Msg(p)
		}
		return fmt.Errorf("%w: %s", errWalletMismatch, strings.Join(problems, "; "))
	}
	return nil
}

func keyHashFromHex(s string) (address.KeyHash, error) {
	b, err := codec.FromHex(s)
	if err != nil {
		return address.KeyHash{}, err
	}
	return address.KeyHashFromBytes(b)
}
