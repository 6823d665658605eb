// derive_address derives the Cardano addresses of a BIP39 mnemonic for testing.
//
// Usage:
//
//	go run ./scripts/derive_address "your 24 word seed phrase here"
//
// A payment key path other than m/1852'/1815'/0'/0/0 can be given first:
//
//	go run ./scripts/derive_address "m/1852'/1815'/0'/0/5" "your 24 word seed phrase here"
//
// Or with stdin:
//
//	echo "your 24 word seed phrase" | go run ./scripts/derive_address
//
// The stake key is always m/1852'/1815'/account'/2/0 for the account in the
// payment path. Nothing is written to disk.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/complex-gh/adawallet"
	"github.com/complex-gh/adawallet/address"
	"github.com/complex-gh/adawallet/hdkey"
)

func main() {
	args := os.Args[1:]
	path := hdkey.CIP1852(adawallet.Account, hdkey.RoleExternal, adawallet.AddressIndex)
	if len(args) > 0 && strings.HasPrefix(args[0], "m/") {
		p, err := hdkey.ParsePath(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		path = p
		args = args[1:]
	}

	var mnemonic string
	if len(args) > 0 {
		mnemonic = strings.Join(args, " ")
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			mnemonic = strings.TrimSpace(scanner.Text())
		}
	}

	if mnemonic == "" {
		fmt.Fprintln(os.Stderr, "Usage: derive_address [path] \"24 word seed phrase\"")
		fmt.Fprintln(os.Stderr, "   or: echo \"seed phrase\" | derive_address [path]")
		os.Exit(1)
	}

	if err := run(path, mnemonic); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path hdkey.Path, mnemonic string) error {
	if len(path) != 5 || !path[2].Hardened { //nolint:mnd
		return fmt.Errorf("%s is not a CIP-1852 address path", path)
	}

	entropy, err := adawallet.MnemonicToEntropy(adawallet.NormalizeMnemonic(mnemonic))
	if err != nil {
		return err
	}
	defer clear(entropy)

	root, err := hdkey.NewRootFromEntropy(entropy, nil)
	if err != nil {
		return err
	}
	defer root.Destroy()

	payment, err := root.DerivePath(path)
	if err != nil {
		return err
	}
	defer payment.Destroy()

	stakePath := hdkey.CIP1852(path[2].Index, hdkey.RoleStaking, 0)
	stake, err := root.DerivePath(stakePath)
	if err != nil {
		return err
	}
	defer stake.Destroy()

	pkh, err := address.HashKey(payment.PublicKey())
	if err != nil {
		return err
	}
	skh, err := address.HashKey(stake.PublicKey())
	if err != nil {
		return err
	}

	fmt.Printf("%s (payment path)\n%s (stake path)\n", path, stakePath)
	for _, net := range address.Networks() {
		ent, err := address.NewEnterprise(net, pkh)
		if err != nil {
			return err
		}
		base, err := address.NewBase(net, pkh, skh)
		if err != nil {
			return err
		}
		fmt.Printf("%s (enterprise, %s)\n%s (base, %s)\n", ent, net, base, net)
	}
	return nil
}
