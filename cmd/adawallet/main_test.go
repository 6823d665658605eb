package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/complex-gh/adawallet"
	"github.com/complex-gh/adawallet/address"
	"github.com/matryer/is"
)

var abandonPhrase = strings.Repeat("abandon ", 23) + "art"

const (
	abandonRootKey   = "root_xsk1kpll8e3uzlxjupgyujla225cc3atmcvreng88rhu8p08vn7er49a05ueamhncn0k37kt8ug7ffx525f75832sqv25ddncpu8zn8aemwvcs3ynctesnzyeuuqkjylvtzhlpqgnc2sy3dlf8zrd59ewzw93u2z6hw3"
	abandonBase      = "addr1qyqt0pru382hy9vjlsxv3ye02z50sfvt8xunscg5pgden77z73dpdfng2ctw2ekqplqgrljelz7h4dneac27nn3qx3rqrhqvwd"
	abandonKeyHash   = "00b7847c89d5721592fc0cc8932f50a8f8258b39b93861140a1b99fb"
	abandonStakeHash = "c2f45a16a6685616e566c00fc081fe59f8bd7ab679ee15e9ce203446"
)

// resetFlags restores the flag variables to their defaults.
func resetFlags(t *testing.T) {
	t.Helper()
	walletName = ""
	useMnemonic = false
	seedPhrase = ""
	wordCount = adawallet.DefaultWordCount
	askPassphrase = false
	sshKeyPath = ""
	noSave = false
	printJSON = false
	showQR = false
	outputDir = t.TempDir()
	networkNames = networkList(address.Networks())
}

func TestChooseKind(t *testing.T) {
	for _, tc := range []struct {
		name       string
		seed       string
		mnemonic   bool
		passphrase bool
		sshKey     string
		want       walletKind
		wantErr    bool
	}{
		{name: "default", want: kindSingleKey},
		{name: "mnemonic", mnemonic: true, want: kindGenerate},
		{name: "mnemonic with passphrase", mnemonic: true, passphrase: true, want: kindGenerate},
		{name: "seed", seed: "x", want: kindRestore},
		{name: "seed wins over mnemonic", seed: "x", mnemonic: true, want: kindRestore},
		{name: "ssh key", sshKey: "id_ed25519", want: kindSSHKey},
		{name: "ssh key and seed", sshKey: "id_ed25519", seed: "x", wantErr: true},
		{name: "ssh key and mnemonic", sshKey: "id_ed25519", mnemonic: true, wantErr: true},
		{name: "ssh key and passphrase", sshKey: "id_ed25519", passphrase: true, wantErr: true},
		{name: "passphrase alone", passphrase: true, wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			got, err := chooseKind(tc.seed, tc.mnemonic, tc.passphrase, tc.sshKey)
			if tc.wantErr {
				is.True(err != nil)
				is.Equal(exitCode(err), exitUsage)
				return
			}
			is.NoErr(err)
			is.Equal(got, tc.want)
		})
	}
}

func TestParseNetworks(t *testing.T) {
	is := is.New(t)

	nets, err := parseNetworks([]string{"preview", "mainnet", "Preview", " "})
	is.NoErr(err)
	is.Equal(nets, []address.Network{address.Preview, address.Mainnet})

	_, err = parseNetworks([]string{"mainnet", "sanchonet"})
	is.True(err != nil)
	is.Equal(exitCode(err), exitUsage)

	_, err = parseNetworks(nil)
	is.True(err != nil)
}

func TestExitCode(t *testing.T) {
	is := is.New(t)
	is.Equal(exitCode(nil), exitOK)
	is.Equal(exitCode(usageError{errMissingName}), exitUsage)
	is.Equal(exitCode(adawallet.ErrDestinationExists), exitExists)
	is.Equal(exitCode(errors.New("boom")), exitFailure)
}

func TestCreateWallet_RestoreAndNeverOverwrite(t *testing.T) {
	is := is.New(t)
	resetFlags(t)
	walletName = "alice"
	seedPhrase = abandonPhrase

	var out bytes.Buffer
	is.NoErr(createWallet(&out))
	is.True(strings.Contains(out.String(), abandonBase))
	is.True(!strings.Contains(out.String(), "root_xsk1")) // secrets stay out of the summary

	path := filepath.Join(outputDir, "alice.json")
	rec, err := adawallet.LoadRecord(path)
	is.NoErr(err)
	v, ok := rec.Get(adawallet.FieldRootKey)
	is.True(ok)
	is.Equal(v, abandonRootKey)

	before, err := os.ReadFile(path)
	is.NoErr(err)

	err = createWallet(&out)
	is.True(errors.Is(err, adawallet.ErrDestinationExists))
	is.Equal(exitCode(err), exitExists)

	after, err := os.ReadFile(path)
	is.NoErr(err)
	is.Equal(before, after)
}

func TestCreateWallet_NoSavePrintsRecord(t *testing.T) {
	is := is.New(t)
	resetFlags(t)
	walletName = "bob"
	seedPhrase = abandonPhrase
	noSave = true
	networkNames = []string{"mainnet"}

	var out bytes.Buffer
	is.NoErr(createWallet(&out))
	is.True(strings.Contains(out.String(), abandonRootKey))
	is.True(strings.Contains(out.String(), abandonBase))
	is.True(!strings.Contains(out.String(), "addr_test1"))

	_, err := os.Stat(filepath.Join(outputDir, "bob.json"))
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestCreateWallet_SingleKey(t *testing.T) {
	is := is.New(t)
	resetFlags(t)
	walletName = "carol"

	var out bytes.Buffer
	is.NoErr(createWallet(&out))

	rec, err := adawallet.LoadRecord(filepath.Join(outputDir, "carol.json"))
	is.NoErr(err)
	_, ok := rec.Get(adawallet.FieldMnemonic)
	is.True(!ok)
	_, ok = rec.Address(address.KindBase, address.Mainnet)
	is.True(!ok)
	_, ok = rec.Address(address.KindEnterprise, address.Preview)
	is.True(ok)
}

func TestCreateWallet_InvalidInput(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func()
	}{
		{name: "bad wallet name", setup: func() { walletName = "../alice"; useMnemonic = true }},
		{name: "bad word count", setup: func() { walletName = "dave"; useMnemonic = true; wordCount = 13 }},
		{name: "bad network", setup: func() { walletName = "dave"; networkNames = []string{"testnet-9"} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			resetFlags(t)
			tc.setup()
			err := createWallet(&bytes.Buffer{})
			is.True(err != nil)
			is.Equal(exitCode(err), exitUsage)
		})
	}
}

func TestCreateWallet_InvalidMnemonic(t *testing.T) {
	is := is.New(t)
	resetFlags(t)
	walletName = "erin"
	seedPhrase = strings.Repeat("abandon ", 24)

	err := createWallet(&bytes.Buffer{})
	is.True(errors.Is(err, adawallet.ErrInvalidMnemonic))
	is.Equal(exitCode(err), exitFailure)

	_, err = os.Stat(filepath.Join(outputDir, "erin.json"))
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestReadPhrase(t *testing.T) {
	is := is.New(t)

	got, err := readPhrase(strings.NewReader("\n  " + abandonPhrase + "  \nignored\n"))
	is.NoErr(err)
	is.Equal(got, abandonPhrase)

	_, err = readPhrase(strings.NewReader("\n\n"))
	is.True(err != nil)
}

func TestInspect_Address(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer
	is.NoErr(inspect(&out, abandonBase))
	s := out.String()
	is.True(strings.Contains(s, "[base address]"))
	is.True(strings.Contains(s, "mainnet (network)"))
	is.True(strings.Contains(s, "00000001 (header)"))
	is.True(strings.Contains(s, abandonKeyHash+" (payment key hash)"))
	is.True(strings.Contains(s, abandonStakeHash+" (stake key hash)"))
}

func TestInspect_Keys(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "single signing key",
			in:   "ed25519_sk1n4smr800l4dxpw5yft6f9mpvc3zyn3tf0vexjxts8wkqx89w0asq6u85wh",
			want: []string{"d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a (public key)"},
		},
		{
			name: "extended signing key",
			in:   "ed25519e_sk1xzazhz9lledz2duu0trjhey0tvvklaz6qav2s0rfszj7zh7er494awajnql0pgkr7skytuypg9nr9mpsfd9dsnrx008726kvnk0smlqdwwyqu",
			want: []string{"63c5d69570349e4233a0575811464f0e8a3fd329abe76e9bdc3d3f1b95982179 (public key)", abandonKeyHash + " (key hash)"},
		},
		{
			name: "payment verification key",
			in:   "addr_vk1v0zad9tsxj0yyvaq2avpz3j0p69rl5ef40nkax7u85l3h9vcy9usef8mg3",
			want: []string{abandonKeyHash + " (key hash)"},
		},
		{
			name: "stake key hash",
			in:   "stake_vkh1ct69594xdptpdetxcq8upq07t8ut674k08hpt6wwyq6yv8jh9pt",
			want: []string{abandonStakeHash + " (key hash)"},
		},
		{
			name: "root key",
			in:   abandonRootKey,
			want: []string{abandonBase + " (mainnet)", abandonKeyHash + " (payment key hash)"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			var out bytes.Buffer
			is.NoErr(inspect(&out, tc.in))
			for _, w := range tc.want {
				is.True(strings.Contains(out.String(), w))
			}
			is.True(!strings.Contains(out.String(), tc.in))
		})
	}
}

func TestInspect_Invalid(t *testing.T) {
	is := is.New(t)
	err := inspect(&bytes.Buffer{}, "addr1notanaddress")
	is.True(err != nil)
	is.Equal(exitCode(err), exitUsage)
}

func TestInspect_Wallet(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()

	rec, err := adawallet.Assemble(adawallet.RestoreFromMnemonic{Phrase: abandonPhrase})
	is.NoErr(err)
	good := filepath.Join(dir, "good.json")
	is.NoErr(adawallet.SaveRecord(rec, good))

	var out bytes.Buffer
	is.NoErr(inspect(&out, good))
	is.Equal(strings.Count(out.String(), ", ok)"), 9)

	data, err := os.ReadFile(good)
	is.NoErr(err)
	tampered := strings.Replace(string(data), abandonKeyHash, strings.Repeat("ab", 28), 1)
	bad := filepath.Join(dir, "bad.json")
	is.NoErr(os.WriteFile(bad, []byte(tampered), 0o600))

	err = inspect(&bytes.Buffer{}, bad)
	is.True(errors.Is(err, errWalletMismatch))
}
