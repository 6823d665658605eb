// Package main provides the adawallet CLI for creating Cardano wallets.
package main

import (
	"bufio"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/complex-gh/adawallet"
	"github.com/complex-gh/adawallet/address"
	"github.com/complex-gh/adawallet/internal/config"
	"github.com/complex-gh/adawallet/internal/log"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-tty"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/muesli/termenv"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

const (
	maxWidth = 72
)

// Process exit codes.
const (
	exitOK      = 0
	exitUsage   = 1
	exitExists  = 2
	exitFailure = 3
)

var (
	baseStyle  = lipgloss.NewStyle().Margin(0, 0, 1, 2) //nolint:mnd
	red        = lipgloss.Color(completeColor("#FF4444", "196", "9"))
	yellow     = lipgloss.Color(completeColor("#FFCC00", "220", "11"))
	errorStyle = baseStyle.
			Foreground(red).
			Background(lipgloss.AdaptiveColor{Light: completeColor("#FFEBEB", "255", "7"), Dark: completeColor("#2B1A1A", "235", "8")}).
			Padding(1, 2) //nolint:mnd
	warningStyle = baseStyle.
			Foreground(yellow).
			Padding(0, 2) //nolint:mnd

	errMissingName = errors.New("missing required flag --name")

	walletName    string
	useMnemonic   bool
	seedPhrase    string
	wordCount     int
	askPassphrase bool
	sshKeyPath    string
	noSave        bool
	printJSON     bool
	showQR        bool
	language      string
	outputDir     string
	networkNames  []string
	logLevel      string
	logJSON       bool

	rootCmd = &cobra.Command{
		Use:   "adawallet --name <wallet>",
		Short: "Create or restore a Cardano wallet",
		Long: `Create or restore a Cardano wallet and save it as <name>.json.

Without --mnemonic or --seed a single Ed25519 key is generated and only
enterprise (no staking) addresses are produced. With --mnemonic a new BIP39
phrase is generated; with --seed an existing phrase is restored. Mnemonic
wallets use the CIP-1852 path m/1852'/1815'/0'/{0,2}/0 and get enterprise,
base and reward addresses for mainnet, preprod and preview.

Existing wallet files are never overwritten.

SECURITY TIP: Add a space before the command to prevent it from being
saved in your shell history. For example:
     adawallet --name alice --seed "..."
    ^ (note the leading space)
Most shells (bash, zsh) are configured to ignore commands that start
with a space. Check your HISTCONTROL or HIST_IGNORE_SPACE settings.`,
		Example: `  adawallet --name alice
  adawallet --name alice --mnemonic
  adawallet --name alice --mnemonic --words 12 --passphrase
  adawallet --name alice --seed "abandon abandon ... art"
  echo "abandon abandon ... art" | adawallet --name alice --seed -
  adawallet --name alice --ssh-key ~/.ssh/id_ed25519
  adawallet --name alice --mnemonic --network preprod --qr
  adawallet --name alice --mnemonic --no-save`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(walletName) == "" {
				return usageError{errMissingName}
			}
			return createWallet(cmd.OutOrStdout())
		},
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect <bech32|wallet.json>",
		Short: "Decode an address or key, or check a saved wallet",
		Long: `Decode a bech32 address or key and print what it contains.

Addresses print their kind, network and credentials. Account public keys
(acct_xvk) also print the payment and stake keys and addresses derived
from them, without any secret material. Signing keys print only their
public key.

Given a wallet file, every address in it is decoded and checked against
the key hashes stored alongside it.`,
		Example: `  adawallet inspect addr1vx2fxv2umyhttkxyxp8x0dlpdt3k6cwng5pxj3jhsydzers66hrl8
  adawallet inspect acct_xvk1...
  adawallet inspect alice.json`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd.OutOrStdout(), args[0])
		},
	}

	manCmd = &cobra.Command{
		Use:          "man",
		Args:         cobra.NoArgs,
		Short:        "generate man pages",
		Hidden:       true,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			manPage, err := mcobra.NewManPage(1, rootCmd)
			if err != nil {
				//nolint: wrapcheck
				return err
			}
			manPage = manPage.WithSection("Copyright", "(C) 2025-2026 complex.\n"+
				"See LICENSE for licensing information.")
			fmt.Println(manPage.Build(roff.NewDocument()))
			return nil
		},
	}

	// completionCmd generates shell completion scripts for bash, zsh, fish, and powershell.
	completionCmd = &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for adawallet.

To load completions:

Bash:
  $ source <(adawallet completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ adawallet completion bash > /etc/bash_completion.d/adawallet
  # macOS:
  $ adawallet completion bash > $(brew --prefix)/etc/bash_completion.d/adawallet

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ adawallet completion zsh > "${fpath[1]}/_adawallet"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ adawallet completion fish | source

  # To load completions for each session, execute once:
  $ adawallet completion fish > ~/.config/fish/completions/adawallet.fish

PowerShell:
  PS> adawallet completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> adawallet completion powershell > adawallet.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		SilenceUsage:          true,
		RunE: func(_ *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unknown shell: %s", args[0])
			}
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&walletName, "name", "n", "", "Wallet name; the wallet is saved as <name>.json (required)")
	rootCmd.Flags().BoolVarP(&useMnemonic, "mnemonic", "m", false, "Generate a new BIP39 mnemonic and derive the wallet from it")
	rootCmd.Flags().StringVarP(&seedPhrase, "seed", "s", "", `Restore from an existing mnemonic ("-" reads it from stdin)`)
	rootCmd.Flags().IntVarP(&wordCount, "words", "w", adawallet.DefaultWordCount, "Mnemonic length for --mnemonic (12, 15, 18, 21, or 24)")
	rootCmd.Flags().BoolVarP(&askPassphrase, "passphrase", "p", false, "Prompt for a mnemonic passphrase")
	rootCmd.Flags().StringVar(&sshKeyPath, "ssh-key", "", "Use an existing OpenSSH ed25519 key as the single wallet key")
	rootCmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write the wallet file; print it instead")
	rootCmd.Flags().BoolVar(&printJSON, "print", false, "Print the full wallet, including secrets, as JSON")
	rootCmd.Flags().BoolVar(&showQR, "qr", false, "Show the first enterprise address as a QR code")
	rootCmd.Flags().StringSliceVar(&networkNames, "network", networkList(address.Networks()), "Networks to build addresses for")

	rootCmd.PersistentFlags().StringVarP(&language, "language", "l", "en", "Mnemonic language")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory wallet files are written to")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(manCmd)
	rootCmd.AddCommand(completionCmd)
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	os.Exit(exitCode(err))
}

// usageError marks errors caused by how the command was invoked.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// exitCode maps an error returned by the command to a process exit code.
func exitCode(err error) int {
	var uerr usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &uerr):
		return exitUsage
	case errors.Is(err, adawallet.ErrDestinationExists):
		return exitExists
	default:
		return exitFailure
	}
}

// setup applies environment defaults to flags that were not given, then
// configures logging and the mnemonic language.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return usageError{err}
	}

	flags := cmd.Flags()
	if !flags.Changed("words") {
		wordCount = cfg.Words
	}
	if !flags.Changed("language") {
		language = cfg.Language
	}
	if !flags.Changed("output-dir") {
		outputDir = cfg.OutputDir
	}
	if !flags.Changed("log-level") {
		logLevel = cfg.LogLevel
	}
	if !flags.Changed("log-json") {
		logJSON = cfg.LogJSON
	}

	log.Init(logLevel, logJSON)

	if err := adawallet.SetLanguage(language); err != nil {
		return usageError{err}
	}
	return nil
}

// walletKind is the wallet flavour chosen by the flags.
type walletKind int

const (
	kindSingleKey walletKind = iota
	kindSSHKey
	kindGenerate
	kindRestore
)

// chooseKind validates flag combinations. --seed wins over --mnemonic.
func chooseKind(seed string, mnemonic, passphrase bool, sshKey string) (walletKind, error) {
	switch {
	case sshKey != "" && (seed != "" || mnemonic):
		return 0, usageError{errors.New("--ssh-key cannot be combined with --mnemonic or --seed")}
	case sshKey != "" && passphrase:
		return 0, usageError{errors.New("--passphrase only applies to mnemonic wallets")}
	case sshKey != "":
		return kindSSHKey, nil
	case seed != "":
		return kindRestore, nil
	case mnemonic:
		return kindGenerate, nil
	case passphrase:
		return 0, usageError{errors.New("--passphrase needs --mnemonic or --seed")}
	default:
		return kindSingleKey, nil
	}
}

// parseNetworks maps network names to networks, dropping duplicates.
func parseNetworks(names []string) ([]address.Network, error) {
	seen := make(map[address.Network]bool)
	nets := make([]address.Network, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		n, err := address.ParseNetwork(name)
		if err != nil {
			return nil, usageError{err}
		}
		if !seen[n] {
			seen[n] = true
			nets = append(nets, n)
		}
	}
	if len(nets) == 0 {
		return nil, usageError{errors.New("no networks selected")}
	}
	return nets, nil
}

func networkList(nets []address.Network) []string {
	out := make([]string, len(nets))
	for i, n := range nets {
		out[i] = n.String()
	}
	return out
}

func createWallet(out io.Writer) error {
	kind, err := chooseKind(seedPhrase, useMnemonic, askPassphrase, sshKeyPath)
	if err != nil {
		return err
	}
	if kind == kindGenerate {
		if _, err := adawallet.EntropySize(wordCount); err != nil {
			return usageError{err}
		}
	}
	nets, err := parseNetworks(networkNames)
	if err != nil {
		return err
	}

	path, err := adawallet.RecordPath(outputDir, walletName)
	if err != nil {
		return usageError{err}
	}
	save := !noSave
	if save {
		if err := adawallet.CheckDestination(path); err != nil {
			return err
		}
	}

	mode, cleanup, err := buildMode(kind)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := adawallet.Assemble(mode, adawallet.WithNetworks(nets...))
	if err != nil {
		return fmt.Errorf("could not create wallet: %w", err)
	}

	if save {
		if err := adawallet.SaveRecord(rec, path); err != nil {
			return err
		}
	}

	if printJSON || !save {
		data, err := adawallet.MarshalRecord(rec)
		if err != nil {
			return err
		}
		_, _ = out.Write(data)
		clear(data)
	} else {
		printSummary(out, rec)
	}

	if showQR {
		if err := printQR(out, rec, nets[0]); err != nil {
			return err
		}
	}

	if save {
		log.CLI.Info().Str("name", walletName).Str("path", path).Msg("wallet saved")
	} else {
		renderBlock(os.Stderr, warningStyle, getWidth(maxWidth), adawallet.UnsavedWarning)
	}
	return nil
}

// buildMode gathers the secrets a wallet kind needs. cleanup wipes them.
func buildMode(kind walletKind) (adawallet.Mode, func(), error) {
	noop := func() {}

	switch kind {
	case kindRestore:
		log.CLI.Info().Msg("restoring wallet using seed phrase")
		phrase := seedPhrase
		if phrase == "-" {
			var err error
			if phrase, err = readPhrase(os.Stdin); err != nil {
				return nil, noop, err
			}
		}
		pass, err := maybeReadPassphrase(false)
		if err != nil {
			return nil, noop, err
		}
		return adawallet.RestoreFromMnemonic{Phrase: phrase, Passphrase: pass}, func() { clear(pass) }, nil

	case kindGenerate:
		log.CLI.Info().Int("words", wordCount).Msg("creating wallet with seed phrase")
		pass, err := maybeReadPassphrase(true)
		if err != nil {
			return nil, noop, err
		}
		return adawallet.GenerateWithMnemonic{WordCount: wordCount, Passphrase: pass}, func() { clear(pass) }, nil

	case kindSSHKey:
		log.CLI.Info().Str("key", sshKeyPath).Msg("creating enterprise wallet from ssh key")
		key, err := loadSSHKey(sshKeyPath)
		if err != nil {
			return nil, noop, err
		}
		return adawallet.GenerateSingleKey{Key: key}, func() { clear(key) }, nil

	default:
		log.CLI.Info().Msg("creating enterprise wallet (no staking)")
		return adawallet.GenerateSingleKey{}, noop, nil
	}
}

func maybeReadPassphrase(confirm bool) ([]byte, error) {
	if !askPassphrase {
		return nil, nil
	}
	pass, err := readPassword("Enter mnemonic passphrase: ")
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	if !confirm {
		return pass, nil
	}

	again, err := readPassword("Repeat mnemonic passphrase: ")
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		clear(pass)
		return nil, err
	}
	defer clear(again)
	if string(again) != string(pass) {
		clear(pass)
		return nil, usageError{errors.New("passphrases do not match")}
	}
	return pass, nil
}

// readPhrase reads a mnemonic from the first non-empty line of r.
func readPhrase(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("could not read seed phrase: %w", err)
	}
	return "", usageError{errors.New("no seed phrase on stdin")}
}

// printSummary prints the public half of a record, grouped under headers.
// Secret fields are left out; they are in the wallet file.
func printSummary(w io.Writer, rec *adawallet.Record) {
	current := ""
	for _, f := range rec.Fields() {
		if f.Secret() {
			continue
		}
		group := "keys"
		if kind, _, ok := strings.Cut(f.Key, "_address_"); ok {
			group = kind + " addresses"
		} else if strings.HasPrefix(f.Key, "stake_") {
			group = "stake key"
		} else if strings.Contains(f.Key, "derivation_path") {
			group = "derivation"
		}
		if group != current {
			if current != "" {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "[%s]\n\n", group)
			current = group
		}
		_, _ = fmt.Fprintf(w, "%s (%s)\n", f.Value, f.Key)
	}
	_, _ = fmt.Fprintln(w)
}

func printQR(w io.Writer, rec *adawallet.Record, net address.Network) error {
	addr, ok := rec.Address(address.KindEnterprise, net)
	if !ok {
		return fmt.Errorf("wallet has no enterprise address for %s", net)
	}
	qr, err := qrcode.New(addr, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to create QR code: %w", err)
	}
	_, _ = fmt.Fprintf(w, "[enterprise address %s]\n\n", net)
	_, _ = io.WriteString(w, qr.ToSmallString(false))
	_, _ = fmt.Fprintln(w, addr)
	return nil
}

// getDefaultSSHDir returns the default SSH directory for the current platform.
// On Unix-like systems (Linux, macOS), this is ~/.ssh/.
// On Windows, this is %USERPROFILE%\.ssh\.
func getDefaultSSHDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ssh"), nil
}

// resolveKeyPath attempts to resolve a key path. If the path doesn't exist
// and is just a filename, the default SSH directory is checked for a key
// with that name.
func resolveKeyPath(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	cleanedPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanedPath); dir != "." && dir != "" {
		return "", fmt.Errorf("could not open %s: %w", path, os.ErrNotExist)
	}
	pathLower := strings.ToLower(path)
	if strings.HasPrefix(pathLower, "./") || strings.HasPrefix(pathLower, "../") ||
		strings.HasPrefix(pathLower, ".\\") || strings.HasPrefix(pathLower, "..\\") {
		return "", fmt.Errorf("could not open %s: %w", path, os.ErrNotExist)
	}

	sshDir, err := getDefaultSSHDir()
	if err != nil {
		return "", fmt.Errorf("could not determine SSH directory: %w", err)
	}
	defaultPath := filepath.Join(sshDir, filepath.Base(cleanedPath))
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath, nil
	}
	return "", fmt.Errorf("could not open %s: file not found in current directory or %s: %w", path, sshDir, os.ErrNotExist)
}

// loadSSHKey reads an OpenSSH ed25519 private key, asking for its
// passphrase when it is encrypted.
func loadSSHKey(path string) (ed25519.PrivateKey, error) {
	resolved, err := resolveKeyPath(path)
	if err != nil {
		return nil, err
	}
	// G304: resolved is user-provided input, which is expected for a CLI tool
	bts, err := os.ReadFile(resolved) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("could not read key: %w", err)
	}
	defer clear(bts)

	if isProtected, err := isKeyPasswordProtected(bts); err == nil && !isProtected {
		log.CLI.Warn().Str("key", resolved).Msg("key is not password-protected")
	}

	key, err := parsePrivateKey(bts, nil)
	if err != nil && isPasswordError(err) {
		pass, err := askKeyPassphrase(resolved)
		if err != nil {
			return nil, err
		}
		defer clear(pass)
		key, err = parsePrivateKey(bts, pass)
		if err != nil {
			return nil, fmt.Errorf("could not parse key with passphrase: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("could not parse key: %w", err)
	}

	switch key := key.(type) {
	case *ed25519.PrivateKey:
		return *key, nil
	case ed25519.PrivateKey:
		return key, nil
	default:
		return nil, usageError{fmt.Errorf("unsupported key type %T: only ed25519 keys can be used", key)}
	}
}

func parsePrivateKey(bts, pass []byte) (interface{}, error) {
	if len(pass) == 0 {
		//nolint: wrapcheck
		return ssh.ParseRawPrivateKey(bts)
	}
	//nolint: wrapcheck
	return ssh.ParseRawPrivateKeyWithPassphrase(bts, pass)
}

func isPasswordError(err error) bool {
	var kerr *ssh.PassphraseMissingError
	return errors.As(err, &kerr)
}

// isKeyPasswordProtected checks if an SSH key requires a password.
func isKeyPasswordProtected(bts []byte) (bool, error) {
	_, err := parsePrivateKey(bts, nil)
	if err == nil {
		return false, nil
	}
	if isPasswordError(err) {
		return true, nil
	}
	return false, fmt.Errorf("could not determine if key is password-protected: %w", err)
}

func askKeyPassphrase(path string) ([]byte, error) {
	defer fmt.Fprintf(os.Stderr, "\n")
	return readPassword(fmt.Sprintf("Enter the passphrase to unlock %q: ", path))
}

func readPassword(msg string) ([]byte, error) {
	_, _ = fmt.Fprint(os.Stderr, msg)
	t, err := tty.Open()
	if err != nil {
		return nil, fmt.Errorf("could not open tty: %w", err)
	}
	defer t.Close()                                     //nolint: errcheck
	pass, err := term.ReadPassword(int(t.Input().Fd())) //nolint: gosec
	if err != nil {
		return nil, fmt.Errorf("could not read passphrase: %w", err)
	}
	return pass, nil
}

func getWidth(maxw int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint: gosec
	if err != nil || w > maxw {
		return maxWidth
	}
	return w
}

func renderBlock(w io.Writer, s lipgloss.Style, width int, str string) {
	_, _ = io.WriteString(w, s.Width(width).Render(str))
	_, _ = io.WriteString(w, "\n")
}

// printError writes err to stderr, styled when stderr is a terminal.
func printError(err error) {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		b := strings.Builder{}
		b.WriteRune('\n')
		renderBlock(&b, errorStyle, getWidth(maxWidth), err.Error())
		_, _ = fmt.Fprint(os.Stderr, b.String())
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
}

func completeColor(truecolor, ansi256, ansi string) string {
	//nolint: exhaustive
	switch lipgloss.ColorProfile() {
	case termenv.TrueColor:
		return truecolor
	case termenv.ANSI256:
		return ansi256
	}
	return ansi
}
