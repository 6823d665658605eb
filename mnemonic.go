// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package adawallet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/complex-gh/adawallet/secret"
	"github.com/tyler-smith/go-bip39"
	"github.com/tyler-smith/go-bip39/wordlists"
	lang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var (
	// ErrInvalidMnemonic is returned when a phrase has an unknown word, the
	// wrong number of words or a bad checksum.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrInvalidWordCount is returned for word counts BIP39 does not define.
	ErrInvalidWordCount = errors.New("invalid word count")
)

// DefaultWordCount is the mnemonic length used when none is requested.
const DefaultWordCount = 24

// Map word count to entropy size in bytes for BIP39
var entropySizeMap = map[int]int{
	12: 16, // 128 bits
	15: 20, // 160 bits
	18: 24, // 192 bits
	21: 28, // 224 bits
	24: 32, // 256 bits
}

// EntropySize returns the entropy length in bytes for a mnemonic of
// wordCount words.
func EntropySize(wordCount int) (int, error) {
	size, ok := entropySizeMap[wordCount]
	if !ok {
		return 0, fmt.Errorf("%w: %d (must be 12, 15, 18, 21, or 24)", ErrInvalidWordCount, wordCount)
	}
	return size, nil
}

// NormalizeMnemonic lowercases a phrase and collapses runs of whitespace to
// single spaces.
func NormalizeMnemonic(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// MnemonicToEntropy decodes a phrase from the active wordlist back to its
// entropy. The caller owns the returned slice and should clear it.
func MnemonicToEntropy(phrase string) ([]byte, error) {
	phrase = NormalizeMnemonic(phrase)
	if _, err := EntropySize(len(strings.Fields(phrase))); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}

	entropy, err := bip39.EntropyFromMnemonic(phrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}
	return entropy, nil
}

// EntropyToMnemonic encodes entropy as a phrase of wordCount words. The
// entropy length must match the word count.
func EntropyToMnemonic(entropy []byte, wordCount int) (string, error) {
	size, err := EntropySize(wordCount)
	if err != nil {
		return "", err
	}
	if len(entropy) != size {
		return "", fmt.Errorf("%w: %d words need %d bytes of entropy, got %d", ErrInvalidWordCount, wordCount, size, len(entropy))
	}

	words, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("could not create a mnemonic set of words: %w", err)
	}
	return words, nil
}

// GenerateMnemonic reads fresh entropy from r and returns a phrase of
// wordCount words.
func GenerateMnemonic(r io.Reader, wordCount int) (string, error) {
	size, err := EntropySize(wordCount)
	if err != nil {
		return "", err
	}

	entropy := secret.New(size)
	defer entropy.Destroy()

	if _, err := io.ReadFull(r, entropy.Expose()); err != nil {
		return "", fmt.Errorf("could not read entropy: %w", err)
	}
	return EntropyToMnemonic(entropy.Expose(), wordCount)
}

// SetLanguage sets the language of the bip39 mnemonic seed. It accepts a
// language tag ("en", "ja") or an English language name ("japanese",
// "simplified chinese"). The wordlist is process-wide: set it once before
// assembling wallets concurrently.
func SetLanguage(language string) error {
	list := getWordlist(language)
	if list == nil {
		return fmt.Errorf("language %q is not supported", language)
	}
	bip39.SetWordList(list)
	return nil
}

func sanitizeLang(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

var wordLists = map[lang.Tag][]string{
	lang.Chinese:              wordlists.ChineseSimplified,
	lang.SimplifiedChinese:    wordlists.ChineseSimplified,
	lang.TraditionalChinese:   wordlists.ChineseTraditional,
	lang.Czech:                wordlists.Czech,
	lang.AmericanEnglish:      wordlists.English,
	lang.BritishEnglish:       wordlists.English,
	lang.English:              wordlists.English,
	lang.French:               wordlists.French,
	lang.Italian:              wordlists.Italian,
	lang.Japanese:             wordlists.Japanese,
	lang.Korean:               wordlists.Korean,
	lang.Spanish:              wordlists.Spanish,
	lang.EuropeanSpanish:      wordlists.Spanish,
	lang.LatinAmericanSpanish: wordlists.Spanish,
}

func getWordlist(language string) []string {
	language = sanitizeLang(language)
	tag := lang.Make(language)
	en := display.English.Languages() // default language name matcher
	for t := range wordLists {
		if sanitizeLang(en.Name(t)) == language {
			tag = t
			break
		}
	}
	if tag == lang.Und { // Unknown language
		return nil
	}
	base, _ := tag.Base()
	btag := lang.MustParse(base.String())
	wl := wordLists[tag]
	if wl == nil {
		return wordLists[btag]
	}
	return wl
}
