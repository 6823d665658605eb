// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package adawallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/complex-gh/adawallet/internal/log"
)

// ErrDestinationExists is returned when a wallet file is already present.
// Existing wallets are never overwritten.
var ErrDestinationExists = errors.New("wallet file already exists")

// RecordExt is the extension of persisted wallet files.
const RecordExt = ".json"

// UnsavedWarning is shown when the caller declines to persist a record.
const UnsavedWarning = "WARNING: the wallet was not saved. Copy the secret keys now; they cannot be recovered later without the mnemonic."

// RecordPath returns the path of the file a wallet called name is stored
// in: <dir>/<name>.json. The name must not contain path separators.
func RecordPath(dir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("wallet name must not be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid wallet name %q", name)
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name+RecordExt), nil
}

// CheckDestination fails with ErrDestinationExists when path is taken.
func CheckDestination(path string) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrDestinationExists, path)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("could not check %s: %w", path, err)
	}
}

// MarshalRecord returns the persisted form of rec: a JSON object indented
// with two spaces, keys in field order, followed by a newline.
func MarshalRecord(rec *Record) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode wallet: %w", err)
	}
	return append(data, '\n'), nil
}

// SaveRecord writes rec to path. The file is created with mode 0600 and
// must not already exist.
func SaveRecord(rec *Record, path string) error {
	data, err := MarshalRecord(rec)
	if err != nil {
		return err
	}
	defer clear(data)

	// G304: path is chosen by the user, which is expected for a CLI tool
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, path)
		}
		return fmt.Errorf("could not create %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("could not close %s: %w", path, err)
	}

	log.Store.Info().Str("path", path).Str("mode", rec.Mode()).Msg("wallet saved")
	return nil
}

// LoadRecord reads a wallet file written by SaveRecord. Field order is
// preserved.
func LoadRecord(path string) (*Record, error) {
	// G304: path is chosen by the user, which is expected for a CLI tool
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	defer clear(data)

	rec := &Record{}
	if err := rec.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	return rec, nil
}
