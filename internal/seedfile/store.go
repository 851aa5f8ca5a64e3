// Package seedfile persists encoded seed records. It is the file-storage
// collaborator of the vault core: the core does byte-level encode/decode
// only, this package owns paths, permissions, and atomic replacement.
package seedfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrNoRecord = errors.New("seed record file does not exist")

// Load reads the raw encoded record.
func Load(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoRecord, path)
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Store writes the encoded record with write-to-temp-then-rename so a crash
// mid-write never leaves a corrupt record behind. When a record already
// exists its previous content is kept as <path>.bak before the swap; a rekey
// therefore always has one recoverable predecessor on disk.
func Store(path string, encoded []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	existing, err := os.ReadFile(path)
	if err == nil {
		if err := writeAtomic(path+".bak", existing, dir); err != nil {
			return fmt.Errorf("backup previous record: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return writeAtomic(path, encoded, dir)
}

func writeAtomic(path string, data []byte, dir string) error {
	tmp, err := os.CreateTemp(dir, ".seedfile-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
