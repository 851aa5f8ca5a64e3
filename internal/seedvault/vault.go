// Package seedvault encrypts a wallet's master seed under a passphrase for
// storage on durable media: a memory-hard KDF stretches the passphrase into a
// cipher key, an AEAD seals the seed, and a fixed binary codec carries the
// result. Every operation is a synchronous bounded computation with no shared
// state; callers treat DeriveKey-backed operations as blocking and offload
// them off latency-sensitive goroutines themselves.
package seedvault

import (
	"crypto/rand"
	"fmt"

	"mw-wallet/go-seedvault/internal/securemem"
)

// Supported master seed lengths in bytes.
const (
	SeedLen32 = 32
	SeedLen64 = 64

	saltLen = 16
)

// NewRandomSeed draws a fresh master seed from the system CSPRNG.
func NewRandomSeed(length int) (*securemem.Buffer, error) {
	if length != SeedLen32 && length != SeedLen64 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSeedLength, length)
	}
	seed, err := securemem.Random(length)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropyExhausted, err)
	}
	return seed, nil
}

// Create seals seed under passphrase with a fresh random salt and nonce and
// returns the record to persist. The caller keeps ownership of both buffers.
func Create(passphrase, seed *securemem.Buffer, params Params) (*Record, error) {
	if passphrase.Len() == 0 {
		return nil, ErrPassphraseRequired
	}
	if seed.Len() != SeedLen32 && seed.Len() != SeedLen64 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSeedLength, seed.Len())
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	salt, err := randomBytes(saltLen)
	if err != nil {
		return nil, err
	}
	nonce, err := randomBytes(NonceLen)
	if err != nil {
		return nil, err
	}

	key, err := DeriveKey(passphrase, salt, params)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	rec := &Record{Version: RecordVersion, Salt: salt, KDF: params, Nonce: nonce}
	rec.Ciphertext, rec.Tag, err = Seal(key, nonce, seed.Bytes(), rec.aad())
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Unlock re-derives the key from the record's stored salt and parameters and
// opens the ciphertext. Any failure to open surfaces as
// ErrWrongPassphraseOrCorrupt with the internal cause wrapped for logging;
// callers must not present the cause to an end user.
func Unlock(rec *Record, passphrase *securemem.Buffer) (*securemem.Buffer, error) {
	if rec == nil {
		return nil, ErrTruncated
	}
	if rec.Version != RecordVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}
	if passphrase.Len() == 0 {
		return nil, ErrPassphraseRequired
	}

	key, err := DeriveKey(passphrase, rec.Salt, rec.KDF)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	seed, err := Open(key, rec.Nonce, rec.Ciphertext, rec.Tag, rec.aad())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrongPassphraseOrCorrupt, err)
	}
	return seed, nil
}

// Rekey re-encrypts the seed under newPassphrase with fresh salt and nonce.
// The input record is left untouched; the caller swaps old for new
// atomically. The seed exists unlocked only inside this call and is wiped on
// every path out.
func Rekey(rec *Record, oldPassphrase, newPassphrase *securemem.Buffer) (*Record, error) {
	if newPassphrase.Len() == 0 {
		return nil, ErrPassphraseRequired
	}
	seed, err := Unlock(rec, oldPassphrase)
	if err != nil {
		return nil, err
	}
	defer seed.Destroy()
	return Create(newPassphrase, seed, rec.KDF)
}

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropyExhausted, err)
	}
	return buf, nil
}
