package seedvault

import (
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"mw-wallet/go-seedvault/internal/securemem"
)

// KDFAlgo identifies the key-derivation function stored in a record. The set
// is closed: unknown ids are rejected at derive and decode time, never
// defaulted.
type KDFAlgo byte

const (
	KDFArgon2id KDFAlgo = 1
	KDFScrypt   KDFAlgo = 2
)

const (
	SaltLenMin = 16
	SaltLenMax = 32

	// Floors below which derivation refuses to run. Derivation never falls
	// back to weaker parameters on failure.
	argon2MinPasses   = 1
	argon2MinMemoryKB = 19 * 1024
	scryptMinN        = 1 << 15
	scryptMinR        = 8
)

// Params carries the cost triple for the configured algorithm. For argon2id
// the fields are passes / memory KiB / threads; for scrypt they are N / r / p.
type Params struct {
	Algo     KDFAlgo
	Cost     uint32
	Block    uint32
	Parallel uint32
}

// DefaultParams returns the argon2id production defaults: 2 passes, 64 MiB,
// single lane. Derivation at these settings is deliberately slow; never call
// it on a hot path.
func DefaultParams() Params {
	return Params{Algo: KDFArgon2id, Cost: 2, Block: 64 * 1024, Parallel: 1}
}

// DefaultScryptParams returns the scrypt cost triple used for records that
// predate the argon2id default: N=2^18, r=8, p=1 (~256 MiB working memory).
func DefaultScryptParams() Params {
	return Params{Algo: KDFScrypt, Cost: 1 << 18, Block: 8, Parallel: 1}
}

// Validate rejects unknown algorithms and any cost triple below the floor.
// Records asking for weaker derivation than the floor are refused outright
// so a tampered header cannot downgrade the work factor.
func (p Params) Validate() error {
	switch p.Algo {
	case KDFArgon2id:
		if p.Cost < argon2MinPasses || p.Block < argon2MinMemoryKB || p.Parallel < 1 || p.Parallel > 255 {
			return fmt.Errorf("%w: argon2id cost=%d mem_kb=%d threads=%d", ErrWeakParams, p.Cost, p.Block, p.Parallel)
		}
	case KDFScrypt:
		if p.Cost < scryptMinN || p.Cost&(p.Cost-1) != 0 || p.Block < scryptMinR || p.Parallel < 1 {
			return fmt.Errorf("%w: scrypt n=%d r=%d p=%d", ErrWeakParams, p.Cost, p.Block, p.Parallel)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKDF, p.Algo)
	}
	return nil
}

// DeriveKey stretches the passphrase into a 32-byte cipher key. It is
// deterministic for a fixed passphrase+salt+params triple, which is what lets
// a stored record decrypt again.
func DeriveKey(passphrase *securemem.Buffer, salt []byte, p Params) (*securemem.Buffer, error) {
	if passphrase.Len() == 0 {
		return nil, ErrPassphraseRequired
	}
	if len(salt) < SaltLenMin || len(salt) > SaltLenMax {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSalt, len(salt))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var key []byte
	switch p.Algo {
	case KDFArgon2id:
		key = argon2.IDKey(passphrase.Bytes(), salt, p.Cost, p.Block, uint8(p.Parallel), chacha20poly1305.KeySize)
	case KDFScrypt:
		var err error
		key, err = scrypt.Key(passphrase.Bytes(), salt, int(p.Cost), int(p.Block), int(p.Parallel), chacha20poly1305.KeySize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKDFUnavailable, err)
		}
	}
	return securemem.FromBytes(key)
}
