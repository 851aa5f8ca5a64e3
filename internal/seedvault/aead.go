package seedvault

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"mw-wallet/go-seedvault/internal/securemem"
)

const (
	NonceLen = chacha20poly1305.NonceSize
	TagLen   = 16
)

// Seal encrypts plaintext under key and nonce, binding aad into the tag.
// The nonce must be unique per key; the caller sources it from the CSPRNG.
func Seal(key *securemem.Buffer, nonce, plaintext, aad []byte) (ciphertext []byte, tag [TagLen]byte, err error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, tag, err
	}
	if len(nonce) != NonceLen {
		return nil, tag, fmt.Errorf("%w: %d bytes", ErrInvalidNonce, len(nonce))
	}
	sealed := aead.Seal(nil, nonce, plaintext, aad)
	ciphertext = sealed[:len(sealed)-TagLen]
	copy(tag[:], sealed[len(sealed)-TagLen:])
	return ciphertext, tag, nil
}

// Open verifies the tag over ciphertext+aad before releasing any plaintext.
// The comparison is constant time inside the AEAD; a mismatch yields
// ErrAuthFailed and no partial output.
func Open(key *securemem.Buffer, nonce, ciphertext []byte, tag [TagLen]byte, aad []byte) (*securemem.Buffer, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidNonce, len(nonce))
	}
	sealed := make([]byte, 0, len(ciphertext)+TagLen)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag[:]...)
	plaintext, err := aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return securemem.FromBytes(plaintext)
}

func newAEAD(key *securemem.Buffer) (cipher.AEAD, error) {
	if key.Len() != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKey, key.Len())
	}
	aead, err := chacha20poly1305.New(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return aead, nil
}
