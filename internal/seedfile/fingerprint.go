package seedfile

import (
	"crypto/sha256"

	"github.com/mr-tron/base58/base58"
)

// Fingerprint derives a stable public identifier from an encoded record.
// It is computed over ciphertext, never plaintext, so it is safe to display
// and to log; it changes whenever the record is rekeyed.
func Fingerprint(encoded []byte) string {
	h := sha256.Sum256(encoded)
	return "seed1" + base58.Encode(h[:])
}
