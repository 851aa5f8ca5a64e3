package seedvault

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"mw-wallet/go-seedvault/internal/securemem"
)

// SeedToMnemonic renders a 32-byte seed as a BIP39 recovery phrase for
// offline backup. 64-byte seeds exceed BIP39's entropy range and have no
// phrase form.
func SeedToMnemonic(seed *securemem.Buffer) (string, error) {
	if seed.Len() != SeedLen32 {
		return "", fmt.Errorf("%w: recovery phrase requires a %d-byte seed", ErrInvalidSeedLength, SeedLen32)
	}
	entropy := make([]byte, SeedLen32)
	copy(entropy, seed.Bytes())
	defer securemem.Wipe(entropy)

	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return phrase, nil
}

// SeedFromMnemonic recovers the seed bytes from a backup phrase.
func SeedFromMnemonic(phrase string) (*securemem.Buffer, error) {
	phrase = strings.TrimSpace(phrase)
	if !bip39.IsMnemonicValid(phrase) {
		return nil, ErrInvalidMnemonic
	}
	entropy, err := bip39.EntropyFromMnemonic(phrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	if len(entropy) != SeedLen32 {
		securemem.Wipe(entropy)
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSeedLength, len(entropy))
	}
	return securemem.FromBytes(entropy)
}
