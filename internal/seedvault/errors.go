package seedvault

import "errors"

var (
	ErrPassphraseRequired = errors.New("passphrase is required")
	ErrInvalidSeedLength  = errors.New("seed length is not supported")
	ErrWeakParams         = errors.New("kdf parameters are below the minimum security floor")
	ErrInvalidSalt        = errors.New("kdf salt length is out of bounds")
	ErrUnknownKDF         = errors.New("unknown kdf algorithm id")
	ErrKDFUnavailable     = errors.New("kdf could not run with the given parameters")
	ErrInvalidKey         = errors.New("cipher key length is invalid")
	ErrInvalidNonce       = errors.New("cipher nonce length is invalid")
	ErrAuthFailed         = errors.New("ciphertext authentication failed")
	ErrEntropyExhausted   = errors.New("random source failed")
	ErrUnsupportedVersion = errors.New("unsupported record version")
	ErrTruncated          = errors.New("record is truncated")
	ErrTrailingData       = errors.New("record has trailing bytes")
	ErrInvalidMnemonic    = errors.New("invalid recovery phrase")

	// ErrWrongPassphraseOrCorrupt is the only failure Unlock surfaces for a
	// record that does not open. Callers showing errors to an end user must
	// not distinguish a wrong passphrase from a corrupted record; the
	// wrapped cause exists for logs only.
	ErrWrongPassphraseOrCorrupt = errors.New("wrong passphrase or corrupt seed record")
)
