package seedvault

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"mw-wallet/go-seedvault/internal/securemem"
)

func zeroSeed(t *testing.T) *securemem.Buffer {
	t.Helper()
	seed, err := securemem.FromBytes(make([]byte, SeedLen32))
	if err != nil {
		t.Fatalf("seed buffer failed: %v", err)
	}
	t.Cleanup(seed.Destroy)
	return seed
}

func TestCreateUnlockRoundtrip(t *testing.T) {
	rec, err := Create(testPassphrase(t, "correct horse battery staple"), zeroSeed(t), testArgonParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(rec.Ciphertext) != SeedLen32 {
		t.Fatalf("ciphertext length should equal plaintext length, got %d", len(rec.Ciphertext))
	}
	if len(rec.Tag) != TagLen {
		t.Fatalf("tag should be %d bytes, got %d", TagLen, len(rec.Tag))
	}

	seed, err := Unlock(rec, testPassphrase(t, "correct horse battery staple"))
	if err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	defer seed.Destroy()
	if !bytes.Equal(seed.Bytes(), make([]byte, SeedLen32)) {
		t.Fatal("unlocked seed should match the original zero seed")
	}
}

func TestCreateUnlockRoundtripScrypt(t *testing.T) {
	rec, err := Create(testPassphrase(t, "pass"), zeroSeed(t), testScryptParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	seed, err := Unlock(rec, testPassphrase(t, "pass"))
	if err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	seed.Destroy()
}

func TestUnlockWrongPassphraseFails(t *testing.T) {
	rec, err := Create(testPassphrase(t, "correct horse battery staple"), zeroSeed(t), testArgonParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := Unlock(rec, testPassphrase(t, "wrong")); !errors.Is(err, ErrWrongPassphraseOrCorrupt) {
		t.Fatalf("expected ErrWrongPassphraseOrCorrupt, got %v", err)
	}
}

func TestUnlockDetectsSingleBitTamper(t *testing.T) {
	rec, err := Create(testPassphrase(t, "pass"), zeroSeed(t), testArgonParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tamper := func(name string, mutate func(*Record)) {
		mutated := *rec
		mutated.Salt = append([]byte(nil), rec.Salt...)
		mutated.Nonce = append([]byte(nil), rec.Nonce...)
		mutated.Ciphertext = append([]byte(nil), rec.Ciphertext...)
		mutate(&mutated)
		if _, err := Unlock(&mutated, testPassphrase(t, "pass")); !errors.Is(err, ErrWrongPassphraseOrCorrupt) {
			t.Fatalf("%s: expected ErrWrongPassphraseOrCorrupt, got %v", name, err)
		}
	}

	tamper("ciphertext bit flip", func(r *Record) { r.Ciphertext[0] ^= 0x01 })
	tamper("nonce bit flip", func(r *Record) { r.Nonce[NonceLen-1] ^= 0x80 })
	tamper("tag bit flip", func(r *Record) { r.Tag[0] ^= 0x01 })
	tamper("salt bit flip", func(r *Record) { r.Salt[0] ^= 0x01 })
}

func TestUnlockRejectsParameterSwap(t *testing.T) {
	rec, err := Create(testPassphrase(t, "pass"), zeroSeed(t), testArgonParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Raising the advertised cost changes both the derived key and the
	// associated data; the record must not open under edited parameters.
	swapped := *rec
	swapped.KDF.Cost = rec.KDF.Cost + 1
	if _, err := Unlock(&swapped, testPassphrase(t, "pass")); !errors.Is(err, ErrWrongPassphraseOrCorrupt) {
		t.Fatalf("expected ErrWrongPassphraseOrCorrupt, got %v", err)
	}
}

func TestUnlockRejectsKDFDowngrade(t *testing.T) {
	rec, err := Create(testPassphrase(t, "pass"), zeroSeed(t), testArgonParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	downgraded := *rec
	downgraded.KDF.Block = 1024
	if _, err := Unlock(&downgraded, testPassphrase(t, "pass")); !errors.Is(err, ErrWeakParams) {
		t.Fatalf("expected ErrWeakParams for downgraded record, got %v", err)
	}
}

func TestCreateUsesFreshSaltAndNonce(t *testing.T) {
	const n = 8
	salts := make(map[string]struct{}, n)
	nonces := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		rec, err := Create(testPassphrase(t, "pass"), zeroSeed(t), testArgonParams())
		if err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
		salts[fmt.Sprintf("%x", rec.Salt)] = struct{}{}
		nonces[fmt.Sprintf("%x", rec.Nonce)] = struct{}{}
	}
	if len(salts) != n {
		t.Fatalf("expected %d distinct salts, got %d", n, len(salts))
	}
	if len(nonces) != n {
		t.Fatalf("expected %d distinct nonces, got %d", n, len(nonces))
	}
}

func TestCreateValidatesInputs(t *testing.T) {
	shortSeed, err := securemem.FromBytes(make([]byte, 16))
	if err != nil {
		t.Fatalf("seed buffer failed: %v", err)
	}
	defer shortSeed.Destroy()

	if _, err := Create(testPassphrase(t, "pass"), shortSeed, testArgonParams()); !errors.Is(err, ErrInvalidSeedLength) {
		t.Fatalf("expected ErrInvalidSeedLength, got %v", err)
	}
	if _, err := Create(nil, zeroSeed(t), testArgonParams()); !errors.Is(err, ErrPassphraseRequired) {
		t.Fatalf("expected ErrPassphraseRequired, got %v", err)
	}
	weak := Params{Algo: KDFArgon2id, Cost: 1, Block: 1024, Parallel: 1}
	if _, err := Create(testPassphrase(t, "pass"), zeroSeed(t), weak); !errors.Is(err, ErrWeakParams) {
		t.Fatalf("expected ErrWeakParams, got %v", err)
	}
}

func TestUnlockRejectsUnknownVersion(t *testing.T) {
	rec, err := Create(testPassphrase(t, "pass"), zeroSeed(t), testArgonParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	future := *rec
	future.Version = 2
	if _, err := Unlock(&future, testPassphrase(t, "pass")); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestRekeyPreservesSeedAndRotatesMaterial(t *testing.T) {
	original, err := Create(testPassphrase(t, "old-pass"), zeroSeed(t), testArgonParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rekeyed, err := Rekey(original, testPassphrase(t, "old-pass"), testPassphrase(t, "new-pass"))
	if err != nil {
		t.Fatalf("rekey failed: %v", err)
	}
	if bytes.Equal(rekeyed.Salt, original.Salt) {
		t.Fatal("rekeyed record should carry a fresh salt")
	}
	if bytes.Equal(rekeyed.Nonce, original.Nonce) {
		t.Fatal("rekeyed record should carry a fresh nonce")
	}

	seed, err := Unlock(rekeyed, testPassphrase(t, "new-pass"))
	if err != nil {
		t.Fatalf("unlock with new passphrase failed: %v", err)
	}
	defer seed.Destroy()
	if !bytes.Equal(seed.Bytes(), make([]byte, SeedLen32)) {
		t.Fatal("rekey must not change the seed")
	}

	if _, err := Unlock(rekeyed, testPassphrase(t, "old-pass")); !errors.Is(err, ErrWrongPassphraseOrCorrupt) {
		t.Fatal("old passphrase should not open the rekeyed record")
	}
	// The caller owns the atomic swap; the input record stays valid.
	if _, err := Unlock(original, testPassphrase(t, "old-pass")); err != nil {
		t.Fatalf("original record should remain openable until swapped: %v", err)
	}
}

func TestRekeyWrongOldPassphraseFails(t *testing.T) {
	rec, err := Create(testPassphrase(t, "old-pass"), zeroSeed(t), testArgonParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := Rekey(rec, testPassphrase(t, "guess"), testPassphrase(t, "new-pass")); !errors.Is(err, ErrWrongPassphraseOrCorrupt) {
		t.Fatalf("expected ErrWrongPassphraseOrCorrupt, got %v", err)
	}
}

func TestNewRandomSeedLengths(t *testing.T) {
	for _, n := range []int{SeedLen32, SeedLen64} {
		seed, err := NewRandomSeed(n)
		if err != nil {
			t.Fatalf("new seed %d failed: %v", n, err)
		}
		if seed.Len() != n {
			t.Fatalf("expected %d byte seed, got %d", n, seed.Len())
		}
		seed.Destroy()
	}
	if _, err := NewRandomSeed(48); !errors.Is(err, ErrInvalidSeedLength) {
		t.Fatalf("expected ErrInvalidSeedLength, got %v", err)
	}
}

func TestEncodedRecordRoundtripsThroughCodec(t *testing.T) {
	rec, err := Create(testPassphrase(t, "pass"), zeroSeed(t), testArgonParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	decoded, err := Decode(rec.Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	seed, err := Unlock(decoded, testPassphrase(t, "pass"))
	if err != nil {
		t.Fatalf("unlock after codec roundtrip failed: %v", err)
	}
	seed.Destroy()
}
