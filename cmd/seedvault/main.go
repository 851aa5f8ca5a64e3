package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awnumar/memguard"
	"golang.org/x/term"

	"mw-wallet/go-seedvault/internal/config"
	"mw-wallet/go-seedvault/internal/platform/privacylog"
	"mw-wallet/go-seedvault/internal/platform/ratelimiter"
	"mw-wallet/go-seedvault/internal/securemem"
	"mw-wallet/go-seedvault/internal/seedfile"
	"mw-wallet/go-seedvault/internal/seedvault"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const unlockAttempts = 3

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "Path to seedvault.yaml (optional)")
	filePath := flag.String("file", "", "Seed record file (default <dataDir>/seed.vault)")
	seedSize := flag.Int("seed-size", seedvault.SeedLen32, "New seed length in bytes: 32 or 64")
	showPhrase := flag.Bool("show-phrase", false, "Print the recovery phrase after init (32-byte seeds only)")
	flag.Usage = usage
	flag.Parse()
	if *showVersion {
		fmt.Printf("seedvault version=%s commit=%s build_date=%s\n", version, commit, buildDate)
		return
	}
	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	memguard.CatchInterrupt()
	defer memguard.Purge()

	logger := slog.New(privacylog.WrapHandler(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("seedvault: config: %v", err)
	}
	path := *filePath
	if path == "" {
		path = filepath.Join(cfg.DataDir, "seed.vault")
	}

	switch flag.Arg(0) {
	case "init":
		err = runInit(logger, cfg, path, *seedSize, *showPhrase)
	case "restore":
		err = runRestore(logger, cfg, path)
	case "unlock":
		err = runUnlock(logger, path)
	case "rekey":
		err = runRekey(logger, path)
	case "fingerprint":
		err = runFingerprint(path)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		memguard.Purge()
		log.Fatalf("seedvault: %v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: seedvault [flags] <command>

Commands:
  init         create a new random seed and write the encrypted record
  restore      rebuild the encrypted record from a recovery phrase
  unlock       verify the passphrase opens the stored record
  rekey        change the passphrase without changing the seed
  fingerprint  print the public fingerprint of the stored record

Flags:
`)
	flag.PrintDefaults()
}

func runInit(logger *slog.Logger, cfg config.Config, path string, seedSize int, showPhrase bool) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing record at %s; use rekey or remove it first", path)
	}

	seed, err := seedvault.NewRandomSeed(seedSize)
	if err != nil {
		return err
	}
	defer seed.Destroy()

	passphrase, err := promptNewPassphrase()
	if err != nil {
		return err
	}
	defer passphrase.Destroy()

	rec, err := seedvault.Create(passphrase, seed, cfg.KDF)
	if err != nil {
		return err
	}
	encoded := rec.Encode()
	if err := seedfile.Store(path, encoded); err != nil {
		return err
	}

	fp := seedfile.Fingerprint(encoded)
	logger.Info("seed record created", "record_id", fp, "seed_file", path)
	fmt.Println(fp)

	if showPhrase {
		phrase, err := seedvault.SeedToMnemonic(seed)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Recovery phrase (write it down, then clear your terminal):")
		fmt.Println(phrase)
	}
	return nil
}

func runRestore(logger *slog.Logger, cfg config.Config, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing record at %s", path)
	}

	fmt.Fprint(os.Stderr, "Enter recovery phrase: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read recovery phrase: %w", err)
	}
	seed, err := seedvault.SeedFromMnemonic(strings.TrimSpace(line))
	if err != nil {
		return err
	}
	defer seed.Destroy()

	passphrase, err := promptNewPassphrase()
	if err != nil {
		return err
	}
	defer passphrase.Destroy()

	rec, err := seedvault.Create(passphrase, seed, cfg.KDF)
	if err != nil {
		return err
	}
	encoded := rec.Encode()
	if err := seedfile.Store(path, encoded); err != nil {
		return err
	}
	logger.Info("seed record restored", "record_id", seedfile.Fingerprint(encoded), "seed_file", path)
	fmt.Println(seedfile.Fingerprint(encoded))
	return nil
}

func runUnlock(logger *slog.Logger, path string) error {
	rec, fp, err := loadRecord(path)
	if err != nil {
		return err
	}
	limiter := ratelimiter.New(0.2, unlockAttempts, 10*time.Minute)

	for attempt := 1; attempt <= unlockAttempts; attempt++ {
		if !limiter.Allow(fp, time.Now()) {
			return errors.New("too many unlock attempts; wait and retry")
		}
		passphrase, err := promptPassphrase("Enter passphrase: ")
		if err != nil {
			return err
		}
		seed, err := seedvault.Unlock(rec, passphrase)
		passphrase.Destroy()
		if err == nil {
			seed.Destroy()
			logger.Info("unlock ok", "record_id", fp)
			fmt.Println("ok")
			return nil
		}
		if !errors.Is(err, seedvault.ErrWrongPassphraseOrCorrupt) {
			return err
		}
		logger.Warn("unlock failed", "record_id", fp, "attempt", attempt)
		fmt.Fprintln(os.Stderr, "wrong passphrase or corrupt seed record")
	}
	return errors.New("unlock failed")
}

func runRekey(logger *slog.Logger, path string) error {
	rec, fp, err := loadRecord(path)
	if err != nil {
		return err
	}

	oldPass, err := promptPassphrase("Enter current passphrase: ")
	if err != nil {
		return err
	}
	defer oldPass.Destroy()
	newPass, err := promptNewPassphrase()
	if err != nil {
		return err
	}
	defer newPass.Destroy()

	next, err := seedvault.Rekey(rec, oldPass, newPass)
	if err != nil {
		if errors.Is(err, seedvault.ErrWrongPassphraseOrCorrupt) {
			logger.Warn("rekey refused", "record_id", fp)
			return errors.New("wrong passphrase or corrupt seed record")
		}
		return err
	}
	encoded := next.Encode()
	if err := seedfile.Store(path, encoded); err != nil {
		return err
	}
	logger.Info("seed record rekeyed", "record_id", seedfile.Fingerprint(encoded), "seed_file", path)
	fmt.Println(seedfile.Fingerprint(encoded))
	return nil
}

func runFingerprint(path string) error {
	raw, err := seedfile.Load(path)
	if err != nil {
		return err
	}
	if _, err := seedvault.Decode(raw); err != nil {
		return err
	}
	fmt.Println(seedfile.Fingerprint(raw))
	return nil
}

func loadRecord(path string) (*seedvault.Record, string, error) {
	raw, err := seedfile.Load(path)
	if err != nil {
		return nil, "", err
	}
	rec, err := seedvault.Decode(raw)
	if err != nil {
		return nil, "", err
	}
	return rec, seedfile.Fingerprint(raw), nil
}

func promptPassphrase(prompt string) (*securemem.Buffer, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run seedvault interactively")
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	return securemem.FromBytes(raw)
}

func promptNewPassphrase() (*securemem.Buffer, error) {
	first, err := promptPassphrase("Enter new passphrase: ")
	if err != nil {
		return nil, err
	}
	second, err := promptPassphrase("Repeat new passphrase: ")
	if err != nil {
		first.Destroy()
		return nil, err
	}
	defer second.Destroy()
	if !first.Equal(second.Bytes()) {
		first.Destroy()
		return nil, errors.New("passphrases do not match")
	}
	return first, nil
}
