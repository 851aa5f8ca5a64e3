// Package config resolves tool settings from an optional YAML file plus
// SEEDVAULT_* environment overrides. KDF settings resolved here pass through
// the same validation floors the vault itself enforces, so a config file
// cannot weaken derivation below policy.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"mw-wallet/go-seedvault/internal/seedvault"
)

const (
	envDataDir  = "SEEDVAULT_DATA_DIR"
	envKDFAlgo  = "SEEDVAULT_KDF_ALGO"
	envKDFCost  = "SEEDVAULT_KDF_COST"
	envKDFBlock = "SEEDVAULT_KDF_BLOCK"
	envKDFPar   = "SEEDVAULT_KDF_PARALLEL"
)

type Config struct {
	DataDir string
	KDF     seedvault.Params
}

type fileConfig struct {
	DataDir string     `yaml:"dataDir"`
	KDF     kdfSection `yaml:"kdf"`
}

type kdfSection struct {
	Algo     string `yaml:"algo"`
	Cost     uint32 `yaml:"cost"`
	Block    uint32 `yaml:"block"`
	Parallel uint32 `yaml:"parallel"`
}

func Default() Config {
	return Config{
		DataDir: "wallet-data",
		KDF:     seedvault.DefaultParams(),
	}
}

// Load merges defaults, the first readable YAML candidate, and env
// overrides, in that order.
func Load(configPath string) (Config, error) {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"configs/seedvault.yaml",
			"seedvault.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := merge(&cfg, parsed); err != nil {
			return Config{}, err
		}
		break
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.KDF.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func merge(dst *Config, src fileConfig) error {
	if strings.TrimSpace(src.DataDir) != "" {
		dst.DataDir = strings.TrimSpace(src.DataDir)
	}
	if src.KDF.Algo != "" {
		params, err := paramsForAlgo(src.KDF.Algo, dst.KDF)
		if err != nil {
			return err
		}
		dst.KDF = params
	}
	if src.KDF.Cost != 0 {
		dst.KDF.Cost = src.KDF.Cost
	}
	if src.KDF.Block != 0 {
		dst.KDF.Block = src.KDF.Block
	}
	if src.KDF.Parallel != 0 {
		dst.KDF.Parallel = src.KDF.Parallel
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(envDataDir)); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(envKDFAlgo)); v != "" {
		params, err := paramsForAlgo(v, cfg.KDF)
		if err != nil {
			return err
		}
		cfg.KDF = params
	}
	for _, override := range []struct {
		env string
		dst *uint32
	}{
		{envKDFCost, &cfg.KDF.Cost},
		{envKDFBlock, &cfg.KDF.Block},
		{envKDFPar, &cfg.KDF.Parallel},
	} {
		v := strings.TrimSpace(os.Getenv(override.env))
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", override.env, err)
		}
		*override.dst = uint32(parsed)
	}
	return nil
}

// paramsForAlgo switches the cost triple to the named algorithm's defaults;
// explicit cost fields still override afterwards. The algorithm set is
// closed: unknown names are an error, never a fallback.
func paramsForAlgo(name string, current seedvault.Params) (seedvault.Params, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "argon2id":
		if current.Algo == seedvault.KDFArgon2id {
			return current, nil
		}
		return seedvault.DefaultParams(), nil
	case "scrypt":
		if current.Algo == seedvault.KDFScrypt {
			return current, nil
		}
		return seedvault.DefaultScryptParams(), nil
	default:
		return seedvault.Params{}, fmt.Errorf("%w: %q", seedvault.ErrUnknownKDF, name)
	}
}
