package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvSeed      = "TXT2BB_SEED"
	EnvLogLevel  = "TXT2BB_LOG_LEVEL"
	EnvOutputDir = "TXT2BB_OUTPUT_DIR"
)

// LoadEnvFile loads variables from an optional dotenv file. Variables that
// are already set in the process environment win.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config fields from the environment.
func ApplyEnv(cfg *Config) error {
	if raw := getEnv(EnvSeed, ""); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not an unsigned integer", EnvSeed, raw)
		}
		cfg.Randomise.Seed = &seed
	}
	cfg.Log.Level = getEnv(EnvLogLevel, cfg.Log.Level)
	cfg.Output.Dir = getEnv(EnvOutputDir, cfg.Output.Dir)
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
