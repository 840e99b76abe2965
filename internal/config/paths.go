package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config path constants used by the CLI and loaders.
const (
	ConfigFileName = ".txt2bb.yml"
	EnvFileName    = ".env"
)

// ErrConfigNotFound is returned by FindConfigPath when no config file exists
// in the start directory or any parent.
var ErrConfigNotFound = errors.New("config file not found")

// FindConfigPath searches upward from a directory for a config file.
func FindConfigPath(startDir string) (string, error) {
	dir := strings.TrimSpace(startDir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	dir = abs

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(configPath)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %q is a directory", configPath)
			}
			return configPath, nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat config path %q: %w", configPath, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s in %s or parent directories: %w", ConfigFileName, abs, ErrConfigNotFound)
		}
		dir = parent
	}
}

// Resolve loads the config at path, or searches upward from the working
// directory when path is empty. A missing config yields Default.
func Resolve(path string) (Config, string, error) {
	if strings.TrimSpace(path) != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}
	found, err := FindConfigPath("")
	if errors.Is(err, ErrConfigNotFound) {
		return Default(), "", nil
	}
	if err != nil {
		return Config{}, "", err
	}
	cfg, err := Load(found)
	return cfg, found, err
}
