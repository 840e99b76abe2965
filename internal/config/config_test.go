package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, dir, payload string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoadAppliesDefaults verifies omitted sections are filled in.
func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "version: 1\nrandomise:\n  enabled: true\n  seed: 7\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultModes, cfg.Output.Modes); diff != "" {
		t.Fatalf("unexpected modes (-want +got):\n%s", diff)
	}
	if !cfg.Randomise.Enabled || cfg.Randomise.Seed == nil || *cfg.Randomise.Seed != 7 {
		t.Fatalf("expected seed 7, got %+v", cfg.Randomise)
	}
	if cfg.Run.OnError != OnErrorAbort || cfg.Run.UI != "auto" {
		t.Fatalf("expected run defaults, got %+v", cfg.Run)
	}
	if !cfg.LooseMarkers() {
		t.Fatalf("expected loose markers by default")
	}
}

// TestParseRejectsUnknownFields verifies strict decoding.
func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("version: 1\noutput:\n  folder: x\n"))
	if err == nil || !strings.Contains(err.Error(), "folder") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

// TestParseRejectsMultipleDocuments verifies a single document is required.
func TestParseRejectsMultipleDocuments(t *testing.T) {
	_, err := Parse([]byte("version: 1\n---\nversion: 1\n"))
	if err == nil || !strings.Contains(err.Error(), "multiple YAML documents") {
		t.Fatalf("expected multiple document error, got %v", err)
	}
}

// TestValidateCollectsIssues verifies every invalid field is reported.
func TestValidateCollectsIssues(t *testing.T) {
	cfg := Config{
		Version: 2,
		Output:  OutputConfig{Modes: []string{"pdf", "bb", "bb"}},
		Run:     RunConfig{Workers: -1, OnError: "retry", UI: "fancy"},
		Log:     LogConfig{Level: "loud", Format: "xml"},
	}
	Normalize(&cfg)
	err := Validate(&cfg)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	var fields []string
	for _, issue := range validationErr.Issues {
		fields = append(fields, issue.Field)
	}
	want := []string{
		"version",
		"output.modes[0]",
		"output.modes[2]",
		"run.workers",
		"run.on_error",
		"run.ui",
		"log.level",
		"log.format",
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("unexpected issues (-want +got):\n%s", diff)
	}
}

// TestFindConfigPathSearchesParents verifies upward discovery.
func TestFindConfigPathSearchesParents(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "version: 1\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, err := FindConfigPath(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != path {
		t.Fatalf("expected %q, got %q", path, found)
	}
}

// TestFindConfigPathMissing verifies the sentinel error.
func TestFindConfigPathMissing(t *testing.T) {
	_, err := FindConfigPath(t.TempDir())
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

// TestApplyEnvOverrides verifies environment variables win over the file.
func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvSeed, "1234")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvOutputDir, "out")
	cfg := Default()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Randomise.Seed == nil || *cfg.Randomise.Seed != 1234 {
		t.Fatalf("expected seed 1234, got %v", cfg.Randomise.Seed)
	}
	if cfg.Log.Level != "debug" || cfg.Output.Dir != "out" {
		t.Fatalf("expected env overrides, got %+v %+v", cfg.Log, cfg.Output)
	}
}

// TestApplyEnvRejectsBadSeed verifies seeds must be unsigned integers.
func TestApplyEnvRejectsBadSeed(t *testing.T) {
	t.Setenv(EnvSeed, "-3")
	cfg := Default()
	if err := ApplyEnv(&cfg); err == nil {
		t.Fatalf("expected seed error")
	}
}

// TestLoadEnvFileIsOptional verifies a missing dotenv file is not an error.
func TestLoadEnvFileIsOptional(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), EnvFileName)); err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}
}

// TestScaffoldWritesLoadableConfig verifies init output loads cleanly and is
// never overwritten.
func TestScaffoldWritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	written, err := Scaffold(dir)
	if err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 files, got %v", written)
	}
	if _, err := Load(filepath.Join(dir, ConfigFileName)); err != nil {
		t.Fatalf("load scaffolded config: %v", err)
	}
	if _, err := Scaffold(dir); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing file error, got %v", err)
	}
}
