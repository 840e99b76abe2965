package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// issueCollector accumulates validation issues.
type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

// result returns a ValidationError when issues are present.
func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

var (
	knownModes    = []string{ModeLatex, ModeBB, ModeHTML}
	knownUIModes  = []string{"auto", "live", "plain"}
	knownFormats  = []string{"pretty", "json"}
	knownPolicies = []string{OnErrorAbort, OnErrorContinue}
)

// Validate checks a normalized config for correctness.
func Validate(cfg *Config) error {
	collector := &issueCollector{}

	if cfg.Version == 0 {
		collector.add("version", "is required")
	} else if cfg.Version != 1 {
		collector.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}

	seen := map[string]struct{}{}
	for i, mode := range cfg.Output.Modes {
		field := fmt.Sprintf("output.modes[%d]", i)
		if !slices.Contains(knownModes, mode) {
			collector.add(field, fmt.Sprintf("unsupported mode %q", mode))
			continue
		}
		if _, dup := seen[mode]; dup {
			collector.add(field, fmt.Sprintf("duplicate mode %q", mode))
		}
		seen[mode] = struct{}{}
	}

	if cfg.Run.Workers < 0 {
		collector.add("run.workers", "must be >= 0")
	}
	if !slices.Contains(knownPolicies, cfg.Run.OnError) {
		collector.add("run.on_error", fmt.Sprintf("must be %s or %s, got %q", OnErrorAbort, OnErrorContinue, cfg.Run.OnError))
	}
	if !slices.Contains(knownUIModes, cfg.Run.UI) {
		collector.add("run.ui", fmt.Sprintf("must be auto, live, or plain, got %q", cfg.Run.UI))
	}

	for i, pkg := range cfg.Latex.Packages {
		if strings.TrimSpace(pkg) == "" {
			collector.add(fmt.Sprintf("latex.packages[%d]", i), "is required")
		}
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		collector.add("log.level", fmt.Sprintf("unknown level %q", cfg.Log.Level))
	}
	if !slices.Contains(knownFormats, cfg.Log.Format) {
		collector.add("log.format", fmt.Sprintf("must be pretty or json, got %q", cfg.Log.Format))
	}

	return collector.result()
}
