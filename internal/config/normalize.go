package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultOnError   = OnErrorAbort
	DefaultUI        = "auto"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// DefaultModes are rendered when neither config nor flags select any.
var DefaultModes = []string{ModeLatex, ModeBB}

// DefaultLatexPackages are loaded by generated documents.
var DefaultLatexPackages = []string{"amsmath", "amssymb", "graphicx"}

// Normalize fills unset fields with defaults and canonicalises values.
func Normalize(cfg *Config) {
	for i, mode := range cfg.Output.Modes {
		cfg.Output.Modes[i] = strings.ToLower(strings.TrimSpace(mode))
	}
	if len(cfg.Output.Modes) == 0 {
		cfg.Output.Modes = append([]string(nil), DefaultModes...)
	}
	if strings.TrimSpace(cfg.Run.OnError) == "" {
		cfg.Run.OnError = DefaultOnError
	}
	if strings.TrimSpace(cfg.Run.UI) == "" {
		cfg.Run.UI = DefaultUI
	}
	if len(cfg.Latex.Packages) == 0 {
		cfg.Latex.Packages = append([]string(nil), DefaultLatexPackages...)
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if strings.TrimSpace(cfg.Log.Format) == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
