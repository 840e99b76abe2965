package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Progress display modes accepted by --ui and run.ui.
const (
	uiAuto  = "auto"
	uiLive  = "live"
	uiPlain = "plain"
)

// uiModeDecision captures whether to use the live UI.
type uiModeDecision struct {
	useLive bool
	warning string
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// resolveUIMode determines whether to enable the live UI. Streaming an
// artifact to stdout always forces plain progress on stderr.
func resolveUIMode(mode string, verbose, streaming bool, stdout io.Writer) (uiModeDecision, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		normalized = uiAuto
	}
	switch normalized {
	case uiAuto, uiPlain:
	case uiLive:
		if streaming {
			return uiModeDecision{warning: "Live UI disabled while writing output to stdout."}, nil
		}
		if verbose {
			return uiModeDecision{warning: "Live UI disabled by --verbose; logging to stderr instead."}, nil
		}
		if !isTerminal(stdout) {
			return uiModeDecision{
				warning: "Live UI requested but stdout is not a TTY; falling back to plain output.",
			}, nil
		}
		return uiModeDecision{useLive: true}, nil
	default:
		return uiModeDecision{}, fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", mode)
	}
	if normalized == uiPlain || verbose || streaming {
		return uiModeDecision{}, nil
	}
	return uiModeDecision{useLive: isTerminal(stdout)}, nil
}

// defaultIsTerminal inspects a writer for TTY support.
func defaultIsTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}
