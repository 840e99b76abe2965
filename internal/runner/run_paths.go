package runner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oscarbenjamin/txt2bb/internal/config"
)

var modeSuffixes = map[string]string{
	config.ModeLatex: ".tex",
	config.ModeBB:    "_bb.txt",
	config.ModeHTML:  ".html",
}

// ArtifactPaths plans the outputs of one input file.
func ArtifactPaths(input string, params Params) []Artifact {
	artifacts := make([]Artifact, 0, len(params.Modes))
	if params.Output != "" && len(params.Modes) == 1 {
		return append(artifacts, Artifact{Mode: params.Modes[0], Path: params.Output})
	}

	var base string
	if params.Output != "" {
		base = trimExt(params.Output)
	} else {
		dir := params.OutputDir
		if dir == "" {
			dir = filepath.Dir(input)
		}
		base = filepath.Join(dir, trimExt(filepath.Base(input)))
	}
	for _, mode := range params.Modes {
		artifacts = append(artifacts, Artifact{Mode: mode, Path: base + modeSuffixes[mode]})
	}
	return artifacts
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// UsageError reports run parameters that can never succeed.
type UsageError struct {
	Message string
}

func (err *UsageError) Error() string {
	return err.Message
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// validate rejects inconsistent parameters before any file is touched.
func (params Params) validate(needModes bool) error {
	if len(params.Inputs) == 0 {
		return usageErrorf("at least one input file is required")
	}
	switch params.OnError {
	case "", config.OnErrorAbort, config.OnErrorContinue:
	default:
		return usageErrorf("unknown failure policy %q", params.OnError)
	}
	if !needModes {
		return nil
	}
	if len(params.Modes) == 0 {
		return usageErrorf("at least one output mode is required")
	}
	for _, mode := range params.Modes {
		if _, ok := modeSuffixes[mode]; !ok {
			return usageErrorf("unknown output mode %q", mode)
		}
	}
	if params.Output != "" {
		if len(params.Inputs) != 1 {
			return usageErrorf("an explicit output path requires exactly one input file, got %d", len(params.Inputs))
		}
		if params.Output == StdoutPath && len(params.Modes) != 1 {
			return usageErrorf("stdout output requires exactly one output mode")
		}
	}
	seen := map[string]string{}
	for _, input := range params.Inputs {
		for _, artifact := range ArtifactPaths(input, params) {
			if artifact.Path == StdoutPath {
				continue
			}
			key := filepath.Clean(artifact.Path)
			if other, dup := seen[key]; dup {
				return usageErrorf("%s and %s would both write %s", other, input, artifact.Path)
			}
			seen[key] = input
		}
	}
	return nil
}
