package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteSummary writes run results as pretty JSON to path.
func WriteSummary(path string, results Results) error {
	if path == "" {
		return fmt.Errorf("summary path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create summary dir: %w", err)
		}
	}
	return writeJSON(path, results)
}

// writeJSON writes a Results payload as pretty JSON.
func writeJSON(path string, results Results) error {
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	payload = append(payload, '\n')
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeArtifact stores rendered output, streaming to stdout for "-".
func writeArtifact(artifact Artifact, data []byte, stdout io.Writer) error {
	if artifact.Path == StdoutPath {
		if stdout == nil {
			stdout = os.Stdout
		}
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("write %s to stdout: %w", artifact.Mode, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(artifact.Path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(artifact.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(artifact.Path), err)
	}
	return nil
}
