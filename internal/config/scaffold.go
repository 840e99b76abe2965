package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// SampleBankName is the question bank written next to a scaffolded config.
const SampleBankName = "questions.txt"

const defaultConfig = `version: 1
output:
  # Empty writes artifacts next to each input file.
  dir: ""
  modes: [latex, bb]

randomise:
  enabled: false
  # seed: 12345

run:
  workers: 0
  on_error: abort
  ui: auto

latex:
  packages: [amsmath, amssymb, graphicx]

parser:
  loose_markers: true

log:
  level: info
  format: pretty
`

const sampleBank = `# Sample question bank. Each block starts with a dashed marker line.
------- Question 1
type: MC
prompt: What is %{2, 3}% + 1?
correct: %{3, 4}%
incorrect: 9
incorrect: 0

------- Question 2
type: NUM
prompt: Give $\pi$ to two decimal places.
answer: 3.14
tolerance: 0.01

------- Question 3
type: ESS
prompt: Explain why the sum of two even numbers is even.
> Use a short proof.
example: Write them as $2a$ and $2b$.
`

// Scaffold writes a default config and a sample question bank into dir.
// Existing files are never overwritten.
func Scaffold(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	files := []struct {
		name    string
		content string
	}{
		{ConfigFileName, defaultConfig},
		{SampleBankName, sampleBank},
	}
	for _, file := range files {
		path := filepath.Join(dir, file.name)
		if info, err := os.Stat(path); err == nil {
			if info.IsDir() {
				return nil, fmt.Errorf("path %q is a directory", path)
			}
			return nil, fmt.Errorf("file already exists at %q", path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", file.name, err)
		}
	}
	written := make([]string, 0, len(files))
	for _, file := range files {
		path := filepath.Join(dir, file.name)
		if err := os.WriteFile(path, []byte(file.content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", file.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
