package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testBank = `------- Question 1
type: MC
prompt: What is %{2,3}%+1?
correct: %{3,4}%
incorrect: 9
incorrect: 10

------- Question 2
type: ESS
prompt: Explain $x^2$.
`

const brokenBank = `------- Question 1
type: MC
correct: 3
`

// workspace creates a directory with a config file and returns its paths.
func workspace(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	configPath = filepath.Join(dir, ".txt2bb.yml")
	writeFile(t, configPath, "version: 1\nrun:\n  ui: plain\n  workers: 2\n")
	return dir, configPath
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// TestRunUsage verifies top level usage handling.
func TestRunUsage(t *testing.T) {
	if code, out, _ := run(); code != ExitUsage || !strings.Contains(out, "convert") {
		t.Fatalf("expected usage exit, got %d: %s", code, out)
	}
	if code, _, _ := run("--help"); code != ExitOK {
		t.Fatalf("expected help to exit 0, got %d", code)
	}
	if code, _, errOut := run("compile"); code != ExitUsage || !strings.Contains(errOut, "Unknown command: compile") {
		t.Fatalf("expected unknown command, got %d: %s", code, errOut)
	}
	if code, out, _ := run("convert", "--help"); code != ExitOK || !strings.Contains(out, "--randomise") {
		t.Fatalf("expected convert help with flags, got %d: %s", code, out)
	}
}

// TestConvertWritesArtifacts verifies --all writes both renderers next to the input.
func TestConvertWritesArtifacts(t *testing.T) {
	dir, cfg := workspace(t)
	bank := writeFile(t, filepath.Join(dir, "week1.txt"), testBank)

	code, out, errOut := run("convert", bank, "--all", "--config", cfg)
	if code != ExitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	for _, name := range []string{"week1.tex", "week1_bb.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "week1.html")); err == nil {
		t.Fatalf("did not expect html without --html")
	}
	if !strings.Contains(out, "converted") || !strings.Contains(out, "3 questions") {
		t.Fatalf("unexpected summary: %s", out)
	}
}

// TestRunWithoutCommandConverts verifies leading flags or files select convert.
func TestRunWithoutCommandConverts(t *testing.T) {
	dir, cfg := workspace(t)
	bank := writeFile(t, filepath.Join(dir, "week1.txt"), testBank)

	if code, _, errOut := run("--bb", bank, "--config", cfg); code != ExitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(dir, "week1_bb.txt")); err != nil {
		t.Fatalf("expected week1_bb.txt: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "week1.tex")); err == nil {
		t.Fatalf("did not expect week1.tex with --bb")
	}

	if code, _, errOut := run(bank, "--latex", "--config", cfg); code != ExitOK {
		t.Fatalf("expected exit 0 for a leading file, got %d: %s", code, errOut)
	}
	if _, err := os.Stat(filepath.Join(dir, "week1.tex")); err != nil {
		t.Fatalf("expected week1.tex: %v", err)
	}
	if code, _, _ := run("--pdf", bank); code != ExitUsage {
		t.Fatalf("expected unknown flag to exit 2, got %d", code)
	}
}

// TestConvertStreamsToStdout verifies "-" keeps stdout free of anything but the artifact.
func TestConvertStreamsToStdout(t *testing.T) {
	dir, cfg := workspace(t)
	bank := writeFile(t, filepath.Join(dir, "week1.txt"), testBank)

	code, out, errOut := run("convert", "--bb", "--output", "-", bank, "--config", cfg)
	if code != ExitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "MC\tWhat is 2+1?") {
		t.Fatalf("unexpected stdout:\n%s", out)
	}
	if !strings.Contains(errOut, "converted") {
		t.Fatalf("expected summary on stderr, got %s", errOut)
	}
}

// TestConvertUsageErrors verifies invalid combinations exit 2.
func TestConvertUsageErrors(t *testing.T) {
	dir, cfg := workspace(t)
	a := writeFile(t, filepath.Join(dir, "a.txt"), testBank)
	b := writeFile(t, filepath.Join(dir, "b.txt"), testBank)

	cases := map[string][]string{
		"no inputs":          {"convert", "--config", cfg},
		"output with two":    {"convert", "--output", "x.tex", a, b, "--config", cfg},
		"stdout with two":    {"convert", "--all", "--output", "-", a, "--config", cfg},
		"unknown flag":       {"convert", "--pdf", a},
		"stdin input":        {"convert", "-", "--config", cfg},
		"directory as input": {"convert", dir, "--config", cfg},
		"invalid ui":         {"convert", "--ui", "fancy", a, "--config", cfg},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if code, _, errOut := run(args...); code != ExitUsage {
				t.Fatalf("expected exit 2, got %d: %s", code, errOut)
			}
		})
	}
}

// TestConvertFailurePolicies verifies abort writes nothing and keep-going writes the rest.
func TestConvertFailurePolicies(t *testing.T) {
	dir, cfg := workspace(t)
	good := writeFile(t, filepath.Join(dir, "good.txt"), testBank)
	bad := writeFile(t, filepath.Join(dir, "bad.txt"), brokenBank)

	code, out, _ := run("convert", good, bad, "--config", cfg)
	if code != ExitError {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "good.tex")); err == nil {
		t.Fatalf("expected no output under the abort policy")
	}
	if !strings.Contains(out, "skipped") || !strings.Contains(out, "prompt") {
		t.Fatalf("unexpected summary: %s", out)
	}

	code, _, _ = run("convert", good, bad, "--keep-going", "--config", cfg)
	if code != ExitError {
		t.Fatalf("expected exit 1 with --keep-going, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "good.tex")); err != nil {
		t.Fatalf("expected good.tex with --keep-going: %v", err)
	}
}

// TestConvertSeedIsReproducible verifies equal seeds give equal files.
func TestConvertSeedIsReproducible(t *testing.T) {
	dir, cfg := workspace(t)
	bank := writeFile(t, filepath.Join(dir, "bank.txt"), testBank)
	var outputs []string
	for _, sub := range []string{"one", "two"} {
		outDir := filepath.Join(dir, sub)
		code, out, errOut := run("convert", "--bb", "--randomize", "--seed", "11", "--output-dir", outDir, bank, "--config", cfg)
		if code != ExitOK {
			t.Fatalf("expected exit 0, got %d: %s", code, errOut)
		}
		if !strings.Contains(out, "Seed: 11") {
			t.Fatalf("expected seed in summary, got %s", out)
		}
		data, err := os.ReadFile(filepath.Join(outDir, "bank_bb.txt"))
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		outputs = append(outputs, string(data))
	}
	if outputs[0] != outputs[1] {
		t.Fatalf("expected identical output:\n%s\n---\n%s", outputs[0], outputs[1])
	}
}

// TestConvertWritesSummaryJSON verifies --summary.
func TestConvertWritesSummaryJSON(t *testing.T) {
	dir, cfg := workspace(t)
	bank := writeFile(t, filepath.Join(dir, "bank.txt"), testBank)
	summaryPath := filepath.Join(dir, "reports", "run.json")
	if code, _, errOut := run("convert", bank, "--summary", summaryPath, "--config", cfg); code != ExitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	data, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var payload struct {
		Summary struct {
			FilesConverted int `json:"files_converted"`
			Artifacts      int `json:"artifacts"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if payload.Summary.FilesConverted != 1 || payload.Summary.Artifacts != 2 {
		t.Fatalf("unexpected summary %+v", payload.Summary)
	}
}

// TestConvertConfigErrors verifies invalid config exits 1.
func TestConvertConfigErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, filepath.Join(dir, ".txt2bb.yml"), "version: 2\n")
	bank := writeFile(t, filepath.Join(dir, "bank.txt"), testBank)
	code, _, errOut := run("convert", bank, "--config", cfg)
	if code != ExitError || !strings.Contains(errOut, "Configuration error") {
		t.Fatalf("expected config error, got %d: %s", code, errOut)
	}
}

// TestValidateCommand verifies validate reports counts and writes nothing.
func TestValidateCommand(t *testing.T) {
	dir, cfg := workspace(t)
	bank := writeFile(t, filepath.Join(dir, "bank.txt"), testBank)
	code, out, errOut := run("validate", bank, "--config", cfg)
	if code != ExitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "2 blocks, 3 questions (ESS 1, MC 2)") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "bank.tex")); err == nil {
		t.Fatalf("validate must not write artifacts")
	}

	bad := writeFile(t, filepath.Join(dir, "bad.txt"), brokenBank)
	if code, _, _ := run("validate", bad, "--config", cfg); code != ExitError {
		t.Fatalf("expected exit 1 for a broken bank, got %d", code)
	}
}

// TestInitCommand verifies scaffolding and refusal to overwrite.
func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	code, out, errOut := run("init", "--dir", dir)
	if code != ExitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Created "+filepath.Join(dir, ".txt2bb.yml")) {
		t.Fatalf("unexpected output: %s", out)
	}
	if code, _, _ := run("convert", filepath.Join(dir, "questions.txt"), "--config", filepath.Join(dir, ".txt2bb.yml"), "--ui", "plain"); code != ExitOK {
		t.Fatalf("expected scaffolded bank to convert, got %d", code)
	}
	if code, _, _ := run("init", "--dir", dir); code != ExitError {
		t.Fatalf("expected second init to fail, got %d", code)
	}
}

// TestCatalogCommand verifies banks are stored in DuckDB.
func TestCatalogCommand(t *testing.T) {
	dir, cfg := workspace(t)
	bank := writeFile(t, filepath.Join(dir, "bank.txt"), testBank)
	db := filepath.Join(dir, "catalog.duckdb")

	if code, _, _ := run("catalog", bank, "--config", cfg); code != ExitUsage {
		t.Fatalf("expected --db to be required, got %d", code)
	}
	code, out, errOut := run("catalog", "--db", db, bank, "--config", cfg)
	if code != ExitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "catalogued "+bank+": 3 questions (replaced 0)") {
		t.Fatalf("unexpected output: %s", out)
	}
	code, out, _ = run("catalog", "--db", db, bank, "--config", cfg)
	if code != ExitOK || !strings.Contains(out, "(replaced 3)") || !strings.Contains(out, "1 sources, 3 questions") {
		t.Fatalf("expected idempotent re-catalogue, got %d: %s", code, out)
	}
}
