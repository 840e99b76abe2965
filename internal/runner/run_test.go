package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/oscarbenjamin/txt2bb/internal/config"
	"github.com/oscarbenjamin/txt2bb/internal/parser"
	"github.com/oscarbenjamin/txt2bb/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const validBank = `------- Question 1
type: MC
prompt: What is %{2,3}%+1?
correct: %{3,4}%
incorrect: 9
incorrect: 10
incorrect: 11

------- Question 2
type: TF
prompt: The sky is blue.
answer: true
`

const invalidBank = `------- Question 1
type: MC
correct: 3
`

func writeBank(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	return path
}

func baseParams(inputs ...string) Params {
	return Params{
		Inputs:  inputs,
		Modes:   []string{config.ModeLatex, config.ModeBB},
		Workers: 2,
		Parser:  parser.DefaultOptions(),
		Logger:  zerolog.Nop(),
		Deps: Dependencies{
			RunID: func() (string, error) { return "run-1", nil },
			Now:   testutil.NewFakeClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), time.Millisecond).Now,
		},
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// TestRunWritesArtifactsNextToInputs verifies every mode is written per file.
func TestRunWritesArtifactsNextToInputs(t *testing.T) {
	dir := t.TempDir()
	first := writeBank(t, dir, "week1.txt", validBank)
	second := writeBank(t, dir, "week2.txt", validBank)
	params := baseParams(first, second)
	params.Modes = []string{config.ModeLatex, config.ModeBB, config.ModeHTML}

	results, err := Run(context.Background(), params)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"week1.tex", "week1_bb.txt", "week1.html", "week2.tex", "week2_bb.txt", "week2.html"} {
		if !exists(filepath.Join(dir, name)) {
			t.Fatalf("expected %s to be written", name)
		}
	}
	want := RunSummary{FilesTotal: 2, FilesConverted: 2, QuestionsTotal: 6, Artifacts: 6}
	if diff := cmp.Diff(want, results.Summary); diff != "" {
		t.Fatalf("unexpected summary (-want +got):\n%s", diff)
	}
	if results.RunID != "run-1" {
		t.Fatalf("expected injected run id, got %q", results.RunID)
	}
	if results.Files[0].Types["MC"] != 2 || results.Files[0].Types["TF"] != 1 {
		t.Fatalf("unexpected type counts %v", results.Files[0].Types)
	}
	if results.Files[0].WallTime <= 0 || !results.FinishedAt.After(results.StartedAt) {
		t.Fatalf("expected clock readings to advance, got %s", results.Files[0].WallTime)
	}

	bb, err := os.ReadFile(filepath.Join(dir, "week1_bb.txt"))
	if err != nil {
		t.Fatalf("read bb: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(bb)), "\n"); len(lines) != 3 {
		t.Fatalf("expected 3 rows, got %d:\n%s", len(lines), bb)
	}
}

const imageBank = `------- Question 1
type: ESS
prompt: Sketch @{axes.png}@
example: See @{sketch.png}@

------- Question 2
type: MC
prompt: Which graph? @{graph.png}@
correct: @{a.png}@
incorrect: none
`

// TestRunCountsImagesInEveryField verifies the image count matches the placements written.
func TestRunCountsImagesInEveryField(t *testing.T) {
	dir := t.TempDir()
	bank := writeBank(t, dir, "images.txt", imageBank)
	params := baseParams(bank)
	params.Modes = []string{config.ModeBB}

	results, err := Run(context.Background(), params)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	bb, err := os.ReadFile(filepath.Join(dir, "images_bb.txt"))
	if err != nil {
		t.Fatalf("read bb: %v", err)
	}
	placements := strings.Count(string(bb), "# image ")
	if placements != 4 {
		t.Fatalf("expected 4 placements, got %d:\n%s", placements, bb)
	}
	if got := results.Files[0].Images; got != placements {
		t.Fatalf("expected %d images, got %d", placements, got)
	}
}

// TestRunAbortWritesNothing verifies one failing file blocks every output.
func TestRunAbortWritesNothing(t *testing.T) {
	dir := t.TempDir()
	good := writeBank(t, dir, "good.txt", validBank)
	bad := writeBank(t, dir, "bad.txt", invalidBank)

	results, err := Run(context.Background(), baseParams(good, bad))
	if !errors.Is(err, ErrFilesFailed) {
		t.Fatalf("expected ErrFilesFailed, got %v", err)
	}
	if exists(filepath.Join(dir, "good.tex")) || exists(filepath.Join(dir, "good_bb.txt")) {
		t.Fatalf("expected no artifacts under abort policy")
	}
	if results.Files[0].Status != StatusSkipped || results.Files[1].Status != StatusFailed {
		t.Fatalf("unexpected statuses %s, %s", results.Files[0].Status, results.Files[1].Status)
	}
	if results.Files[1].ErrorKind != "FieldValidationError" || !strings.Contains(results.Files[1].Error, "prompt") {
		t.Fatalf("unexpected failure %q: %q", results.Files[1].ErrorKind, results.Files[1].Error)
	}
}

// TestRunContinueWritesParsedFiles verifies the continue policy.
func TestRunContinueWritesParsedFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeBank(t, dir, "good.txt", validBank)
	bad := writeBank(t, dir, "bad.txt", invalidBank)
	params := baseParams(good, bad)
	params.OnError = config.OnErrorContinue

	results, err := Run(context.Background(), params)
	if !errors.Is(err, ErrFilesFailed) {
		t.Fatalf("expected ErrFilesFailed, got %v", err)
	}
	if !exists(filepath.Join(dir, "good.tex")) || exists(filepath.Join(dir, "bad.tex")) {
		t.Fatalf("expected only the good file to be written")
	}
	if results.Summary.FilesConverted != 1 || results.Summary.FilesFailed != 1 {
		t.Fatalf("unexpected summary %+v", results.Summary)
	}
}

// TestRunRandomiseIsReproducible verifies a fixed seed gives identical output.
func TestRunRandomiseIsReproducible(t *testing.T) {
	input := writeBank(t, t.TempDir(), "bank.txt", validBank)
	seed := uint64(2024)
	outputs := make([][]byte, 2)
	for i := range outputs {
		params := baseParams(input)
		params.Modes = []string{config.ModeBB}
		params.Randomise = true
		params.Seed = &seed
		params.OutputDir = t.TempDir()
		results, err := Run(context.Background(), params)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if !results.Randomised || results.Seed != seed {
			t.Fatalf("expected seed %d in results, got %+v", seed, results)
		}
		data, err := os.ReadFile(filepath.Join(params.OutputDir, "bank_bb.txt"))
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		outputs[i] = data
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Fatalf("expected identical output:\n%s\n---\n%s", outputs[0], outputs[1])
	}
}

// TestRunDrawsSeedWhenUnset verifies a randomised run reports its seed.
func TestRunDrawsSeedWhenUnset(t *testing.T) {
	input := writeBank(t, t.TempDir(), "bank.txt", validBank)
	params := baseParams(input)
	params.Randomise = true
	params.Deps.NewSeed = func() (uint64, error) { return 77, nil }

	results, err := Run(context.Background(), params)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results.Seed != 77 {
		t.Fatalf("expected drawn seed 77, got %d", results.Seed)
	}
}

// TestRunStreamsToStdout verifies "-" writes the artifact to Stdout.
func TestRunStreamsToStdout(t *testing.T) {
	input := writeBank(t, t.TempDir(), "bank.txt", validBank)
	var stdout bytes.Buffer
	params := baseParams(input)
	params.Modes = []string{config.ModeBB}
	params.Output = StdoutPath
	params.Stdout = &stdout

	if _, err := Run(context.Background(), params); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "MC\tWhat is 2+1?<p></p>\t3\tcorrect") {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
}

// TestRunExplicitOutputBase verifies --output acts as a base with many modes.
func TestRunExplicitOutputBase(t *testing.T) {
	dir := t.TempDir()
	input := writeBank(t, dir, "bank.txt", validBank)
	params := baseParams(input)
	params.Output = filepath.Join(dir, "out", "final.txt")

	results, err := Run(context.Background(), params)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []Artifact{
		{Mode: config.ModeLatex, Path: filepath.Join(dir, "out", "final.tex")},
		{Mode: config.ModeBB, Path: filepath.Join(dir, "out", "final_bb.txt")},
	}
	if diff := cmp.Diff(want, results.Files[0].Artifacts); diff != "" {
		t.Fatalf("unexpected artifacts (-want +got):\n%s", diff)
	}
}

// TestRunRejectsInvalidParams verifies usage errors before any work.
func TestRunRejectsInvalidParams(t *testing.T) {
	dir := t.TempDir()
	a := writeBank(t, dir, "a.txt", validBank)
	nested := filepath.Join(dir, "nested")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	b := writeBank(t, nested, "a.txt", validBank)

	cases := map[string]Params{
		"no inputs":           baseParams(),
		"output with two":     func() Params { p := baseParams(a, b); p.Output = "x.tex"; return p }(),
		"stdout two modes":    func() Params { p := baseParams(a); p.Output = StdoutPath; return p }(),
		"unknown mode":        func() Params { p := baseParams(a); p.Modes = []string{"pdf"}; return p }(),
		"unknown policy":      func() Params { p := baseParams(a); p.OnError = "retry"; return p }(),
		"colliding artifacts": func() Params { p := baseParams(a, b); p.OutputDir = filepath.Join(dir, "out"); return p }(),
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Run(context.Background(), params)
			var usageErr *UsageError
			if !errors.As(err, &usageErr) {
				t.Fatalf("expected UsageError, got %v", err)
			}
		})
	}
}

// TestCheckDoesNotWrite verifies validation runs parse only.
func TestCheckDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	input := writeBank(t, dir, "bank.txt", validBank)
	results, err := Check(context.Background(), baseParams(input))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if results.Files[0].Status != StatusValid || results.Summary.QuestionsTotal != 3 {
		t.Fatalf("unexpected result %+v", results.Files[0])
	}
	if results.Files[0].Set.Len() != 3 {
		t.Fatalf("expected parsed set to be kept, got %d questions", results.Files[0].Set.Len())
	}
	if exists(filepath.Join(dir, "bank.tex")) {
		t.Fatalf("expected no artifacts from check")
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	starts []string
	events []FileEvent
	ends   int
}

func (o *recordingObserver) OnRunStart(runID string, _ []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.starts = append(o.starts, runID)
}

func (o *recordingObserver) OnFileEvent(event FileEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) OnRunEnd(Results) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ends++
}

// TestRunNotifiesObservers verifies each file moves through its lifecycle.
func TestRunNotifiesObservers(t *testing.T) {
	dir := t.TempDir()
	input := writeBank(t, dir, "bank.txt", validBank)
	observer := &recordingObserver{}
	params := baseParams(input)
	params.Observer = Observers(nil, observer)

	if _, err := Run(context.Background(), params); err != nil {
		t.Fatalf("run: %v", err)
	}
	var types []FileEventType
	for _, event := range observer.events {
		types = append(types, event.Type)
	}
	want := []FileEventType{FileQueued, FileParsing, FileParsed, FileRendering, FileWritten}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}
	if len(observer.starts) != 1 || observer.ends != 1 {
		t.Fatalf("expected one start and end, got %d and %d", len(observer.starts), observer.ends)
	}
}

// TestRunLogsThroughObserver verifies the zerolog observer reports failures.
func TestRunLogsThroughObserver(t *testing.T) {
	dir := t.TempDir()
	bad := writeBank(t, dir, "bad.txt", invalidBank)
	var logs bytes.Buffer
	params := baseParams(bad)
	params.Observer = LogObserver{Logger: zerolog.New(SyncWriter(2, &logs))}

	if _, err := Run(context.Background(), params); err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(logs.String(), `"kind":"FieldValidationError"`) {
		t.Fatalf("expected failure kind in logs, got %s", logs.String())
	}
}

// TestRunHonoursCancellation verifies a cancelled context stops the run.
func TestRunHonoursCancellation(t *testing.T) {
	input := writeBank(t, t.TempDir(), "bank.txt", validBank)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, baseParams(input)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// TestWriteSummary verifies the summary JSON round trip of key fields.
func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "summary.json")
	results := Results{RunID: "run-1", Randomised: true, Seed: 1 << 60, Summary: RunSummary{FilesTotal: 1}}
	if err := WriteSummary(path, results); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if payload["seed"] != "1152921504606846976" || payload["run_id"] != "run-1" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

// TestNewRunIDWithRand verifies the timestamp and hex suffix.
func TestNewRunIDWithRand(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	id, err := NewRunIDWithRand(now, bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef}))
	if err != nil {
		t.Fatalf("run id: %v", err)
	}
	if id != "20260304T050607Z-deadbeef" {
		t.Fatalf("unexpected run id %q", id)
	}
	if _, err := NewRunIDWithRand(now, bytes.NewReader(nil)); err == nil {
		t.Fatalf("expected error for short reader")
	}
}
