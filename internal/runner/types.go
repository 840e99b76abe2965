package runner

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/oscarbenjamin/txt2bb/internal/parser"
	"github.com/oscarbenjamin/txt2bb/internal/question"
	"github.com/oscarbenjamin/txt2bb/internal/render/latex"
)

// StdoutPath is the output path that streams a single artifact to stdout.
const StdoutPath = "-"

// Dependencies allows injecting clocks and random sources for a run.
type Dependencies struct {
	RunID   func() (string, error)
	Now     func() time.Time
	NewSeed func() (uint64, error)
}

// Params configures a conversion run.
type Params struct {
	Inputs []string
	Modes  []string
	// OutputDir holds every artifact. Empty writes next to each input.
	OutputDir string
	// Output names the artifact of a single-input run. With several modes
	// it is the base path that mode suffixes are appended to.
	Output    string
	Randomise bool
	// Seed fixes the shuffle seed. A randomised run without one draws a
	// fresh seed and reports it in Results.
	Seed     *uint64
	Workers  int
	OnError  string
	Parser   parser.Options
	Latex    latex.Options
	Stdout   io.Writer
	Logger   zerolog.Logger
	Observer RunObserver
	Deps     Dependencies
}

// FileStatus is the final state of one input file.
type FileStatus string

const (
	StatusConverted FileStatus = "converted"
	StatusValid     FileStatus = "valid"
	StatusFailed    FileStatus = "failed"
	StatusSkipped   FileStatus = "skipped"
)

// Artifact is one rendered output.
type Artifact struct {
	Mode string `json:"mode"`
	Path string `json:"path"`
}

// FileResult records what happened to one input file.
type FileResult struct {
	Path      string         `json:"path"`
	Status    FileStatus     `json:"status"`
	Stats     parser.Stats   `json:"stats"`
	Types     map[string]int `json:"types,omitempty"`
	Images    int            `json:"images"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	ErrorKind string         `json:"error_kind,omitempty"`
	Error     string         `json:"error,omitempty"`
	WallTime  time.Duration  `json:"wall_time_ns"`
	// Set is the parsed question set, kept for callers that store it.
	Set question.Set `json:"-"`
}

// RunSummary aggregates per-file results.
type RunSummary struct {
	FilesTotal     int `json:"files_total"`
	FilesConverted int `json:"files_converted"`
	FilesValid     int `json:"files_valid"`
	FilesFailed    int `json:"files_failed"`
	FilesSkipped   int `json:"files_skipped"`
	QuestionsTotal int `json:"questions_total"`
	Artifacts      int `json:"artifacts"`
}

// Results is the outcome of a run, written as the summary JSON.
type Results struct {
	RunID      string       `json:"run_id"`
	Randomised bool         `json:"randomised"`
	Seed       uint64       `json:"seed,string,omitempty"`
	OnError    string       `json:"on_error"`
	Modes      []string     `json:"modes,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Files      []FileResult `json:"files"`
	Summary    RunSummary   `json:"summary"`
}
