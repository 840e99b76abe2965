package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oscarbenjamin/txt2bb/internal/config"
	"github.com/oscarbenjamin/txt2bb/internal/markup"
	"github.com/oscarbenjamin/txt2bb/internal/parser"
	"github.com/oscarbenjamin/txt2bb/internal/question"
	"github.com/oscarbenjamin/txt2bb/internal/render/blackboard"
	"github.com/oscarbenjamin/txt2bb/internal/render/latex"
	"github.com/oscarbenjamin/txt2bb/internal/report"
	"github.com/oscarbenjamin/txt2bb/internal/shuffle"
)

// ErrFilesFailed is returned when at least one input file failed.
var ErrFilesFailed = errors.New("conversion failed")

// run holds the state shared by the workers of one invocation. Each worker
// writes only its own slot of files.
type run struct {
	params Params
	deps   Dependencies
	bus    *eventBus
	seed   uint64
	files  []FileResult
}

// Run parses every input, then renders and writes the artifacts. Under the
// abort policy nothing is written unless every file parses.
func Run(ctx context.Context, params Params) (Results, error) {
	if err := params.validate(true); err != nil {
		return Results{}, err
	}
	return execute(ctx, params, true)
}

// Check parses and expands every input without rendering anything.
func Check(ctx context.Context, params Params) (Results, error) {
	if err := params.validate(false); err != nil {
		return Results{}, err
	}
	params.Randomise = false
	return execute(ctx, params, false)
}

func execute(ctx context.Context, params Params, write bool) (Results, error) {
	deps := params.Deps.withDefaults()
	if params.OnError == "" {
		params.OnError = config.OnErrorAbort
	}
	runID, err := deps.RunID()
	if err != nil {
		return Results{}, err
	}
	r := &run{params: params, deps: deps, files: make([]FileResult, len(params.Inputs))}
	if params.Randomise {
		if params.Seed != nil {
			r.seed = *params.Seed
		} else if r.seed, err = deps.NewSeed(); err != nil {
			return Results{}, err
		}
	}
	logger := params.Logger.With().Str("run_id", runID).Logger()
	logger.Debug().Strs("files", params.Inputs).Int("workers", params.workers()).Msg("run started")

	startedAt := deps.Now()
	if params.Observer != nil {
		params.Observer.OnRunStart(runID, params.Inputs)
	}
	r.bus = newEventBus(params.Observer, deps.Now)
	for i, path := range params.Inputs {
		r.files[i] = FileResult{Path: path, Status: StatusSkipped}
		r.bus.emit(FileEvent{Index: i, Path: path, Type: FileQueued})
	}

	if err := forEach(ctx, len(params.Inputs), params.workers(), r.parse); err != nil {
		r.bus.close()
		return Results{}, err
	}

	failed := r.failedCount()
	switch {
	case !write:
		for i := range r.files {
			if r.files[i].Status != StatusFailed {
				r.files[i].Status = StatusValid
			}
		}
	case failed > 0 && params.OnError == config.OnErrorAbort:
		r.skipParsed()
	default:
		if err := forEach(ctx, len(params.Inputs), params.workers(), r.convert); err != nil {
			r.bus.close()
			return Results{}, err
		}
	}
	r.bus.close()

	results := Results{
		RunID:      runID,
		Randomised: params.Randomise,
		Seed:       r.seed,
		OnError:    params.OnError,
		StartedAt:  startedAt,
		FinishedAt: deps.Now(),
		Files:      r.files,
		Summary:    summarize(r.files),
	}
	if write {
		results.Modes = params.Modes
	}
	if params.Observer != nil {
		params.Observer.OnRunEnd(results)
	}
	logger.Debug().Int("failed", results.Summary.FilesFailed).Msg("run finished")

	if failed := results.Summary.FilesFailed; failed > 0 {
		return results, fmt.Errorf("%d of %d files failed: %w", failed, len(params.Inputs), ErrFilesFailed)
	}
	return results, nil
}

// parse runs the parse and expansion stages for file i.
func (r *run) parse(_ context.Context, i int) error {
	file := &r.files[i]
	started := r.deps.Now()
	r.bus.emit(FileEvent{Index: i, Path: file.Path, Type: FileParsing})

	set, stats, err := parser.ParseFile(file.Path, r.params.Parser)
	file.WallTime = r.deps.Now().Sub(started)
	if err != nil {
		r.fail(i, err)
		return nil
	}
	file.Set = set
	file.Stats = stats
	file.Types = typeCounts(set)
	file.Images = imageCount(set)
	r.bus.emit(FileEvent{
		Index:     i,
		Path:      file.Path,
		Type:      FileParsed,
		Blocks:    stats.Blocks,
		Questions: stats.Questions,
		WallTime:  file.WallTime,
	})
	return nil
}

// convert renders and writes every artifact of a parsed file.
func (r *run) convert(_ context.Context, i int) error {
	file := &r.files[i]
	if file.Status == StatusFailed {
		return nil
	}
	started := r.deps.Now()
	r.bus.emit(FileEvent{Index: i, Path: file.Path, Type: FileRendering, Questions: file.Stats.Questions})

	set := file.Set
	if r.params.Randomise {
		set = shuffle.Apply(set, r.seed)
	}
	for _, artifact := range ArtifactPaths(file.Path, r.params) {
		data, err := render(artifact.Mode, set, r.params)
		if err == nil {
			err = writeArtifact(artifact, data, r.params.Stdout)
		}
		if err != nil {
			r.fail(i, err)
			return nil
		}
		file.Artifacts = append(file.Artifacts, artifact)
	}
	file.Status = StatusConverted
	file.WallTime += r.deps.Now().Sub(started)
	r.bus.emit(FileEvent{
		Index:     i,
		Path:      file.Path,
		Type:      FileWritten,
		Blocks:    file.Stats.Blocks,
		Questions: file.Stats.Questions,
		Artifacts: file.Artifacts,
		WallTime:  file.WallTime,
	})
	return nil
}

func (r *run) fail(i int, err error) {
	file := &r.files[i]
	file.Status = StatusFailed
	file.Error = err.Error()
	file.ErrorKind = parser.Kind(err)
	r.bus.emit(FileEvent{
		Index:     i,
		Path:      file.Path,
		Type:      FileFailed,
		ErrorKind: file.ErrorKind,
		Error:     file.Error,
		WallTime:  file.WallTime,
	})
}

func (r *run) failedCount() int {
	count := 0
	for _, file := range r.files {
		if file.Status == StatusFailed {
			count++
		}
	}
	return count
}

// skipParsed marks every parsed file as skipped after a failure elsewhere.
func (r *run) skipParsed() {
	for i := range r.files {
		file := &r.files[i]
		if file.Status == StatusFailed {
			continue
		}
		file.Status = StatusSkipped
		r.bus.emit(FileEvent{Index: i, Path: file.Path, Type: FileSkipped, Questions: file.Stats.Questions})
	}
}

func render(mode string, set question.Set, params Params) ([]byte, error) {
	switch mode {
	case config.ModeLatex:
		return latex.Render(set, params.Latex)
	case config.ModeBB:
		return blackboard.Render(set)
	case config.ModeHTML:
		return report.Render(set, report.Options{Title: filepath.Base(set.Source)})
	default:
		return nil, fmt.Errorf("unknown output mode %q", mode)
	}
}

// forEach runs fn for indices 0..n-1 on at most workers goroutines.
func forEach(ctx context.Context, n, workers int, fn func(context.Context, int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}

func (params Params) workers() int {
	if params.Workers > 0 {
		return params.Workers
	}
	return runtime.NumCPU()
}

func (deps Dependencies) withDefaults() Dependencies {
	if deps.RunID == nil {
		deps.RunID = NewRunID
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewSeed == nil {
		deps.NewSeed = shuffle.NewSeed
	}
	return deps
}

func typeCounts(set question.Set) map[string]int {
	counts := map[string]int{}
	for typ, n := range set.CountByType() {
		counts[typ.Tag()] = n
	}
	return counts
}

func imageCount(set question.Set) int {
	count := 0
	for _, q := range set.Questions {
		count += len(markup.Images(q.Prompt))
		for _, answer := range q.Answers {
			count += len(markup.Images(answer.Text))
		}
		if q.Example != nil {
			count += len(markup.Images(*q.Example))
		}
	}
	return count
}

// summarize aggregates file results into a run summary.
func summarize(files []FileResult) RunSummary {
	summary := RunSummary{FilesTotal: len(files)}
	for _, file := range files {
		switch file.Status {
		case StatusConverted:
			summary.FilesConverted++
		case StatusValid:
			summary.FilesValid++
		case StatusFailed:
			summary.FilesFailed++
		case StatusSkipped:
			summary.FilesSkipped++
		}
		if file.Status != StatusFailed {
			summary.QuestionsTotal += file.Stats.Questions
		}
		summary.Artifacts += len(file.Artifacts)
	}
	return summary
}
