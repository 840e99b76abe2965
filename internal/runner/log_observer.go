package runner

import (
	"github.com/rs/zerolog"
)

// LogObserver reports run progress as structured log lines.
type LogObserver struct {
	Logger zerolog.Logger
}

// OnRunStart logs the files about to be processed.
func (o LogObserver) OnRunStart(runID string, files []string) {
	o.Logger.Info().Str("run_id", runID).Int("files", len(files)).Msg("converting")
}

// OnFileEvent logs file transitions; intermediate states only at debug.
func (o LogObserver) OnFileEvent(event FileEvent) {
	var entry *zerolog.Event
	switch event.Type {
	case FileFailed:
		entry = o.Logger.Error().Str("kind", event.ErrorKind).Str("error", event.Error)
	case FileSkipped:
		entry = o.Logger.Warn().Str("reason", "another file failed")
	case FileWritten:
		entry = o.Logger.Info().Int("questions", event.Questions)
		for _, artifact := range event.Artifacts {
			entry = entry.Str(artifact.Mode, artifact.Path)
		}
	case FileParsed:
		entry = o.Logger.Debug().Int("blocks", event.Blocks).Int("questions", event.Questions)
	default:
		entry = o.Logger.Debug()
	}
	entry.Str("file", event.Path).Dur("wall_time", event.WallTime).Msg(string(event.Type))
}

// OnRunEnd logs the run summary.
func (o LogObserver) OnRunEnd(results Results) {
	entry := o.Logger.Info()
	if results.Summary.FilesFailed > 0 {
		entry = o.Logger.Error()
	}
	if results.Randomised {
		entry = entry.Uint64("seed", results.Seed)
	}
	entry.
		Int("converted", results.Summary.FilesConverted).
		Int("failed", results.Summary.FilesFailed).
		Int("skipped", results.Summary.FilesSkipped).
		Int("questions", results.Summary.QuestionsTotal).
		Msg("run finished")
}
