package live

import "github.com/oscarbenjamin/txt2bb/internal/runner"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventFile delivers a file status update.
	EventFile
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind    EventKind
	RunID   string
	Files   []string
	File    runner.FileEvent
	Results runner.Results
}
