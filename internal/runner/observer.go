package runner

import "time"

// FileEventType identifies a file status update for observers.
type FileEventType string

const (
	// FileQueued marks a file known but not yet started.
	FileQueued FileEventType = "queued"
	// FileParsing marks a parse in progress.
	FileParsing FileEventType = "parsing"
	// FileParsed marks a successful parse and expansion.
	FileParsed FileEventType = "parsed"
	// FileRendering marks rendering and writing in progress.
	FileRendering FileEventType = "rendering"
	// FileWritten marks every artifact written.
	FileWritten FileEventType = "written"
	// FileFailed marks a parse, render, or write failure.
	FileFailed FileEventType = "failed"
	// FileSkipped marks a file left unwritten because another file failed.
	FileSkipped FileEventType = "skipped"
)

// FileEvent carries a single status update for an input file.
type FileEvent struct {
	Index     int
	Path      string
	Type      FileEventType
	Blocks    int
	Questions int
	Artifacts []Artifact
	ErrorKind string
	Error     string
	WallTime  time.Duration
	EmittedAt time.Time
}

// RunObserver receives run lifecycle events for UI or logging. OnFileEvent
// calls are delivered from a single goroutine, in emission order.
type RunObserver interface {
	// OnRunStart signals the start of a run.
	OnRunStart(runID string, files []string)
	// OnFileEvent delivers a file status update.
	OnFileEvent(event FileEvent)
	// OnRunEnd signals run completion.
	OnRunEnd(results Results)
}

// Observers fans events out to every non-nil observer.
func Observers(observers ...RunObserver) RunObserver {
	var active multiObserver
	for _, observer := range observers {
		if observer != nil {
			active = append(active, observer)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	default:
		return active
	}
}

type multiObserver []RunObserver

func (m multiObserver) OnRunStart(runID string, files []string) {
	for _, observer := range m {
		observer.OnRunStart(runID, files)
	}
}

func (m multiObserver) OnFileEvent(event FileEvent) {
	for _, observer := range m {
		observer.OnFileEvent(event)
	}
}

func (m multiObserver) OnRunEnd(results Results) {
	for _, observer := range m {
		observer.OnRunEnd(results)
	}
}

// eventBus serialises worker events onto one dispatcher goroutine.
type eventBus struct {
	observer RunObserver
	now      func() time.Time
	events   chan FileEvent
	done     chan struct{}
}

func newEventBus(observer RunObserver, now func() time.Time) *eventBus {
	if observer == nil {
		return nil
	}
	bus := &eventBus{
		observer: observer,
		now:      now,
		events:   make(chan FileEvent, 64),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(bus.done)
		for event := range bus.events {
			bus.observer.OnFileEvent(event)
		}
	}()
	return bus
}

func (b *eventBus) emit(event FileEvent) {
	if b == nil {
		return
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = b.now()
	}
	b.events <- event
}

// close drains pending events and stops the dispatcher.
func (b *eventBus) close() {
	if b == nil {
		return
	}
	close(b.events)
	<-b.done
}
