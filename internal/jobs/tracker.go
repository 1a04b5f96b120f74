package jobs

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelforge/internal/logging"
)

// EventType names the notifications a tracker emits to observers.
type EventType string

const (
	EventStageStarted EventType = "stage_started"
	EventProgress     EventType = "progress"
	EventWarning      EventType = "warning"
	EventError        EventType = "error"
	EventCompleted    EventType = "completed"
	EventFailed       EventType = "failed"
)

// Event is one tracker notification. Job is a snapshot taken at emit time.
type Event struct {
	Type     EventType
	JobID    string
	Stage    string
	Progress int
	Message  string
	Job      Job
}

// Tracker is the single piece of shared mutable state in a pipeline run. All
// mutations go through its mutex so parallel resolution workers can report
// without interleaved corruption. One tracker serves exactly one job.
type Tracker struct {
	mu        sync.Mutex
	job       Job
	observers map[uint64]func(Event)
	nextObs   uint64
	logger    *slog.Logger
}

// NewTracker creates a tracker for a fresh job in the queued state.
func NewTracker(title string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Tracker{
		job: Job{
			ID:        uuid.NewString(),
			Title:     title,
			Status:    StatusQueued,
			CreatedAt: time.Now().UTC(),
		},
		observers: make(map[uint64]func(Event)),
		logger:    logger,
	}
}

// JobID returns the tracked job's identifier.
func (t *Tracker) JobID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job.ID
}

// Snapshot returns a deep copy of the current job state.
func (t *Tracker) Snapshot() Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Subscribe registers an observer for this job's events and returns a
// revocation handle. Observers are invoked synchronously while the tracker
// lock is released, in unspecified order.
func (t *Tracker) Subscribe(fn func(Event)) (cancel func()) {
	t.mu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

// Start moves the job from queued to processing.
func (t *Tracker) Start() {
	t.mu.Lock()
	if t.job.Status != StatusQueued {
		t.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	t.job.Status = StatusProcessing
	t.job.StartedAt = &now
	t.mu.Unlock()
}

// StartStage opens a named sub-span, implicitly closing the previous stage
// as completed.
func (t *Tracker) StartStage(name string) {
	t.mu.Lock()
	t.closeCurrentStageLocked(StageCompleted)
	t.job.Stages = append(t.job.Stages, StageRecord{
		Name:      name,
		Status:    StageRunning,
		StartedAt: time.Now().UTC(),
	})
	event := t.eventLocked(EventStageStarted, name, "")
	t.mu.Unlock()

	t.logger.Info("stage started",
		logging.String(logging.FieldJobID, event.JobID),
		logging.String(logging.FieldStage, name))
	t.emit(event)
}

// SetProgress raises the job's progress. Values below the current progress
// or outside 0-100 are clamped so the reported value never regresses.
func (t *Tracker) SetProgress(progress int) {
	t.mu.Lock()
	if progress > 100 {
		progress = 100
	}
	if progress <= t.job.Progress || t.job.Status.Terminal() {
		t.mu.Unlock()
		return
	}
	t.job.Progress = progress
	event := t.eventLocked(EventProgress, t.currentStageLocked(), "")
	t.mu.Unlock()

	t.emit(event)
}

// AddWarning records a warning without affecting status.
func (t *Tracker) AddWarning(message string) {
	t.mu.Lock()
	t.job.Warnings = append(t.job.Warnings, message)
	event := t.eventLocked(EventWarning, t.currentStageLocked(), message)
	t.mu.Unlock()

	t.logger.Warn(message, logging.String(logging.FieldJobID, event.JobID))
	t.emit(event)
}

// AddError appends to the error list. Errors influence the final status only
// at completion time.
func (t *Tracker) AddError(message string) {
	t.mu.Lock()
	t.job.Errors = append(t.job.Errors, message)
	event := t.eventLocked(EventError, t.currentStageLocked(), message)
	t.mu.Unlock()

	t.logger.Error(message, logging.String(logging.FieldJobID, event.JobID))
	t.emit(event)
}

// Complete finalizes the job with an artifact. Accumulated errors elevate
// the terminal status to completed_with_errors; a clean run completes
// outright.
func (t *Tracker) Complete(artifactPath, artifactKind string) {
	t.mu.Lock()
	if t.job.Status.Terminal() {
		t.mu.Unlock()
		return
	}
	t.closeCurrentStageLocked(StageCompleted)
	now := time.Now().UTC()
	t.job.FinishedAt = &now
	t.job.ArtifactPath = artifactPath
	t.job.ArtifactKind = artifactKind
	t.job.Progress = 100
	if len(t.job.Errors) > 0 {
		t.job.Status = StatusCompletedWithErrors
	} else {
		t.job.Status = StatusCompleted
	}
	event := t.eventLocked(EventCompleted, "", artifactKind)
	t.mu.Unlock()

	t.logger.Info("job completed",
		logging.String(logging.FieldJobID, event.JobID),
		logging.String("status", string(event.Job.Status)),
		logging.String(logging.FieldArtifactKind, artifactKind))
	t.emit(event)
}

// Fail terminates the job without an artifact, closing any open stage as
// failed.
func (t *Tracker) Fail(message string) {
	t.mu.Lock()
	if t.job.Status.Terminal() {
		t.mu.Unlock()
		return
	}
	if message != "" {
		t.job.Errors = append(t.job.Errors, message)
	}
	t.closeCurrentStageLocked(StageFailed)
	now := time.Now().UTC()
	t.job.FinishedAt = &now
	t.job.Status = StatusFailed
	event := t.eventLocked(EventFailed, "", message)
	t.mu.Unlock()

	t.logger.Error("job failed",
		logging.String(logging.FieldJobID, event.JobID),
		logging.String("reason", message))
	t.emit(event)
}

func (t *Tracker) snapshotLocked() Job {
	snapshot := t.job
	snapshot.Stages = append([]StageRecord(nil), t.job.Stages...)
	snapshot.Warnings = append([]string(nil), t.job.Warnings...)
	snapshot.Errors = append([]string(nil), t.job.Errors...)
	return snapshot
}

func (t *Tracker) eventLocked(kind EventType, stage, message string) Event {
	return Event{
		Type:     kind,
		JobID:    t.job.ID,
		Stage:    stage,
		Progress: t.job.Progress,
		Message:  message,
		Job:      t.snapshotLocked(),
	}
}

func (t *Tracker) currentStageLocked() string {
	for i := len(t.job.Stages) - 1; i >= 0; i-- {
		if t.job.Stages[i].Status == StageRunning {
			return t.job.Stages[i].Name
		}
	}
	return ""
}

func (t *Tracker) closeCurrentStageLocked(status StageStatus) {
	for i := len(t.job.Stages) - 1; i >= 0; i-- {
		if t.job.Stages[i].Status == StageRunning {
			now := time.Now().UTC()
			t.job.Stages[i].Status = status
			t.job.Stages[i].FinishedAt = &now
			return
		}
	}
}

func (t *Tracker) emit(event Event) {
	t.mu.Lock()
	observers := make([]func(Event), 0, len(t.observers))
	for _, fn := range t.observers {
		observers = append(observers, fn)
	}
	t.mu.Unlock()

	for _, fn := range observers {
		fn(event)
	}
}
