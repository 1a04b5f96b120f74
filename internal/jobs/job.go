package jobs

import "time"

// Status is a job's lifecycle state. Terminal statuses never change again.
type Status string

const (
	StatusQueued              Status = "queued"
	StatusProcessing          Status = "processing"
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusFailed              Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCompletedWithErrors, StatusFailed:
		return true
	}
	return false
}

// Pipeline stage names, in execution order.
const (
	StageSceneResolution   = "scene_resolution"
	StageCaptionGeneration = "caption_generation"
	StageTimelineAssembly  = "timeline_assembly"
	StageRendering         = "rendering"
)

// StageStatus tracks one stage's sub-span state.
type StageStatus string

const (
	StageRunning   StageStatus = "running"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
)

// StageRecord is an independently timed sub-span of a job.
type StageRecord struct {
	Name       string      `json:"name"`
	Status     StageStatus `json:"status"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
	Detail     string      `json:"detail,omitempty"`
}

// Job is a snapshot of one pipeline run.
type Job struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Status       Status        `json:"status"`
	Progress     int           `json:"progress"`
	Stages       []StageRecord `json:"stages"`
	Warnings     []string      `json:"warnings,omitempty"`
	Errors       []string      `json:"errors,omitempty"`
	ArtifactPath string        `json:"artifactPath,omitempty"`
	ArtifactKind string        `json:"artifactKind,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	StartedAt    *time.Time    `json:"startedAt,omitempty"`
	FinishedAt   *time.Time    `json:"finishedAt,omitempty"`
}

// LastError returns the most recent accumulated error, the actionable one
// for failed jobs.
func (j Job) LastError() string {
	if len(j.Errors) == 0 {
		return ""
	}
	return j.Errors[len(j.Errors)-1]
}

// CurrentStage returns the name of the running stage, or "" when no stage is
// open.
func (j Job) CurrentStage() string {
	for i := len(j.Stages) - 1; i >= 0; i-- {
		if j.Stages[i].Status == StageRunning {
			return j.Stages[i].Name
		}
	}
	return ""
}
