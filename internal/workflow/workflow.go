package workflow

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeIntake   Type = "intake"
	TypeDrafting Type = "drafting"
	TypeResearch Type = "research"
	TypeEvidence Type = "evidence"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
)

// StageResult records the outcome of one stage execution. Degraded marks a
// stage that substituted fallback output after a recoverable failure; the
// stage still counts as completed.
type StageResult struct {
	Stage      string      `json:"stage"`
	Status     StageStatus `json:"status"`
	Degraded   bool        `json:"degraded,omitempty"`
	Detail     string      `json:"detail,omitempty"`
	DurationMS int64       `json:"duration_ms"`
}

// Run is the shared header of every workflow state. Typed per-workflow state
// structs embed it; Execute is its only writer while a run is in flight.
type Run struct {
	WorkflowID   string        `json:"workflow_id"`
	MatterID     string        `json:"matter_id"`
	Type         Type          `json:"workflow_type"`
	Status       Status        `json:"status"`
	CurrentStage string        `json:"current_stage,omitempty"`
	StageResults []StageResult `json:"stage_results"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  time.Time     `json:"completed_at,omitzero"`
}

func NewRun(typ Type, matterID string) Run {
	return Run{
		WorkflowID: uuid.NewString(),
		MatterID:   matterID,
		Type:       typ,
		Status:     StatusPending,
	}
}

// StageDuration returns the recorded duration for a stage, or zero when the
// stage has not run.
func (r *Run) StageDuration(stage string) time.Duration {
	for _, sr := range r.StageResults {
		if sr.Stage == stage {
			return time.Duration(sr.DurationMS) * time.Millisecond
		}
	}
	return 0
}

// StageRan reports whether a StageResult exists for the named stage.
func (r *Run) StageRan(stage string) bool {
	for _, sr := range r.StageResults {
		if sr.Stage == stage {
			return true
		}
	}
	return false
}
