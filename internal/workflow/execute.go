package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// DegradedError is returned by a stage that substituted a fallback result
// after a recoverable failure. Execute records the stage as completed with
// Degraded=true and continues the run.
type DegradedError struct {
	Reason string
}

func (e *DegradedError) Error() string { return e.Reason }

func Degradedf(format string, args ...any) *DegradedError {
	return &DegradedError{Reason: fmt.Sprintf(format, args...)}
}

type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

type ProgressFn func(stage, message string)

// Execute runs the stages strictly in order, appending a StageResult per
// stage. The first unrecoverable stage error halts the run: Status becomes
// failed, Error is populated, and the accumulated partial results are kept
// for the caller. Stages after the failed one never execute.
func Execute(ctx context.Context, run *Run, stages []Stage, progress ProgressFn) error {
	run.Status = StatusRunning
	run.StartedAt = time.Now()
	tracer := otel.Tracer("legalops/workflow")

	for _, st := range stages {
		run.CurrentStage = st.Name
		emit(progress, st.Name, fmt.Sprintf("Running %s...", st.Name))

		stageCtx, span := tracer.Start(ctx, string(run.Type)+"."+st.Name)
		span.SetAttributes(
			attribute.String("legalops.workflow_id", run.WorkflowID),
			attribute.String("legalops.matter_id", run.MatterID),
		)
		started := time.Now()
		err := st.Run(stageCtx)
		elapsed := time.Since(started)

		var deg *DegradedError
		switch {
		case err == nil:
			run.StageResults = append(run.StageResults, StageResult{
				Stage:      st.Name,
				Status:     StageCompleted,
				DurationMS: elapsed.Milliseconds(),
			})
		case errors.As(err, &deg):
			span.SetAttributes(attribute.Bool("legalops.degraded", true))
			run.StageResults = append(run.StageResults, StageResult{
				Stage:      st.Name,
				Status:     StageCompleted,
				Degraded:   true,
				Detail:     deg.Reason,
				DurationMS: elapsed.Milliseconds(),
			})
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			run.StageResults = append(run.StageResults, StageResult{
				Stage:      st.Name,
				Status:     StageFailed,
				Detail:     err.Error(),
				DurationMS: elapsed.Milliseconds(),
			})
			run.Status = StatusFailed
			stageErr := &StageError{Stage: st.Name, Err: err}
			run.Error = stageErr.Error()
			run.CompletedAt = time.Now()
			return stageErr
		}
		span.End()
		emit(progress, st.Name, fmt.Sprintf("%s complete in %s", st.Name, elapsed.Round(time.Millisecond)))
	}

	run.CurrentStage = ""
	run.Status = StatusCompleted
	run.CompletedAt = time.Now()
	return nil
}

func emit(progress ProgressFn, stage, message string) {
	if progress != nil {
		progress(stage, message)
	}
}

func StageNameFromError(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return "workflow"
}
