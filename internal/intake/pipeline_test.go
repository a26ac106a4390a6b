package intake

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/legalopsmy/legalops/internal/config"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/workflow"
)

// routingCaller answers by prompt content so one caller can serve every
// stage of a pipeline run.
type routingCaller struct {
	translation string
	structuring string
	failStages  map[string]bool
}

func (c *routingCaller) route(prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "Translate the following legal text segment"):
		if c.failStages["translation"] {
			return "", errors.New("status code: 400 bad request")
		}
		return c.translation, nil
	case strings.Contains(prompt, "Extract the structured case facts"):
		if c.failStages["case_structuring"] {
			return "", errors.New("status code: 400 bad request")
		}
		return c.structuring, nil
	}
	return "", errors.New("unexpected prompt")
}

func (c *routingCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return c.route(prompt)
}

func (c *routingCaller) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.route(prompt)
}

func intakeInputs() []RawInput {
	return []RawInput{{
		Connector: ConnectorUpload,
		Filename:  "saman_bm.txt",
		Data: []byte("Plaintif menuntut bayaran RM 50,000 daripada defendan dalam mahkamah ini.\n" +
			"Defendan tidak membuat bayaran itu pada tarikh yang dipersetujui oleh kedua pihak.\n"),
	}}
}

func newTestPipeline(caller llm.Caller) *Pipeline {
	return NewPipeline(config.Default(), llm.NewStageExecutor(caller), nil, nil)
}

func TestIntakePipelineCompletes(t *testing.T) {
	caller := &routingCaller{
		translation: `{"literal": "The plaintiff demands payment of RM 50,000 from the defendant in this court. The defendant did not make that payment on the date agreed by both parties.", "idiomatic": "The plaintiff claims RM 50,000 from the defendant in this court. The defendant failed to pay on the agreed date."}`,
		structuring: snapshotJSON,
	}
	p := newTestPipeline(caller)

	st, err := p.Run(context.Background(), "MTR-200", intakeInputs(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s", st.Status)
	}
	if len(st.StageResults) != 5 {
		t.Fatalf("got %d stage results, want 5", len(st.StageResults))
	}
	if len(st.Documents) != 1 || len(st.Segments) == 0 || len(st.Translations) != len(st.Segments) {
		t.Fatalf("state incomplete: %d docs, %d segments, %d translations",
			len(st.Documents), len(st.Segments), len(st.Translations))
	}
	if st.Snapshot == nil || st.Risk == nil {
		t.Fatal("snapshot and risk must be populated")
	}
	if st.Risk.Level == "" || st.Risk.Composite < 1 || st.Risk.Composite > 5 {
		t.Fatalf("risk = %+v", st.Risk)
	}
}

func TestIntakePipelineHaltsAtStructuring(t *testing.T) {
	caller := &routingCaller{
		translation: `{"literal": "ok translation here", "idiomatic": "ok translation here"}`,
		structuring: snapshotJSON,
		failStages:  map[string]bool{"case_structuring": true},
	}
	p := newTestPipeline(caller)

	st, err := p.Run(context.Background(), "MTR-201", intakeInputs(), nil)
	if err == nil {
		t.Fatal("expected run failure")
	}
	if st == nil {
		t.Fatal("partial state must be returned on failure")
	}
	if st.Status != workflow.StatusFailed || st.Error == "" {
		t.Fatalf("header = %+v", st.Run)
	}
	if workflow.StageNameFromError(err) != "case_structuring" {
		t.Fatalf("failed stage = %q", workflow.StageNameFromError(err))
	}
	if !st.StageRan("translation") {
		t.Fatal("stages before the failure must have results")
	}
	if st.StageRan("risk_scoring") {
		t.Fatal("risk_scoring must never run after a structuring failure")
	}
	if len(st.Translations) == 0 {
		t.Fatal("partial outputs must be preserved")
	}
}

func TestIntakePipelineRejectsEmptyInput(t *testing.T) {
	p := newTestPipeline(&routingCaller{})
	st, err := p.Run(context.Background(), "MTR-202", nil, nil)
	if err == nil {
		t.Fatal("expected input error")
	}
	if st.Status != workflow.StatusFailed {
		t.Fatalf("status = %s", st.Status)
	}
	if len(st.StageResults) != 1 || st.StageResults[0].Stage != "collect_documents" {
		t.Fatalf("stage results = %+v", st.StageResults)
	}
}
