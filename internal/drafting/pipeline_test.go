package drafting

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/workflow"
)

// pipelineCaller serves planning, section, and paragraph prompts for a full
// drafting run.
type pipelineCaller struct {
	failPlanning bool
}

const planJSON = `{
	"issues": [{"id": "ISS-1", "title": "Breach of contract", "legal_basis": ["Contracts Act 1950"], "theory": "primary", "confidence": 0.85}],
	"prayers": [{"id": "PR-1", "text_ms": "Penghakiman RM 50,000", "text_en": "Judgment of RM 50,000", "template_ref": "TPL-PRAYER-MONEY", "priority": 1, "confidence": 0.8}]
}`

func (c *pipelineCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "Propose the legal issues"):
		if c.failPlanning {
			return "", errors.New("status code: 400 bad request")
		}
		return planJSON, nil
	case strings.Contains(prompt, "Draft the"):
		return `{"paragraphs": ["Plaintif menuntut bayaran RM 50,000 daripada defendan."]}`, nil
	case strings.Contains(prompt, "Translate this single pleading paragraph"):
		return `{"translation": "The plaintiff claims payment of RM 50,000 from the defendant."}`, nil
	}
	return "", errors.New("unexpected prompt")
}

func (c *pipelineCaller) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("unexpected text call")
}

func draftRequest() Request {
	return Request{
		MatterID:     "MTR-400",
		Snapshot:     testSnapshot(),
		CourtLevel:   "high",
		Jurisdiction: "peninsular",
		Language:     "ms",
	}
}

func TestDraftingPipelineCompletes(t *testing.T) {
	p := NewPipeline(llm.NewStageExecutor(&pipelineCaller{}))
	st, err := p.Run(context.Background(), draftRequest(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s", st.Status)
	}
	if len(st.StageResults) != 5 {
		t.Fatalf("got %d stage results, want 5", len(st.StageResults))
	}
	if st.Primary == nil || st.Companion == nil || st.QA == nil {
		t.Fatal("drafts and QA report must be populated")
	}
	if st.Primary.Language != "ms" || st.Companion.Language != "en" {
		t.Fatalf("languages = %s/%s", st.Primary.Language, st.Companion.Language)
	}
	if len(st.Primary.ParagraphMap) != len(st.Companion.ParagraphMap) {
		t.Fatal("paragraph maps must stay aligned")
	}
}

func TestDraftingPipelineHaltsOnPlanningFailure(t *testing.T) {
	p := NewPipeline(llm.NewStageExecutor(&pipelineCaller{failPlanning: true}))
	st, err := p.Run(context.Background(), draftRequest(), nil)
	if err == nil {
		t.Fatal("expected failure")
	}
	if st.Status != workflow.StatusFailed {
		t.Fatalf("status = %s", st.Status)
	}
	if st.StageRan("template_selection") {
		t.Fatal("stages after the failure must not run")
	}
}

func TestDraftingPipelineDegradedPlannerlessMode(t *testing.T) {
	p := NewPipeline(nil)
	req := draftRequest()
	st, err := p.Run(context.Background(), req, nil)
	// Later stages still need a model, so the run fails at primary_draft,
	// but planning itself degrades instead of failing.
	if err == nil {
		t.Fatal("expected primary_draft to fail without a caller")
	}
	if !st.StageRan("issue_planning") {
		t.Fatal("issue_planning must have run")
	}
	first := st.StageResults[0]
	if first.Status != workflow.StageCompleted || !first.Degraded {
		t.Fatalf("issue_planning result = %+v, want degraded completion", first)
	}
	if len(st.CandidateIssues) == 0 || len(st.CandidatePrayers) == 0 {
		t.Fatal("fallback planner must produce candidates")
	}
	if workflow.StageNameFromError(err) != "primary_draft" {
		t.Fatalf("failed stage = %s", workflow.StageNameFromError(err))
	}
}

func TestDraftingPipelineCarriesComplianceWarnings(t *testing.T) {
	p := NewPipeline(llm.NewStageExecutor(&pipelineCaller{}))
	req := draftRequest()
	req.Language = "en"
	st, err := p.Run(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(st.ComplianceWarnings) == 0 {
		t.Fatal("peninsular High Court in English must warn")
	}
	if st.Status != workflow.StatusCompleted {
		t.Fatalf("warnings must not fail the run, status = %s", st.Status)
	}
}
