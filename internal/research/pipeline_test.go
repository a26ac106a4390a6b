package research

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/legalopsmy/legalops/internal/config"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/workflow"
)

type memoCaller struct {
	memo string
}

func (c *memoCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("unexpected JSON call")
}

func (c *memoCaller) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.memo, nil
}

func TestResearchPipelineMockRunCompletes(t *testing.T) {
	p, err := NewPipeline(config.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	st, err := p.Run(context.Background(), Query{MatterID: "MTR-500", Text: "breach of contract damages"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s", st.Status)
	}
	if len(st.StageResults) != 2 {
		t.Fatalf("got %d stage results, want 2", len(st.StageResults))
	}
	if st.StageResults[0].Degraded {
		t.Fatal("mock with live disabled must not be marked degraded")
	}
	if !st.StageResults[1].Degraded {
		t.Fatal("memo without a caller must be marked degraded")
	}
	if len(st.Results) == 0 || st.Memo == "" {
		t.Fatal("results and memo must be populated")
	}
	if !strings.Contains(st.Memo, "Authorities:") {
		t.Fatalf("fallback memo must list authorities: %q", st.Memo)
	}
}

func TestResearchPipelineLiveFailureServesMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL, RateInterval: time.Millisecond, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatal(err)
	}
	p := NewPipelineWithSearcher(&Searcher{Client: client, Live: true, MaxResults: 5}, llm.NewStageExecutor(&memoCaller{memo: "memo text"}))

	st, err := p.Run(context.Background(), Query{MatterID: "MTR-501", Text: "negligence"}, nil)
	if err != nil {
		t.Fatalf("live failure must not fail the run: %v", err)
	}
	if st.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s", st.Status)
	}
	if !st.StageResults[0].Degraded {
		t.Fatal("mock served in place of live must be degraded")
	}
	if len(st.Results) == 0 {
		t.Fatal("fallback results must not be empty")
	}
	for _, r := range st.Results {
		if r.Provenance != ProvenanceMock {
			t.Fatalf("provenance = %s", r.Provenance)
		}
	}
	if st.Memo != "memo text" {
		t.Fatalf("memo = %q", st.Memo)
	}
	if st.StageResults[1].Degraded {
		t.Fatal("memo with a caller is not degraded")
	}
}

func TestResearchPipelineEmptyLiveAnswerCompletes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>No matching decisions.</p></body></html>"))
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: srv.URL, RateInterval: time.Millisecond, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatal(err)
	}
	p := NewPipelineWithSearcher(&Searcher{Client: client, Live: true, MaxResults: 5}, nil)

	st, err := p.Run(context.Background(), Query{MatterID: "MTR-503", Text: "a point no court has decided"}, nil)
	if err != nil {
		t.Fatalf("an empty live answer must not fail the run: %v", err)
	}
	if st.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s", st.Status)
	}
	for _, r := range st.StageResults {
		if r.Degraded {
			t.Fatalf("stage %s wrongly degraded for a valid empty answer", r.Stage)
		}
	}
	if len(st.Results) != 0 {
		t.Fatalf("results = %+v, want none", st.Results)
	}
	if !strings.Contains(st.Memo, "No authority was found") {
		t.Fatalf("memo = %q", st.Memo)
	}
}

func TestResearchPipelineRunsStrengthStageWithMatter(t *testing.T) {
	p, err := NewPipeline(config.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	p.AttachMatter(strengthMatter())

	st, err := p.Run(context.Background(), Query{MatterID: "MTR-700", Text: "breach of contract damages"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s", st.Status)
	}
	if len(st.StageResults) != 3 {
		t.Fatalf("got %d stage results, want 3", len(st.StageResults))
	}
	last := st.StageResults[2]
	if last.Stage != "case_strength" || !last.Degraded {
		t.Fatalf("case_strength should complete degraded without a caller: %+v", last)
	}
	if st.Strength == nil || st.Strength.WinProbability <= 0 {
		t.Fatalf("strength = %+v", st.Strength)
	}
}

func TestResearchPipelineRejectsEmptyQuery(t *testing.T) {
	p, err := NewPipeline(config.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	st, err := p.Run(context.Background(), Query{MatterID: "MTR-502"}, nil)
	if err == nil {
		t.Fatal("expected failure for an empty query")
	}
	if workflow.StageNameFromError(err) != "case_search" {
		t.Fatalf("failed stage = %s", workflow.StageNameFromError(err))
	}
	if st.Status != workflow.StatusFailed {
		t.Fatalf("status = %s", st.Status)
	}
}
