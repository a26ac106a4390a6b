package research

import (
	"context"

	"github.com/legalopsmy/legalops/internal/config"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/workflow"
)

type State struct {
	workflow.Run
	Query    Query               `json:"query"`
	Results  []CaseResult        `json:"results,omitempty"`
	Memo     string              `json:"memo,omitempty"`
	Strength *CaseStrengthReport `json:"case_strength,omitempty"`
}

type Pipeline struct {
	searcher *Searcher
	exec     *llm.StageExecutor
	matter   *MatterContext
}

func NewPipeline(cfg config.Config, exec *llm.StageExecutor) (*Pipeline, error) {
	searcher := &Searcher{Live: cfg.ResearchLiveEnabled, MaxResults: cfg.ResearchMaxResults}
	if cfg.ResearchLiveEnabled {
		client, err := NewClient(ClientConfig{
			BaseURL:      cfg.ResearchBaseURL,
			RateInterval: cfg.ResearchRate(),
		})
		if err != nil {
			return nil, err
		}
		searcher.Client = client
	}
	return &Pipeline{searcher: searcher, exec: exec}, nil
}

// NewPipelineWithSearcher is the injection seam for tests and callers that
// already hold a configured client.
func NewPipelineWithSearcher(searcher *Searcher, exec *llm.StageExecutor) *Pipeline {
	return &Pipeline{searcher: searcher, exec: exec}
}

// AttachMatter enables the case_strength stage for runs where the intake
// outputs are available. Without it the run stops after the memo.
func (p *Pipeline) AttachMatter(matter MatterContext) {
	p.matter = &matter
}

// Run executes case_search then argument_memo for the query, and
// case_strength when a matter context is attached.
func (p *Pipeline) Run(ctx context.Context, q Query, progress workflow.ProgressFn) (*State, error) {
	st := &State{Run: workflow.NewRun(workflow.TypeResearch, q.MatterID), Query: q}

	stages := []workflow.Stage{
		{Name: "case_search", Run: func(ctx context.Context) error {
			results, degraded, err := p.searcher.Search(ctx, q)
			if err != nil {
				return err
			}
			st.Results = results
			if degraded {
				return workflow.Degradedf("live search unavailable, served mock corpus")
			}
			return nil
		}},
		{Name: "argument_memo", Run: func(ctx context.Context) error {
			memo, degraded, err := WriteMemo(ctx, p.exec, q, st.Results)
			if err != nil {
				return err
			}
			st.Memo = memo
			if degraded {
				return workflow.Degradedf("no LLM caller configured, memo is an authority list")
			}
			return nil
		}},
	}
	if p.matter != nil {
		stages = append(stages, workflow.Stage{Name: "case_strength", Run: func(ctx context.Context) error {
			report, degraded, err := AssessStrength(ctx, p.exec, *p.matter, st.Results)
			if err != nil {
				return err
			}
			st.Strength = &report
			if degraded {
				return workflow.Degradedf("no LLM caller configured, assessment is the deterministic baseline")
			}
			return nil
		}})
	}

	err := workflow.Execute(ctx, &st.Run, stages, progress)
	return st, err
}
