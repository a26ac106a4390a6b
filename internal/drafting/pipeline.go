package drafting

import (
	"context"
	"fmt"
	"strings"

	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/workflow"
)

// Request selects what to draft. Empty selection IDs keep every candidate.
type Request struct {
	MatterID          string                `json:"matter_id"`
	Snapshot          intake.MatterSnapshot `json:"matter_snapshot"`
	CourtLevel        string                `json:"court_level"`
	Jurisdiction      string                `json:"jurisdiction"`
	Language          string                `json:"language"`
	SelectedIssueIDs  []string              `json:"selected_issue_ids,omitempty"`
	SelectedPrayerIDs []string              `json:"selected_prayer_ids,omitempty"`
}

type State struct {
	workflow.Run
	CandidateIssues    []Issue            `json:"candidate_issues"`
	CandidatePrayers   []Prayer           `json:"candidate_prayers"`
	SelectedIssues     []Issue            `json:"selected_issues"`
	SelectedPrayers    []Prayer           `json:"selected_prayers"`
	Template           *Template          `json:"template,omitempty"`
	ComplianceWarnings []string           `json:"compliance_warnings,omitempty"`
	Primary            *PleadingDraft     `json:"primary_draft,omitempty"`
	Companion          *PleadingDraft     `json:"companion_draft,omitempty"`
	Divergences        []DivergenceFlag   `json:"divergence_flags,omitempty"`
	QA                 *ConsistencyReport `json:"consistency_report,omitempty"`
}

type Pipeline struct {
	planner *Planner
	drafter *Drafter
}

func NewPipeline(exec *llm.StageExecutor) *Pipeline {
	return &Pipeline{
		planner: &Planner{Exec: exec},
		drafter: &Drafter{Exec: exec},
	}
}

// Run executes the drafting stages in their fixed order: issue_planning,
// template_selection, primary_draft, companion_draft, consistency_qa.
func (p *Pipeline) Run(ctx context.Context, req Request, progress workflow.ProgressFn) (*State, error) {
	st := &State{Run: workflow.NewRun(workflow.TypeDrafting, req.MatterID)}

	stages := []workflow.Stage{
		{Name: "issue_planning", Run: func(ctx context.Context) error {
			if strings.TrimSpace(req.MatterID) == "" {
				return fmt.Errorf("matter_id is required")
			}
			issues, prayers, _, err := p.planner.Plan(ctx, req.Snapshot)
			if err != nil {
				return err
			}
			st.CandidateIssues = issues
			st.CandidatePrayers = prayers
			st.SelectedIssues, st.SelectedPrayers = SelectCandidates(issues, prayers, req.SelectedIssueIDs, req.SelectedPrayerIDs)
			if len(st.SelectedIssues) == 0 || len(st.SelectedPrayers) == 0 {
				return fmt.Errorf("selection left no issues or prayers to draft")
			}
			if p.planner.Exec == nil {
				return workflow.Degradedf("no LLM caller configured, used deterministic fallback candidates")
			}
			return nil
		}},
		{Name: "template_selection", Run: func(ctx context.Context) error {
			tpl, warnings, err := SelectTemplate(req.CourtLevel, req.Jurisdiction, req.Language)
			if err != nil {
				return err
			}
			st.Template = &tpl
			st.ComplianceWarnings = warnings
			return nil
		}},
		{Name: "primary_draft", Run: func(ctx context.Context) error {
			draft, err := p.drafter.PrimaryDraft(ctx, *st.Template, req.Snapshot, st.SelectedIssues, st.SelectedPrayers)
			if err != nil {
				return err
			}
			st.Primary = &draft
			return nil
		}},
		{Name: "companion_draft", Run: func(ctx context.Context) error {
			companion, flags, err := p.drafter.CompanionDraft(ctx, *st.Primary)
			if err != nil {
				return err
			}
			st.Companion = &companion
			st.Divergences = flags
			return nil
		}},
		{Name: "consistency_qa", Run: func(ctx context.Context) error {
			report := RunConsistencyQA(*st.Primary, *st.Companion, st.Divergences)
			st.QA = &report
			return nil
		}},
	}

	err := workflow.Execute(ctx, &st.Run, stages, progress)
	return st, err
}
