package drafting

import (
	"context"
	"fmt"
	"strings"

	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
)

// Planner derives candidate issues and prayers from a matter snapshot. The
// caller narrows the candidates to the subset that gets drafted.
type Planner struct {
	Exec *llm.StageExecutor
}

type planResponse struct {
	Issues  []Issue  `json:"issues"`
	Prayers []Prayer `json:"prayers"`
}

func (p *Planner) Plan(ctx context.Context, snap intake.MatterSnapshot) ([]Issue, []Prayer, llm.AttemptMetrics, error) {
	if p.Exec == nil {
		issues, prayers := fallbackPlan(snap)
		return issues, prayers, llm.AttemptMetrics{}, nil
	}

	var resp planResponse
	metrics, err := p.Exec.RunJSON(ctx, "issue_planning", buildPlanPrompt(snap), &resp, func() error {
		if len(resp.Issues) == 0 {
			return fmt.Errorf("at least one issue is required")
		}
		for i, issue := range resp.Issues {
			if issue.Theory != TheoryPrimary && issue.Theory != TheoryAlternative {
				return fmt.Errorf("issues[%d].theory must be primary or alternative", i)
			}
			if issue.Confidence < 0 || issue.Confidence > 1 {
				return fmt.Errorf("issues[%d].confidence out of range", i)
			}
		}
		for i, prayer := range resp.Prayers {
			if strings.TrimSpace(prayer.TextMS) == "" || strings.TrimSpace(prayer.TextEN) == "" {
				return fmt.Errorf("prayers[%d] must carry both language texts", i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, metrics, err
	}
	return resp.Issues, resp.Prayers, metrics, nil
}

func buildPlanPrompt(snap intake.MatterSnapshot) string {
	var sb strings.Builder
	sb.WriteString("Propose the legal issues and prayers for a Malaysian pleading based on this case snapshot.\n\n")
	fmt.Fprintf(&sb, "Case type: %s\nCourt: %s\nIssues noted at intake: %s\nRemedies sought: %s\nEstimated amount: RM %.2f\n\n",
		snap.CaseType, snap.Court, strings.Join(snap.Issues, "; "), strings.Join(snap.Remedies, "; "), snap.EstimatedAmountRM)
	sb.WriteString(`Schema: {"issues": [{"id": "ISS-1", "title": "...", "legal_basis": ["..."], ` +
		`"theory": "primary|alternative", "confidence": 0.0}], ` +
		`"prayers": [{"id": "PR-1", "text_ms": "...", "text_en": "...", ` +
		`"template_ref": "TPL-PRAYER-MONEY|TPL-PRAYER-DAMAGES|TPL-PRAYER-GENERAL", "priority": 1, "confidence": 0.0}]}`)
	return sb.String()
}

// fallbackPlan is the deterministic planner used when no model is
// configured. Candidates are generic per case type and marked low
// confidence so review always follows.
func fallbackPlan(snap intake.MatterSnapshot) ([]Issue, []Prayer) {
	caseType := strings.ToLower(snap.CaseType)
	issues := []Issue{{
		ID:         "ISS-1",
		Title:      "Liability of the defendant on the pleaded facts",
		LegalBasis: []string{"Contracts Act 1950"},
		Theory:     TheoryPrimary,
		Confidence: 0.4,
	}}
	if strings.Contains(caseType, "tort") || strings.Contains(caseType, "negligence") {
		issues[0].LegalBasis = []string{"common law negligence"}
	}

	prayers := []Prayer{{
		ID:          "PR-1",
		TextMS:      fmt.Sprintf("Penghakiman untuk jumlah RM %.2f", snap.EstimatedAmountRM),
		TextEN:      fmt.Sprintf("Judgment in the sum of RM %.2f", snap.EstimatedAmountRM),
		TemplateRef: "TPL-PRAYER-MONEY",
		Priority:    1,
		Confidence:  0.4,
	}, {
		ID:          "PR-2",
		TextMS:      "Faedah dan kos",
		TextEN:      "Interest and costs",
		TemplateRef: "TPL-PRAYER-GENERAL",
		Priority:    2,
		Confidence:  0.4,
	}}
	if snap.EstimatedAmountRM == 0 {
		prayers[0] = Prayer{
			ID:          "PR-1",
			TextMS:      "Ganti rugi am untuk ditaksirkan",
			TextEN:      "General damages to be assessed",
			TemplateRef: "TPL-PRAYER-DAMAGES",
			Priority:    1,
			Confidence:  0.4,
		}
	}
	return issues, prayers
}

// SelectCandidates narrows planned candidates to the chosen IDs. Empty
// selections keep everything.
func SelectCandidates(issues []Issue, prayers []Prayer, issueIDs, prayerIDs []string) ([]Issue, []Prayer) {
	return filterIssues(issues, issueIDs), filterPrayers(prayers, prayerIDs)
}

func filterIssues(issues []Issue, ids []string) []Issue {
	if len(ids) == 0 {
		return issues
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []Issue
	for _, issue := range issues {
		if want[issue.ID] {
			out = append(out, issue)
		}
	}
	return out
}

func filterPrayers(prayers []Prayer, ids []string) []Prayer {
	if len(ids) == 0 {
		return prayers
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []Prayer
	for _, prayer := range prayers {
		if want[prayer.ID] {
			out = append(out, prayer)
		}
	}
	return out
}
