package research

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
)

// MatterContext carries the intake outputs the strength assessment reads.
type MatterContext struct {
	Snapshot intake.MatterSnapshot `json:"snapshot"`
	Risk     *intake.RiskScore     `json:"risk_score,omitempty"`
}

type StrengthFactor struct {
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

type StrengthRisk struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Mitigation  string `json:"mitigation"`
}

type StrengthSuggestion struct {
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// CaseStrengthReport is the predicted-outcome view of a matter: how likely
// the claim is to succeed, what carries it, what undermines it, and what to
// do about it. It advises counsel; it never gates a workflow.
type CaseStrengthReport struct {
	WinProbability  float64              `json:"win_probability"`
	ConfidenceLevel string               `json:"confidence_level"`
	Strengths       []StrengthFactor     `json:"strengths"`
	Risks           []StrengthRisk       `json:"risks"`
	Suggestions     []StrengthSuggestion `json:"suggestions"`
	Assessment      string               `json:"overall_assessment"`
	KeyFactors      []string             `json:"key_factors,omitempty"`
}

var strengthLevels = map[string]bool{"high": true, "medium": true, "low": true}

// AssessStrength predicts case strength from the matter snapshot, the risk
// score, and the ranked authorities. Without a configured caller it returns
// the deterministic baseline derived from the risk score and degraded is
// true.
func AssessStrength(ctx context.Context, exec *llm.StageExecutor, matter MatterContext, results []CaseResult) (CaseStrengthReport, bool, error) {
	if exec == nil {
		return baselineStrength(matter, results), true, nil
	}

	var report CaseStrengthReport
	_, err := exec.RunJSON(ctx, "case_strength", buildStrengthPrompt(matter, results), &report, func() error {
		if report.WinProbability < 0 || report.WinProbability > 1 {
			return fmt.Errorf("win_probability must be between 0 and 1")
		}
		if !strengthLevels[report.ConfidenceLevel] {
			return fmt.Errorf("confidence_level must be high, medium or low")
		}
		if len(report.Strengths) == 0 || len(report.Risks) == 0 {
			return fmt.Errorf("at least one strength and one risk are required")
		}
		if strings.TrimSpace(report.Assessment) == "" {
			return fmt.Errorf("overall_assessment is required")
		}
		return nil
	})
	if err != nil {
		return CaseStrengthReport{}, false, err
	}
	return report, false, nil
}

func buildStrengthPrompt(matter MatterContext, results []CaseResult) string {
	snap := matter.Snapshot
	var sb strings.Builder
	sb.WriteString("Assess the strength of this Malaysian civil matter for the plaintiff.\n\n")
	fmt.Fprintf(&sb, "Case type: %s\nCourt: %s\nJurisdiction: %s\n", snap.CaseType, snap.Court, snap.Jurisdiction)
	for _, p := range snap.Parties {
		fmt.Fprintf(&sb, "Party: %s (%s)\n", p.Name, p.Role)
	}
	fmt.Fprintf(&sb, "Issues: %s\nRemedies sought: %s\n", strings.Join(snap.Issues, "; "), strings.Join(snap.Remedies, "; "))
	if snap.EstimatedAmountRM > 0 {
		fmt.Fprintf(&sb, "Claim amount: RM %.2f\n", snap.EstimatedAmountRM)
	}
	if r := matter.Risk; r != nil {
		fmt.Fprintf(&sb, "\nRisk assessment (1 low to 5 high):\n- jurisdictional %d: %s\n- language %d: %s\n- volume %d: %s\n- time pressure %d: %s\nComposite %.2f (%s)\n",
			r.Jurisdictional.Score, r.Jurisdictional.Rationale,
			r.Language.Score, r.Language.Rationale,
			r.Volume.Score, r.Volume.Rationale,
			r.TimePressure.Score, r.TimePressure.Rationale,
			r.Composite, r.Level)
	}
	if len(results) > 0 {
		sb.WriteString("\nAuthorities found, best match first:\n")
		for _, r := range results {
			fmt.Fprintf(&sb, "- %s %s (%s, binding=%t)\n", r.Title, r.Citation, r.Court, r.Binding)
		}
	}
	sb.WriteString("\nConsider Malaysian legal standards, evidence strength, procedural compliance, and precedent support.\n")
	sb.WriteString(`Schema: {"win_probability": 0.0, "confidence_level": "high|medium|low", ` +
		`"strengths": [{"description": "...", "impact": "high|medium|low"}], ` +
		`"risks": [{"description": "...", "severity": "high|medium|low", "mitigation": "..."}], ` +
		`"suggestions": [{"action": "...", "priority": "high|medium|low", "reason": "..."}], ` +
		`"overall_assessment": "...", "key_factors": ["..."]}`)
	return sb.String()
}

// baselineStrength inverts the composite risk score into a win probability
// and derives the factor lists from what the file actually contains. Same
// inputs, same report.
func baselineStrength(matter MatterContext, results []CaseResult) CaseStrengthReport {
	snap := matter.Snapshot
	composite := 3.0
	if matter.Risk != nil {
		composite = matter.Risk.Composite
	}
	p := 1 - composite*0.16
	p = math.Max(0.2, math.Min(0.8, p))
	p = math.Round(p*100) / 100

	report := CaseStrengthReport{
		WinProbability:  p,
		ConfidenceLevel: "low",
		KeyFactors:      []string{"evidence completeness", "precedent support", "procedural compliance"},
	}

	if len(snap.Parties) >= 2 {
		report.Strengths = append(report.Strengths, StrengthFactor{
			Description: "Both sides of the dispute are identified in the pleadable form",
			Impact:      "medium",
		})
	}
	if snap.EstimatedAmountRM > 0 {
		report.Strengths = append(report.Strengths, StrengthFactor{
			Description: fmt.Sprintf("The claim is quantified at RM %.2f", snap.EstimatedAmountRM),
			Impact:      "medium",
		})
	}
	for _, r := range results {
		if r.Binding {
			report.Strengths = append(report.Strengths, StrengthFactor{
				Description: fmt.Sprintf("A binding authority supports the position: %s %s", r.Title, r.Citation),
				Impact:      "high",
			})
			break
		}
	}
	if len(report.Strengths) == 0 {
		report.Strengths = append(report.Strengths, StrengthFactor{
			Description: "The matter file is assembled and structured for review",
			Impact:      "low",
		})
	}

	if snap.Confidence < 0.7 {
		report.Risks = append(report.Risks, StrengthRisk{
			Description: "Extraction confidence is low; key facts may be incomplete",
			Severity:    "medium",
			Mitigation:  "Verify the case snapshot against the source documents",
		})
	}
	if r := matter.Risk; r != nil {
		for _, sub := range []struct {
			score      intake.SubScore
			mitigation string
		}{
			{r.Jurisdictional, "Confirm forum and service requirements with local counsel"},
			{r.Language, "Prioritise certified translation of the operative documents"},
			{r.Volume, "Stage the document review and triage the exhibits early"},
			{r.TimePressure, "Diarise the nearest key date and prepare filings ahead of it"},
		} {
			if sub.score.Score >= 4 {
				report.Risks = append(report.Risks, StrengthRisk{
					Description: sub.score.Rationale,
					Severity:    "high",
					Mitigation:  sub.mitigation,
				})
			}
		}
	}
	report.Risks = append(report.Risks, StrengthRisk{
		Description: "The assessment rests on the automated file only",
		Severity:    "medium",
		Mitigation:  "Review the report with counsel before relying on it",
	})

	report.Suggestions = append(report.Suggestions, StrengthSuggestion{
		Action:   "Complete the document collection for the matter",
		Priority: "high",
		Reason:   "Fuller evidence sharpens both the claim and this assessment",
	})
	hasBinding := false
	for _, r := range results {
		if r.Binding {
			hasBinding = true
			break
		}
	}
	if !hasBinding {
		report.Suggestions = append(report.Suggestions, StrengthSuggestion{
			Action:   "Run a further authority search against the Federal Court database",
			Priority: "medium",
			Reason:   "A binding decision anchors the argument",
		})
	}
	report.Suggestions = append(report.Suggestions, StrengthSuggestion{
		Action:   "Have senior counsel review the assessment",
		Priority: "medium",
		Reason:   "The automated view is preliminary",
	})

	level := intake.RiskMedium
	if matter.Risk != nil {
		level = matter.Risk.Level
	}
	report.Assessment = fmt.Sprintf(
		"Preliminary baseline only: estimated win probability %.0f%% against a %s composite risk. A reasoned assessment needs counsel review of the evidence and authorities.",
		p*100, level)
	return report
}
