package research

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
)

type strengthCaller struct {
	response string
}

func (c *strengthCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return c.response, nil
}

func (c *strengthCaller) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("unexpected text call")
}

func strengthMatter() MatterContext {
	return MatterContext{
		Snapshot: intake.MatterSnapshot{
			MatterID:          "MTR-700",
			CaseType:          "contract",
			Court:             "High Court of Malaya at Kuala Lumpur",
			Parties:           []intake.Party{{Role: "plaintiff", Name: "Syarikat Maju Sdn Bhd"}, {Role: "defendant", Name: "Ahmad bin Abdullah"}},
			EstimatedAmountRM: 50000,
			Confidence:        0.8,
		},
		Risk: &intake.RiskScore{
			Jurisdictional: intake.SubScore{Score: 2, Rationale: "single forum"},
			Language:       intake.SubScore{Score: 4, Rationale: "heavy bilingual record"},
			Volume:         intake.SubScore{Score: 2, Rationale: "modest volume"},
			TimePressure:   intake.SubScore{Score: 2, Rationale: "no near dates"},
			Composite:      2.5,
			Level:          intake.RiskMedium,
		},
	}
}

func TestBaselineStrengthIsDeterministic(t *testing.T) {
	matter := strengthMatter()
	first, degraded, err := AssessStrength(context.Background(), nil, matter, nil)
	if err != nil {
		t.Fatalf("AssessStrength: %v", err)
	}
	if !degraded {
		t.Fatal("baseline without a caller must be degraded")
	}
	second, _, _ := AssessStrength(context.Background(), nil, matter, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("baseline report must be deterministic")
	}
	if first.WinProbability != 0.6 {
		t.Fatalf("win probability = %v, want composite 2.5 inverted to 0.6", first.WinProbability)
	}
	if first.ConfidenceLevel != "low" {
		t.Fatalf("confidence level = %q", first.ConfidenceLevel)
	}
	found := false
	for _, r := range first.Risks {
		if r.Description == "heavy bilingual record" && r.Severity == "high" {
			found = true
		}
	}
	if !found {
		t.Fatalf("a sub-score of 4 must surface as a high risk: %+v", first.Risks)
	}
}

func TestBaselineStrengthProbabilityBounds(t *testing.T) {
	high := strengthMatter()
	high.Risk.Composite = 5
	report, _, _ := AssessStrength(context.Background(), nil, high, nil)
	if report.WinProbability != 0.2 {
		t.Fatalf("max-risk probability = %v, want the 0.2 floor", report.WinProbability)
	}

	low := strengthMatter()
	low.Risk.Composite = 1
	report, _, _ = AssessStrength(context.Background(), nil, low, nil)
	if report.WinProbability != 0.8 {
		t.Fatalf("min-risk probability = %v, want the 0.8 ceiling", report.WinProbability)
	}
}

func TestBaselineStrengthUsesAuthorities(t *testing.T) {
	matter := strengthMatter()
	binding := []CaseResult{{Citation: "[2019] 6 MLJ 15", Title: "Cubic Electronics Sdn Bhd v Mars Telecommunications Sdn Bhd", Court: "Federal Court of Malaysia", Year: 2019, Binding: true}}

	report, _, _ := AssessStrength(context.Background(), nil, matter, binding)
	hasBindingStrength := false
	for _, s := range report.Strengths {
		if strings.Contains(s.Description, "[2019] 6 MLJ 15") && s.Impact == "high" {
			hasBindingStrength = true
		}
	}
	if !hasBindingStrength {
		t.Fatalf("binding authority must appear as a high-impact strength: %+v", report.Strengths)
	}
	for _, s := range report.Suggestions {
		if strings.Contains(s.Action, "Federal Court") {
			t.Fatalf("authority search already satisfied: %+v", report.Suggestions)
		}
	}

	report, _, _ = AssessStrength(context.Background(), nil, matter, nil)
	wantSearch := false
	for _, s := range report.Suggestions {
		if strings.Contains(s.Action, "Federal Court") {
			wantSearch = true
		}
	}
	if !wantSearch {
		t.Fatalf("missing binding authority must suggest a further search: %+v", report.Suggestions)
	}
}

func TestAssessStrengthParsesModelReport(t *testing.T) {
	exec := llm.NewStageExecutor(&strengthCaller{response: `{
		"win_probability": 0.72,
		"confidence_level": "medium",
		"strengths": [{"description": "Clear contractual chain", "impact": "high"}],
		"risks": [{"description": "Limitation arguable on the oldest invoice", "severity": "medium", "mitigation": "Plead acknowledgment of debt"}],
		"suggestions": [{"action": "Obtain the signed delivery orders", "priority": "high", "reason": "Proves performance"}],
		"overall_assessment": "A solid documentary claim with one limitation wrinkle.",
		"key_factors": ["documentary evidence"]
	}`})
	report, degraded, err := AssessStrength(context.Background(), exec, strengthMatter(), nil)
	if err != nil {
		t.Fatalf("AssessStrength: %v", err)
	}
	if degraded {
		t.Fatal("a model-backed report is not degraded")
	}
	if report.WinProbability != 0.72 || len(report.Risks) != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestAssessStrengthRejectsOutOfRangeProbability(t *testing.T) {
	exec := llm.NewStageExecutor(&strengthCaller{response: `{
		"win_probability": 1.4,
		"confidence_level": "high",
		"strengths": [{"description": "x", "impact": "high"}],
		"risks": [{"description": "y", "severity": "low", "mitigation": "z"}],
		"overall_assessment": "overreach"
	}`})
	if _, _, err := AssessStrength(context.Background(), exec, strengthMatter(), nil); err == nil {
		t.Fatal("expected validation failure for probability above 1")
	}
}
