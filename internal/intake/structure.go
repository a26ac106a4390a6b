package intake

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/legalopsmy/legalops/internal/llm"
)

// Structurer extracts a MatterSnapshot from the merged matter text.
type Structurer struct {
	Exec *llm.StageExecutor
}

type snapshotResponse struct {
	Parties []struct {
		Role string `json:"role"`
		Name string `json:"name"`
	} `json:"parties"`
	Court        string   `json:"court"`
	Jurisdiction string   `json:"jurisdiction"`
	CaseType     string   `json:"case_type"`
	Issues       []string `json:"issues"`
	Remedies     []string `json:"remedies"`
	KeyDates     []struct {
		Label string `json:"label"`
		Date  string `json:"date"`
	} `json:"key_dates"`
	EstimatedAmountRM float64            `json:"estimated_amount_rm"`
	FieldConfidences  map[string]float64 `json:"field_confidences"`
}

var snapshotFields = []string{"parties", "court", "case_type", "dates", "amount"}

func (s *Structurer) Extract(ctx context.Context, matterID, mergedText string, now time.Time) (MatterSnapshot, llm.AttemptMetrics, error) {
	snap := MatterSnapshot{MatterID: matterID}
	if strings.TrimSpace(mergedText) == "" {
		return snap, llm.AttemptMetrics{}, fmt.Errorf("no text available for structuring")
	}
	if s.Exec == nil {
		return snap, llm.AttemptMetrics{}, fmt.Errorf("structuring requires a configured LLM caller")
	}

	var resp snapshotResponse
	metrics, err := s.Exec.RunJSON(ctx, "case_structuring", buildStructuringPrompt(mergedText), &resp, func() error {
		for field, c := range resp.FieldConfidences {
			if c < 0 || c > 1 {
				return fmt.Errorf("field_confidences.%s must be between 0 and 1", field)
			}
		}
		return nil
	})
	if err != nil {
		return snap, metrics, err
	}

	for _, p := range resp.Parties {
		snap.Parties = append(snap.Parties, Party{Role: p.Role, Name: p.Name})
	}
	snap.Court = resp.Court
	snap.Jurisdiction = resp.Jurisdiction
	snap.CaseType = resp.CaseType
	snap.Issues = resp.Issues
	snap.Remedies = resp.Remedies
	unparsedDates := false
	for _, kd := range resp.KeyDates {
		if strings.TrimSpace(kd.Label) == "" && strings.TrimSpace(kd.Date) == "" {
			continue
		}
		parsed, ok := parseKeyDate(kd.Date)
		if !ok {
			unparsedDates = true
			snap.KeyDates = append(snap.KeyDates, KeyDate{Label: kd.Label, Raw: kd.Date})
			continue
		}
		snap.KeyDates = append(snap.KeyDates, KeyDate{Label: kd.Label, Date: parsed})
	}
	snap.EstimatedAmountRM = resp.EstimatedAmountRM
	if snap.EstimatedAmountRM == 0 {
		snap.EstimatedAmountRM = fallbackAmount(mergedText)
	}

	snap.FieldConfidences = resp.FieldConfidences
	if unparsedDates {
		// Dates the model could not normalise stay in the snapshot for
		// human review; the capped confidence is the flag.
		if snap.FieldConfidences == nil {
			snap.FieldConfidences = map[string]float64{}
		}
		if c, ok := snap.FieldConfidences["dates"]; !ok || c > unparsedDateConfidence {
			snap.FieldConfidences["dates"] = unparsedDateConfidence
		}
	}
	snap.Confidence = minFieldConfidence(snap.FieldConfidences)
	snap.ExtractedAt = now
	return snap, metrics, nil
}

func buildStructuringPrompt(mergedText string) string {
	var sb strings.Builder
	sb.WriteString("Extract the structured case facts from the following Malaysian legal matter text.\n")
	sb.WriteString("Use null-free JSON; leave unknown strings empty and unknown lists empty.\n\n")
	fmt.Fprintf(&sb, "Text:\n%s\n\n", mergedText)
	sb.WriteString(`Schema: {"parties": [{"role": "plaintiff|defendant|third_party", "name": "..."}], ` +
		`"court": "...", "jurisdiction": "peninsular|sabah_sarawak", "case_type": "...", ` +
		`"issues": ["..."], "remedies": ["..."], ` +
		`"key_dates": [{"label": "...", "date": "YYYY-MM-DD"}], ` +
		`"estimated_amount_rm": 0, ` +
		`"field_confidences": {"parties": 0.0, "court": 0.0, "case_type": 0.0, "dates": 0.0, "amount": 0.0}}`)
	return sb.String()
}

// unparsedDateConfidence caps the dates field when a reported date could not
// be normalised, forcing the snapshot below the review threshold.
const unparsedDateConfidence = 0.4

// keyDateLayouts lists the formats the model is known to emit despite the
// schema asking for YYYY-MM-DD. Malaysian documents favour day-first.
var keyDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2 January 2006",
	"January 2, 2006",
}

func parseKeyDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range keyDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var amountPattern = regexp.MustCompile(`(?i)RM\s*([\d,]+(?:\.\d{1,2})?)`)

// fallbackAmount recovers the largest RM figure by regex when free-text
// extraction found none.
func fallbackAmount(text string) float64 {
	var best float64
	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil && v > best {
			best = v
		}
	}
	return best
}

// minFieldConfidence takes the minimum, not the mean: one catastrophic field
// miss makes the whole snapshot unsafe to use.
func minFieldConfidence(fields map[string]float64) float64 {
	if len(fields) == 0 {
		return 0.2
	}
	min := 1.0
	for _, name := range snapshotFields {
		c, ok := fields[name]
		if !ok {
			c = 0.2
		}
		if c < min {
			min = c
		}
	}
	return min
}
