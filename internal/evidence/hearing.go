package evidence

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/legalopsmy/legalops/internal/drafting"
	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/research"
)

// BuildHearingPrep assembles the tabbed hearing skeleton. The judge FAQ
// list needs a model; without one a short deterministic list is returned
// and degraded is true.
func BuildHearingPrep(ctx context.Context, exec *llm.StageExecutor, snap intake.MatterSnapshot, packet Packet, authorities []research.CaseResult, companion *drafting.PleadingDraft) (HearingPrep, bool, error) {
	prep := HearingPrep{
		Tabs:      buildTabs(packet, authorities),
		OpeningMS: buildOpening(snap),
		NotesEN:   buildNotes(snap, companion),
	}

	faqs, degraded, err := judgeFAQs(ctx, exec, snap, authorities)
	if err != nil {
		return prep, false, err
	}
	prep.FAQs = faqs
	return prep, degraded, nil
}

func buildTabs(packet Packet, authorities []research.CaseResult) []HearingTab {
	var pleadings, translations []string
	for _, e := range packet.Exhibits {
		switch {
		case e.Kind == ExhibitPleading:
			pleadings = append(pleadings, fmt.Sprintf("%s %s", e.ID, e.Title))
		case e.Translated || strings.HasSuffix(e.ID, "(A)"):
			translations = append(translations, fmt.Sprintf("%s %s", e.ID, e.Title))
		}
	}

	// Binding authorities lead, newest first within each group.
	ranked := make([]research.CaseResult, len(authorities))
	copy(ranked, authorities)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Binding != ranked[j].Binding {
			return ranked[i].Binding
		}
		return ranked[i].Year > ranked[j].Year
	})
	var cited []string
	for _, r := range ranked {
		cited = append(cited, fmt.Sprintf("%s %s (%s)", r.Title, r.Citation, r.Court))
	}

	return []HearingTab{
		{Name: "Pleadings", Items: pleadings},
		{Name: "Submissions", Items: []string{"Skeletal submissions (to be settled by counsel)"}},
		{Name: "Authorities", Items: cited},
		{Name: "Translations", Items: translations},
	}
}

func buildOpening(snap intake.MatterSnapshot) string {
	plaintiff, defendant := "plaintif", "defendan"
	for _, p := range snap.Parties {
		switch strings.ToLower(p.Role) {
		case "plaintiff", "plaintif":
			plaintiff = p.Name
		case "defendant", "defendan":
			defendant = p.Name
		}
	}
	var sb strings.Builder
	sb.WriteString("Yang Arif,\n\n")
	fmt.Fprintf(&sb, "Saya mewakili plaintif, %s, dalam tuntutan terhadap defendan, %s.\n", plaintiff, defendant)
	if snap.EstimatedAmountRM > 0 {
		fmt.Fprintf(&sb, "Tuntutan ini adalah untuk jumlah RM %.2f.\n", snap.EstimatedAmountRM)
	}
	sb.WriteString("Dengan izin, saya akan merujuk kepada ikatan dokumen mengikut tab yang difailkan.\n")
	return sb.String()
}

func buildNotes(snap intake.MatterSnapshot, companion *drafting.PleadingDraft) string {
	var sb strings.Builder
	sb.WriteString("Companion notes (English)\n\n")
	fmt.Fprintf(&sb, "Case type: %s. Court: %s.\n", snap.CaseType, snap.Court)
	sb.WriteString("The oral submission opens in Malay; these notes track it in English for the file.\n")
	if companion != nil {
		fmt.Fprintf(&sb, "The companion pleading (%d paragraphs) is paragraph-aligned with the primary draft; cite paragraphs by number in either language.\n", len(companion.ParagraphMap))
	}
	return sb.String()
}

type faqResponse struct {
	FAQs []JudgeFAQ `json:"faqs"`
}

func judgeFAQs(ctx context.Context, exec *llm.StageExecutor, snap intake.MatterSnapshot, authorities []research.CaseResult) ([]JudgeFAQ, bool, error) {
	if exec == nil {
		return fallbackFAQs(snap, authorities), true, nil
	}

	var resp faqResponse
	_, err := exec.RunJSON(ctx, "hearing_prep", buildFAQPrompt(snap, authorities), &resp, func() error {
		if len(resp.FAQs) == 0 {
			return fmt.Errorf("at least one FAQ is required")
		}
		for i, f := range resp.FAQs {
			if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
				return fmt.Errorf("faqs[%d] needs a question and an answer", i)
			}
			if strings.TrimSpace(f.Authority) == "" {
				return fmt.Errorf("faqs[%d] must cite a supporting authority", i)
			}
			if f.Confidence < 0 || f.Confidence > 1 {
				return fmt.Errorf("faqs[%d].confidence out of range", i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return resp.FAQs, false, nil
}

func buildFAQPrompt(snap intake.MatterSnapshot, authorities []research.CaseResult) string {
	var sb strings.Builder
	sb.WriteString("List the questions the judge is most likely to ask at the hearing of this Malaysian civil matter, with short answers.\n\n")
	fmt.Fprintf(&sb, "Case type: %s\nCourt: %s\nIssues: %s\n\nAuthorities available:\n", snap.CaseType, snap.Court, strings.Join(snap.Issues, "; "))
	for _, r := range authorities {
		fmt.Fprintf(&sb, "- %s %s\n", r.Title, r.Citation)
	}
	sb.WriteString("\nEvery answer must cite one of the authorities above.\n")
	sb.WriteString(`Schema: {"faqs": [{"question": "...", "answer": "...", "authority": "[2019] 6 MLJ 15", "confidence": 0.0}]}`)
	return sb.String()
}

func fallbackFAQs(snap intake.MatterSnapshot, authorities []research.CaseResult) []JudgeFAQ {
	authority := "authority to be settled by counsel"
	if len(authorities) > 0 {
		authority = authorities[0].Citation
	}
	faqs := []JudgeFAQ{
		{
			Question:   "What is the cause of action and when did it accrue?",
			Answer:     fmt.Sprintf("The claim is in %s; the accrual date follows the key dates in the case snapshot.", snap.CaseType),
			Authority:  authority,
			Confidence: 0.4,
		},
		{
			Question:   "Is any part of the claim outside the limitation period?",
			Answer:     "Counsel to confirm against the earliest key date before the hearing.",
			Authority:  authority,
			Confidence: 0.4,
		},
		{
			Question:   "Are the translated exhibits certified?",
			Answer:     "Yes; each translated exhibit carries a translator's statutory declaration behind it in the bundle.",
			Authority:  authority,
			Confidence: 0.4,
		},
	}
	return faqs
}
