package drafting

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
)

// Drafter generates the primary pleading section by section and the
// companion draft paragraph by paragraph. Paragraph numbers and the
// paragraph map are assigned while assembling the text, never parsed back
// out of it.
type Drafter struct {
	Exec *llm.StageExecutor
}

type sectionResponse struct {
	Paragraphs []string `json:"paragraphs"`
}

type paragraphResponse struct {
	Translation string `json:"translation"`
}

func (d *Drafter) PrimaryDraft(ctx context.Context, tpl Template, snap intake.MatterSnapshot, issues []Issue, prayers []Prayer) (PleadingDraft, error) {
	draft := PleadingDraft{
		Language:     tpl.Language,
		TemplateID:   tpl.ID,
		Header:       buildHeader(tpl, snap),
		ParagraphMap: map[int]string{},
	}
	if d.Exec == nil {
		return draft, fmt.Errorf("primary draft requires a configured LLM caller")
	}
	if len(issues) == 0 || len(prayers) == 0 {
		return draft, fmt.Errorf("at least one selected issue and prayer are required")
	}

	var body strings.Builder
	n := 0
	for _, section := range tpl.SectionsOrder {
		var resp sectionResponse
		prompt := buildSectionPrompt(tpl, section, snap, issues, prayers)
		if _, err := d.Exec.RunJSON(ctx, "primary_draft", prompt, &resp, func() error {
			if len(resp.Paragraphs) == 0 {
				return fmt.Errorf("section %q needs at least one paragraph", section)
			}
			for i, p := range resp.Paragraphs {
				if strings.TrimSpace(p) == "" {
					return fmt.Errorf("paragraphs[%d] is empty", i)
				}
			}
			return nil
		}); err != nil {
			return draft, fmt.Errorf("section %s: %w", section, err)
		}

		for _, para := range resp.Paragraphs {
			n++
			clean := upperPartyLabels(stripLeadingNumber(strings.TrimSpace(para)))
			draft.ParagraphMap[n] = clean
			fmt.Fprintf(&body, "%d. %s\n\n", n, clean)
		}
	}
	draft.Body = body.String()
	return draft, nil
}

// CompanionDraft translates paragraph by paragraph so the map survives the
// language switch, and flags factual drift per paragraph pair.
func (d *Drafter) CompanionDraft(ctx context.Context, primary PleadingDraft) (PleadingDraft, []DivergenceFlag, error) {
	targetLang := "en"
	if primary.Language == "en" {
		targetLang = "ms"
	}
	companion := PleadingDraft{
		Language:     targetLang,
		TemplateID:   primary.TemplateID,
		ParagraphMap: map[int]string{},
	}
	if d.Exec == nil {
		return companion, nil, fmt.Errorf("companion draft requires a configured LLM caller")
	}

	var body strings.Builder
	var flags []DivergenceFlag
	for n := 1; n <= len(primary.ParagraphMap); n++ {
		source, ok := primary.ParagraphMap[n]
		if !ok {
			return companion, flags, fmt.Errorf("paragraph map has no entry %d", n)
		}

		var resp paragraphResponse
		prompt := buildParagraphPrompt(source, targetLang)
		if _, err := d.Exec.RunJSON(ctx, "companion_draft", prompt, &resp, func() error {
			if strings.TrimSpace(resp.Translation) == "" {
				return fmt.Errorf("translation is required")
			}
			return nil
		}); err != nil {
			return companion, flags, fmt.Errorf("paragraph %d: %w", n, err)
		}

		translated := upperPartyLabels(stripLeadingNumber(strings.TrimSpace(resp.Translation)))
		companion.ParagraphMap[n] = translated
		fmt.Fprintf(&body, "%d. %s\n\n", n, translated)
		flags = append(flags, divergenceFlags(n, source, translated)...)
	}
	companion.Body = body.String()
	return companion, flags, nil
}

// ReconstructBody rebuilds the body from the paragraph map alone. It must
// reproduce Body exactly; the consistency checks rely on that.
func (d PleadingDraft) ReconstructBody() string {
	var sb strings.Builder
	for n := 1; n <= len(d.ParagraphMap); n++ {
		fmt.Fprintf(&sb, "%d. %s\n\n", n, d.ParagraphMap[n])
	}
	return sb.String()
}

func buildHeader(tpl Template, snap intake.MatterSnapshot) string {
	plaintiff, defendant := "PLAINTIF DINAMAKAN", "DEFENDAN DINAMAKAN"
	for _, p := range snap.Parties {
		switch strings.ToLower(p.Role) {
		case "plaintiff", "plaintif":
			plaintiff = strings.ToUpper(p.Name)
		case "defendant", "defendan":
			defendant = strings.ToUpper(p.Name)
		}
	}

	court := strings.ToUpper(strings.TrimSpace(snap.Court))
	if tpl.Language == "ms" {
		if court == "" {
			court = "MAHKAMAH TINGGI MALAYA"
		}
		return fmt.Sprintf("DALAM %s\n(BAHAGIAN SIVIL)\n\nANTARA\n\n%s ... PLAINTIF\n\nDAN\n\n%s ... DEFENDAN",
			court, plaintiff, defendant)
	}
	if court == "" {
		court = "THE HIGH COURT OF MALAYA"
	}
	return fmt.Sprintf("IN %s\n(CIVIL DIVISION)\n\nBETWEEN\n\n%s ... PLAINTIFF\n\nAND\n\n%s ... DEFENDANT",
		court, plaintiff, defendant)
}

func buildSectionPrompt(tpl Template, section string, snap intake.MatterSnapshot, issues []Issue, prayers []Prayer) string {
	langName := "Bahasa Malaysia"
	if tpl.Language == "en" {
		langName = "English"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Draft the %q section of a Malaysian pleading in %s using template %s.\n", section, langName, tpl.ID)
	fmt.Fprintf(&sb, "Mandatory clauses for this template: %s.\n", strings.Join(tpl.MandatoryClauses, "; "))
	sb.WriteString("Do not number the paragraphs; numbering is applied by the caller.\n\n")

	fmt.Fprintf(&sb, "Case type: %s\nCourt: %s\nParties:", snap.CaseType, snap.Court)
	for _, p := range snap.Parties {
		fmt.Fprintf(&sb, " %s=%s;", p.Role, p.Name)
	}
	sb.WriteString("\nSelected issues:\n")
	for _, issue := range issues {
		fmt.Fprintf(&sb, "- %s (%s; basis: %s)\n", issue.Title, issue.Theory, strings.Join(issue.LegalBasis, ", "))
	}
	sb.WriteString("Selected prayers:\n")
	for _, prayer := range prayers {
		fmt.Fprintf(&sb, "- %s / %s\n", prayer.TextMS, prayer.TextEN)
	}
	sb.WriteString("\nSchema: {\"paragraphs\": [\"first paragraph text\", \"second paragraph text\"]}")
	return sb.String()
}

func buildParagraphPrompt(source, targetLang string) string {
	langName := "English"
	if targetLang == "ms" {
		langName = "Bahasa Malaysia"
	}
	return fmt.Sprintf("Translate this single pleading paragraph into %s. "+
		"Preserve every number, date, sum, citation, and party-role label exactly.\n\n"+
		"Paragraph:\n%s\n\n"+
		`Schema: {"translation": "..."}`, langName, source)
}

var leadingNumber = regexp.MustCompile(`^\d+[.)]\s+`)

func stripLeadingNumber(s string) string {
	return leadingNumber.ReplaceAllString(s, "")
}

var partyLabels = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bplaintiffs\b`),
	regexp.MustCompile(`(?i)\bplaintiff\b`),
	regexp.MustCompile(`(?i)\bplaintif\b`),
	regexp.MustCompile(`(?i)\bdefendants\b`),
	regexp.MustCompile(`(?i)\bdefendant\b`),
	regexp.MustCompile(`(?i)\bdefendan\b`),
}

func upperPartyLabels(s string) string {
	for _, re := range partyLabels {
		s = re.ReplaceAllStringFunc(s, strings.ToUpper)
	}
	return s
}

func divergenceFlags(n int, source, translated string) []DivergenceFlag {
	var flags []DivergenceFlag
	if !sameTokenSet(numbersIn(source), numbersIn(translated)) {
		flags = append(flags, DivergenceFlag{
			Paragraph: n,
			Kind:      "numbers",
			Detail:    fmt.Sprintf("numbers differ: %v vs %v", numbersIn(source), numbersIn(translated)),
			Severity:  SeverityHigh,
		})
	}
	if !sameTokenSet(datesIn(source), datesIn(translated)) {
		flags = append(flags, DivergenceFlag{
			Paragraph: n,
			Kind:      "dates",
			Detail:    fmt.Sprintf("dates differ: %v vs %v", datesIn(source), datesIn(translated)),
			Severity:  SeverityHigh,
		})
	}
	if !sameTokenSet(sumsIn(source), sumsIn(translated)) {
		flags = append(flags, DivergenceFlag{
			Paragraph: n,
			Kind:      "sums",
			Detail:    fmt.Sprintf("monetary sums differ: %v vs %v", sumsIn(source), sumsIn(translated)),
			Severity:  SeverityHigh,
		})
	}

	srcLen, dstLen := utf8.RuneCountInString(source), utf8.RuneCountInString(translated)
	if srcLen > 0 && dstLen > 0 {
		ratio := float64(dstLen) / float64(srcLen)
		if ratio < 0.33 || ratio > 3.0 {
			flags = append(flags, DivergenceFlag{
				Paragraph: n,
				Kind:      "length",
				Detail:    fmt.Sprintf("implausible length ratio %.2f", ratio),
				Severity:  SeverityMedium,
			})
		}
	}
	return flags
}
