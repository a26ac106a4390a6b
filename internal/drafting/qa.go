package drafting

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	datePattern     = regexp.MustCompile(`\b\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b`)
	sumPattern      = regexp.MustCompile(`RM\s*[\d,]+(?:\.\d{1,2})?`)
	numberPattern   = regexp.MustCompile(`\d+(?:[.,]\d+)*`)
	citationPattern = regexp.MustCompile(`\[\d{4}\]\s+\d+\s+[A-Z]+\s+\d+`)
)

// definedTermPairs maps a Malay defined term to its English counterpart.
// Occurrence counts must agree across the two drafts.
var definedTermPairs = [][2]string{
	{"plaintif", "plaintiff"},
	{"defendan", "defendant"},
	{"mahkamah", "court"},
	{"perjanjian", "agreement"},
}

// RunConsistencyQA compares the two drafts with the fixed ordered check
// list. High severity marks factual discrepancies; BlockForHuman is the
// single human-in-the-loop gate for the drafting pipeline.
func RunConsistencyQA(primary, companion PleadingDraft, flags []DivergenceFlag) ConsistencyReport {
	report := ConsistencyReport{}

	report.Checks = append(report.Checks, paragraphCountCheck(primary, companion))
	report.Checks = append(report.Checks, definedTermsCheck(primary, companion))
	report.Checks = append(report.Checks, tokenCheck("date_consistency", SeverityHigh, datesIn(primary.Body), datesIn(companion.Body),
		"Align the dates in the flagged paragraphs before release"))
	report.Checks = append(report.Checks, tokenCheck("monetary_sums", SeverityHigh, sumsIn(primary.Body), sumsIn(companion.Body),
		"Reconcile the RM sums between the two drafts"))
	report.Checks = append(report.Checks, tokenCheck("citation_alignment", SeverityHigh, citationsIn(primary.Body), citationsIn(companion.Body),
		"Carry every authority citation into the companion draft verbatim"))

	for i := range report.Checks {
		if appliesDivergence(report.Checks[i].Name, flags) && report.Checks[i].Passed {
			report.Checks[i].Passed = false
			report.Checks[i].Detail += "; per-paragraph divergence flags raised"
		}
	}

	for _, c := range report.Checks {
		if !c.Passed && c.Severity == SeverityHigh {
			report.BlockForHuman = true
			break
		}
	}
	return report
}

func paragraphCountCheck(primary, companion PleadingDraft) ConsistencyCheck {
	check := ConsistencyCheck{
		Name:     "paragraph_count",
		Severity: SeverityHigh,
		Passed:   len(primary.ParagraphMap) == len(companion.ParagraphMap),
		Detail: fmt.Sprintf("primary has %d paragraphs, companion has %d",
			len(primary.ParagraphMap), len(companion.ParagraphMap)),
	}
	if !check.Passed {
		check.FixSuggestion = "Re-run the companion draft; every paragraph must translate 1:1"
	}
	return check
}

func definedTermsCheck(primary, companion PleadingDraft) ConsistencyCheck {
	msBody, enBody := primary.Body, companion.Body
	if primary.Language == "en" {
		msBody, enBody = companion.Body, primary.Body
	}

	var mismatches []string
	for _, pair := range definedTermPairs {
		msCount := countWord(msBody, pair[0])
		enCount := countWord(enBody, pair[1])
		if msCount != enCount {
			mismatches = append(mismatches, fmt.Sprintf("%s(%d)/%s(%d)", pair[0], msCount, pair[1], enCount))
		}
	}
	check := ConsistencyCheck{
		Name:     "defined_terms",
		Severity: SeverityMedium,
		Passed:   len(mismatches) == 0,
		Detail:   "defined-term usage counts agree",
	}
	if !check.Passed {
		check.Detail = "defined-term count mismatch: " + strings.Join(mismatches, ", ")
		check.FixSuggestion = "Use the defined terms consistently in both drafts"
	}
	return check
}

func tokenCheck(name string, severity Severity, a, b []string, fix string) ConsistencyCheck {
	check := ConsistencyCheck{
		Name:     name,
		Severity: severity,
		Passed:   sameTokenSet(a, b),
		Detail:   fmt.Sprintf("primary %v, companion %v", a, b),
	}
	if !check.Passed {
		check.FixSuggestion = fix
	}
	return check
}

func appliesDivergence(checkName string, flags []DivergenceFlag) bool {
	for _, f := range flags {
		switch {
		case checkName == "date_consistency" && f.Kind == "dates":
			return true
		case checkName == "monetary_sums" && f.Kind == "sums":
			return true
		}
	}
	return false
}

func countWord(text, word string) int {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return len(re.FindAllString(text, -1))
}

func numbersIn(text string) []string {
	var out []string
	for _, n := range numberPattern.FindAllString(text, -1) {
		out = append(out, strings.ReplaceAll(n, ",", ""))
	}
	sort.Strings(out)
	return out
}

func datesIn(text string) []string {
	out := datePattern.FindAllString(text, -1)
	sort.Strings(out)
	return out
}

func sumsIn(text string) []string {
	var out []string
	for _, s := range sumPattern.FindAllString(text, -1) {
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", "")
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func citationsIn(text string) []string {
	out := citationPattern.FindAllString(text, -1)
	for i := range out {
		out[i] = strings.Join(strings.Fields(out[i]), " ")
	}
	sort.Strings(out)
	return out
}

func sameTokenSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
