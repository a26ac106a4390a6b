// Package drafting produces a bilingual pleading: issue and prayer planning,
// template selection with compliance warnings, a primary-language draft with
// a faithful paragraph map, a paragraph-aligned companion draft, and a
// consistency QA report gating human release.
package drafting

type Theory string

const (
	TheoryPrimary     Theory = "primary"
	TheoryAlternative Theory = "alternative"
)

type Issue struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	LegalBasis []string `json:"legal_basis"`
	Theory     Theory   `json:"theory"`
	Confidence float64  `json:"confidence"`
}

type Prayer struct {
	ID          string  `json:"id"`
	TextMS      string  `json:"text_ms"`
	TextEN      string  `json:"text_en"`
	TemplateRef string  `json:"template_ref"`
	Priority    int     `json:"priority"`
	Confidence  float64 `json:"confidence"`
}

// PleadingDraft keeps the numbered body separate from the unnumbered court
// header so the paragraph map reconstructs the body byte for byte.
type PleadingDraft struct {
	Language     string         `json:"language"`
	TemplateID   string         `json:"template_id"`
	Header       string         `json:"header"`
	Body         string         `json:"body"`
	ParagraphMap map[int]string `json:"paragraph_map"`
}

func (d PleadingDraft) Text() string {
	if d.Header == "" {
		return d.Body
	}
	return d.Header + "\n\n" + d.Body
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

type DivergenceFlag struct {
	Paragraph int      `json:"paragraph"`
	Kind      string   `json:"kind"`
	Detail    string   `json:"detail"`
	Severity  Severity `json:"severity"`
}

type ConsistencyCheck struct {
	Name          string   `json:"name"`
	Severity      Severity `json:"severity"`
	Passed        bool     `json:"passed"`
	Detail        string   `json:"detail"`
	FixSuggestion string   `json:"fix_suggestion,omitempty"`
}

type ConsistencyReport struct {
	Checks        []ConsistencyCheck `json:"checks"`
	BlockForHuman bool               `json:"block_for_human"`
}
