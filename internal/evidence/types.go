// Package evidence prepares a matter for filing and hearing: translation
// certification, the exhibit packet, and the hearing bundle skeleton.
package evidence

type ChecklistItem struct {
	Item      string `json:"item"`
	Satisfied bool   `json:"satisfied"`
	Note      string `json:"note,omitempty"`
}

// TranslationCertificate covers every translated segment of one document.
// The affidavit text follows the Statutory Declarations Act 1960 wording.
type TranslationCertificate struct {
	DocumentID     string          `json:"doc_id"`
	Filename       string          `json:"filename"`
	SourceLanguage string          `json:"source_language"`
	TargetLanguage string          `json:"target_language"`
	SegmentIDs     []string        `json:"segment_ids"`
	Checklist      []ChecklistItem `json:"checklist"`
	Affidavit      string          `json:"affidavit"`
	Warnings       []string        `json:"warnings,omitempty"`
}

type ExhibitKind string

const (
	ExhibitPleading ExhibitKind = "pleading"
	ExhibitDocument ExhibitKind = "document"
)

// Exhibit IDs are stable: A-series for pleadings, B-series for documents in
// submission order, with (T) marking certified translations and (A) the
// supporting affidavit.
type Exhibit struct {
	ID         string      `json:"exhibit_id"`
	Title      string      `json:"title"`
	Kind       ExhibitKind `json:"kind"`
	DocumentID string      `json:"doc_id,omitempty"`
	Pages      int         `json:"pages"`
	Translated bool        `json:"translated,omitempty"`
}

type PacketSection struct {
	Title        string   `json:"title"`
	ExhibitIDs   []string `json:"exhibit_ids"`
	PageEstimate int      `json:"page_estimate"`
}

type Packet struct {
	Exhibits     []Exhibit       `json:"exhibits"`
	Sections     []PacketSection `json:"sections"`
	Instructions []string        `json:"assembly_instructions"`
	PageEstimate int             `json:"page_estimate"`
}

type HearingTab struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

type JudgeFAQ struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Authority  string  `json:"authority"`
	Confidence float64 `json:"confidence"`
}

type HearingPrep struct {
	Tabs      []HearingTab `json:"tabs"`
	OpeningMS string       `json:"opening_ms"`
	NotesEN   string       `json:"notes_en"`
	FAQs      []JudgeFAQ   `json:"judge_faqs,omitempty"`
}
