package research

// Provenance records where a result came from. Mock results are served when
// the live source is disabled or unavailable and must always be labelled.
type Provenance string

const (
	ProvenanceLive Provenance = "live"
	ProvenanceMock Provenance = "mock"
)

// CaseResult is one Malaysian authority. Headnotes are carried in both
// languages so downstream drafts can cite in either.
type CaseResult struct {
	Citation   string     `json:"citation"`
	Title      string     `json:"title"`
	Court      string     `json:"court"`
	Year       int        `json:"year"`
	HeadnoteMS string     `json:"headnote_ms,omitempty"`
	HeadnoteEN string     `json:"headnote_en,omitempty"`
	Binding    bool       `json:"binding"`
	Relevance  float64    `json:"relevance"`
	URL        string     `json:"url,omitempty"`
	Provenance Provenance `json:"provenance"`
}

// Query narrows the search. An empty Text is an input error, not a reason
// to fall back to the mock corpus.
type Query struct {
	MatterID   string   `json:"matter_id"`
	Text       string   `json:"text"`
	Courts     []string `json:"courts,omitempty"`
	YearFrom   int      `json:"year_from,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
}
