// Package intake converts raw matter documents into segments, parallel
// translations, a structured case snapshot, and a deterministic risk score.
package intake

import "time"

type Connector string

const (
	ConnectorUpload         Connector = "upload"
	ConnectorGmail          Connector = "gmail"
	ConnectorOutlook        Connector = "outlook"
	ConnectorWhatsAppExport Connector = "whatsapp_export"
	ConnectorDMS            Connector = "dms"
)

// RawInput is one submitted file before ingestion.
type RawInput struct {
	Connector    Connector `json:"connector"`
	Filename     string    `json:"filename"`
	Data         []byte    `json:"-"`
	LanguageHint string    `json:"language_hint,omitempty"`
}

// Document is identified by its content hash. It is created at ingestion and
// never mutated after text extraction completes; segments reference it by ID.
type Document struct {
	ID           string    `json:"doc_id"`
	Hash         string    `json:"hash"`
	Connector    Connector `json:"connector"`
	Filename     string    `json:"filename"`
	MIMEType     string    `json:"mime_type"`
	SizeBytes    int       `json:"size_bytes"`
	PageCount    int       `json:"page_count"`
	OCRRequired  bool      `json:"ocr_required"`
	LanguageHint string    `json:"language_hint,omitempty"`
	Text         string    `json:"-"`
	Data         []byte    `json:"-"`
}

// Segment is one unit of extracted text, ordered by (page, sequence) within
// its document.
type Segment struct {
	ID                 string  `json:"segment_id"`
	DocumentID         string  `json:"doc_id"`
	Page               int     `json:"page"`
	Sequence           int     `json:"sequence"`
	Text               string  `json:"text"`
	Language           string  `json:"language"`
	LanguageConfidence float64 `json:"language_confidence"`
	OCRConfidence      float64 `json:"ocr_confidence"`
	ReviewRequired     bool    `json:"review_required,omitempty"`
}

// ParallelText pairs a source segment with its literal and idiomatic
// translations, 1:1 and order-preserving with the segment list.
type ParallelText struct {
	SegmentID           string  `json:"segment_id"`
	SourceLanguage      string  `json:"source_language"`
	TargetLanguage      string  `json:"target_language"`
	SourceText          string  `json:"source_text"`
	Literal             string  `json:"literal"`
	Idiomatic           string  `json:"idiomatic"`
	AlignmentScore      float64 `json:"alignment_score"`
	HumanReviewRequired bool    `json:"human_review_required"`
}

type Party struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// KeyDate keeps the reported date verbatim in Raw when it cannot be parsed;
// such entries carry a zero Date and lower the dates field confidence.
type KeyDate struct {
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
	Raw   string    `json:"raw,omitempty"`
}

// MatterSnapshot holds the structured facts extracted for a matter. A later
// intake run on the same matter replaces it wholesale.
type MatterSnapshot struct {
	MatterID          string             `json:"matter_id"`
	Parties           []Party            `json:"parties"`
	Court             string             `json:"court"`
	Jurisdiction      string             `json:"jurisdiction"`
	CaseType          string             `json:"case_type"`
	Issues            []string           `json:"issues"`
	Remedies          []string           `json:"remedies"`
	KeyDates          []KeyDate          `json:"key_dates"`
	EstimatedAmountRM float64            `json:"estimated_amount_rm"`
	FieldConfidences  map[string]float64 `json:"field_confidences"`
	Confidence        float64            `json:"confidence"`
	ExtractedAt       time.Time          `json:"extracted_at"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type SubScore struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

type RiskScore struct {
	Jurisdictional SubScore  `json:"jurisdictional_complexity"`
	Language       SubScore  `json:"language_complexity"`
	Volume         SubScore  `json:"volume_risk"`
	TimePressure   SubScore  `json:"time_pressure"`
	Composite      float64   `json:"composite"`
	Level          RiskLevel `json:"level"`
	NextSteps      []string  `json:"suggested_next_steps,omitempty"`
}
