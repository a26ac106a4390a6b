package intake

import (
	"strings"
	"testing"
	"time"
)

var ingestNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestIngestDeduplicatesByContentHash(t *testing.T) {
	body := []byte("Pernyataan tuntutan plaintif terhadap defendan.")
	inputs := []RawInput{
		{Connector: ConnectorUpload, Filename: "claim.txt", Data: body},
		{Connector: ConnectorGmail, Filename: "claim-copy.txt", Data: body},
		{Connector: ConnectorUpload, Filename: "other.txt", Data: []byte("different content entirely")},
	}
	docs, err := IngestDocuments(inputs, ingestNow)
	if err != nil {
		t.Fatalf("IngestDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2 (identical bytes deduplicated)", len(docs))
	}
	if docs[0].Hash == docs[1].Hash {
		t.Fatal("distinct content must produce distinct hashes")
	}
}

func TestIngestDocumentIdentityAndText(t *testing.T) {
	docs, err := IngestDocuments([]RawInput{
		{Connector: ConnectorUpload, Filename: "notes.txt", Data: []byte("The plaintiff claims RM 50,000.")},
	}, ingestNow)
	if err != nil {
		t.Fatalf("IngestDocuments: %v", err)
	}
	d := docs[0]
	if !strings.HasPrefix(d.ID, "DOC-20260314-") {
		t.Fatalf("doc id = %q", d.ID)
	}
	if d.OCRRequired {
		t.Fatal("plain text must not require OCR")
	}
	if d.Text == "" {
		t.Fatal("text documents must carry extractable text")
	}
	if d.MIMEType != "text/plain" {
		t.Fatalf("mime = %q", d.MIMEType)
	}
	if d.PageCount < 1 {
		t.Fatalf("page count = %d", d.PageCount)
	}
}

func TestIngestFlagsImagesForOCR(t *testing.T) {
	// Minimal PNG header is enough for content sniffing.
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 64)...)
	docs, err := IngestDocuments([]RawInput{
		{Connector: ConnectorDMS, Filename: "scan.png", Data: png},
	}, ingestNow)
	if err != nil {
		t.Fatalf("IngestDocuments: %v", err)
	}
	if !docs[0].OCRRequired {
		t.Fatal("image documents must require OCR")
	}
}

func TestIngestRejectsUnsupportedConnector(t *testing.T) {
	_, err := IngestDocuments([]RawInput{
		{Connector: Connector("fax"), Filename: "x.txt", Data: []byte("hi")},
	}, ingestNow)
	if err == nil {
		t.Fatal("expected error for unsupported connector")
	}
}

func TestIngestRejectsEmptyRun(t *testing.T) {
	if _, err := IngestDocuments(nil, ingestNow); err == nil {
		t.Fatal("expected error for empty input list")
	}
}

func TestLanguageHintFromFilename(t *testing.T) {
	for _, tc := range []struct {
		filename, hint, want string
	}{
		{"saman_bm.txt", "", "ms"},
		{"contract-en.txt", "", "en"},
		{"whatever.txt", "malay", "ms"},
		{"whatever.txt", "", ""},
	} {
		got := languageHint(RawInput{Filename: tc.filename, LanguageHint: tc.hint})
		if got != tc.want {
			t.Fatalf("languageHint(%q, %q) = %q, want %q", tc.filename, tc.hint, got, tc.want)
		}
	}
}

func TestParseWhatsAppExport(t *testing.T) {
	raw := "12/01/2024, 10:15 - Ahmad: Saya sudah hantar dokumen itu\n" +
		"12/01/2024, 10:16 - Messages and calls are end-to-end encrypted.\n" +
		"12/01/2024, 10:17 - Siti: Payment of RM 5,000 was made\n" +
		"on the agreed date\n"
	got := parseWhatsAppExport(raw)
	if !strings.Contains(got, "Ahmad: Saya sudah hantar dokumen itu") {
		t.Fatalf("missing first message: %q", got)
	}
	if !strings.Contains(got, "Payment of RM 5,000 was made on the agreed date") {
		t.Fatalf("continuation line not folded in: %q", got)
	}
}
