package intake

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const charsPerPageEstimate = 3000

var supportedConnectors = map[Connector]bool{
	ConnectorUpload:         true,
	ConnectorGmail:          true,
	ConnectorOutlook:        true,
	ConnectorWhatsAppExport: true,
	ConnectorDMS:            true,
}

var ocrMIMETypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/tiff":      true,
}

// IngestDocuments validates and deduplicates raw inputs into Document
// records. Identity is the sha256 of the content: the same bytes submitted
// twice within one run yield exactly one Document.
func IngestDocuments(inputs []RawInput, now time.Time) ([]Document, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input documents provided")
	}

	seen := map[string]bool{}
	var docs []Document
	for _, in := range inputs {
		if !supportedConnectors[in.Connector] {
			return nil, fmt.Errorf("unsupported connector %q for %s", in.Connector, in.Filename)
		}
		if len(in.Data) == 0 {
			return nil, fmt.Errorf("empty document %s", in.Filename)
		}

		sum := sha256.Sum256(in.Data)
		hash := hex.EncodeToString(sum[:])
		if seen[hash] {
			continue
		}
		seen[hash] = true

		doc := Document{
			ID:           fmt.Sprintf("DOC-%s-%s", now.Format("20060102"), hash[:8]),
			Hash:         hash,
			Connector:    in.Connector,
			Filename:     in.Filename,
			MIMEType:     detectMIME(in.Filename, in.Data),
			SizeBytes:    len(in.Data),
			LanguageHint: languageHint(in),
			Data:         in.Data,
		}
		doc.OCRRequired = ocrMIMETypes[doc.MIMEType]

		switch {
		case doc.MIMEType == "application/pdf":
			doc.PageCount = pdfPageCount(in.Data)
		case in.Connector == ConnectorWhatsAppExport:
			doc.Text = parseWhatsAppExport(string(in.Data))
			doc.OCRRequired = false
			doc.PageCount = estimatePages(len(doc.Text))
		case strings.HasPrefix(doc.MIMEType, "text/"):
			doc.Text = string(in.Data)
			doc.PageCount = estimatePages(len(doc.Text))
		default:
			doc.PageCount = 1
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func detectMIME(filename string, data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mime := http.DetectContentType(head)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	if mime == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".pdf":
			return "application/pdf"
		case ".tif", ".tiff":
			return "image/tiff"
		case ".txt", ".md":
			return "text/plain"
		}
	}
	return mime
}

func pdfPageCount(data []byte) int {
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil || n < 1 {
		return estimatePages(len(data))
	}
	return n
}

func estimatePages(size int) int {
	return 1 + size/charsPerPageEstimate
}

func languageHint(in RawInput) string {
	switch strings.ToLower(strings.TrimSpace(in.LanguageHint)) {
	case "ms", "bm", "malay", "bahasa", "bahasa malaysia":
		return "ms"
	case "en", "english":
		return "en"
	}
	name := strings.ToLower(in.Filename)
	for _, tok := range []string{"_bm", "-bm", "_ms", "-ms", "malay", "bahasa"} {
		if strings.Contains(name, tok) {
			return "ms"
		}
	}
	for _, tok := range []string{"_en", "-en", "english"} {
		if strings.Contains(name, tok) {
			return "en"
		}
	}
	return ""
}

var (
	whatsAppLine   = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4},? \d{1,2}:\d{2}(?:\s?[APap][Mm])? - ([^:]+): (.*)$`)
	whatsAppSystem = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4},? \d{1,2}:\d{2}(?:\s?[APap][Mm])? - `)
)

// parseWhatsAppExport keeps only the message lines of a chat export,
// dropping timestamps and system notices. Continuation lines are appended
// to the preceding message.
func parseWhatsAppExport(raw string) string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if m := whatsAppLine.FindStringSubmatch(line); m != nil {
			out = append(out, fmt.Sprintf("%s: %s", strings.TrimSpace(m[1]), m[2]))
			continue
		}
		// Timestamped lines without a sender are system notices.
		if whatsAppSystem.MatchString(line) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || len(out) == 0 {
			continue
		}
		out[len(out)-1] += " " + trimmed
	}
	return strings.Join(out, "\n")
}
