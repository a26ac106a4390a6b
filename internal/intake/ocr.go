package intake

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Engine is the injected OCR capability for documents that carry no
// directly extractable text.
type Engine interface {
	ExtractText(ctx context.Context, doc Document) (text string, confidence float64, err error)
}

// Detector tags a piece of text with a language and a confidence.
type Detector interface {
	Detect(text string) (language string, confidence float64)
}

const shortSegmentConfidence = 0.3

// Segmenter turns documents into ordered, language-tagged segments.
// Directly extractable text is always preferred over OCR.
type Segmenter struct {
	Engine          Engine
	Detector        Detector
	MinRunes        int
	ReviewThreshold float64
}

func (s *Segmenter) ExtractSegments(ctx context.Context, docs []Document) ([]Segment, error) {
	var segments []Segment
	for _, doc := range docs {
		text := doc.Text
		ocrConfidence := 1.0
		if text == "" && doc.OCRRequired {
			if s.Engine == nil {
				return nil, fmt.Errorf("document %s requires OCR but no engine is configured", doc.ID)
			}
			extracted, conf, err := s.Engine.ExtractText(ctx, doc)
			if err != nil {
				return nil, fmt.Errorf("ocr %s: %w", doc.ID, err)
			}
			text = extracted
			ocrConfidence = conf
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		segments = append(segments, s.segmentDocument(doc, text, ocrConfidence)...)
	}
	return segments, nil
}

func (s *Segmenter) segmentDocument(doc Document, text string, ocrConfidence float64) []Segment {
	perPage := len(text)/doc.PageCount + 1
	if doc.PageCount <= 1 {
		perPage = len(text) + 1
	}

	var segs []Segment
	page, seq, offset := 1, 0, 0
	for _, sentence := range splitSentences(text) {
		offset += len(sentence.raw)
		if offset > perPage*page && page < doc.PageCount {
			page++
			seq = 0
		}

		lang, conf := s.Detector.Detect(sentence.text)
		review := false
		if utf8.RuneCountInString(sentence.text) < s.MinRunes {
			conf = shortSegmentConfidence
			review = true
		}
		if conf < s.ReviewThreshold || ocrConfidence < s.ReviewThreshold {
			review = true
		}
		segs = append(segs, Segment{
			ID:                 fmt.Sprintf("SEG-%s-p%d-s%d", doc.ID, page, seq),
			DocumentID:         doc.ID,
			Page:               page,
			Sequence:           seq,
			Text:               sentence.text,
			Language:           lang,
			LanguageConfidence: conf,
			OCRConfidence:      ocrConfidence,
			ReviewRequired:     review,
		})
		seq++
	}
	return mergeAdjacent(segs, s.MinRunes)
}

type sentence struct {
	text string
	raw  string
}

func splitSentences(text string) []sentence {
	var out []sentence
	var cur strings.Builder
	var raw strings.Builder
	flush := func() {
		t := strings.TrimSpace(cur.String())
		if utf8.RuneCountInString(t) >= 3 {
			out = append(out, sentence{text: t, raw: raw.String()})
		}
		cur.Reset()
		raw.Reset()
	}
	for _, r := range text {
		raw.WriteRune(r)
		switch r {
		case '\n':
			flush()
		case '.', '?', '!':
			cur.WriteRune(r)
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// mergeAdjacent joins neighbouring same-language segments on the same page.
// Short segments keep their forced-low confidence and stay unmerged.
func mergeAdjacent(segs []Segment, minRunes int) []Segment {
	var out []Segment
	for _, seg := range segs {
		if len(out) > 0 {
			prev := &out[len(out)-1]
			if prev.Page == seg.Page &&
				prev.Language == seg.Language &&
				utf8.RuneCountInString(prev.Text) >= minRunes &&
				utf8.RuneCountInString(seg.Text) >= minRunes {
				prev.Text += " " + seg.Text
				if seg.LanguageConfidence < prev.LanguageConfidence {
					prev.LanguageConfidence = seg.LanguageConfidence
				}
				if seg.OCRConfidence < prev.OCRConfidence {
					prev.OCRConfidence = seg.OCRConfidence
				}
				prev.ReviewRequired = prev.ReviewRequired || seg.ReviewRequired
				continue
			}
		}
		out = append(out, seg)
	}
	for i := range out {
		if i > 0 && out[i].Page == out[i-1].Page {
			out[i].Sequence = out[i-1].Sequence + 1
		} else if i > 0 && out[i].Page != out[i-1].Page {
			out[i].Sequence = 0
		}
		out[i].ID = fmt.Sprintf("SEG-%s-p%d-s%d", out[i].DocumentID, out[i].Page, out[i].Sequence)
	}
	return out
}

// HeuristicDetector scores Malay and English stopwords. Deterministic and
// dependency-free; swap in a statistical detector via the Detector seam.
type HeuristicDetector struct{}

var malayStopwords = wordSet("yang dan di ke dari untuk dengan adalah ini itu tidak pada oleh kepada dalam telah akan atau bagi adalah tersebut boleh hendaklah mahkamah plaintif defendan tuntutan saman pernyataan afidavit perjanjian bayaran tarikh jumlah")

var englishStopwords = wordSet("the and of to in is for that with on as by this be are was at or an has have shall hereby court claim plaintiff defendant statement agreement payment date amount pursuant whereas")

func wordSet(words string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

func (HeuristicDetector) Detect(text string) (string, float64) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 {
		return "und", 0.2
	}
	var ms, en int
	for _, w := range words {
		if malayStopwords[w] {
			ms++
		}
		if englishStopwords[w] {
			en++
		}
	}
	total := ms + en
	if total == 0 {
		return "und", 0.2
	}
	lang, hits := "ms", ms
	if en > ms {
		lang, hits = "en", en
	}
	conf := 0.5 + 0.5*float64(hits)/float64(total)
	if conf > 0.95 {
		conf = 0.95
	}
	coverage := float64(total) / float64(len(words))
	if coverage < 0.15 {
		conf *= 0.7
	}
	return lang, conf
}
