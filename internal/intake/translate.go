package intake

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/legalopsmy/legalops/internal/llm"
)

// Terms that must survive translation verbatim.
var preservedTerms = []string{
	"PLAINTIF", "DEFENDAN", "MAHKAMAH", "PLAINTIFF", "DEFENDANT",
	"AFIDAVIT", "AFFIDAVIT", "WRIT", "SAMAN",
}

// Translator produces a literal and an idiomatic rendering per segment.
// Output is 1:1 and order-preserving with the input segment list.
type Translator struct {
	Exec            *llm.StageExecutor
	TargetLanguage  string
	ReviewThreshold float64
}

type translationResponse struct {
	Literal   string `json:"literal"`
	Idiomatic string `json:"idiomatic"`
}

func (t *Translator) TranslateSegments(ctx context.Context, segments []Segment) ([]ParallelText, error) {
	target := t.TargetLanguage
	if target == "" {
		target = "en"
	}

	out := make([]ParallelText, 0, len(segments))
	for _, seg := range segments {
		if seg.Language == target {
			out = append(out, ParallelText{
				SegmentID:           seg.ID,
				SourceLanguage:      seg.Language,
				TargetLanguage:      target,
				SourceText:          seg.Text,
				Literal:             seg.Text,
				Idiomatic:           seg.Text,
				AlignmentScore:      1.0,
				HumanReviewRequired: seg.LanguageConfidence < t.ReviewThreshold,
			})
			continue
		}

		if t.Exec == nil {
			return nil, fmt.Errorf("translation requires a configured LLM caller")
		}
		var resp translationResponse
		prompt := buildTranslationPrompt(seg, target)
		if _, err := t.Exec.RunJSON(ctx, "translation", prompt, &resp, func() error {
			if strings.TrimSpace(resp.Literal) == "" || strings.TrimSpace(resp.Idiomatic) == "" {
				return fmt.Errorf("literal and idiomatic translations are both required")
			}
			return nil
		}); err != nil {
			return nil, fmt.Errorf("segment %s: %w", seg.ID, err)
		}

		alignment := alignmentScore(seg.Text, resp.Idiomatic)
		out = append(out, ParallelText{
			SegmentID:           seg.ID,
			SourceLanguage:      seg.Language,
			TargetLanguage:      target,
			SourceText:          seg.Text,
			Literal:             resp.Literal,
			Idiomatic:           resp.Idiomatic,
			AlignmentScore:      alignment,
			HumanReviewRequired: alignment < t.ReviewThreshold || seg.LanguageConfidence < t.ReviewThreshold,
		})
	}
	return out, nil
}

func buildTranslationPrompt(seg Segment, target string) string {
	targetName := "English"
	if target == "ms" {
		targetName = "Bahasa Malaysia"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate the following legal text segment into %s.\n", targetName)
	fmt.Fprintf(&sb, "Preserve these terms verbatim, do not translate them: %s.\n", strings.Join(preservedTerms, ", "))
	sb.WriteString("Preserve all numbers, dates, sums, and citations exactly.\n\n")
	fmt.Fprintf(&sb, "Segment:\n%s\n\n", seg.Text)
	sb.WriteString(`Schema: {"literal": "word-for-word translation", "idiomatic": "natural legal phrasing"}`)
	return sb.String()
}

// alignmentScore is a deterministic plausibility heuristic: length-ratio
// bands, capped when the numeric tokens on either side disagree.
func alignmentScore(source, translated string) float64 {
	srcNums := extractNumbers(source)
	dstNums := extractNumbers(translated)
	if !sameNumberSet(srcNums, dstNums) {
		return 0.6
	}

	srcLen := utf8.RuneCountInString(source)
	dstLen := utf8.RuneCountInString(translated)
	if srcLen == 0 || dstLen == 0 {
		return 0.0
	}
	ratio := float64(dstLen) / float64(srcLen)

	score := 0.7
	switch {
	case ratio >= 0.5 && ratio <= 2.0:
		score = 0.9
	case ratio >= 0.33 && ratio <= 3.0:
		score = 0.8
	}
	if len(srcNums) > 0 {
		score += 0.05
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

var numberToken = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

func extractNumbers(text string) []string {
	raw := numberToken.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, n := range raw {
		out = append(out, strings.ReplaceAll(n, ",", ""))
	}
	sort.Strings(out)
	return out
}

func sameNumberSet(a, b []string) bool {
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
