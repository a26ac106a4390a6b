package intake

import (
	"context"
	"strings"
	"time"

	"github.com/legalopsmy/legalops/internal/config"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/workflow"
)

// State is the intake workflow state. Each stage fills its own fields
// exactly once; the embedded Run header is written only by the executor.
type State struct {
	workflow.Run
	Documents    []Document      `json:"documents"`
	Segments     []Segment       `json:"segments"`
	Translations []ParallelText  `json:"translations"`
	Snapshot     *MatterSnapshot `json:"matter_snapshot,omitempty"`
	Risk         *RiskScore      `json:"risk_score,omitempty"`
}

type Pipeline struct {
	segmenter  *Segmenter
	translator *Translator
	structurer *Structurer
	now        func() time.Time
}

func NewPipeline(cfg config.Config, exec *llm.StageExecutor, engine Engine, detector Detector) *Pipeline {
	if detector == nil {
		detector = HeuristicDetector{}
	}
	return &Pipeline{
		segmenter: &Segmenter{
			Engine:          engine,
			Detector:        detector,
			MinRunes:        cfg.MinSegmentRunes,
			ReviewThreshold: cfg.ReviewThreshold,
		},
		translator: &Translator{
			Exec:            exec,
			TargetLanguage:  "en",
			ReviewThreshold: cfg.ReviewThreshold,
		},
		structurer: &Structurer{Exec: exec},
		now:        time.Now,
	}
}

// Run executes the intake stages in their fixed order:
// collect_documents, ocr_language, translation, case_structuring,
// risk_scoring. The returned state is always non-nil; on failure it carries
// the partial results and the populated error header.
func (p *Pipeline) Run(ctx context.Context, matterID string, inputs []RawInput, progress workflow.ProgressFn) (*State, error) {
	st := &State{Run: workflow.NewRun(workflow.TypeIntake, matterID)}

	stages := []workflow.Stage{
		{Name: "collect_documents", Run: func(ctx context.Context) error {
			docs, err := IngestDocuments(inputs, p.now())
			if err != nil {
				return err
			}
			st.Documents = docs
			return nil
		}},
		{Name: "ocr_language", Run: func(ctx context.Context) error {
			segs, err := p.segmenter.ExtractSegments(ctx, st.Documents)
			if err != nil {
				return err
			}
			st.Segments = segs
			return nil
		}},
		{Name: "translation", Run: func(ctx context.Context) error {
			pairs, err := p.translator.TranslateSegments(ctx, st.Segments)
			if err != nil {
				return err
			}
			st.Translations = pairs
			return nil
		}},
		{Name: "case_structuring", Run: func(ctx context.Context) error {
			snap, _, err := p.structurer.Extract(ctx, matterID, mergedText(st.Translations), p.now())
			if err != nil {
				return err
			}
			st.Snapshot = &snap
			return nil
		}},
		{Name: "risk_scoring", Run: func(ctx context.Context) error {
			risk := ComputeRisk(*st.Snapshot, volumeStats(st.Documents, st.Segments), languageCounts(st.Segments), p.now())
			st.Risk = &risk
			return nil
		}},
	}

	err := workflow.Execute(ctx, &st.Run, stages, progress)
	return st, err
}

func mergedText(pairs []ParallelText) string {
	var sb strings.Builder
	for _, p := range pairs {
		sb.WriteString(p.Idiomatic)
		sb.WriteString("\n")
	}
	return sb.String()
}

func volumeStats(docs []Document, segs []Segment) VolumeStats {
	vol := VolumeStats{Documents: len(docs), Segments: len(segs)}
	for _, d := range docs {
		vol.Pages += d.PageCount
	}
	return vol
}

func languageCounts(segs []Segment) map[string]int {
	counts := map[string]int{}
	for _, s := range segs {
		counts[s.Language]++
	}
	return counts
}
