package evidence

import (
	"context"
	"fmt"
	"time"

	"github.com/legalopsmy/legalops/internal/config"
	"github.com/legalopsmy/legalops/internal/drafting"
	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/research"
	"github.com/legalopsmy/legalops/internal/workflow"
)

// Request carries the outputs of the earlier workflows that the evidence
// stages assemble.
type Request struct {
	MatterID     string                `json:"matter_id"`
	Snapshot     intake.MatterSnapshot `json:"matter_snapshot"`
	Documents    []intake.Document     `json:"documents"`
	Segments     []intake.Segment      `json:"segments"`
	Translations []intake.ParallelText   `json:"translations"`
	Primary      *drafting.PleadingDraft `json:"primary_draft,omitempty"`
	Companion    *drafting.PleadingDraft `json:"companion_draft,omitempty"`
	Authorities  []research.CaseResult   `json:"authorities"`
}

type State struct {
	workflow.Run
	Certificates []TranslationCertificate `json:"translation_certificates,omitempty"`
	Packet       *Packet                  `json:"evidence_packet,omitempty"`
	Hearing      *HearingPrep             `json:"hearing_prep,omitempty"`
}

type Pipeline struct {
	exec      *llm.StageExecutor
	threshold float64
	now       func() time.Time
}

func NewPipeline(cfg config.Config, exec *llm.StageExecutor) *Pipeline {
	return &Pipeline{exec: exec, threshold: cfg.ReviewThreshold, now: time.Now}
}

// Run executes translation_certification, evidence_packet, hearing_prep.
func (p *Pipeline) Run(ctx context.Context, req Request, progress workflow.ProgressFn) (*State, error) {
	st := &State{Run: workflow.NewRun(workflow.TypeEvidence, req.MatterID)}

	stages := []workflow.Stage{
		{Name: "translation_certification", Run: func(ctx context.Context) error {
			if len(req.Documents) == 0 {
				return fmt.Errorf("at least one document is required")
			}
			st.Certificates = CertifyTranslations(req.Documents, req.Segments, req.Translations, p.threshold, p.now())
			return nil
		}},
		{Name: "evidence_packet", Run: func(ctx context.Context) error {
			packet := BuildPacket(req.Primary, req.Companion, req.Documents, st.Certificates)
			st.Packet = &packet
			return nil
		}},
		{Name: "hearing_prep", Run: func(ctx context.Context) error {
			prep, degraded, err := BuildHearingPrep(ctx, p.exec, req.Snapshot, *st.Packet, req.Authorities, req.Companion)
			if err != nil {
				return err
			}
			st.Hearing = &prep
			if degraded {
				return workflow.Degradedf("no LLM caller configured, judge FAQs are the deterministic set")
			}
			return nil
		}},
	}

	err := workflow.Execute(ctx, &st.Run, stages, progress)
	return st, err
}
