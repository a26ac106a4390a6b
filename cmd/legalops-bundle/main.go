package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/legalopsmy/legalops/internal/bundle"
	"github.com/legalopsmy/legalops/internal/config"
	"github.com/legalopsmy/legalops/internal/drafting"
	"github.com/legalopsmy/legalops/internal/evidence"
	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/research"
	"github.com/legalopsmy/legalops/internal/store"
	"github.com/legalopsmy/legalops/internal/telemetry"
	"github.com/legalopsmy/legalops/internal/workflow"
)

func main() {
	matterID := flag.String("matter", "", "Matter ID")
	out := flag.String("out", "hearing-bundle.pdf", "Output PDF path")
	configPath := flag.String("config", "", "Path to YAML config")
	flag.Parse()

	if strings.TrimSpace(*matterID) == "" {
		log.Fatal("missing required flag -matter")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, "legalops-bundle", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal(err)
	}
	defer shutdown(context.Background())

	var exec *llm.StageExecutor
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		caller, err := llm.NewAnthropicCallerFromEnv(cfg.AnthropicModel)
		if err != nil {
			log.Fatal(err)
		}
		exec = llm.NewStageExecutor(caller)
	} else {
		log.Printf("ANTHROPIC_API_KEY not set, judge FAQs will be the deterministic set")
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	req, err := assembleRequest(db, *matterID)
	if err != nil {
		log.Fatal(err)
	}

	pipeline := evidence.NewPipeline(cfg, exec)
	log.Printf("starting evidence run (matter=%s, documents=%d)", *matterID, len(req.Documents))
	st, runErr := pipeline.Run(ctx, req, func(stage, message string) {
		log.Printf("evidence %s: %s", stage, message)
	})

	if err := db.SaveRun(st.Run, st); err != nil {
		log.Printf("persist run: %v", err)
	}
	if runErr != nil {
		log.Fatalf("evidence run %s failed: %v", st.WorkflowID, runErr)
	}

	markdown := bundle.BuildMarkdown(req.Snapshot, st, req.Primary, req.Companion)
	renderer := bundle.NewPDFRenderer(cfg.ChromePath)
	pdf, err := renderer.Render(ctx, markdown, "Hearing Bundle "+*matterID)
	if err != nil {
		log.Fatalf("render bundle: %v", err)
	}
	if err := bundle.WriteArtifact(*out, pdf); err != nil {
		log.Fatalf("write bundle: %v", err)
	}
	if _, err := db.SaveArtifact(store.Artifact{
		MatterID:   *matterID,
		WorkflowID: st.WorkflowID,
		Kind:       "hearing_bundle_pdf",
		Path:       *out,
	}); err != nil {
		log.Printf("persist artifact: %v", err)
	}
	log.Printf("evidence run %s completed, bundle written to %s (%d bytes)", st.WorkflowID, *out, len(pdf))
}

// assembleRequest gathers the latest completed run of each upstream
// workflow for the matter.
func assembleRequest(db *store.Store, matterID string) (evidence.Request, error) {
	req := evidence.Request{MatterID: matterID}

	snap, err := db.LoadMatter(matterID)
	if err != nil {
		return req, err
	}
	req.Snapshot = snap

	runs, err := db.ListRuns(matterID)
	if err != nil {
		return req, err
	}
	for _, run := range runs {
		if run.Status != workflow.StatusCompleted {
			continue
		}
		_, blob, err := db.LoadRun(run.WorkflowID)
		if err != nil {
			return req, err
		}
		switch run.Type {
		case workflow.TypeIntake:
			var st intake.State
			if err := json.Unmarshal(blob, &st); err != nil {
				return req, fmt.Errorf("decode intake run %s: %w", run.WorkflowID, err)
			}
			req.Documents = st.Documents
			req.Segments = st.Segments
			req.Translations = st.Translations
		case workflow.TypeDrafting:
			var st drafting.State
			if err := json.Unmarshal(blob, &st); err != nil {
				return req, fmt.Errorf("decode drafting run %s: %w", run.WorkflowID, err)
			}
			req.Primary = st.Primary
			req.Companion = st.Companion
		case workflow.TypeResearch:
			var st research.State
			if err := json.Unmarshal(blob, &st); err != nil {
				return req, fmt.Errorf("decode research run %s: %w", run.WorkflowID, err)
			}
			req.Authorities = st.Results
		}
	}
	if len(req.Documents) == 0 {
		return req, fmt.Errorf("no completed intake run found for matter %s", matterID)
	}
	return req, nil
}
