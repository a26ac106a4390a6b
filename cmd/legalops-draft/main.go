package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/legalopsmy/legalops/internal/config"
	"github.com/legalopsmy/legalops/internal/drafting"
	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/store"
	"github.com/legalopsmy/legalops/internal/telemetry"
)

func main() {
	matterID := flag.String("matter", "", "Matter ID")
	snapshotPath := flag.String("snapshot", "", "Path to a matter snapshot JSON (defaults to the stored matter)")
	courtLevel := flag.String("court-level", "high", "Court level (high, sessions)")
	jurisdiction := flag.String("jurisdiction", "peninsular", "Jurisdiction (peninsular, sabah_sarawak)")
	language := flag.String("language", "ms", "Primary pleading language (ms, en)")
	issueIDs := flag.String("issues", "", "Comma-separated issue IDs to draft (empty keeps all)")
	prayerIDs := flag.String("prayers", "", "Comma-separated prayer IDs to draft (empty keeps all)")
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

	shutdown, err := telemetry.Setup(ctx, "legalops-draft", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal(err)
	}
	defer shutdown(context.Background())

	caller, err := llm.NewAnthropicCallerFromEnv(cfg.AnthropicModel)
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	snap, err := loadSnapshot(db, *matterID, *snapshotPath)
	if err != nil {
		log.Fatal(err)
	}

	req := drafting.Request{
		MatterID:          *matterID,
		Snapshot:          snap,
		CourtLevel:        *courtLevel,
		Jurisdiction:      *jurisdiction,
		Language:          *language,
		SelectedIssueIDs:  splitIDs(*issueIDs),
		SelectedPrayerIDs: splitIDs(*prayerIDs),
	}

	pipeline := drafting.NewPipeline(llm.NewStageExecutor(caller))
	log.Printf("starting drafting run (matter=%s, court=%s/%s, language=%s)", *matterID, *courtLevel, *jurisdiction, *language)
	st, runErr := pipeline.Run(ctx, req, func(stage, message string) {
		log.Printf("drafting %s: %s", stage, message)
	})

	if err := db.SaveRun(st.Run, st); err != nil {
		log.Printf("persist run: %v", err)
	}
	if runErr != nil {
		log.Fatalf("drafting run %s failed: %v", st.WorkflowID, runErr)
	}
	for _, w := range st.ComplianceWarnings {
		log.Printf("compliance warning: %s", w)
	}
	log.Printf("drafting run %s completed (paragraphs=%d, block_for_human=%t)",
		st.WorkflowID, len(st.Primary.ParagraphMap), st.QA.BlockForHuman)
}

func loadSnapshot(db *store.Store, matterID, path string) (intake.MatterSnapshot, error) {
	if strings.TrimSpace(path) == "" {
		return db.LoadMatter(matterID)
	}
	var snap intake.MatterSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, err
	}
	return snap, nil
}

func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
