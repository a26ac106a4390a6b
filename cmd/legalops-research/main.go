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
	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/research"
	"github.com/legalopsmy/legalops/internal/store"
	"github.com/legalopsmy/legalops/internal/telemetry"
	"github.com/legalopsmy/legalops/internal/workflow"
)

func main() {
	matterID := flag.String("matter", "", "Matter ID")
	query := flag.String("query", "", "Search query text")
	courts := flag.String("courts", "", "Comma-separated court database codes (MYFC, MYCA, MYHC; empty searches all)")
	yearFrom := flag.Int("year-from", 0, "Only return decisions from this year onward")
	configPath := flag.String("config", "", "Path to YAML config")
	flag.Parse()

	if strings.TrimSpace(*matterID) == "" {
		log.Fatal("missing required flag -matter")
	}
	if strings.TrimSpace(*query) == "" {
		log.Fatal("missing required flag -query")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, "legalops-research", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal(err)
	}
	defer shutdown(context.Background())

	// The memo degrades to an authority list without a key, so the model
	// is optional here.
	var exec *llm.StageExecutor
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		caller, err := llm.NewAnthropicCallerFromEnv(cfg.AnthropicModel)
		if err != nil {
			log.Fatal(err)
		}
		exec = llm.NewStageExecutor(caller)
	} else {
		log.Printf("ANTHROPIC_API_KEY not set, argument memo will be the deterministic fallback")
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	pipeline, err := research.NewPipeline(cfg, exec)
	if err != nil {
		log.Fatal(err)
	}
	if matter, ok := loadMatterContext(db, *matterID); ok {
		pipeline.AttachMatter(matter)
	} else {
		log.Printf("no intake snapshot stored for matter %s, skipping case strength", *matterID)
	}

	q := research.Query{
		MatterID: *matterID,
		Text:     *query,
		Courts:   splitCodes(*courts),
		YearFrom: *yearFrom,
	}

	log.Printf("starting research run (matter=%s, live=%t)", *matterID, cfg.ResearchLiveEnabled)
	st, runErr := pipeline.Run(ctx, q, func(stage, message string) {
		log.Printf("research %s: %s", stage, message)
	})

	if err := db.SaveRun(st.Run, st); err != nil {
		log.Printf("persist run: %v", err)
	}
	if runErr != nil {
		log.Fatalf("research run %s failed: %v", st.WorkflowID, runErr)
	}
	for _, r := range st.Results {
		log.Printf("result: %s %s (%s, relevance=%.2f, provenance=%s)", r.Title, r.Citation, r.Court, r.Relevance, r.Provenance)
	}
	if st.Strength != nil {
		log.Printf("case strength: win probability %.0f%% (%s confidence, %d risks)",
			st.Strength.WinProbability*100, st.Strength.ConfidenceLevel, len(st.Strength.Risks))
	}
	log.Printf("research run %s completed (results=%d)", st.WorkflowID, len(st.Results))
}

// loadMatterContext pulls the stored snapshot and the risk score of the
// latest completed intake run. A matter that has not been through intake
// simply skips the strength stage.
func loadMatterContext(db *store.Store, matterID string) (research.MatterContext, bool) {
	snap, err := db.LoadMatter(matterID)
	if err != nil {
		return research.MatterContext{}, false
	}
	matter := research.MatterContext{Snapshot: snap}

	runs, err := db.ListRuns(matterID)
	if err != nil {
		return matter, true
	}
	for _, run := range runs {
		if run.Type != workflow.TypeIntake || run.Status != workflow.StatusCompleted {
			continue
		}
		_, blob, err := db.LoadRun(run.WorkflowID)
		if err != nil {
			continue
		}
		var st intake.State
		if err := json.Unmarshal(blob, &st); err != nil {
			continue
		}
		if st.Risk != nil {
			matter.Risk = st.Risk
		}
	}
	return matter, true
}

func splitCodes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
