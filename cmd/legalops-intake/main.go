package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/legalopsmy/legalops/internal/config"
	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/llm"
	"github.com/legalopsmy/legalops/internal/store"
	"github.com/legalopsmy/legalops/internal/telemetry"
)

func main() {
	matterID := flag.String("matter", "", "Matter ID")
	dir := flag.String("dir", ".", "Directory of documents to ingest")
	connector := flag.String("connector", "upload", "Source connector (upload, gmail, outlook, whatsapp_export, dms)")
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

	shutdown, err := telemetry.Setup(ctx, "legalops-intake", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal(err)
	}
	defer shutdown(context.Background())

	caller, err := llm.NewAnthropicCallerFromEnv(cfg.AnthropicModel)
	if err != nil {
		log.Fatal(err)
	}

	inputs, err := readInputs(*dir, intake.Connector(*connector))
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	pipeline := intake.NewPipeline(cfg, llm.NewStageExecutor(caller), nil, nil)
	log.Printf("starting intake run (matter=%s, files=%d)", *matterID, len(inputs))
	st, runErr := pipeline.Run(ctx, *matterID, inputs, func(stage, message string) {
		log.Printf("intake %s: %s", stage, message)
	})

	if err := db.SaveRun(st.Run, st); err != nil {
		log.Printf("persist run: %v", err)
	}
	if len(st.Documents) > 0 {
		if err := db.SaveDocuments(*matterID, st.Documents); err != nil {
			log.Printf("persist documents: %v", err)
		}
	}
	if st.Snapshot != nil {
		if err := db.SaveMatter(*st.Snapshot); err != nil {
			log.Printf("persist matter: %v", err)
		}
	}
	if runErr != nil {
		log.Fatalf("intake run %s failed: %v", st.WorkflowID, runErr)
	}
	log.Printf("intake run %s completed (documents=%d, segments=%d, risk=%s)",
		st.WorkflowID, len(st.Documents), len(st.Segments), st.Risk.Level)
}

func readInputs(dir string, connector intake.Connector) ([]intake.RawInput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var inputs []intake.RawInput
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, intake.RawInput{
			Connector: connector,
			Filename:  e.Name(),
			Data:      data,
		})
	}
	return inputs, nil
}
