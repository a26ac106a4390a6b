package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/workflow"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "legalops.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMatterRoundTrip(t *testing.T) {
	s := openTestStore(t)
	snap := intake.MatterSnapshot{
		MatterID:          "MTR-700",
		Parties:           []intake.Party{{Role: "plaintiff", Name: "Syarikat Maju Sdn Bhd"}},
		Court:             "Mahkamah Tinggi Malaya di Kuala Lumpur",
		CaseType:          "contract",
		EstimatedAmountRM: 50000,
		Confidence:        0.8,
	}
	if err := s.SaveMatter(snap); err != nil {
		t.Fatalf("SaveMatter: %v", err)
	}
	got, err := s.LoadMatter("MTR-700")
	if err != nil {
		t.Fatalf("LoadMatter: %v", err)
	}
	if got.Court != snap.Court || got.EstimatedAmountRM != snap.EstimatedAmountRM || len(got.Parties) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	snap.CaseType = "tort"
	if err := s.SaveMatter(snap); err != nil {
		t.Fatal(err)
	}
	got, _ = s.LoadMatter("MTR-700")
	if got.CaseType != "tort" {
		t.Fatal("save must replace the snapshot wholesale")
	}
}

func TestLoadMatterNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadMatter("missing"); err == nil {
		t.Fatal("expected error for unknown matter")
	}
}

func TestDocumentsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	docs := []intake.Document{
		{ID: "DOC-1", Hash: "abc", Connector: intake.ConnectorUpload, Filename: "a.pdf", MIMEType: "application/pdf", SizeBytes: 100, PageCount: 2, OCRRequired: true},
		{ID: "DOC-2", Hash: "def", Connector: intake.ConnectorWhatsAppExport, Filename: "chat.txt", MIMEType: "text/plain", SizeBytes: 50},
	}
	if err := s.SaveDocuments("MTR-700", docs); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}
	got, err := s.ListDocuments("MTR-700")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d documents", len(got))
	}
	if got[0].ID != "DOC-1" || !got[0].OCRRequired || got[0].Connector != intake.ConnectorUpload {
		t.Fatalf("document mismatch: %+v", got[0])
	}
	if other, _ := s.ListDocuments("MTR-OTHER"); len(other) != 0 {
		t.Fatal("documents must be scoped to the matter")
	}
}

type fakeState struct {
	workflow.Run
	Payload string `json:"payload"`
}

func TestRunRoundTripWithStateBlob(t *testing.T) {
	s := openTestStore(t)
	run := workflow.NewRun(workflow.TypeIntake, "MTR-700")
	run.Status = workflow.StatusCompleted
	run.CurrentStage = "risk_scoring"
	run.CompletedAt = time.Now().UTC()
	state := fakeState{Run: run, Payload: "hello"}

	if err := s.SaveRun(run, state); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	gotRun, blob, err := s.LoadRun(run.WorkflowID)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if gotRun.Status != workflow.StatusCompleted || gotRun.Type != workflow.TypeIntake || gotRun.CurrentStage != "risk_scoring" {
		t.Fatalf("header mismatch: %+v", gotRun)
	}
	var gotState fakeState
	if err := json.Unmarshal(blob, &gotState); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if gotState.Payload != "hello" {
		t.Fatalf("state = %+v", gotState)
	}

	runs, err := s.ListRuns("MTR-700")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].WorkflowID != run.WorkflowID {
		t.Fatalf("runs = %+v", runs)
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	s := openTestStore(t)
	a, err := s.SaveArtifact(Artifact{MatterID: "MTR-700", Kind: "hearing_bundle_pdf", Path: "/tmp/bundle.pdf"})
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if a.ID == "" || a.CreatedAt.IsZero() {
		t.Fatalf("identity not assigned: %+v", a)
	}
	got, err := s.ListArtifacts("MTR-700")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind != "hearing_bundle_pdf" {
		t.Fatalf("artifacts = %+v", got)
	}
}
