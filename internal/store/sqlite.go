// Package store persists matters, documents, workflow runs, and rendered
// artifacts to SQLite. Pipelines stay free of I/O; the cmd binaries write
// through here after each run.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/legalopsmy/legalops/internal/intake"
	"github.com/legalopsmy/legalops/internal/workflow"
)

type Store struct {
	db *sqlx.DB
	mu sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS matters (
	matter_id  TEXT PRIMARY KEY,
	snapshot   TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	doc_id        TEXT PRIMARY KEY,
	matter_id     TEXT NOT NULL,
	hash          TEXT NOT NULL,
	connector     TEXT NOT NULL DEFAULT '',
	filename      TEXT NOT NULL DEFAULT '',
	mime_type     TEXT NOT NULL DEFAULT '',
	size_bytes    INTEGER NOT NULL DEFAULT 0,
	page_count    INTEGER NOT NULL DEFAULT 0,
	ocr_required  INTEGER NOT NULL DEFAULT 0,
	language_hint TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS workflow_runs (
	workflow_id   TEXT PRIMARY KEY,
	matter_id     TEXT NOT NULL,
	type          TEXT NOT NULL,
	status        TEXT NOT NULL,
	current_stage TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT '',
	started_at    TEXT NOT NULL,
	completed_at  TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS artifacts (
	artifact_id TEXT PRIMARY KEY,
	matter_id   TEXT NOT NULL,
	workflow_id TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL,
	path        TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
`

func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveMatter replaces the stored snapshot for the matter wholesale, matching
// the intake contract that a later run supersedes the earlier one.
func (s *Store) SaveMatter(snap intake.MatterSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO matters (matter_id, snapshot, updated_at) VALUES (?, ?, ?)`,
		snap.MatterID, marshalJSON(snap), timeToString(time.Now()))
	return err
}

func (s *Store) LoadMatter(matterID string) (intake.MatterSnapshot, error) {
	var snap intake.MatterSnapshot
	var raw string
	err := s.db.QueryRow(`SELECT snapshot FROM matters WHERE matter_id = ?`, matterID).Scan(&raw)
	if err == sql.ErrNoRows {
		return snap, fmt.Errorf("matter %s not found", matterID)
	}
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return snap, fmt.Errorf("decode matter %s: %w", matterID, err)
	}
	return snap, nil
}

func (s *Store) SaveDocuments(matterID string, docs []intake.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := timeToString(time.Now())
	for _, d := range docs {
		_, err := s.db.Exec(`INSERT OR REPLACE INTO documents (doc_id, matter_id, hash, connector, filename, mime_type, size_bytes, page_count, ocr_required, language_hint, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, matterID, d.Hash, string(d.Connector), d.Filename, d.MIMEType,
			d.SizeBytes, d.PageCount, boolToInt(d.OCRRequired), d.LanguageHint, now)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListDocuments(matterID string) ([]intake.Document, error) {
	rows, err := s.db.Query(`SELECT doc_id, hash, connector, filename, mime_type, size_bytes, page_count, ocr_required, language_hint
		FROM documents WHERE matter_id = ? ORDER BY doc_id`, matterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []intake.Document
	for rows.Next() {
		var d intake.Document
		var connector string
		var ocrRequired int
		if err := rows.Scan(&d.ID, &d.Hash, &connector, &d.Filename, &d.MIMEType, &d.SizeBytes, &d.PageCount, &ocrRequired, &d.LanguageHint); err != nil {
			return nil, err
		}
		d.Connector = intake.Connector(connector)
		d.OCRRequired = ocrRequired != 0
		out = append(out, d)
	}
	return out, rows.Err()
}

// SaveRun persists the run header columns plus the full typed state as a
// JSON blob. The state must embed the run so loads round-trip.
func (s *Store) SaveRun(run workflow.Run, state any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO workflow_runs (workflow_id, matter_id, type, status, current_stage, error, started_at, completed_at, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.WorkflowID, run.MatterID, string(run.Type), string(run.Status), run.CurrentStage, run.Error,
		timeToString(run.StartedAt), timeToString(run.CompletedAt), marshalJSON(state))
	return err
}

// LoadRun returns the run header and the raw state blob. Callers unmarshal
// the blob into the State type matching run.Type.
func (s *Store) LoadRun(workflowID string) (workflow.Run, json.RawMessage, error) {
	var run workflow.Run
	var typ, status, startedAt, completedAt, state string
	err := s.db.QueryRow(`SELECT workflow_id, matter_id, type, status, current_stage, error, started_at, completed_at, state
		FROM workflow_runs WHERE workflow_id = ?`, workflowID).
		Scan(&run.WorkflowID, &run.MatterID, &typ, &status, &run.CurrentStage, &run.Error, &startedAt, &completedAt, &state)
	if err == sql.ErrNoRows {
		return run, nil, fmt.Errorf("workflow run %s not found", workflowID)
	}
	if err != nil {
		return run, nil, err
	}
	run.Type = workflow.Type(typ)
	run.Status = workflow.Status(status)
	run.StartedAt = parseTime(startedAt)
	run.CompletedAt = parseTime(completedAt)
	return run, json.RawMessage(state), nil
}

func (s *Store) ListRuns(matterID string) ([]workflow.Run, error) {
	rows, err := s.db.Query(`SELECT workflow_id, matter_id, type, status, current_stage, error, started_at, completed_at
		FROM workflow_runs WHERE matter_id = ? ORDER BY started_at`, matterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []workflow.Run
	for rows.Next() {
		var run workflow.Run
		var typ, status, startedAt, completedAt string
		if err := rows.Scan(&run.WorkflowID, &run.MatterID, &typ, &status, &run.CurrentStage, &run.Error, &startedAt, &completedAt); err != nil {
			return nil, err
		}
		run.Type = workflow.Type(typ)
		run.Status = workflow.Status(status)
		run.StartedAt = parseTime(startedAt)
		run.CompletedAt = parseTime(completedAt)
		out = append(out, run)
	}
	return out, rows.Err()
}

type Artifact struct {
	ID         string    `json:"artifact_id"`
	MatterID   string    `json:"matter_id"`
	WorkflowID string    `json:"workflow_id,omitempty"`
	Kind       string    `json:"kind"`
	Path       string    `json:"path"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Store) SaveArtifact(a Artifact) (Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO artifacts (artifact_id, matter_id, workflow_id, kind, path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.MatterID, a.WorkflowID, a.Kind, a.Path, timeToString(a.CreatedAt))
	return a, err
}

func (s *Store) ListArtifacts(matterID string) ([]Artifact, error) {
	rows, err := s.db.Query(`SELECT artifact_id, matter_id, workflow_id, kind, path, created_at
		FROM artifacts WHERE matter_id = ? ORDER BY created_at`, matterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		var createdAt string
		if err := rows.Scan(&a.ID, &a.MatterID, &a.WorkflowID, &a.Kind, &a.Path, &createdAt); err != nil {
			return nil, err
		}
		a.CreatedAt = parseTime(createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

func timeToString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func marshalJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
