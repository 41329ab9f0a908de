// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog indexes canonical questions in SQLite for full-text
// search and structured export.
package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/qbank/internal/question"
	"github.com/pdiddy/qbank/pkg/types"
)

const (
	dbFile     = "questions.db"
	exportFile = "export.yaml"
)

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	catalogDir string
	maxResults int
}

// NewStore opens or creates catalogDir/questions.db and its schema.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.CatalogDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.CatalogDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, catalogDir: cfg.CatalogDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id INTEGER NOT NULL UNIQUE,
			folder TEXT NOT NULL,
			question TEXT NOT NULL,
			options TEXT,
			answer TEXT,
			explanation TEXT,
			question_figures TEXT,
			explain_figures TEXT,
			fingerprint TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_answer ON questions(answer)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='questions_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE questions_fts USING fts5(question, explanation, content=questions, content_rowid=rowid)`,
		`CREATE TRIGGER questions_ai AFTER INSERT ON questions BEGIN
			INSERT INTO questions_fts(rowid, question, explanation) VALUES (new.rowid, new.question, new.explanation);
		END`,
		`CREATE TRIGGER questions_ad AFTER DELETE ON questions BEGIN
			INSERT INTO questions_fts(questions_fts, rowid, question, explanation) VALUES('delete', old.rowid, old.question, old.explanation);
		END`,
		`CREATE TRIGGER questions_au AFTER UPDATE ON questions BEGIN
			INSERT INTO questions_fts(questions_fts, rowid, question, explanation) VALUES('delete', old.rowid, old.question, old.explanation);
			INSERT INTO questions_fts(rowid, question, explanation) VALUES (new.rowid, new.question, new.explanation);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from a catalog ingest run. Removed counts
// catalog rows dropped because their canonical directory is gone; it is
// not part of Total.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
	Removed int
}

// Total returns the number of question directories processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads every marked question under root into the database.
// Questions whose content fingerprint is unchanged since the last ingest are
// skipped. Rows whose directory no longer holds a question are deleted. On
// any change export.yaml is rewritten.
func (s *Store) Ingest(ctx context.Context, root string, w io.Writer) (IngestSummary, error) {
	entries, err := question.Scan(root)
	if err != nil {
		return IngestSummary{}, err
	}

	var summary IngestSummary
	present := make(map[int]bool, len(entries))
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if !e.HasMarker {
			fmt.Fprintf(w, "skipped %s (no %s)\n", e.Folder, types.MarkerFile)
			summary.Skipped++
			continue
		}
		present[e.ID] = true

		q, err := question.Load(e.Dir)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", e.Folder, err)
			summary.Failed++
			continue
		}

		sum, err := Fingerprint(q)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", e.Folder, err)
			summary.Failed++
			continue
		}

		var stored string
		err = s.db.QueryRowContext(ctx,
			`SELECT fingerprint FROM questions WHERE id = ?`, e.ID,
		).Scan(&stored)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			fmt.Fprintf(w, "failed  %s: %v\n", e.Folder, err)
			summary.Failed++
			continue
		}
		if err == nil && stored == sum {
			fmt.Fprintf(w, "skipped %s\n", e.Folder)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		if err := s.upsert(ctx, q, sum); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", e.Folder, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", e.Folder)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", e.Folder)
			summary.Indexed++
		}
	}

	removed, err := s.prune(ctx, present)
	if err != nil {
		return summary, err
	}
	for _, id := range removed {
		fmt.Fprintf(w, "removed %s\n", types.DirName(id))
	}
	summary.Removed = len(removed)

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d, removed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.Removed)

	if summary.Indexed > 0 || summary.Updated > 0 || summary.Removed > 0 {
		if err := s.ExportYAML(ctx, filepath.Join(s.catalogDir, exportFile)); err != nil {
			fmt.Fprintf(w, "warning: %s write failed: %v\n", exportFile, err)
		}
	}
	return summary, nil
}

// Fingerprint returns a SHA-256 digest over every field of q, so an edit to
// any text file or figure list changes it.
func Fingerprint(q types.Question) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("fingerprinting question %d: %w", q.ID, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// prune deletes rows whose ID is not in keep and returns the deleted IDs in
// ascending order.
func (s *Store) prune(ctx context.Context, keep map[int]bool) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing catalogued questions: %w", err)
	}
	var stale []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning question id: %w", err)
		}
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing catalogued questions: %w", err)
	}
	rows.Close()

	if len(stale) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()
	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("removing question %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing removals: %w", err)
	}
	return stale, nil
}

func (s *Store) upsert(ctx context.Context, q types.Question, fingerprint string) error {
	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encoding options: %w", err)
	}
	qFigsJSON, err := json.Marshal(q.QuestionFigures)
	if err != nil {
		return fmt.Errorf("encoding question figures: %w", err)
	}
	eFigsJSON, err := json.Marshal(q.ExplanationFigures)
	if err != nil {
		return fmt.Errorf("encoding explanation figures: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO questions (id, folder, question, options, answer, explanation,
			question_figures, explain_figures, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			folder=excluded.folder, question=excluded.question, options=excluded.options,
			answer=excluded.answer, explanation=excluded.explanation,
			question_figures=excluded.question_figures, explain_figures=excluded.explain_figures,
			fingerprint=excluded.fingerprint`,
		q.ID, q.Folder, q.Text, string(optionsJSON), q.Answer, q.Explanation,
		string(qFigsJSON), string(eFigsJSON), fingerprint,
	)
	if err != nil {
		return fmt.Errorf("upserting question: %w", err)
	}
	return tx.Commit()
}
