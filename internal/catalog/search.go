// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/qbank/pkg/types"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Query is an FTS5 match expression over question and explanation text.
	Query string

	// Unanswered restricts results to questions whose answer is the
	// placeholder or blank.
	Unanswered bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// SearchResult is a catalogued question with its relevance rank. Lower
// ranks are better; structured-only queries report zero.
type SearchResult struct {
	types.Question
	Rank float64 `json:"rank" yaml:"rank"`
}

// Search runs a full-text query and returns at most limit results.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	return s.Retrieve(ctx, QueryOptions{Query: query, MaxResults: limit})
}

// Retrieve queries the catalog. Full-text queries are ordered by relevance,
// all others by question ID.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT q.id, q.folder, q.question, q.options, q.answer, q.explanation,
				q.question_figures, q.explain_figures, questions_fts.rank
			FROM questions_fts
			JOIN questions q ON q.rowid = questions_fts.rowid
			WHERE questions_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT q.id, q.folder, q.question, q.options, q.answer, q.explanation,
				q.question_figures, q.explain_figures, 0 AS rank
			FROM questions q
			WHERE 1=1`)
	}

	if opts.Unanswered {
		qb.WriteString(` AND (q.answer = ? OR q.answer = '')`)
		args = append(args, types.AnswerPlaceholder)
	}

	if useFTS {
		qb.WriteString(` ORDER BY questions_fts.rank, q.id`)
	} else {
		qb.WriteString(` ORDER BY q.id`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			r                   SearchResult
			optionsJSON         sql.NullString
			qFigs, eFigs        sql.NullString
			answer, explanation sql.NullString
		)
		if err := rows.Scan(
			&r.ID, &r.Folder, &r.Text, &optionsJSON, &answer, &explanation,
			&qFigs, &eFigs, &r.Rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		r.Answer = answer.String
		r.Explanation = explanation.String
		if err := decodeColumn(optionsJSON, &r.Options); err != nil {
			return nil, fmt.Errorf("decoding options of question %d: %w", r.ID, err)
		}
		if err := decodeColumn(qFigs, &r.QuestionFigures); err != nil {
			return nil, fmt.Errorf("decoding question figures of question %d: %w", r.ID, err)
		}
		if err := decodeColumn(eFigs, &r.ExplanationFigures); err != nil {
			return nil, fmt.Errorf("decoding explanation figures of question %d: %w", r.ID, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// decodeColumn unmarshals a JSON text column into v. NULL leaves v as is.
func decodeColumn(col sql.NullString, v any) error {
	if !col.Valid {
		return nil
	}
	return json.Unmarshal([]byte(col.String), v)
}
