// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders the canonical question tree into study formats:
// flashcard markdown, an mdBook, an mkdocs site and a spreadsheet.
//
// Every exporter walks the canonical root in numeric order, skips
// directories without the marker file, and prints one status line per
// question followed by a batch summary.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/otiai10/copy"

	"github.com/pdiddy/qbank/internal/logging"
	"github.com/pdiddy/qbank/internal/question"
	"github.com/pdiddy/qbank/pkg/types"
)

// BatchResult holds the outcome of an export run.
type BatchResult struct {
	Exported int
	Skipped  int
	Failed   int
}

// Total returns the number of question directories seen.
func (r BatchResult) Total() int {
	return r.Exported + r.Skipped + r.Failed
}

// HasFailures reports whether any question failed to export.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// forEach loads every marked question under root and hands it to fn. A
// failure in fn counts against that question only.
func forEach(root string, w io.Writer, log *charmlog.Logger, fn func(types.Question) error) (BatchResult, error) {
	var result BatchResult
	log = logging.OrDiscard(log)

	entries, err := question.Scan(root)
	if err != nil {
		return result, err
	}

	for _, e := range entries {
		if !e.HasMarker {
			fmt.Fprintf(w, "skipped:  %s (no %s)\n", e.Folder, types.MarkerFile)
			log.Warn("question directory without marker file", "dir", e.Dir)
			result.Skipped++
			continue
		}

		q, err := question.Load(e.Dir)
		if err == nil {
			err = fn(q)
		}
		if err != nil {
			fmt.Fprintf(w, "failed:   %s (%v)\n", e.Folder, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "exported: %s\n", e.Folder)
		result.Exported++
	}
	return result, nil
}

func printSummary(w io.Writer, result BatchResult) {
	fmt.Fprintf(w, "\nBatch summary: %d exported, %d skipped, %d failed (total: %d)\n",
		result.Exported, result.Skipped, result.Failed, result.Total())
}

func copyFile(src, dst string) error {
	if err := copy.Copy(src, dst, copy.Options{PreserveTimes: true}); err != nil {
		return fmt.Errorf("copying %s: %w", filepath.Base(src), err)
	}
	return nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
