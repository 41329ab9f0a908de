// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	charmlog "github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/qbank/internal/logging"
	"github.com/pdiddy/qbank/internal/question"
	"github.com/pdiddy/qbank/pkg/types"
)

// SheetColumns is the header row of the spreadsheet.
var SheetColumns = []string{
	"folder_name",
	"first_line_of_question_txt",
	"rest_lines_of_question_txt",
	"optionA",
	"optionB",
	"optionC",
	"optionD",
	"optionE",
	"correct_answer_txt",
	"explain",
}

// Sheet writes one spreadsheet row per question.
type Sheet struct {
	cfg types.SheetConfig
	log *charmlog.Logger
}

// NewSheet returns a Sheet exporter.
func NewSheet(cfg types.SheetConfig, logger *charmlog.Logger) *Sheet {
	if cfg.SheetName == "" {
		cfg.SheetName = "Questions"
	}
	if cfg.MaxColumnWidth <= 0 {
		cfg.MaxColumnWidth = 50
	}
	return &Sheet{cfg: cfg, log: logging.OrDiscard(logger)}
}

// SheetRow returns the cleaned cell values for q in SheetColumns order.
func SheetRow(q types.Question) []string {
	first, rest := question.SplitFirstLine(question.CleanText(q.Text))
	row := []string{q.Folder, first, rest}
	for _, letter := range types.OptionLetters {
		row = append(row, question.CleanText(q.Option(letter)))
	}
	return append(row, question.CleanText(q.Answer), question.CleanText(q.Explanation))
}

// Export writes the workbook. No file is written when there are no rows.
func (s *Sheet) Export(root string, w io.Writer) (BatchResult, error) {
	var rows [][]string
	result, err := forEach(root, w, s.log, func(q types.Question) error {
		rows = append(rows, SheetRow(q))
		return nil
	})
	if err != nil {
		return result, err
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "no questions to export")
		printSummary(w, result)
		return result, nil
	}

	if err := s.write(rows); err != nil {
		return result, err
	}
	fmt.Fprintf(w, "sheet written: %s\n", s.cfg.OutputFile)
	printSummary(w, result)
	return result, nil
}

func (s *Sheet) write(rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), s.cfg.SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	all := append([][]string{SheetColumns}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.cfg.SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	for col, width := range s.columnWidths(all) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.cfg.SheetName, name, name, float64(width)); err != nil {
			return fmt.Errorf("sizing column %s: %w", name, err)
		}
	}

	if dir := filepath.Dir(s.cfg.OutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := f.SaveAs(s.cfg.OutputFile); err != nil {
		return fmt.Errorf("saving %s: %w", s.cfg.OutputFile, err)
	}
	return nil
}

// columnWidths sizes each column to its longest value in characters,
// capped at MaxColumnWidth, plus padding.
func (s *Sheet) columnWidths(rows [][]string) []int {
	widths := make([]int, len(SheetColumns))
	for _, row := range rows {
		for i, v := range row {
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], s.cfg.MaxColumnWidth) + 2
	}
	return widths
}
