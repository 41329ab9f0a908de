package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pdiddy/qbank/internal/catalog"
	"github.com/pdiddy/qbank/pkg/types"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderReport tabulates a normalize report, one row per question ID.
func renderReport(report types.BatchReport) string {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		note := res.Reason
		if res.Lenient {
			note = "copied as-is"
		}
		rows = append(rows, []string{
			types.DirName(res.ID),
			string(res.Status),
			string(res.Origin),
			res.Source,
			note,
		})
	}
	return renderTable(
		[]string{"ID", "Status", "Origin", "Source", "Note"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

// renderSearchResults tabulates catalog hits with a shortened question.
func renderSearchResults(results []catalog.SearchResult) string {
	rows := make([][]string, 0, len(results))
	for i, r := range results {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Folder,
			truncate(strings.ReplaceAll(r.Text, "\n", " "), 60),
			r.Answer,
			fmt.Sprintf("%.2f", r.Rank),
		})
	}
	return renderTable(
		[]string{"#", "ID", "Question", "Answer", "Rank"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight},
	)
}

// truncate shortens s to at most n characters, counting runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
