// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/qbank/internal/normalize"
	"github.com/pdiddy/qbank/pkg/types"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List question IDs missing from the canonical tree",
	Long: `Audit checks the canonical tree for a directory per question ID in the
range and lists the IDs that have none. When a report from the last
normalize run exists, its per-question outcome is shown alongside.`,
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"normalize.output_root": "output-root",
		"normalize.first":       "first",
		"normalize.last":        "last",
	})
	pipeline, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := pipeline.Normalize
	if err := validateRange(cfg); err != nil {
		return err
	}

	missing, err := normalize.Audit(cfg.OutputRoot, cfg.First, cfg.Last)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := cfg.Last - cfg.First + 1
	if len(missing) == 0 {
		fmt.Fprintf(out, "All %d questions present (%s-%s).\n", total, types.DirName(cfg.First), types.DirName(cfg.Last))
	} else {
		fmt.Fprintf(out, "%d of %d questions missing: %v\n", len(missing), total, missing)
	}

	reportPath := filepath.Join(cfg.OutputRoot, normalize.ReportFile)
	if _, err := os.Stat(reportPath); err == nil && len(missing) > 0 {
		report, err := normalize.ReadReport(reportPath)
		if err != nil {
			commandLogger(cmd).Warn("could not read last normalize report", "err", err)
		} else {
			fmt.Fprintln(out, renderMissing(report, missing))
		}
	}

	if fail, _ := cmd.Flags().GetBool("fail-missing"); fail && len(missing) > 0 {
		return fmt.Errorf("%d question(s) missing", len(missing))
	}
	return nil
}

// renderMissing shows what the last normalize run recorded for each missing
// ID.
func renderMissing(report types.BatchReport, missing []int) string {
	rows := make([][]string, 0, len(missing))
	for _, id := range missing {
		reason := "not in last run"
		if res, ok := report.Lookup(id); ok {
			reason = res.Reason
		}
		rows = append(rows, []string{types.DirName(id), reason})
	}
	return renderTable([]string{"ID", "Last run"}, rows, []columnAlignment{alignRight, alignLeft})
}

func init() {
	defaults := types.DefaultPipelineConfig().Normalize

	auditCmd.Flags().String("output-root", defaults.OutputRoot, "canonical tree to audit")
	auditCmd.Flags().Int("first", defaults.First, "first question ID of the range")
	auditCmd.Flags().Int("last", defaults.Last, "last question ID of the range")
	auditCmd.Flags().Bool("fail-missing", false, "exit non-zero when any question is missing")

	rootCmd.AddCommand(auditCmd)
}
