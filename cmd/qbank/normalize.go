// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/qbank/internal/archive"
	"github.com/pdiddy/qbank/internal/locate"
	"github.com/pdiddy/qbank/internal/normalize"
	"github.com/pdiddy/qbank/internal/tool"
	"github.com/pdiddy/qbank/pkg/types"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Build the canonical question tree from folders and archives",
	Long: `Normalize locates the source of every question ID in the range, either a
numbered folder under the source root or a numbered ZIP/RAR archive under the
archives root, and rebuilds <output-root>/<NNN>/ from it. Every canonical
directory ends up with the eight required text files and both figure folders.

Existing canonical directories are replaced. Running normalize twice on the
same inputs produces the same tree. IDs without a usable source are reported
and listed as missing; they do not fail the run.`,
	RunE: runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"normalize.source_root":   "source-root",
		"normalize.archives_root": "archives-root",
		"normalize.output_root":   "output-root",
		"normalize.scratch_dir":   "scratch-dir",
		"normalize.first":         "first",
		"normalize.last":          "last",
		"normalize.strict":        "strict",
		"normalize.unar_bin":      "unar",
	})
	pipeline, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := pipeline.Normalize
	if err := validateRange(cfg); err != nil {
		return err
	}

	log := commandLogger(cmd)
	unar := tool.New(cfg.UnarBin, nil)
	if !unar.Available() {
		log.Warn("RAR tool not found, .rar archives will be skipped", "bin", cfg.UnarBin)
	}

	locator := locate.NewLocator(cfg, archive.NewUnpacker(unar), log)
	n := normalize.New(cfg, locator, log)

	report, err := n.Run(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if table, _ := cmd.Flags().GetBool("table"); table {
		fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
	}
	return nil
}

func validateRange(cfg types.NormalizeConfig) error {
	if cfg.First < 1 {
		return fmt.Errorf("first ID must be positive, got %d", cfg.First)
	}
	if cfg.Last < cfg.First {
		return fmt.Errorf("last ID %d is before first ID %d", cfg.Last, cfg.First)
	}
	return nil
}

func init() {
	defaults := types.DefaultPipelineConfig().Normalize

	normalizeCmd.Flags().String("source-root", defaults.SourceRoot, "directory holding numbered question folders")
	normalizeCmd.Flags().String("archives-root", defaults.ArchivesRoot, "directory holding numbered .zip/.rar archives")
	normalizeCmd.Flags().String("output-root", defaults.OutputRoot, "directory receiving the canonical tree")
	normalizeCmd.Flags().String("scratch-dir", "", "directory for archive extraction (default: system temp)")
	normalizeCmd.Flags().Int("first", defaults.First, "first question ID of the range")
	normalizeCmd.Flags().Int("last", defaults.Last, "last question ID of the range")
	normalizeCmd.Flags().Bool("strict", false, "skip sources without question.txt instead of copying them as-is")
	normalizeCmd.Flags().String("unar", defaults.UnarBin, "RAR extraction tool")
	normalizeCmd.Flags().Bool("table", false, "print a per-question result table")

	rootCmd.AddCommand(normalizeCmd)
}
