// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/qbank/internal/export"
	"github.com/pdiddy/qbank/internal/tool"
	"github.com/pdiddy/qbank/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the canonical tree into study formats",
	Long: `Export reads the canonical tree written by normalize and renders it as
flashcard markdown (deck), an mdBook (book), an mkdocs site (docs) or a
spreadsheet (sheet). Directories without question.txt are skipped.`,
}

// --- deck subcommand ---

var exportDeckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Write flashcard markdown for md2anki or mdankideck",
	RunE:  runExportDeck,
}

func runExportDeck(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"normalize.output_root": "root",
		"deck.style":            "style",
		"deck.title":            "title",
		"deck.output_dir":       "output-dir",
		"deck.file_name":        "file-name",
		"deck.build":            "build",
		"deck.builder_bin":      "builder",
	})
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var builder tool.Runner
	if cfg.Deck.Build {
		bin := cfg.Deck.BuilderBin
		if bin == "" {
			bin = string(cfg.Deck.Style)
		}
		builder = tool.New(bin, cmd.ErrOrStderr())
	}

	deck := export.NewDeck(cfg.Deck, builder, commandLogger(cmd))
	return batchError(deck.Export(cfg.Normalize.OutputRoot, cmd.OutOrStdout()))
}

// --- book subcommand ---

var exportBookCmd = &cobra.Command{
	Use:   "book",
	Short: "Write an mdBook source tree",
	RunE:  runExportBook,
}

func runExportBook(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"normalize.output_root": "root",
		"book.title":            "title",
		"book.language":         "language",
		"book.output_dir":       "output-dir",
	})
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	book := export.NewBook(cfg.Book, commandLogger(cmd))
	return batchError(book.Export(cfg.Normalize.OutputRoot, cmd.OutOrStdout()))
}

// --- docs subcommand ---

var exportDocsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Write an mkdocs site; existing note.md files are kept",
	RunE:  runExportDocs,
}

func runExportDocs(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"normalize.output_root": "root",
		"docs.site_name":        "site-name",
		"docs.output_dir":       "output-dir",
	})
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	docs := export.NewDocs(cfg.Docs, commandLogger(cmd))
	return batchError(docs.Export(cfg.Normalize.OutputRoot, cmd.OutOrStdout()))
}

// --- sheet subcommand ---

var exportSheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Write an .xlsx spreadsheet with one row per question",
	RunE:  runExportSheet,
}

func runExportSheet(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"normalize.output_root":  "root",
		"sheet.output_file":      "output",
		"sheet.sheet_name":       "sheet-name",
		"sheet.max_column_width": "max-width",
	})
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sheet := export.NewSheet(cfg.Sheet, commandLogger(cmd))
	return batchError(sheet.Export(cfg.Normalize.OutputRoot, cmd.OutOrStdout()))
}

// --- shared helpers ---

// batchError turns failed questions into a command error.
func batchError(result export.BatchResult, err error) error {
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d question(s) failed to export", result.Failed)
	}
	return nil
}

func init() {
	defaults := types.DefaultPipelineConfig()

	exportCmd.PersistentFlags().String("root", defaults.Normalize.OutputRoot, "canonical tree to export")

	exportDeckCmd.Flags().String("style", string(defaults.Deck.Style), "deck dialect: md2anki or mdankideck")
	exportDeckCmd.Flags().String("title", defaults.Deck.Title, "deck title")
	exportDeckCmd.Flags().String("output-dir", defaults.Deck.OutputDir, "directory for the markdown file and media/")
	exportDeckCmd.Flags().String("file-name", defaults.Deck.FileName, "markdown file name")
	exportDeckCmd.Flags().Bool("build", false, "run the deck builder after writing markdown")
	exportDeckCmd.Flags().String("builder", "", "deck builder binary (default: the style name)")

	exportBookCmd.Flags().String("title", defaults.Book.Title, "book title")
	exportBookCmd.Flags().String("language", defaults.Book.Language, "book language code")
	exportBookCmd.Flags().String("output-dir", defaults.Book.OutputDir, "mdBook root directory")

	exportDocsCmd.Flags().String("site-name", defaults.Docs.SiteName, "mkdocs site name")
	exportDocsCmd.Flags().String("output-dir", defaults.Docs.OutputDir, "mkdocs project directory")

	exportSheetCmd.Flags().String("output", defaults.Sheet.OutputFile, "spreadsheet file")
	exportSheetCmd.Flags().String("sheet-name", defaults.Sheet.SheetName, "worksheet name")
	exportSheetCmd.Flags().Int("max-width", defaults.Sheet.MaxColumnWidth, "maximum auto-sized column width")

	exportCmd.AddCommand(exportDeckCmd)
	exportCmd.AddCommand(exportBookCmd)
	exportCmd.AddCommand(exportDocsCmd)
	exportCmd.AddCommand(exportSheetCmd)

	rootCmd.AddCommand(exportCmd)
}
