// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/qbank/internal/catalog"
	"github.com/pdiddy/qbank/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the searchable question catalog (store, search, export)",
	Long: `Catalog maintains a local SQLite database of the canonical questions
with full-text search over question and explanation text.`,
}

// --- store subcommand ---

var catalogStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest the canonical tree into the catalog",
	Long: `Store reads every canonical question directory into the catalog and
writes export.yaml next to the database. Questions whose question.txt is
unchanged since the last run are skipped.`,
	RunE: runCatalogStore,
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	cfg, err := catalogConfig(cmd)
	if err != nil {
		return err
	}

	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), cfg.Normalize.OutputRoot, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d question(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over questions and explanations",
	RunE:  runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	cfg, err := catalogConfig(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	unanswered, _ := cmd.Flags().GetBool("unanswered")
	opts := catalog.QueryOptions{
		Query:      strings.Join(args, " "),
		Unanswered: unanswered,
		MaxResults: limit,
	}
	if opts.Query == "" && !opts.Unanswered {
		return fmt.Errorf("query required: provide search terms or --unanswered")
	}

	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintln(out, renderSearchResults(results))
	fmt.Fprintf(out, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	RunE:  runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	cfg, err := catalogConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		path := filepath.Join(cfg.Catalog.CatalogDir, "export.yaml")
		if err := store.ExportYAML(cmd.Context(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	case "json":
		path := filepath.Join(cfg.Catalog.CatalogDir, "export.json")
		if err := store.ExportJSON(cmd.Context(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

// --- shared helpers ---

func catalogConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	bindFlags(cmd, map[string]string{
		"normalize.output_root": "root",
		"catalog.catalog_dir":   "catalog-dir",
		"catalog.max_results":   "max-results",
	})
	return loadConfig()
}

func init() {
	defaults := types.DefaultPipelineConfig()

	catalogCmd.PersistentFlags().String("root", defaults.Normalize.OutputRoot, "canonical tree to ingest")
	catalogCmd.PersistentFlags().String("catalog-dir", defaults.Catalog.CatalogDir, "directory holding questions.db")
	catalogCmd.PersistentFlags().Int("max-results", defaults.Catalog.MaxResults, "default number of search results")

	catalogSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogSearchCmd.Flags().Bool("unanswered", false, "only questions whose answer is unknown")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	catalogCmd.AddCommand(catalogStoreCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
