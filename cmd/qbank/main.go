// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the qbank CLI.
//
// qbank normalizes scattered question folders and archives into one
// canonical tree, audits it for gaps, and exports it to study formats.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/qbank/internal/logging"
	"github.com/pdiddy/qbank/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built from --log-level and --log-json before any command runs.
var logger = logging.Discard()

// rootCmd is the base command for the qbank CLI.
var rootCmd = &cobra.Command{
	Use:   "qbank",
	Short: "Normalize and export a multiple-choice question bank",
	Long: `qbank turns raw question sources (numbered folders with irregular
nesting, ZIP and RAR archives) into one canonical directory per question,
then renders the canonical tree as flashcards, an mdBook, an mkdocs site,
a spreadsheet, or a searchable SQLite catalog.

Run "qbank normalize" first; every other stage reads its output.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd, map[string]string{
			"log.level": "log-level",
			"log.json":  "log-json",
		})
		logger = logging.New(logging.Config{
			Level: viper.GetString("log.level"),
			JSON:  viper.GetBool("log.json"),
		})
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./qbank.yaml or ~/.config/qbank/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON lines")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("qbank")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "qbank"))
		}
	}

	viper.SetEnvPrefix("QBANK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// bindFlags binds config keys to the named flags of cmd. Binding happens per
// invocation so several commands may expose the same key.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		if f := cmd.Flags().Lookup(name); f != nil {
			viper.BindPFlag(key, f)
		}
	}
}

// loadConfig merges defaults, the config file, QBANK_* environment
// variables and bound flags, in increasing priority.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// commandLogger returns the process logger tagged with the command name.
func commandLogger(cmd *cobra.Command) *charmlog.Logger {
	return logger.With("cmd", cmd.Name())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
