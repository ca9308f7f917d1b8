// Package main provides the CLI entry point for xlsplit.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukaji3/xlsplit-go/internal/config"
	"github.com/ukaji3/xlsplit-go/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log *logrus.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xlsplit",
		Short: "Split spreadsheet sheets into CSV chunks",
		Long: `xlsplit converts one sheet of an Excel workbook (.xlsx or .xls) into
a series of CSV files holding at most a fixed number of records each.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json")

	rootCmd.AddCommand(newConvertCmd(), newSheetsCmd(), newServeCmd())
	return rootCmd
}

// setup loads the configuration, applies the global flags and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		loaded.Log.Format = logFormat
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	log = logging.Setup(cfg.Log.Level, cfg.Log.Format)
	return nil
}

func requireFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	return nil
}
