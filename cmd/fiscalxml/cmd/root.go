package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	storeDriver  string
	storePath    string
	storeDSN     string
)

var rootCmd = &cobra.Command{
	Use:   "fiscalxml",
	Short: "Process Brazilian fiscal XML documents (NFe, NFCe, CTe, NFSe)",
	Long: `fiscalxml extracts structured data from Brazilian fiscal XML documents.

Supported schemas:
  - NFe  (model 55): product invoices
  - NFCe (model 65): consumer invoices
  - CTe  (model 57): transport waybills
  - NFSe: municipal service invoices

Examples:
  # Process a single file
  fiscalxml process nota.xml

  # Process a directory into a SQLite database
  fiscalxml process ./notas/ --store sqlite --db fiscal.db

  # Validate without persisting
  fiscalxml validate nota.xml

  # Start the HTTP API
  fiscalxml serve`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Storage driver (memory, sqlite, postgres; default: none)")
	rootCmd.PersistentFlags().StringVar(&storePath, "db", "fiscalxml.db", "SQLite database file (with --store sqlite)")
	rootCmd.PersistentFlags().StringVar(&storeDSN, "dsn", "", "PostgreSQL connection string (with --store postgres; env: DATABASE_URL)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if storeDSN == "" {
		storeDSN = os.Getenv("DATABASE_URL")
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
