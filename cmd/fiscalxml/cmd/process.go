package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fiscalxml/processor/internal/loader"
	"github.com/fiscalxml/processor/internal/normalize"
	"github.com/fiscalxml/processor/internal/processor"
	"github.com/fiscalxml/processor/internal/storage"
	"github.com/fiscalxml/processor/pkg/logger"
)

var (
	outputFile string
	workers    int
	timeout    time.Duration
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Process fiscal XML files",
	Long: `Process one or more fiscal XML files, extract their data and, when a
storage driver is selected, persist the documents.

Arguments may be files, glob patterns or directories (searched for .xml).
Duplicate documents (same content hash or access key) are skipped, and a
malformed file never aborts the batch.

Examples:
  fiscalxml process nota.xml
  fiscalxml process 'notas/*.xml' -f table
  fiscalxml process ./notas/ --store sqlite --db fiscal.db
  fiscalxml process ./notas/ --store postgres --dsn postgres://localhost/fiscal`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	processCmd.Flags().IntVar(&workers, "workers", 4, "Concurrent files in a batch")
	processCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall processing timeout")
}

func runProcess(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no XML files found to process")
	}
	printVerbose("Found %d files to process\n", len(files))

	log := newLogger()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := []processor.Option{
		processor.WithLogger(log),
		processor.WithWorkers(workers),
	}
	if storeDriver != "" {
		store, err := storage.Open(ctx, storage.Config{
			Driver: storeDriver,
			Path:   storePath,
			DSN:    storeDSN,
		}, log)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, processor.WithStore(store))
	}

	pipeline := processor.NewPipeline(opts...)
	results := pipeline.ProcessBatch(ctx, files)

	for _, r := range results {
		if r.Err != nil {
			printVerbose("  %s: %v\n", r.File, r.Err)
		}
	}

	return outputResults(results)
}

func newLogger() zerolog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Env: "development", Level: level})
}

// collectFiles expands globs and walks directories for .xml files.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}
			if info.IsDir() {
				matches = []string{arg}
			} else {
				files = append(files, arg)
				continue
			}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() {
				if loader.IsXMLFile(match) {
					files = append(files, match)
				}
				continue
			}
			err = filepath.Walk(match, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && loader.IsXMLFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}

	return files, nil
}

func outputResults(results []*processor.Result) error {
	writer := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	switch outputFormat {
	case "json":
		return outputJSON(writer, results)
	case "table":
		return outputTable(writer, results)
	case "csv":
		return outputCSV(writer, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputJSON(w *os.File, results []*processor.Result) error {
	out := make([]*processResult, 0, len(results))
	for _, r := range results {
		out = append(out, newProcessResult(r))
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func outputTable(w *os.File, results []*processor.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tTYPE\tNUMBER\tISSUER\tTOTAL\tISSUES")
	fmt.Fprintln(tw, "----\t------\t----\t------\t------\t-----\t------")

	for _, r := range results {
		if r.Document == nil {
			reason := ""
			if r.Err != nil {
				reason = r.Err.Error()
			}
			fmt.Fprintf(tw, "%s\t%s\t\t\t\t\t%s\n", filepath.Base(r.File), r.Status, reason)
			continue
		}
		doc := r.Document
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			filepath.Base(r.File), r.Status, doc.Type, doc.Number,
			doc.Issuer.Name, doc.Totals.Grand.StringFixed(2), len(doc.Issues))
	}
	return tw.Flush()
}

// outputCSV emits one row per line item. Code-like columns go through
// numeric coercion so spreadsheets see numbers where safe while codes with
// significant leading zeros stay text.
func outputCSV(w *os.File, results []*processor.Result) error {
	cw := csv.NewWriter(w)
	header := []string{
		"file", "status", "type", "number", "access_key", "issuer_tax_id",
		"issuer_name", "item_number", "item_code", "ean", "description",
		"ncm", "cfop", "unit", "quantity", "unit_value", "total_value",
		"tax_total", "tax_rate",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		if r.Document == nil {
			continue
		}
		doc := r.Document
		base := []string{
			filepath.Base(r.File), string(r.Status), doc.Type.String(),
			doc.Number, doc.AccessKey, doc.Issuer.TaxID, doc.Issuer.Name,
		}
		if len(doc.Items) == 0 {
			row := append(append([]string{}, base...),
				"", "", "", "", "", "", "", "", "",
				doc.Totals.Grand.StringFixed(2), doc.TaxTotal.StringFixed(2), "")
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}
		for _, item := range doc.Items {
			row := append(append([]string{}, base...),
				fmt.Sprint(item.Number),
				coerced(item.Code),
				coerced(item.EAN),
				item.Description,
				coerced(item.NCM),
				coerced(item.CFOP),
				item.Unit,
				item.Quantity.String(),
				item.UnitValue.String(),
				item.TotalValue.StringFixed(2),
				item.TaxTotal.StringFixed(2),
				item.TaxRate.StringFixed(2),
			)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func coerced(code string) string {
	return strings.TrimSpace(fmt.Sprint(normalize.CoerceCode(code)))
}
