package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fiscalxml/processor/internal/processor"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate fiscal XML files without persisting",
	Long: `Validate one or more fiscal XML files for completeness.

Checks performed:
  - schema recognized (NFe, NFCe, CTe, NFSe)
  - required fields present (number, issue date, issuer tax id)
  - access key length for NFe-family documents and waybills
  - plausible CNPJ/CPF digits
  - positive document total

Validation issues are warnings: a file with issues is still processable.

Examples:
  fiscalxml validate nota.xml
  fiscalxml validate 'notas/*.xml' -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no XML files found to validate")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pipeline := processor.NewPipeline(processor.WithLogger(newLogger()))
	results := make([]*validationResult, 0, len(files))
	allValid := true

	for _, file := range files {
		result := &validationResult{File: file, Valid: true}

		r := pipeline.ProcessFile(ctx, file)
		if r.Err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, r.Err.Error())
		} else {
			result.Type = r.DocumentType.String()
			result.Issues = r.Document.Issues
			result.Valid = len(result.Issues) == 0
		}

		if !result.Valid {
			allValid = false
		}
		results = append(results, result)
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID (%s)\n", r.File, r.Type)
			} else {
				fmt.Printf("✗ %s: INVALID\n", r.File)
				for _, e := range r.Errors {
					fmt.Printf("  - %s\n", e)
				}
			}
			for _, issue := range r.Issues {
				fmt.Printf("  ⚠ %s: %s\n", issue.Field, issue.Message)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}
