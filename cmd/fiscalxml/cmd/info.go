package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	xmlparser "github.com/fiscalxml/processor/internal/parser/xml"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show schema information about fiscal XML files",
	Long: `Display detection information for files without full processing.

Shows file metadata, the detected schema family and the marker that
matched.

Examples:
  fiscalxml info nota.xml
  fiscalxml info notas/*.xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no XML files found")
	}

	for _, file := range files {
		printFileInfo(file)
		fmt.Println()
	}
	return nil
}

func printFileInfo(path string) {
	fmt.Printf("File: %s\n", path)

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}
	fmt.Printf("  Size: %d bytes\n", info.Size())
	fmt.Printf("  Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("  Error reading file: %v\n", err)
		return
	}

	det := xmlparser.Detect(data)
	fmt.Printf("  Schema: %s\n", schemaName(det.Type.String()))
	if det.Pattern != "" {
		fmt.Printf("  Matched marker: %q\n", det.Pattern)
	}
}

func schemaName(t string) string {
	switch t {
	case "nfe":
		return "NFe (product invoice, model 55)"
	case "nfce":
		return "NFCe (consumer invoice, model 65)"
	case "cte":
		return "CTe (transport waybill, model 57)"
	case "nfse":
		return "NFSe (municipal service invoice)"
	default:
		return "unknown"
	}
}
