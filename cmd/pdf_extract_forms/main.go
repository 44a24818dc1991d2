package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/a3tai/mcp-pdf-form-filler/internal/logging"
	"github.com/a3tai/mcp-pdf-form-filler/internal/mapping"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/a3tai/mcp-pdf-form-filler/internal/pdf"
	"github.com/spf13/cobra"
)

var (
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "pdf_extract_forms [flags] <pdf_file>",
	Short: "Print the fillable fields of a PDF and the auto-map proposal for them",
	Long: `pdf_extract_forms reads the AcroForm of a PDF, lists every fillable field with its
fully qualified name, tooltip and type, and shows which entity attribute the
auto-mapper would assign to each field on a form that has no mapping yet.`,
	Example: `  pdf_extract_forms w9.pdf
  pdf_extract_forms --format json forms/vendor-setup.pdf`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		if err := logging.Setup(level, "text", os.Stderr); err != nil {
			return err
		}

		result, err := extractForms(args[0], verbose)
		if err != nil {
			return err
		}

		return outputResults(cmd.OutOrStdout(), result, outputFormat)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text, json")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every field visited during extraction")
}

// FormExtractionResult is the complete result of one run
type FormExtractionResult struct {
	FilePath   string                  `json:"file_path"`
	FieldCount int                     `json:"field_count"`
	Fields     []model.FieldDescriptor `json:"fields"`
	Proposal   mapping.Proposal        `json:"proposal"`
}

func extractForms(pdfPath string, debug bool) (*FormExtractionResult, error) {
	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("file not found: %s", pdfPath)
	}

	fields, err := pdf.NewFieldExtractor(debug).ExtractFromFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to extract form fields: %w", err)
	}

	return &FormExtractionResult{
		FilePath:   absPath,
		FieldCount: len(fields),
		Fields:     fields,
		Proposal:   mapping.NewAutoMapper().Propose(model.Mapping{}, fields),
	}, nil
}

func outputResults(w io.Writer, result *FormExtractionResult, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "text":
		return outputText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func outputText(w io.Writer, result *FormExtractionResult) error {
	if result.FieldCount == 0 {
		_, err := fmt.Fprintln(w, "No form fields detected in the PDF")
		return err
	}

	fmt.Fprintf(w, "Found %d form field(s) in %s\n\n", result.FieldCount, result.FilePath)

	for i, field := range result.Fields {
		fmt.Fprintf(w, "[%d] %s\n", i+1, field.Name)
		fmt.Fprintf(w, "    Type: %s\n", field.Type)
		if field.AlternateName != "" {
			fmt.Fprintf(w, "    Tooltip: %s\n", field.AlternateName)
		}
		if attr, ok := result.Proposal.Mapping[field.Name]; ok {
			fmt.Fprintf(w, "    Auto-map: %s\n", attr)
		}
	}

	_, err := fmt.Fprintf(w, "\nAuto-map proposed %d of %d field(s)\n", result.Proposal.Added, result.FieldCount)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
