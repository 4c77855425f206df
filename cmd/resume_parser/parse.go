package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-parser/internal/observability"
	"github.com/jonathan/resume-parser/internal/pipeline"
	"github.com/jonathan/resume-parser/internal/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a PDF or DOCX resume into structured JSON",
	Long:  "Parse a resume document and print the ParseResult as JSON, or a formatted summary with --verbose.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var (
	parseOutputFile string
	parseVerbose    bool
)

func init() {
	parseCmd.Flags().StringVarP(&parseOutputFile, "out", "o", "", "Write the JSON result to this file instead of stdout")
	parseCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print pipeline progress and a formatted summary")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	var result *types.ParseResult
	if parseVerbose {
		printer := observability.NewPrinter(cmd.OutOrStdout())
		result = a.pipeline.ParseResumeWithProgress(cmd.Context(), data, filepath.Base(args[0]), func(e pipeline.ProgressEvent) {
			printer.PrintProgress(e.Step, e.Message)
		})
		printer.PrintMetadata(result.Metadata)
		if result.Success {
			printer.PrintParsedResume(result.Data)
		}
		printer.PrintIssues(result.Metadata.Issues)
	} else {
		result = a.pipeline.ParseResume(cmd.Context(), data, filepath.Base(args[0]))
	}

	if !parseVerbose || parseOutputFile != "" {
		if err := writeResult(cmd, result); err != nil {
			return err
		}
	}

	if !result.Success {
		return fmt.Errorf("parse failed (%s): %s", result.Metadata.ParsingMethod, result.Error)
	}
	return nil
}

func writeResult(cmd *cobra.Command, result *types.ParseResult) error {
	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if parseOutputFile == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		return err
	}
	if err := os.WriteFile(parseOutputFile, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Output: %s\n", parseOutputFile)
	return nil
}
