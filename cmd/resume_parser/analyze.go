package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-parser/internal/complexity"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/format"
	"github.com/jonathan/resume-parser/internal/layout"
	"github.com/jonathan/resume-parser/internal/observability"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Show the layout analysis and complexity score for a document",
	Long:  "Run detection, extraction, layout analysis and complexity scoring without calling any model.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	cfg, err := loadConfig(configPath, os.Getenv)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	ft := format.Detect(data, args[0])
	if !ft.Supported() {
		return fmt.Errorf("unsupported file type %q", ft)
	}

	extractor, err := extraction.ForType(ft, extraction.Options{AugmentFonts: true, Logger: logger})
	if err != nil {
		return err
	}
	structure, err := extractor.ExtractWithStructure(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("failed to extract document structure: %w", err)
	}

	model := layout.Analyze(structure, ft, layout.DefaultOptions())
	report := complexity.ScoreWithThreshold(structure, model, ft, cfg.VisionThreshold)

	printer := observability.NewPrinter(cmd.OutOrStdout())
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "File type: %s, pages: %d\n", ft, structure.PageCount())
	printer.PrintLayout(model)
	printer.PrintComplexity(report)
	return nil
}
