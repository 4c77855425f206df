// Package main provides the entry point for the resume parser CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logPretty  bool
)

var rootCmd = &cobra.Command{
	Use:   "resume_parser",
	Short: "Adaptive resume parser",
	Long: "Resume parser turns PDF and DOCX resumes into structured JSON. It analyzes each document's layout, " +
		"routes it to text or vision parsing, validates the result and falls back to a rule-based parser when needed.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "pretty", false, "Human-readable console logs")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
