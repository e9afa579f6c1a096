package cmd

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tabcheck/tabcheck/internal/ai"
	"github.com/tabcheck/tabcheck/internal/cleaning"
	"github.com/tabcheck/tabcheck/internal/dataset"
	"github.com/tabcheck/tabcheck/internal/parser"
	"github.com/tabcheck/tabcheck/internal/utils"
)

var (
	cleanOutput     string
	cleanNoAI       bool
	cleanSheetName  string
	cleanSheetIndex int
	cleanDelimiter  string

	cleanNoDedupe   bool
	cleanNoText     bool
	cleanNoFill     bool
	cleanNoTypes    bool
	cleanClip       bool
	cleanClipThresh float64
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Produce a cleaned copy of a dataset",
	Long: `Clean loads a tabular dataset, removes exact duplicate rows, normalizes
messy text, repairs numeric types, fills missing values, and writes the
result as CSV alongside a log of every change.

When an API key is configured, distinct text values are additionally sent to
the configured model for standardization suggestions; --no-ai disables that
step and keeps cleaning fully local.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfig(); err != nil {
			return err
		}
		path := args[0]

		delim, err := parseDelimiterFlag(cleanDelimiter)
		if err != nil {
			return err
		}
		ds, err := parser.LoadFile(path, parser.Options{
			Delimiter:  delim,
			SheetName:  cleanSheetName,
			SheetIndex: cleanSheetIndex,
		})
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}

		var suggester ai.Suggester
		switch {
		case cleanNoAI:
			// local-only cleaning requested
		case cfg.APIKey == "":
			fmt.Fprintln(os.Stderr, "⚠ No API key configured; text standardization runs locally only. Set one with 'tabcheck config set api_key <key>'.")
		default:
			suggester = ai.NewSuggester(newAIClient(), ai.SuggestOptions{
				Model:       cfg.Model,
				MaxTokens:   cfg.MaxTokens,
				Temperature: cfg.Temperature,
			})
		}

		opt := cleaning.DefaultOptions()
		opt.RemoveDuplicates = !cleanNoDedupe
		opt.TextCleaning = !cleanNoText
		opt.FillMissing = !cleanNoFill
		opt.FixTypes = !cleanNoTypes
		opt.ClipOutliers = cleanClip
		if cmd.Flags().Changed("outlier-threshold") {
			opt.OutlierThreshold = cleanClipThresh
		}

		engine := cleaning.New(suggester)
		cleaned, report, err := engine.Clean(cmd.Context(), ds, opt)
		if err != nil {
			return fmt.Errorf("clean %s: %w", path, err)
		}

		out := cleanOutput
		if out == "" {
			out = cleanedPath(path)
		}
		data, err := encodeCSV(cleaned)
		if err != nil {
			return fmt.Errorf("encode cleaned dataset: %w", err)
		}
		if err := utils.SafeWriteFile(out, data); err != nil {
			return fmt.Errorf("write cleaned dataset: %w", err)
		}

		fmt.Printf("✓ Cleaned dataset written to %s (%d rows in, %d rows out)\n", out, report.RowsBefore, report.RowsAfter)
		if len(report.Changes) == 0 {
			fmt.Println("  No changes were necessary.")
		}
		for _, ch := range report.Changes {
			if ch.Column != "" {
				fmt.Printf("  - %s [%s]: %s (%d values)\n", ch.Kind, ch.Column, ch.Detail, ch.Count)
			} else {
				fmt.Printf("  - %s: %s (%d rows)\n", ch.Kind, ch.Detail, ch.Count)
			}
		}
		return nil
	},
}

// cleanedPath derives the default output path: data.csv -> data_cleaned.csv.
// XLSX inputs also come out as CSV.
func cleanedPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "_cleaned.csv"
}

func encodeCSV(ds *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ds.Header()); err != nil {
		return nil, err
	}
	for _, row := range ds.Rows() {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "output path for the cleaned CSV (default <input>_cleaned.csv)")
	cleanCmd.Flags().BoolVar(&cleanNoAI, "no-ai", false, "disable AI-assisted text standardization")
	cleanCmd.Flags().StringVar(&cleanDelimiter, "delimiter", "", "field delimiter for delimited text (single character or 'tab')")
	cleanCmd.Flags().StringVar(&cleanSheetName, "sheet-name", "", "worksheet to load by name (xlsx)")
	cleanCmd.Flags().IntVar(&cleanSheetIndex, "sheet-index", 0, "worksheet to load by 1-based index (xlsx)")
	cleanCmd.Flags().BoolVar(&cleanNoDedupe, "no-dedupe", false, "keep exact duplicate rows")
	cleanCmd.Flags().BoolVar(&cleanNoText, "no-text", false, "skip text normalization")
	cleanCmd.Flags().BoolVar(&cleanNoFill, "no-fill", false, "leave missing values empty")
	cleanCmd.Flags().BoolVar(&cleanNoTypes, "no-types", false, "skip numeric type repair")
	cleanCmd.Flags().BoolVar(&cleanClip, "clip-outliers", false, "clip extreme numeric outliers to a robust range")
	cleanCmd.Flags().Float64Var(&cleanClipThresh, "outlier-threshold", 3.5, "modified z-score beyond which values are clipped")
	rootCmd.AddCommand(cleanCmd)
}
