package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabcheck/tabcheck/internal/parser"
	"github.com/tabcheck/tabcheck/internal/utils"
	"github.com/tabcheck/tabcheck/internal/validate"
)

var (
	validateOutput     string
	validateJSON       bool
	validateStrict     bool
	validateDelimiter  string
	validateSheetName  string
	validateSheetIndex int

	validateFoundingYear int
	validateMinAge       int
	validateMaxAge       int
	validateMaxTenure    int
	validateMaxRecords   int
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a CSV or XLSX dataset and produce a quality report",
	Long: `Validate loads a tabular dataset, runs duplicate, pattern, and
business-rule checks, and prints a severity-scored quality report.

By default the report is rendered as markdown to stdout; use --json for the
machine-readable form and -o to write to a file instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfig(); err != nil {
			return err
		}
		path := args[0]

		delim, err := parseDelimiterFlag(validateDelimiter)
		if err != nil {
			return err
		}
		ds, err := parser.LoadFile(path, parser.Options{
			Delimiter:  delim,
			SheetName:  validateSheetName,
			SheetIndex: validateSheetIndex,
		})
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		if debug {
			fmt.Fprintf(os.Stderr, "loaded %d records, %d columns from %s\n", ds.Len(), len(ds.Header()), ds.Name())
		}

		opt := cfg.ValidateOptions()
		f := cmd.Flags()
		if f.Changed("founding-year") {
			opt.CompanyFoundingYear = validateFoundingYear
		}
		if f.Changed("min-age") {
			opt.MinAge = validateMinAge
		}
		if f.Changed("max-age") {
			opt.MaxAge = validateMaxAge
		}
		if f.Changed("max-tenure") {
			opt.MaxTenureYears = validateMaxTenure
		}
		if f.Changed("max-records") {
			opt.MaxRecords = validateMaxRecords
		}

		report, err := validate.Run(ds, opt)
		if err != nil {
			return err
		}

		var out []byte
		if validateJSON {
			out, err = utils.PrettyJSON(report)
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
		} else {
			out = []byte(report.Markdown())
		}

		if validateOutput != "" {
			if err := utils.SafeWriteFile(validateOutput, out); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("✓ Report written to %s\n", validateOutput)
		} else {
			fmt.Println(string(out))
		}

		s := report.Summary
		if report.Passed() {
			fmt.Printf("✓ Quality score %.1f (%d issues, none HIGH)\n", s.QualityScore, s.TotalIssues)
		} else {
			fmt.Printf("⚠ Quality score %.1f (%d issues, %d HIGH)\n", s.QualityScore, s.TotalIssues, s.HighCount)
		}

		if validateStrict && !report.Passed() {
			return fmt.Errorf("strict mode: %d HIGH severity issues found", s.HighCount)
		}
		return nil
	},
}

// parseDelimiterFlag maps the --delimiter flag value to a rune. An empty
// value means infer from the file extension.
func parseDelimiterFlag(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", "\\t":
		return '\t', nil
	default:
		r := []rune(s)
		if len(r) != 1 {
			return 0, fmt.Errorf("invalid delimiter %q: use a single character or 'tab'", s)
		}
		return r[0], nil
	}
}

func init() {
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "", "write report to file instead of stdout")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit the report as JSON")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "exit non-zero when HIGH severity issues are found")
	validateCmd.Flags().StringVar(&validateDelimiter, "delimiter", "", "field delimiter for delimited text (single character or 'tab')")
	validateCmd.Flags().StringVar(&validateSheetName, "sheet-name", "", "worksheet to load by name (xlsx)")
	validateCmd.Flags().IntVar(&validateSheetIndex, "sheet-index", 0, "worksheet to load by 1-based index (xlsx)")
	validateCmd.Flags().IntVar(&validateFoundingYear, "founding-year", 0, "company founding year (overrides config)")
	validateCmd.Flags().IntVar(&validateMinAge, "min-age", 0, "minimum working age (overrides config)")
	validateCmd.Flags().IntVar(&validateMaxAge, "max-age", 0, "maximum working age (overrides config)")
	validateCmd.Flags().IntVar(&validateMaxTenure, "max-tenure", 0, "maximum plausible tenure in years (overrides config)")
	validateCmd.Flags().IntVar(&validateMaxRecords, "max-records", 0, "maximum records accepted, 0 disables the guard (overrides config)")
	rootCmd.AddCommand(validateCmd)
}
