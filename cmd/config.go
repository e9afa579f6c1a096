package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/tabcheck/tabcheck/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tabcheck configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("api_key: %s\n", mask(cfg.APIKey))
		fmt.Printf("model: %s\n", cfg.Model)
		if cfg.BaseURL != "" {
			fmt.Printf("base_url: %s\n", cfg.BaseURL)
		}
		fmt.Printf("max_tokens: %d\n", cfg.MaxTokens)
		fmt.Printf("temperature: %.3f\n", cfg.Temperature)
		fmt.Printf("company_founding_year: %d\n", cfg.CompanyFoundingYear)
		fmt.Printf("min_age: %d\n", cfg.MinAge)
		fmt.Printf("max_age: %d\n", cfg.MaxAge)
		fmt.Printf("max_tenure_years: %d\n", cfg.MaxTenureYears)
		fmt.Printf("max_records: %d\n", cfg.MaxRecords)
		keys := thresholdKeys(cfg)
		names := make([]string, 0, len(keys))
		for k := range keys {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Printf("%s: %g\n", k, *keys[k])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "api_key":
			cfg.APIKey = val
		case "model":
			cfg.Model = val
		case "base_url":
			cfg.BaseURL = val
		case "max_tokens":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_tokens: %w", err)
			}
			cfg.MaxTokens = i
		case "temperature":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for temperature: %w", err)
			}
			cfg.Temperature = f
		case "company_founding_year":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1800 {
				return fmt.Errorf("invalid year for company_founding_year: %v", val)
			}
			cfg.CompanyFoundingYear = i
		case "min_age":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for min_age: %v", val)
			}
			cfg.MinAge = i
		case "max_age":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_age: %v", val)
			}
			cfg.MaxAge = i
		case "max_tenure_years":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_tenure_years: %v", val)
			}
			cfg.MaxTenureYears = i
		case "max_records":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_records: %v", val)
			}
			cfg.MaxRecords = i
		default:
			target, ok := thresholdKeys(cfg)[key]
			if !ok {
				return fmt.Errorf("unknown key: %s", key)
			}
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			*target = f
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

// thresholdKeys maps the float-valued detector thresholds to their fields.
func thresholdKeys(c *cfgpkg.Global) map[string]*float64 {
	return map[string]*float64{
		"age_mismatch_tolerance_years":    &c.AgeMismatchToleranceYears,
		"duplicate_high_fraction":         &c.DuplicateHighFraction,
		"rounding_bias_fraction":          &c.RoundingBiasFraction,
		"rounding_bias_high_fraction":     &c.RoundingBiasHighFraction,
		"date_cluster_fraction":           &c.DateClusterFraction,
		"date_cluster_high_fraction":      &c.DateClusterHighFraction,
		"default_date_medium_fraction":    &c.DefaultDateMediumFraction,
		"default_date_high_fraction":      &c.DefaultDateHighFraction,
		"non_integer_age_medium_fraction": &c.NonIntegerAgeMediumFraction,
		"bulk_import_sigma":               &c.BulkImportSigma,
		"score_scale_factor":              &c.ScoreScaleFactor,
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
