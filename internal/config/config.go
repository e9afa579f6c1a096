// Package config loads and persists global settings. Precedence:
// flags > TABCHECK_* env > ~/.tabcheck/config.yaml > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tabcheck/tabcheck/internal/validate"
)

// Global configuration structure.
type Global struct {
	// AI-assisted cleaning
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Model       string  `mapstructure:"model" yaml:"model"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Validation thresholds
	CompanyFoundingYear         int     `mapstructure:"company_founding_year" yaml:"company_founding_year"`
	MinAge                      int     `mapstructure:"min_age" yaml:"min_age"`
	MaxAge                      int     `mapstructure:"max_age" yaml:"max_age"`
	MaxTenureYears              int     `mapstructure:"max_tenure_years" yaml:"max_tenure_years"`
	MaxRecords                  int     `mapstructure:"max_records" yaml:"max_records"`
	AgeMismatchToleranceYears   float64 `mapstructure:"age_mismatch_tolerance_years" yaml:"age_mismatch_tolerance_years"`
	DuplicateHighFraction       float64 `mapstructure:"duplicate_high_fraction" yaml:"duplicate_high_fraction"`
	RoundingBiasFraction        float64 `mapstructure:"rounding_bias_fraction" yaml:"rounding_bias_fraction"`
	RoundingBiasHighFraction    float64 `mapstructure:"rounding_bias_high_fraction" yaml:"rounding_bias_high_fraction"`
	DateClusterFraction         float64 `mapstructure:"date_cluster_fraction" yaml:"date_cluster_fraction"`
	DateClusterHighFraction     float64 `mapstructure:"date_cluster_high_fraction" yaml:"date_cluster_high_fraction"`
	DefaultDateMediumFraction   float64 `mapstructure:"default_date_medium_fraction" yaml:"default_date_medium_fraction"`
	DefaultDateHighFraction     float64 `mapstructure:"default_date_high_fraction" yaml:"default_date_high_fraction"`
	NonIntegerAgeMediumFraction float64 `mapstructure:"non_integer_age_medium_fraction" yaml:"non_integer_age_medium_fraction"`
	BulkImportSigma             float64 `mapstructure:"bulk_import_sigma" yaml:"bulk_import_sigma"`
	ScoreScaleFactor            float64 `mapstructure:"score_scale_factor" yaml:"score_scale_factor"`
}

// ValidateOptions maps the configured thresholds onto engine options.
func (c *Global) ValidateOptions() validate.Options {
	opt := validate.DefaultOptions()
	opt.CompanyFoundingYear = c.CompanyFoundingYear
	opt.MinAge = c.MinAge
	opt.MaxAge = c.MaxAge
	opt.MaxTenureYears = c.MaxTenureYears
	opt.MaxRecords = c.MaxRecords
	opt.AgeMismatchToleranceYears = c.AgeMismatchToleranceYears
	opt.DuplicateHighFraction = c.DuplicateHighFraction
	opt.RoundingBiasFraction = c.RoundingBiasFraction
	opt.RoundingBiasHighFraction = c.RoundingBiasHighFraction
	opt.DateClusterFraction = c.DateClusterFraction
	opt.DateClusterHighFraction = c.DateClusterHighFraction
	opt.DefaultDateMediumFraction = c.DefaultDateMediumFraction
	opt.DefaultDateHighFraction = c.DefaultDateHighFraction
	opt.NonIntegerAgeMediumFraction = c.NonIntegerAgeMediumFraction
	opt.BulkImportSigma = c.BulkImportSigma
	opt.ScoreScaleFactor = c.ScoreScaleFactor
	return opt
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.tabcheck/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".tabcheck")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABCHECK")
	v.AutomaticEnv()

	// AI defaults
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("base_url", "")
	v.SetDefault("max_tokens", 2000)
	v.SetDefault("temperature", 0.0)
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	// Validation threshold defaults
	def := validate.DefaultOptions()
	v.SetDefault("company_founding_year", def.CompanyFoundingYear)
	v.SetDefault("min_age", def.MinAge)
	v.SetDefault("max_age", def.MaxAge)
	v.SetDefault("max_tenure_years", def.MaxTenureYears)
	v.SetDefault("max_records", def.MaxRecords)
	v.SetDefault("age_mismatch_tolerance_years", def.AgeMismatchToleranceYears)
	v.SetDefault("duplicate_high_fraction", def.DuplicateHighFraction)
	v.SetDefault("rounding_bias_fraction", def.RoundingBiasFraction)
	v.SetDefault("rounding_bias_high_fraction", def.RoundingBiasHighFraction)
	v.SetDefault("date_cluster_fraction", def.DateClusterFraction)
	v.SetDefault("date_cluster_high_fraction", def.DateClusterHighFraction)
	v.SetDefault("default_date_medium_fraction", def.DefaultDateMediumFraction)
	v.SetDefault("default_date_high_fraction", def.DefaultDateHighFraction)
	v.SetDefault("non_integer_age_medium_fraction", def.NonIntegerAgeMediumFraction)
	v.SetDefault("bulk_import_sigma", def.BulkImportSigma)
	v.SetDefault("score_scale_factor", def.ScoreScaleFactor)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".tabcheck")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
