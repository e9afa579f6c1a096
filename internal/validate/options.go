package validate

import "time"

// Options holds every tunable threshold of the validation engine. All
// percentage boundaries live here; the detectors never hardcode one.
type Options struct {
	// CompanyFoundingYear anchors the earliest plausible join date.
	CompanyFoundingYear int
	// MinAge and MaxAge bound the plausible working-age range.
	MinAge int
	MaxAge int
	// MaxTenureYears is the longest plausible employment duration.
	MaxTenureYears int
	// MaxRecords guards against oversized inputs; 0 disables the guard.
	MaxRecords int
	// AgeMismatchToleranceYears absorbs rounding at year boundaries when
	// comparing stated age against age computed from the birth date.
	AgeMismatchToleranceYears float64

	// DuplicateHighFraction: a duplicate group covering at least this
	// fraction of the dataset is HIGH severity.
	DuplicateHighFraction float64
	// RoundingBiasFraction / RoundingBiasHighFraction: fraction of ages
	// divisible by 5 that triggers a MEDIUM / HIGH rounding-bias finding.
	RoundingBiasFraction     float64
	RoundingBiasHighFraction float64
	// DateClusterFraction / DateClusterHighFraction: fraction of records on
	// a single date that triggers a clustering finding / raises it to HIGH.
	DateClusterFraction     float64
	DateClusterHighFraction float64
	// DefaultDateMediumFraction / DefaultDateHighFraction: fraction of
	// January-1st dates that triggers a MEDIUM / HIGH default-date finding.
	DefaultDateMediumFraction float64
	DefaultDateHighFraction   float64
	// NonIntegerAgeMediumFraction raises fractional-age findings from LOW
	// to MEDIUM once this share of records is affected.
	NonIntegerAgeMediumFraction float64
	// BulkImportSigma: month buckets more than this many standard
	// deviations above the monthly mean are flagged as bulk imports.
	BulkImportSigma float64
	// ScoreScaleFactor controls how quickly an issue's affected fraction
	// saturates its severity penalty in the quality score.
	ScoreScaleFactor float64

	// Now is the processing date; zero means time.Now(). Fixing it makes a
	// validation run a pure function of its inputs.
	Now time.Time
}

// DefaultOptions returns the calibrated defaults.
func DefaultOptions() Options {
	return Options{
		CompanyFoundingYear:         1990,
		MinAge:                      16,
		MaxAge:                      80,
		MaxTenureYears:              50,
		MaxRecords:                  500000,
		AgeMismatchToleranceYears:   1,
		DuplicateHighFraction:       0.05,
		RoundingBiasFraction:        0.40,
		RoundingBiasHighFraction:    0.60,
		DateClusterFraction:         0.10,
		DateClusterHighFraction:     0.15,
		DefaultDateMediumFraction:   0.10,
		DefaultDateHighFraction:     0.20,
		NonIntegerAgeMediumFraction: 0.05,
		BulkImportSigma:             2,
		ScoreScaleFactor:            20,
	}
}

// Validate rejects out-of-range thresholds before any analysis begins.
func (o Options) Validate() error {
	fractions := []struct {
		name  string
		value float64
	}{
		{"duplicate_high_fraction", o.DuplicateHighFraction},
		{"rounding_bias_fraction", o.RoundingBiasFraction},
		{"rounding_bias_high_fraction", o.RoundingBiasHighFraction},
		{"date_cluster_fraction", o.DateClusterFraction},
		{"date_cluster_high_fraction", o.DateClusterHighFraction},
		{"default_date_medium_fraction", o.DefaultDateMediumFraction},
		{"default_date_high_fraction", o.DefaultDateHighFraction},
		{"non_integer_age_medium_fraction", o.NonIntegerAgeMediumFraction},
	}
	for _, f := range fractions {
		if f.value < 0 || f.value > 1 {
			return &ConfigurationError{Field: f.name, Reason: "must be a fraction in [0, 1]"}
		}
	}
	if o.CompanyFoundingYear <= 0 {
		return &ConfigurationError{Field: "company_founding_year", Reason: "must be positive"}
	}
	if o.MinAge < 0 || o.MaxAge <= o.MinAge {
		return &ConfigurationError{Field: "min_age/max_age", Reason: "require 0 <= min_age < max_age"}
	}
	if o.MaxTenureYears <= 0 {
		return &ConfigurationError{Field: "max_tenure_years", Reason: "must be positive"}
	}
	if o.MaxRecords < 0 {
		return &ConfigurationError{Field: "max_records", Reason: "must be zero or positive"}
	}
	if o.AgeMismatchToleranceYears < 0 {
		return &ConfigurationError{Field: "age_mismatch_tolerance_years", Reason: "must be zero or positive"}
	}
	if o.BulkImportSigma <= 0 {
		return &ConfigurationError{Field: "bulk_import_sigma", Reason: "must be positive"}
	}
	if o.ScoreScaleFactor <= 0 {
		return &ConfigurationError{Field: "score_scale_factor", Reason: "must be positive"}
	}
	return nil
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}
