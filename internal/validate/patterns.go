package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/tabcheck/tabcheck/internal/dataset"
)

// AnalyzePatterns computes distributional statistics over numeric and date
// columns and flags shapes that real populations rarely produce: rounding
// bias, single-date clusters, default-date fills, fractional ages, and
// month-level import spikes.
func AnalyzePatterns(ds *dataset.Dataset, opt Options) ([]Issue, []string) {
	var issues []Issue
	var notes []string

	if col, ok := ageColumn(ds); ok {
		issues = append(issues, analyzeAgeValues(ds, opt, col)...)
	} else {
		notes = append(notes, "skipped: missing column age")
	}

	dates := dateColumns(ds)
	if len(dates) == 0 {
		notes = append(notes, "skipped: no date columns")
	}
	for _, col := range dates {
		issues = append(issues, analyzeDateClustering(ds, opt, col)...)
		issues = append(issues, analyzeDefaultDates(ds, opt, col)...)
	}
	for _, col := range joinColumns(ds) {
		issues = append(issues, detectBulkImports(ds, opt, col)...)
	}
	return issues, notes
}

// analyzeAgeValues covers rounding bias and fractional values in one pass.
func analyzeAgeValues(ds *dataset.Dataset, opt Options, col string) []Issue {
	var roundedIdx, fractionalIdx []int
	total := 0
	for i := 0; i < ds.Len(); i++ {
		v, ok := ds.Float(i, col)
		if !ok {
			continue
		}
		total++
		if v != math.Trunc(v) {
			fractionalIdx = append(fractionalIdx, i)
			continue
		}
		if int64(v)%5 == 0 {
			roundedIdx = append(roundedIdx, i)
		}
	}
	if total == 0 {
		return nil
	}

	var issues []Issue
	roundedFrac := float64(len(roundedIdx)) / float64(total)
	if roundedFrac > opt.RoundingBiasFraction {
		sev := SeverityMedium
		if roundedFrac > opt.RoundingBiasHighFraction {
			sev = SeverityHigh
		}
		issues = append(issues, Issue{
			Category: CategoryAgeRoundingBias,
			Severity: sev,
			Description: fmt.Sprintf("%.1f%% of %s values are multiples of 5, suggesting estimated rather than computed ages",
				roundedFrac*100, col),
			Records:  roundedIdx,
			Examples: recordExamples(ds, roundedIdx, 3),
		})
	}

	if len(fractionalIdx) > 0 {
		frac := float64(len(fractionalIdx)) / float64(total)
		sev := SeverityLow
		if frac > opt.NonIntegerAgeMediumFraction {
			sev = SeverityMedium
		}
		issues = append(issues, Issue{
			Category: CategoryNonIntegerAge,
			Severity: sev,
			Description: fmt.Sprintf("%d %s values are fractional where whole years are expected",
				len(fractionalIdx), col),
			Records:  fractionalIdx,
			Examples: recordExamples(ds, fractionalIdx, 3),
		})
	}
	return issues
}

// analyzeDateClustering flags any single calendar date that covers an outsized
// share of the column. Clusters on join-like columns below the high bound are
// LOW: a single bulk-hire day is a plausible real event.
func analyzeDateClustering(ds *dataset.Dataset, opt Options, col string) []Issue {
	byDay := make(map[string][]int)
	total := 0
	for i := 0; i < ds.Len(); i++ {
		t, ok := ds.Time(i, col)
		if !ok {
			continue
		}
		day := t.Format("2006-01-02")
		byDay[day] = append(byDay[day], i)
		total++
	}
	if total == 0 {
		return nil
	}

	var days []string
	for day, idxs := range byDay {
		if float64(len(idxs))/float64(total) > opt.DateClusterFraction {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool {
		if len(byDay[days[i]]) != len(byDay[days[j]]) {
			return len(byDay[days[i]]) > len(byDay[days[j]])
		}
		return days[i] < days[j]
	})

	var issues []Issue
	for _, day := range days {
		idxs := byDay[day]
		frac := float64(len(idxs)) / float64(total)
		var sev Severity
		switch {
		case frac >= opt.DateClusterHighFraction:
			sev = SeverityHigh
		case isJoinLike(col):
			sev = SeverityLow
		default:
			sev = SeverityMedium
		}
		issues = append(issues, Issue{
			Category: CategoryDateClustering,
			Severity: sev,
			Description: fmt.Sprintf("date %s appears %d times in column %s (%.1f%% of values)",
				day, len(idxs), col, frac*100),
			Records:  idxs,
			Examples: recordExamples(ds, idxs, 3),
		})
	}
	return issues
}

// analyzeDefaultDates counts January-1st values of any year, the classic
// unknown-date placeholder.
func analyzeDefaultDates(ds *dataset.Dataset, opt Options, col string) []Issue {
	var jan1 []int
	total := 0
	for i := 0; i < ds.Len(); i++ {
		t, ok := ds.Time(i, col)
		if !ok {
			continue
		}
		total++
		if t.Month() == 1 && t.Day() == 1 {
			jan1 = append(jan1, i)
		}
	}
	if total == 0 {
		return nil
	}
	frac := float64(len(jan1)) / float64(total)
	if frac <= opt.DefaultDateMediumFraction {
		return nil
	}
	sev := SeverityMedium
	if frac > opt.DefaultDateHighFraction {
		sev = SeverityHigh
	}
	return []Issue{{
		Category: CategoryDefaultDatePattern,
		Severity: sev,
		Description: fmt.Sprintf("%.1f%% of %s values fall on January 1st, suggesting default-filled dates",
			frac*100, col),
		Records:  jan1,
		Examples: recordExamples(ds, jan1, 3),
	}}
}

// detectBulkImports buckets a join-like date column by month and flags months
// more than BulkImportSigma standard deviations above the monthly mean.
func detectBulkImports(ds *dataset.Dataset, opt Options, col string) []Issue {
	byMonth := make(map[string][]int)
	total := 0
	for i := 0; i < ds.Len(); i++ {
		t, ok := ds.Time(i, col)
		if !ok {
			continue
		}
		month := t.Format("2006-01")
		byMonth[month] = append(byMonth[month], i)
		total++
	}
	if len(byMonth) < 2 {
		return nil
	}

	mean := float64(total) / float64(len(byMonth))
	variance := 0.0
	for _, idxs := range byMonth {
		d := float64(len(idxs)) - mean
		variance += d * d
	}
	variance /= float64(len(byMonth) - 1)
	threshold := mean + opt.BulkImportSigma*math.Sqrt(variance)

	var spikes []string
	var affected []int
	for month, idxs := range byMonth {
		if float64(len(idxs)) > threshold {
			spikes = append(spikes, month)
			affected = append(affected, idxs...)
		}
	}
	if len(spikes) == 0 {
		return nil
	}
	sort.Strings(spikes)
	sort.Ints(affected)
	return []Issue{{
		Category: CategoryBulkImportCluster,
		Severity: SeverityLow,
		Description: fmt.Sprintf("%d month(s) show unusually high %s activity (%s), suggesting bulk imports",
			len(spikes), col, joinMonths(spikes)),
		Records:  affected,
		Examples: recordExamples(ds, affected, 3),
	}}
}

func joinMonths(months []string) string {
	const limit = 5
	if len(months) <= limit {
		return fmt.Sprintf("%v", months)
	}
	return fmt.Sprintf("%v and %d more", months[:limit], len(months)-limit)
}
