package validate

import (
	"fmt"
	"math"
	"time"

	"github.com/tabcheck/tabcheck/internal/dataset"
)

const daysPerYear = 365.25

// businessRuleSeverity is the single category->severity table for the
// cross-field rules. Temporal impossibilities are always HIGH; range and
// tenure checks are MEDIUM.
var businessRuleSeverity = map[Category]Severity{
	CategoryFutureJoinDate:       SeverityHigh,
	CategoryJoinBeforeFounding:   SeverityHigh,
	CategoryJoinBeforeBirth:      SeverityHigh,
	CategoryAgeBirthdateMismatch: SeverityMedium,
	CategoryUnderageEmployee:     SeverityMedium,
	CategoryOverageEmployee:      SeverityMedium,
	CategoryExcessiveTenure:      SeverityMedium,
}

// businessRuleOrder fixes the emission order of coalesced rule findings.
var businessRuleOrder = []Category{
	CategoryFutureJoinDate,
	CategoryJoinBeforeFounding,
	CategoryJoinBeforeBirth,
	CategoryAgeBirthdateMismatch,
	CategoryUnderageEmployee,
	CategoryOverageEmployee,
	CategoryExcessiveTenure,
}

// ValidateBusinessLogic runs the per-record temporal and numeric consistency
// rules. Records violating the same rule are coalesced into one Issue so the
// report does not explode with a line per row.
func ValidateBusinessLogic(ds *dataset.Dataset, opt Options) ([]Issue, []string) {
	var notes []string

	var ageCol string
	hasAge := false
	if c, ok := ageColumn(ds); ok {
		ageCol, hasAge = c, true
	} else {
		notes = append(notes, "skipped: missing column age")
	}

	var birthCol string
	hasBirth := false
	if cols := birthColumns(ds); len(cols) > 0 {
		birthCol, hasBirth = cols[0], true
	} else {
		notes = append(notes, "skipped: no birth date column")
	}

	var joinCol string
	hasJoin := false
	if cols := joinColumns(ds); len(cols) > 0 {
		joinCol, hasJoin = cols[0], true
	} else {
		notes = append(notes, "skipped: no join date column")
	}

	now := opt.now()
	founding := time.Date(opt.CompanyFoundingYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	violations := make(map[Category][]int)

	for i := 0; i < ds.Len(); i++ {
		var (
			age             float64
			birth, join     time.Time
			okAge, okB, okJ bool
		)
		if hasAge {
			age, okAge = ds.Float(i, ageCol)
		}
		if hasBirth {
			birth, okB = ds.Time(i, birthCol)
		}
		if hasJoin {
			join, okJ = ds.Time(i, joinCol)
		}

		if okJ {
			if join.After(now) {
				violations[CategoryFutureJoinDate] = append(violations[CategoryFutureJoinDate], i)
			}
			if join.Before(founding) {
				violations[CategoryJoinBeforeFounding] = append(violations[CategoryJoinBeforeFounding], i)
			}
			if tenure := yearsBetween(join, now); tenure > float64(opt.MaxTenureYears) {
				violations[CategoryExcessiveTenure] = append(violations[CategoryExcessiveTenure], i)
			}
		}
		if okJ && okB && join.Before(birth) {
			violations[CategoryJoinBeforeBirth] = append(violations[CategoryJoinBeforeBirth], i)
		}
		if okAge && okB {
			computed := math.Round(yearsBetween(birth, now))
			if math.Abs(age-computed) > opt.AgeMismatchToleranceYears {
				violations[CategoryAgeBirthdateMismatch] = append(violations[CategoryAgeBirthdateMismatch], i)
			}
		}
		if okAge {
			if age < float64(opt.MinAge) {
				violations[CategoryUnderageEmployee] = append(violations[CategoryUnderageEmployee], i)
			}
			if age > float64(opt.MaxAge) {
				violations[CategoryOverageEmployee] = append(violations[CategoryOverageEmployee], i)
			}
		}
	}

	var issues []Issue
	for _, cat := range businessRuleOrder {
		idxs := violations[cat]
		if len(idxs) == 0 {
			continue
		}
		issues = append(issues, Issue{
			Category:    cat,
			Severity:    businessRuleSeverity[cat],
			Description: businessRuleDescription(cat, len(idxs), opt),
			Records:     idxs,
			Examples:    recordExamples(ds, idxs, 3),
		})
	}
	return issues, notes
}

func businessRuleDescription(cat Category, n int, opt Options) string {
	switch cat {
	case CategoryFutureJoinDate:
		return fmt.Sprintf("%d records have a join date in the future", n)
	case CategoryJoinBeforeFounding:
		return fmt.Sprintf("%d records joined before the company founding year (%d)", n, opt.CompanyFoundingYear)
	case CategoryJoinBeforeBirth:
		return fmt.Sprintf("%d records have a join date before the birth date", n)
	case CategoryAgeBirthdateMismatch:
		return fmt.Sprintf("%d records have a stated age that disagrees with the birth date by more than %.0f year(s)", n, opt.AgeMismatchToleranceYears)
	case CategoryUnderageEmployee:
		return fmt.Sprintf("%d records have an age below %d", n, opt.MinAge)
	case CategoryOverageEmployee:
		return fmt.Sprintf("%d records have an age above %d", n, opt.MaxAge)
	case CategoryExcessiveTenure:
		return fmt.Sprintf("%d records have an employment duration above %d years", n, opt.MaxTenureYears)
	default:
		return fmt.Sprintf("%d records violate rule %s", n, cat)
	}
}

func yearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / daysPerYear
}
