package validate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Severity buckets findings for scoring and triage.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// Category names one kind of data-quality defect.
type Category string

const (
	CategoryDuplicateEmail       Category = "DuplicateEmail"
	CategoryDuplicatePhone       Category = "DuplicatePhone"
	CategoryCrossFieldDuplicate  Category = "CrossFieldDuplicate"
	CategoryNonIntegerAge        Category = "NonIntegerAge"
	CategoryDateClustering       Category = "DateClustering"
	CategoryAgeRoundingBias      Category = "AgeRoundingBias"
	CategoryFutureJoinDate       Category = "FutureJoinDate"
	CategoryJoinBeforeFounding   Category = "JoinBeforeFounding"
	CategoryJoinBeforeBirth      Category = "JoinBeforeBirth"
	CategoryAgeBirthdateMismatch Category = "AgeBirthdateMismatch"
	CategoryUnderageEmployee     Category = "UnderageEmployee"
	CategoryOverageEmployee      Category = "OverageEmployee"
	CategoryExcessiveTenure      Category = "ExcessiveTenure"
	CategoryBulkImportCluster    Category = "BulkImportCluster"
	CategoryDefaultDatePattern   Category = "DefaultDatePattern"
)

// recommendations maps each category to a static remediation hint. Keeping
// the table local keeps report generation deterministic and offline.
var recommendations = map[Category]string{
	CategoryDuplicateEmail:       "Review duplicate emails for data entry errors or legitimate shared accounts; consider a unique email constraint.",
	CategoryDuplicatePhone:       "Review duplicate phone numbers for data entry errors or shared contact lines.",
	CategoryCrossFieldDuplicate:  "Records sharing both email and phone are likely the same identity; review for consolidation.",
	CategoryNonIntegerAge:        "Round ages to whole years or derive age from the birth date as the single source of truth.",
	CategoryDateClustering:       "Investigate clustering around this date; it may reflect a bulk import or a system-generated default.",
	CategoryAgeRoundingBias:      "Ages rounded to multiples of five suggest estimates; prefer computing age from birth dates.",
	CategoryFutureJoinDate:       "Join dates in the future are data entry errors; correct them.",
	CategoryJoinBeforeFounding:   "Verify the company founding year or correct join dates that precede it.",
	CategoryJoinBeforeBirth:      "A join date before the birth date is impossible; correct these records immediately.",
	CategoryAgeBirthdateMismatch: "Stated age disagrees with the birth date; use the birth date as the single source of truth.",
	CategoryUnderageEmployee:     "Review minimum-age policy and data accuracy for records below the working-age floor.",
	CategoryOverageEmployee:      "Review records above the working-age ceiling for entry errors or special arrangements.",
	CategoryExcessiveTenure:      "Employment durations this long usually indicate legacy join-date errors; verify the dates.",
	CategoryBulkImportCluster:    "Month-level spikes suggest bulk imports; document the migration or correct the dates.",
	CategoryDefaultDatePattern:   "January-1st clustering usually means unknown dates were filled with a default; treat them as missing.",
}

// Issue is one detected problem. Records holds the zero-based indices of the
// affected rows, sorted ascending and non-empty.
type Issue struct {
	Category           Category            `json:"category"`
	Severity           Severity            `json:"severity"`
	Description        string              `json:"description"`
	Records            []int               `json:"affected_record_indices"`
	AffectedPercentage float64             `json:"affected_percentage"`
	Examples           []map[string]string `json:"examples,omitempty"`
	Recommendation     string              `json:"recommendation"`
}

// Summary aggregates issue counts and the overall quality score.
type Summary struct {
	TotalRecords int     `json:"total_records"`
	TotalIssues  int     `json:"total_issues"`
	HighCount    int     `json:"high_count"`
	MediumCount  int     `json:"medium_count"`
	LowCount     int     `json:"low_count"`
	QualityScore float64 `json:"quality_score"`
}

// Report is the full outcome of one validation run.
type Report struct {
	RunID   string   `json:"run_id"`
	Summary Summary  `json:"summary"`
	Issues  []Issue  `json:"issues"`
	Notes   []string `json:"notes,omitempty"`
}

// Passed reports whether the run found no HIGH severity issues.
func (r *Report) Passed() bool { return r.Summary.HighCount == 0 }

// severityWeights drive the quality-score penalty per issue.
var severityWeights = map[Severity]float64{
	SeverityHigh:   8,
	SeverityMedium: 4,
	SeverityLow:    1,
}

// aggregate merges detector findings into a single report. Issues are sorted
// by severity, then category, then affected count, so two runs over the same
// inputs produce the same report.
func aggregate(issues []Issue, totalRecords int, notes []string, opt Options) *Report {
	for i := range issues {
		issues[i].Records = dedupeSorted(issues[i].Records)
		if totalRecords > 0 {
			pct := float64(len(issues[i].Records)) / float64(totalRecords) * 100
			issues[i].AffectedPercentage = math.Round(pct*100) / 100
		}
		if issues[i].Recommendation == "" {
			issues[i].Recommendation = recommendations[issues[i].Category]
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity.rank() != b.Severity.rank() {
			return a.Severity.rank() < b.Severity.rank()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if len(a.Records) != len(b.Records) {
			return len(a.Records) > len(b.Records)
		}
		return a.Description < b.Description
	})

	rep := &Report{
		RunID:  uuid.NewString(),
		Issues: issues,
		Notes:  notes,
	}
	rep.Summary.TotalRecords = totalRecords
	rep.Summary.TotalIssues = len(issues)

	penalty := 0.0
	for _, is := range issues {
		switch is.Severity {
		case SeverityHigh:
			rep.Summary.HighCount++
		case SeverityMedium:
			rep.Summary.MediumCount++
		default:
			rep.Summary.LowCount++
		}
		frac := 0.0
		if totalRecords > 0 {
			frac = float64(len(is.Records)) / float64(totalRecords)
		}
		penalty += severityWeights[is.Severity] * math.Min(1, frac*opt.ScoreScaleFactor)
	}
	score := math.Max(0, 100-penalty)
	rep.Summary.QualityScore = math.Round(score*10) / 10
	return rep
}

func dedupeSorted(xs []int) []int {
	if len(xs) == 0 {
		return xs
	}
	sort.Ints(xs)
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// Markdown renders a compact report suitable for terminals or docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[VALIDATION SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Records: %d\n", r.Summary.TotalRecords))
	b.WriteString(fmt.Sprintf("Issues: %d (high %d, medium %d, low %d)\n",
		r.Summary.TotalIssues, r.Summary.HighCount, r.Summary.MediumCount, r.Summary.LowCount))
	b.WriteString(fmt.Sprintf("Quality score: %.1f/100\n", r.Summary.QualityScore))
	if r.Passed() {
		b.WriteString("Verdict: PASS (no high severity issues)\n")
	} else {
		b.WriteString("Verdict: FAIL (high severity issues present)\n")
	}

	if len(r.Issues) > 0 {
		b.WriteString("\n[ISSUES]\n")
		for _, is := range r.Issues {
			b.WriteString(fmt.Sprintf("- [%s] %s: %s (%d records, %.2f%%)\n",
				is.Severity, is.Category, is.Description, len(is.Records), is.AffectedPercentage))
		}

		b.WriteString("\n[RECOMMENDATIONS]\n")
		seen := map[string]bool{}
		for _, sev := range []Severity{SeverityHigh, SeverityMedium, SeverityLow} {
			var items []string
			for _, is := range r.Issues {
				if is.Severity == sev && !seen[is.Recommendation] {
					seen[is.Recommendation] = true
					items = append(items, is.Recommendation)
				}
			}
			if len(items) == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("%s priority:\n", sev))
			for _, it := range items {
				b.WriteString("  - " + it + "\n")
			}
		}
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}
