// Package cleaning derives a corrected copy of a dataset: exact-duplicate
// removal, text standardization (optionally AI-assisted), missing-value
// fills, integer coercion, and robust outlier clipping. The input dataset is
// never mutated; every applied change is recorded in the report.
package cleaning

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tabcheck/tabcheck/internal/ai"
	"github.com/tabcheck/tabcheck/internal/dataset"
)

// Options toggles the individual cleaning passes.
type Options struct {
	RemoveDuplicates bool
	TextCleaning     bool
	FillMissing      bool
	FixTypes         bool
	ClipOutliers     bool
	// OutlierThreshold is the robust z-score bound for clipping; zero means
	// the 3.5 default.
	OutlierThreshold float64
	// MaxUniqueForAI caps the distinct values sent per column for
	// AI-assisted standardization; columns above it are cleaned locally only.
	MaxUniqueForAI int
}

// DefaultOptions enables the safe passes; outlier clipping stays opt-in
// because it rewrites legitimate extreme values.
func DefaultOptions() Options {
	return Options{
		RemoveDuplicates: true,
		TextCleaning:     true,
		FillMissing:      true,
		FixTypes:         true,
		ClipOutliers:     false,
		OutlierThreshold: 3.5,
		MaxUniqueForAI:   50,
	}
}

// Change records one applied cleaning action.
type Change struct {
	Kind   string `json:"kind"`
	Column string `json:"column,omitempty"`
	Detail string `json:"detail"`
	Count  int    `json:"count"`
}

// Report is the change log of one cleaning run.
type Report struct {
	RowsBefore int      `json:"rows_before"`
	RowsAfter  int      `json:"rows_after"`
	Changes    []Change `json:"changes"`
}

// Engine runs cleaning passes. The suggester is optional; without one, text
// cleaning is local-only.
type Engine struct {
	suggester ai.Suggester
}

func New(s ai.Suggester) *Engine {
	return &Engine{suggester: s}
}

// Clean returns a corrected copy of ds plus the change log. Passes run in a
// fixed order: dedupe, text, fills, type coercion, clipping; later passes see
// the output of earlier ones.
func (e *Engine) Clean(ctx context.Context, ds *dataset.Dataset, opt Options) (*dataset.Dataset, *Report, error) {
	rows := ds.Rows()
	rep := &Report{RowsBefore: len(rows)}

	if opt.RemoveDuplicates {
		rows = e.removeDuplicates(rows, rep)
	}

	cols := ds.Columns()
	for j, c := range cols {
		switch c.Type {
		case dataset.TypeText:
			if opt.TextCleaning {
				if err := e.cleanTextColumn(ctx, rows, j, c.Name, opt, rep); err != nil {
					return nil, nil, err
				}
			}
		case dataset.TypeNumeric:
			if opt.FixTypes {
				coerceIntegers(rows, j, c.Name, rep)
			}
			if opt.ClipOutliers {
				clipOutliers(rows, j, c.Name, opt.OutlierThreshold, rep)
			}
		}
	}

	if opt.FillMissing {
		for j, c := range cols {
			fillMissing(rows, j, c, rep)
		}
	}

	rep.RowsAfter = len(rows)
	return dataset.New(ds.Name(), ds.Header(), rows), rep, nil
}

// removeDuplicates keeps the first occurrence of each exact row.
func (e *Engine) removeDuplicates(rows [][]string, rep *Report) [][]string {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	removed := 0
	for _, r := range rows {
		key := strings.Join(r, "\x1f")
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	if removed > 0 {
		rep.Changes = append(rep.Changes, Change{
			Kind:   "remove_duplicates",
			Detail: fmt.Sprintf("removed %d exact duplicate row(s)", removed),
			Count:  removed,
		})
	}
	return out
}

// cleanTextColumn trims and collapses whitespace, then applies AI-suggested
// corrections when a suggester is configured and the column's distinct value
// count is within budget. Contact columns are left to the validators'
// normalization rules.
func (e *Engine) cleanTextColumn(ctx context.Context, rows [][]string, col int, name string, opt Options, rep *Report) error {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "email") || strings.Contains(lower, "phone") {
		return nil
	}

	trimmed := 0
	distinct := make(map[string]bool)
	for _, r := range rows {
		v := r[col]
		if v == "" {
			continue
		}
		clean := strings.Join(strings.Fields(v), " ")
		if clean != v {
			r[col] = clean
			trimmed++
		}
		if r[col] != "" {
			distinct[r[col]] = true
		}
	}
	if trimmed > 0 {
		rep.Changes = append(rep.Changes, Change{
			Kind:   "text_cleaning",
			Column: name,
			Detail: fmt.Sprintf("normalized whitespace in %d value(s)", trimmed),
			Count:  trimmed,
		})
	}

	if e.suggester == nil || len(distinct) == 0 || (opt.MaxUniqueForAI > 0 && len(distinct) > opt.MaxUniqueForAI) {
		return nil
	}
	values := make([]string, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	sort.Strings(values)

	mapping, err := e.suggester.SuggestCorrections(ctx, name, values)
	if err != nil {
		return fmt.Errorf("ai text cleaning for column %s: %w", name, err)
	}
	applied := 0
	for _, r := range rows {
		if to, ok := mapping[r[col]]; ok {
			r[col] = to
			applied++
		}
	}
	if applied > 0 {
		rep.Changes = append(rep.Changes, Change{
			Kind:   "ai_standardization",
			Column: name,
			Detail: fmt.Sprintf("standardized %d value(s) across %d distinct form(s)", applied, len(mapping)),
			Count:  applied,
		})
	}
	return nil
}

// coerceIntegers rounds fractional values in columns that are predominantly
// whole numbers (ages, head counts entered with decimals).
func coerceIntegers(rows [][]string, col int, name string, rep *Report) {
	var nums int
	var integral int
	for _, r := range rows {
		v, ok := dataset.ParseNumber(r[col])
		if !ok {
			continue
		}
		nums++
		if v == math.Trunc(v) {
			integral++
		}
	}
	if nums == 0 || integral == nums {
		return
	}
	if float64(integral)/float64(nums) < 0.9 {
		// genuinely fractional column, leave it alone
		return
	}
	rounded := 0
	for _, r := range rows {
		v, ok := dataset.ParseNumber(r[col])
		if !ok || v == math.Trunc(v) {
			continue
		}
		r[col] = strconv.FormatInt(int64(math.Round(v)), 10)
		rounded++
	}
	if rounded > 0 {
		rep.Changes = append(rep.Changes, Change{
			Kind:   "fix_types",
			Column: name,
			Detail: fmt.Sprintf("rounded %d fractional value(s) to whole numbers", rounded),
			Count:  rounded,
		})
	}
}

// clipOutliers pulls robust outliers back to the threshold boundary using
// the modified z-score (0.6745 * (v - median) / MAD).
func clipOutliers(rows [][]string, col int, name string, threshold float64, rep *Report) {
	if threshold <= 0 {
		threshold = 3.5
	}
	var vals []float64
	for _, r := range rows {
		if v, ok := dataset.ParseNumber(r[col]); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) < 8 {
		return
	}
	median, mad := medianMAD(vals)
	if mad == 0 {
		return
	}
	span := threshold * mad / 0.6745
	lo, hi := median-span, median+span

	clipped := 0
	for _, r := range rows {
		v, ok := dataset.ParseNumber(r[col])
		if !ok {
			continue
		}
		switch {
		case v < lo:
			r[col] = formatNumber(lo)
			clipped++
		case v > hi:
			r[col] = formatNumber(hi)
			clipped++
		}
	}
	if clipped > 0 {
		rep.Changes = append(rep.Changes, Change{
			Kind:   "clip_outliers",
			Column: name,
			Detail: fmt.Sprintf("clipped %d value(s) to [%s, %s]", clipped, formatNumber(lo), formatNumber(hi)),
			Count:  clipped,
		})
	}
}

// fillMissing fills empty cells: numeric columns take the median, other
// columns take the most frequent value.
func fillMissing(rows [][]string, col int, c dataset.Column, rep *Report) {
	var missing int
	var nums []float64
	var present []string
	for _, r := range rows {
		if r[col] == "" {
			missing++
			continue
		}
		present = append(present, r[col])
		if c.Type == dataset.TypeNumeric {
			if v, ok := dataset.ParseNumber(r[col]); ok {
				nums = append(nums, v)
			}
		}
	}
	if missing == 0 || len(present) == 0 {
		return
	}

	var fill string
	if c.Type == dataset.TypeNumeric && len(nums) > 0 {
		sort.Float64s(nums)
		fill = formatNumber(quantile(nums, 0.5))
	} else if m, ok := mode(present); ok {
		fill = m
	}
	if fill == "" {
		return
	}
	for _, r := range rows {
		if r[col] == "" {
			r[col] = fill
		}
	}
	rep.Changes = append(rep.Changes, Change{
		Kind:   "fill_missing",
		Column: c.Name,
		Detail: fmt.Sprintf("filled %d missing value(s) with %q", missing, fill),
		Count:  missing,
	})
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
