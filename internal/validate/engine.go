// Package validate is the rule-based analysis core: it inspects an immutable
// dataset for duplicate identities, statistical anomalies, and business-rule
// violations, and folds the findings into one severity-scored report. It
// performs no I/O and holds no state between runs.
package validate

import "github.com/tabcheck/tabcheck/internal/dataset"

// Run executes the full validation pass over ds. It is a pure function of
// (dataset, options): the three detectors share no state, and the aggregator
// imposes a deterministic ordering, so repeated runs over the same inputs
// yield the same report.
func Run(ds *dataset.Dataset, opt Options) (*Report, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if opt.MaxRecords > 0 && ds.Len() > opt.MaxRecords {
		return nil, &DatasetTooLargeError{Records: ds.Len(), Limit: opt.MaxRecords}
	}

	var issues []Issue
	var notes []string

	dup, dupNotes := FindDuplicates(ds, opt)
	issues = append(issues, dup...)
	notes = append(notes, dupNotes...)

	pat, patNotes := AnalyzePatterns(ds, opt)
	issues = append(issues, pat...)
	notes = append(notes, patNotes...)

	biz, bizNotes := ValidateBusinessLogic(ds, opt)
	issues = append(issues, biz...)
	notes = append(notes, bizNotes...)

	return aggregate(issues, ds.Len(), dedupeNotes(notes), opt), nil
}

// dedupeNotes drops repeated skip notes; the same missing column can be
// reported by more than one detector.
func dedupeNotes(notes []string) []string {
	seen := make(map[string]bool, len(notes))
	out := notes[:0]
	for _, n := range notes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
