package validate

import (
	"fmt"
	"sort"

	"github.com/tabcheck/tabcheck/internal/dataset"
)

// keyGroup is one normalized value shared by two or more records.
type keyGroup struct {
	key     string
	indices []int
}

// FindDuplicates groups records by normalized email and phone keys and emits
// one Issue per shared key. Cross-field correlation (same records sharing
// both email and phone) is a separate secondary check; per-field findings are
// deliberately not merged so each rule stays auditable on its own.
func FindDuplicates(ds *dataset.Dataset, opt Options) ([]Issue, []string) {
	var issues []Issue
	var notes []string

	emails := emailColumns(ds)
	phones := phoneColumns(ds)
	if len(emails) == 0 {
		notes = append(notes, "skipped: missing column email")
	}
	if len(phones) == 0 {
		notes = append(notes, "skipped: missing column phone")
	}

	for _, col := range emails {
		groups, bad := groupByKey(ds, col, NormalizeEmail)
		if bad > 0 {
			notes = append(notes, fmt.Sprintf("column %s: %d values could not be normalized and were excluded from duplicate checks", col, bad))
		}
		for _, g := range groups {
			issues = append(issues, duplicateIssue(ds, opt, CategoryDuplicateEmail, "email", col, g))
		}
	}
	for _, col := range phones {
		groups, bad := groupByKey(ds, col, NormalizePhone)
		if bad > 0 {
			notes = append(notes, fmt.Sprintf("column %s: %d values could not be normalized and were excluded from duplicate checks", col, bad))
		}
		for _, g := range groups {
			issues = append(issues, duplicateIssue(ds, opt, CategoryDuplicatePhone, "phone", col, g))
		}
	}

	if len(emails) > 0 && len(phones) > 0 {
		issues = append(issues, crossFieldDuplicates(ds, emails[0], phones[0])...)
	}
	return issues, notes
}

// groupByKey maps a column's normalized values to record indices and returns
// the groups of size >= 2, ordered by descending size then key. bad counts
// the non-missing values the normalizer rejected.
func groupByKey(ds *dataset.Dataset, col string, normalize func(string) (string, bool)) ([]keyGroup, int) {
	byKey := make(map[string][]int)
	bad := 0
	for i := 0; i < ds.Len(); i++ {
		raw, ok := ds.Value(i, col)
		if !ok {
			continue
		}
		key, ok := normalize(raw)
		if !ok {
			bad++
			continue
		}
		byKey[key] = append(byKey[key], i)
	}
	var groups []keyGroup
	for k, idxs := range byKey {
		if len(idxs) >= 2 {
			groups = append(groups, keyGroup{key: k, indices: idxs})
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].indices) != len(groups[j].indices) {
			return len(groups[i].indices) > len(groups[j].indices)
		}
		return groups[i].key < groups[j].key
	})
	return groups, bad
}

func duplicateIssue(ds *dataset.Dataset, opt Options, cat Category, kind, col string, g keyGroup) Issue {
	frac := float64(len(g.indices)) / float64(ds.Len())
	sev := SeverityMedium
	if frac >= opt.DuplicateHighFraction || len(g.indices) >= 3 {
		sev = SeverityHigh
	}
	return Issue{
		Category: cat,
		Severity: sev,
		Description: fmt.Sprintf("%s %q in column %s is shared by %d records (%.1f%% of dataset)",
			kind, g.key, col, len(g.indices), frac*100),
		Records:  g.indices,
		Examples: recordExamples(ds, g.indices, 3),
	}
}

// crossFieldDuplicates flags record sets that agree on both the normalized
// email and the normalized phone, a stronger signal than either field alone.
func crossFieldDuplicates(ds *dataset.Dataset, emailCol, phoneCol string) []Issue {
	byPair := make(map[[2]string][]int)
	for i := 0; i < ds.Len(); i++ {
		rawE, okE := ds.Value(i, emailCol)
		rawP, okP := ds.Value(i, phoneCol)
		if !okE || !okP {
			continue
		}
		e, okE := NormalizeEmail(rawE)
		p, okP := NormalizePhone(rawP)
		if !okE || !okP {
			continue
		}
		byPair[[2]string{e, p}] = append(byPair[[2]string{e, p}], i)
	}

	var pairs [][2]string
	for pair, idxs := range byPair {
		if len(idxs) >= 2 {
			pairs = append(pairs, pair)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if len(byPair[pairs[i]]) != len(byPair[pairs[j]]) {
			return len(byPair[pairs[i]]) > len(byPair[pairs[j]])
		}
		return pairs[i][0] < pairs[j][0]
	})

	var issues []Issue
	for _, pair := range pairs {
		idxs := byPair[pair]
		issues = append(issues, Issue{
			Category: CategoryCrossFieldDuplicate,
			Severity: SeverityMedium,
			Description: fmt.Sprintf("%d records share both email %q and phone %q",
				len(idxs), pair[0], pair[1]),
			Records:  idxs,
			Examples: recordExamples(ds, idxs, 3),
		})
	}
	return issues
}
