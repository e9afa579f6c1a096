package validate

import (
	"strings"

	"github.com/tabcheck/tabcheck/internal/dataset"
)

// Column roles are resolved by name, matching the loose conventions of
// exported HR spreadsheets (email, phone_1, join_date, hire_date, dob, ...).

func emailColumns(ds *dataset.Dataset) []string {
	return columnsWhere(ds, func(n string) bool { return strings.Contains(n, "email") })
}

func phoneColumns(ds *dataset.Dataset) []string {
	return columnsWhere(ds, func(n string) bool { return strings.Contains(n, "phone") })
}

func birthColumns(ds *dataset.Dataset) []string {
	return columnsWhere(ds, func(n string) bool {
		return strings.Contains(n, "birth") || n == "dob"
	})
}

func joinColumns(ds *dataset.Dataset) []string {
	return columnsWhere(ds, func(n string) bool {
		return strings.Contains(n, "join") || strings.Contains(n, "hire") || strings.Contains(n, "start")
	})
}

func dateColumns(ds *dataset.Dataset) []string {
	var out []string
	for _, c := range ds.Columns() {
		if c.Type == dataset.TypeDate {
			out = append(out, c.Name)
		}
	}
	return out
}

func ageColumn(ds *dataset.Dataset) (string, bool) {
	for _, c := range ds.Columns() {
		if strings.ToLower(c.Name) == "age" {
			return c.Name, true
		}
	}
	return "", false
}

func isJoinLike(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "join") || strings.Contains(n, "hire") || strings.Contains(n, "start")
}

func columnsWhere(ds *dataset.Dataset, pred func(lowerName string) bool) []string {
	var out []string
	for _, c := range ds.Columns() {
		if pred(strings.ToLower(c.Name)) {
			out = append(out, c.Name)
		}
	}
	return out
}

// recordExamples snapshots up to limit affected rows for a report example.
func recordExamples(ds *dataset.Dataset, indices []int, limit int) []map[string]string {
	if limit > len(indices) {
		limit = len(indices)
	}
	out := make([]map[string]string, 0, limit)
	for _, idx := range indices[:limit] {
		if rec := ds.Record(idx); rec != nil {
			out = append(out, rec)
		}
	}
	return out
}
