package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabcheck/tabcheck/internal/dataset"
)

func TestFindDuplicatesGroupsNormalizedEmails(t *testing.T) {
	ds := dataset.New("contacts",
		[]string{"email", "phone"},
		[][]string{
			{"John.Doe@Email.com", "111-2233"},
			{"john.doe@email.com ", "444-5566"},
			{"other@example.com", "777-8899"},
		})

	issues, notes := FindDuplicates(ds, fixedOptions())
	assert.Empty(t, notes)

	emails := filterCategory(issues, CategoryDuplicateEmail)
	require.Len(t, emails, 1)
	assert.Equal(t, []int{0, 1}, emails[0].Records)
	assert.Contains(t, emails[0].Description, `"john.doe@email.com"`)
}

func TestFindDuplicatesGroupsNormalizedPhones(t *testing.T) {
	ds := dataset.New("contacts",
		[]string{"email", "phone"},
		[][]string{
			{"a@example.com", "(555) 741-0123"},
			{"b@example.com", "555.741.0123"},
			{"c@example.com", "5557410123"},
			{"d@example.com", "555-999-0000"},
		})

	issues, _ := FindDuplicates(ds, fixedOptions())
	phones := filterCategory(issues, CategoryDuplicatePhone)
	require.Len(t, phones, 1)
	assert.Equal(t, []int{0, 1, 2}, phones[0].Records)
	assert.Equal(t, SeverityHigh, phones[0].Severity, "groups of three are high severity")
}

func TestDuplicateSeverityThreshold(t *testing.T) {
	// Two shared values out of 50 records sits below the 5% high bound.
	rows := make([][]string, 50)
	for i := range rows {
		rows[i] = []string{emailFor(i)}
	}
	rows[7][0] = rows[3][0]
	ds := dataset.New("roster", []string{"email"}, rows)

	issues, _ := FindDuplicates(ds, fixedOptions())
	emails := filterCategory(issues, CategoryDuplicateEmail)
	require.Len(t, emails, 1)
	assert.Equal(t, SeverityMedium, emails[0].Severity)
}

func TestCrossFieldDuplicates(t *testing.T) {
	ds := dataset.New("contacts",
		[]string{"email", "phone"},
		[][]string{
			{"shared@example.com", "555-0001111"},
			{"shared@example.com", "555-0001111"},
			{"solo@example.com", "555-0001111"},
		})

	issues, _ := FindDuplicates(ds, fixedOptions())
	cross := filterCategory(issues, CategoryCrossFieldDuplicate)
	require.Len(t, cross, 1)
	assert.Equal(t, SeverityMedium, cross[0].Severity)
	assert.Equal(t, []int{0, 1}, cross[0].Records)
}

func TestFindDuplicatesMissingColumns(t *testing.T) {
	ds := dataset.New("bare",
		[]string{"name"},
		[][]string{{"A"}, {"B"}})

	issues, notes := FindDuplicates(ds, fixedOptions())
	assert.Empty(t, issues)
	assert.Contains(t, notes, "skipped: missing column email")
	assert.Contains(t, notes, "skipped: missing column phone")
}

func TestFindDuplicatesReportsUnparseableValues(t *testing.T) {
	ds := dataset.New("contacts",
		[]string{"email"},
		[][]string{
			{"not-an-email"},
			{"x@example.com"},
			{"x@example.com"},
			{""},
		})

	issues, notes := FindDuplicates(ds, fixedOptions())
	require.Len(t, filterCategory(issues, CategoryDuplicateEmail), 1)
	require.Len(t, notes, 2)
	assert.Contains(t, notes[1], "could not be normalized")
}

func filterCategory(issues []Issue, cat Category) []Issue {
	var out []Issue
	for _, is := range issues {
		if is.Category == cat {
			out = append(out, is)
		}
	}
	return out
}

func emailFor(i int) string {
	return string(rune('a'+i%26)) + string(rune('a'+i/26)) + "@example.com"
}
