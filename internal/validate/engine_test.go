package validate

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabcheck/tabcheck/internal/dataset"
)

var fixedNow = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func fixedOptions() Options {
	opt := DefaultOptions()
	opt.Now = fixedNow
	return opt
}

// employeeFixture builds a 30-record roster with seeded defects: one email
// shared by 4 records, one by 2, one phone shared by 6 and two by 2, a
// fractional age on 2 records, and a 4-record join-date cluster on
// 2017-08-14. Everything else is clean.
func employeeFixture(t *testing.T) *dataset.Dataset {
	t.Helper()

	ages := []string{
		"34", "27", "42", "31.3214", "29", "33", "26", "38", "41", "23",
		"36", "28", "47", "32", "39", "24", "43", "31.3214", "37", "29",
		"33", "26", "44", "46", "38", "27", "42", "34", "23", "36",
	}
	scattered := []string{
		"2012-03-05", "2012-11-17", "2013-02-09", "2013-07-19", "2014-01-22",
		"2014-09-30", "2015-04-11", "2015-10-06", "2016-02-25", "2016-06-13",
		"2018-03-08", "2018-12-03", "2019-05-27", "2019-09-16", "2020-02-14",
		"2020-07-21", "2020-11-09", "2021-03-29", "2021-08-05", "2022-01-18",
		"2022-06-24", "2022-10-12", "2023-02-07", "2023-09-25", "2024-04-03",
		"2024-10-28",
	}
	clustered := map[int]bool{0: true, 5: true, 11: true, 21: true}

	header := []string{"name", "email", "phone", "age", "birth_date", "join_date"}
	rows := make([][]string, 30)
	next := 0
	for i := range rows {
		email := fmt.Sprintf("emp%02d@email.com", i)
		switch {
		case i < 4:
			email = "adam.scott@email.com"
		case i < 6:
			email = "kelly.white@email.com"
		}
		phone := fmt.Sprintf("416-55%02d", i)
		switch {
		case i < 6:
			phone = "555-7410"
		case i < 8:
			phone = "555-8520"
		case i < 10:
			phone = "555-9630"
		}
		join := "2017-08-14"
		if !clustered[i] {
			join = scattered[next]
			next++
		}
		var age float64
		fmt.Sscanf(ages[i], "%f", &age)
		birth := fmt.Sprintf("%d-03-15", 2025-int(age))
		rows[i] = []string{fmt.Sprintf("Employee %02d", i), email, phone, ages[i], birth, join}
	}
	return dataset.New("employees", header, rows)
}

func cleanFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	header := []string{"name", "email", "phone", "age", "birth_date", "join_date"}
	joins := []string{
		"2013-04-10", "2014-08-22", "2015-12-02", "2016-05-18", "2017-09-07",
		"2018-02-26", "2019-06-30", "2020-10-15", "2021-03-02", "2022-07-11",
	}
	rows := make([][]string, 10)
	for i := range rows {
		age := 26 + i*2
		if age%5 == 0 {
			age++
		}
		rows[i] = []string{
			fmt.Sprintf("Person %d", i),
			fmt.Sprintf("person%d@example.com", i),
			fmt.Sprintf("212-41%02d", i),
			fmt.Sprintf("%d", age),
			fmt.Sprintf("%d-04-20", 2025-age),
			joins[i],
		}
	}
	return dataset.New("clean", header, rows)
}

func issuesByCategory(rep *Report, cat Category) []Issue {
	var out []Issue
	for _, is := range rep.Issues {
		if is.Category == cat {
			out = append(out, is)
		}
	}
	return out
}

func TestRunFindsSeededIssues(t *testing.T) {
	ds := employeeFixture(t)
	rep, err := Run(ds, fixedOptions())
	require.NoError(t, err)
	require.NotNil(t, rep)

	emails := issuesByCategory(rep, CategoryDuplicateEmail)
	require.Len(t, emails, 2)
	assert.Equal(t, SeverityHigh, emails[0].Severity)
	assert.Len(t, emails[0].Records, 4)
	assert.Len(t, emails[1].Records, 2)

	phones := issuesByCategory(rep, CategoryDuplicatePhone)
	require.Len(t, phones, 3)
	assert.Equal(t, SeverityHigh, phones[0].Severity)
	assert.Len(t, phones[0].Records, 6)
	assert.Len(t, phones[1].Records, 2)
	assert.Len(t, phones[2].Records, 2)

	fractional := issuesByCategory(rep, CategoryNonIntegerAge)
	require.Len(t, fractional, 1)
	assert.Equal(t, []int{3, 17}, fractional[0].Records)

	clusters := issuesByCategory(rep, CategoryDateClustering)
	require.Len(t, clusters, 1)
	assert.Equal(t, SeverityLow, clusters[0].Severity)
	assert.Equal(t, []int{0, 5, 11, 21}, clusters[0].Records)

	assert.Empty(t, issuesByCategory(rep, CategoryFutureJoinDate))
	assert.Empty(t, issuesByCategory(rep, CategoryJoinBeforeBirth))
	assert.Empty(t, rep.Notes)

	assert.Equal(t, 30, rep.Summary.TotalRecords)
	assert.Equal(t, len(rep.Issues), rep.Summary.TotalIssues)
	assert.Equal(t, rep.Summary.TotalIssues,
		rep.Summary.HighCount+rep.Summary.MediumCount+rep.Summary.LowCount)
	assert.False(t, rep.Passed())
	assert.GreaterOrEqual(t, rep.Summary.QualityScore, 0.0)
	assert.LessOrEqual(t, rep.Summary.QualityScore, 100.0)
}

func TestRunIssueOrdering(t *testing.T) {
	ds := employeeFixture(t)
	rep, err := Run(ds, fixedOptions())
	require.NoError(t, err)

	lastRank := -1
	for _, is := range rep.Issues {
		require.GreaterOrEqual(t, is.Severity.rank(), lastRank)
		lastRank = is.Severity.rank()
		require.NotEmpty(t, is.Records)
		require.NotEmpty(t, is.Recommendation)
		require.True(t, sortedAscending(is.Records), "records of %s not sorted", is.Category)
	}
}

func sortedAscending(xs []int) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}

func TestRunIsDeterministic(t *testing.T) {
	ds := employeeFixture(t)
	opt := fixedOptions()

	a, err := Run(ds, opt)
	require.NoError(t, err)
	b, err := Run(ds, opt)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	a.RunID, b.RunID = "", ""
	assert.Equal(t, a, b)
}

func TestRunCleanDatasetScoresFull(t *testing.T) {
	rep, err := Run(cleanFixture(t), fixedOptions())
	require.NoError(t, err)
	assert.Empty(t, rep.Issues)
	assert.Equal(t, 100.0, rep.Summary.QualityScore)
	assert.True(t, rep.Passed())
}

func TestRunScoreDropsWithIssues(t *testing.T) {
	clean, err := Run(cleanFixture(t), fixedOptions())
	require.NoError(t, err)
	dirty, err := Run(employeeFixture(t), fixedOptions())
	require.NoError(t, err)
	assert.Less(t, dirty.Summary.QualityScore, clean.Summary.QualityScore)
}

func TestRunMissingColumnsAreNotesNotErrors(t *testing.T) {
	ds := dataset.New("partial",
		[]string{"name", "email"},
		[][]string{
			{"A", "a@example.com"},
			{"B", "a@example.com"},
			{"C", "c@example.com"},
		})
	rep, err := Run(ds, fixedOptions())
	require.NoError(t, err)

	assert.Contains(t, rep.Notes, "skipped: missing column phone")
	assert.Contains(t, rep.Notes, "skipped: missing column age")
	assert.Contains(t, rep.Notes, "skipped: no date columns")
	assert.Empty(t, issuesByCategory(rep, CategoryDuplicatePhone))
	require.Len(t, issuesByCategory(rep, CategoryDuplicateEmail), 1)
}

func TestRunRejectsOversizedDataset(t *testing.T) {
	header := []string{"name", "email"}
	rows := make([][]string, 11)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("P%d", i), fmt.Sprintf("p%d@example.com", i)}
	}
	ds := dataset.New("big", header, rows)

	opt := fixedOptions()
	opt.MaxRecords = 10
	_, err := Run(ds, opt)
	var tooLarge *DatasetTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 11, tooLarge.Records)
	assert.Equal(t, 10, tooLarge.Limit)
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	opt := fixedOptions()
	opt.DuplicateHighFraction = 1.5
	_, err := Run(cleanFixture(t), opt)
	var cfg *ConfigurationError
	require.True(t, errors.As(err, &cfg))
	assert.Equal(t, "duplicate_high_fraction", cfg.Field)
}
