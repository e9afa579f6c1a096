package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabcheck/tabcheck/internal/dataset"
)

func employeeRow(age, birth, join string) []string {
	return []string{age, birth, join}
}

func businessDataset(t *testing.T, rows [][]string) *dataset.Dataset {
	t.Helper()
	return dataset.New("records", []string{"age", "birth_date", "join_date"}, rows)
}

func TestFutureJoinDateIsHigh(t *testing.T) {
	ds := businessDataset(t, [][]string{
		employeeRow("35", "1990-05-10", "2030-02-11"),
		employeeRow("41", "1984-03-22", "2015-06-01"),
	})

	issues, _ := ValidateBusinessLogic(ds, fixedOptions())
	future := filterCategory(issues, CategoryFutureJoinDate)
	require.Len(t, future, 1)
	assert.Equal(t, SeverityHigh, future[0].Severity)
	assert.Equal(t, []int{0}, future[0].Records)
}

func TestJoinBeforeBirthIsAlwaysHigh(t *testing.T) {
	opt := fixedOptions()
	opt.CompanyFoundingYear = 1950

	ds := businessDataset(t, [][]string{
		employeeRow("35", "1990-05-10", "1980-03-01"),
		employeeRow("41", "1984-03-22", "2015-06-01"),
	})

	issues, _ := ValidateBusinessLogic(ds, opt)
	impossible := filterCategory(issues, CategoryJoinBeforeBirth)
	require.Len(t, impossible, 1)
	assert.Equal(t, SeverityHigh, impossible[0].Severity)
	assert.Equal(t, []int{0}, impossible[0].Records)
}

func TestJoinBeforeFoundingIsHigh(t *testing.T) {
	ds := businessDataset(t, [][]string{
		employeeRow("65", "1960-02-02", "1985-06-01"),
	})

	issues, _ := ValidateBusinessLogic(ds, fixedOptions())
	founding := filterCategory(issues, CategoryJoinBeforeFounding)
	require.Len(t, founding, 1)
	assert.Equal(t, SeverityHigh, founding[0].Severity)
}

func TestAgeBirthdateMismatch(t *testing.T) {
	ds := businessDataset(t, [][]string{
		employeeRow("45", "1995-03-15", "2015-06-01"),
		employeeRow("30", "1995-03-15", "2015-06-01"),
		employeeRow("31", "1995-03-15", "2015-06-01"),
	})

	issues, _ := ValidateBusinessLogic(ds, fixedOptions())
	mismatch := filterCategory(issues, CategoryAgeBirthdateMismatch)
	require.Len(t, mismatch, 1)
	assert.Equal(t, SeverityMedium, mismatch[0].Severity)
	// Row 0 is off by 15 years; rows 1 and 2 sit within the one-year
	// tolerance of the computed age of 30.
	assert.Equal(t, []int{0}, mismatch[0].Records)
}

func TestAgeRangeChecks(t *testing.T) {
	ds := dataset.New("ages", []string{"age"}, [][]string{
		{"15"}, {"34"}, {"95"},
	})

	issues, notes := ValidateBusinessLogic(ds, fixedOptions())

	under := filterCategory(issues, CategoryUnderageEmployee)
	require.Len(t, under, 1)
	assert.Equal(t, []int{0}, under[0].Records)

	over := filterCategory(issues, CategoryOverageEmployee)
	require.Len(t, over, 1)
	assert.Equal(t, []int{2}, over[0].Records)

	assert.Contains(t, notes, "skipped: no birth date column")
	assert.Contains(t, notes, "skipped: no join date column")
}

func TestExcessiveTenure(t *testing.T) {
	opt := fixedOptions()
	opt.CompanyFoundingYear = 1950

	ds := dataset.New("joins", []string{"join_date"}, [][]string{
		{"1960-07-01"},
		{"2010-07-01"},
	})

	issues, _ := ValidateBusinessLogic(ds, opt)
	tenure := filterCategory(issues, CategoryExcessiveTenure)
	require.Len(t, tenure, 1)
	assert.Equal(t, SeverityMedium, tenure[0].Severity)
	assert.Equal(t, []int{0}, tenure[0].Records)
}

func TestBusinessRuleEmissionOrderIsFixed(t *testing.T) {
	ds := businessDataset(t, [][]string{
		employeeRow("35", "1990-05-10", "2030-02-11"), // future join
		employeeRow("15", "2010-04-04", "2024-08-01"), // underage
	})

	issues, _ := ValidateBusinessLogic(ds, fixedOptions())
	require.GreaterOrEqual(t, len(issues), 2)
	assert.Equal(t, CategoryFutureJoinDate, issues[0].Category)
}
