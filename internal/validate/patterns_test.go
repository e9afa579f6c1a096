package validate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabcheck/tabcheck/internal/dataset"
)

func ageDataset(t *testing.T, ages []string) *dataset.Dataset {
	t.Helper()
	rows := make([][]string, len(ages))
	for i, a := range ages {
		rows[i] = []string{a}
	}
	return dataset.New("ages", []string{"age"}, rows)
}

func dateDataset(t *testing.T, col string, dates []string) *dataset.Dataset {
	t.Helper()
	rows := make([][]string, len(dates))
	for i, d := range dates {
		rows[i] = []string{d}
	}
	return dataset.New("dates", []string{col}, rows)
}

func TestNonIntegerAgesLowBelowThreshold(t *testing.T) {
	ages := make([]string, 60)
	for i := range ages {
		ages[i] = fmt.Sprintf("%d", 21+i%37)
	}
	ages[10] = "31.3214"
	ages[40] = "31.3214"

	issues, _ := AnalyzePatterns(ageDataset(t, ages), fixedOptions())
	fractional := filterCategory(issues, CategoryNonIntegerAge)
	require.Len(t, fractional, 1)
	assert.Equal(t, SeverityLow, fractional[0].Severity)
	assert.Equal(t, []int{10, 40}, fractional[0].Records)
}

func TestNonIntegerAgesMediumAboveThreshold(t *testing.T) {
	ages := make([]string, 60)
	for i := range ages {
		ages[i] = fmt.Sprintf("%d", 21+i%37)
		if i%10 == 0 {
			ages[i] = "27.5"
		}
	}

	issues, _ := AnalyzePatterns(ageDataset(t, ages), fixedOptions())
	fractional := filterCategory(issues, CategoryNonIntegerAge)
	require.Len(t, fractional, 1)
	assert.Equal(t, SeverityMedium, fractional[0].Severity)
	assert.Len(t, fractional[0].Records, 6)
}

func TestAgeRoundingBias(t *testing.T) {
	cases := []struct {
		name string
		ages []string
		want Severity
	}{
		{
			name: "half rounded is medium",
			ages: []string{"25", "30", "35", "40", "45", "23", "27", "31", "38", "41"},
			want: SeverityMedium,
		},
		{
			name: "mostly rounded is high",
			ages: []string{"25", "30", "35", "40", "45", "50", "55", "31", "38", "41"},
			want: SeverityHigh,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issues, _ := AnalyzePatterns(ageDataset(t, tc.ages), fixedOptions())
			rounded := filterCategory(issues, CategoryAgeRoundingBias)
			require.Len(t, rounded, 1)
			assert.Equal(t, tc.want, rounded[0].Severity)
		})
	}
}

func TestAgeRoundingBiasNotFlaggedForNaturalSpread(t *testing.T) {
	ages := []string{"25", "30", "23", "27", "31", "38", "41", "29", "33", "46"}
	issues, _ := AnalyzePatterns(ageDataset(t, ages), fixedOptions())
	assert.Empty(t, filterCategory(issues, CategoryAgeRoundingBias))
}

func TestDateClusteringSeverityBands(t *testing.T) {
	scatter := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("%d-%02d-%02d", 2010+i%12, 2+i%10, 3+i%25)
		}
		return out
	}

	t.Run("join column cluster below high bound is low", func(t *testing.T) {
		dates := scatter(30)
		for _, i := range []int{0, 7, 14, 21} {
			dates[i] = "2017-08-14"
		}
		issues, _ := AnalyzePatterns(dateDataset(t, "join_date", dates), fixedOptions())
		clusters := filterCategory(issues, CategoryDateClustering)
		require.Len(t, clusters, 1)
		assert.Equal(t, SeverityLow, clusters[0].Severity)
		assert.Equal(t, []int{0, 7, 14, 21}, clusters[0].Records)
	})

	t.Run("non-join column cluster is medium", func(t *testing.T) {
		dates := scatter(30)
		for _, i := range []int{0, 7, 14, 21} {
			dates[i] = "1991-06-15"
		}
		issues, _ := AnalyzePatterns(dateDataset(t, "birth_date", dates), fixedOptions())
		clusters := filterCategory(issues, CategoryDateClustering)
		require.Len(t, clusters, 1)
		assert.Equal(t, SeverityMedium, clusters[0].Severity)
	})

	t.Run("cluster at high bound is high everywhere", func(t *testing.T) {
		dates := scatter(30)
		for _, i := range []int{0, 6, 12, 18, 24} {
			dates[i] = "2017-08-14"
		}
		issues, _ := AnalyzePatterns(dateDataset(t, "join_date", dates), fixedOptions())
		clusters := filterCategory(issues, CategoryDateClustering)
		require.Len(t, clusters, 1)
		assert.Equal(t, SeverityHigh, clusters[0].Severity)
	})
}

func TestDefaultDatePattern(t *testing.T) {
	dates := []string{
		"2018-01-01", "2019-01-01", "2020-01-01", "2021-01-01",
		"2012-03-05", "2012-11-17", "2013-02-09", "2013-07-19", "2014-01-22",
		"2014-09-30", "2015-04-11", "2015-10-06", "2016-02-25", "2016-06-13",
		"2018-03-08", "2018-12-03", "2019-05-27", "2019-09-16", "2020-02-14",
		"2020-07-21", "2020-11-09", "2021-03-29", "2021-08-05", "2022-01-18",
		"2022-06-24", "2022-10-12", "2023-02-07", "2023-09-25", "2024-04-03",
		"2024-10-28",
	}

	issues, _ := AnalyzePatterns(dateDataset(t, "birth_date", dates), fixedOptions())
	defaults := filterCategory(issues, CategoryDefaultDatePattern)
	require.Len(t, defaults, 1)
	assert.Equal(t, SeverityMedium, defaults[0].Severity)
	assert.Equal(t, []int{0, 1, 2, 3}, defaults[0].Records)

	for _, i := range []int{4, 5, 6} {
		dates[i] = fmt.Sprintf("%d-01-01", 2008+i)
	}
	issues, _ = AnalyzePatterns(dateDataset(t, "birth_date", dates), fixedOptions())
	defaults = filterCategory(issues, CategoryDefaultDatePattern)
	require.Len(t, defaults, 1)
	assert.Equal(t, SeverityHigh, defaults[0].Severity)
}

func TestBulkImportDetection(t *testing.T) {
	var dates []string
	var spike []int
	for i := 0; i < 12; i++ {
		spike = append(spike, len(dates))
		dates = append(dates, fmt.Sprintf("2020-05-%02d", i+2))
	}
	for i := 0; i < 18; i++ {
		dates = append(dates, fmt.Sprintf("%d-%02d-10", 2015+i%5, 2+i%10))
	}

	issues, _ := AnalyzePatterns(dateDataset(t, "join_date", dates), fixedOptions())
	bulk := filterCategory(issues, CategoryBulkImportCluster)
	require.Len(t, bulk, 1)
	assert.Equal(t, SeverityLow, bulk[0].Severity)
	assert.Equal(t, spike, bulk[0].Records)
	assert.Contains(t, bulk[0].Description, "2020-05")
}

func TestAnalyzePatternsNotesForMissingInputs(t *testing.T) {
	ds := dataset.New("names", []string{"name"}, [][]string{{"A"}, {"B"}})
	issues, notes := AnalyzePatterns(ds, fixedOptions())
	assert.Empty(t, issues)
	assert.Contains(t, notes, "skipped: missing column age")
	assert.Contains(t, notes, "skipped: no date columns")
}
