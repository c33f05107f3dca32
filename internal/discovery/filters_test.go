package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/icp-screener/pkg/crustdata"
)

func TestBuildCompanyFilters_EmployeeRangeFolding(t *testing.T) {
	inputs := []FilterInput{
		{Field: "employee_count_range", Operator: "in", Value: []string{"11-50", "201-500"}},
	}
	cond := BuildCompanyFilters(inputs, nil)
	require.NotNil(t, cond)
	require.Equal(t, "and", cond.Op)
	require.Len(t, cond.Conditions, 2)

	lower := cond.Conditions[0]
	assert.Equal(t, "employee_metrics.latest_count", lower.FilterType)
	assert.Equal(t, "=>", lower.Type)
	assert.Equal(t, 11, lower.Value)

	upper := cond.Conditions[1]
	assert.Equal(t, "=<", upper.Type)
	assert.Equal(t, 500, upper.Value)
}

func TestBuildCompanyFilters_OpenEndedRangeDropsUpperBound(t *testing.T) {
	inputs := []FilterInput{
		{Field: "employee_count_range", Operator: "in", Value: []string{"51-200", "10001+"}},
	}
	cond := BuildCompanyFilters(inputs, nil)
	require.NotNil(t, cond)
	require.Len(t, cond.Conditions, 1)
	assert.Equal(t, "=>", cond.Conditions[0].Type)
	assert.Equal(t, 51, cond.Conditions[0].Value)
}

func TestBuildCompanyFilters_ExcludesKnownDomains(t *testing.T) {
	inputs := []FilterInput{
		{Field: "linkedin_industries", Operator: "in", Value: []string{"Software Development"}},
	}
	cond := BuildCompanyFilters(inputs, []string{"known.io", "other.io"})
	require.NotNil(t, cond)
	require.Len(t, cond.Conditions, 2)

	excl := cond.Conditions[1]
	assert.Equal(t, "company_website_domain", excl.FilterType)
	assert.Equal(t, "not_in", excl.Type)
	assert.Equal(t, []string{"known.io", "other.io"}, excl.Value)
}

func TestBuildCompanyFilters_SkipsEmptyValues(t *testing.T) {
	inputs := []FilterInput{
		{Field: "hq_country", Operator: "=", Value: ""},
		{Field: "linkedin_industries", Operator: "in", Value: []any{}},
	}
	assert.Nil(t, BuildCompanyFilters(inputs, nil))
}

func TestParseFilterInputs(t *testing.T) {
	raw := `[{"field_key":"employee_count_range","operator":"in","value":["11-50"]}]`
	inputs, err := ParseFilterInputs(raw)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "employee_count_range", inputs[0].Field)

	// JSON decoding yields []any; folding still works.
	cond := BuildCompanyFilters(inputs, nil)
	require.NotNil(t, cond)
	assert.Equal(t, 11, cond.Conditions[0].Value)
}

func TestBuildPeopleFilters_SingleDomain(t *testing.T) {
	cond := BuildPeopleFilters(PeopleQuery{Domains: []string{"acme.io"}})
	require.NotNil(t, cond)
	require.Len(t, cond.Conditions, 1)
	assert.Equal(t, "current_employers.company_website_domain", cond.Conditions[0].Column)
	assert.Equal(t, "=", cond.Conditions[0].Type)
	assert.Equal(t, "acme.io", cond.Conditions[0].Value)
}

func TestBuildPeopleFilters_MultiDomainAndTitles(t *testing.T) {
	cond := BuildPeopleFilters(PeopleQuery{
		Domains:             []string{"acme.io", "globex.com"},
		Titles:              []string{"VP Marketing", "Head of Product Marketing"},
		Functions:           []string{"Marketing"},
		VerifiedEmailOnly:   true,
		RecentlyChangedJobs: true,
	})
	require.NotNil(t, cond)
	require.Len(t, cond.Conditions, 5)

	assert.Equal(t, "in", cond.Conditions[0].Type)

	titles := cond.Conditions[1]
	assert.Equal(t, "or", titles.Op)
	require.Len(t, titles.Conditions, 2)
	for _, tc := range titles.Conditions {
		assert.Equal(t, "current_employers.title", tc.Column)
		assert.Equal(t, "(.)", tc.Type)
	}

	assert.Equal(t, crustdata.Condition{
		Column: "current_employers.function_category", Type: "in", Value: []string{"Marketing"},
	}, cond.Conditions[2])
	assert.Equal(t, true, cond.Conditions[3].Value)
	assert.Equal(t, "recently_changed_jobs", cond.Conditions[4].Column)
}

func TestBuildPeopleFilters_NoDomains(t *testing.T) {
	assert.Nil(t, BuildPeopleFilters(PeopleQuery{Titles: []string{"CEO"}}))
}
