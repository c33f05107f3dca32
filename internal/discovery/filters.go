// Package discovery finds new companies and contacts through the Crustdata
// screener APIs and feeds them into the screening queue.
package discovery

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/icp-screener/pkg/crustdata"
)

// FilterInput is one saved or CLI-supplied filter row: a company database
// field, an operator, and a value. Values round-trip through saved_filters
// as JSON, so Value is left loosely typed.
type FilterInput struct {
	Field    string `json:"field_key"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// ParseFilterInputs decodes a saved filter preset.
func ParseFilterInputs(raw string) ([]FilterInput, error) {
	var inputs []FilterInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, eris.Wrap(err, "discovery: parse filter preset")
	}
	return inputs, nil
}

// employeeRanges maps the UI's employee-range buckets to headcount bounds.
// A zero upper bound means unbounded.
var employeeRanges = map[string][2]int{
	"1-10":       {1, 10},
	"11-50":      {11, 50},
	"51-200":     {51, 200},
	"201-500":    {201, 500},
	"501-1000":   {501, 1000},
	"1001-5000":  {1001, 5000},
	"5001-10000": {5001, 10000},
	"10001+":     {10001, 0},
}

// BuildCompanyFilters turns filter rows into a company database condition
// tree. Employee-range buckets fold into numeric latest_count bounds (the
// widest span across selected buckets), and every known domain is excluded
// so discovery only surfaces companies not already in the database.
// Returns nil when no usable condition remains.
func BuildCompanyFilters(inputs []FilterInput, excludeDomains []string) *crustdata.Condition {
	var conditions []crustdata.Condition

	for _, f := range inputs {
		if f.Field == "" || emptyValue(f.Value) {
			continue
		}

		if f.Field == "employee_count_range" {
			conditions = append(conditions, foldEmployeeRanges(toStrings(f.Value))...)
			continue
		}

		conditions = append(conditions, crustdata.Condition{
			FilterType: f.Field,
			Type:       f.Operator,
			Value:      f.Value,
		})
	}

	if len(excludeDomains) > 0 {
		conditions = append(conditions, crustdata.Condition{
			FilterType: "company_website_domain",
			Type:       "not_in",
			Value:      excludeDomains,
		})
	}

	if len(conditions) == 0 {
		return nil
	}
	return crustdata.And(conditions...)
}

// foldEmployeeRanges collapses selected buckets into at most two numeric
// conditions: a lower bound from the smallest bucket and an upper bound from
// the largest, with "10001+" removing the upper bound entirely.
func foldEmployeeRanges(buckets []string) []crustdata.Condition {
	min, max := 0, 0
	unbounded := false
	seen := false
	for _, b := range buckets {
		bounds, ok := employeeRanges[b]
		if !ok {
			continue
		}
		if !seen || bounds[0] < min {
			min = bounds[0]
		}
		seen = true
		if bounds[1] == 0 {
			unbounded = true
		} else if bounds[1] > max {
			max = bounds[1]
		}
	}
	if !seen {
		return nil
	}

	conds := []crustdata.Condition{
		{FilterType: "employee_metrics.latest_count", Type: "=>", Value: min},
	}
	if !unbounded {
		conds = append(conds, crustdata.Condition{
			FilterType: "employee_metrics.latest_count", Type: "=<", Value: max,
		})
	}
	return conds
}

// PeopleQuery describes a person database search scoped to one or more
// company domains.
type PeopleQuery struct {
	Domains             []string `json:"domains"`
	Titles              []string `json:"titles,omitempty"`
	Functions           []string `json:"functions,omitempty"`
	VerifiedEmailOnly   bool     `json:"verified_email_only,omitempty"`
	RecentlyChangedJobs bool     `json:"recently_changed_jobs,omitempty"`
}

// BuildPeopleFilters turns a people query into a person database condition
// tree. A single domain uses "=" (case-insensitive), multiple use "in";
// titles match fuzzily, OR-ed across separate conditions because the fuzzy
// operator does not support alternation inside one value. Returns nil when
// no domain is given.
func BuildPeopleFilters(q PeopleQuery) *crustdata.Condition {
	domains := nonEmpty(q.Domains)
	if len(domains) == 0 {
		return nil
	}

	var conditions []crustdata.Condition
	if len(domains) == 1 {
		conditions = append(conditions, crustdata.Condition{
			Column: "current_employers.company_website_domain", Type: "=", Value: domains[0],
		})
	} else {
		conditions = append(conditions, crustdata.Condition{
			Column: "current_employers.company_website_domain", Type: "in", Value: domains,
		})
	}

	if titles := nonEmpty(q.Titles); len(titles) > 0 {
		if len(titles) == 1 {
			conditions = append(conditions, crustdata.Condition{
				Column: "current_employers.title", Type: "(.)", Value: titles[0],
			})
		} else {
			group := make([]crustdata.Condition, 0, len(titles))
			for _, t := range titles {
				group = append(group, crustdata.Condition{
					Column: "current_employers.title", Type: "(.)", Value: t,
				})
			}
			conditions = append(conditions, crustdata.Or(group...))
		}
	}

	if funcs := nonEmpty(q.Functions); len(funcs) > 0 {
		conditions = append(conditions, crustdata.Condition{
			Column: "current_employers.function_category", Type: "in", Value: funcs,
		})
	}

	if q.VerifiedEmailOnly {
		conditions = append(conditions, crustdata.Condition{
			Column: "current_employers.business_email_verified", Type: "=", Value: true,
		})
	}

	if q.RecentlyChangedJobs {
		conditions = append(conditions, crustdata.Condition{
			Column: "recently_changed_jobs", Type: "=", Value: true,
		})
	}

	return crustdata.And(conditions...)
}

func emptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}

// toStrings flattens the value shapes JSON decoding produces for
// multi-select filters.
func toStrings(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case string:
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
