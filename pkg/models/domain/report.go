package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used across the module, both on the
// wire and in user-facing flags.
const DateLayout = "2006-01-02"

// GroupBy is a grouping dimension for a generated report. An empty value
// means the dimension is not requested.
type GroupBy string

const (
	GroupByRepository GroupBy = "REPOSITORY"
	GroupByLabel      GroupBy = "LABEL"
	GroupByTeam       GroupBy = "TEAM"
	GroupByUser       GroupBy = "USER"
)

type FilterParameter string

const (
	FilterParameterRepository FilterParameter = "REPOSITORY"
	FilterParameterLabel      FilterParameter = "LABEL"
	FilterParameterTeam       FilterParameter = "TEAM"
	FilterParameterUser       FilterParameter = "USER"
)

type FilterOperator string

const (
	FilterOperatorIn    FilterOperator = "IN"
	FilterOperatorNotIn FilterOperator = "NOT_IN"
)

// FilterConfig narrows the activity included in a report, e.g.
// REPOSITORY IN [backend, frontend].
type FilterConfig struct {
	Parameter FilterParameter
	Operator  FilterOperator
	Values    []string
}

// ReportRequest describes one report generation run. Prompt and
// PromptTemplate are mutually exclusive: a request carries either a custom
// prompt or the name of a server-side template, never both.
type ReportRequest struct {
	From           time.Time
	To             time.Time
	Prompt         string
	PromptTemplate string
	GroupBy        GroupBy
	SubgroupBy     GroupBy
	Filters        []FilterConfig
	OrgID          string
}

func (r ReportRequest) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("report request requires both from and to dates")
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("report range end %s precedes start %s",
			r.To.Format(DateLayout), r.From.Format(DateLayout))
	}
	if r.Prompt != "" && r.PromptTemplate != "" {
		return fmt.Errorf("prompt and promptTemplate are mutually exclusive")
	}
	if r.GroupBy != "" {
		if _, err := ParseGroupBy(string(r.GroupBy)); err != nil {
			return err
		}
	}
	if r.SubgroupBy != "" {
		if _, err := ParseGroupBy(string(r.SubgroupBy)); err != nil {
			return err
		}
	}
	for _, f := range r.Filters {
		if _, err := ParseFilterParameter(string(f.Parameter)); err != nil {
			return err
		}
		if _, err := ParseFilterOperator(string(f.Operator)); err != nil {
			return err
		}
		if len(f.Values) == 0 {
			return fmt.Errorf("filter on %s has no values", f.Parameter)
		}
	}
	return nil
}

// GroupReport is one grouping bucket of a generated report. Report holds
// markdown produced by the remote service and is passed through verbatim.
type GroupReport struct {
	Group  string
	Report string
}

var validGroupBys = map[GroupBy]bool{
	GroupByRepository: true,
	GroupByLabel:      true,
	GroupByTeam:       true,
	GroupByUser:       true,
}

var validFilterParameters = map[FilterParameter]bool{
	FilterParameterRepository: true,
	FilterParameterLabel:      true,
	FilterParameterTeam:       true,
	FilterParameterUser:       true,
}

var validFilterOperators = map[FilterOperator]bool{
	FilterOperatorIn:    true,
	FilterOperatorNotIn: true,
}

func ParseGroupBy(s string) (GroupBy, error) {
	g := GroupBy(s)
	if !validGroupBys[g] {
		return "", fmt.Errorf("unsupported grouping dimension: %q", s)
	}
	return g, nil
}

func ParseFilterParameter(s string) (FilterParameter, error) {
	p := FilterParameter(s)
	if !validFilterParameters[p] {
		return "", fmt.Errorf("unsupported filter parameter: %q", s)
	}
	return p, nil
}

func ParseFilterOperator(s string) (FilterOperator, error) {
	op := FilterOperator(s)
	if !validFilterOperators[op] {
		return "", fmt.Errorf("unsupported filter operator: %q", s)
	}
	return op, nil
}
