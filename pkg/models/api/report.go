package api

import "time"

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusFailed    ReportStatus = "failed"
)

type FilterConfig struct {
	Parameter string   `json:"parameter"`
	Operator  string   `json:"operator"`
	Values    []string `json:"values"`
}

type GenerateReportRequest struct {
	From           string         `json:"from"`
	To             string         `json:"to"`
	Prompt         string         `json:"prompt,omitempty"`
	PromptTemplate string         `json:"prompt_template,omitempty"`
	GroupBy        string         `json:"group_by,omitempty"`
	SubgroupBy     string         `json:"subgroup_by,omitempty"`
	Filters        []FilterConfig `json:"filters,omitempty"`
	OrgId          string         `json:"org_id,omitempty"`
}

type GroupReport struct {
	Group  string `json:"group"`
	Report string `json:"report"`
}

type StoredReport struct {
	Id          string                `json:"id"`
	Status      ReportStatus          `json:"status"`
	Request     GenerateReportRequest `json:"request"`
	Response    []GroupReport         `json:"response,omitempty"`
	Error       string                `json:"error,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	DurationMs  *int64                `json:"duration_ms,omitempty"`
}

type ReportList struct {
	Total   int            `json:"total"`
	Reports []StoredReport `json:"reports"`
}

type GenerateReportResponse struct {
	Id         string        `json:"id,omitempty"`
	Results    []GroupReport `json:"results"`
	DurationMs int64         `json:"duration_ms"`
}

// Error is the uniform error payload for all endpoints.
type Error struct {
	Error string `json:"error"`
}
