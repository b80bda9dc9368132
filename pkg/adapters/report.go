package adapters

import (
	"time"

	"github.com/de-tools/report-forge/pkg/models/api"
	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
)

func MapGenerateReportRequestToDomain(req api.GenerateReportRequest, from, to time.Time) domain.ReportRequest {
	domainReq := domain.ReportRequest{
		From:           from,
		To:             to,
		Prompt:         req.Prompt,
		PromptTemplate: req.PromptTemplate,
		GroupBy:        domain.GroupBy(req.GroupBy),
		SubgroupBy:     domain.GroupBy(req.SubgroupBy),
		OrgID:          req.OrgId,
	}

	for _, f := range req.Filters {
		domainReq.Filters = append(domainReq.Filters, domain.FilterConfig{
			Parameter: domain.FilterParameter(f.Parameter),
			Operator:  domain.FilterOperator(f.Operator),
			Values:    append([]string(nil), f.Values...),
		})
	}

	return domainReq
}

func MapReportRequestDomainToApi(req domain.ReportRequest) api.GenerateReportRequest {
	apiReq := api.GenerateReportRequest{
		From:           req.From.Format(domain.DateLayout),
		To:             req.To.Format(domain.DateLayout),
		Prompt:         req.Prompt,
		PromptTemplate: req.PromptTemplate,
		GroupBy:        string(req.GroupBy),
		SubgroupBy:     string(req.SubgroupBy),
		OrgId:          req.OrgID,
	}

	for _, f := range req.Filters {
		apiReq.Filters = append(apiReq.Filters, api.FilterConfig{
			Parameter: string(f.Parameter),
			Operator:  string(f.Operator),
			Values:    append([]string(nil), f.Values...),
		})
	}

	return apiReq
}

func MapGroupReportsDomainToApi(groups []domain.GroupReport) []api.GroupReport {
	if groups == nil {
		return nil
	}

	apiGroups := make([]api.GroupReport, 0, len(groups))
	for _, g := range groups {
		apiGroups = append(apiGroups, api.GroupReport{
			Group:  g.Group,
			Report: g.Report,
		})
	}

	return apiGroups
}

func MapReportStoreToApi(record store.Report) api.StoredReport {
	apiReport := api.StoredReport{
		Id:          record.ID,
		Status:      api.ReportStatus(record.Status),
		Request:     MapReportRequestDomainToApi(record.Request),
		Response:    MapGroupReportsDomainToApi(record.Response),
		CreatedAt:   record.CreatedAt,
		CompletedAt: record.CompletedAt,
		DurationMs:  record.DurationMs,
	}

	if record.Error != nil {
		apiReport.Error = *record.Error
	}

	return apiReport
}

func MapReportPageStoreToApi(page store.ReportPage) api.ReportList {
	list := api.ReportList{
		Total:   page.Total,
		Reports: make([]api.StoredReport, 0, len(page.Reports)),
	}

	for _, r := range page.Reports {
		list.Reports = append(list.Reports, MapReportStoreToApi(r))
	}

	return list
}
