package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

const (
	generatePath = "/v1/report.generate"
	apiKeyHeader = "x-coderabbitai-api-key"

	// On-demand generation always reports over an explicit date range.
	scheduleRangeDates = "Dates"
)

type Client interface {
	// IsConfigured reports whether the client holds a non-empty API key.
	IsConfigured() bool
	// Generate issues one generation call and returns the grouped markdown
	// reports produced by the remote service.
	Generate(ctx context.Context, req domain.ReportRequest) ([]domain.GroupReport, error)
}

type client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func NewClient(cfg domain.ClientConfig) Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = domain.DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}

	return &client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
}

func (c *client) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *client) Generate(ctx context.Context, req domain.ReportRequest) ([]domain.GroupReport, error) {
	if !c.IsConfigured() {
		return nil, &ConfigurationError{Reason: "report client is not configured: no API key resolved"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildPayload(req))
	if err != nil {
		return nil, fmt.Errorf("failed to encode report request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build report request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	res, err := c.http.Do(httpReq)
	if err != nil {
		if timedOut(ctx, err) {
			return nil, &TimeoutError{Timeout: c.timeout}
		}
		return nil, fmt.Errorf("failed to call report API: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		if timedOut(ctx, err) {
			return nil, &TimeoutError{Timeout: c.timeout}
		}
		return nil, fmt.Errorf("failed to read report API response: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, normalizeError(res.StatusCode, raw)
	}

	var envelope generateResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode report API response: %w", err)
	}

	groups := make([]domain.GroupReport, 0, len(envelope.Result.Data))
	for _, g := range envelope.Result.Data {
		groups = append(groups, domain.GroupReport{
			Group:  g.Group,
			Report: g.Report,
		})
	}

	return groups, nil
}

// timedOut reports whether err is the client's own wall-clock deadline. A
// deadline or cancellation the caller brought along on parent is left for
// the caller to interpret.
func timedOut(parent context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil
}

// generatePayload is the wire shape of one generation request. Optional
// fields are dropped from the payload entirely when unset, never sent as
// null.
type generatePayload struct {
	ScheduleRange  string             `json:"scheduleRange"`
	From           string             `json:"from"`
	To             string             `json:"to"`
	Prompt         string             `json:"prompt,omitempty"`
	PromptTemplate string             `json:"promptTemplate,omitempty"`
	GroupBy        string             `json:"groupBy,omitempty"`
	SubgroupBy     string             `json:"subgroupBy,omitempty"`
	Parameters     []parameterPayload `json:"parameters,omitempty"`
	OrgID          string             `json:"orgId,omitempty"`
}

type parameterPayload struct {
	Parameter string   `json:"parameter"`
	Operator  string   `json:"operator"`
	Values    []string `json:"values"`
}

type generateResponse struct {
	Result struct {
		Data []struct {
			Group  string `json:"group"`
			Report string `json:"report"`
		} `json:"data"`
	} `json:"result"`
}

func buildPayload(req domain.ReportRequest) generatePayload {
	payload := generatePayload{
		ScheduleRange:  scheduleRangeDates,
		From:           req.From.Format(domain.DateLayout),
		To:             req.To.Format(domain.DateLayout),
		Prompt:         req.Prompt,
		PromptTemplate: req.PromptTemplate,
		GroupBy:        string(req.GroupBy),
		SubgroupBy:     string(req.SubgroupBy),
		OrgID:          req.OrgID,
	}

	for _, f := range req.Filters {
		payload.Parameters = append(payload.Parameters, parameterPayload{
			Parameter: string(f.Parameter),
			Operator:  string(f.Operator),
			Values:    f.Values,
		})
	}

	return payload
}
