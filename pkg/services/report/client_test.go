package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTransport struct {
	calls int
}

func (t *countingTransport) RoundTrip(_ *http.Request) (*http.Response, error) {
	t.calls++
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"result":{"data":[]}}`)),
		Header:     make(http.Header),
	}, nil
}

func testRequest() domain.ReportRequest {
	return domain.ReportRequest{
		From: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateNotConfigured(t *testing.T) {
	transport := &countingTransport{}
	c := &client{
		apiKey:  "",
		baseURL: "https://example.invalid",
		timeout: time.Second,
		http:    &http.Client{Transport: transport},
	}

	_, err := c.Generate(context.Background(), testRequest())

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 0, transport.calls)
}

func TestGenerateInvalidRequestSkipsTransport(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *domain.ReportRequest)
		wantErr string
	}{
		{
			name: "both prompt fields set",
			mutate: func(req *domain.ReportRequest) {
				req.Prompt = "custom"
				req.PromptTemplate = "Daily Standup Report"
			},
			wantErr: "mutually exclusive",
		},
		{
			name: "range end precedes start",
			mutate: func(req *domain.ReportRequest) {
				req.From = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
				req.To = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
			},
			wantErr: "precedes start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &countingTransport{}
			c := &client{
				apiKey:  "cr-key",
				baseURL: "https://example.invalid",
				timeout: time.Second,
				http:    &http.Client{Transport: transport},
			}

			req := testRequest()
			tt.mutate(&req)

			_, err := c.Generate(context.Background(), req)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 0, transport.calls)
		})
	}
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, NewClient(domain.ClientConfig{}).IsConfigured())
	assert.True(t, NewClient(domain.ClientConfig{APIKey: "cr-key"}).IsConfigured())
}

func TestBuildPayloadOmitsUnsetFields(t *testing.T) {
	raw, err := json.Marshal(buildPayload(testRequest()))
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.Equal(t, "Dates", fields["scheduleRange"])
	assert.Equal(t, "2025-07-01", fields["from"])
	assert.Equal(t, "2025-07-14", fields["to"])

	for _, absent := range []string{"prompt", "promptTemplate", "groupBy", "subgroupBy", "parameters", "orgId"} {
		_, ok := fields[absent]
		assert.False(t, ok, "field %q should be omitted when unset", absent)
	}
}

func TestBuildPayloadIncludesSetFields(t *testing.T) {
	req := testRequest()
	req.PromptTemplate = "Daily Standup Report"
	req.GroupBy = domain.GroupByRepository
	req.Filters = []domain.FilterConfig{
		{
			Parameter: domain.FilterParameterRepository,
			Operator:  domain.FilterOperatorIn,
			Values:    []string{"backend", "frontend"},
		},
	}

	payload := buildPayload(req)

	assert.Equal(t, "Daily Standup Report", payload.PromptTemplate)
	assert.Equal(t, "REPOSITORY", payload.GroupBy)
	require.Len(t, payload.Parameters, 1)
	assert.Equal(t, "IN", payload.Parameters[0].Operator)
	assert.Equal(t, []string{"backend", "frontend"}, payload.Parameters[0].Values)
}

func TestGenerateSuccess(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-coderabbitai-api-key")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"data":[
			{"group":"backend","report":"# Backend\nAll quiet."},
			{"group":"frontend","report":"# Frontend\nTwo PRs merged."}
		]}}`))
	}))
	defer server.Close()

	c := NewClient(domain.ClientConfig{
		APIKey:  "cr-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})

	groups, err := c.Generate(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "/v1/report.generate", gotPath)
	assert.Equal(t, "cr-key", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Dates", gotBody["scheduleRange"])
	require.Len(t, groups, 2)
	assert.Equal(t, domain.GroupReport{Group: "backend", Report: "# Backend\nAll quiet."}, groups[0])
	assert.Equal(t, "frontend", groups[1].Group)
}

func TestGenerateApiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"missing key"}`))
	}))
	defer server.Close()

	c := NewClient(domain.ClientConfig{
		APIKey:  "wrong",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})

	_, err := c.Generate(context.Background(), testRequest())

	var apiErr *ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, friendlyMessages["UNAUTHORIZED"], apiErr.Message)
}

func TestGenerateTimeout(t *testing.T) {
	started := time.Now()
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		// Hold the request open until the client gives up.
		<-r.Context().Done()
	}))
	defer server.Close()

	timeout := 50 * time.Millisecond
	c := NewClient(domain.ClientConfig{
		APIKey:  "cr-key",
		BaseURL: server.URL,
		Timeout: timeout,
	})

	_, err := c.Generate(context.Background(), testRequest())

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, timeout, timeoutErr.Timeout)
	assert.GreaterOrEqual(t, time.Since(started), timeout)
}

func TestGenerateTimeoutDuringBodyRead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		// Send the headers and a partial body, then stall until the client
		// gives up.
		_, _ = w.Write([]byte(`{"result":{"data":[`))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	timeout := 50 * time.Millisecond
	c := NewClient(domain.ClientConfig{
		APIKey:  "cr-key",
		BaseURL: server.URL,
		Timeout: timeout,
	})

	_, err := c.Generate(context.Background(), testRequest())

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, timeout, timeoutErr.Timeout)
}

func TestGenerateCallerDeadlineIsNotClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	c := NewClient(domain.ClientConfig{
		APIKey:  "cr-key",
		BaseURL: server.URL,
		Timeout: time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, testRequest())

	require.Error(t, err)
	var timeoutErr *TimeoutError
	assert.False(t, errors.As(err, &timeoutErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateTransportError(t *testing.T) {
	c := NewClient(domain.ClientConfig{
		APIKey:  "cr-key",
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	})

	_, err := c.Generate(context.Background(), testRequest())

	require.Error(t, err)
	var apiErr *ApiError
	assert.False(t, errors.As(err, &apiErr))
}
