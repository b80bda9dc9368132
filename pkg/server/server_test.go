package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/report-forge/pkg/models/api"
	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
	"github.com/de-tools/report-forge/pkg/services/generator"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) IsGenerating() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.ReportRequest) (generator.Run, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(generator.Run), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, rec store.Report) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *mockStore) MarkCompleted(ctx context.Context, id string, results []domain.GroupReport, durationMs int64) error {
	args := m.Called(ctx, id, results, durationMs)
	return args.Error(0)
}

func (m *mockStore) MarkFailed(ctx context.Context, id string, message string, durationMs int64) error {
	args := m.Called(ctx, id, message, durationMs)
	return args.Error(0)
}

func (m *mockStore) Get(ctx context.Context, id string) (*store.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Report), args.Error(1)
}

func (m *mockStore) List(ctx context.Context, filter store.ListFilter) (store.ReportPage, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(store.ReportPage), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	mockGen := new(mockGenerator)
	mockRecorder := new(mockStore)

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Generator: mockGen,
			Store:     mockRecorder,
			Logger:    logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	expectedFrom, _ := time.Parse(domain.DateLayout, "2024-05-01")
	expectedTo, _ := time.Parse(domain.DateLayout, "2024-05-07")

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		setupMocks     func()
		expectedStatus int
		expected       interface{}
		parseResponse  func([]byte) (interface{}, error)
	}{
		{
			name:   "GenerateReport",
			method: http.MethodPost,
			path:   "/api/v1/reports",
			body: api.GenerateReportRequest{
				From:           "2024-05-01",
				To:             "2024-05-07",
				PromptTemplate: "Daily Standup Report",
			},
			setupMocks: func() {
				mockGen.On("Generate", mock.Anything, domain.ReportRequest{
					From:           expectedFrom,
					To:             expectedTo,
					PromptTemplate: "Daily Standup Report",
				}).Return(generator.Run{
					ID:         "r-1",
					Results:    []domain.GroupReport{{Group: "backend", Report: "All quiet."}},
					DurationMs: 1200,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expected: api.GenerateReportResponse{
				Id:         "r-1",
				Results:    []api.GroupReport{{Group: "backend", Report: "All quiet."}},
				DurationMs: 1200,
			},
			parseResponse: unmarshalResponse[api.GenerateReportResponse](),
		},
		{
			name:           "GenerateReport_InvalidFromDate",
			method:         http.MethodPost,
			path:           "/api/v1/reports",
			body:           api.GenerateReportRequest{From: "01-05-2024", To: "2024-05-07"},
			setupMocks:     func() {},
			expectedStatus: http.StatusBadRequest,
			expected:       api.Error{Error: `invalid from date "01-05-2024", expected 2006-01-02`},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:   "ListReports",
			method: http.MethodGet,
			path:   "/api/v1/reports?status=completed",
			setupMocks: func() {
				mockRecorder.On("List", mock.Anything, store.ListFilter{
					Status: store.ReportStatusCompleted,
					Limit:  50,
				}).Return(store.ReportPage{Total: 0, Reports: []store.Report{}}, nil)
			},
			expectedStatus: http.StatusOK,
			expected:       api.ReportList{Total: 0, Reports: []api.StoredReport{}},
			parseResponse:  unmarshalResponse[api.ReportList](),
		},
		{
			name:   "GetReport_NotFound",
			method: http.MethodGet,
			path:   "/api/v1/reports/missing",
			setupMocks: func() {
				mockRecorder.On("Get", mock.Anything, "missing").Return(nil, nil)
			},
			expectedStatus: http.StatusNotFound,
			expected:       api.Error{Error: "report not found"},
			parseResponse:  unmarshalResponse[api.Error](),
		},
		{
			name:   "DeleteReport",
			method: http.MethodDelete,
			path:   "/api/v1/reports/r-1",
			setupMocks: func() {
				mockRecorder.On("Delete", mock.Anything, "r-1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			var body io.Reader
			if tc.body != nil {
				data, err := json.Marshal(tc.body)
				require.NoError(t, err, "Failed to marshal request body")
				body = bytes.NewReader(data)
			}

			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, body)
			require.NoError(t, err, "Failed to build request")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			if tc.parseResponse == nil {
				return
			}

			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")

			actual, err := tc.parseResponse(data)
			require.NoError(t, err, "Failed to parse response")

			assert.Equal(t, tc.expected, actual)
		})
	}
}

func unmarshalResponse[T any]() func([]byte) (interface{}, error) {
	return func(data []byte) (interface{}, error) {
		var response T
		err := json.Unmarshal(data, &response)
		return response, err
	}
}
