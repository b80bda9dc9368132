package report

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectedMessage string
	}{
		{
			name:            "rpc envelope with known nested code wins over raw message",
			status:          http.StatusInternalServerError,
			body:            `{"error":{"message":"x","data":{"code":"UNAUTHORIZED"}}}`,
			expectedMessage: friendlyMessages["UNAUTHORIZED"],
		},
		{
			name:            "rpc envelope with known top-level code",
			status:          http.StatusForbidden,
			body:            `{"error":{"message":"x","code":"FORBIDDEN"}}`,
			expectedMessage: friendlyMessages["FORBIDDEN"],
		},
		{
			name:            "rpc envelope with unknown code surfaces raw message",
			status:          http.StatusInternalServerError,
			body:            `{"error":{"message":"upstream exploded","code":"INTERNAL"}}`,
			expectedMessage: "upstream exploded",
		},
		{
			name:            "rpc envelope without message falls back to status",
			status:          http.StatusBadGateway,
			body:            `{"error":{"code":"INTERNAL"}}`,
			expectedMessage: "request failed with status 502",
		},
		{
			name:            "flat envelope on mapped status uses friendly override",
			status:          http.StatusBadRequest,
			body:            `{"message":"bad","issues":[{"message":"a"},{"message":"b"}]}`,
			expectedMessage: friendlyMessages["BAD_REQUEST"],
		},
		{
			name:            "flat envelope on unmapped status joins issues",
			status:          http.StatusInternalServerError,
			body:            `{"message":"bad","issues":[{"message":"a"},{"message":"b"}]}`,
			expectedMessage: "bad: a, b",
		},
		{
			name:            "flat envelope without issues surfaces raw message",
			status:          http.StatusInternalServerError,
			body:            `{"message":"bad"}`,
			expectedMessage: "bad",
		},
		{
			name:            "flat envelope with issues but no message joins issues alone",
			status:          http.StatusInternalServerError,
			body:            `{"issues":[{"message":"a"},{"message":"b"}]}`,
			expectedMessage: "a, b",
		},
		{
			name:            "rate limited flat envelope",
			status:          http.StatusTooManyRequests,
			body:            `{"message":"slow down"}`,
			expectedMessage: friendlyMessages["TOO_MANY_REQUESTS"],
		},
		{
			name:            "empty json object falls back to status",
			status:          http.StatusServiceUnavailable,
			body:            `{}`,
			expectedMessage: "request failed with status 503",
		},
		{
			name:            "non-json body falls back to status",
			status:          http.StatusBadGateway,
			body:            `<html>Bad Gateway</html>`,
			expectedMessage: "request failed with status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := normalizeError(tt.status, []byte(tt.body))

			assert.Equal(t, tt.expectedMessage, apiErr.Message)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.expectedMessage, apiErr.Error())
		})
	}
}
