package report

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ConfigurationError signals that the client was asked to generate a report
// without a resolved API key. It is raised before any network activity.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

// TimeoutError signals that the in-flight call was aborted after the
// configured wall-clock timeout elapsed.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("report generation timed out after %s", e.Timeout)
}

// ApiError carries the normalized human-readable message for any non-2xx
// response. The message is resolved once, at the client boundary; callers
// never see the raw envelope.
type ApiError struct {
	StatusCode int
	Message    string
}

func (e *ApiError) Error() string {
	return e.Message
}

// The remote service answers errors in one of two envelope shapes. The
// RPC-style one nests the machine code under error.data.
type rpcErrorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Data    *struct {
			Code       string `json:"code"`
			HttpStatus int    `json:"httpStatus"`
			Path       string `json:"path"`
		} `json:"data"`
	} `json:"error"`
}

type flatErrorEnvelope struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Issues  []struct {
		Message string `json:"message"`
	} `json:"issues"`
}

var friendlyMessages = map[string]string{
	"UNAUTHORIZED":      "Unauthorized: please verify your API key is valid.",
	"FORBIDDEN":         "Forbidden: your API key does not have access to this resource.",
	"TOO_MANY_REQUESTS": "Rate limit exceeded: please try again later.",
	"BAD_REQUEST":       "Bad request: the report parameters were rejected by the server.",
}

var statusToCode = map[int]string{
	http.StatusUnauthorized:    "UNAUTHORIZED",
	http.StatusForbidden:       "FORBIDDEN",
	http.StatusTooManyRequests: "TOO_MANY_REQUESTS",
	http.StatusBadRequest:      "BAD_REQUEST",
}

// normalizeError classifies a non-2xx response body by shape. It tries the
// RPC-style envelope first, then the flat one, and falls back to a generic
// message carrying the HTTP status when neither matches.
func normalizeError(status int, body []byte) *ApiError {
	fallback := fmt.Sprintf("request failed with status %d", status)

	var rpc rpcErrorEnvelope
	if err := json.Unmarshal(body, &rpc); err == nil && rpc.Error != nil {
		code := rpc.Error.Code
		if rpc.Error.Data != nil && rpc.Error.Data.Code != "" {
			code = rpc.Error.Data.Code
		}
		if friendly, ok := friendlyMessages[code]; ok {
			return &ApiError{StatusCode: status, Message: friendly}
		}
		if rpc.Error.Message != "" {
			return &ApiError{StatusCode: status, Message: rpc.Error.Message}
		}
		return &ApiError{StatusCode: status, Message: fallback}
	}

	var flat flatErrorEnvelope
	if err := json.Unmarshal(body, &flat); err == nil && (flat.Message != "" || flat.Code != "" || len(flat.Issues) > 0) {
		if friendly, ok := friendlyMessages[statusToCode[status]]; ok {
			return &ApiError{StatusCode: status, Message: friendly}
		}

		msg := flat.Message
		if len(flat.Issues) > 0 {
			issues := make([]string, 0, len(flat.Issues))
			for _, issue := range flat.Issues {
				issues = append(issues, issue.Message)
			}
			joined := strings.Join(issues, ", ")
			if msg == "" {
				msg = joined
			} else {
				msg = fmt.Sprintf("%s: %s", msg, joined)
			}
		}
		if msg == "" {
			msg = fallback
		}
		return &ApiError{StatusCode: status, Message: msg}
	}

	return &ApiError{StatusCode: status, Message: fallback}
}
