package domain

import "time"

// ClientConfig is a fully resolved client configuration. An empty APIKey
// means the client is unconfigured; generation fails before any network
// activity is attempted.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

const (
	DefaultBaseURL = "https://api.coderabbit.ai/api"
	DefaultTimeout = 600 * time.Second
)
