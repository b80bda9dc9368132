package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/report-forge/pkg/models/domain"
)

// Keys understood by the resolver. Sources are queried with these names;
// the env source upper-cases them, the credentials file uses them verbatim
// as section keys.
const (
	KeyAPIKey  = "api_key"
	KeyBaseURL = "base_url"
	KeyTimeout = "timeout"
)

// EnvPrefix is the prefix for environment variable lookups, i.e.
// CODERABBIT_API_KEY, CODERABBIT_BASE_URL, CODERABBIT_TIMEOUT.
const EnvPrefix = "CODERABBIT"

// Source is one place a configuration value may come from. An empty string
// counts as a miss during resolution.
type Source interface {
	Lookup(key string) (string, bool)
}

type Resolver struct {
	sources []Source
}

// NewResolver builds a resolver that tries sources in the given order; the
// first source yielding a non-empty string for a key wins.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve produces the client configuration. BaseURL and Timeout fall back
// to built-in defaults; a missing API key resolves to empty, leaving the
// client unconfigured rather than failing here.
func (r *Resolver) Resolve() (domain.ClientConfig, error) {
	cfg := domain.ClientConfig{
		APIKey:  r.resolve(KeyAPIKey),
		BaseURL: domain.DefaultBaseURL,
		Timeout: domain.DefaultTimeout,
	}

	if baseURL := r.resolve(KeyBaseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	if raw := r.resolve(KeyTimeout); raw != "" {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return domain.ClientConfig{}, err
		}
		cfg.Timeout = timeout
	}

	return cfg, nil
}

func (r *Resolver) resolve(key string) string {
	for _, src := range r.sources {
		if v, ok := src.Lookup(key); ok && v != "" {
			return v
		}
	}
	return ""
}

// parseTimeout accepts either plain milliseconds ("600000") or a duration
// string ("10m").
func parseTimeout(raw string) (time.Duration, error) {
	if ms, err := strconv.Atoi(raw); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %d", ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

// Static returns a fixed in-memory source, used for explicit caller-supplied
// values. It has the highest priority in the usual wiring.
func Static(values map[string]string) Source {
	return staticSource{values: values}
}

type staticSource struct {
	values map[string]string
}

func (s staticSource) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Env returns a source backed by process environment variables. A key like
// "api_key" is looked up as "<PREFIX>_API_KEY".
func Env(prefix string) Source {
	return envSource{prefix: prefix}
}

type envSource struct {
	prefix string
}

func (s envSource) Lookup(key string) (string, bool) {
	return os.LookupEnv(s.prefix + "_" + strings.ToUpper(key))
}
