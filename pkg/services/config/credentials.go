package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// DefaultProfile is the credentials section used when the caller does not
// name one.
const DefaultProfile = "default"

// Credentials reads API profiles from an ini credentials file. Each section
// is one profile carrying api_key, base_url and timeout keys.
type Credentials interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (Source, error)
}

type credentialsFile struct {
	cfg *ini.File
}

func LoadCredentials(path string) (Credentials, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &credentialsFile{cfg: cfg}, nil
}

func (c *credentialsFile) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range c.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (c *credentialsFile) GetProfile(_ context.Context, name string) (Source, error) {
	if !c.cfg.HasSection(name) {
		return nil, fmt.Errorf("profile %s not found", name)
	}
	section := c.cfg.Section(name)

	return Static(map[string]string{
		KeyAPIKey:  section.Key(KeyAPIKey).String(),
		KeyBaseURL: section.Key(KeyBaseURL).String(),
		KeyTimeout: section.Key(KeyTimeout).String(),
	}), nil
}
