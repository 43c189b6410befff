package admin

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed admin.yaml
var defaultConfig []byte

type Config struct {
	App    string        `yaml:"app"`
	Models []ModelConfig `yaml:"models"`
}

type ModelConfig struct {
	Name         string   `yaml:"name"`
	VerboseName  string   `yaml:"verbose_name"`
	ListDisplay  []string `yaml:"list_display"`
	SearchFields []string `yaml:"search_fields"`
	ListFilter   []string `yaml:"list_filter"`
	// ListPerPage caps changelist rows per page; zero means 100.
	ListPerPage int `yaml:"list_per_page"`
}

func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse admin config: %w", err)
	}
	if cfg.App == "" {
		return nil, fmt.Errorf("admin config: app is required")
	}

	seen := make(map[string]bool, len(cfg.Models))
	for _, m := range cfg.Models {
		if m.Name == "" {
			return nil, fmt.Errorf("admin config: model without name")
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("admin config: model %q registered twice", m.Name)
		}
		seen[m.Name] = true
		if len(m.ListDisplay) == 0 {
			return nil, fmt.Errorf("admin config: model %q has no list_display", m.Name)
		}
	}
	return &cfg, nil
}

// checkFields verifies every configured column exists on the model.
func (m ModelConfig) checkFields(available []string) error {
	known := make(map[string]bool, len(available))
	for _, f := range available {
		known[f] = true
	}
	for _, group := range [][]string{m.ListDisplay, m.SearchFields, m.ListFilter} {
		for _, f := range group {
			if !known[f] {
				return fmt.Errorf("admin config: model %q has no field %q", m.Name, f)
			}
		}
	}
	return nil
}
