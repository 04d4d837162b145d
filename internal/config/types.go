// Package config provides shared project configuration for leapuast.
// It is decoupled from CLI concerns so that other front ends can load the
// same leapuast.yaml.
package config

import (
	"github.com/leapstack-labs/leapuast/pkg/lint"
)

// LintConfig holds inspection configuration.
type LintConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`

	// Rules contains rule-specific options
	Rules map[string]RuleOptions `koanf:"rules"`

	// Scripts lists Starlark rule files, relative to the project root
	Scripts []string `koanf:"scripts"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any

// ToLintConfig builds the analyzer configuration. A nil receiver yields an
// empty configuration.
func (c *LintConfig) ToLintConfig() (*lint.Config, error) {
	if c == nil {
		return lint.NewConfig(), nil
	}
	options := make(map[string]map[string]any, len(c.Rules))
	for id, opts := range c.Rules {
		options[id] = opts
	}
	return lint.NewConfigFromSettings(c.Disabled, c.Severity, options)
}

// SnapshotConfig holds snapshot export configuration.
type SnapshotConfig struct {
	Path string `koanf:"path"`
}

// ProjectConfig holds the project settings read from leapuast.yaml.
type ProjectConfig struct {
	AnalysisDepth string          `koanf:"analysis_depth"`
	Include       []string        `koanf:"include"`
	Exclude       []string        `koanf:"exclude"`
	MaxFileSize   int64           `koanf:"max_file_size"`
	Lint          *LintConfig     `koanf:"lint"`
	Snapshot      *SnapshotConfig `koanf:"snapshot"`
}

// ApplyDefaults fills unset fields with their defaults.
func (c *ProjectConfig) ApplyDefaults() {
	ApplyDefaults(c)
}
