// Package config provides configuration management for the leapuast CLI.
//
// It extends the shared project configuration from internal/config with
// CLI-specific fields. The shared types are re-exported here via type
// aliases for convenience.
package config

import (
	sharedcfg "github.com/leapstack-labs/leapuast/internal/config"
	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// LintConfig is an alias for the shared lint configuration.
type LintConfig = sharedcfg.LintConfig

// RuleOptions is an alias for the shared rule options type.
type RuleOptions = sharedcfg.RuleOptions

// SnapshotConfig is an alias for the shared snapshot configuration.
type SnapshotConfig = sharedcfg.SnapshotConfig

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputTree = "tree"
	OutputYAML = "yaml"
)

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot   string          `koanf:"-"`
	AnalysisDepth string          `koanf:"analysis_depth"`
	Verbose       bool            `koanf:"verbose"`
	OutputFormat  string          `koanf:"output"`
	Include       []string        `koanf:"include"`
	Exclude       []string        `koanf:"exclude"`
	MaxFileSize   int64           `koanf:"max_file_size"`
	Workers       int             `koanf:"workers"`
	Lint          *LintConfig     `koanf:"lint"`
	Snapshot      *SnapshotConfig `koanf:"snapshot"`
}

// Depth returns the parsed analysis depth. Invalid values fall back to
// partial; Validate reports them.
func (c *Config) Depth() cst.Depth {
	d, err := cst.ParseDepth(c.AnalysisDepth)
	if err != nil {
		return cst.DepthPartial
	}
	return d
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultAnalysisDepth = sharedcfg.DefaultAnalysisDepth
	DefaultMaxFileSize   = sharedcfg.DefaultMaxFileSize
	DefaultSnapshotPath  = sharedcfg.DefaultSnapshotPath
	DefaultOutput        = OutputText
	DefaultWorkers       = 4
)
