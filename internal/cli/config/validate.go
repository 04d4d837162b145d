package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := cst.ParseDepth(c.AnalysisDepth); err != nil {
		return fmt.Errorf("analysis_depth: %w", err)
	}
	switch c.OutputFormat {
	case OutputText, OutputJSON, OutputTree, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json, tree or yaml)", c.OutputFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	for _, patterns := range [][]string{c.Include, c.Exclude} {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("invalid glob pattern %q", p)
			}
		}
	}
	if _, err := c.Lint.ToLintConfig(); err != nil {
		return fmt.Errorf("lint: %w", err)
	}
	return nil
}
