package lint

import (
	"fmt"
	"sort"
	"strings"
)

// Config controls which rules are enabled, their severity and options.
type Config struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]Severity

	// RuleOptions holds rule-specific options keyed by rule ID
	RuleOptions map[string]map[string]any
}

// NewConfig creates a default configuration with all rules enabled.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]Severity),
		RuleOptions:       make(map[string]map[string]any),
	}
}

// NewConfigFromSettings builds a Config from the string-typed settings found
// in configuration files and flags. Rule IDs are matched case-insensitively.
func NewConfigFromSettings(disabled []string, severity map[string]string, options map[string]map[string]any) (*Config, error) {
	c := NewConfig()
	for _, id := range disabled {
		c.Disable(id)
	}

	ids := make([]string, 0, len(severity))
	for id := range severity {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		sev, ok := ParseSeverity(severity[id])
		if !ok {
			return nil, fmt.Errorf("invalid severity %q for rule %s (want error, warning, info or hint)", severity[id], id)
		}
		c.SetSeverity(id, sev)
	}

	for id, opts := range options {
		c.SetRuleOptions(id, opts)
	}
	return c, nil
}

// IsDisabled returns true if the rule should be skipped.
func (c *Config) IsDisabled(ruleID string) bool {
	if c == nil {
		return false
	}
	return c.DisabledRules[normalizeID(ruleID)]
}

// GetSeverity returns the severity for a rule, applying any override.
func (c *Config) GetSeverity(ruleID string, defaultSeverity Severity) Severity {
	if c != nil {
		if sev, ok := c.SeverityOverrides[normalizeID(ruleID)]; ok {
			return sev
		}
	}
	return defaultSeverity
}

// GetRuleOptions returns the options configured for a rule, or nil.
func (c *Config) GetRuleOptions(ruleID string) map[string]any {
	if c == nil {
		return nil
	}
	return c.RuleOptions[normalizeID(ruleID)]
}

// Disable disables a rule by ID.
func (c *Config) Disable(ruleID string) *Config {
	c.DisabledRules[normalizeID(ruleID)] = true
	return c
}

// SetSeverity overrides the severity for a rule.
func (c *Config) SetSeverity(ruleID string, severity Severity) *Config {
	c.SeverityOverrides[normalizeID(ruleID)] = severity
	return c
}

// SetRuleOptions sets the options passed to a rule's check function.
func (c *Config) SetRuleOptions(ruleID string, opts map[string]any) *Config {
	c.RuleOptions[normalizeID(ruleID)] = opts
	return c
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
