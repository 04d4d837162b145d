package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapuast/internal/cli/config"
	sharedcfg "github.com/leapstack-labs/leapuast/internal/config"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "project", "cli", "lint", "snapshot"
}

// getConfigSchema returns the configuration schema. It mirrors
// internal/cli/config.Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "analysis_depth", Type: "string", Default: config.DefaultAnalysisDepth, Description: "Resolution depth: partial indexes the queried file, full every loaded file", Category: "project"},
		{Name: "include", Type: "[]string", Default: strings.Join(sharedcfg.DefaultInclude(), ", "), Description: "Globs selecting sources when walking directories", Category: "project"},
		{Name: "exclude", Type: "[]string", Default: strings.Join(sharedcfg.DefaultExclude(), ", "), Description: "Globs removing sources when walking directories", Category: "project"},
		{Name: "max_file_size", Type: "int", Default: strconv.Itoa(config.DefaultMaxFileSize), Description: "Largest source parsed, in bytes", Category: "project"},

		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: text, json, tree, yaml", Category: "cli"},
		{Name: "workers", Type: "int", Default: strconv.Itoa(config.DefaultWorkers), Description: "Files processed in parallel", Category: "cli"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Debug logging on stderr", Category: "cli"},

		{Name: "lint.disabled", Type: "[]string", Description: "Rule IDs to skip", Category: "lint"},
		{Name: "lint.severity", Type: "map[string]string", Description: "Severity overrides keyed by rule ID", Category: "lint"},
		{Name: "lint.rules", Type: "map[string]map", Description: "Rule options keyed by rule ID", Category: "lint"},
		{Name: "lint.scripts", Type: "[]string", Description: "Starlark rule files, relative to the project root", Category: "lint"},

		{Name: "snapshot.path", Type: "string", Default: config.DefaultSnapshotPath, Description: "Snapshot database written by export", Category: "snapshot"},
	}
}

// generateConfigDocs writes the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "leapuast configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("leapuast reads %s (or %s) from the project root. The root is the directory of an explicit --config file, else the nearest ancestor holding a configuration file, else the working directory.",
		InlineCode(sharedcfg.ConfigFileName), InlineCode(sharedcfg.ConfigFileNameAlt)))

	sections := []struct {
		category, title string
	}{
		{"project", "Project Settings"},
		{"cli", "Command Line"},
		{"lint", "Lint"},
		{"snapshot", "Snapshots"},
	}
	fields := getConfigSchema()
	for _, sec := range sections {
		w.Header(2, sec.title)
		var rows [][]string
		for _, f := range fields {
			if f.Category != sec.category {
				continue
			}
			def := "-"
			if f.Default != "" {
				def = InlineCode(f.Default)
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, def, f.Description})
		}
		w.Table([]string{"Field", "Type", "Default", "Description"}, rows)
	}

	w.Header(2, "Example")
	w.CodeBlock("yaml", `analysis_depth: full
exclude:
  - "**/build/**"
  - "**/generated/**"
lint:
  disabled: [CV02]
  severity:
    RF01: error
  rules:
    RF01:
      ignore: [BuildConfig]
  scripts:
    - rules/no_temp.star
snapshot:
  path: .leapuast/snapshots.db`)

	if err := os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")
	return nil
}
