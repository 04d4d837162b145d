package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapuast/internal/cli/output"
	"github.com/leapstack-labs/leapuast/pkg/lint"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// VersionInfo describes the build and what it supports.
type VersionInfo struct {
	Version      string `json:"version" yaml:"version"`
	GoVersion    string `json:"go_version" yaml:"go_version"`
	SourceKinds  int    `json:"source_kinds" yaml:"source_kinds"`
	Rules        int    `json:"rules" yaml:"rules"`
	DefaultDepth string `json:"default_depth" yaml:"default_depth"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the leapuast version, the Go toolchain it was built with, and
how many source kinds and built-in rules it carries.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			info := VersionInfo{
				Version:      version,
				GoVersion:    runtime.Version(),
				SourceKinds:  len(uast.SupportedKinds()),
				Rules:        len(lint.AllRules()),
				DefaultDepth: cc.Cfg.Depth().String(),
			}

			r := cc.RendererFor(cmd, format)
			switch r.Mode() {
			case output.ModeJSON:
				return r.JSON(info)
			case output.ModeYAML:
				return r.YAML(info)
			}
			r.Printf("leapuast v%s (%s)\n", info.Version, info.GoVersion)
			r.Printf("%d source kinds, %d built-in rules, %s analysis by default\n",
				info.SourceKinds, info.Rules, info.DefaultDepth)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, yaml")
	return cmd
}
