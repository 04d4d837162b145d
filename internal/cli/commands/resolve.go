package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapuast/internal/cli/output"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// ResolveResult is the machine-readable result of resolve.
type ResolveResult struct {
	File        string `json:"file" yaml:"file"`
	Reference   string `json:"reference" yaml:"reference"`
	Resolved    bool   `json:"resolved" yaml:"resolved"`
	Declaration string `json:"declaration,omitempty" yaml:"declaration,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "resolve <file> <line>:<column>",
		Short: "Resolve the reference at a position to its declaration",
		Long: `Find the innermost reference at a position and bind it to its
declaration through the semantic engine. With --depth full, other
files passed with --with are searched as well.`,
		Example: `  leapuast resolve src/Main.kt 14:20
  leapuast resolve src/Main.kt 14:20 --depth full --with src/Util.kt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			with, _ := cmd.Flags().GetStringSlice("with")
			return runResolve(cmd, args[0], args[1], with, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, yaml")
	cmd.Flags().StringSlice("with", nil, "Additional files to index for full-depth resolution")
	return cmd
}

func runResolve(cmd *cobra.Command, path, at string, with []string, format string) error {
	pos, err := parsePosition(at)
	if err != nil {
		return err
	}
	cc := NewCommandContext(cmd)
	r := cc.RendererFor(cmd, format)

	srcs, err := cc.loadSources(cmd.Context(), append([]string{path}, with...))
	if err != nil {
		return err
	}
	if len(srcs) == 0 || srcs[0].Path != path {
		return fmt.Errorf("%s could not be loaded", path)
	}

	ref := uast.NearestReference(uast.ElementAt(srcs[0].Root, pos))
	if ref == nil {
		return fmt.Errorf("%s: no reference at %s", path, pos)
	}

	res := ResolveResult{File: path, Reference: describe(ref)}
	if decl := ref.Resolve(cmd.Context(), cc.ToolContext()); decl != nil {
		res.Resolved = true
		res.Declaration = describe(decl)
		if f := uast.EnclosingFile(decl); f != nil && f.Source() != srcs[0].Root {
			for _, src := range srcs {
				if f.Source() == src.Root {
					res.Declaration += " in " + src.Path
				}
			}
		}
	}

	switch r.Mode() {
	case output.ModeJSON:
		return r.JSON(res)
	case output.ModeYAML:
		return r.YAML(res)
	}
	s := r.Styles()
	if !res.Resolved {
		r.Printf("%s %s\n", res.Reference, s.Warning.Render("-> unresolved"))
		return nil
	}
	r.Printf("%s -> %s\n", res.Reference, s.Success.Render(res.Declaration))
	return nil
}
