package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapuast/internal/cli/output"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// LocateResult is the machine-readable result of locate.
type LocateResult struct {
	File        string   `json:"file" yaml:"file"`
	Position    string   `json:"position" yaml:"position"`
	Element     string   `json:"element" yaml:"element"`
	Declaration string   `json:"declaration,omitempty" yaml:"declaration,omitempty"`
	Parents     []string `json:"parents" yaml:"parents"`
}

// NewLocateCommand creates the locate command.
func NewLocateCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "locate <file> <line>:<column>",
		Short: "Show the element and enclosing declaration at a position",
		Long: `Convert the innermost source node at a position together with its
parent chain and report the element, its enclosing declaration and
its ancestors.`,
		Example: `  leapuast locate src/Main.kt 12:9`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(cmd, args[0], args[1], format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, yaml")
	return cmd
}

func runLocate(cmd *cobra.Command, path, at, format string) error {
	pos, err := parsePosition(at)
	if err != nil {
		return err
	}
	cc := NewCommandContext(cmd)
	r := cc.RendererFor(cmd, format)

	src, err := cc.loadOne(cmd.Context(), path)
	if err != nil {
		return err
	}
	el := uast.ElementAt(src.Root, pos)
	if el == nil {
		return fmt.Errorf("%s: no element at %s", path, pos)
	}

	res := LocateResult{
		File:     path,
		Position: pos.String(),
		Element:  describe(el),
		Parents:  []string{},
	}
	if decl := uast.EnclosingDeclaration(el); decl != nil {
		res.Declaration = describe(decl)
	}
	for p := el.Parent(); p != nil; p = p.Parent() {
		res.Parents = append(res.Parents, p.Kind().String())
	}

	switch r.Mode() {
	case output.ModeJSON:
		return r.JSON(res)
	case output.ModeYAML:
		return r.YAML(res)
	}
	s := r.Styles()
	r.Printf("%s %s\n", s.Bold.Render("Element:    "), res.Element)
	if res.Declaration != "" {
		r.Printf("%s %s\n", s.Bold.Render("Declaration:"), res.Declaration)
	}
	r.Printf("%s %s\n", s.Bold.Render("Parents:    "), s.Muted.Render(strings.Join(res.Parents, " > ")))
	return nil
}

// describe renders an element as "Kind name (line:column)".
func describe(el uast.Element) string {
	var b strings.Builder
	b.WriteString(el.Kind().String())
	if name := uast.NameOf(el); name != "" {
		b.WriteString(" " + name)
	}
	b.WriteString(" (" + formatSpan(el) + ")")
	return b.String()
}
