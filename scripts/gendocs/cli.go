package main

import (
	"cmp"
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/leapuast/internal/cli"
	"github.com/leapstack-labs/leapuast/pkg/cst"
	"github.com/leapstack-labs/leapuast/pkg/lint"
)

// commandSections groups the top-level commands on the index page. Commands
// missing here land under "Other".
var commandSections = []struct {
	title string
	names []string
}{
	{"Inspecting Sources", []string{"dump", "locate", "resolve"}},
	{"Checking Sources", []string{"lint", "rules"}},
	{"Snapshots", []string{"export"}},
	{"Editors", []string{"lsp"}},
}

// resolvingCommands run reference resolution and honour --depth.
var resolvingCommands = map[string]bool{
	"resolve": true,
	"lint":    true,
	"export":  true,
	"lsp":     true,
}

// ruleCommands get a cross-linked table of the built-in rules.
var ruleCommands = map[string]bool{
	"lint":  true,
	"rules": true,
}

// flagValues lists the accepted values of enumerated flags.
func flagValues() map[string][]string {
	return map[string][]string{
		"depth":    {cst.DepthPartial.String(), cst.DepthFull.String()},
		"output":   {"text", "json", "tree", "yaml"},
		"severity": {lint.SeverityError.String(), lint.SeverityWarning.String(), lint.SeverityInfo.String(), lint.SeverityHint.String()},
	}
}

// generateCLIDocs writes an index page and one page per visible command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	commands := visibleCommands(root)

	pages := map[string][]byte{"index.md": cliIndex(root, commands)}
	for _, cmd := range commands {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}
	for _, name := range slices.Sorted(maps.Keys(pages)) {
		if err := os.WriteFile(filepath.Join(outDir, name), pages[name], 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

func visibleCommands(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

func cliIndex(root *cobra.Command, commands []*cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for leapuast")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(cleanDescription(root.Long))
	w.CodeBlock("bash", "go install github.com/leapstack-labs/leapuast/cmd/leapuast@latest\nleapuast <command> [options]")

	byName := make(map[string]*cobra.Command, len(commands))
	for _, cmd := range commands {
		byName[cmd.Name()] = cmd
	}
	for _, sec := range commandSections {
		var rows [][]string
		for _, name := range sec.names {
			if cmd, ok := byName[name]; ok {
				rows = append(rows, commandRow(cmd))
				delete(byName, name)
			}
		}
		if len(rows) > 0 {
			w.Header(2, sec.title)
			w.Table([]string{"Command", "Description"}, rows)
		}
	}
	if len(byName) > 0 {
		var rows [][]string
		for _, name := range slices.Sorted(maps.Keys(byName)) {
			rows = append(rows, commandRow(byName[name]))
		}
		w.Header(2, "Other")
		w.Table([]string{"Command", "Description"}, rows)
	}

	w.Header(2, "Global Options")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph("Every scalar or list configuration key maps to a variable prefixed with " + InlineCode("LEAPUAST_") +
		". Nested keys join with a double underscore and lists are comma separated.")
	var env [][]string
	for _, f := range getConfigSchema() {
		if strings.HasPrefix(f.Type, "map") {
			continue
		}
		env = append(env, []string{InlineCode(envName(f.Name)), InlineCode(f.Name), f.Description})
	}
	w.Table([]string{"Variable", "Key", "Description"}, env)
	w.Paragraph("Flags take precedence over environment variables, which take precedence over " + InlineCode("leapuast.yaml") + ".")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success"},
		{InlineCode("1"), "Error, or lint findings at or above " + InlineCode("--severity")},
	})
	return w.Bytes()
}

func commandRow(cmd *cobra.Command) []string {
	return []string{fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name()), cleanDescription(cmd.Short)}
}

// envName maps a configuration key to its environment variable.
func envName(key string) string {
	return "LEAPUAST_" + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	w.Paragraph(cmp.Or(cmd.Long, cmd.Short))

	use := cmd.UseLine()
	if !strings.HasPrefix(use, "leapuast") {
		use = "leapuast " + use
	}
	w.Header(2, "Usage")
	w.CodeBlock("bash", use)

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}

	if resolvingCommands[cmd.Name()] {
		w.Header(2, "Analysis Depth")
		w.Paragraph(fmt.Sprintf("With %s (the default) a reference resolves against declarations in its own file. With %s every loaded file is indexed first, so references into other files resolve too.",
			InlineCode("--depth "+cst.DepthPartial.String()), InlineCode("--depth "+cst.DepthFull.String())))
		if cmd.LocalFlags().Lookup("with") != nil {
			w.Paragraph(InlineCode("--with") + " names the additional files loaded next to the queried one.")
		}
	}

	if ruleCommands[cmd.Name()] {
		w.Header(2, "Rules")
		var rows [][]string
		for _, r := range lint.GetAllRules() {
			rows = append(rows, []string{
				fmt.Sprintf("[%s](/linting/rules#%s)", r.ID(), r.ID()),
				r.Group(),
				InlineCode(r.DefaultSeverity().String()),
				cleanDescription(r.Description()),
			})
		}
		w.Table([]string{"Rule", "Group", "Severity", "Description"}, rows)
	}

	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
	return w.Bytes()
}

func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	values := flagValues()
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		def := "-"
		if f.DefValue != "" && f.DefValue != "[]" && f.DefValue != "0" {
			def = InlineCode(f.DefValue)
		}
		accepted := "-"
		if vs, ok := values[f.Name]; ok {
			quoted := make([]string, len(vs))
			for i, v := range vs {
				quoted[i] = InlineCode(v)
			}
			accepted = strings.Join(quoted, ", ")
		}
		rows = append(rows, []string{InlineCode(name), def, accepted, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Default", "Values", "Description"}, rows)
}

// dedent strips the indentation shared by every non-blank line.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if n := len(l) - len(strings.TrimLeft(l, " \t")); indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			lines[i] = l[indent:]
		}
	}
	return strings.Join(lines, "\n")
}
