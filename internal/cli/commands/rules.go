package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapuast/internal/cli/output"
	"github.com/leapstack-labs/leapuast/pkg/lint"
	_ "github.com/leapstack-labs/leapuast/pkg/lint/rules" // register built-in rules
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group   string // Filter by group
	Verbose bool   // Show full documentation
	Format  string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available lint rules",
		Long: `List all built-in lint rules with their documentation.

Rules are organized by group (unsupported, references, structure,
convention). Use --long to include rule descriptions.`,
		Example: `  # List all rules
  leapuast rules

  # Show details for a specific rule
  leapuast rules ST02

  # List rules in the structure group
  leapuast rules --group structure

  # Output as JSON
  leapuast rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().BoolVarP(&opts.Verbose, "long", "l", false, "Show rule descriptions")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, yaml")

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	r := NewCommandContext(cmd).RendererFor(cmd, opts.Format)

	rules := lint.AllRules()
	if opts.Group != "" {
		rules = slices.DeleteFunc(rules, func(ri lint.RuleInfo) bool { return ri.Group != opts.Group })
	}
	slices.SortFunc(rules, func(a, b lint.RuleInfo) int {
		if c := strings.Compare(a.Group, b.Group); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	switch r.Mode() {
	case output.ModeJSON:
		return r.JSON(rulesDocument(rules))
	case output.ModeYAML:
		return r.YAML(rulesDocument(rules))
	}

	header := table.Row{"ID", "Name", "Group", "Severity"}
	if opts.Verbose {
		header = append(header, "Description")
	}
	rows := make([]table.Row, 0, len(rules))
	for _, ri := range rules {
		row := table.Row{ri.ID, ri.Name, ri.Group, ri.DefaultSeverity.String()}
		if opts.Verbose {
			row = append(row, ri.Description)
		}
		rows = append(rows, row)
	}
	r.Table(header, rows)
	r.Println(r.Styles().Muted.Render("Use 'leapuast rules <rule-id>' for detailed documentation"))
	return nil
}

// RulesDocument is the machine-readable rules listing.
type RulesDocument struct {
	Rules []lint.RuleInfo `json:"rules" yaml:"rules"`
	Count int             `json:"count" yaml:"count"`
}

func rulesDocument(rules []lint.RuleInfo) RulesDocument {
	if rules == nil {
		rules = []lint.RuleInfo{}
	}
	return RulesDocument{Rules: rules, Count: len(rules)}
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	r := NewCommandContext(cmd).RendererFor(cmd, opts.Format)

	rule, ok := lint.GetRuleByID(strings.ToUpper(strings.TrimSpace(ruleID)))
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	info := lint.GetRuleInfo(rule)

	switch r.Mode() {
	case output.ModeJSON:
		return r.JSON(info)
	case output.ModeYAML:
		return r.YAML(info)
	}

	s := r.Styles()
	r.Println(s.Header.Render(fmt.Sprintf("%s - %s", info.ID, info.Name)))
	r.Println()
	r.Printf("  %s: %s\n", s.Bold.Render("Group"), info.Group)
	r.Printf("  %s: %s\n", s.Bold.Render("Severity"), info.DefaultSeverity)
	r.Printf("  %s: %s\n", s.Bold.Render("Docs"), lint.BuildDocURL(info.ID))
	r.Println()
	section := func(title, body string, style func(...string) string) {
		if body == "" {
			return
		}
		r.Println(s.Bold.Render(title))
		for _, line := range strings.Split(body, "\n") {
			r.Println(style("  " + line))
		}
		r.Println()
	}
	plain := func(strs ...string) string { return strings.Join(strs, " ") }
	section("Description", info.Description, plain)
	section("Why This Matters", info.Rationale, plain)
	section("Bad Example", info.BadExample, s.Muted.Render)
	section("Good Example", info.GoodExample, s.Success.Render)
	section("How to Fix", info.Fix, plain)
	if len(info.ConfigKeys) > 0 {
		r.Println(s.Bold.Render("Configuration"))
		r.Printf("  Options: %s\n", strings.Join(info.ConfigKeys, ", "))
	}
	return nil
}
