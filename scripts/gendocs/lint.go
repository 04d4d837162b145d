package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/lint"
	_ "github.com/leapstack-labs/leapuast/pkg/lint/rules"
)

// groupOrder lists rule groups in documentation order.
var groupOrder = []string{"unsupported", "references", "structure", "convention"}

// groupDescriptions provides human-readable descriptions for rule groups.
var groupDescriptions = map[string]string{
	"unsupported": "Rules about source constructs the unified tree does not model.",
	"references":  "Rules about names that do not bind to a declaration.",
	"structure":   "Rules about control flow and error handling.",
	"convention":  "Rules about Kotlin coding conventions.",
}

// generateLintDocs generates all lint documentation files.
func generateLintDocs(outDir string) error {
	log.Printf("Generating lint docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rules := lint.GetAllRules()
	if err := generateLintIndex(outDir, len(rules)); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	if err := generateRulesPage(outDir, rules); err != nil {
		return err
	}
	log.Printf("  Generated rules.md")
	return nil
}

// generateLintIndex generates the main linting overview page.
func generateLintIndex(outDir string, count int) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Linting", "Lint rules for Kotlin sources")
	w.GeneratedMarker()

	w.Header(1, "Linting")
	w.Paragraph(fmt.Sprintf("leapuast runs inspections over the unified tree. It ships **%d built-in rules**; Starlark scripts add project rules.", count))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("error"), "Critical issue that should be fixed"},
			{InlineCode("warning"), "Potential issue that should be reviewed"},
			{InlineCode("info"), "Informational feedback"},
			{InlineCode("hint"), "Suggestion for improvement"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in `leapuast.yaml`:")
	w.CodeBlock("yaml", `lint:
  disabled: [CV02]       # disable rules
  severity:
    RF01: error          # override severity
  rules:
    RF01:
      ignore: [R]        # rule-specific option`)

	w.Header(2, "Script Rules")
	w.Paragraph("A Starlark script defines " + InlineCode("check(node)") + " and optionally " +
		InlineCode("ID") + ", " + InlineCode("NAME") + ", " + InlineCode("DESCRIPTION") + " and " +
		InlineCode("SEVERITY") + ". The function is called for every element and returns nothing, a message, or a list of messages.")
	w.CodeBlock("python", `ID = "KT100"
SEVERITY = "error"

def check(node):
    if node.kind == "Function" and node.name == "temp":
        return "rename " + node.name`)

	w.Header(2, "Rule Categories")
	var rows [][]string
	for _, g := range groupOrder {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/linting/rules#%s)", capitalizeFirst(g), g),
			groupDescriptions[g],
		})
	}
	w.Table([]string{"Category", "Description"}, rows)

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// generateRulesPage generates the rule reference page.
func generateRulesPage(outDir string, rules []lint.Rule) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Lint Rules", "Built-in lint rules")
	w.GeneratedMarker()

	w.Header(1, "Lint Rules")
	w.Paragraph(fmt.Sprintf("%d rules organized into %d categories.", len(rules), len(groupOrder)))

	grouped := groupRules(rules)
	for _, group := range groupOrder {
		groupRules := grouped[group]
		if len(groupRules) == 0 {
			continue
		}

		w.Line(fmt.Sprintf("## %s {#%s}", capitalizeFirst(group), group))
		w.Newline()
		if desc, ok := groupDescriptions[group]; ok {
			w.Paragraph(desc)
		}
		for _, rule := range groupRules {
			writeRuleDoc(w, rule)
		}
	}

	return os.WriteFile(filepath.Join(outDir, "rules.md"), w.Bytes(), 0600)
}

// groupRules organizes rules by their Group field. GetAllRules already
// returns them sorted by ID.
func groupRules(rules []lint.Rule) map[string][]lint.Rule {
	grouped := make(map[string][]lint.Rule)
	for _, r := range rules {
		grouped[r.Group()] = append(grouped[r.Group()], r)
	}
	return grouped
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule lint.Rule) {
	// ### RF01 - references.unresolved {#RF01}
	w.Line(fmt.Sprintf("### %s - %s {#%s}", rule.ID(), rule.Name(), rule.ID()))
	w.Newline()

	w.Line(fmt.Sprintf("**Severity:** %s", InlineCode(rule.DefaultSeverity().String())))
	w.Newline()

	w.Paragraph(cleanDescription(rule.Description()))

	if doc, ok := rule.(lint.Documented); ok {
		if rationale := doc.Rationale(); rationale != "" {
			w.Header(4, "Why This Matters")
			w.Paragraph(strings.TrimSpace(rationale))
		}
		if bad := doc.BadExample(); bad != "" {
			w.Header(4, "Bad")
			w.CodeBlock("kotlin", bad)
		}
		if good := doc.GoodExample(); good != "" {
			w.Header(4, "Good")
			w.CodeBlock("kotlin", good)
		}
		if fix := doc.Fix(); fix != "" {
			w.Header(4, "How to Fix")
			w.Paragraph(strings.TrimSpace(fix))
		}
	}

	if keys := rule.ConfigKeys(); len(keys) > 0 {
		w.Header(4, "Configuration")
		w.Paragraph(fmt.Sprintf("This rule accepts the following configuration options: %s",
			InlineCode(strings.Join(keys, ", "))))
	}

	w.Line("---")
	w.Newline()
}
