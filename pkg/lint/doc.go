// Package lint provides an inspection framework over the unified tree.
//
// # Rule Registration
//
// Built-in rules register themselves via init() functions when their package
// is imported:
//
//	import _ "github.com/leapstack-labs/leapuast/pkg/lint/rules"
//
// User rules written in Starlark are loaded with pkg/lint/script and handed
// to an Analyzer with WithRules; they never enter the global registry.
//
// # Rule Categories
//
//   - UA (Unsupported): constructs the unified tree has no variant for
//   - RF (References): references the semantic engine cannot bind
//   - ST (Structure): control flow and block structure
//   - CV (Convention): Kotlin coding conventions
//
// # Configuration
//
//	config := lint.NewConfig()
//	config.Disable("CV02")
//	config.SetSeverity("RF01", lint.SeverityError)
//	config.SetRuleOptions("RF01", map[string]any{"ignore": []string{"R"}})
//
// # Creating Custom Rules
//
//	var MyRule = lint.RuleDef{
//		ID:          "MY01",
//		Name:        "custom.my_rule",
//		Group:       "custom",
//		Description: "My custom rule description",
//		Severity:    lint.SeverityWarning,
//		Check:       checkMyRule,
//	}
//
//	func init() {
//		lint.Register(MyRule)
//	}
package lint
