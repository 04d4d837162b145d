// Package rules registers every built-in inspection. Import it for its side
// effects:
//
//	import _ "github.com/leapstack-labs/leapuast/pkg/lint/rules"
package rules
