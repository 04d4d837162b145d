package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/cst"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// parsePosition parses a 1-based "line:column" argument.
func parsePosition(s string) (cst.Position, error) {
	lineStr, colStr, ok := strings.Cut(s, ":")
	if !ok {
		return cst.Position{}, fmt.Errorf("position %q: want line:column", s)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return cst.Position{}, fmt.Errorf("position %q: invalid line", s)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 1 {
		return cst.Position{}, fmt.Errorf("position %q: invalid column", s)
	}
	return cst.Position{Line: line, Column: col}, nil
}

// formatSpan renders the start of el's source as line:column.
func formatSpan(el uast.Element) string {
	if el == nil || el.Source() == nil {
		return "-"
	}
	return el.Source().Span().Start.String()
}
