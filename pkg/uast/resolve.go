package uast

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// ToolContext carries the semantic engine an analysis tool resolves against.
// A nil ToolContext or a nil Analyzer makes every resolution return nil.
type ToolContext struct {
	Analyzer cst.Analyzer
	Depth    cst.Depth
	Logger   *slog.Logger
}

// NewToolContext creates a ToolContext. A nil logger discards output.
func NewToolContext(analyzer cst.Analyzer, depth cst.Depth, logger *slog.Logger) *ToolContext {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ToolContext{Analyzer: analyzer, Depth: depth, Logger: logger}
}

func (tc *ToolContext) logger() *slog.Logger {
	if tc.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return tc.Logger
}

func (tc *ToolContext) bindings(ctx context.Context, src cst.Node) (cst.Bindings, bool) {
	if tc == nil || tc.Analyzer == nil || src == nil {
		return nil, false
	}
	b, err := tc.Analyzer.Analyze(ctx, src, tc.Depth)
	if err != nil {
		tc.logger().Debug("semantic analysis failed",
			slog.String("node", src.Text()),
			slog.String("error", err.Error()))
		return nil, false
	}
	if b == nil {
		return nil, false
	}
	return b, true
}

// resolveDeclaration binds a reference or call through the semantic engine
// and converts the target with its full parent chain. Every failure yields nil.
func resolveDeclaration(ctx context.Context, tc *ToolContext, src cst.Node) Declaration {
	b, ok := tc.bindings(ctx, src)
	if !ok {
		return nil
	}
	target, err := b.Declaration(src)
	if err != nil || target == nil {
		tc.logUnresolved(src, err)
		return nil
	}
	return asDeclaration(ConvertWithParent(target))
}

// resolveType binds a type reference to its class declaration.
func resolveType(ctx context.Context, tc *ToolContext, src cst.Node) Declaration {
	b, ok := tc.bindings(ctx, src)
	if !ok {
		return nil
	}
	target, err := b.TypeDeclaration(src)
	if err != nil || target == nil {
		tc.logUnresolved(src, err)
		return nil
	}
	if cls, ok := asDeclaration(ConvertWithParent(target)).(*Class); ok {
		return cls
	}
	return nil
}

func (tc *ToolContext) logUnresolved(src cst.Node, err error) {
	if err == nil {
		err = cst.ErrUnresolved
	}
	tc.logger().Debug("reference not resolved",
		slog.String("ref", src.Text()),
		slog.Int("line", src.Span().Start.Line),
		slog.String("reason", err.Error()))
}

// asDeclaration drops anything that is not a declaration.
func asDeclaration(el Element) Declaration {
	if d, ok := el.(Declaration); ok {
		return d
	}
	return nil
}

func evaluate(ctx context.Context, tc *ToolContext, src cst.Node) (any, bool) {
	b, ok := tc.bindings(ctx, src)
	if !ok {
		return nil, false
	}
	return b.ConstantValue(src)
}
