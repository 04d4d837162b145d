// Package kotlin parses Kotlin source with tree-sitter and lowers the syntax
// tree into cst elements.
//
// Lowering drops grammar wrapper nodes so that every element's parent is the
// element owning the slot it sits in. Constructs the unified tree does not
// model keep their own kind, and syntax errors become error elements; neither
// fails the parse.
package kotlin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/kotlin"

	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// DefaultMaxFileSize is the largest source accepted by default.
const DefaultMaxFileSize = 10 * 1024 * 1024

var (
	// ErrFileTooLarge is returned for sources above the configured limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidContent is returned for sources that are not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")
)

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize sets the maximum source size in bytes. Non-positive values
// are ignored.
func WithMaxFileSize(bytes int64) Option {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// WithLogger sets the logger used to report syntax errors.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Parser parses Kotlin files. It is safe for concurrent use; every Parse call
// creates its own tree-sitter parser.
type Parser struct {
	maxFileSize int64
	logger      *slog.Logger
}

// NewParser creates a parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		maxFileSize: DefaultMaxFileSize,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses content and returns the lowered file element. path is used
// for logging only.
func (p *Parser) Parse(ctx context.Context, content []byte, path string) (*cst.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %s: size %d exceeds limit %d", ErrFileTooLarge, path, len(content), p.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidContent, path)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(kotlin.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled: %w", err)
	}

	l := &lowerer{src: content}
	file := l.file(tree.RootNode())
	if l.errors > 0 {
		p.logger.Debug("source has syntax errors",
			slog.String("file", path),
			slog.Int("errors", l.errors))
	}
	return file, nil
}
