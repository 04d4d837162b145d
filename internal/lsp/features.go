package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapuast/pkg/cst"
	"github.com/leapstack-labs/leapuast/pkg/lint"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

const diagnosticSource = "leapuast"

// openDocument parses doc, stores it and swaps its tree into the semantic
// engine in place of the previous version.
func (s *Server) openDocument(ctx context.Context, doc *Document) {
	root, err := s.parser.Parse(ctx, []byte(doc.Content), URIToPath(doc.URI))
	if err != nil {
		doc.Err = err
		s.logger.Warn("parse failed", slog.String("uri", doc.URI), slog.String("error", err.Error()))
	} else if file, ok := uast.Convert(root, nil).(*uast.File); ok {
		doc.Root, doc.File = root, file
	}

	if prev := s.documents.Put(doc); prev != nil && prev.Root != nil {
		s.engine.RemoveFile(prev.Root)
	}
	if doc.Root != nil {
		s.engine.AddFile(doc.Root)
	}
}

func (s *Server) toolContext() *uast.ToolContext {
	return uast.NewToolContext(s.engine, s.depth, s.logger)
}

// publishDiagnostics runs the inspection rules over an open document and
// sends the findings to the client.
func (s *Server) publishDiagnostics(ctx context.Context, uri string) {
	diagnostics := []Diagnostic{}
	doc := s.documents.Get(uri)
	switch {
	case doc == nil:
	case doc.File == nil && doc.Err != nil:
		diagnostics = append(diagnostics, Diagnostic{
			Severity: DiagnosticSeverityError,
			Source:   diagnosticSource,
			Message:  doc.Err.Error(),
		})
	case doc.File != nil:
		for _, d := range s.analyzer.Analyze(ctx, doc.File, s.toolContext(), URIToPath(uri)) {
			diagnostics = append(diagnostics, toDiagnostic(d))
		}
	}

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func toDiagnostic(d lint.Diagnostic) Diagnostic {
	end := d.EndPos
	if !end.IsValid() {
		end = d.Pos
	}
	return Diagnostic{
		Range:    Range{Start: editorPosition(d.Pos), End: editorPosition(end)},
		Severity: toSeverity(d.Severity),
		Code:     d.RuleID,
		Source:   diagnosticSource,
		Message:  d.Message,
	}
}

func toSeverity(sev lint.Severity) DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return DiagnosticSeverityError
	case lint.SeverityInfo:
		return DiagnosticSeverityInformation
	case lint.SeverityHint:
		return DiagnosticSeverityHint
	default:
		return DiagnosticSeverityWarning
	}
}

// elementAt returns the unified element under an editor position.
func (s *Server) elementAt(params TextDocumentPositionParams) uast.Element {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil || doc.Root == nil {
		return nil
	}
	return uast.ElementAt(doc.Root, doc.SourcePosition(params.Position))
}

// getHover describes the element under the cursor, its resolved declaration
// for references, and otherwise its enclosing declaration.
func (s *Server) getHover(ctx context.Context, params TextDocumentPositionParams) *Hover {
	el := s.elementAt(params)
	if el == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "```\n%s\n```", el.LogString())
	if ref := uast.NearestReference(el); ref != nil {
		if decl := ref.Resolve(ctx, s.toolContext()); decl != nil {
			fmt.Fprintf(&b, "\n\nResolves to %s `%s`", decl.Kind(), uast.DisplayName(decl))
		} else {
			b.WriteString("\n\nUnresolved")
		}
	} else if decl := uast.EnclosingDeclaration(el.Parent()); decl != nil {
		fmt.Fprintf(&b, "\n\nIn %s `%s`", decl.Kind(), uast.DisplayName(decl))
	}

	hover := &Hover{Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: b.String()}}
	if src := el.Source(); src != nil {
		r := spanRange(src.Span())
		hover.Range = &r
	}
	return hover
}

// getDefinition resolves the reference under the cursor and returns the
// location of its declaration. Declarations outside the open documents have
// no location.
func (s *Server) getDefinition(ctx context.Context, params TextDocumentPositionParams) *Location {
	ref := uast.NearestReference(s.elementAt(params))
	if ref == nil {
		return nil
	}
	decl := ref.Resolve(ctx, s.toolContext())
	if decl == nil || decl.Source() == nil {
		return nil
	}

	owner := s.documents.Owner(cst.Root(decl.Source()))
	if owner == nil {
		return nil
	}
	span := decl.Source().Span()
	if name := decl.Source().Child(cst.SlotName); name != nil {
		span = name.Span()
	}
	return &Location{URI: owner.URI, Range: spanRange(span)}
}
