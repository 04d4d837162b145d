// Package script loads lint rules written in Starlark.
//
// A rule script defines a check function that is called once per element of
// the unified tree:
//
//	ID = "KT100"
//	DESCRIPTION = "Functions must not be named temp"
//	SEVERITY = "warning"
//
//	def check(node):
//	    if node.kind == "Function" and node.name == "temp":
//	        return "rename temp"
//
// check returns None, a message string, or a list of message strings. A
// two-parameter check(node, options) also receives the rule's configured
// options as a dict. Every element is passed as a struct with the fields kind,
// source_kind, name, text, line, column and parent_kind.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/leapuast/pkg/lint"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// DefaultMaxSteps bounds the Starlark execution steps of one check run.
const DefaultMaxSteps = 1_000_000

// ErrNoCheck is returned for scripts that do not define a check function.
var ErrNoCheck = errors.New("script does not define check(node)")

// Option configures a script rule.
type Option func(*Rule)

// WithMaxSteps sets the execution step budget per file. Non-positive values
// are ignored.
func WithMaxSteps(n uint64) Option {
	return func(r *Rule) {
		if n > 0 {
			r.maxSteps = n
		}
	}
}

// WithLogger routes script print() output to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rule) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Rule is a lint.Rule backed by a Starlark check function. It is safe for
// concurrent use: globals are frozen after loading and every Check call runs
// on its own thread.
type Rule struct {
	id          string
	name        string
	description string
	severity    lint.Severity
	path        string
	check       *starlark.Function
	maxSteps    uint64
	logger      *slog.Logger
}

var _ lint.Rule = (*Rule)(nil)

// Load reads and compiles the rule script at path.
func Load(path string, opts ...Option) (*Rule, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule script: %w", err)
	}
	return LoadSource(path, src, opts...)
}

// LoadSource compiles a rule script. filename is used for error messages and
// to derive a default rule ID.
func LoadSource(filename string, src []byte, opts ...Option) (*Rule, error) {
	r := &Rule{
		path:     filename,
		severity: lint.SeverityWarning,
		maxSteps: DefaultMaxSteps,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	thread := r.newThread("load " + filename)
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule script %s: %w", filename, err)
	}

	fn, ok := globals["check"].(*starlark.Function)
	if !ok {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoCheck)
	}
	if fn.NumParams() < 1 || fn.NumParams() > 2 {
		return nil, fmt.Errorf("%s: check must take (node) or (node, options), got %d parameters", filename, fn.NumParams())
	}
	r.check = fn

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	r.id = stringGlobal(globals, "ID", "SCRIPT_"+strings.ToUpper(base))
	r.name = stringGlobal(globals, "NAME", "script."+base)
	r.description = stringGlobal(globals, "DESCRIPTION", "Starlark rule "+base)
	if s := stringGlobal(globals, "SEVERITY", ""); s != "" {
		sev, ok := lint.ParseSeverity(s)
		if !ok {
			return nil, fmt.Errorf("%s: invalid SEVERITY %q", filename, s)
		}
		r.severity = sev
	}
	return r, nil
}

func stringGlobal(globals starlark.StringDict, name, fallback string) string {
	if s, ok := globals[name].(starlark.String); ok && string(s) != "" {
		return string(s)
	}
	return fallback
}

func (r *Rule) ID() string                     { return r.id }
func (r *Rule) Name() string                   { return r.name }
func (r *Rule) Group() string                  { return "script" }
func (r *Rule) Description() string            { return r.description }
func (r *Rule) DefaultSeverity() lint.Severity { return r.severity }
func (r *Rule) ConfigKeys() []string           { return nil }

// Path returns the script the rule was loaded from.
func (r *Rule) Path() string { return r.path }

// Check calls the script's check function for every element of file. A
// script failure stops the run for this file and is reported as a single
// error diagnostic.
func (r *Rule) Check(ctx context.Context, file *uast.File, _ *uast.ToolContext, opts map[string]any) []lint.Diagnostic {
	thread := r.newThread(r.path)
	thread.SetMaxExecutionSteps(r.maxSteps)
	stop := context.AfterFunc(ctx, func() { thread.Cancel("context canceled") })
	defer stop()

	var options starlark.Value = starlark.None
	if r.check.NumParams() == 2 {
		v, err := GoToStarlark(opts)
		if err != nil {
			return []lint.Diagnostic{r.failure(file, fmt.Errorf("options: %w", err))}
		}
		options = v
	}

	var diagnostics []lint.Diagnostic
	var failed error
	uast.Walk(file, func(el uast.Element) bool {
		if failed != nil {
			return false
		}
		args := starlark.Tuple{nodeValue(el)}
		if r.check.NumParams() == 2 {
			args = append(args, options)
		}
		result, err := starlark.Call(thread, r.check, args, nil)
		if err != nil {
			failed = err
			return false
		}
		messages, err := messagesOf(result)
		if err != nil {
			failed = err
			return false
		}
		for _, msg := range messages {
			diagnostics = append(diagnostics, lint.At(r.id, r.severity, el.Source(), msg))
		}
		return true
	})

	if failed != nil {
		r.logger.Debug("rule script failed",
			slog.String("rule", r.id),
			slog.String("script", r.path),
			slog.String("error", failed.Error()))
		return append(diagnostics, r.failure(file, failed))
	}
	return diagnostics
}

func (r *Rule) failure(file *uast.File, err error) lint.Diagnostic {
	return lint.At(r.id, lint.SeverityError, file.Source(), fmt.Sprintf("rule script %s failed: %v", r.path, err))
}

func (r *Rule) newThread(name string) *starlark.Thread {
	return &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			r.logger.Debug("rule script print", slog.String("script", r.path), slog.String("msg", msg))
		},
	}
}

// messagesOf converts a check result into diagnostic messages.
func messagesOf(v starlark.Value) ([]string, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return []string{string(val)}, nil
	case starlark.Indexable:
		out := make([]string, 0, val.Len())
		for i := 0; i < val.Len(); i++ {
			s, ok := val.Index(i).(starlark.String)
			if !ok {
				return nil, fmt.Errorf("check returned a list with %s at index %d; want strings", val.Index(i).Type(), i)
			}
			out = append(out, string(s))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("check returned %s; want None, string or list of strings", v.Type())
	}
}

// nodeValue exposes an element to scripts.
func nodeValue(el uast.Element) starlark.Value {
	fields := starlark.StringDict{
		"kind":        starlark.String(el.Kind().String()),
		"source_kind": starlark.String(""),
		"name":        starlark.String(uast.NameOf(el)),
		"text":        starlark.String(""),
		"line":        starlark.MakeInt(0),
		"column":      starlark.MakeInt(0),
		"parent_kind": starlark.None,
	}
	if src := el.Source(); src != nil {
		fields["source_kind"] = starlark.String(string(src.Kind()))
		fields["text"] = starlark.String(src.Text())
		fields["line"] = starlark.MakeInt(src.Span().Start.Line)
		fields["column"] = starlark.MakeInt(src.Span().Start.Column)
	}
	if p := el.Parent(); p != nil {
		fields["parent_kind"] = starlark.String(p.Kind().String())
	}
	return starlarkstruct.FromStringDict(starlark.String("node"), fields)
}
