package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapuast/internal/cli/testutil"
	logtest "github.com/leapstack-labs/leapuast/internal/testutil"
	"github.com/leapstack-labs/leapuast/pkg/cst"
)

// session builds a framed client input stream.
type session struct {
	buf bytes.Buffer
}

func (s *session) request(id int, method string, params any) {
	s.write(map[string]any{"jsonrpc": "2.0", "id": id, "method": method, "params": params})
}

func (s *session) notify(method string, params any) {
	s.write(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

func (s *session) write(msg any) {
	body, _ := json.Marshal(msg)
	fmt.Fprintf(&s.buf, "Content-Length: %d\r\n\r\n%s", len(body), body)
}

func (s *session) open(uri, text string) {
	s.notify("textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: "kotlin", Version: 1, Text: text},
	})
}

func at(uri string, line, char uint32) TextDocumentPositionParams {
	return TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: uri},
		Position:     Position{Line: line, Character: char},
	}
}

// transcript holds the decoded server output.
type transcript struct {
	responses     map[int]*JSONRPCMessage
	notifications []*JSONRPCMessage
}

func (tr *transcript) diagnostics(t *testing.T) []PublishDiagnosticsParams {
	t.Helper()
	var out []PublishDiagnosticsParams
	for _, n := range tr.notifications {
		if n.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var p PublishDiagnosticsParams
		require.NoError(t, json.Unmarshal(n.Params, &p))
		out = append(out, p)
	}
	return out
}

func (tr *transcript) result(t *testing.T, id int, v any) {
	t.Helper()
	msg, ok := tr.responses[id]
	require.True(t, ok, "no response for request %d", id)
	require.Nil(t, msg.Error)
	require.NoError(t, json.Unmarshal(msg.Result, v))
}

// run feeds the session to a server and decodes everything it wrote.
func run(t *testing.T, s *session, opts ...Option) *transcript {
	t.Helper()
	var out bytes.Buffer
	srv := NewServerWithLogger(&s.buf, &out, logtest.NewTestLogger(t), opts...)
	require.NoError(t, srv.Run(t.Context()))

	tr := &transcript{responses: make(map[int]*JSONRPCMessage)}
	r := bufio.NewReader(&out)
	for {
		msg, err := readFrame(r)
		if err == io.EOF {
			return tr
		}
		require.NoError(t, err)
		if msg.ID != nil {
			id, err := strconv.Atoi(string(*msg.ID))
			require.NoError(t, err)
			tr.responses[id] = msg
			continue
		}
		tr.notifications = append(tr.notifications, msg)
	}
}

func readFrame(r *bufio.Reader) (*JSONRPCMessage, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(header, "Content-Length:")))
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadString('\n'); err != nil {
		return nil, err
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	var msg JSONRPCMessage
	return &msg, json.Unmarshal(body, &msg)
}

func TestServer_Session(t *testing.T) {
	dir := t.TempDir()
	uri := PathToURI(filepath.Join(dir, "Greeter.kt"))

	var s session
	s.request(1, "initialize", InitializeParams{RootURI: PathToURI(dir)})
	s.notify("initialized", struct{}{})
	s.open(uri, testutil.Greeter)
	s.request(2, "textDocument/hover", at(uri, 5, 15))
	s.request(3, "textDocument/definition", at(uri, 5, 15))
	s.request(4, "textDocument/definition", at(uri, 5, 31))
	s.request(5, "textDocument/hover", at(uri, 40, 0))
	s.request(6, "workspace/symbol", struct{}{})
	s.notify("textDocument/didClose", DidCloseTextDocumentParams{TextDocument: TextDocumentIdentifier{URI: uri}})
	s.request(7, "shutdown", nil)
	s.request(8, "textDocument/hover", at(uri, 5, 15))
	s.notify("exit", nil)
	s.request(9, "textDocument/hover", at(uri, 5, 15))

	tr := run(t, &s)

	var init InitializeResult
	tr.result(t, 1, &init)
	assert.True(t, init.Capabilities.HoverProvider)
	assert.True(t, init.Capabilities.DefinitionProvider)
	assert.Equal(t, TextDocumentSyncKindFull, init.Capabilities.TextDocumentSync.Change)

	var hover Hover
	tr.result(t, 2, &hover)
	assert.Equal(t, MarkupKindMarkdown, hover.Contents.Kind)
	assert.Contains(t, hover.Contents.Value, "USimpleReferenceExpression (prefix)")
	assert.Contains(t, hover.Contents.Value, "Resolves to Variable `prefix`")
	require.NotNil(t, hover.Range)
	assert.Equal(t, Range{Start: Position{5, 15}, End: Position{5, 21}}, *hover.Range)

	var loc Location
	tr.result(t, 3, &loc)
	assert.Equal(t, uri, loc.URI)
	assert.Equal(t, Range{Start: Position{4, 12}, End: Position{4, 18}}, loc.Range)

	var none *Location
	tr.result(t, 4, &none)
	assert.Nil(t, none, "unresolved references have no definition")
	var noHover *Hover
	tr.result(t, 5, &noHover)
	assert.Nil(t, noHover)

	require.NotNil(t, tr.responses[6].Error)
	assert.Equal(t, codeMethodNotFound, tr.responses[6].Error.Code)
	assert.Nil(t, tr.responses[7].Error)
	require.NotNil(t, tr.responses[8].Error)
	assert.Equal(t, codeInvalidRequest, tr.responses[8].Error.Code)
	assert.NotContains(t, tr.responses, 9, "nothing is read after exit")

	diags := tr.diagnostics(t)
	require.Len(t, diags, 2)
	var rf01 []Diagnostic
	for _, d := range diags[0].Diagnostics {
		assert.Equal(t, diagnosticSource, d.Source)
		if d.Code == "RF01" {
			rf01 = append(rf01, d)
		}
	}
	require.Len(t, rf01, 1)
	assert.Equal(t, `unresolved reference "missing"`, rf01[0].Message)
	assert.Equal(t, DiagnosticSeverityWarning, rf01[0].Severity)
	assert.Equal(t, Position{5, 31}, rf01[0].Range.Start)
	assert.Empty(t, diags[1].Diagnostics, "closing clears diagnostics")
}

func TestServer_CrossDocumentDefinition(t *testing.T) {
	dir := t.TempDir()
	helpers := PathToURI(filepath.Join(dir, "Helpers.kt"))
	caller := PathToURI(filepath.Join(dir, "Caller.kt"))

	var s session
	s.request(1, "initialize", InitializeParams{RootURI: PathToURI(dir)})
	s.open(helpers, testutil.Helpers)
	s.open(caller, testutil.Caller)
	s.request(2, "textDocument/definition", at(caller, 3, 12))
	s.notify("textDocument/didClose", DidCloseTextDocumentParams{TextDocument: TextDocumentIdentifier{URI: helpers}})
	s.request(3, "textDocument/definition", at(caller, 3, 12))

	tr := run(t, &s, WithDepth(cst.DepthFull))

	var loc Location
	tr.result(t, 2, &loc)
	assert.Equal(t, helpers, loc.URI)
	assert.Equal(t, Position{2, 4}, loc.Range.Start)

	var none *Location
	tr.result(t, 3, &none)
	assert.Nil(t, none, "closed documents leave the engine")
}

func TestServer_DidChangeReparses(t *testing.T) {
	dir := t.TempDir()
	uri := PathToURI(filepath.Join(dir, "A.kt"))

	var s session
	s.request(1, "initialize", InitializeParams{RootURI: PathToURI(dir)})
	s.open(uri, "package demo\n\nfun a() = missing\n")
	s.notify("textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument:   VersionedTextDocumentIdentifier{TextDocumentIdentifier: TextDocumentIdentifier{URI: uri}, Version: 2},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: "package demo\n\nval missing = 1\nfun a() = missing\n"}},
	})

	tr := run(t, &s)

	diags := tr.diagnostics(t)
	require.Len(t, diags, 2)
	codes := func(p PublishDiagnosticsParams) []string {
		var out []string
		for _, d := range p.Diagnostics {
			out = append(out, d.Code)
		}
		return out
	}
	assert.Contains(t, codes(diags[0]), "RF01")
	assert.NotContains(t, codes(diags[1]), "RF01")
}

func TestServer_UnchangedContentKeepsTree(t *testing.T) {
	uri := PathToURI(filepath.Join(t.TempDir(), "A.kt"))
	text := "package demo\n\nfun a() = missing\n"
	srv := NewServerWithLogger(strings.NewReader(""), io.Discard, logtest.NewTestLogger(t))
	srv.openDocument(t.Context(), NewDocument(uri, text, 1))
	first := srv.documents.Get(uri)
	require.NotNil(t, first.Root)

	change := func(version int, text string) {
		params, err := json.Marshal(DidChangeTextDocumentParams{
			TextDocument:   VersionedTextDocumentIdentifier{TextDocumentIdentifier: TextDocumentIdentifier{URI: uri}, Version: version},
			ContentChanges: []TextDocumentContentChangeEvent{{Text: text}},
		})
		require.NoError(t, err)
		require.NoError(t, srv.handleDidChange(t.Context(), &JSONRPCMessage{Method: "textDocument/didChange", Params: params}))
	}

	change(2, text)
	doc := srv.documents.Get(uri)
	assert.Equal(t, 2, doc.Version)
	assert.Same(t, first.Root, doc.Root)
	assert.Equal(t, []cst.Node{first.Root}, srv.engine.Files())

	change(3, text+"val b = 1\n")
	doc = srv.documents.Get(uri)
	assert.NotSame(t, first.Root, doc.Root)
	assert.NotEqual(t, first.Hash, doc.Hash)
	assert.Equal(t, []cst.Node{doc.Root}, srv.engine.Files())
}

func TestServer_ProjectConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "leapuast.yaml"), "lint:\n  disabled: [RF01]\n")
	uri := PathToURI(filepath.Join(dir, "Greeter.kt"))

	var s session
	s.request(1, "initialize", InitializeParams{RootURI: PathToURI(dir)})
	s.notify("initialized", struct{}{})
	s.open(uri, testutil.Greeter)

	tr := run(t, &s)

	diags := tr.diagnostics(t)
	require.Len(t, diags, 1)
	for _, d := range diags[0].Diagnostics {
		assert.NotEqual(t, "RF01", d.Code)
	}
}

func TestServer_InvalidProjectConfig(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "leapuast.yaml"), "analysis_depth: deep\n")

	var s session
	s.request(1, "initialize", InitializeParams{RootURI: PathToURI(dir)})
	s.notify("initialized", struct{}{})

	tr := run(t, &s)

	require.Len(t, tr.notifications, 1)
	assert.Equal(t, "window/showMessage", tr.notifications[0].Method)
	var msg ShowMessageParams
	require.NoError(t, json.Unmarshal(tr.notifications[0].Params, &msg))
	assert.Equal(t, MessageTypeWarning, msg.Type)
	assert.Contains(t, msg.Message, "unknown analysis depth")
}

func TestServer_MalformedFrames(t *testing.T) {
	var s session
	s.buf.WriteString("X-Header: 1\r\n\r\n")
	s.buf.WriteString("Content-Length: 5\r\n\r\n{oops")
	s.request(1, "shutdown", nil)

	tr := run(t, &s)
	assert.Contains(t, tr.responses, 1, "the server recovers after bad frames")
}
