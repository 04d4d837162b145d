package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leapuast/internal/testutil"
	"github.com/leapstack-labs/leapuast/pkg/cst"
	"github.com/leapstack-labs/leapuast/pkg/lint"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// sample converts:
//
//	fun temp(n: Int) {
//	    val keep = n
//	}
func sample(t *testing.T) *uast.File {
	t.Helper()
	span := func(line, col int) cst.Span {
		return cst.Span{Start: cst.Position{Line: line, Column: col}, End: cst.Position{Line: line, Column: col + 4}}
	}
	local := cst.New(cst.KindProperty, "val keep = n").
		Set(cst.SlotName, cst.New(cst.KindIdentifier, "keep")).
		Set(cst.SlotInitializer, cst.New(cst.KindNameReference, "n").SetSpan(span(2, 16))).
		SetSpan(span(2, 5))
	fn := cst.New(cst.KindFunction, "fun temp(n: Int) {...}").
		Set(cst.SlotName, cst.New(cst.KindIdentifier, "temp")).
		Append(cst.SlotParameters, cst.New(cst.KindParameter, "n: Int").
			Set(cst.SlotName, cst.New(cst.KindIdentifier, "n"))).
		Set(cst.SlotBody, cst.New(cst.KindBlock, "{...}").Append(cst.SlotStatements, local)).
		SetSpan(span(1, 1))
	root := cst.New(cst.KindFile, "").Append(cst.SlotDeclarations, fn).SetSpan(span(1, 1))
	file, ok := uast.Convert(root, nil).(*uast.File)
	require.True(t, ok)
	return file
}

func TestLoadSource_Metadata(t *testing.T) {
	r, err := LoadSource("naming.star", []byte(`
ID = "KT100"
NAME = "custom.temp_name"
DESCRIPTION = "No temp functions"
SEVERITY = "error"

def check(node):
    return None
`))
	require.NoError(t, err)
	assert.Equal(t, "KT100", r.ID())
	assert.Equal(t, "custom.temp_name", r.Name())
	assert.Equal(t, "script", r.Group())
	assert.Equal(t, "No temp functions", r.Description())
	assert.Equal(t, lint.SeverityError, r.DefaultSeverity())
	assert.Equal(t, "naming.star", r.Path())

	r, err = LoadSource("dir/no_temp.star", []byte("def check(node):\n    pass\n"))
	require.NoError(t, err)
	assert.Equal(t, "SCRIPT_NO_TEMP", r.ID())
	assert.Equal(t, lint.SeverityWarning, r.DefaultSeverity())
}

func TestLoadSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "def check(:\n", "failed to load rule script"},
		{"no check", "X = 1\n", ErrNoCheck.Error()},
		{"check not a function", "check = 3\n", ErrNoCheck.Error()},
		{"arity", "def check():\n    pass\n", "check must take"},
		{"severity", "SEVERITY = \"loud\"\ndef check(node):\n    pass\n", `invalid SEVERITY "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSource("x.star", []byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.star")
	require.NoError(t, os.WriteFile(path, []byte("def check(node):\n    pass\n"), 0o644))
	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "SCRIPT_RULE", r.ID())

	_, err = Load(filepath.Join(t.TempDir(), "missing.star"))
	assert.Error(t, err)
}

func TestCheck_Messages(t *testing.T) {
	r, err := LoadSource("temp.star", []byte(`
ID = "KT100"

def check(node):
    if node.kind == "Function" and node.name == "temp":
        return "rename " + node.name
    if node.kind == "SimpleReference":
        return ["ref %s in %s at %d:%d" % (node.name, node.parent_kind, node.line, node.column)]
`), WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)

	diags := r.Check(t.Context(), sample(t), nil, nil)
	require.Len(t, diags, 2)
	assert.Equal(t, "rename temp", diags[0].Message)
	assert.Equal(t, 1, diags[0].Pos.Line)
	assert.Equal(t, "ref n in Variable at 2:16", diags[1].Message)
	for _, d := range diags {
		assert.Equal(t, "KT100", d.RuleID)
		assert.Equal(t, lint.SeverityWarning, d.Severity)
	}
}

func TestCheck_Options(t *testing.T) {
	r, err := LoadSource("banned.star", []byte(`
def check(node, options):
    if node.kind == "Variable" and node.name in options.get("banned", []):
        return "banned name " + node.name
`))
	require.NoError(t, err)

	diags := r.Check(t.Context(), sample(t), nil, map[string]any{"banned": []any{"keep"}})
	require.Len(t, diags, 1)
	assert.Equal(t, "banned name keep", diags[0].Message)

	assert.Empty(t, r.Check(t.Context(), sample(t), nil, nil))
}

func TestCheck_Failures(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"runtime error", "def check(node):\n    return 1 // 0\n", "division by zero"},
		{"bad result", "def check(node):\n    return 42\n", "want None, string or list of strings"},
		{"bad list", "def check(node):\n    return [1]\n", "at index 0"},
		{"runaway", "def check(node):\n    for i in range(1000000):\n        pass\n", "too many steps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := LoadSource("bad.star", []byte(tt.src), WithMaxSteps(10_000))
			require.NoError(t, err)

			diags := r.Check(t.Context(), sample(t), nil, nil)
			require.Len(t, diags, 1)
			assert.Equal(t, lint.SeverityError, diags[0].Severity)
			assert.Contains(t, diags[0].Message, tt.want)
		})
	}
}

func TestCheck_RunsInAnalyzer(t *testing.T) {
	r, err := LoadSource("all.star", []byte("ID = \"KT200\"\ndef check(node):\n    if node.kind == \"File\":\n        return \"seen\"\n"))
	require.NoError(t, err)

	analyzer := lint.NewAnalyzer(lint.NewConfig().SetSeverity("KT200", lint.SeverityHint),
		lint.WithRules(r), lint.WithOnly("KT200"))
	diags := analyzer.Analyze(t.Context(), sample(t), nil, "a.kt")
	require.Len(t, diags, 1)
	assert.Equal(t, lint.SeverityHint, diags[0].Severity)
	assert.Equal(t, "a.kt", diags[0].FilePath)
}

func TestGoToStarlark(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		wantStr string
		wantErr bool
	}{
		{"string", "hello", `"hello"`, false},
		{"int", 42, "42", false},
		{"int64", int64(7), "7", false},
		{"float", 1.5, "1.5", false},
		{"bool", true, "True", false},
		{"nil", nil, "None", false},
		{"strings", []string{"a", "b"}, `["a", "b"]`, false},
		{"mixed list", []any{"a", 1}, `["a", 1]`, false},
		{"map", map[string]any{"b": 1, "a": "x"}, `{"a": "x", "b": 1}`, false},
		{"unsupported", struct{}{}, "", true},
		{"nested unsupported", []any{struct{}{}}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GoToStarlark(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}

	v, err := GoToStarlark(map[string]any(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, v.(*starlark.Dict).Len())
}
