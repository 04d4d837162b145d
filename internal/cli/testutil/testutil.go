// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapuast/internal/cli/output"
)

// Greeter is the main source of the test project. Line 6 reads
//
//	        return prefix + name + missing
//
// so "prefix" starts at 6:16 and "missing" is unresolved.
const Greeter = `package demo

class Greeter(val name: String) {
    fun greet(times: Int): String {
        val prefix = "Hello"
        return prefix + name + missing
    }
}
`

// Helpers declares a top-level function used across files.
const Helpers = `package demo

fun shout(s: String): String {
    return s
}
`

// Caller calls shout from Helpers; "shout" starts at 4:13.
const Caller = `package demo

fun main() {
    val s = shout("hi")
}
`

// SetupTestProject creates a temporary Kotlin project and returns its root.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	files := map[string]string{
		filepath.Join("src", "demo", "Greeter.kt"): Greeter,
		filepath.Join("src", "demo", "Helpers.kt"): Helpers,
		filepath.Join("src", "demo", "Caller.kt"):  Caller,
		filepath.Join("build", "gen", "Gen.kt"):    "class Generated\n",
		filepath.Join("src", "demo", "notes.txt"):  "not kotlin\n",
	}
	for rel, content := range files {
		WriteFile(t, filepath.Join(tmpDir, rel), content)
	}
	return tmpDir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a test renderer with the given mode and TTY state.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// StripANSI removes ANSI escape codes from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// Lines splits s into trimmed, non-empty lines.
func Lines(s string) []string {
	var lines []string
	for line := range strings.SplitSeq(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
