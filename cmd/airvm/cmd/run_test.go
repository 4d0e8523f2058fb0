package cmd

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = orig

	out, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return string(out)
}

func TestRunEvaluatesAnExpressionDocument(t *testing.T) {
	doc := `{
		"version": "1.0.0",
		"nodes": [{"id": "main", "expr": {
			"kind": "call", "ns": "core", "name": "add",
			"args": [{"kind": "lit", "type": "int", "value": 2}, {"kind": "lit", "type": "int", "value": 3}]
		}}],
		"result": "main"
	}`
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rootCmd.SetArgs([]string{"run", path})
	out := captureStdout(t, func() {
		if err := Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	})
	if out != "5\n" {
		t.Fatalf("expected %q, got %q", "5\n", out)
	}
}

func TestRunSetPatchesTheDocumentBeforeEvaluating(t *testing.T) {
	doc := `{
		"version": "1.0.0",
		"nodes": [{"id": "main", "expr": {"kind": "lit", "type": "int", "value": 1}}],
		"result": "main"
	}`
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rootCmd.SetArgs([]string{"run", path, "--set", "nodes.0.expr.value=9"})
	out := captureStdout(t, func() {
		if err := Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	})
	if out != "9\n" {
		t.Fatalf("expected %q, got %q", "9\n", out)
	}
}

func TestApplySetTypesNumbersAndStringsDifferently(t *testing.T) {
	raw := []byte(`{"n": 1, "s": "x"}`)

	got, err := applySet(raw, "n=42")
	if err != nil {
		t.Fatalf("applySet: %v", err)
	}
	if r := gjson.GetBytes(got, "n"); r.Type != gjson.Number || r.Num != 42 {
		t.Fatalf("expected n to become the JSON number 42, got %s (%v)", r.Raw, r.Type)
	}

	got, err = applySet(raw, "s=hello")
	if err != nil {
		t.Fatalf("applySet: %v", err)
	}
	if r := gjson.GetBytes(got, "s"); r.Type != gjson.String || r.Str != "hello" {
		t.Fatalf("expected s to become the JSON string \"hello\", got %s (%v)", r.Raw, r.Type)
	}
}
