package document

import "testing"

const arithmeticDoc = `{
  "version": "1.0.0",
  "nodes": [
    {"id": "a", "expr": {"kind": "lit", "type": "int", "value": 10}},
    {"id": "b", "expr": {"kind": "lit", "type": "int", "value": 32}},
    {"id": "sum", "expr": {"kind": "call", "ns": "core", "name": "add", "args": ["a", "b"]}}
  ],
  "result": "sum"
}`

func TestParseArithmeticDocument(t *testing.T) {
	doc, err := Parse([]byte(arithmeticDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Result != "sum" {
		t.Fatalf("unexpected result id: %q", doc.Result)
	}
	sum, ok := doc.Node("sum")
	if !ok {
		t.Fatal("expected sum node")
	}
	if sum.Expr.Kind != "call" {
		t.Fatalf("unexpected kind: %q", sum.Expr.Kind)
	}
	args := sum.Expr.Args("args")
	if len(args) != 2 || !args[0].IsNodeID || args[0].NodeID != "a" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestParseRejectsMissingResult(t *testing.T) {
	_, err := Parse([]byte(`{"version":"1.0.0","nodes":[{"id":"a","expr":{"kind":"lit","type":"int","value":1}}]}`))
	if err == nil {
		t.Fatal("expected error for missing result")
	}
}

func TestParseRejectsUnknownResultTarget(t *testing.T) {
	_, err := Parse([]byte(`{"version":"1.0.0","nodes":[{"id":"a","expr":{"kind":"lit","type":"int","value":1}}],"result":"nope"}`))
	if err == nil {
		t.Fatal("expected error for unknown result node")
	}
}

func TestParseRejectsDuplicateNodeIDs(t *testing.T) {
	_, err := Parse([]byte(`{
		"version":"1.0.0",
		"nodes":[
			{"id":"a","expr":{"kind":"lit","type":"int","value":1}},
			{"id":"a","expr":{"kind":"lit","type":"int","value":2}}
		],
		"result":"a"
	}`))
	if err == nil {
		t.Fatal("expected error for duplicate node ids")
	}
}

const blockDoc = `{
  "version": "2.0.0",
  "nodes": [
    {"id": "main", "entry": "b0", "blocks": [
      {"id": "b0", "instructions": [
        {"op": "assign", "target": "x", "expr": {"kind": "lit", "type": "int", "value": 1}}
      ], "terminator": {"kind": "jump", "to": "b1"}},
      {"id": "b1", "instructions": [], "terminator": {"kind": "return", "value": "x"}}
    ]}
  ],
  "result": "main"
}`

func TestParseBlockNode(t *testing.T) {
	doc, err := Parse([]byte(blockDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	main, ok := doc.Node("main")
	if !ok || !main.IsBlock {
		t.Fatal("expected block-form main node")
	}
	if main.Entry != "b0" {
		t.Fatalf("unexpected entry: %q", main.Entry)
	}
	if len(main.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(main.Blocks))
	}
}

func TestParseRejectsUnknownJumpTarget(t *testing.T) {
	bad := `{"version":"2.0.0","nodes":[{"id":"main","entry":"b0","blocks":[
		{"id":"b0","instructions":[],"terminator":{"kind":"jump","to":"nowhere"}}
	]}],"result":"main"}`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Fatal("expected error for unknown jump target")
	}
}

func TestParseRejectsUnknownEntry(t *testing.T) {
	bad := `{"version":"2.0.0","nodes":[{"id":"main","entry":"missing","blocks":[
		{"id":"b0","instructions":[],"terminator":{"kind":"return"}}
	]}],"result":"main"}`
	if _, err := Parse([]byte(bad)); err == nil {
		t.Fatal("expected error for unknown entry block")
	}
}

func TestIsPIR(t *testing.T) {
	doc := &Document{Version: "2.1.0"}
	if !doc.IsPIR() {
		t.Fatal("expected 2.x.y to be PIR")
	}
	doc.Version = "1.3.0"
	if doc.IsPIR() {
		t.Fatal("expected 1.x.y to not be PIR")
	}
}

func TestValidIdentifier(t *testing.T) {
	cases := map[string]bool{"x": true, "_foo": true, "foo_bar2": true, "2bad": false, "has-dash": false, "": false}
	for in, want := range cases {
		if got := ValidIdentifier(in); got != want {
			t.Errorf("ValidIdentifier(%q) = %v, want %v", in, got, want)
		}
	}
}
