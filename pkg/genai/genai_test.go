package genai

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCleanJSONFenced(t *testing.T) {
	reply := "```json\n{\"summary\": \"calm session\", \"risk\": \"low\"}\n```"
	out, err := CleanJSON(reply)
	if err != nil {
		t.Fatalf("CleanJSON: %v", err)
	}
	var parsed map[string]string
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["summary"] != "calm session" {
		t.Fatalf("unexpected payload %v", parsed)
	}
}

func TestCleanJSONRepairsTrailingComma(t *testing.T) {
	out, err := CleanJSON(`{"a": 1, "b": 2,}`)
	if err != nil {
		t.Fatalf("CleanJSON: %v", err)
	}
	var parsed map[string]int
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("repaired output invalid: %v", err)
	}
	if parsed["b"] != 2 {
		t.Fatalf("unexpected payload %v", parsed)
	}
}

func TestCleanJSONPrettyPrints(t *testing.T) {
	out, err := CleanJSON(`{"a":1}`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "\n") {
		t.Fatal("expected pretty-printed output")
	}
}
