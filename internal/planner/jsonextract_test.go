package planner

import "testing"

func TestExtractLargestJSONObject_PicksLongestValid(t *testing.T) {
	text := `Sure, here's the plan: {"a":1} but actually {"actions":[{"type":"tool_use","tool_name":"read_file","parameters":{"file_path":"x"}}],"metadata":{"is_final":true}}`
	got := extractLargestJSONObject(text)
	if got == nil {
		t.Fatal("expected a parsed object")
	}
	if _, ok := got["actions"]; !ok {
		t.Errorf("expected the longer object with 'actions' to win, got %v", got)
	}
}

func TestExtractLargestJSONObject_IgnoresUnbalanced(t *testing.T) {
	text := `{"broken": [1, 2, {"nested": true}`
	got := extractLargestJSONObject(text)
	if got != nil {
		t.Errorf("expected nil for unbalanced input, got %v", got)
	}
}

func TestExtractLargestJSONObject_NoJSON(t *testing.T) {
	if got := extractLargestJSONObject("just some prose, no braces here"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestExtractLargestJSONObject_MarkdownFenced(t *testing.T) {
	text := "```json\n{\"actions\":[]}\n```"
	got := extractLargestJSONObject(text)
	if got == nil {
		t.Fatal("expected a parsed object despite markdown fence")
	}
}
