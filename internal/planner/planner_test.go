package planner

import (
	"context"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/codeagent/internal/model"
	"github.com/nextlevelbuilder/codeagent/internal/providers"
)

type fakeModelClient struct {
	response providers.ModelResponse
	err      error
}

func (f *fakeModelClient) Generate(_ context.Context, _ string, _ map[string]any) (providers.ModelResponse, error) {
	return f.response, f.err
}

func (f *fakeModelClient) IsAvailable(_ context.Context) bool { return true }

func TestPlanner_Plan_ParsesToolAction(t *testing.T) {
	client := &fakeModelClient{response: providers.ModelResponse{
		Content: `{"actions":[{"type":"tool_use","tool_name":"read_file","parameters":{"file_path":"README.md"}}],"metadata":{"is_final":true,"expected_follow_up":false,"confidence":0.9}}`,
	}}
	p := New(client)

	plan := p.Plan(context.Background(), model.Context{UserPrompt: "show me README.md"}, nil, 1, 5, map[string]any{})

	foundReadFile := false
	for _, a := range plan.Actions {
		if a.IsTool() && a.ToolName == "read_file" {
			foundReadFile = true
		}
	}
	if !foundReadFile {
		t.Errorf("expected a read_file action, got %+v", plan.Actions)
	}
	if !plan.Metadata.IsFinal {
		t.Error("expected is_final to be true")
	}
	if plan.Metadata.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", plan.Metadata.Confidence)
	}
}

func TestPlanner_Plan_PreActionsPrependedForSearch(t *testing.T) {
	client := &fakeModelClient{response: providers.ModelResponse{Content: `{"actions":[]}`}}
	p := New(client)

	plan := p.Plan(context.Background(), model.Context{UserPrompt: "find all usages of Foo"}, nil, 1, 5, map[string]any{})

	if len(plan.Actions) == 0 {
		t.Fatal("expected a pre-action to be prepended")
	}
	if plan.Actions[0].ToolName != "brainstorm_search_terms" {
		t.Errorf("expected brainstorm_search_terms as first action, got %q", plan.Actions[0].ToolName)
	}
}

func TestPlanner_Plan_PreActionsForFilenameMention(t *testing.T) {
	client := &fakeModelClient{response: providers.ModelResponse{Content: `{"actions":[]}`}}
	p := New(client)

	plan := p.Plan(context.Background(), model.Context{UserPrompt: "what does main.go do"}, nil, 1, 5, map[string]any{})

	found := false
	for _, a := range plan.Actions {
		if a.ToolName == "read_file" && a.Parameters["file_path"] == "main.go" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a read_file pre-action for main.go, got %+v", plan.Actions)
	}
}

func TestPlanner_Plan_SkipsFilenameAlreadyModified(t *testing.T) {
	client := &fakeModelClient{response: providers.ModelResponse{Content: `{"actions":[]}`}}
	p := New(client)

	plan := p.Plan(context.Background(), model.Context{
		UserPrompt:    "what does main.go do",
		ModifiedFiles: []string{"main.go"},
	}, nil, 1, 5, map[string]any{})

	for _, a := range plan.Actions {
		if a.ToolName == "read_file" {
			t.Errorf("did not expect a read_file pre-action for an already-modified file, got %+v", plan.Actions)
		}
	}
}

func TestPlanner_Plan_TransportErrorYieldsEmptyLLMPlan(t *testing.T) {
	client := &fakeModelClient{response: providers.ModelResponse{Metadata: map[string]any{"error": "connection refused"}}}
	p := New(client)

	plan := p.Plan(context.Background(), model.Context{UserPrompt: "hello"}, nil, 1, 5, map[string]any{})
	if len(plan.Actions) != 0 {
		t.Errorf("expected no actions beyond pre-actions, got %+v", plan.Actions)
	}
	if plan.Metadata.Confidence != 0.5 {
		t.Errorf("expected default metadata, got %+v", plan.Metadata)
	}
}

func TestPlanner_Plan_UnparsableResponseYieldsEmptyPlan(t *testing.T) {
	client := &fakeModelClient{response: providers.ModelResponse{Content: "not json at all"}}
	p := New(client)

	plan := p.Plan(context.Background(), model.Context{UserPrompt: "hello"}, nil, 1, 5, map[string]any{})
	if len(plan.Actions) != 0 {
		t.Errorf("expected empty plan, got %+v", plan.Actions)
	}
}

func TestPlanner_Plan_UnknownActionTypeDropped(t *testing.T) {
	client := &fakeModelClient{response: providers.ModelResponse{
		Content: `{"actions":[{"type":"mystery","foo":"bar"}]}`,
	}}
	p := New(client)
	plan := p.Plan(context.Background(), model.Context{UserPrompt: "hi"}, nil, 1, 5, map[string]any{})
	if len(plan.Actions) != 0 {
		t.Errorf("expected unknown action type to be dropped, got %+v", plan.Actions)
	}
}

func TestRenderPrompt_IncludesKeyFields(t *testing.T) {
	reqCtx := model.Context{
		UserPrompt:      "do the thing",
		CurrentCommit:   "abc123",
		ModifiedFiles:   []string{"a.go"},
		RecentSummaries: []string{"did something before"},
	}
	schemas := map[string]any{"read_file": map[string]any{"description": "reads a file"}}
	prompt := renderPrompt(reqCtx, nil, 1, 5, schemas)

	for _, want := range []string{"do the thing", "abc123", "a.go", "did something before", "read_file", "reads a file"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
}
