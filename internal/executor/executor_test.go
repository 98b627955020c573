package executor

import (
	"context"
	"testing"

	"github.com/nextlevelbuilder/codeagent/internal/model"
	"github.com/nextlevelbuilder/codeagent/internal/tools"
)

type fakeTool struct {
	name        string
	destructive bool
	result      *tools.Result
}

func (f *fakeTool) Name() string                    { return f.name }
func (f *fakeTool) Description() string             { return "fake" }
func (f *fakeTool) ParametersSchema() map[string]any { return map[string]any{} }
func (f *fakeTool) IsDestructive() bool              { return f.destructive }
func (f *fakeTool) Execute(_ context.Context, _ map[string]any) *tools.Result {
	return f.result
}

type scriptedPrompter struct {
	answers []bool
	i       int
}

func (p *scriptedPrompter) Confirm(_ string) bool {
	if p.i >= len(p.answers) {
		return false
	}
	a := p.answers[p.i]
	p.i++
	return a
}

func newRegistry(toolList ...tools.Tool) *tools.Registry {
	r := tools.NewRegistry()
	for _, t := range toolList {
		r.Register(t)
	}
	return r
}

func TestExecutor_NonDestructiveTool_RunsWithoutConfirmation(t *testing.T) {
	reg := newRegistry(&fakeTool{name: "read_file", result: tools.NewResult("hello")})
	prompter := &scriptedPrompter{}
	ex := New(reg, prompter, false, 1)

	plan := model.Plan{Actions: []model.Action{
		model.ToolAction("read_file", map[string]any{"file_path": "README.md"}),
	}}

	log := ex.ExecutePlan(context.Background(), plan)
	if len(log) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(log))
	}
	if !log[0].Result.Success {
		t.Errorf("expected success, got %+v", log[0].Result)
	}
	if prompter.i != 0 {
		t.Error("expected no confirmation prompts for a non-destructive tool")
	}
}

func TestExecutor_DestructiveTool_GatedByDeclaredConfirmation_Accepted(t *testing.T) {
	reg := newRegistry(&fakeTool{name: "write_file", destructive: true, result: tools.NewResult("wrote")})
	prompter := &scriptedPrompter{answers: []bool{true}}
	ex := New(reg, prompter, false, 1)

	plan := model.Plan{Actions: []model.Action{
		model.ToolAction("write_file", map[string]any{"file_path": "hello.txt", "content": "hi"}),
		model.ConfirmationAction("Execute write_file?", true),
	}}

	log := ex.ExecutePlan(context.Background(), plan)
	if len(log) != 2 {
		t.Fatalf("expected 2 log entries, got %d: %+v", len(log), log)
	}
	if !log[0].Result.Success || !log[1].Result.Success {
		t.Errorf("expected both entries to succeed, got %+v", log)
	}
}

func TestExecutor_DestructiveTool_SynthesizesSafetyNetConfirmation(t *testing.T) {
	reg := newRegistry(&fakeTool{name: "write_file", destructive: true, result: tools.NewResult("wrote")})
	prompter := &scriptedPrompter{answers: []bool{true}}
	ex := New(reg, prompter, false, 1)

	plan := model.Plan{Actions: []model.Action{
		model.ToolAction("write_file", map[string]any{"file_path": "hello.txt", "content": "hi"}),
	}}

	log := ex.ExecutePlan(context.Background(), plan)
	if len(log) != 2 {
		t.Fatalf("expected a synthesized confirmation plus the tool result, got %d: %+v", len(log), log)
	}
	if log[0].Action.Kind != model.ActionConfirmation {
		t.Errorf("expected first log entry to be the synthesized confirmation, got %+v", log[0])
	}
	if log[0].Action.Message != "Execute write_file?" {
		t.Errorf("unexpected synthesized message: %q", log[0].Action.Message)
	}
}

func TestExecutor_DestructiveTool_DeclinedConfirmation_StopsIteration(t *testing.T) {
	reg := newRegistry(
		&fakeTool{name: "write_file", destructive: true, result: tools.NewResult("wrote")},
		&fakeTool{name: "read_file", result: tools.NewResult("content")},
	)
	prompter := &scriptedPrompter{answers: []bool{false}}
	ex := New(reg, prompter, false, 1)

	plan := model.Plan{Actions: []model.Action{
		model.ToolAction("write_file", map[string]any{"file_path": "hello.txt", "content": "hi"}),
		model.ConfirmationAction("Execute write_file?", true),
		model.ToolAction("read_file", map[string]any{"file_path": "hello.txt"}),
	}}

	log := ex.ExecutePlan(context.Background(), plan)
	if len(log) != 1 {
		t.Fatalf("expected iteration to stop after the decline, got %d entries: %+v", len(log), log)
	}
	if log[0].Result.Success {
		t.Error("expected the confirmation entry to record failure")
	}
	if log[0].Result.Error != "User cancelled action" {
		t.Errorf("unexpected error message: %q", log[0].Result.Error)
	}
	if log[0].Result.ActionDescription != "Confirmation: Execute write_file?" {
		t.Errorf("unexpected action description: %q", log[0].Result.ActionDescription)
	}
}

func TestExecutor_AutoContinue_SkipsPrompt(t *testing.T) {
	reg := newRegistry(&fakeTool{name: "write_file", destructive: true, result: tools.NewResult("wrote")})
	prompter := &scriptedPrompter{} // would decline/error if consulted
	ex := New(reg, prompter, true, 1)

	plan := model.Plan{Actions: []model.Action{
		model.ToolAction("write_file", map[string]any{"file_path": "hello.txt", "content": "hi"}),
		model.ConfirmationAction("Execute write_file?", true),
	}}

	log := ex.ExecutePlan(context.Background(), plan)
	if len(log) != 2 || !log[1].Result.Success {
		t.Fatalf("expected auto-continue to accept without consulting the prompter, got %+v", log)
	}
	if prompter.i != 0 {
		t.Error("expected the prompter to never be consulted under auto_continue")
	}
}

func TestExecutor_UnknownTool_StopsIteration(t *testing.T) {
	reg := newRegistry()
	ex := New(reg, &scriptedPrompter{}, false, 1)

	plan := model.Plan{Actions: []model.Action{
		model.ToolAction("does_not_exist", nil),
		model.ToolAction("read_file", map[string]any{"file_path": "x"}),
	}}

	log := ex.ExecutePlan(context.Background(), plan)
	if len(log) != 1 {
		t.Fatalf("expected iteration to stop after the unknown tool, got %d: %+v", len(log), log)
	}
	if log[0].Result.Success {
		t.Error("expected the unknown tool lookup to fail")
	}
}

func TestExecutor_NonCriticalToolFailure_ContinuesIteration(t *testing.T) {
	reg := newRegistry(
		&fakeTool{name: "code_search", result: tools.ErrorResult("rg not found")},
		&fakeTool{name: "read_file", result: tools.NewResult("content")},
	)
	ex := New(reg, &scriptedPrompter{}, false, 1)

	plan := model.Plan{Actions: []model.Action{
		model.ToolAction("code_search", map[string]any{"pattern": "foo"}),
		model.ToolAction("read_file", map[string]any{"file_path": "x"}),
	}}

	log := ex.ExecutePlan(context.Background(), plan)
	if len(log) != 2 {
		t.Fatalf("expected iteration to continue past the non-critical failure, got %d: %+v", len(log), log)
	}
	if log[0].Result.Success {
		t.Error("expected code_search to be recorded as a failure")
	}
	if !log[1].Result.Success {
		t.Error("expected read_file to still run and succeed")
	}
}

func TestExecutor_CriticalToolFailure_StopsIteration(t *testing.T) {
	reg := newRegistry(
		&fakeTool{name: "read_file", result: tools.ErrorResult("no such file")},
		&fakeTool{name: "write_file", destructive: true, result: tools.NewResult("wrote")},
	)
	ex := New(reg, &scriptedPrompter{}, false, 1)

	plan := model.Plan{Actions: []model.Action{
		model.ToolAction("read_file", map[string]any{"file_path": "missing.txt"}),
		model.ToolAction("write_file", map[string]any{"file_path": "hello.txt", "content": "hi"}),
	}}

	log := ex.ExecutePlan(context.Background(), plan)
	if len(log) != 1 {
		t.Fatalf("expected iteration to stop after the critical failure, got %d: %+v", len(log), log)
	}
}

func TestExecutor_ActionDescription_SortsParameterKeys(t *testing.T) {
	reg := newRegistry(&fakeTool{name: "write_file", destructive: true, result: tools.NewResult("wrote")})
	ex := New(reg, &scriptedPrompter{answers: []bool{true}}, false, 1)

	plan := model.Plan{Actions: []model.Action{
		model.ToolAction("write_file", map[string]any{"content": "hi", "file_path": "hello.txt"}),
		model.ConfirmationAction("Execute write_file?", true),
	}}

	log := ex.ExecutePlan(context.Background(), plan)
	want := "write_file(content=hi, file_path=hello.txt)"
	if log[1].Result.ActionDescription != want {
		t.Errorf("expected %q, got %q", want, log[1].Result.ActionDescription)
	}
}

func TestExecutor_BatchesNonDestructiveRuns(t *testing.T) {
	reg := newRegistry(
		&fakeTool{name: "read_file", result: tools.NewResult("a")},
		&fakeTool{name: "code_search", result: tools.NewResult("b")},
	)
	ex := New(reg, &scriptedPrompter{}, false, 4)

	plan := model.Plan{Actions: []model.Action{
		model.ToolAction("read_file", map[string]any{"file_path": "a.go"}),
		model.ToolAction("code_search", map[string]any{"pattern": "foo"}),
	}}

	log := ex.ExecutePlan(context.Background(), plan)
	if len(log) != 2 {
		t.Fatalf("expected both batched actions recorded in order, got %d: %+v", len(log), log)
	}
	if log[0].Action.ToolName != "read_file" || log[1].Action.ToolName != "code_search" {
		t.Errorf("expected declared order preserved in the log, got %+v", log)
	}
}
