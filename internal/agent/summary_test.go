package agent

import (
	"strings"
	"testing"

	"github.com/nextlevelbuilder/codeagent/internal/model"
)

func toolEntry(desc string, success bool) model.ExecutionLogEntry {
	return model.ExecutionLogEntry{
		Action: model.ToolAction("read_file", map[string]any{"file_path": "x"}),
		Result: model.ToolResult{Success: success, Output: "content", ActionDescription: desc},
	}
}

func TestComposeSummary_AllSucceeded(t *testing.T) {
	log := []model.ExecutionLogEntry{toolEntry("read_file(x)", true)}
	summary := composeSummary("", log, "read x")

	if !strings.Contains(summary, "All steps completed successfully.") {
		t.Errorf("expected success banner, got %q", summary)
	}
	if !strings.Contains(summary, "Original request: read x") {
		t.Errorf("expected original prompt appended, got %q", summary)
	}
}

func TestComposeSummary_MaxStepsReachedNotedInBanner(t *testing.T) {
	log := []model.ExecutionLogEntry{toolEntry("read_file(x)", true)}
	summary := composeSummary("max_steps", log, "read x")

	if !strings.Contains(summary, "maximum steps reached") {
		t.Errorf("expected max_steps note in banner, got %q", summary)
	}
}

func TestComposeSummary_PartialSuccess(t *testing.T) {
	log := []model.ExecutionLogEntry{
		toolEntry("read_file(a)", true),
		toolEntry("read_file(b)", false),
	}
	summary := composeSummary("failure", log, "read a and b")

	if !strings.Contains(summary, "Partially completed: 1/2 steps succeeded.") {
		t.Errorf("expected partial banner, got %q", summary)
	}
}

func TestComposeSummary_AllFailed(t *testing.T) {
	log := []model.ExecutionLogEntry{toolEntry("read_file(x)", false)}
	summary := composeSummary("failure", log, "read x")

	if !strings.Contains(summary, "The request could not be completed.") {
		t.Errorf("expected failure banner, got %q", summary)
	}
}

func TestComposeSummary_Cancelled(t *testing.T) {
	summary := composeSummary("cancelled", nil, "delete x")

	if !strings.Contains(summary, "Cancelled: the user declined a confirmation.") {
		t.Errorf("expected cancellation banner, got %q", summary)
	}
}

func TestComposeSummary_NoToolActions(t *testing.T) {
	summary := composeSummary("", nil, "say hi")
	if !strings.Contains(summary, "No tool actions were executed.") {
		t.Errorf("expected no-actions banner, got %q", summary)
	}
}

func TestComposeSummary_ExcerptsCappedAtThree(t *testing.T) {
	log := []model.ExecutionLogEntry{
		toolEntry("a", true), toolEntry("b", true), toolEntry("c", true), toolEntry("d", true),
	}
	summary := composeSummary("", log, "do it")

	if strings.Count(summary, "content") != 3 {
		t.Errorf("expected exactly 3 excerpts, got summary %q", summary)
	}
}

func TestComposeSummary_ExcludesConfirmationEntriesFromExcerpts(t *testing.T) {
	log := []model.ExecutionLogEntry{
		{Action: model.ConfirmationAction("Execute delete_file?", true), Result: model.ToolResult{Success: true, Output: "confirmed"}},
		toolEntry("read_file(x)", true),
	}
	summary := composeSummary("", log, "delete then read")

	if strings.Contains(summary, "confirmed") {
		t.Errorf("expected confirmation result excluded from excerpts, got %q", summary)
	}
}

func TestTruncateOutput_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 1000)
	got := truncateOutput(long)
	if len([]rune(got)) != maxExcerptRuneLength+1 {
		t.Errorf("expected truncated length %d, got %d", maxExcerptRuneLength+1, len([]rune(got)))
	}
}

func TestTruncateOutput_ShortTextUnchanged(t *testing.T) {
	got := truncateOutput("short")
	if got != "short" {
		t.Errorf("expected unchanged short text, got %q", got)
	}
}
