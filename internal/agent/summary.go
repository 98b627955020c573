package agent

import (
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/codeagent/internal/model"
)

const (
	maxSummaryExcerpts   = 3
	maxExcerptRuneLength = 600
)

// composeSummary builds the text returned to the user and persisted on
// the SessionRecord: a completion banner, up to three excerpts from
// successful non-confirmation results, and the original prompt.
func composeSummary(exitReason string, log []model.ExecutionLogEntry, userPrompt string) string {
	var b strings.Builder
	b.WriteString(completionBanner(exitReason, log))

	excerpts := successfulExcerpts(log, maxSummaryExcerpts)
	for _, e := range excerpts {
		b.WriteString("\n- ")
		b.WriteString(e)
	}

	b.WriteString("\n\nOriginal request: ")
	b.WriteString(userPrompt)

	return b.String()
}

func completionBanner(exitReason string, log []model.ExecutionLogEntry) string {
	var total, succeeded int
	for _, entry := range log {
		if !entry.Action.IsTool() {
			continue
		}
		total++
		if entry.Result.Success {
			succeeded++
		}
	}

	switch {
	case exitReason == "cancelled":
		return "Cancelled: the user declined a confirmation."
	case total == 0:
		return "No tool actions were executed."
	case succeeded == total:
		banner := "All steps completed successfully."
		if exitReason == "max_steps" {
			banner += " (maximum steps reached)"
		}
		return banner
	case succeeded == 0:
		return "The request could not be completed."
	default:
		banner := fmt.Sprintf("Partially completed: %d/%d steps succeeded.", succeeded, total)
		if exitReason == "max_steps" {
			banner += " (maximum steps reached)"
		}
		return banner
	}
}

// successfulExcerpts returns up to limit excerpts, one per successful
// non-confirmation result, in execution order.
func successfulExcerpts(log []model.ExecutionLogEntry, limit int) []string {
	var excerpts []string
	for _, entry := range log {
		if len(excerpts) >= limit {
			break
		}
		if !entry.Action.IsTool() || !entry.Result.Success {
			continue
		}
		excerpts = append(excerpts, formatExcerpt(entry))
	}
	return excerpts
}

func formatExcerpt(entry model.ExecutionLogEntry) string {
	desc := entry.Result.ActionDescription
	if desc == "" {
		desc = entry.Action.ToolName
	}
	return fmt.Sprintf("%s: %s", desc, truncateOutput(entry.Result.Output))
}

// truncateOutput renders output as text and truncates it to a bounded
// rune length, preserving any internal newlines so multi-line results
// (e.g. search matches) stay readable up to the limit.
func truncateOutput(output any) string {
	text := fmt.Sprintf("%v", output)
	runes := []rune(text)
	if len(runes) <= maxExcerptRuneLength {
		return text
	}
	return string(runes[:maxExcerptRuneLength]) + "…"
}
