package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nextlevelbuilder/codeagent/internal/model"
)

const maxVerbatimResults = 4

// renderPrompt builds the single fixed-template prompt sent to the Model
// Client: tool schemas, recent summaries, commit/modified-files state, a
// condensed view of visible history, the user prompt, and step guidance.
func renderPrompt(ctx model.Context, visibleHistory []model.ToolResult, step, maxSteps int, toolSchemas map[string]any) string {
	var b strings.Builder

	b.WriteString("You are a coding agent. Respond with a single JSON object shaped like:\n")
	b.WriteString(`{"actions":[{"type":"tool_use","tool_name":"...","parameters":{...}}],"metadata":{"confidence":0.0,"is_final":false,"expected_follow_up":true,"reasoning":"..."}}`)
	b.WriteString("\n\n")

	b.WriteString("Available tools:\n")
	names := make([]string, 0, len(toolSchemas))
	for name := range toolSchemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry, _ := toolSchemas[name].(map[string]any)
		desc, _ := entry["description"].(string)
		fmt.Fprintf(&b, "- %s: %s\n", name, desc)
	}
	b.WriteString("\n")

	if len(ctx.RecentSummaries) > 0 {
		b.WriteString("Recent session summaries:\n")
		for _, s := range ctx.RecentSummaries {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Current commit: %s\n", ctx.CurrentCommit)
	if len(ctx.ModifiedFiles) > 0 {
		fmt.Fprintf(&b, "Modified files: %s\n", strings.Join(ctx.ModifiedFiles, ", "))
	}
	b.WriteString("\n")

	if len(visibleHistory) > 0 {
		b.WriteString("Prior results:\n")
		b.WriteString(condenseHistory(visibleHistory))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User request: %s\n\n", ctx.UserPrompt)
	fmt.Fprintf(&b, "Step %d of at most %d.", step, maxSteps)
	if step >= maxSteps-1 {
		b.WriteString(" This may be one of the final steps — set is_final=true if the request is satisfied.")
	}
	b.WriteString("\n")

	return b.String()
}

// condenseHistory shows the last maxVerbatimResults results verbatim and
// summarizes older ones as "x/y succeeded".
func condenseHistory(history []model.ToolResult) string {
	if len(history) <= maxVerbatimResults {
		var b strings.Builder
		for _, r := range history {
			writeResultLine(&b, r)
		}
		return b.String()
	}

	older := history[:len(history)-maxVerbatimResults]
	recent := history[len(history)-maxVerbatimResults:]

	succeeded := 0
	for _, r := range older {
		if r.Success {
			succeeded++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "(%d/%d older results succeeded)\n", succeeded, len(older))
	for _, r := range recent {
		writeResultLine(&b, r)
	}
	return b.String()
}

func writeResultLine(b *strings.Builder, r model.ToolResult) {
	status := "ok"
	if !r.Success {
		status = "failed: " + r.Error
	}
	fmt.Fprintf(b, "- %s -> %s\n", r.ActionDescription, status)
}
