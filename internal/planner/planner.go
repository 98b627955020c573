// Package planner renders the plan-generation prompt, calls the Model
// Client once, and parses its reply into a Plan.
package planner

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/nextlevelbuilder/codeagent/internal/model"
	"github.com/nextlevelbuilder/codeagent/internal/providers"
)

var searchKeywords = []string{"find", "search", "look for", "locate"}

// filenameMention matches bare filename-like substrings in free text.
var filenameMention = regexp.MustCompile(`[A-Za-z0-9_./]+\.[A-Za-z]+`)

// Planner produces a Plan for one step of the loop.
type Planner struct {
	model providers.ModelClient
}

func New(modelClient providers.ModelClient) *Planner {
	return &Planner{model: modelClient}
}

// Plan renders the prompt, calls the model, and returns a Plan. It never
// returns an error: any failure (transport, parse, unknown action type)
// degrades to an empty Plan, which the Driver interprets as a terminal or
// retryable signal per its own rules.
func (p *Planner) Plan(ctx context.Context, reqCtx model.Context, visibleHistory []model.ToolResult, step, maxSteps int, toolSchemas map[string]any) model.Plan {
	preActions := preActions(reqCtx)

	prompt := renderPrompt(reqCtx, visibleHistory, step, maxSteps, toolSchemas)
	resp, err := p.model.Generate(ctx, prompt, nil)
	if err != nil {
		slog.Warn("planner: model call failed", "error", err)
		return model.Plan{Metadata: model.DefaultPlanMetadata()}
	}
	if resp.Metadata["error"] != nil {
		slog.Warn("planner: model reported error", "error", resp.Metadata["error"])
		return model.Plan{Metadata: model.DefaultPlanMetadata()}
	}

	parsed := extractLargestJSONObject(resp.Content)
	if parsed == nil {
		return model.Plan{Metadata: model.DefaultPlanMetadata()}
	}

	llmActions := parseActions(parsed["actions"])
	metadata := parseMetadata(parsed["metadata"])

	return model.Plan{
		Actions:  append(preActions, llmActions...),
		Metadata: metadata,
	}
}

// preActions applies the hardcoded heuristics prepended ahead of whatever
// the model proposes: a brainstorm action when the prompt reads as a
// search request, and a read_file action for every filename-like mention
// not already among the modified files.
func preActions(reqCtx model.Context) []model.Action {
	var actions []model.Action

	lowerPrompt := strings.ToLower(reqCtx.UserPrompt)
	for _, kw := range searchKeywords {
		if strings.Contains(lowerPrompt, kw) {
			actions = append(actions, model.ToolAction("brainstorm_search_terms", map[string]any{
				"query": reqCtx.UserPrompt,
			}))
			break
		}
	}

	modified := make(map[string]bool, len(reqCtx.ModifiedFiles))
	for _, f := range reqCtx.ModifiedFiles {
		modified[f] = true
	}
	for _, match := range filenameMention.FindAllString(reqCtx.UserPrompt, -1) {
		if !modified[match] {
			actions = append(actions, model.ToolAction("read_file", map[string]any{
				"file_path": match,
			}))
		}
	}

	return actions
}

func parseActions(raw any) []model.Action {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var actions []model.Action
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		actionType, _ := entry["type"].(string)
		switch actionType {
		case "tool_use":
			toolName, _ := entry["tool_name"].(string)
			params, _ := entry["parameters"].(map[string]any)
			actions = append(actions, model.ToolAction(toolName, params))
		case "confirmation":
			message, _ := entry["message"].(string)
			destructive := true
			if d, ok := entry["destructive"].(bool); ok {
				destructive = d
			}
			actions = append(actions, model.ConfirmationAction(message, destructive))
		}
	}
	return actions
}

func parseMetadata(raw any) model.PlanMetadata {
	meta := model.DefaultPlanMetadata()
	entry, ok := raw.(map[string]any)
	if !ok {
		return meta
	}
	if v, ok := entry["confidence"].(float64); ok {
		meta.Confidence = v
	}
	if v, ok := entry["is_final"].(bool); ok {
		meta.IsFinal = v
	}
	if v, ok := entry["expected_follow_up"].(bool); ok {
		meta.ExpectedFollowUp = v
	}
	if v, ok := entry["reasoning"].(string); ok {
		meta.Reasoning = v
	}
	return meta
}
