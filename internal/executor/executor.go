// Package executor runs a Plan against the Tool Registry: it gates
// destructive tool actions on user confirmation, synthesizes a safety-net
// confirmation when the Planner forgot one, and stops iteration on the
// first critical failure.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/codeagent/internal/model"
	"github.com/nextlevelbuilder/codeagent/internal/tools"
)

// Prompter asks the user to accept or decline a confirmation message.
// Acceptance grammar is case-insensitive "y" or "yes"; anything else is a
// decline. Implementations own how the prompt is actually surfaced (stdin,
// a TUI, a scripted test double).
type Prompter interface {
	Confirm(message string) bool
}

// nonCriticalTools fail without halting the Plan: they are purely
// informational and a miss here doesn't invalidate later steps.
var nonCriticalTools = map[string]bool{
	"code_search":             true,
	"brainstorm_search_terms": true,
}

// Executor consumes a Plan produced by the Planner and runs it against a
// Registry. Consecutive non-destructive ToolActions run as one bounded
// batch (up to maxParallel concurrently); destructive actions run serially,
// each only after its confirmation (the declared one that follows it, or a
// synthesized one) has been accepted.
type Executor struct {
	registry     *tools.Registry
	prompter     Prompter
	autoContinue bool
	maxParallel  int
}

// New builds an Executor. maxParallel <= 0 defaults to 1 (fully serial),
// matching the reference implementation's preference — the Plan's
// observable contract does not require parallelism, only permits it.
func New(registry *tools.Registry, prompter Prompter, autoContinue bool, maxParallel int) *Executor {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return &Executor{registry: registry, prompter: prompter, autoContinue: autoContinue, maxParallel: maxParallel}
}

// ExecutePlan runs each Action in order and returns the accumulated
// execution log. It never returns an error: tool failures and declined
// confirmations are recorded as ToolResults, and the loop stops at the
// first critical failure or decline.
func (e *Executor) ExecutePlan(ctx context.Context, plan model.Plan) []model.ExecutionLogEntry {
	var log []model.ExecutionLogEntry

	i := 0
	for i < len(plan.Actions) {
		action := plan.Actions[i]

		if !action.IsTool() {
			_, result, stop := e.runConfirmation(action)
			log = append(log, model.ExecutionLogEntry{Action: action, Result: result})
			if stop {
				return log
			}
			i++
			continue
		}

		tool, found := e.registry.Get(action.ToolName)

		if found && tool.IsDestructive() {
			gatedByNext := i+1 < len(plan.Actions) && plan.Actions[i+1].IsConfirmation()
			confirmation := model.ConfirmationAction(fmt.Sprintf("Execute %s?", action.ToolName), true)
			if gatedByNext {
				confirmation = plan.Actions[i+1]
			}
			accepted, confResult, stop := e.runConfirmation(confirmation)
			log = append(log, model.ExecutionLogEntry{Action: confirmation, Result: confResult})
			if stop || !accepted {
				return log
			}

			result := e.runTool(ctx, action, found, tool)
			log = append(log, model.ExecutionLogEntry{Action: action, Result: result})
			if !result.Success && !nonCriticalTools[action.ToolName] {
				return log
			}
			if gatedByNext {
				i += 2
			} else {
				i++
			}
			continue
		}

		// Batch this and any immediately-following non-destructive
		// ToolActions, running up to maxParallel concurrently.
		batchEnd := i
		for batchEnd < len(plan.Actions) {
			a := plan.Actions[batchEnd]
			if !a.IsTool() {
				break
			}
			t, ok := e.registry.Get(a.ToolName)
			if ok && t.IsDestructive() {
				break
			}
			batchEnd++
		}

		batchLog, stop := e.runBatch(ctx, plan.Actions[i:batchEnd])
		log = append(log, batchLog...)
		if stop {
			return log
		}
		i = batchEnd
	}

	return log
}

// runBatch executes a contiguous run of non-destructive ToolActions, up to
// maxParallel concurrently, preserving declared order in the returned log.
// It reports stop=true if the first action to fail critically (in
// declared order) should halt the Plan — later batch members may have
// already run, but only the prefix up to and including that failure is
// recorded, matching the "stop after the first critical failure" contract.
func (e *Executor) runBatch(ctx context.Context, actions []model.Action) ([]model.ExecutionLogEntry, bool) {
	results := make([]model.ToolResult, len(actions))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(e.maxParallel)

	// A tool panic inside a batch goroutine is re-raised on the caller's
	// goroutine after Wait, so the Driver's recover sees it.
	var panicOnce sync.Once
	var panicked any
	for idx, action := range actions {
		idx, action := idx, action
		group.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicked = r })
				}
			}()
			tool, found := e.registry.Get(action.ToolName)
			results[idx] = e.runTool(gctx, action, found, tool)
			return nil
		})
	}
	_ = group.Wait()
	if panicked != nil {
		panic(panicked)
	}

	log := make([]model.ExecutionLogEntry, 0, len(actions))
	for idx, action := range actions {
		result := results[idx]
		log = append(log, model.ExecutionLogEntry{Action: action, Result: result})
		if !result.Success && !nonCriticalTools[action.ToolName] {
			return log, true
		}
	}
	return log, false
}

// runConfirmation resolves one ConfirmationAction. It returns whether the
// user accepted, the ToolResult to record, and whether the caller should
// stop iterating the Plan (true on decline).
func (e *Executor) runConfirmation(action model.Action) (accepted bool, result model.ToolResult, stop bool) {
	accepted = e.autoContinue
	if !e.autoContinue {
		accepted = e.prompter.Confirm(action.Message)
	}

	if accepted {
		return true, model.ToolResult{
			Success:           true,
			Output:            "confirmed",
			ActionDescription: "Confirmation: " + action.Message,
		}, false
	}

	return false, model.ToolResult{
		Success:           false,
		Error:             "User cancelled action",
		ActionDescription: "Confirmation: " + action.Message,
	}, true
}

// runTool invokes a resolved ToolAction, or records a not-found failure.
func (e *Executor) runTool(ctx context.Context, action model.Action, found bool, tool tools.Tool) model.ToolResult {
	desc := actionDescription(action.ToolName, action.Parameters)

	if !found {
		return model.ToolResult{
			Success:           false,
			Error:             fmt.Sprintf("Tool execution failed: unknown tool %q", action.ToolName),
			ActionDescription: desc,
		}
	}

	res := tool.Execute(ctx, action.Parameters)
	if res.IsError {
		err := res.ForLLM
		if res.Err != nil {
			err = res.Err.Error()
		}
		slog.Warn("executor: tool failed", "tool", action.ToolName, "error", err)
		return model.ToolResult{
			Success:           false,
			Error:             fmt.Sprintf("Tool execution failed: %s", err),
			ActionDescription: desc,
		}
	}

	return model.ToolResult{
		Success:           true,
		Output:            res.ForLLM,
		ActionDescription: desc,
	}
}

// actionDescription renders "tool_name(key=value, ...)" with parameters in
// sorted key order, for a deterministic, human-readable log line.
func actionDescription(toolName string, params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, params[k]))
	}
	return fmt.Sprintf("%s(%s)", toolName, strings.Join(parts, ", "))
}
