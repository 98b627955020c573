// Package agent implements the Agent Driver: the bounded plan/execute
// loop that turns one user prompt into one final response, persisting a
// SessionRecord when it's done.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/nextlevelbuilder/codeagent/internal/bus"
	"github.com/nextlevelbuilder/codeagent/internal/contextbuilder"
	"github.com/nextlevelbuilder/codeagent/internal/executor"
	"github.com/nextlevelbuilder/codeagent/internal/model"
	"github.com/nextlevelbuilder/codeagent/internal/planner"
	"github.com/nextlevelbuilder/codeagent/internal/providers"
	"github.com/nextlevelbuilder/codeagent/internal/store"
	"github.com/nextlevelbuilder/codeagent/internal/tools"
)

const (
	modelUnavailableMessage = "The model endpoint is unavailable. Check that it is running and reachable, then try again."
	rephraseRequestMessage  = "I couldn't turn that into a plan. Could you rephrase the request?"
)

var increaseStepKeywords = []string{"refactor", "implement", "create", "build", "design", "test", "debug"}
var decreaseStepKeywords = []string{"read", "show", "display", "list", "status"}

// Driver drives one ProcessRequest call at a time. Concurrent calls on
// the same Driver are rejected rather than interleaved — callers must
// serialize, per the spec's single-threaded-cooperative scheduling model.
type Driver struct {
	contextBuilder *contextbuilder.Builder
	planner        *planner.Planner
	executor       *executor.Executor
	registry       *tools.Registry
	model          providers.ModelClient
	sessions       store.SessionStore

	debug           bool
	auditModelCalls bool
	events          bus.EventPublisher
	now             func() time.Time

	busy sync.Mutex
}

// New builds a Driver from its collaborators. events may be nil (no
// debug feed subscribers).
func New(
	contextBuilder *contextbuilder.Builder,
	p *planner.Planner,
	exec *executor.Executor,
	registry *tools.Registry,
	modelClient providers.ModelClient,
	sessions store.SessionStore,
	debugMode bool,
	auditModelCalls bool,
	events bus.EventPublisher,
) *Driver {
	if events == nil {
		events = bus.NewPublisher()
	}
	return &Driver{
		contextBuilder:  contextBuilder,
		planner:         p,
		executor:        exec,
		registry:        registry,
		model:           modelClient,
		sessions:        sessions,
		debug:           debugMode,
		auditModelCalls: auditModelCalls,
		events:          events,
		now:             time.Now,
	}
}

// ProcessRequest converts one user prompt into one final response
// string, persisting a SessionRecord before returning. It never panics:
// any exception escaping the loop body is recovered, logged (full stack
// in debug mode), and returned as an error string with no SessionRecord
// persisted.
func (d *Driver) ProcessRequest(ctx context.Context, userPrompt string) (result string, err error) {
	if !d.busy.TryLock() {
		return "", fmt.Errorf("agent is already processing a request")
	}
	defer d.busy.Unlock()

	defer func() {
		if r := recover(); r != nil {
			if d.debug {
				slog.Error("agent: panic in process_request", "panic", r, "stack", string(debug.Stack()))
			} else {
				slog.Error("agent: panic in process_request", "panic", r)
			}
			result = fmt.Sprintf("internal error: %v", r)
			err = nil
		}
	}()

	d.events.Broadcast(bus.AgentEvent{Type: "loop.started", Detail: userPrompt})

	reqCtx := d.contextBuilder.Build(ctx, userPrompt)
	maxSteps := adaptiveMaxSteps(userPrompt, len(reqCtx.ModifiedFiles))

	var history []model.ToolResult
	var fullLog []model.ExecutionLogEntry
	exitReason := ""

	for step := 1; step <= maxSteps; step++ {
		visible := filterHistory(history, step)

		d.events.Broadcast(bus.AgentEvent{Type: "loop.step", Step: step})
		plan := d.planner.Plan(ctx, reqCtx, visible, step, maxSteps, d.registry.Schemas())

		if step == 1 && plan.Empty() {
			message := rephraseRequestMessage
			detail := "empty plan"
			if !d.model.IsAvailable(ctx) {
				message = modelUnavailableMessage
				detail = "model unavailable"
			}
			d.persistSession(ctx, reqCtx, userPrompt, message, nil)
			d.events.Broadcast(bus.AgentEvent{Type: "loop.completed", Detail: detail})
			return message, nil
		}
		if step > 1 && plan.Empty() {
			break
		}

		execLog := d.executor.ExecutePlan(ctx, plan)
		for _, entry := range execLog {
			history = append(history, entry.Result)
			d.events.Broadcast(bus.AgentEvent{Type: "tool.result", Step: step, Payload: entry.Result})
		}
		fullLog = append(fullLog, execLog...)

		if len(execLog) > 0 {
			last := execLog[len(execLog)-1].Result
			if !last.Success {
				if strings.Contains(strings.ToLower(last.Error), "cancelled") {
					exitReason = "cancelled"
				} else {
					exitReason = "failure"
				}
				break
			}
		}

		if plan.Metadata.IsFinal {
			break
		}
		if !plan.HasToolActions() {
			break
		}
		if step > 2 && !plan.Metadata.ExpectedFollowUp {
			break
		}
		if step == maxSteps {
			exitReason = "max_steps"
		}
	}

	summary := composeSummary(exitReason, fullLog, userPrompt)
	d.persistSession(ctx, reqCtx, userPrompt, summary, fullLog)

	d.events.Broadcast(bus.AgentEvent{Type: "loop.completed", Detail: exitReason})
	return summary, nil
}

// persistSession writes one SessionRecord. Every non-panicking exit from
// ProcessRequest persists exactly one record (P6), including the
// step-1 unavailability/rephrase early exits.
func (d *Driver) persistSession(ctx context.Context, reqCtx model.Context, userPrompt, summary string, log []model.ExecutionLogEntry) {
	rec := model.SessionRecord{
		Timestamp:     d.now(),
		UserPrompt:    userPrompt,
		CommitHash:    reqCtx.CurrentCommit,
		ModifiedFiles: reqCtx.ModifiedFiles,
		Summary:       summary,
		ExecutionLog:  log,
	}
	if _, err := d.sessions.CreateSession(ctx, rec); err != nil {
		slog.Warn("agent: failed to persist session record", "error", err)
	}
}

// adaptiveMaxSteps implements the spec's keyword-driven step budget:
// start at 5, +2 for action-heavy verbs, +1 when more than 5 files are
// already modified, -2 for read-only verbs, clamped to [3, 10].
func adaptiveMaxSteps(userPrompt string, modifiedFileCount int) int {
	lower := strings.ToLower(userPrompt)
	steps := 5

	for _, kw := range increaseStepKeywords {
		if strings.Contains(lower, kw) {
			steps += 2
			break
		}
	}
	if modifiedFileCount > 5 {
		steps++
	}
	for _, kw := range decreaseStepKeywords {
		if strings.Contains(lower, kw) {
			steps -= 2
			break
		}
	}

	if steps < 3 {
		steps = 3
	}
	if steps > 10 {
		steps = 10
	}
	return steps
}

// filterHistory returns the visible_history fed to the Planner: all
// prior results for the first 3 steps, otherwise the last 6 plus any
// earlier failures.
func filterHistory(history []model.ToolResult, step int) []model.ToolResult {
	if step <= 3 || len(history) <= 6 {
		return history
	}

	recent := history[len(history)-6:]
	older := history[:len(history)-6]

	var visible []model.ToolResult
	for _, r := range older {
		if !r.Success {
			visible = append(visible, r)
		}
	}
	visible = append(visible, recent...)
	return visible
}
