// Package model holds the data types shared across the plan/execute loop:
// actions, plans, tool results, request context, and the persisted records
// written by the cache and session store.
package model

import "time"

// ActionKind tags which variant an Action holds.
type ActionKind int

const (
	// ActionTool is a request to invoke a registered tool.
	ActionTool ActionKind = iota
	// ActionConfirmation is a request for user confirmation, usually
	// gating a destructive tool action that precedes it in a Plan.
	ActionConfirmation
)

// Action is a tagged union of ToolAction and ConfirmationAction. Callers
// switch on Kind and read only the matching fields; the other fields are
// zero-valued.
type Action struct {
	Kind ActionKind

	// ToolAction fields.
	ToolName   string
	Parameters map[string]any

	// ConfirmationAction fields.
	Message     string
	Destructive bool
}

// ToolAction builds an Action of kind ActionTool.
func ToolAction(toolName string, parameters map[string]any) Action {
	if parameters == nil {
		parameters = map[string]any{}
	}
	return Action{Kind: ActionTool, ToolName: toolName, Parameters: parameters}
}

// ConfirmationAction builds an Action of kind ActionConfirmation.
func ConfirmationAction(message string, destructive bool) Action {
	return Action{Kind: ActionConfirmation, Message: message, Destructive: destructive}
}

// IsTool reports whether this Action is a ToolAction.
func (a Action) IsTool() bool { return a.Kind == ActionTool }

// IsConfirmation reports whether this Action is a ConfirmationAction.
func (a Action) IsConfirmation() bool { return a.Kind == ActionConfirmation }

// PlanMetadata carries advisory information about a Plan; it affects loop
// termination but never overrides a declared empty plan or a critical
// failure.
type PlanMetadata struct {
	Confidence        float64 `json:"confidence"`
	IsFinal           bool    `json:"is_final"`
	ExpectedFollowUp  bool    `json:"expected_follow_up"`
	Reasoning         string  `json:"reasoning"`
}

// DefaultPlanMetadata returns the metadata defaults used when the model
// response omits the field entirely.
func DefaultPlanMetadata() PlanMetadata {
	return PlanMetadata{Confidence: 0.5, IsFinal: false, ExpectedFollowUp: true}
}

// Plan is an ordered sequence of Actions produced by the Planner for a
// single step. The ordering is execution order; a ConfirmationAction
// appears immediately after the destructive ToolAction it gates.
type Plan struct {
	Actions  []Action
	Metadata PlanMetadata
}

// Empty reports whether the plan carries no actions — a terminal signal to
// the Driver per invariant I1.
func (p Plan) Empty() bool { return len(p.Actions) == 0 }

// HasToolActions reports whether the plan contains at least one ToolAction.
func (p Plan) HasToolActions() bool {
	for _, a := range p.Actions {
		if a.IsTool() {
			return true
		}
	}
	return false
}

// ToolResult is the outcome of executing a single Action.
type ToolResult struct {
	Success           bool
	Output            any
	Error             string
	ActionDescription string
}

// Context is the per-request input to the Planner.
type Context struct {
	UserPrompt      string
	CurrentCommit   string
	ModifiedFiles   []string
	RecentSummaries []string
	Debug           bool
}

// CachedFile is a single entry in the commit-scoped file cache. Primary key
// is FilePath; at most one entry exists per path, and re-caching replaces
// it (invariant I1 on the cache's data model, distinct from Plan's I1).
type CachedFile struct {
	FilePath    string
	CommitHash  string
	ContentHash string
	Content     string
	Summary     string
	LastUpdated time.Time
}

// SessionRecord is one append-only row describing a completed request.
// IDs are monotonic and never reused (invariant I4).
type SessionRecord struct {
	ID            int64
	Timestamp     time.Time
	UserPrompt    string
	CommitHash    string
	ModifiedFiles []string
	Summary       string
	ExecutionLog  []ExecutionLogEntry
}

// ExecutionLogEntry pairs one executed Action with its ToolResult, as
// recorded by the Executor and persisted on the SessionRecord.
type ExecutionLogEntry struct {
	Action Action
	Result ToolResult
}

// ModelInteraction is an optional per-step audit row.
type ModelInteraction struct {
	SessionID  int64
	StepNumber int
	Timestamp  time.Time
	Prompt     string
	Response   string
	Metadata   map[string]any
}
