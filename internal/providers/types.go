// Package providers defines the Model Client contract: a thin
// request/response abstraction over a local LLM endpoint. No streaming is
// exposed to callers — a single Generate call returns the full response.
package providers

import "context"

// ModelResponse is the result of a single Generate call.
type ModelResponse struct {
	Content  string
	Metadata map[string]any
}

// ModelClient abstracts a local LLM endpoint. Implementations must never
// panic or return an error on transport failure — they report the failure
// in ModelResponse.Metadata["error"] with an empty Content instead, so the
// Planner can degrade to an empty Plan (see internal/planner).
type ModelClient interface {
	// Generate sends prompt (plus optional provider-specific options) and
	// returns the model's reply. Deterministic request/response; no
	// streaming to the caller.
	Generate(ctx context.Context, prompt string, options map[string]any) (ModelResponse, error)

	// IsAvailable performs a cheap, bounded-time status probe (e.g.
	// listing models) without generating a completion.
	IsAvailable(ctx context.Context) bool
}
