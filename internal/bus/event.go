// Package bus publishes AgentEvents produced by the Driver's plan/execute
// loop to subscribers — used by the CLI's "status --watch" debug feed.
// This is a side channel, not the model's response path.
package bus

import "sync"

// AgentEvent is one observable moment in a ProcessRequest call.
type AgentEvent struct {
	Type    string `json:"type"` // "loop.started", "loop.step", "tool.result", "loop.completed"
	Step    int    `json:"step,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// EventHandler receives a broadcast AgentEvent.
type EventHandler func(AgentEvent)

// EventPublisher abstracts event broadcast and subscription, decoupling
// the Driver from any concrete transport.
type EventPublisher interface {
	Subscribe(id string, handler EventHandler)
	Unsubscribe(id string)
	Broadcast(event AgentEvent)
}

// Publisher is an in-process EventPublisher. Construct it with
// NewPublisher; the zero value has no handler map and Subscribe on it
// panics.
type Publisher struct {
	mu       sync.RWMutex
	handlers map[string]EventHandler
}

func NewPublisher() *Publisher {
	return &Publisher{handlers: make(map[string]EventHandler)}
}

func (p *Publisher) Subscribe(id string, handler EventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[id] = handler
}

func (p *Publisher) Unsubscribe(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.handlers, id)
}

func (p *Publisher) Broadcast(event AgentEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, h := range p.handlers {
		h(event)
	}
}
