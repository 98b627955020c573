package bus

import "testing"

func TestPublisher_BroadcastReachesSubscribers(t *testing.T) {
	p := NewPublisher()
	var got []AgentEvent
	p.Subscribe("a", func(e AgentEvent) { got = append(got, e) })

	p.Broadcast(AgentEvent{Type: "loop.started"})
	p.Broadcast(AgentEvent{Type: "loop.completed"})

	if len(got) != 2 {
		t.Fatalf("expected 2 events delivered, got %d", len(got))
	}
	if got[0].Type != "loop.started" || got[1].Type != "loop.completed" {
		t.Errorf("unexpected event order: %+v", got)
	}
}

func TestPublisher_UnsubscribeStopsDelivery(t *testing.T) {
	p := NewPublisher()
	count := 0
	p.Subscribe("a", func(AgentEvent) { count++ })
	p.Unsubscribe("a")

	p.Broadcast(AgentEvent{Type: "loop.started"})
	if count != 0 {
		t.Errorf("expected no events after unsubscribe, got %d", count)
	}
}

func TestPublisher_MultipleSubscribersAllReceive(t *testing.T) {
	p := NewPublisher()
	countA, countB := 0, 0
	p.Subscribe("a", func(AgentEvent) { countA++ })
	p.Subscribe("b", func(AgentEvent) { countB++ })

	p.Broadcast(AgentEvent{Type: "tool.call"})
	if countA != 1 || countB != 1 {
		t.Errorf("expected both subscribers to receive, got a=%d b=%d", countA, countB)
	}
}
