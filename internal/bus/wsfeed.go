package bus

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// DebugFeedHandler upgrades HTTP connections to WebSocket and streams
// every AgentEvent broadcast on pub to the connected client, until the
// client disconnects. Used by "codeagent status --watch".
type DebugFeedHandler struct {
	pub EventPublisher
}

func NewDebugFeedHandler(pub EventPublisher) *DebugFeedHandler {
	return &DebugFeedHandler{pub: pub}
}

func (h *DebugFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("bus: websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	events := make(chan AgentEvent, 32)
	id := r.RemoteAddr

	h.pub.Subscribe(id, func(e AgentEvent) {
		select {
		case events <- e:
		default:
			// slow subscriber: drop the event rather than block the loop.
		}
	})
	defer h.pub.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case e := <-events:
			if err := wsjson.Write(ctx, conn, e); err != nil {
				return
			}
		}
	}
}

// DialDebugFeed is a small client helper for tooling/tests that want to
// consume the feed without a full HTTP server round trip description.
func DialDebugFeed(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	return conn, err
}
