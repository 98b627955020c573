package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/codeagent/internal/bus"
)

func statusCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current configuration and model endpoint status",
		Run: func(cmd *cobra.Command, args []string) {
			if watch {
				watchDebugFeed()
				return
			}
			runStatus()
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "stream live loop/tool events from a running \"codeagent run\" in another terminal")
	return cmd
}

func runStatus() {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	fmt.Printf("Workspace:      %s\n", a.cfg.Agent.Workspace)
	fmt.Printf("Model endpoint: %s (%s)\n", a.cfg.Model.Endpoint, a.cfg.Model.Model)
	if a.model.IsAvailable(ctx) {
		fmt.Println("Model status:   reachable")
	} else {
		fmt.Println("Model status:   unreachable")
	}
	fmt.Printf("Database:       %s\n", a.cfg.Database.Driver)
	fmt.Printf("Registered tools: %d\n", len(a.registry.ListNames()))
}

// watchDebugFeed connects to a running "codeagent run"'s debug feed and
// prints each AgentEvent until interrupted.
func watchDebugFeed() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	url := "ws://" + debugFeedAddr + "/events"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		fatalf("failed to connect to debug feed at %s (is \"codeagent run\" running in another terminal?): %v", url, err)
	}
	defer conn.CloseNow()

	fmt.Printf("Watching %s — press Ctrl+C to stop.\n", url)
	for {
		var event bus.AgentEvent
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			return
		}
		line, _ := json.Marshal(event)
		fmt.Println(string(line))
	}
}
