package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/codeagent/internal/bus"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [prompt]",
		Short: "Run one prompt, or start an interactive REPL when no prompt is given",
		Run: func(cmd *cobra.Command, args []string) {
			prompt := strings.Join(args, " ")
			runRun(prompt)
		},
	}
}

func runRun(prompt string) {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	stopFeed := serveDebugFeed(a.events)
	defer stopFeed()

	if prompt != "" {
		runOneShot(ctx, a, prompt)
		return
	}
	runREPL(ctx, a)
}

func runOneShot(ctx context.Context, a *app, prompt string) {
	summary, err := a.driver.ProcessRequest(ctx, prompt)
	if err != nil {
		fatalf("request failed: %v", err)
	}
	fmt.Println(summary)
}

func runREPL(ctx context.Context, a *app) {
	fmt.Println("codeagent REPL — type a request, or \"exit\" to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}

		summary, err := a.driver.ProcessRequest(ctx, line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(summary)
	}
}

// serveDebugFeed starts the local debug websocket feed for "status
// --watch" to connect to, and returns a function that shuts it down.
func serveDebugFeed(events bus.EventPublisher) func() {
	mux := http.NewServeMux()
	mux.Handle("/events", bus.NewDebugFeedHandler(events))
	srv := &http.Server{Addr: debugFeedAddr, Handler: mux}

	go srv.ListenAndServe()

	return func() {
		srv.Close()
	}
}
