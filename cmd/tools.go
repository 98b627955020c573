package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to the agent",
		Run: func(cmd *cobra.Command, args []string) {
			runTools()
		},
	}
}

func runTools() {
	a, err := newApp(context.Background())
	if err != nil {
		fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	for _, name := range a.registry.ListNames() {
		tool, _ := a.registry.Get(name)
		marker := " "
		if tool.IsDestructive() {
			marker = "*"
		}
		fmt.Printf("%s %-24s %s\n", marker, name, tool.Description())
	}
	fmt.Println("\n* destructive — gated behind a confirmation")
}
