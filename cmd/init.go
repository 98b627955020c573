package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/codeagent/internal/config"
	"github.com/nextlevelbuilder/codeagent/internal/indexer"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Build the initial file index and probe model availability",
		Run: func(cmd *cobra.Command, args []string) {
			runInit()
		},
	}
}

func runInit() {
	ctx := context.Background()

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fatalf("failed to load config: %v", err)
	}

	workspace := config.ExpandHome(cfg.Agent.Workspace)
	indexPath := config.ExpandHome(cfg.Indexer.IndexFile)
	idx, err := indexer.New(workspace, indexPath)
	if err != nil {
		fatalf("failed to build file index: %v", err)
	}
	if err := idx.Scan(); err != nil {
		fatalf("failed to scan workspace: %v", err)
	}
	fmt.Printf("Indexed %d files under %s\n", idx.Len(), workspace)

	app, err := newApp(ctx)
	if err != nil {
		fatalf("failed to initialize: %v", err)
	}
	defer app.Close()

	if !app.model.IsAvailable(ctx) {
		fmt.Fprintf(os.Stderr, "Model endpoint %s is not reachable\n", cfg.Model.Endpoint)
		os.Exit(1)
	}

	fmt.Printf("Model endpoint %s is reachable\n", cfg.Model.Endpoint)
	fmt.Println("codeagent is ready. Run `codeagent run \"<prompt>\"` to get started.")
}
