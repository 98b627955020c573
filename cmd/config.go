package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/codeagent/internal/config"
)

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Interactively edit the workspace and model endpoint settings",
		Run: func(cmd *cobra.Command, args []string) {
			runConfigEdit()
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-show",
		Short: "Print the effective configuration as JSON",
		Run: func(cmd *cobra.Command, args []string) {
			runConfigShow()
		},
	}
}

func configResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-reset",
		Short: "Reset the configuration file to defaults",
		Run: func(cmd *cobra.Command, args []string) {
			runConfigReset()
		},
	}
}

func runConfigEdit() {
	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		fatalf("failed to load config: %v", err)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Workspace path").Value(&cfg.Agent.Workspace),
			huh.NewInput().Title("Model endpoint").Value(&cfg.Model.Endpoint),
			huh.NewInput().Title("Model name").Value(&cfg.Model.Model),
			huh.NewConfirm().Title("Auto-continue past confirmations?").Value(&cfg.Execution.AutoContinue),
		),
	)
	if err := form.Run(); err != nil {
		fatalf("config edit cancelled: %v", err)
	}

	if err := config.Save(path, cfg); err != nil {
		fatalf("failed to save config: %v", err)
	}
	fmt.Printf("Saved configuration to %s\n", path)
}

func runConfigShow() {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fatalf("failed to load config: %v", err)
	}
	data, err := json.MarshalIndent(cfg.Snapshot(), "", "  ")
	if err != nil {
		fatalf("failed to render config: %v", err)
	}
	fmt.Println(string(data))
}

func runConfigReset() {
	path := resolveConfigPath()
	if err := config.Save(path, config.Default()); err != nil {
		fatalf("failed to reset config: %v", err)
	}
	fmt.Printf("Reset configuration at %s to defaults\n", path)
}
