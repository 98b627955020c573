package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X github.com/nextlevelbuilder/codeagent/cmd.Version=v1.0.0"
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// debugFeedAddr is where "run" exposes its AgentEvent websocket feed and
// where "status --watch" connects to read it.
const debugFeedAddr = "127.0.0.1:7732"

var rootCmd = &cobra.Command{
	Use:   "codeagent",
	Short: "codeagent — a local coding agent",
	Long:  "codeagent: a plan/execute coding agent over a local model endpoint, with a commit-scoped file cache and a persistent session history.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: codeagent.json or $CODEAGENT_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(configShowCmd())
	rootCmd.AddCommand(configResetCmd())
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("codeagent %s\n", Version)
		},
	}
}

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if v := os.Getenv("CODEAGENT_CONFIG"); v != "" {
		return v
	}
	return "codeagent.json"
}

// Execute runs the root cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
