package main

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configDir string
	verbose   bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dv",
		Short: "Starship maneuver service for a virtual tabletop",
		Long: `dv moves starships around a tabletop combat map in response to chat commands.

Examples:
  dv serve --config ./config
  dv seed ./scenes/jump-point.yaml
  dv exec --player alice -- "!dv thrust 2"
  dv exec --player gm --gm --select beowulf -- "!dv focus"
  dv exec --server ws://localhost:8080/ws --player alice -- "!dv move"`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".",
		"Directory holding dv.cfg.json and .env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log to the console at debug level")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewExecCommand())
	rootCmd.AddCommand(NewSeedCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
