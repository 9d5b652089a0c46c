// Package cli wires the vocaquiz commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")

	cmd := &cobra.Command{
		Use:   "vocaquiz",
		Short: "Vocabulary quiz server with multiplayer game sessions",
	}

	var configPath string
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newGenCmd())
	return cmd
}
