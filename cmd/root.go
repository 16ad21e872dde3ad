package cmd

import (
	"github.com/spf13/cobra"
	"tutorial-service/config"
)

func Root(config *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tutorial-service",
		Short: "tutorial REST API and archive worker",
	}
	rootCmd.AddCommand(server(config), worker(config))
	return rootCmd
}
