package cmd

import (
	"github.com/spf13/cobra"
	"tutorial-service/config"
	server2 "tutorial-service/server"
)

func worker(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "consume tutorial events into the archive bucket",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunWorker(config)
		},
	}
}
