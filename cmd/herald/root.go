package main

import (
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

type rootOptions struct {
	configPath string
	server     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "herald",
		Short:         "Relay producer events into Discord",
		Long:          "Herald receives workshop and GitHub webhooks and relays them to Discord webhooks, keeping one forum thread per workshop item.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.server, "server", defaultServer, "base URL of a running herald for admin commands")

	cmd.AddCommand(
		newServeCmd(opts),
		newCorrelationCmd(opts),
		newRecordsCmd(opts),
		newSecretCmd(),
	)
	return cmd
}
