package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func newCorrelationCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "correlation",
		Aliases: []string{"corr"},
		Short:   "Inspect or repair entity to thread correlations",
	}

	get := &cobra.Command{
		Use:   "get <entity-id>",
		Short: "Show the thread recorded for an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAdminClient(root.server).do(cmd.Context(), http.MethodGet, correlationPath(args[0]), nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	var source string
	put := &cobra.Command{
		Use:   "put <entity-id> <thread-id>",
		Short: "Record or replace an entity's thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"thread_id": args[1]}
			if source != "" {
				body["source"] = source
			}
			data, err := newAdminClient(root.server).do(cmd.Context(), http.MethodPut, correlationPath(args[0]), nil, body)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	put.Flags().StringVar(&source, "source", "workshop", "source that owns the entity")

	del := &cobra.Command{
		Use:   "delete <entity-id>",
		Short: "Forget an entity's thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := newAdminClient(root.server).do(cmd.Context(), http.MethodDelete, correlationPath(args[0]), nil, nil); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted correlation for %s\n", args[0])
			return err
		},
	}

	cmd.AddCommand(get, put, del)
	return cmd
}

func correlationPath(entityID string) string {
	return "/correlations/" + url.PathEscape(entityID)
}
