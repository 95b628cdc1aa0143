package main

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newRecordsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect dispatch records",
	}

	var (
		source, entityID, state string
		offset, limit           int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List dispatch records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			if source != "" {
				q.Set("source", source)
			}
			if entityID != "" {
				q.Set("entity_id", entityID)
			}
			if state != "" {
				q.Set("state", state)
			}
			if offset > 0 {
				q.Set("offset", strconv.Itoa(offset))
			}
			q.Set("limit", strconv.Itoa(limit))

			data, err := newAdminClient(root.server).do(cmd.Context(), http.MethodGet, "/records", q, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	list.Flags().StringVar(&source, "source", "", "filter by source")
	list.Flags().StringVar(&entityID, "entity", "", "filter by entity id")
	list.Flags().StringVar(&state, "state", "", "filter by state (delivered, no_rule, cancelled, failed)")
	list.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	list.Flags().IntVar(&limit, "limit", 20, "page size")

	get := &cobra.Command{
		Use:   "get <record-id>",
		Short: "Show one dispatch record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newAdminClient(root.server).do(cmd.Context(), http.MethodGet, "/records/"+url.PathEscape(args[0]), nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}
