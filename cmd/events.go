package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tickethub-cli/catalog"
	"tickethub-cli/store"
)

func newEventsCmd(env *environment) *cobra.Command {
	events := &cobra.Command{
		Use:   "events",
		Short: "Browse the event catalog",
	}

	var (
		query   catalog.Query
		sortKey string
		refresh bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List published events",
		Long:  `List published events, optionally filtered by search text, category and tags.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query.Sort = catalog.SortKey(strings.ToLower(sortKey))
			if !validSort(query.Sort) {
				return fmt.Errorf("unknown sort %q, use one of date, price, popularity", sortKey)
			}

			var listing catalog.Listing
			if refresh {
				listing = env.catalog.Refresh(cmd.Context())
			} else {
				listing = env.catalog.List(cmd.Context())
			}
			if note := listing.Describe(); note != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), note)
			}
			matches := query.Apply(listing.Events)
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events found.")
				return nil
			}
			renderEvents(cmd.OutOrStdout(), matches)
			return nil
		},
	}
	list.Flags().StringVarP(&query.Search, "search", "s", "", "match title or description")
	list.Flags().StringVarP(&query.Category, "category", "c", catalog.CategoryAll, "all, movies, concerts or sports")
	list.Flags().StringSliceVarP(&query.Tags, "tag", "t", nil, "require a tag (repeatable)")
	list.Flags().StringVar(&sortKey, "sort", string(catalog.SortDate), "date, price or popularity")
	list.Flags().BoolVar(&refresh, "refresh", false, "skip the catalog cache")

	show := &cobra.Command{
		Use:   "show <event-id>",
		Short: "Show one event with its prices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, ok := env.catalog.Get(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("event %s not found", args[0])
			}
			if err := store.RememberEvent(event); err != nil {
				env.log.Warn("failed to remember event", zap.Error(err))
			}
			renderEventDetail(cmd.OutOrStdout(), event)
			return nil
		},
	}

	recent := &cobra.Command{
		Use:   "recent",
		Short: "List recently viewed events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := store.LoadRecentEvents()
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recently viewed events.")
				return nil
			}
			for _, entry := range history {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", entry.ID, entry.Title, entry.Date)
			}
			return nil
		},
	}

	events.AddCommand(list, show, recent)
	return events
}

func validSort(key catalog.SortKey) bool {
	for _, known := range catalog.SortKeys {
		if key == known {
			return true
		}
	}
	return false
}
