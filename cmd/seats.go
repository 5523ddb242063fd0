package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tickethub-cli/model"
	"tickethub-cli/pricing"
	"tickethub-cli/seating"
	"tickethub-cli/store"
)

func newSeatsCmd(env *environment) *cobra.Command {
	var (
		selectIDs   []string
		deselectIDs []string
		clear       bool
	)
	cmd := &cobra.Command{
		Use:   "seats <event-id>",
		Short: "Show the seat map and pick seats for an event",
		Long: `Show the seat map of an event. Seats picked with --select are kept in the
session draft until checkout completes or the draft is cleared.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, layout, dropped, err := env.openEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range dropped {
				fmt.Fprintf(cmd.ErrOrStderr(), "Seat %s is no longer available and was removed from your selection.\n", id)
			}

			if clear {
				env.selection.Clear()
			}
			for _, raw := range deselectIDs {
				id, err := normalizeSeatID(raw)
				if err != nil {
					return err
				}
				env.selection.Remove(id)
			}
			for _, raw := range selectIDs {
				id, err := normalizeSeatID(raw)
				if err != nil {
					return err
				}
				if env.selection.Contains(id) {
					continue
				}
				if !env.selection.Toggle(id) {
					return fmt.Errorf("seat %s is not available", id)
				}
			}
			if err := env.saveDraft(event); err != nil {
				return err
			}

			fmt.Fprintf(out, "%s • %s %s • %s\n\n", event.Title, event.Date, event.Time, event.Venue)
			renderSeatMap(out, layout, env.selection.Overlay())
			fmt.Fprintln(out)
			renderOrder(out, pricing.NewDraft(event, env.selection.Seats()))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&selectIDs, "select", nil, "seat ids to add, e.g. A1,A2")
	cmd.Flags().StringSliceVar(&deselectIDs, "deselect", nil, "seat ids to remove")
	cmd.Flags().BoolVar(&clear, "clear", false, "start from an empty selection")
	return cmd
}

func normalizeSeatID(raw string) (string, error) {
	id, err := model.ParseSeatID(raw)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// openEvent resolves an event, loads its layout and binds the selection,
// restoring seats saved in the session draft for the same event. It returns
// the draft seats that could not be restored.
func (e *environment) openEvent(ctx context.Context, eventID string) (model.Event, seating.Layout, []string, error) {
	eventID = strings.TrimSpace(eventID)
	draft, err := e.drafts.Load()
	if err != nil {
		e.log.Warn("ignoring unreadable session draft", zap.Error(err))
		draft = store.Draft{}
	}

	event, ok := e.catalog.Get(ctx, eventID)
	if !ok {
		if draft.SelectedEvent == nil || draft.SelectedEvent.Id != eventID {
			return model.Event{}, seating.Layout{}, nil, fmt.Errorf("event %s not found", eventID)
		}
		event = *draft.SelectedEvent
	}
	if err := store.RememberEvent(event); err != nil {
		e.log.Debug("failed to remember event", zap.Error(err))
	}

	layout := e.seats.Load(ctx, event)
	e.selection.Bind(layout)

	var dropped []string
	if draft.SelectedEvent != nil && draft.SelectedEvent.Id == event.Id {
		for _, id := range draft.SelectedSeats {
			if !e.selection.Toggle(id) {
				dropped = append(dropped, id)
			}
		}
	}
	return event, layout, dropped, nil
}

// saveDraft stores the current selection, or clears the draft when empty.
func (e *environment) saveDraft(event model.Event) error {
	ids := e.selection.IDs()
	if len(ids) == 0 {
		return e.drafts.Clear()
	}
	return e.drafts.Save(store.Draft{SelectedSeats: ids, SelectedEvent: &event})
}
