package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tickethub-cli/catalog"
	"tickethub-cli/model"
	"tickethub-cli/store"
)

type eventItem struct {
	event model.Event
}

func (e eventItem) Title() string {
	return e.event.Title
}

func (e eventItem) Description() string {
	parts := []string{string(e.event.Category)}
	if e.event.Date != "" {
		parts = append(parts, strings.TrimSpace(e.event.Date+" "+e.event.Time))
	}
	if e.event.Venue != "" {
		parts = append(parts, e.event.Venue)
	}
	parts = append(parts, "from "+formatAmount(e.event.Price.Regular))
	if e.event.SeatsReported {
		parts = append(parts, fmt.Sprintf("%d/%d seats left", e.event.AvailableSeats, e.event.TotalSeats))
	}
	if e.event.Rating != nil {
		parts = append(parts, fmt.Sprintf("★ %.1f", *e.event.Rating))
	}
	return strings.Join(parts, " • ")
}

func (e eventItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{e.event.Title, e.event.Description, e.event.Venue, strings.Join(e.event.Tags, " ")}, " "))
}

func buildEventItems(events []model.Event) []list.Item {
	items := make([]list.Item, 0, len(events))
	for _, event := range events {
		items = append(items, eventItem{event: event})
	}
	return items
}

func (m appModel) currentTag() string {
	if m.tagIndex < 0 || m.tagIndex >= len(m.tags) {
		return ""
	}
	return m.tags[m.tagIndex]
}

// refreshEventList applies category, tag and sort. Free-text search is left
// to the list filter so it narrows as the user types.
func (m *appModel) refreshEventList() {
	query := m.query
	query.Tags = nil
	if tag := m.currentTag(); tag != "" {
		query.Tags = []string{tag}
	}
	events := query.Apply(m.listing.Events)
	m.eventList.SetItems(buildEventItems(events))
	if len(events) == 0 {
		m.eventList.Title = "Events (none match)"
	} else {
		m.eventList.Title = fmt.Sprintf("Events (%d)", len(events))
	}
}

func (m appModel) fetchEventsCmd(refresh bool) tea.Cmd {
	reader := m.deps.Catalog
	return func() tea.Msg {
		if reader == nil {
			return eventsMsg{listing: catalog.Listing{Events: []model.Event{}, Origin: catalog.OriginNone}}
		}
		ctx := context.Background()
		if refresh {
			return eventsMsg{listing: reader.Refresh(ctx)}
		}
		return eventsMsg{listing: reader.List(ctx)}
	}
}

func (m appModel) fetchEventCmd(id string) tea.Cmd {
	reader := m.deps.Catalog
	if reader == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := reader.Get(context.Background(), id)
		return eventMsg{event: event, ok: ok}
	}
}

// fetchSeatsCmd loads the layout, binds the selection and restores the seats
// of a session draft saved for the same event.
func (m appModel) fetchSeatsCmd(event model.Event) tea.Cmd {
	loader := m.deps.Seats
	selection := m.deps.Selection
	drafts := m.deps.Drafts
	log := m.log
	return func() tea.Msg {
		if loader == nil {
			return errMsg{err: fmt.Errorf("seat maps are not available"), returnState: stateEventDetail, returnStateSet: true}
		}
		layout := loader.Load(context.Background(), event)
		selection.Bind(layout)

		draft, err := drafts.Load()
		if err != nil {
			log.Warn("ignoring unreadable session draft", zap.Error(err))
			draft = store.Draft{}
		}
		var dropped []string
		if draft.SelectedEvent != nil && draft.SelectedEvent.Id == event.Id {
			for _, id := range draft.SelectedSeats {
				if selection.Contains(id) {
					continue
				}
				if !selection.Toggle(id) {
					dropped = append(dropped, id)
				}
			}
		}
		return seatsMsg{event: event, layout: layout, dropped: dropped}
	}
}

func (m appModel) fetchDashboardCmd() tea.Cmd {
	account := m.deps.Account
	session := m.session()
	return func() tea.Msg {
		ctx := context.Background()
		user, err := account.GetUserDetails(ctx, session.Token)
		if err != nil {
			return dashboardMsg{err: fmt.Errorf("load profile: %w", err)}
		}
		if user.Id == "" {
			user.Id = session.User.Id
		}
		bookings, err := account.ListUserBookings(ctx, session.Token, user.Id)
		if err != nil {
			return dashboardMsg{err: fmt.Errorf("load bookings: %w", err)}
		}
		return dashboardMsg{user: user, bookings: bookings}
	}
}

func (m appModel) eventDetailView() string {
	e := m.event
	var b strings.Builder
	b.WriteString(titleStyle.Render(e.Title))
	b.WriteString("\n")
	b.WriteString(hint(fmt.Sprintf("%s • %s %s • %s", e.Category, e.Date, e.Time, e.Venue)))
	b.WriteString("\n\n")
	if e.Description != "" {
		b.WriteString(e.Description)
		b.WriteString("\n\n")
	}
	if len(e.Tags) > 0 {
		b.WriteString("Tags: " + strings.Join(e.Tags, ", ") + "\n")
	}
	if e.Rating != nil {
		b.WriteString(fmt.Sprintf("Rating: %.1f\n", *e.Rating))
	}
	if e.SeatsReported {
		b.WriteString(fmt.Sprintf("Seats: %d of %d available\n", e.AvailableSeats, e.TotalSeats))
	} else {
		b.WriteString(fmt.Sprintf("Seats: %d\n", e.TotalSeats))
	}
	b.WriteString("\nPrices\n")
	for _, tier := range model.SeatTypes {
		b.WriteString(fmt.Sprintf("  %-8s %s\n", tier, formatAmount(e.Price.For(tier))))
	}
	b.WriteString("\n")
	b.WriteString(hint("Press enter to choose seats."))
	return b.String()
}

func (m appModel) dashboardView() string {
	var b strings.Builder
	user := m.profile
	b.WriteString(titleStyle.Render(userLabel(user)))
	b.WriteString("\n")
	b.WriteString(hint(fmt.Sprintf("%s • %s", user.Email, user.Role)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total bookings: %d • Total spent: %s\n\n", user.TotalBookings, formatAmount(user.TotalSpent)))

	titles := map[string]string{}
	for _, event := range m.listing.Events {
		titles[event.Id] = event.Title
	}
	var upcoming, past []model.Booking
	for _, booking := range m.bookings {
		if booking.Status == model.BookingConfirmed {
			upcoming = append(upcoming, booking)
		} else {
			past = append(past, booking)
		}
	}
	writeBookings := func(label string, bookings []model.Booking) {
		b.WriteString(fmt.Sprintf("%s (%d)\n", label, len(bookings)))
		if len(bookings) == 0 {
			b.WriteString(hint("  none") + "\n")
		}
		for _, booking := range bookings {
			title := titles[booking.EventId]
			if title == "" {
				title = "Event " + booking.EventId
			}
			b.WriteString(fmt.Sprintf("  #%s  %s  %s  %s  %s\n",
				booking.Id, title, strings.Join(booking.SeatIds, ","), formatAmount(booking.TotalAmount), booking.Status))
		}
		b.WriteString("\n")
	}
	writeBookings("Upcoming bookings", upcoming)
	writeBookings("Past bookings", past)
	return b.String()
}
