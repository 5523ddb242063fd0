package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"tickethub-cli/model"
	"tickethub-cli/pricing"
	"tickethub-cli/seating"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func formatRating(rating *float64) string {
	if rating == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *rating)
}

func renderEvents(out io.Writer, events []model.Event) {
	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Title", "Category", "Date", "Time", "Venue", "From", "Seats", "Rating"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 32},
		{Number: 4, AutoMerge: true},
		{Number: 6, WidthMax: 24},
	})
	for _, event := range events {
		t.AppendRow(table.Row{
			event.Id,
			event.Title,
			event.Category,
			event.Date,
			event.Time,
			event.Venue,
			formatAmount(event.Price.Regular),
			fmt.Sprintf("%d/%d", event.AvailableSeats, event.TotalSeats),
			formatRating(event.Rating),
		}, rowConfigAutoMerge)
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d events", len(events))})
	t.Render()
}

func renderEventDetail(out io.Writer, event model.Event) {
	t := newTable(out)
	t.AppendRows([]table.Row{
		{"ID", event.Id},
		{"Title", event.Title},
		{"Category", event.Category},
		{"Status", event.Status},
		{"When", strings.TrimSpace(event.Date + " " + event.Time)},
		{"Venue", event.Venue},
		{"Seats", fmt.Sprintf("%d available of %d", event.AvailableSeats, event.TotalSeats)},
		{"Rating", formatRating(event.Rating)},
		{"Tags", strings.Join(event.Tags, ", ")},
	})
	t.Render()
	if event.Description != "" {
		fmt.Fprintf(out, "\n%s\n", event.Description)
	}

	prices := newTable(out)
	prices.AppendHeader(table.Row{"Tier", "Price"})
	for _, tier := range model.SeatTypes {
		prices.AppendRow(table.Row{tier, formatAmount(event.Price.For(tier))})
	}
	fmt.Fprintln(out)
	prices.Render()
}

// renderSeatMap prints the overlaid layout one row per line:
// [] available, XX booked, ** selected.
func renderSeatMap(out io.Writer, layout seating.Layout, overlay []model.Seat) {
	if layout.Generated() {
		fmt.Fprintln(out, "Seat availability is estimated: the backend did not provide a seat layout.")
		fmt.Fprintln(out)
	}
	view := seating.Layout{EventId: layout.EventId, Source: layout.Source, Seats: overlay}
	for _, row := range view.Rows() {
		if len(row) == 0 {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%2s ", row[0].Row)
		for i, seat := range row {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(seatToken(seat))
		}
		fmt.Fprintf(&b, "  %s", row[0].Type)
		fmt.Fprintln(out, b.String())
	}
	fmt.Fprintln(out, "\n   Legend: [] available • XX booked • ** selected")

	stats := newTable(out)
	stats.AppendHeader(table.Row{"Tier", "Price", "Available", "Booked", "Selected"})
	for _, tier := range seating.Stats(overlay) {
		stats.AppendRow(table.Row{tier.Type, formatAmount(tier.Price), tier.Available, tier.Booked, tier.Selected})
	}
	fmt.Fprintln(out)
	stats.Render()
}

func seatToken(seat model.Seat) string {
	switch seat.Status {
	case model.SeatAvailable:
		return "[]"
	case model.SeatSelected:
		return "**"
	default:
		return "XX"
	}
}

func renderOrder(out io.Writer, draft pricing.OrderDraft) {
	if draft.Empty() {
		fmt.Fprintln(out, "No seats selected.")
		return
	}
	t := newTable(out)
	t.AppendHeader(table.Row{"Tier", "Seats", "Amount"})
	for _, tier := range draft.ByTier() {
		t.AppendRow(table.Row{tier.Type, tier.Count, formatAmount(tier.Amount)})
	}
	t.AppendFooter(table.Row{"Subtotal", "", formatAmount(draft.Quote.Subtotal)})
	t.AppendFooter(table.Row{"Convenience fee", "", formatAmount(draft.Quote.ConvenienceFee)})
	t.AppendFooter(table.Row{"Total", "", formatAmount(draft.Quote.Total)})
	fmt.Fprintf(out, "Selected: %s\n", strings.Join(draft.SeatIDs(), ", "))
	t.Render()
}
