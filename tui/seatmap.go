package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"tickethub-cli/model"
	"tickethub-cli/pricing"
	"tickethub-cli/seating"
	"tickethub-cli/store"
)

var (
	seatStyleAvailable = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatStyleBooked    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	seatStyleSelected  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Bold(true)
	seatStyleCursor    = lipgloss.NewStyle().Reverse(true)
	tierStyles         = map[model.SeatType]lipgloss.Style{
		model.SeatRegular: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		model.SeatVip:     lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		model.SeatPremium: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
)

func (m appModel) handleSeatMapKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	rows := m.layout.Rows()
	switch msg.String() {
	case "up", "k":
		m.moveCursor(rows, -1, 0)
	case "down", "j":
		m.moveCursor(rows, 1, 0)
	case "left", "h":
		m.moveCursor(rows, 0, -1)
	case "right", "l":
		m.moveCursor(rows, 0, 1)
	case " ", "enter":
		seat, ok := m.cursorSeat(rows)
		if !ok {
			return m, nil, true
		}
		if !m.deps.Selection.Toggle(seat.Id) {
			m.notice = fmt.Sprintf("Seat %s is not available", seat.Id)
			return m, nil, true
		}
		m.notice = ""
		m.saveDraft()
	case "x":
		m.deps.Selection.Clear()
		m.notice = ""
		m.saveDraft()
	case "n":
		m.showSeatNumbers = !m.showSeatNumbers
	case "c", "tab":
		if m.deps.Selection.Len() == 0 {
			m.notice = "Please select at least one seat"
			return m, nil, true
		}
		m.notice = ""
		m.state = stateCheckout
		if session := m.session(); session.LoggedIn() {
			m.form.prefill(session.User)
		}
		cmd := m.form.focusCurrent()
		return m, cmd, true
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m *appModel) moveCursor(rows [][]model.Seat, dRow, dCol int) {
	if len(rows) == 0 {
		return
	}
	m.cursorRow = clamp(m.cursorRow+dRow, 0, len(rows)-1)
	m.cursorCol = clamp(m.cursorCol+dCol, 0, len(rows[m.cursorRow])-1)
}

// moveCursorToAvailable parks the cursor on the first available seat.
func (m *appModel) moveCursorToAvailable() {
	for r, row := range m.layout.Rows() {
		for c, seat := range row {
			if seat.IsAvailable() {
				m.cursorRow, m.cursorCol = r, c
				return
			}
		}
	}
}

func (m appModel) cursorSeat(rows [][]model.Seat) (model.Seat, bool) {
	if m.cursorRow < 0 || m.cursorRow >= len(rows) {
		return model.Seat{}, false
	}
	row := rows[m.cursorRow]
	if m.cursorCol < 0 || m.cursorCol >= len(row) {
		return model.Seat{}, false
	}
	return row[m.cursorCol], true
}

// saveDraft stores the selection for the session, or clears the draft when
// nothing is selected.
func (m appModel) saveDraft() {
	ids := m.deps.Selection.IDs()
	var err error
	if len(ids) == 0 {
		err = m.deps.Drafts.Clear()
	} else {
		event := m.event
		err = m.deps.Drafts.Save(store.Draft{SelectedSeats: ids, SelectedEvent: &event})
	}
	if err != nil {
		m.log.Warn("failed to save session draft", zap.Error(err))
	}
}

func (m appModel) seatMapView() string {
	var b strings.Builder
	if m.layout.Generated() {
		b.WriteString(warnStyle.Render("Seat availability is estimated: the backend did not provide a seat layout."))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderSeatMap())
	b.WriteString("\n\n")
	b.WriteString(renderTierStats(seating.Stats(m.deps.Selection.Overlay())))
	b.WriteString("\n")
	b.WriteString(renderOrderSummary(pricing.NewDraft(m.event, m.deps.Selection.Seats())))
	return b.String()
}

func (m appModel) renderSeatMap() string {
	overlay := seating.Layout{Seats: m.deps.Selection.Overlay()}
	rows := overlay.Rows()
	if len(rows) == 0 {
		return "No seat map data."
	}

	cols := 0
	rowWidth := 1
	for _, row := range rows {
		cols = max(cols, len(row))
		if len(row) > 0 {
			rowWidth = max(rowWidth, len(row[0].Row))
		}
	}
	cellWidth := 2
	if m.showSeatNumbers {
		cellWidth = 3
	}

	var b strings.Builder
	for r, row := range rows {
		label := ""
		if len(row) > 0 {
			label = row[0].Row
		}
		b.WriteString(fmt.Sprintf("%*s ", rowWidth, label))
		for c := 0; c < cols; c++ {
			if c >= len(row) {
				b.WriteString(padCell("", cellWidth))
			} else {
				seat := row[c]
				text := seatToken(seat)
				if m.showSeatNumbers {
					text = fmt.Sprintf("%d", seat.Number)
				}
				rendered := padCell(text, cellWidth)
				switch seat.Status {
				case model.SeatSelected:
					rendered = seatStyleSelected.Render(rendered)
				case model.SeatAvailable:
					style, ok := tierStyles[seat.Type]
					if !ok {
						style = seatStyleAvailable
					}
					rendered = style.Render(rendered)
				default:
					rendered = seatStyleBooked.Render(rendered)
				}
				if r == m.cursorRow && c == m.cursorCol {
					rendered = seatStyleCursor.Render(rendered)
				}
				b.WriteString(rendered)
			}
			if c < cols-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString(fmt.Sprintf(" %*s\n", rowWidth, label))
	}

	gridWidth := cols*(cellWidth+1) - 1
	stageStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("214"))
	stageBorderStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Background(lipgloss.Color("236"))

	stage := screenBarBlock(gridWidth, "STAGE")
	indent := strings.Repeat(" ", rowWidth+1)
	b.WriteString("\n")
	b.WriteString(indent + stageBorderStyle.Render(stage.top) + "\n")
	b.WriteString(indent + stageStyle.Render(stage.mid) + "\n")
	b.WriteString(indent + stageBorderStyle.Render(stage.bot) + "\n\n")

	legend := "Legend: [] available (green regular, magenta vip, yellow premium) • XX booked • ** selected"
	if m.showSeatNumbers {
		legend = "Legend: color shows tier and status • numbers are seat numbers"
	}
	if seat, ok := m.cursorSeat(rows); ok {
		legend += "\n" + fmt.Sprintf("Cursor: %s • %s • %s • %s", seat.Id, seat.Type, seat.Status, formatAmount(seat.Price))
	}
	return b.String() + hint(legend)
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

func renderTierStats(stats []seating.TierStats) string {
	var b strings.Builder
	for _, tier := range stats {
		style, ok := tierStyles[tier.Type]
		if !ok {
			style = lipgloss.NewStyle()
		}
		b.WriteString(fmt.Sprintf("%s %s • %d available • %d booked • %d selected\n",
			style.Render(fmt.Sprintf("%-8s", tier.Type)), formatAmount(tier.Price), tier.Available, tier.Booked, tier.Selected))
	}
	return b.String()
}

func renderOrderSummary(draft pricing.OrderDraft) string {
	if draft.Empty() {
		return hint("No seats selected.")
	}
	var b strings.Builder
	b.WriteString("Selected: " + strings.Join(draft.SeatIDs(), ", ") + "\n")
	for _, tier := range draft.ByTier() {
		b.WriteString(fmt.Sprintf("  %d × %-8s %s\n", tier.Count, tier.Type, formatAmount(tier.Amount)))
	}
	b.WriteString(fmt.Sprintf("Subtotal: %s • Convenience fee: %s • ", formatAmount(draft.Quote.Subtotal), formatAmount(draft.Quote.ConvenienceFee)))
	b.WriteString(okStyle.Render("Total: " + formatAmount(draft.Quote.Total)))
	return b.String()
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

type screenBlock struct {
	top string
	mid string
	bot string
}

func screenBarBlock(width int, label string) screenBlock {
	if width < len(label)+4 {
		width = len(label) + 4
	}
	if width < 10 {
		width = 10
	}

	border := "╭" + strings.Repeat("─", width-2) + "╮"
	bottom := "╰" + strings.Repeat("─", width-2) + "╯"

	labelText := " " + label + " "
	padding := width - len(labelText) - 2
	left := padding / 2
	right := padding - left
	mid := "│" + strings.Repeat(" ", left) + labelText + strings.Repeat(" ", right) + "│"
	return screenBlock{top: border, mid: mid, bot: bottom}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
