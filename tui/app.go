package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"tickethub-cli/auth"
	"tickethub-cli/catalog"
	"tickethub-cli/checkout"
	"tickethub-cli/logging"
	"tickethub-cli/model"
	"tickethub-cli/seating"
	"tickethub-cli/store"
)

type appState int

const (
	stateLoadingEvents appState = iota
	stateEventList
	stateEventDetail
	stateLoadingSeats
	stateSeatMap
	stateCheckout
	stateSubmitting
	stateConfirmation
	stateLogin
	stateLoadingDashboard
	stateDashboard
	stateError
)

// AccountAPI reads the logged in user's profile and bookings.
type AccountAPI interface {
	GetUserDetails(ctx context.Context, token string) (model.User, error)
	ListUserBookings(ctx context.Context, token string, userID string) ([]model.Booking, error)
}

// Deps are the services the storefront drives. Account may be nil, which
// disables the dashboard.
type Deps struct {
	Catalog      *catalog.Reader
	Seats        *seating.Loader
	Auth         *auth.Manager
	Account      AccountAPI
	Checkout     *checkout.Checkout
	Selection    *seating.Selection
	Drafts       store.DraftStore
	Log          *zap.Logger
	MerchantName string
	Now          func() time.Time
}

type appModel struct {
	deps Deps
	log  *zap.Logger

	state     appState
	lastState appState
	err       error

	width  int
	height int

	listing   catalog.Listing
	query     catalog.Query
	tags      []string
	tagIndex  int
	eventList list.Model

	event           model.Event
	layout          seating.Layout
	cursorRow       int
	cursorCol       int
	showSeatNumbers bool
	notice          string

	form         checkoutForm
	confirmation *checkout.Confirmation

	login       loginForm
	loginReturn appState

	profile  model.User
	bookings []model.Booking

	spinner spinner.Model
}

type errMsg struct {
	err            error
	returnState    appState
	returnStateSet bool
}

type eventsMsg struct {
	listing catalog.Listing
}

type eventMsg struct {
	event model.Event
	ok    bool
}

type seatsMsg struct {
	event   model.Event
	layout  seating.Layout
	dropped []string
}

type checkoutResultMsg struct {
	confirmation checkout.Confirmation
	err          error
}

type loginMsg struct {
	session auth.Session
	err     error
}

type dashboardMsg struct {
	user     model.User
	bookings []model.Booking
	err      error
}

func New(deps Deps) tea.Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Selection == nil {
		deps.Selection = seating.NewSelection()
	}
	if deps.Drafts == nil {
		deps.Drafts = store.NewMemoryDraft()
	}
	if deps.MerchantName == "" {
		deps.MerchantName = "TicketHub"
	}

	m := appModel{
		deps:     deps,
		log:      logging.Component(deps.Log, "tui"),
		state:    stateLoadingEvents,
		query:    catalog.Query{Category: catalog.CategoryAll, Sort: catalog.SortDate},
		tagIndex: -1,
	}
	m.eventList = newList("Events")
	m.form = newCheckoutForm(model.User{})
	m.login = newLoginForm()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.fetchEventsCmd(false), m.spinner.Tick)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.state == stateCheckout || m.state == stateLogin {
			return m.updateInputs(msg)
		}
		if m.handleFilterInput(msg) {
			return m, nil
		}
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
		m = next
		// fallthrough to component update

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		if msg.returnStateSet {
			m.lastState = msg.returnState
		} else {
			m.lastState = recoverStateFrom(m.state)
		}
		m.state = stateError
		return m, nil

	case eventsMsg:
		m.listing = msg.listing
		m.tags = catalog.Tags(msg.listing.Events)
		if m.tagIndex >= len(m.tags) {
			m.tagIndex = -1
		}
		m.refreshEventList()
		m.state = stateEventList
		return m, nil

	case eventMsg:
		// The list entry stays on screen when the fresh lookup fails.
		if msg.ok && msg.event.Id == m.event.Id {
			m.event = msg.event
		}
		return m, nil

	case seatsMsg:
		m.event = msg.event
		m.layout = msg.layout
		m.cursorRow, m.cursorCol = 0, 0
		m.moveCursorToAvailable()
		m.notice = ""
		if len(msg.dropped) > 0 {
			m.notice = fmt.Sprintf("No longer available, removed from your selection: %s", strings.Join(msg.dropped, ", "))
		}
		m.state = stateSeatMap
		return m, nil

	case checkoutResultMsg:
		return m.handleCheckoutResult(msg)

	case loginMsg:
		if m.state != stateLogin {
			return m, nil
		}
		m.login.pending = false
		if msg.err != nil {
			m.login.message = loginErrorMessage(msg.err)
			m.login.password.SetValue("")
			return m, nil
		}
		m.login = newLoginForm()
		m.form.prefill(msg.session.User)
		m.notice = fmt.Sprintf("Logged in as %s", userLabel(msg.session.User))
		m.state = m.loginReturn
		if m.state == stateCheckout {
			cmd := m.form.focusCurrent()
			return m, cmd
		}
		return m, nil

	case dashboardMsg:
		if msg.err != nil {
			return m, errWithReturnCmd(msg.err, stateEventList)
		}
		m.profile = msg.user
		m.bookings = msg.bookings
		m.state = stateDashboard
		return m, nil
	}

	var cmd tea.Cmd
	if m.state == stateEventList {
		m.eventList, cmd = m.eventList.Update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoadingEvents, stateLoadingSeats, stateLoadingDashboard, stateSubmitting:
		return header + "\n\n" + m.loadingView()
	case stateEventList:
		body := m.eventList.View()
		if note := m.listing.Describe(); note != "" {
			body = warnStyle.Render(note) + "\n" + body
		}
		return header + "\n\n" + body
	case stateEventDetail:
		return header + "\n\n" + m.eventDetailView()
	case stateSeatMap:
		return header + "\n\n" + m.seatMapView()
	case stateCheckout:
		return header + "\n\n" + m.checkoutView()
	case stateConfirmation:
		return header + "\n\n" + m.confirmationView()
	case stateLogin:
		return header + "\n\n" + m.login.view()
	case stateDashboard:
		return header + "\n\n" + m.dashboardView()
	case stateError:
		return header + "\n\n" + errorStyle.Render(m.err.Error()) + "\n\n" + hint("Press esc to go back or ctrl+c to quit.")
	default:
		return header
	}
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.deps.MerchantName)
	sub := []string{}
	if session := m.session(); session.LoggedIn() {
		sub = append(sub, fmt.Sprintf("User: %s (%s)", userLabel(session.User), session.Role))
	} else {
		sub = append(sub, "Not logged in")
	}
	if m.state == stateEventList {
		sub = append(sub, "Category: "+m.query.Category, "Sort: "+string(m.query.Sort))
		if tag := m.currentTag(); tag != "" {
			sub = append(sub, "Tag: "+tag)
		}
	}
	if m.event.Id != "" && m.state != stateEventList && m.state != stateDashboard {
		sub = append(sub, fmt.Sprintf("Event: %s", m.event.Title))
	}
	if n := m.deps.Selection.Len(); n > 0 && m.state != stateConfirmation {
		sub = append(sub, fmt.Sprintf("Selected: %d", n))
	}
	meta := lipgloss.NewStyle().Faint(true).Render(strings.Join(sub, " • "))

	hints := "ctrl+c quit • esc back"
	switch m.state {
	case stateEventList:
		hints = "ctrl+c quit • type to search • enter open • ctrl+g category • ctrl+t tag • ctrl+o sort • ctrl+r refresh • ctrl+l login/logout • ctrl+u my bookings"
	case stateEventDetail:
		hints = "ctrl+c quit • esc back • enter choose seats • ctrl+l login/logout"
	case stateSeatMap:
		hints = "q quit • esc back (clears selection) • arrows move • space select • x clear • n numbers • c checkout"
	case stateCheckout:
		hints = "ctrl+c quit • esc back to seats • tab/shift+tab move • ctrl+p payment method • enter next/submit • ctrl+l login"
	case stateSubmitting:
		hints = "ctrl+c quit • esc abandon"
	case stateConfirmation:
		hints = "ctrl+c quit • enter back to events"
	case stateLogin:
		hints = "ctrl+c quit • esc cancel • tab switch field • enter log in"
	case stateDashboard:
		hints = "ctrl+c quit • esc back • r reload"
	}

	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Search: %s", filter))
		}
	}
	noticeLine := ""
	if m.notice != "" {
		noticeLine = "\n" + warnStyle.Render(m.notice)
	}
	return title + "\n" + meta + filterLine + noticeLine + "\n" + hint(hints)
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true
	case "q":
		if m.state != stateEventList {
			return m, tea.Quit, true
		}
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() || listPtr.FilterValue() != "" {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		next, cmd := m.goBack()
		return next, cmd, true
	}

	switch m.state {
	case stateEventList:
		return m.handleEventListKey(msg)
	case stateEventDetail:
		switch msg.String() {
		case "enter":
			m.state = stateLoadingSeats
			return m, tea.Batch(m.fetchSeatsCmd(m.event), m.spinner.Tick), true
		case "ctrl+l":
			return m.toggleLogin(stateEventDetail)
		}
	case stateSeatMap:
		return m.handleSeatMapKey(msg)
	case stateConfirmation:
		if msg.String() == "enter" {
			next, cmd := m.goBack()
			return next, cmd, true
		}
	case stateDashboard:
		if msg.String() == "r" {
			m.state = stateLoadingDashboard
			return m, tea.Batch(m.fetchDashboardCmd(), m.spinner.Tick), true
		}
	}
	return m, nil, false
}

func (m appModel) handleEventListKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "enter":
		item, ok := m.eventList.SelectedItem().(eventItem)
		if !ok {
			return m, nil, true
		}
		m.event = item.event
		if err := store.RememberEvent(item.event); err != nil {
			m.log.Debug("failed to remember event", zap.Error(err))
		}
		m.state = stateEventDetail
		return m, m.fetchEventCmd(item.event.Id), true
	case "ctrl+g":
		m.query.Category = catalog.NextCategory(m.query.Category)
		m.refreshEventList()
		return m, nil, true
	case "ctrl+o":
		m.query.Sort = catalog.NextSort(m.query.Sort)
		m.refreshEventList()
		return m, nil, true
	case "ctrl+t":
		m.tagIndex++
		if m.tagIndex >= len(m.tags) {
			m.tagIndex = -1
		}
		m.refreshEventList()
		return m, nil, true
	case "ctrl+r":
		m.state = stateLoadingEvents
		return m, tea.Batch(m.fetchEventsCmd(true), m.spinner.Tick), true
	case "ctrl+l":
		return m.toggleLogin(stateEventList)
	case "ctrl+u":
		if m.deps.Account == nil || m.deps.Auth == nil {
			return m, nil, true
		}
		if err := m.session().Valid(m.deps.Now()); err != nil {
			m.loginReturn = stateEventList
			m.login.message = "Log in to see your bookings"
			m.state = stateLogin
			cmd := m.login.focus()
			return m, cmd, true
		}
		m.state = stateLoadingDashboard
		return m, tea.Batch(m.fetchDashboardCmd(), m.spinner.Tick), true
	}
	return m, nil, false
}

// toggleLogin opens the login form, or logs out when a session exists.
func (m appModel) toggleLogin(returnState appState) (appModel, tea.Cmd, bool) {
	if m.deps.Auth == nil {
		return m, nil, true
	}
	if m.session().LoggedIn() {
		if err := m.deps.Auth.Logout(); err != nil {
			m.log.Warn("logout failed", zap.Error(err))
		}
		m.notice = "Logged out"
		return m, nil, true
	}
	m.loginReturn = returnState
	m.state = stateLogin
	cmd := m.login.focus()
	return m, cmd, true
}

func (m appModel) goBack() (appModel, tea.Cmd) {
	m.notice = ""
	switch m.state {
	case stateEventDetail:
		m.state = stateEventList
	case stateSeatMap:
		// Leaving the seat map discards the selection.
		m.deps.Selection.Clear()
		if err := m.deps.Drafts.Clear(); err != nil {
			m.log.Warn("failed to clear session draft", zap.Error(err))
		}
		m.state = stateEventDetail
	case stateCheckout, stateSubmitting:
		m.deps.Checkout.Abandon()
		m.form.blurAll()
		m.state = stateSeatMap
	case stateConfirmation:
		m.deps.Checkout.Reset()
		m.confirmation = nil
		m.form = newCheckoutForm(m.session().User)
		m.state = stateLoadingEvents
		return m, tea.Batch(m.fetchEventsCmd(true), m.spinner.Tick)
	case stateLogin:
		m.login = newLoginForm()
		m.state = m.loginReturn
		if m.state == stateCheckout {
			cmd := m.form.focusCurrent()
			return m, cmd
		}
	case stateDashboard:
		m.state = stateEventList
	case stateError:
		m.state = m.lastState
	default:
		return m, nil
	}
	return m, nil
}

func (m appModel) session() auth.Session {
	if m.deps.Auth == nil {
		return auth.Session{}
	}
	return m.deps.Auth.Session()
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	listPtr.SetFilterText(listPtr.FilterValue() + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := trimLastRune(listPtr.FilterValue())
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func (m *appModel) activeList() *list.Model {
	if m.state == stateEventList {
		return &m.eventList
	}
	return nil
}

func (m appModel) isLoadingState() bool {
	return m.state == stateLoadingEvents ||
		m.state == stateLoadingSeats ||
		m.state == stateLoadingDashboard ||
		m.state == stateSubmitting
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateLoadingEvents:
		title = "Loading events"
	case stateLoadingSeats:
		title = "Loading seat map"
	case stateLoadingDashboard:
		title = "Loading your bookings"
	case stateSubmitting:
		title = "Processing payment"
	}
	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Please wait..."))
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 7
	if h < 6 {
		h = 6
	}
	m.eventList.SetSize(m.width, h)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errWithReturnCmd(err error, returnState appState) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err, returnState: returnState, returnStateSet: true}
	}
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateLoadingEvents, stateError:
		return stateEventList
	case stateLoadingSeats:
		return stateEventDetail
	case stateLoadingDashboard:
		return stateEventList
	case stateSubmitting:
		return stateCheckout
	default:
		return state
	}
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

func userLabel(user model.User) string {
	if user.FullName != "" {
		return user.FullName
	}
	if user.Email != "" {
		return user.Email
	}
	return user.Id
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
