// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/logging"
	"github.com/litescript/ls-seats/internal/selection"
	"github.com/litescript/ls-seats/internal/state"
	"github.com/litescript/ls-seats/internal/storage"
	"github.com/litescript/ls-seats/internal/venue"
	"github.com/litescript/ls-seats/internal/version"
)

// Screen is the top-level view.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenError
	ScreenMap
	ScreenCheckout
)

// Fixed chrome heights, used to place the canvas for mouse mapping.
const (
	headerLines = 3
	footerLines = 2
)

// Deps are the collaborators of the root model.
type Deps struct {
	State     *state.Manager
	Fetcher   *venue.Fetcher
	Selection *selection.Store
	Prefs     storage.Store
	Tiers     venue.TierTable
	Logger    *logging.Logger

	// Scheduler overrides tea.Tick for hover and payment delays.
	Scheduler Scheduler
	// Now overrides the clock used for bookings.
	Now func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state     *state.Manager
	fetcher   *venue.Fetcher
	selection *selection.Store
	prefs     storage.Store
	tiers     venue.TierTable
	log       *logging.Logger

	// UI state
	screen    Screen
	width     int
	height    int
	ready     bool
	dark      bool
	theme     Theme
	statusMsg string
	loadErr   error
	loading   bool

	// Sub-models
	seatMap  SeatMapModel
	checkout CheckoutModel
	spinner  spinner.Model

	// Details panel: a hovered seat wins over the last selected one.
	hovered  *layout.PositionedSeat
	selected *layout.PositionedSeat

	limitOpen bool
}

// New creates a new root UI model.
func New(d Deps) Model {
	log := d.Logger
	if log == nil {
		log = logging.Discard()
	}
	prefs := d.Prefs
	if prefs == nil {
		prefs = storage.NewMemoryStore()
	}
	tiers := d.Tiers
	if len(tiers) == 0 {
		tiers = venue.DefaultTiers
	}
	sel := d.Selection
	if sel == nil {
		sel = selection.NewStore(prefs, selection.WithLogger(log))
	}
	stateMgr := d.State
	if stateMgr == nil {
		stateMgr = state.NewManager(state.DefaultConfig())
	}
	fetcher := d.Fetcher
	if fetcher == nil {
		fetcher = venue.NewFetcher()
	}

	mapOpts := []SeatMapOption{WithSeatMapLogger(log.Named("seatmap"))}
	coOpts := []CheckoutOption{WithCheckoutLogger(log.Named("checkout"))}
	if d.Scheduler != nil {
		mapOpts = append(mapOpts, WithScheduler(d.Scheduler))
		coOpts = append(coOpts, WithCheckoutScheduler(d.Scheduler))
	}
	if d.Now != nil {
		coOpts = append(coOpts, WithClock(d.Now))
	}

	dark := LoadDarkMode(prefs, log)
	theme := ThemeFor(dark)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		state:     stateMgr,
		fetcher:   fetcher,
		selection: sel,
		prefs:     prefs,
		tiers:     tiers,
		log:       log,
		screen:    ScreenLoading,
		dark:      dark,
		theme:     theme,
		loading:   true,
		seatMap:   NewSeatMapModel(sel, tiers, mapOpts...).SetTheme(theme),
		checkout:  NewCheckoutModel(tiers, coOpts...).SetTheme(theme),
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadVenue(m.fetcher, m.state, m.log),
	)
}

// loadVenue fetches the venue off the UI goroutine and records the result.
func loadVenue(f *venue.Fetcher, st *state.Manager, log *logging.Logger) tea.Cmd {
	return func() tea.Msg {
		res := f.Fetch(context.Background())
		st.Update(res)
		if res.Error != nil {
			log.Error("load venue from %s: %v", res.Source, res.Error)
			return VenueErrorMsg{Error: res.Error}
		}
		log.Info("loaded venue %q from %s in %s (%d seats)",
			res.Document.Name, res.Source, res.Duration.Round(time.Millisecond), res.Document.SeatCount())
		return VenueLoadedMsg{Result: res}
	}
}

// Screen returns the active screen.
func (m Model) Screen() Screen { return m.screen }

// LimitDialogOpen reports whether the selection-limit dialog is showing.
func (m Model) LimitDialogOpen() bool { return m.limitOpen }

// DarkMode reports the active theme.
func (m Model) DarkMode() bool { return m.dark }

// SeatMap returns the seat map sub-model.
func (m Model) SeatMap() SeatMapModel { return m.seatMap }

// Checkout returns the checkout sub-model.
func (m Model) Checkout() CheckoutModel { return m.checkout }

// DetailsSeat returns the seat shown in the details panel, if any.
func (m Model) DetailsSeat() *layout.PositionedSeat {
	if m.hovered != nil {
		return m.hovered
	}
	return m.selected
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.screen == ScreenMap && !m.limitOpen {
			var cmd tea.Cmd
			m.seatMap, cmd = m.seatMap.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else if m.screen == ScreenCheckout {
			var cmd tea.Cmd
			m.checkout, cmd = m.checkout.Update(msg)
			cmds = append(cmds, cmd)
		}

	case VenueLoadedMsg:
		m.loading = false
		m.loadErr = nil
		m.statusMsg = ""
		m.seatMap = m.seatMap.SetLayout(m.state.Layout())
		m.hovered, m.selected = m.refreshSeat(m.hovered), m.refreshSeat(m.selected)
		if m.screen == ScreenLoading || m.screen == ScreenError {
			m.screen = ScreenMap
			m.seatMap = m.seatMap.Mount()
		}

	case VenueErrorMsg:
		m.loading = false
		m.loadErr = msg.Error
		if m.state.HasData() {
			m.statusMsg = "Reload failed: " + msg.Error.Error()
		} else {
			m.screen = ScreenError
		}

	// Seat map notifications
	case SeatHoverMsg:
		m.hovered = msg.Seat

	case SeatSelectMsg:
		seat := msg.Seat
		m.selected = &seat

	case HighlightChangedMsg:
		if msg.SeatID == "" {
			m.hovered = nil
		} else if l := m.state.Layout(); l != nil {
			if seat, ok := l.Seat(msg.SeatID); ok {
				m.hovered = &seat
			}
		}

	case SeatToggledMsg:
		m.statusMsg = ""

	case SelectionCountChangedMsg:
		if m.selection.Full() && !m.limitOpen {
			m.openLimitDialog()
		}

	// Checkout notifications
	case BookingConfirmedMsg:
		m.selection.Clear()
		m.state.Record(state.Event{
			Type:   state.EventBookingConfirmed,
			Detail: fmt.Sprintf("%s %d seats %.2f", msg.Booking.Reference, len(msg.Booking.Breakdown.Lines), msg.Booking.Breakdown.Total),
		})
		m.statusMsg = "Booking " + msg.Booking.Reference + " confirmed"

	case CheckoutClosedMsg:
		m.screen = ScreenMap
		m.seatMap = m.seatMap.Mount()

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// refreshSeat re-reads a remembered seat from the current layout.
func (m Model) refreshSeat(s *layout.PositionedSeat) *layout.PositionedSeat {
	l := m.state.Layout()
	if s == nil || l == nil {
		return nil
	}
	if seat, ok := l.Seat(s.ID); ok {
		return &seat
	}
	return nil
}

func (m *Model) openLimitDialog() {
	m.limitOpen = true
	m.seatMap = m.seatMap.Unmount()
	m.state.Record(state.Event{
		Type:   state.EventLimitReached,
		Detail: fmt.Sprintf("%d/%d", m.selection.Len(), m.selection.Max()),
	})
	m.log.Info("selection limit reached (%d seats)", m.selection.Max())
}

func (m *Model) closeLimitDialog() {
	m.limitOpen = false
	if m.screen == ScreenMap {
		m.seatMap = m.seatMap.Mount()
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.limitOpen {
		switch msg.String() {
		case "enter", "esc", "o":
			m.closeLimitDialog()
		case "x":
			m.selection.Clear()
			m.statusMsg = "Selection cleared"
			m.closeLimitDialog()
		}
		return m, nil
	}

	switch m.screen {
	case ScreenCheckout:
		var cmd tea.Cmd
		m.checkout, cmd = m.checkout.Update(msg)
		return m, cmd

	case ScreenLoading, ScreenError:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "r":
			if m.screen == ScreenError {
				m.screen = ScreenLoading
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, loadVenue(m.fetcher, m.state, m.log))
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "t":
		m.dark = !m.dark
		m.theme = ThemeFor(m.dark)
		m.seatMap = m.seatMap.SetTheme(m.theme)
		m.checkout = m.checkout.SetTheme(m.theme)
		SaveDarkMode(m.prefs, m.log, m.dark)
		return m, nil

	case "m":
		m.seatMap = m.seatMap.ToggleHeatMap()
		return m, nil

	case "c":
		m.screen = ScreenCheckout
		m.seatMap = m.seatMap.Unmount()
		m.hovered = nil
		var cmd tea.Cmd
		m.checkout, cmd = m.checkout.Start(m.venueName(), m.selection.Ordered(m.state.Layout()))
		return m, cmd

	case "R":
		m.statusMsg = "Reloading venue..."
		return m, loadVenue(m.fetcher, m.state, m.log)
	}

	var cmd tea.Cmd
	m.seatMap, cmd = m.seatMap.Update(msg)
	return m, cmd
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.screen {
	case ScreenMap:
		m.seatMap, cmd = m.seatMap.Update(msg)
	case ScreenCheckout:
		m.checkout, cmd = m.checkout.Update(msg)
	}
	return cmd
}

// resize lays out the canvas next to the side column.
func (m *Model) resize() {
	contentHeight := m.height - headerLines - footerLines
	mapWidth := m.width - sidePanelWidth - 3
	if mapWidth < 20 {
		mapWidth = m.width
	}
	m.seatMap = m.seatMap.SetSize(mapWidth, contentHeight).SetOrigin(0, headerLines)
	m.checkout = m.checkout.SetSize(m.width, contentHeight)
}

func (m Model) venueName() string {
	if l := m.state.Layout(); l != nil && l.Document() != nil {
		return l.Document().Name
	}
	return ""
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.screen {
	case ScreenLoading:
		content = m.center(m.spinner.View() + " " + m.theme.text().Render("Loading venue from "+m.fetcher.Source()+"..."))
	case ScreenError:
		content = m.center(m.renderError())
	case ScreenMap:
		if m.limitOpen {
			content = m.center(m.renderLimitDialog())
		} else {
			content = m.renderMap()
		}
	case ScreenCheckout:
		content = m.checkout.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) center(s string) string {
	h := m.height - headerLines - footerLines
	if h < 1 {
		h = 1
	}
	return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, s)
}

func (m Model) renderMap() string {
	canvas := m.seatMap.View()
	if m.width-sidePanelWidth-3 < 20 {
		return canvas
	}
	side := lipgloss.JoinVertical(lipgloss.Left,
		renderSeatDetails(m.DetailsSeat(), m.hovered != nil, m.tiers, m.theme),
		renderSelectionSummary(m.selection.Ordered(m.state.Layout()), m.tiers, m.selection.Max(), m.theme),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, canvas, " ", side)
}

func (m Model) renderError() string {
	var b strings.Builder
	b.WriteString(m.theme.errorStyle().Render("Could not load the venue"))
	b.WriteString("\n\n")
	if m.loadErr != nil {
		b.WriteString(m.theme.text().Render(wordwrap.String(m.loadErr.Error(), 56)))
		b.WriteString("\n\n")
	}
	b.WriteString(m.theme.dim().Render("r: retry · q: quit"))
	return m.theme.panel(60).Render(b.String())
}

func (m Model) renderLimitDialog() string {
	var b strings.Builder
	b.WriteString(m.theme.accent().Render("Selection limit reached"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.text().Render(wordwrap.String(
		fmt.Sprintf("You can select up to %d seats per booking. Release a seat or clear your selection to pick others.", m.selection.Max()), 44)))
	b.WriteString("\n\n")
	b.WriteString(m.theme.accent().Render("[enter] OK"))
	b.WriteString("   ")
	b.WriteString(m.theme.errorStyle().Render("[x] Clear Selection"))
	return m.theme.panel(48).BorderForeground(m.theme.Accent).Render(b.String())
}

func (m Model) renderHeader() string {
	var b strings.Builder

	title := "  ▌LS-SEATS▐"
	runes := []rune(title)
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, 0, len(runes), 1))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}

	muted := m.theme.muted()
	if name := m.venueName(); name != "" {
		b.WriteString("  " + m.theme.text().Bold(true).Render(name))
	}
	b.WriteString(muted.Render(fmt.Sprintf("  v%s", version.Version)))
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderStatusLine() string {
	snap := m.state.Snapshot()
	dim := m.theme.dim()
	if snap.Document == nil {
		return dim.Render("  " + m.fetcher.Source())
	}
	parts := []string{
		fmt.Sprintf("%d seats", snap.Document.SeatCount()),
		fmt.Sprintf("%d available", snap.StatusCounts[venue.StatusAvailable]),
		snap.Source,
	}
	if snap.FetchDuration > 0 {
		parts = append(parts, snap.FetchDuration.Round(time.Millisecond).String())
	}
	if latest := m.state.RecentEvents(1); len(latest) == 1 {
		parts = append(parts, formatEvent(latest[0]))
	}
	return dim.Render("  " + strings.Join(parts, " · "))
}

// formatEvent renders an event as its type followed by seat and detail.
func formatEvent(e state.Event) string {
	s := string(e.Type)
	if e.SeatID != "" {
		s += " " + e.SeatID
	}
	if e.OldStatus != "" || e.NewStatus != "" {
		s += fmt.Sprintf(" %s→%s", e.OldStatus, e.NewStatus)
	}
	if e.Detail != "" {
		s += " " + e.Detail
	}
	return s
}

// gradientColor returns a hex color for a position in the title gradient:
// blue to purple to magenta to pink.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64

	if xRatio < 0.33 {
		// Blue to Purple
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else if xRatio < 0.66 {
		// Purple to Magenta
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	} else {
		// Magenta to Pink
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	// Vertical fade
	f := 1.0 - (yRatio * 0.5)
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*f), clampByte(g*f), clampByte(b*f))
}

func clampByte(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v)
}

func (m Model) renderFooter() string {
	dim := m.theme.dim()

	var status string
	switch {
	case m.statusMsg != "":
		status = m.theme.accent().Render(m.statusMsg)
	case m.loadErr != nil && m.screen == ScreenMap:
		status = m.theme.errorStyle().Render("ERROR: " + m.loadErr.Error())
	default:
		status = m.theme.muted().Render(fmt.Sprintf("%d/%d seats selected", m.selection.Len(), m.selection.Max()))
	}

	var help string
	switch m.screen {
	case ScreenCheckout:
		help = "tab: next field · enter: continue · esc: back · ctrl+c: quit"
	case ScreenMap:
		help = "tab: seat · arrows: move · enter: select · h/m: heat map · +/-: zoom · shift+arrows: pan · 0: reset · c: checkout · x: clear · t: theme · R: reload · q: quit"
	default:
		help = "q: quit"
	}

	width := m.width - 2
	if width < 20 {
		width = 20
	}
	lines := strings.Split(wordwrap.String(help, width), "\n")
	if len(lines) > footerLines-1 {
		lines = lines[:footerLines-1]
	}
	return "  " + status + "\n  " + dim.Render(strings.Join(lines, "\n  "))
}
