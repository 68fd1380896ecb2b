package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/logging"
	"github.com/litescript/ls-seats/internal/selection"
	"github.com/litescript/ls-seats/internal/venue"
)

// Surface units per terminal cell. A seat gap of 40 map units spans four
// columns at zoom 1.
const (
	cellW = 10.0
	cellH = 20.0

	// keyPanStep is the shift+arrow pan distance in surface units.
	keyPanStep = 80.0

	hudLines = 2
)

// SeatMapModel renders the venue as a pannable, zoomable cell canvas and
// handles seat targeting by keyboard and mouse.
type SeatMapModel struct {
	width  int
	height int

	// Terminal position of the canvas' top-left cell.
	originX int
	originY int

	layout   *layout.Layout
	tiers    venue.TierTable
	store    *selection.Store
	viewport layout.Viewport
	theme    Theme
	log      *logging.Logger

	highlight string
	heatMap   bool
	mounted   bool

	hover       hoverDebouncer
	hoverTarget string

	// Pointer press in progress.
	pressing  bool
	pressCol  int
	pressRow  int
	pressSeat string
	dragged   bool
}

// SeatMapOption configures a SeatMapModel.
type SeatMapOption func(*SeatMapModel)

// WithScheduler replaces the hover timer.
func WithScheduler(s Scheduler) SeatMapOption {
	return func(m *SeatMapModel) {
		m.hover = newHoverDebouncer(HoverDelay, s)
	}
}

// WithSeatMapLogger sets the logger.
func WithSeatMapLogger(l *logging.Logger) SeatMapOption {
	return func(m *SeatMapModel) {
		m.log = l
	}
}

// NewSeatMapModel creates a seat map bound to a selection store.
func NewSeatMapModel(store *selection.Store, tiers venue.TierTable, opts ...SeatMapOption) SeatMapModel {
	m := SeatMapModel{
		tiers:    tiers,
		store:    store,
		viewport: *layout.NewViewport(),
		theme:    darkTheme,
		log:      logging.Discard(),
		hover:    newHoverDebouncer(HoverDelay, nil),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// SetLayout replaces the projected layout. A highlight that no longer
// exists is dropped.
func (m SeatMapModel) SetLayout(l *layout.Layout) SeatMapModel {
	m.layout = l
	if l == nil {
		m.highlight = ""
		return m
	}
	if m.highlight != "" {
		if _, ok := l.Seat(m.highlight); !ok {
			m.highlight = ""
		}
	}
	return m
}

// SetSize updates the canvas size, HUD included.
func (m SeatMapModel) SetSize(width, height int) SeatMapModel {
	m.width = width
	m.height = height
	return m
}

// SetOrigin sets where the canvas sits on the terminal, for mouse mapping.
func (m SeatMapModel) SetOrigin(x, y int) SeatMapModel {
	m.originX = x
	m.originY = y
	return m
}

// SetTheme sets the chrome palette.
func (m SeatMapModel) SetTheme(t Theme) SeatMapModel {
	m.theme = t
	return m
}

// Mount starts accepting keyboard input.
func (m SeatMapModel) Mount() SeatMapModel {
	m.mounted = true
	return m
}

// Unmount stops keyboard handling and cancels any pending hover.
func (m SeatMapModel) Unmount() SeatMapModel {
	m.mounted = false
	m.hover.Cancel()
	m.hoverTarget = ""
	m.pressing = false
	m.viewport.PointerUp()
	return m
}

// Mounted reports whether the map currently handles input.
func (m SeatMapModel) Mounted() bool { return m.mounted }

// Highlighted returns the highlighted seat ID, or "".
func (m SeatMapModel) Highlighted() string { return m.highlight }

// HeatMap reports whether price-tier coloring is on.
func (m SeatMapModel) HeatMap() bool { return m.heatMap }

// ToggleHeatMap flips the color mode.
func (m SeatMapModel) ToggleHeatMap() SeatMapModel {
	m.heatMap = !m.heatMap
	return m
}

// Viewport returns the current pan and zoom.
func (m SeatMapModel) Viewport() layout.ViewportState { return m.viewport.State() }

// HoverPending reports whether a debounced hover is waiting.
func (m SeatMapModel) HoverPending() bool { return m.hover.Pending() }

// Update handles input messages.
func (m SeatMapModel) Update(msg tea.Msg) (SeatMapModel, tea.Cmd) {
	if !m.mounted || m.layout == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case hoverFiredMsg:
		if !m.hover.Accept(msg) {
			return m, nil
		}
		seat, ok := m.layout.Seat(msg.seatID)
		if !ok {
			return m, nil
		}
		m.highlight = seat.ID
		return m, tea.Batch(
			emit(SeatHoverMsg{Seat: &seat}),
			emit(HighlightChangedMsg{SeatID: seat.ID}),
		)
	}
	return m, nil
}

func (m SeatMapModel) handleKey(msg tea.KeyMsg) (SeatMapModel, tea.Cmd) {
	switch msg.String() {
	// Spatial navigation needs a starting seat
	case "up":
		return m.move(layout.Up)
	case "down":
		return m.move(layout.Down)
	case "left":
		return m.move(layout.Left)
	case "right":
		return m.move(layout.Right)

	case "enter", " ":
		if m.highlight == "" {
			return m, nil
		}
		seat, ok := m.layout.Seat(m.highlight)
		if !ok || !seat.Available() {
			return m, nil
		}
		return m.activate(seat)

	case "esc":
		return m.setHighlight("")

	case "h", "H":
		m.heatMap = !m.heatMap

	case "tab":
		return m.cycle(1)
	case "shift+tab":
		return m.cycle(-1)

	// Viewport
	case "shift+up":
		m.viewport.PanBy(0, -keyPanStep)
	case "shift+down":
		m.viewport.PanBy(0, keyPanStep)
	case "shift+left":
		m.viewport.PanBy(-keyPanStep, 0)
	case "shift+right":
		m.viewport.PanBy(keyPanStep, 0)
	case "+", "=":
		m.viewport.ZoomIn()
	case "-":
		m.viewport.ZoomOut()
	case "0", "r":
		m.viewport.Reset()

	case "x":
		if m.store.Len() == 0 {
			return m, nil
		}
		m.store.Clear()
		return m, emit(SelectionCountChangedMsg{Count: 0, Max: m.store.Max()})
	}
	return m, nil
}

func (m SeatMapModel) move(d layout.Direction) (SeatMapModel, tea.Cmd) {
	if m.highlight == "" {
		return m, nil
	}
	target, ok := m.layout.Move(m.highlight, d)
	if !ok {
		return m, nil
	}
	return m.setHighlight(target.ID)
}

// cycle moves the highlight to the next available seat in venue order.
func (m SeatMapModel) cycle(dir int) (SeatMapModel, tea.Cmd) {
	seats := m.layout.Seats()
	n := len(seats)
	if n == 0 {
		return m, nil
	}
	start := m.layout.IndexOf(m.highlight)
	if start < 0 && dir < 0 {
		start = 0
	}
	for i := 1; i <= n; i++ {
		idx := ((start+dir*i)%n + n) % n
		if seats[idx].Available() {
			return m.setHighlight(seats[idx].ID)
		}
	}
	return m, nil
}

func (m SeatMapModel) setHighlight(id string) (SeatMapModel, tea.Cmd) {
	if m.highlight == id {
		return m, nil
	}
	m.highlight = id
	return m, emit(HighlightChangedMsg{SeatID: id})
}

// activate toggles an available seat and selects it for the details panel.
func (m SeatMapModel) activate(seat layout.PositionedSeat) (SeatMapModel, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store.Toggle(seat.ID) {
		cmds = append(cmds,
			emit(SeatToggledMsg{SeatID: seat.ID, Selected: m.store.IsSelected(seat.ID)}),
			emit(SelectionCountChangedMsg{Count: m.store.Len(), Max: m.store.Max()}),
		)
	} else {
		m.log.Debug("seat %s not toggled: selection full", seat.ID)
	}
	cmds = append(cmds, emit(SeatSelectMsg{Seat: seat}))

	var cmd tea.Cmd
	m, cmd = m.setHighlight(seat.ID)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// click handles a press and release on the same cell.
func (m SeatMapModel) click(seatID string) (SeatMapModel, tea.Cmd) {
	if seatID == "" {
		return m.setHighlight("")
	}
	seat, ok := m.layout.Seat(seatID)
	if !ok {
		return m, nil
	}
	if seat.Available() {
		return m.activate(seat)
	}
	return m.setHighlight(seat.ID)
}

func (m SeatMapModel) handleMouse(msg tea.MouseMsg) (SeatMapModel, tea.Cmd) {
	col, row := msg.X-m.originX, msg.Y-m.originY
	inside := col >= 0 && row >= 0 && col < m.canvasWidth() && row < m.canvasHeight()
	surface := layout.Point{X: float64(col) * cellW, Y: float64(row) * cellH}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		if inside {
			m.viewport.Wheel(surface, -1)
		}
		return m, nil
	case msg.Button == tea.MouseButtonWheelDown:
		if inside {
			m.viewport.Wheel(surface, 1)
		}
		return m, nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !inside {
			return m, nil
		}
		m.pressing = true
		m.dragged = false
		m.pressCol, m.pressRow = col, row
		m.pressSeat = m.seatAtCell(col, row)
		m.viewport.PointerDown(surface)
		return m, nil

	case msg.Action == tea.MouseActionRelease:
		if !m.pressing {
			return m, nil
		}
		m.pressing = false
		m.viewport.PointerUp()
		if m.dragged || !inside {
			return m, nil
		}
		return m.click(m.pressSeat)

	case msg.Action == tea.MouseActionMotion:
		if m.pressing {
			if col != m.pressCol || row != m.pressRow {
				m.dragged = true
			}
			m.viewport.PointerMove(surface)
			return m, nil
		}
		return m.hoverAt(col, row, inside)
	}
	return m, nil
}

// hoverAt debounces hover over seats; leaving all seats clears the
// highlight at once.
func (m SeatMapModel) hoverAt(col, row int, inside bool) (SeatMapModel, tea.Cmd) {
	seatID := ""
	if inside {
		seatID = m.seatAtCell(col, row)
	}
	if seatID == m.hoverTarget {
		return m, nil
	}
	m.hoverTarget = seatID
	if seatID == "" {
		m.hover.Cancel()
		return m.setHighlight("")
	}
	return m, m.hover.Schedule(seatID)
}

func (m SeatMapModel) canvasWidth() int { return m.width }

func (m SeatMapModel) canvasHeight() int {
	h := m.height - hudLines
	if h < 1 {
		h = 1
	}
	return h
}

// seatCellWidth is how many columns a seat occupies at the current zoom.
func (m SeatMapModel) seatCellWidth() int {
	w := int(layout.SeatGap*m.viewport.Scale()/cellW) - 1
	if w < 1 {
		return 1
	}
	if w > 3 {
		return 3
	}
	return w
}

// cellOf maps a map position to its canvas cell.
func (m SeatMapModel) cellOf(x, y float64) (int, int) {
	p := m.viewport.ToScreen(layout.Point{X: x, Y: y})
	return int(math.Floor(p.X / cellW)), int(math.Floor(p.Y / cellH))
}

// seatAtCell returns the seat drawn at a canvas cell. Later seats are drawn
// on top, so the scan runs backwards.
func (m SeatMapModel) seatAtCell(col, row int) string {
	if m.layout == nil {
		return ""
	}
	cw := m.seatCellWidth()
	seats := m.layout.Seats()
	for i := len(seats) - 1; i >= 0; i-- {
		sx, sy := m.cellOf(seats[i].AbsoluteX, seats[i].AbsoluteY)
		if row == sy && col >= sx && col < sx+cw {
			return seats[i].ID
		}
	}
	return ""
}

// canvasCell is one terminal cell of the map. seat is an index into the
// layout, or -1 for background and labels.
type canvasCell struct {
	r    rune
	seat int
}

// View renders the seat map view.
func (m SeatMapModel) View() string {
	if m.layout == nil {
		return m.theme.muted().Render("No venue loaded")
	}
	if m.width < 20 || m.height < 5 {
		return "Terminal too small for seat map"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderCanvas(), m.renderHUD())
}

func (m SeatMapModel) renderCanvas() string {
	w, h := m.canvasWidth(), m.canvasHeight()
	grid := make([][]canvasCell, h)
	for y := range grid {
		grid[y] = make([]canvasCell, w)
		for x := range grid[y] {
			grid[y][x] = canvasCell{r: ' ', seat: -1}
		}
	}

	// Section labels under the seats
	for _, lbl := range m.layout.SectionLabels() {
		sx, sy := m.cellOf(lbl.X, lbl.Y)
		if sy < 0 || sy >= h {
			continue
		}
		for i, r := range []rune(lbl.Label) {
			x := sx + i
			if x >= 0 && x < w {
				grid[sy][x] = canvasCell{r: r, seat: -1}
			}
		}
	}

	cw := m.seatCellWidth()
	visuals := make(map[int]SeatVisual)
	for i, seat := range m.layout.Seats() {
		sx, sy := m.cellOf(seat.AbsoluteX, seat.AbsoluteY)
		if sy < 0 || sy >= h || sx+cw <= 0 || sx >= w {
			continue
		}
		v := DeriveSeatVisual(seat.Seat, m.tiers, SeatState{
			Selected:    m.store.IsSelected(seat.ID),
			Highlighted: seat.ID == m.highlight,
			HeatMap:     m.heatMap,
		})
		visuals[i] = v
		for j, r := range []rune(v.Cell(cw)) {
			x := sx + j
			if x >= 0 && x < w {
				grid[sy][x] = canvasCell{r: r, seat: i}
			}
		}
	}

	labelStyle := m.theme.muted()
	var b strings.Builder
	for y, row := range grid {
		x := 0
		for x < len(row) {
			// Group runs of the same seat (or of background) into one render
			end := x
			var run strings.Builder
			for end < len(row) && row[end].seat == row[x].seat {
				run.WriteRune(row[end].r)
				end++
			}
			if row[x].seat < 0 {
				b.WriteString(labelStyle.Render(run.String()))
			} else {
				b.WriteString(visuals[row[x].seat].Style().Render(run.String()))
			}
			x = end
		}
		if y < len(grid)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m SeatMapModel) renderHUD() string {
	var b strings.Builder

	headerStyle := m.theme.accent()
	labelStyle := m.theme.dim()
	valueStyle := m.theme.text()

	if seat, ok := m.layout.Seat(m.highlight); ok {
		tier := m.tiers.Lookup(seat.PriceTier)
		b.WriteString(headerStyle.Render("▸ " + seat.ID))
		b.WriteString("  ")
		b.WriteString(valueStyle.Render(fmt.Sprintf("%s · Row %s · Seat %s", seat.SectionLabel, seat.Row, seat.NumberLabel())))
		b.WriteString("  ")
		b.WriteString(valueStyle.Render(fmt.Sprintf("%s ₹%.2f", tier.Name, tier.Price)))
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(string(seat.Status)))
	} else {
		b.WriteString(labelStyle.Render("tab: pick a seat · arrows: move · enter: select · drag: pan · wheel: zoom"))
	}
	b.WriteString("\n")

	mode := "Availability"
	if m.heatMap {
		mode = "Heat map"
	}
	vs := m.viewport.State()
	b.WriteString(labelStyle.Render("Mode:"))
	b.WriteString(valueStyle.Render(mode))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Zoom:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.2fx", vs.Scale)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Offset:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.0f,%.0f", vs.Offset.X, vs.Offset.Y)))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render("Selected:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d/%d", m.store.Len(), m.store.Max())))
	if m.heatMap {
		b.WriteString("  ")
		b.WriteString(m.renderLegend())
	}

	return b.String()
}

// renderLegend lists the tiers with their heat-map colors.
func (m SeatMapModel) renderLegend() string {
	var parts []string
	for _, tier := range m.tiers {
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(tier.Color)).Render("  ")
		parts = append(parts, swatch+" "+m.theme.muted().Render(tier.Label()))
	}
	return strings.Join(parts, "  ")
}
