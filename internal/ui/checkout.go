package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-seats/internal/checkout"
	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/logging"
	"github.com/litescript/ls-seats/internal/venue"
)

type (
	// BookingConfirmedMsg is sent once the simulated payment completes.
	BookingConfirmedMsg struct {
		Booking checkout.Booking
	}

	// CheckoutClosedMsg asks the host to return to the seat map.
	CheckoutClosedMsg struct{}

	paymentProcessedMsg struct{ run int }
)

// CheckoutModel walks the customer through details, payment and the
// confirmation screen.
type CheckoutModel struct {
	width  int
	height int
	theme  Theme
	log    *logging.Logger

	venueName string
	tiers     venue.TierTable
	seats     []layout.PositionedSeat
	quote     checkout.Breakdown

	step    checkout.Step
	inputs  []textinput.Model // indexed by checkout.Field
	focus   int               // position within the current step's fields
	err     string
	run     int
	booking *checkout.Booking
	spinner spinner.Model

	schedule Scheduler
	now      func() time.Time
}

// CheckoutOption configures a CheckoutModel.
type CheckoutOption func(*CheckoutModel)

// WithCheckoutScheduler replaces the processing timer.
func WithCheckoutScheduler(s Scheduler) CheckoutOption {
	return func(m *CheckoutModel) { m.schedule = s }
}

// WithClock sets the time source used for confirmation timestamps.
func WithClock(now func() time.Time) CheckoutOption {
	return func(m *CheckoutModel) { m.now = now }
}

// WithCheckoutLogger sets the logger.
func WithCheckoutLogger(l *logging.Logger) CheckoutOption {
	return func(m *CheckoutModel) { m.log = l }
}

// NewCheckoutModel creates an idle checkout.
func NewCheckoutModel(tiers venue.TierTable, opts ...CheckoutOption) CheckoutModel {
	fields := append(append([]checkout.Field{}, checkout.DetailsFields...), checkout.PaymentFields...)
	inputs := make([]textinput.Model, len(fields))
	for _, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder()
		ti.Prompt = ""
		ti.CharLimit = 64
		ti.Width = 28
		switch f {
		case checkout.FieldCardNumber:
			ti.CharLimit = 19
		case checkout.FieldCardExpiry:
			ti.CharLimit = 5
		case checkout.FieldCardCVC:
			ti.CharLimit = 4
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		ti.Blur()
		inputs[f] = ti
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := CheckoutModel{
		theme:    darkTheme,
		log:      logging.Discard(),
		tiers:    tiers,
		inputs:   inputs,
		spinner:  sp,
		schedule: TickScheduler,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Start opens checkout for the given seats, clearing any earlier entries.
func (m CheckoutModel) Start(venueName string, seats []layout.PositionedSeat) (CheckoutModel, tea.Cmd) {
	m.venueName = venueName
	m.seats = seats
	m.quote = checkout.Quote(seats, m.tiers)
	m.step = checkout.StepDetails
	m.err = ""
	m.booking = nil
	m.run++
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = 0
	if len(seats) == 0 {
		return m, nil
	}
	return m, m.focusCurrent()
}

// SetSize updates the available area.
func (m CheckoutModel) SetSize(width, height int) CheckoutModel {
	m.width = width
	m.height = height
	return m
}

// SetTheme sets the palette.
func (m CheckoutModel) SetTheme(t Theme) CheckoutModel {
	m.theme = t
	return m
}

// Step returns the current stage.
func (m CheckoutModel) Step() checkout.Step { return m.step }

// Booking returns the confirmed booking, if any.
func (m CheckoutModel) Booking() *checkout.Booking { return m.booking }

// Err returns the current validation message.
func (m CheckoutModel) Err() string { return m.err }

// Value returns the text entered for f.
func (m CheckoutModel) Value(f checkout.Field) string { return m.inputs[f].Value() }

func (m CheckoutModel) stepFields() []checkout.Field {
	if m.step == checkout.StepPayment {
		return checkout.PaymentFields
	}
	return checkout.DetailsFields
}

func (m CheckoutModel) current() checkout.Field {
	return m.stepFields()[m.focus]
}

func (m *CheckoutModel) focusCurrent() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m.inputs[m.current()].Focus()
}

func (m CheckoutModel) form() checkout.Form {
	f := make(checkout.Form, len(m.inputs))
	for i := range m.inputs {
		f[checkout.Field(i)] = m.inputs[i].Value()
	}
	return f
}

// Update handles input for the active step.
func (m CheckoutModel) Update(msg tea.Msg) (CheckoutModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.step != checkout.StepProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case paymentProcessedMsg:
		if m.step != checkout.StepProcessing || msg.run != m.run {
			return m, nil
		}
		b := checkout.Confirm(m.venueName, m.form(), m.quote, m.now())
		m.booking = &b
		m.step = checkout.StepConfirmed
		m.log.Info("booking %s confirmed: %d seats, total %.2f", b.Reference, len(b.Breakdown.Lines), b.Breakdown.Total)
		return m, emit(BookingConfirmedMsg{Booking: b})

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m CheckoutModel) handleKey(msg tea.KeyMsg) (CheckoutModel, tea.Cmd) {
	if len(m.seats) == 0 || m.step == checkout.StepConfirmed {
		switch msg.String() {
		case "enter", "esc", "q":
			return m, emit(CheckoutClosedMsg{})
		}
		return m, nil
	}
	if m.step == checkout.StepProcessing {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if m.step == checkout.StepPayment {
			m.step = checkout.StepDetails
			m.focus = 0
			m.err = ""
			return m, m.focusCurrent()
		}
		for i := range m.inputs {
			m.inputs[i].Blur()
		}
		return m, emit(CheckoutClosedMsg{})

	case "tab", "down":
		m.focus = (m.focus + 1) % len(m.stepFields())
		return m, m.focusCurrent()

	case "shift+tab", "up":
		n := len(m.stepFields())
		m.focus = (m.focus - 1 + n) % n
		return m, m.focusCurrent()

	case "enter":
		if m.focus < len(m.stepFields())-1 {
			m.focus++
			return m, m.focusCurrent()
		}
		return m.submit()
	}

	f := m.current()
	var cmd tea.Cmd
	m.inputs[f], cmd = m.inputs[f].Update(msg)
	if f == checkout.FieldCardNumber {
		if v := m.inputs[f].Value(); v != "" {
			if formatted := checkout.FormatCardNumber(v); formatted != v {
				m.inputs[f].SetValue(formatted)
				m.inputs[f].CursorEnd()
			}
		}
	}
	m.err = ""
	return m, cmd
}

// submit validates the current step and advances.
func (m CheckoutModel) submit() (CheckoutModel, tea.Cmd) {
	if err := m.form().Validate(m.stepFields()); err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""

	if m.step == checkout.StepDetails {
		m.step = checkout.StepPayment
		m.focus = 0
		return m, m.focusCurrent()
	}

	m.step = checkout.StepProcessing
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.log.Debug("processing payment for %d seats", len(m.seats))
	return m, tea.Batch(
		m.spinner.Tick,
		m.schedule(checkout.ProcessingDelay, paymentProcessedMsg{run: m.run}),
	)
}

// View renders the active step.
func (m CheckoutModel) View() string {
	t := m.theme
	var b strings.Builder

	if len(m.seats) == 0 {
		b.WriteString(t.accent().Render("No Seats Selected"))
		b.WriteString("\n\n")
		b.WriteString(t.muted().Render("Pick at least one seat on the map before checking out."))
		b.WriteString("\n\n")
		b.WriteString(t.dim().Render("enter: back to map"))
		return m.place(t.panel(50).Render(b.String()))
	}

	b.WriteString(m.renderSteps())
	b.WriteString("\n\n")

	var body string
	switch m.step {
	case checkout.StepDetails, checkout.StepPayment:
		body = m.renderForm()
	case checkout.StepProcessing:
		body = m.spinner.View() + " " + t.text().Render("Processing payment...")
	case checkout.StepConfirmed:
		body = m.renderConfirmation()
	}
	b.WriteString(body)

	left := t.panel(46).Render(b.String())
	right := m.renderOrder()
	return m.place(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
}

func (m CheckoutModel) place(s string) string {
	if m.width <= 0 || m.height <= 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func (m CheckoutModel) renderSteps() string {
	steps := []checkout.Step{checkout.StepDetails, checkout.StepPayment, checkout.StepConfirmed}
	var parts []string
	for i, s := range steps {
		label := fmt.Sprintf("%d %s", i+1, s)
		switch {
		case s == m.step || (s == checkout.StepConfirmed && m.step == checkout.StepProcessing):
			parts = append(parts, m.theme.accent().Render("● "+label))
		case s < m.step:
			parts = append(parts, lipgloss.NewStyle().Foreground(m.theme.Success).Render("✓ "+label))
		default:
			parts = append(parts, m.theme.dim().Render("○ "+label))
		}
	}
	return strings.Join(parts, m.theme.dim().Render(" ─ "))
}

func (m CheckoutModel) renderForm() string {
	t := m.theme
	var b strings.Builder

	title := "Your details"
	if m.step == checkout.StepPayment {
		title = "Payment"
	}
	b.WriteString(t.text().Bold(true).Render(title))
	b.WriteString("\n")

	label := lipgloss.NewStyle().Foreground(t.Muted).Width(14)
	for i, f := range m.stepFields() {
		marker := "  "
		if i == m.focus {
			marker = t.accent().Render("▸ ")
		}
		b.WriteString(marker + label.Render(f.String()) + m.inputs[f].View() + "\n")
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(t.errorStyle().Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.step == checkout.StepPayment {
		b.WriteString(t.dim().Render("No payment is taken. tab: next · enter: pay · esc: back"))
	} else {
		b.WriteString(t.dim().Render("tab: next · enter: continue · esc: back to map"))
	}
	return b.String()
}

func (m CheckoutModel) renderConfirmation() string {
	t := m.theme
	bk := m.booking
	if bk == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(t.Success).Bold(true).Render("Booking confirmed"))
	b.WriteString("\n\n")
	label := lipgloss.NewStyle().Foreground(t.Dim).Width(14)
	b.WriteString(label.Render("Reference") + t.accent().Render(bk.Reference) + "\n")
	b.WriteString(label.Render("Name") + t.text().Render(bk.Customer) + "\n")
	b.WriteString(label.Render("Email") + t.text().Render(bk.Email) + "\n")
	b.WriteString(label.Render("Card") + t.text().Render(checkout.MaskCard(bk.CardLast4)) + "\n")
	b.WriteString(label.Render("Seats") + t.text().Render(fmt.Sprintf("%d", len(bk.Breakdown.Lines))) + "\n")
	b.WriteString(label.Render("Paid") + t.text().Render(fmt.Sprintf("₹%.2f", bk.Breakdown.Total)) + "\n")
	b.WriteString("\n")
	b.WriteString(t.muted().Render("A confirmation has been sent to " + bk.Email + "."))
	b.WriteString("\n\n")
	b.WriteString(t.dim().Render("enter: back to map"))
	return b.String()
}

// renderOrder is the full price breakdown next to the form.
func (m CheckoutModel) renderOrder() string {
	t := m.theme
	var b strings.Builder
	b.WriteString(t.accent().Render("Order Summary"))
	b.WriteString("\n")
	if m.venueName != "" {
		b.WriteString(t.muted().Render(m.venueName))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, line := range m.quote.Lines {
		b.WriteString(t.text().Render(fmt.Sprintf("%-10s", line.SeatID)))
		b.WriteString(t.muted().Render(fmt.Sprintf(" %-8s ₹%7.2f", line.TierName, line.Price)))
		b.WriteString("\n")
	}
	b.WriteString(t.dim().Render(strings.Repeat("─", sidePanelWidth-4)))
	b.WriteString("\n")
	b.WriteString(summaryLine("Subtotal", m.quote.Subtotal, t.muted()))
	b.WriteString(summaryLine("Service fee", m.quote.ServiceFee, t.muted()))
	b.WriteString(summaryLine("Convenience", m.quote.ConvenienceFee, t.muted()))
	b.WriteString(summaryLine("Tax", m.quote.Tax, t.muted()))
	b.WriteString(strings.TrimSuffix(summaryLine("Total", m.quote.Total, t.text().Bold(true)), "\n"))
	return t.panel(sidePanelWidth).Render(b.String())
}
