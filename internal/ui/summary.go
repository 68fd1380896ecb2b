package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-seats/internal/checkout"
	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/venue"
)

// sidePanelWidth is the width of the details and summary column.
const sidePanelWidth = 34

// renderSeatDetails describes the hovered seat, or the last selected one.
func renderSeatDetails(seat *layout.PositionedSeat, hovered bool, tiers venue.TierTable, t Theme) string {
	var b strings.Builder

	title := "Seat Details"
	if hovered {
		title += " " + t.accent().Render("●")
	}
	b.WriteString(t.accent().Render(title))
	b.WriteString("\n")

	if seat == nil {
		b.WriteString(t.muted().Render("Hover or highlight a seat to see its details."))
		return t.panel(sidePanelWidth).Render(b.String())
	}

	tier := tiers.Lookup(seat.PriceTier)
	label := lipgloss.NewStyle().Foreground(t.Dim).Width(9)

	b.WriteString(t.text().Bold(true).Render(seat.ID))
	b.WriteString("\n")
	b.WriteString(label.Render("Section") + t.text().Render(seat.SectionLabel) + "\n")
	b.WriteString(label.Render("Row") + t.text().Render(seat.Row) + "\n")
	b.WriteString(label.Render("Seat") + t.text().Render(seat.NumberLabel()) + "\n")
	b.WriteString(label.Render("Tier") +
		lipgloss.NewStyle().Foreground(lipgloss.Color(tier.Color)).Render(tier.Name) + "\n")
	b.WriteString(label.Render("Price") + t.text().Render(fmt.Sprintf("₹%.2f", tiers.PriceOf(seat.Seat))) + "\n")
	b.WriteString(label.Render("Status") + statusStyle(seat.Status, t).Render(statusText(seat.Status)))

	return t.panel(sidePanelWidth).Render(b.String())
}

func statusText(s venue.Status) string {
	switch s {
	case venue.StatusAvailable:
		return "Available"
	case venue.StatusReserved:
		return "Reserved"
	case venue.StatusSold:
		return "Sold"
	case venue.StatusHeld:
		return "On hold"
	}
	return string(s)
}

func statusStyle(s venue.Status, t Theme) lipgloss.Style {
	switch s {
	case venue.StatusAvailable:
		return lipgloss.NewStyle().Foreground(t.Success)
	case venue.StatusHeld:
		return lipgloss.NewStyle().Foreground(t.Warning)
	default:
		return lipgloss.NewStyle().Foreground(t.Error)
	}
}

// renderSelectionSummary lists the selected seats in venue order with the
// running total (subtotal plus service fee).
func renderSelectionSummary(seats []layout.PositionedSeat, tiers venue.TierTable, max int, t Theme) string {
	var b strings.Builder

	b.WriteString(t.accent().Render("Your Selection"))
	b.WriteString(t.muted().Render(fmt.Sprintf("  %d/%d", len(seats), max)))
	b.WriteString("\n")

	if len(seats) == 0 {
		b.WriteString(t.muted().Render("No seats selected yet."))
		return t.panel(sidePanelWidth).Render(b.String())
	}

	quote := checkout.Quote(seats, tiers)
	for _, line := range quote.Lines {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(line.TierColor)).Render("■")
		b.WriteString(fmt.Sprintf("%s %-10s %s\n",
			swatch,
			t.text().Render(line.SeatID),
			t.muted().Render(fmt.Sprintf("%-8s ₹%7.2f", line.TierName, line.Price))))
	}

	b.WriteString(t.dim().Render(strings.Repeat("─", sidePanelWidth-4)))
	b.WriteString("\n")
	b.WriteString(summaryLine("Subtotal", quote.Subtotal, t.muted()))
	b.WriteString(summaryLine("Service fee", quote.ServiceFee, t.muted()))
	b.WriteString(summaryLine("Total", quote.SummaryTotal(), t.text().Bold(true)))
	b.WriteString(t.accent().Render("c: checkout") + t.muted().Render("  x: clear"))

	return t.panel(sidePanelWidth).Render(b.String())
}

func summaryLine(label string, amount float64, style lipgloss.Style) string {
	return style.Render(fmt.Sprintf("%-14s ₹%10.2f", label, amount)) + "\n"
}
