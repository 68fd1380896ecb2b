// Package checkout prices a seat selection and models the simulated booking
// flow that follows it.
package checkout

import (
	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/venue"
)

// Fee schedule.
const (
	ServiceFeeRate = 0.12
	ConvenienceFee = 5.99
	TaxRate        = 0.08
)

// Line is one priced seat.
type Line struct {
	SeatID    string
	Section   string
	Row       string
	Number    string
	TierName  string
	TierColor string
	Price     float64
}

// Breakdown is the full price of a selection.
type Breakdown struct {
	Lines          []Line
	Subtotal       float64
	ServiceFee     float64
	ConvenienceFee float64
	Tax            float64
	Total          float64
}

// Quote prices seats against tiers. An empty selection has a zero total:
// the convenience fee is only charged on a non-empty order.
func Quote(seats []layout.PositionedSeat, tiers venue.TierTable) Breakdown {
	var b Breakdown
	for _, s := range seats {
		tier := tiers.Lookup(s.PriceTier)
		price := tiers.PriceOf(s.Seat)
		b.Lines = append(b.Lines, Line{
			SeatID:    s.ID,
			Section:   s.SectionLabel,
			Row:       s.Row,
			Number:    s.NumberLabel(),
			TierName:  tier.Name,
			TierColor: tier.Color,
			Price:     price,
		})
		b.Subtotal += price
	}
	if len(b.Lines) == 0 {
		return b
	}

	b.ServiceFee = b.Subtotal * ServiceFeeRate
	b.ConvenienceFee = ConvenienceFee
	b.Tax = b.Subtotal * TaxRate
	b.Total = b.Subtotal + b.ServiceFee + b.ConvenienceFee + b.Tax
	return b
}

// SummaryTotal is the running total shown next to the map: subtotal plus
// service fee.
func (b Breakdown) SummaryTotal() float64 {
	return b.Subtotal + b.ServiceFee
}
