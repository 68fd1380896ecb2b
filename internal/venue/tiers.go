package venue

import (
	"strconv"
	"strings"
)

// PriceTier is one row of the static price table.
type PriceTier struct {
	ID          int
	Name        string
	Price       float64
	Color       string
	Description string
}

// TierTable is an ordered price table. The first entry is the fallback for
// unknown refs.
type TierTable []PriceTier

// DefaultTiers is the price table shipped with the application.
var DefaultTiers = TierTable{
	{ID: 1, Name: "Premium", Price: 149.99, Color: "#f59e0b", Description: "Premium Seating"},
	{ID: 2, Name: "Standard", Price: 99.99, Color: "#10b981", Description: "Standard Seating"},
	{ID: 3, Name: "Economy", Price: 69.99, Color: "#3b82f6", Description: "Economy Seating"},
	{ID: 4, Name: "Budget", Price: 39.99, Color: "#8b5cf6", Description: "Budget Seating"},
}

// Find returns the tier matching ref by numeric ID or case-insensitive name.
func (t TierTable) Find(ref TierRef) (PriceTier, bool) {
	if id, ok := ref.ID(); ok {
		for _, tier := range t {
			if tier.ID == id {
				return tier, true
			}
		}
		return PriceTier{}, false
	}
	key := ref.Key()
	if key == "" {
		return PriceTier{}, false
	}
	for _, tier := range t {
		if strings.ToLower(tier.Name) == key {
			return tier, true
		}
	}
	return PriceTier{}, false
}

// Lookup returns the tier for ref, falling back to the first table entry.
func (t TierTable) Lookup(ref TierRef) PriceTier {
	if tier, ok := t.Find(ref); ok {
		return tier
	}
	if len(t) == 0 {
		return PriceTier{}
	}
	return t[0]
}

// PriceOf returns the ticket price of a seat. Pricing is always driven by the
// tier table; a price carried on the seat itself is informational only.
func (t TierTable) PriceOf(seat Seat) float64 {
	return t.Lookup(seat.PriceTier).Price
}

// Label returns a short "Name ₹price" legend entry.
func (p PriceTier) Label() string {
	return p.Name + " ₹" + strconv.FormatFloat(p.Price, 'f', 2, 64)
}
