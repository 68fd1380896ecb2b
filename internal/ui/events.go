package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-seats/internal/layout"
	"github.com/litescript/ls-seats/internal/venue"
)

// Messages the seat map emits to its host.
type (
	// SeatHoverMsg reports the seat under the pointer after the hover delay.
	SeatHoverMsg struct {
		Seat *layout.PositionedSeat
	}

	// SeatSelectMsg reports an activated (clicked) available seat.
	SeatSelectMsg struct {
		Seat layout.PositionedSeat
	}

	// SeatToggledMsg reports a selection toggle that changed membership.
	SeatToggledMsg struct {
		SeatID   string
		Selected bool
	}

	// HighlightChangedMsg reports the new highlighted seat; empty means none.
	HighlightChangedMsg struct {
		SeatID string
	}

	// SelectionCountChangedMsg reports the selection size after a change.
	SelectionCountChangedMsg struct {
		Count int
		Max   int
	}
)

// Messages driving the root model.
type (
	// VenueLoadedMsg carries a successfully loaded venue.
	VenueLoadedMsg struct {
		Result venue.FetchResult
	}

	// VenueErrorMsg signals that the venue could not be loaded.
	VenueErrorMsg struct {
		Error error
	}
)

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
