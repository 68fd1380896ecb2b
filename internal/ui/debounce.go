package ui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// HoverDelay is roughly one frame.
const HoverDelay = 16 * time.Millisecond

// Scheduler delivers msg after d. The default is tea.Tick; tests inject
// one that fires immediately.
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

// TickScheduler schedules with tea.Tick.
func TickScheduler(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

var debouncerIDs atomic.Uint64

// hoverFiredMsg is a scheduled hover coming due.
type hoverFiredMsg struct {
	owner  uint64
	gen    uint64
	seatID string
}

// hoverDebouncer coalesces hover events for one seat map. Only the most
// recently scheduled hover can fire; Cancel invalidates anything pending.
type hoverDebouncer struct {
	owner    uint64
	gen      uint64
	pending  bool
	delay    time.Duration
	schedule Scheduler
}

func newHoverDebouncer(delay time.Duration, schedule Scheduler) hoverDebouncer {
	if schedule == nil {
		schedule = TickScheduler
	}
	return hoverDebouncer{
		owner:    debouncerIDs.Add(1),
		delay:    delay,
		schedule: schedule,
	}
}

// Schedule supersedes any pending hover with one for seatID.
func (d *hoverDebouncer) Schedule(seatID string) tea.Cmd {
	d.gen++
	d.pending = true
	return d.schedule(d.delay, hoverFiredMsg{owner: d.owner, gen: d.gen, seatID: seatID})
}

// Cancel drops the pending hover, if any.
func (d *hoverDebouncer) Cancel() {
	d.gen++
	d.pending = false
}

// Pending reports whether a hover is waiting to fire.
func (d *hoverDebouncer) Pending() bool { return d.pending }

// Accept reports whether msg is the live hover for this debouncer and
// consumes it.
func (d *hoverDebouncer) Accept(msg hoverFiredMsg) bool {
	if msg.owner != d.owner || msg.gen != d.gen || !d.pending {
		return false
	}
	d.pending = false
	return true
}
