// Package nav implements the sidebar flyout state machine: hover and click
// events in, a single State out, with close and collapse delays driven by
// an injectable clock.
package nav

import (
	"log/slog"
	"time"
)

// Delays used when no option overrides them.
const (
	DefaultCloseDelay    = 150 * time.Millisecond
	DefaultCollapseDelay = 300 * time.Millisecond

	// NoFlyout is the ActiveFlyout value when no flyout is open.
	NoFlyout = -1
)

// State is the sidebar interaction state. Pinned implies ActiveFlyout != NoFlyout.
type State struct {
	Expanded     bool
	ActiveFlyout int
	Pinned       bool
	AnchorOffset int
}

// Flyout returns the open flyout's item index and whether one is open.
func (s State) Flyout() (int, bool) {
	return s.ActiveFlyout, s.ActiveFlyout != NoFlyout
}

// Outcome is returned by click events. Href is set when a leaf was clicked and
// the caller should navigate.
type Outcome struct {
	Href string
}

// Navigated reports whether the click selected a leaf.
func (o Outcome) Navigated() bool { return o.Href != "" }

type deadline struct {
	at    time.Time
	armed bool
}

func (d *deadline) arm(at time.Time) {
	d.at = at
	d.armed = true
}

func (d *deadline) clear() { *d = deadline{} }

func (d deadline) due(now time.Time) bool {
	return d.armed && !now.Before(d.at)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source for close and collapse deadlines.
func WithClock(c Clock) Option { return func(ctl *Controller) { ctl.clock = c } }

// WithCloseDelay sets how long a flyout stays open after the pointer leaves.
func WithCloseDelay(d time.Duration) Option {
	return func(ctl *Controller) { ctl.closeDelay = d }
}

// WithCollapseDelay sets how long the sidebar stays expanded after the pointer
// leaves.
func WithCollapseDelay(d time.Duration) Option {
	return func(ctl *Controller) { ctl.collapseDelay = d }
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *slog.Logger) Option { return func(ctl *Controller) { ctl.log = l } }

// Controller owns the sidebar state machine. It is not safe for concurrent use;
// every event is expected to arrive on the UI goroutine.
type Controller struct {
	items []Item
	state State

	clock         Clock
	closeDelay    time.Duration
	collapseDelay time.Duration
	log           *slog.Logger

	closeAt    deadline
	collapseAt deadline

	// Pointer position, tracked as explicit inputs rather than inferred.
	overSidebar bool
	overFlyout  bool
}

// NewController validates items and returns a collapsed controller with no
// flyout open.
func NewController(items []Item, opts ...Option) (*Controller, error) {
	if err := validateItems(items, 0); err != nil {
		return nil, err
	}
	c := &Controller{
		items:         items,
		state:         State{ActiveFlyout: NoFlyout},
		clock:         systemClock{},
		closeDelay:    DefaultCloseDelay,
		collapseDelay: DefaultCollapseDelay,
		log:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// Items returns the top-level items.
func (c *Controller) Items() []Item { return c.items }

// FlyoutItems returns the children of the open flyout, if any.
func (c *Controller) FlyoutItems() []Item {
	idx, ok := c.state.Flyout()
	if !ok {
		return nil
	}
	return c.items[idx].Children
}

// NextDeadline reports the earliest pending timer.
func (c *Controller) NextDeadline() (time.Time, bool) {
	switch {
	case c.closeAt.armed && c.collapseAt.armed:
		if c.collapseAt.at.Before(c.closeAt.at) {
			return c.collapseAt.at, true
		}
		return c.closeAt.at, true
	case c.closeAt.armed:
		return c.closeAt.at, true
	case c.collapseAt.armed:
		return c.collapseAt.at, true
	}
	return time.Time{}, false
}

// Tick fires every timer that is due at the clock's current time and reports
// whether the state changed.
func (c *Controller) Tick() bool {
	now := c.clock.Now()
	before := c.state
	if c.closeAt.due(now) {
		c.closeAt.clear()
		if !c.state.Pinned {
			c.closeFlyout()
			c.log.Debug("nav flyout closed by timer")
		}
	}
	if c.collapseAt.due(now) {
		c.collapseAt.clear()
		if !c.state.Pinned {
			c.closeFlyout()
			c.state.Expanded = false
			c.log.Debug("nav sidebar collapsed by timer")
		}
	}
	return before != c.state
}

// PointerEnterSidebar expands the sidebar and cancels a pending collapse.
func (c *Controller) PointerEnterSidebar() {
	c.overSidebar = true
	c.state.Expanded = true
	c.collapseAt.clear()
}

// PointerLeaveSidebar schedules a collapse unless a flyout is pinned.
func (c *Controller) PointerLeaveSidebar() {
	c.overSidebar = false
	if c.state.Pinned {
		return
	}
	c.scheduleCollapse()
}

// PointerEnterItem handles hover over a top-level item. offset is the item's
// vertical position, used to place the flyout beside it.
func (c *Controller) PointerEnterItem(idx, offset int) {
	if !c.validIndex(idx) || c.state.Pinned {
		return
	}
	if !c.items[idx].IsBranch() {
		// Pointer moved on to a leaf; a hover flyout for another item goes away.
		if _, open := c.state.Flyout(); open {
			c.closeFlyout()
		}
		return
	}
	c.closeAt.clear()
	c.openFlyout(idx, offset)
}

// PointerLeaveItem schedules closing a hover flyout.
func (c *Controller) PointerLeaveItem(idx int) {
	if !c.validIndex(idx) || c.state.Pinned || !c.items[idx].IsBranch() {
		return
	}
	c.scheduleClose()
}

// PointerEnterFlyout cancels pending close and collapse timers.
func (c *Controller) PointerEnterFlyout() {
	c.overFlyout = true
	c.closeAt.clear()
	c.collapseAt.clear()
	c.state.Expanded = true
}

// PointerLeaveFlyout schedules both timers unless the flyout is pinned.
func (c *Controller) PointerLeaveFlyout() {
	c.overFlyout = false
	if c.state.Pinned {
		return
	}
	c.scheduleClose()
	c.scheduleCollapse()
}

// ClickItem handles a click on a top-level item. Branches toggle a pinned
// flyout; leaves navigate.
func (c *Controller) ClickItem(idx, offset int) Outcome {
	if !c.validIndex(idx) {
		return Outcome{}
	}
	it := c.items[idx]
	if !it.IsBranch() {
		return c.navigate(it.Href)
	}
	if cur, open := c.state.Flyout(); open && cur == idx && c.state.Pinned {
		c.closeFlyout()
		c.log.Debug("nav flyout unpinned", "index", idx)
		return Outcome{}
	}
	c.closeAt.clear()
	c.collapseAt.clear()
	c.openFlyout(idx, offset)
	c.state.Pinned = true
	c.state.Expanded = true
	c.log.Debug("nav flyout pinned", "index", idx)
	return Outcome{}
}

// ClickFlyoutItem handles a click on entry child of the open flyout.
func (c *Controller) ClickFlyoutItem(child int) Outcome {
	children := c.FlyoutItems()
	if child < 0 || child >= len(children) {
		return Outcome{}
	}
	return c.navigate(children[child].Href)
}

// ClickOutside dismisses a pinned flyout.
func (c *Controller) ClickOutside() {
	if !c.state.Pinned {
		return
	}
	c.closeFlyout()
	if !c.overSidebar && !c.overFlyout {
		c.scheduleCollapse()
	}
}

func (c *Controller) navigate(href string) Outcome {
	c.closeAt.clear()
	c.collapseAt.clear()
	c.closeFlyout()
	c.state.Expanded = false
	c.overFlyout = false
	c.log.Debug("nav navigate", "href", href)
	return Outcome{Href: href}
}

func (c *Controller) openFlyout(idx, offset int) {
	c.state.ActiveFlyout = idx
	c.state.AnchorOffset = offset
}

func (c *Controller) closeFlyout() {
	c.state.ActiveFlyout = NoFlyout
	c.state.Pinned = false
}

func (c *Controller) scheduleClose() {
	c.closeAt.arm(c.clock.Now().Add(c.closeDelay))
}

func (c *Controller) scheduleCollapse() {
	c.collapseAt.arm(c.clock.Now().Add(c.collapseDelay))
}

func (c *Controller) validIndex(idx int) bool {
	return idx >= 0 && idx < len(c.items)
}
