package service

import (
	"chinba-client/core/logger"
	"chinba-client/modules/schedule/entity"
)

// Cell addresses one grid cell: a candidate date and an hour row
type Cell struct {
	Date string
	Hour int
}

// GestureMode is decided by the starting cell of a drag: dragging from an
// available cell marks, dragging from an unavailable cell clears
type GestureMode int

const (
	ModeNone GestureMode = iota
	ModeMark
	ModeClear
)

// GridController turns pointer gestures on the availability grid into slot
// set mutations. A continuous press-move-release becomes exactly one commit;
// a single click becomes a toggle. Cells outside the event's candidate dates
// or hour window are ignored, never an error.
type GridController struct {
	event     *entity.SchedulingEvent
	committed *entity.SlotSet

	// gesture state, valid only while dragging
	dragging bool
	mode     GestureMode
	anchor   Cell
	last     Cell
	snapshot *entity.SlotSet
	preview  *entity.SlotSet

	listeners []func(*entity.SlotSet)
}

// NewGridController creates a controller seeded with the initial working set.
// Out-of-range slots in the seed are rejected, not stored.
func NewGridController(event *entity.SchedulingEvent, initial *entity.SlotSet) *GridController {
	g := &GridController{event: event}
	g.committed = g.filterToRange(initial)
	return g
}

// OnCommit registers a listener invoked once per committed mutation with the
// resulting set
func (g *GridController) OnCommit(fn func(*entity.SlotSet)) {
	g.listeners = append(g.listeners, fn)
}

// Set returns the committed working set (in-gesture previews excluded)
func (g *GridController) Set() *entity.SlotSet {
	return g.committed.Clone()
}

// View returns what the grid should render right now: the live preview
// during a drag, the committed set otherwise
func (g *GridController) View() *entity.SlotSet {
	if g.dragging {
		return g.preview.Clone()
	}
	return g.committed.Clone()
}

// Dragging reports whether a gesture is in progress
func (g *GridController) Dragging() bool {
	return g.dragging
}

// Replace swaps the committed set wholesale without emitting a mutation
// (used when server or imported state becomes authoritative). An in-progress
// gesture is abandoned.
func (g *GridController) Replace(set *entity.SlotSet) {
	g.clearGesture()
	g.committed = g.filterToRange(set)
}

// Click toggles a single cell and commits immediately
func (g *GridController) Click(cell Cell) {
	slot, ok := g.slotFor(cell)
	if !ok {
		return
	}
	g.committed.Toggle(slot)
	g.emit()
}

// GestureStart records the starting cell and decides the gesture mode from a
// snapshot of the committed set. Starting outside the grid leaves the
// controller idle.
func (g *GridController) GestureStart(cell Cell) {
	if g.dragging {
		return
	}
	slot, ok := g.slotFor(cell)
	if !ok {
		return
	}

	g.dragging = true
	g.anchor = cell
	g.last = cell
	g.snapshot = g.committed.Clone()
	if g.snapshot.Contains(slot) {
		g.mode = ModeClear
	} else {
		g.mode = ModeMark
	}
	g.preview = g.applyRegion()
}

// GestureMove extends the affected region from the anchor to the current
// cell (inclusive). The mode is applied against the gesture-start snapshot,
// so re-entering a visited cell within one drag never toggles it back.
func (g *GridController) GestureMove(cell Cell) {
	if !g.dragging {
		return
	}
	if _, ok := g.slotFor(cell); !ok {
		// out-of-bounds move: region stays at the last valid cell
		return
	}
	g.last = cell
	g.preview = g.applyRegion()
}

// GestureEnd commits the accumulated region as one mutation. An end without
// a prior start is a no-op, so abandoned gestures are safe.
func (g *GridController) GestureEnd() {
	if !g.dragging {
		return
	}
	g.committed = g.preview
	g.clearGesture()
	g.emit()
}

// GestureCancel abandons an in-progress drag without committing
func (g *GridController) GestureCancel() {
	g.clearGesture()
}

// applyRegion applies the gesture mode to every in-range cell in the
// rectangle spanned by anchor and last, against the snapshot
func (g *GridController) applyRegion() *entity.SlotSet {
	result := g.snapshot.Clone()

	d1 := g.event.DateIndex(g.anchor.Date)
	d2 := g.event.DateIndex(g.last.Date)
	if d1 > d2 {
		d1, d2 = d2, d1
	}
	h1, h2 := g.anchor.Hour, g.last.Hour
	if h1 > h2 {
		h1, h2 = h2, h1
	}

	for di := d1; di <= d2; di++ {
		for hour := h1; hour <= h2; hour++ {
			slot, ok := g.slotFor(Cell{Date: g.event.Dates[di], Hour: hour})
			if !ok {
				continue
			}
			if g.mode == ModeClear {
				result.Remove(slot)
			} else {
				result.Add(slot)
			}
		}
	}

	return result
}

// slotFor converts a cell to a slot, reporting false for cells outside the
// event's configured dates or hour window
func (g *GridController) slotFor(cell Cell) (entity.Slot, bool) {
	slot, appErr := entity.NewSlot(cell.Date, cell.Hour)
	if appErr != nil {
		return entity.Slot{}, false
	}
	if !g.event.InRange(slot) {
		return entity.Slot{}, false
	}
	return slot, true
}

func (g *GridController) filterToRange(set *entity.SlotSet) *entity.SlotSet {
	if set == nil {
		return entity.NewSlotSet()
	}
	filtered := entity.NewSlotSet()
	for _, slot := range set.ToSortedArray() {
		if g.event.InRange(slot) {
			filtered.Add(slot)
		} else {
			logger.Warn("GridController:filterToRange:Rejected", "slot", slot.Key(), "event_id", g.event.ID.String())
		}
	}
	return filtered
}

func (g *GridController) clearGesture() {
	g.dragging = false
	g.mode = ModeNone
	g.snapshot = nil
	g.preview = nil
}

func (g *GridController) emit() {
	for _, fn := range g.listeners {
		fn(g.committed.Clone())
	}
}
