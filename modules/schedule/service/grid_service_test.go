package service

import (
	"testing"
	"time"

	"chinba-client/modules/schedule/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() *entity.SchedulingEvent {
	return &entity.SchedulingEvent{
		ID:        uuid.New(),
		Title:     "Study group",
		Dates:     []string{"2024-03-04", "2024-03-05"},
		StartHour: 9,
		EndHour:   18, // exclusive: selectable hours are 9..17
		Status:    entity.EventStatusActive,
		CreatorID: uuid.New(),
		CreatedAt: time.Now(),
	}
}

func TestDragMarksEndExclusive(t *testing.T) {
	grid := NewGridController(testEvent(), entity.NewSlotSet())

	// Drag covering 09:00-11:00 touches the 09 and 10 cells; the 11:00
	// label is the exclusive end of the 10 cell.
	grid.GestureStart(Cell{Date: "2024-03-04", Hour: 9})
	grid.GestureMove(Cell{Date: "2024-03-04", Hour: 10})
	grid.GestureEnd()

	assert.Equal(t, []string{"2024-03-04T09", "2024-03-04T10"}, grid.Set().SortedKeys())

	// Clicking 09:00 again removes it
	grid.Click(Cell{Date: "2024-03-04", Hour: 9})
	assert.Equal(t, []string{"2024-03-04T10"}, grid.Set().SortedKeys())
}

func TestDragModeFromStartingCell(t *testing.T) {
	seed := entity.NewSlotSet(
		entity.Slot{Date: "2024-03-04", Hour: 9},
		entity.Slot{Date: "2024-03-04", Hour: 10},
	)
	grid := NewGridController(testEvent(), seed)

	// Starting on an unavailable cell puts the whole drag in clear mode,
	// including cells that were never marked.
	grid.GestureStart(Cell{Date: "2024-03-04", Hour: 9})
	grid.GestureMove(Cell{Date: "2024-03-04", Hour: 11})
	grid.GestureEnd()

	assert.Equal(t, 0, grid.Set().Len())
}

func TestUTurnDragTogglesAtMostOnce(t *testing.T) {
	grid := NewGridController(testEvent(), entity.NewSlotSet())

	// Drag down to 13, back up to 10: cells visited twice must reflect the
	// gesture-start snapshot, not toggle per pass.
	grid.GestureStart(Cell{Date: "2024-03-04", Hour: 9})
	grid.GestureMove(Cell{Date: "2024-03-04", Hour: 13})
	grid.GestureMove(Cell{Date: "2024-03-04", Hour: 10})
	grid.GestureEnd()

	assert.Equal(t, []string{"2024-03-04T09", "2024-03-04T10"}, grid.Set().SortedKeys())
}

func TestDragAcrossDates(t *testing.T) {
	grid := NewGridController(testEvent(), entity.NewSlotSet())

	grid.GestureStart(Cell{Date: "2024-03-04", Hour: 16})
	grid.GestureMove(Cell{Date: "2024-03-05", Hour: 17})
	grid.GestureEnd()

	assert.Equal(t, []string{
		"2024-03-04T16", "2024-03-04T17",
		"2024-03-05T16", "2024-03-05T17",
	}, grid.Set().SortedKeys())
}

func TestOutOfBoundsCellsIgnored(t *testing.T) {
	grid := NewGridController(testEvent(), entity.NewSlotSet())

	// Start outside the grid: stays idle
	grid.GestureStart(Cell{Date: "2024-03-06", Hour: 9})
	assert.False(t, grid.Dragging())
	grid.GestureEnd()
	assert.Equal(t, 0, grid.Set().Len())

	// Hour 18 is the exclusive end label, hour 8 is below the window
	grid.GestureStart(Cell{Date: "2024-03-04", Hour: 18})
	assert.False(t, grid.Dragging())
	grid.GestureStart(Cell{Date: "2024-03-04", Hour: 8})
	assert.False(t, grid.Dragging())

	// A move out of bounds keeps the region at the last valid cell
	grid.GestureStart(Cell{Date: "2024-03-04", Hour: 17})
	grid.GestureMove(Cell{Date: "2024-03-04", Hour: 18})
	grid.GestureEnd()
	assert.Equal(t, []string{"2024-03-04T17"}, grid.Set().SortedKeys())

	// Clicks outside the grid do nothing
	grid.Click(Cell{Date: "2024-03-04", Hour: 18})
	grid.Click(Cell{Date: "2099-01-01", Hour: 9})
	assert.Equal(t, []string{"2024-03-04T17"}, grid.Set().SortedKeys())
}

func TestGestureEndWithoutStartIsNoOp(t *testing.T) {
	grid := NewGridController(testEvent(), entity.NewSlotSet())

	commits := 0
	grid.OnCommit(func(*entity.SlotSet) { commits++ })

	grid.GestureEnd()
	grid.GestureMove(Cell{Date: "2024-03-04", Hour: 9})
	grid.GestureEnd()

	assert.Equal(t, 0, commits)
	assert.Equal(t, 0, grid.Set().Len())
}

func TestOneCommitPerGesture(t *testing.T) {
	grid := NewGridController(testEvent(), entity.NewSlotSet())

	var commits []*entity.SlotSet
	grid.OnCommit(func(set *entity.SlotSet) { commits = append(commits, set) })

	grid.GestureStart(Cell{Date: "2024-03-04", Hour: 9})
	grid.GestureMove(Cell{Date: "2024-03-04", Hour: 10})
	grid.GestureMove(Cell{Date: "2024-03-04", Hour: 11})
	grid.GestureMove(Cell{Date: "2024-03-04", Hour: 12})
	grid.GestureEnd()

	require.Len(t, commits, 1)
	assert.Equal(t, 4, commits[0].Len())
}

func TestPreviewDoesNotCommitUntilRelease(t *testing.T) {
	grid := NewGridController(testEvent(), entity.NewSlotSet())

	grid.GestureStart(Cell{Date: "2024-03-04", Hour: 9})
	grid.GestureMove(Cell{Date: "2024-03-04", Hour: 11})

	assert.Equal(t, 3, grid.View().Len())
	assert.Equal(t, 0, grid.Set().Len())

	grid.GestureCancel()
	assert.Equal(t, 0, grid.View().Len())
	assert.Equal(t, 0, grid.Set().Len())
}

func TestReplaceRejectsOutOfRangeSlots(t *testing.T) {
	grid := NewGridController(testEvent(), entity.NewSlotSet())

	grid.Replace(entity.NewSlotSet(
		entity.Slot{Date: "2024-03-04", Hour: 9},
		entity.Slot{Date: "2024-03-04", Hour: 20}, // outside hour window
		entity.Slot{Date: "2024-03-07", Hour: 10}, // not a candidate date
	))

	assert.Equal(t, []string{"2024-03-04T09"}, grid.Set().SortedKeys())
}
