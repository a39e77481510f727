package entity

import (
	"fmt"
	"time"

	"chinba-client/core/errors"

	"github.com/google/uuid"
)

// EventStatus represents the lifecycle status of a scheduling event
type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
	EventStatusExpired   EventStatus = "expired"
)

// SchedulingEvent is the backend-owned group scheduling event. The client
// treats it as read-only reference data and mutates it only through explicit
// API calls.
type SchedulingEvent struct {
	ID           uuid.UUID
	Title        string
	Dates        []string // ordered candidate dates, YYYY-MM-DD
	StartHour    int      // first selectable hour
	EndHour      int      // exclusive: hours StartHour..EndHour-1 are selectable
	Status       EventStatus
	CreatorID    uuid.UUID
	Participants []Participant
	CreatedAt    time.Time
}

// Participant is one member of the event roster
type Participant struct {
	UserID       uuid.UUID
	Nickname     string
	HasSubmitted bool
}

// IsActive reports whether the event still accepts submissions
func (e *SchedulingEvent) IsActive() bool {
	return e.Status == EventStatusActive
}

// DateIndex returns the position of date in the candidate list, or -1
func (e *SchedulingEvent) DateIndex(date string) int {
	for i, d := range e.Dates {
		if d == date {
			return i
		}
	}
	return -1
}

// InRange reports whether the slot falls within the event's configured
// candidate dates and [StartHour, EndHour) window
func (e *SchedulingEvent) InRange(slot Slot) bool {
	if slot.Hour < e.StartHour || slot.Hour >= e.EndHour {
		return false
	}
	return e.DateIndex(slot.Date) >= 0
}

// ValidateSet rejects sets containing slots outside the event's range.
// The grid already filters these; this is the pre-submission check.
func (e *SchedulingEvent) ValidateSet(set *SlotSet) *errors.AppError {
	for _, slot := range set.ToSortedArray() {
		if !e.InRange(slot) {
			return errors.NewAppError(errors.ErrInvalidInput,
				fmt.Sprintf("slot %s is outside the event range", slot.Key()), nil)
		}
	}
	return nil
}

// Participation is the per-(event, user) submission record. The client only
// reads it and replaces it wholesale; there are no partial updates.
type Participation struct {
	EventID          uuid.UUID
	HasSubmitted     bool
	UnavailableSlots *SlotSet
}
