package entity

import (
	"fmt"
	"sort"
	"time"

	"chinba-client/core/constants"
	"chinba-client/core/errors"
)

// SlotKeyLayout is the canonical slot key format: ISO date plus zero-padded
// hour. Lexicographic order over keys equals chronological order.
const SlotKeyLayout = "2006-01-02T15"

// Slot is one discrete (date, hour) schedulable unit. Slots are immutable
// value types; equality is by (Date, Hour).
type Slot struct {
	Date string // YYYY-MM-DD
	Hour int    // 0..23, the hour the slot starts at
}

// NewSlot builds a slot from a date string and an hour, validating both
func NewSlot(date string, hour int) (Slot, *errors.AppError) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Slot{}, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("invalid slot date %q", date), err)
	}
	if hour < constants.MinHour || hour >= constants.MaxHour {
		return Slot{}, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("invalid slot hour %d", hour), nil)
	}
	return Slot{Date: date, Hour: hour}, nil
}

// ParseSlot parses a canonical slot key. Only the exact canonical form is
// accepted: time.Parse tolerates a single-digit hour, so the parsed value
// must round-trip back to the input.
func ParseSlot(key string) (Slot, *errors.AppError) {
	t, err := time.Parse(SlotKeyLayout, key)
	if err != nil || t.Format(SlotKeyLayout) != key {
		return Slot{}, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("malformed slot key %q", key), err)
	}
	return Slot{Date: t.Format("2006-01-02"), Hour: t.Hour()}, nil
}

// Key returns the canonical sortable key of the slot
func (s Slot) Key() string {
	return fmt.Sprintf("%sT%02d", s.Date, s.Hour)
}

// Before reports whether s sorts before other (date ascending, then hour)
func (s Slot) Before(other Slot) bool {
	return s.Key() < other.Key()
}

// SlotSet is a set of unique slots a participant has marked unavailable.
// The zero value is not usable; construct with NewSlotSet or ParseSlotKeys.
type SlotSet struct {
	slots map[Slot]struct{}
}

// NewSlotSet creates a set containing the given slots
func NewSlotSet(slots ...Slot) *SlotSet {
	set := &SlotSet{slots: make(map[Slot]struct{}, len(slots))}
	set.AddRange(slots)
	return set
}

// ParseSlotKeys builds a set from canonical keys, rejecting malformed ones
func ParseSlotKeys(keys []string) (*SlotSet, *errors.AppError) {
	set := &SlotSet{slots: make(map[Slot]struct{}, len(keys))}
	for _, key := range keys {
		slot, appErr := ParseSlot(key)
		if appErr != nil {
			return nil, appErr
		}
		set.slots[slot] = struct{}{}
	}
	return set, nil
}

// Len returns the number of slots in the set
func (s *SlotSet) Len() int {
	return len(s.slots)
}

// IsEmpty reports whether the set contains no slots
func (s *SlotSet) IsEmpty() bool {
	return len(s.slots) == 0
}

// Contains reports set membership
func (s *SlotSet) Contains(slot Slot) bool {
	_, ok := s.slots[slot]
	return ok
}

// Toggle inserts the slot if absent and removes it if present
func (s *SlotSet) Toggle(slot Slot) {
	if s.Contains(slot) {
		delete(s.slots, slot)
	} else {
		s.slots[slot] = struct{}{}
	}
}

// Add inserts the slot; re-adding a present slot is a no-op
func (s *SlotSet) Add(slot Slot) {
	s.slots[slot] = struct{}{}
}

// Remove deletes the slot; removing an absent slot is a no-op
func (s *SlotSet) Remove(slot Slot) {
	delete(s.slots, slot)
}

// AddRange bulk-inserts slots (idempotent)
func (s *SlotSet) AddRange(slots []Slot) {
	for _, slot := range slots {
		s.slots[slot] = struct{}{}
	}
}

// RemoveRange bulk-removes slots (idempotent)
func (s *SlotSet) RemoveRange(slots []Slot) {
	for _, slot := range slots {
		delete(s.slots, slot)
	}
}

// ToSortedArray returns the slots in canonical order: date ascending, then
// hour ascending. This is the serialization order used for persistence.
func (s *SlotSet) ToSortedArray() []Slot {
	out := make([]Slot, 0, len(s.slots))
	for slot := range s.slots {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// SortedKeys returns the canonical keys in serialization order
func (s *SlotSet) SortedKeys() []string {
	sorted := s.ToSortedArray()
	keys := make([]string, len(sorted))
	for i, slot := range sorted {
		keys[i] = slot.Key()
	}
	return keys
}

// Clone returns an independent copy of the set
func (s *SlotSet) Clone() *SlotSet {
	clone := &SlotSet{slots: make(map[Slot]struct{}, len(s.slots))}
	for slot := range s.slots {
		clone.slots[slot] = struct{}{}
	}
	return clone
}

// Equal reports whether both sets contain exactly the same slots
func (s *SlotSet) Equal(other *SlotSet) bool {
	if other == nil || len(s.slots) != len(other.slots) {
		return false
	}
	for slot := range s.slots {
		if !other.Contains(slot) {
			return false
		}
	}
	return true
}
