package entity

import (
	"time"

	"chinba-client/core/errors"
)

// Draft is the locally persisted, possibly server-unsynced slot set for one
// event. It never expires on its own; it is cleared only by a successful
// Save or Import.
type Draft struct {
	Slots     []string `json:"slots"`
	UpdatedAt int64    `json:"updatedAt"` // epoch millis
}

// NewDraft snapshots the working set into a persistable draft record
func NewDraft(set *SlotSet) Draft {
	return Draft{
		Slots:     set.SortedKeys(),
		UpdatedAt: time.Now().UnixMilli(),
	}
}

// SlotSet rebuilds the draft's slot set, failing on malformed keys
func (d Draft) SlotSet() (*SlotSet, *errors.AppError) {
	return ParseSlotKeys(d.Slots)
}
