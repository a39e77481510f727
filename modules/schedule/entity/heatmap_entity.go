package entity

// Heatmap is the backend-computed shared-availability summary. The client
// only renders it; Unavailable holds the per-slot count of participants who
// marked the slot unavailable.
type Heatmap struct {
	TotalParticipants int
	Unavailable       map[Slot]int
}

// UnavailableCount returns how many participants marked the slot unavailable
func (h *Heatmap) UnavailableCount(slot Slot) int {
	return h.Unavailable[slot]
}

// AvailableCount returns how many participants are free in the slot
func (h *Heatmap) AvailableCount(slot Slot) int {
	n := h.TotalParticipants - h.Unavailable[slot]
	if n < 0 {
		return 0
	}
	return n
}
