package dto

import (
	"encoding/json"
	"fmt"
	"time"

	coreentity "chinba-client/core/entity"
	"chinba-client/modules/schedule/entity"

	"github.com/google/uuid"
)

// ===================== Wire envelopes =====================

// SuccessEnvelope is the backend's standard success wrapper
type SuccessEnvelope struct {
	Status    int             `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ErrorEnvelope is the backend's standard error wrapper
type ErrorEnvelope struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Backend error codes the client maps onto its own taxonomy
const (
	WireCodeUnauthorized   = "UNAUTHORIZED"
	WireCodeNotFound       = "NOT_FOUND"
	WireCodeInvalidSlots   = "INVALID_SLOTS"
	WireCodeNoTimetable    = "TIMETABLE_NOT_REGISTERED"
	WireCodeEmptyTimetable = "TIMETABLE_EMPTY"
)

// ===================== Request DTOs =====================

// CreateEventRequest creates a new scheduling event
type CreateEventRequest struct {
	Title     string   `json:"title" validate:"required"`
	Dates     []string `json:"dates" validate:"required,min=1"`
	StartHour int      `json:"start_hour" validate:"min=0,max=23"`
	EndHour   int      `json:"end_hour" validate:"min=1,max=24"`
}

// Validate checks the request before it goes on the wire
func (r *CreateEventRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(r.Dates) == 0 {
		return fmt.Errorf("at least one candidate date is required")
	}
	for _, d := range r.Dates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid candidate date %q", d)
		}
	}
	if r.StartHour < 0 || r.EndHour > 24 || r.StartHour >= r.EndHour {
		return fmt.Errorf("invalid hour range [%d,%d)", r.StartHour, r.EndHour)
	}
	return nil
}

// SubmitUnavailabilityRequest replaces the participant's slot set wholesale.
// An empty slot list means "fully available".
type SubmitUnavailabilityRequest struct {
	UnavailableSlots []string `json:"unavailable_slots"`
}

// ===================== Response DTOs =====================

// EventResponse is the wire shape of an event
type EventResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Dates        []string              `json:"dates"`
	StartHour    int                   `json:"start_hour"`
	EndHour      int                   `json:"end_hour"`
	Status       string                `json:"status"`
	CreatorID    string                `json:"creator_id"`
	Participants []ParticipantResponse `json:"participants,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

// ParticipantResponse is one roster member on the wire
type ParticipantResponse struct {
	UserID       string `json:"user_id"`
	Nickname     string `json:"nickname"`
	HasSubmitted bool   `json:"has_submitted"`
}

// PaginatedEventResponse is a page of events
type PaginatedEventResponse struct {
	Items      []EventResponse `json:"items"`
	TotalItems int             `json:"total_items"`
	PageNumber int             `json:"page_number"`
	PageSize   int             `json:"page_size"`
}

// ParticipationResponse is the caller's submission record on the wire
type ParticipationResponse struct {
	HasSubmitted     bool     `json:"has_submitted"`
	UnavailableSlots []string `json:"unavailable_slots"`
}

// ImportTimetableResponse carries the server-derived slot set
type ImportTimetableResponse struct {
	UnavailableSlots []string `json:"unavailable_slots"`
}

// HeatmapResponse is the backend-computed availability heatmap
type HeatmapResponse struct {
	TotalParticipants int                   `json:"total_participants"`
	Cells             []HeatmapCellResponse `json:"cells"`
}

type HeatmapCellResponse struct {
	Slot             string `json:"slot"`
	UnavailableCount int    `json:"unavailable_count"`
}

// ===================== Mapper Functions =====================

// ToEvent validates and maps the wire event onto the entity. Any schema
// mismatch is returned as a plain error; the gateway maps it to a network
// error since it means the backend contract changed.
func ToEvent(r *EventResponse) (*entity.SchedulingEvent, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", r.ID, err)
	}

	creatorID, err := uuid.Parse(r.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid creator id %q: %w", r.CreatorID, err)
	}

	status := entity.EventStatus(r.Status)
	switch status {
	case entity.EventStatusActive, entity.EventStatusCompleted, entity.EventStatusExpired:
	default:
		return nil, fmt.Errorf("unknown event status %q", r.Status)
	}

	if len(r.Dates) == 0 {
		return nil, fmt.Errorf("event %s has no candidate dates", r.ID)
	}
	for _, d := range r.Dates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, fmt.Errorf("invalid candidate date %q: %w", d, err)
		}
	}
	if r.StartHour < 0 || r.EndHour > 24 || r.StartHour >= r.EndHour {
		return nil, fmt.Errorf("invalid hour range [%d,%d)", r.StartHour, r.EndHour)
	}

	event := &entity.SchedulingEvent{
		ID:        id,
		Title:     r.Title,
		Dates:     r.Dates,
		StartHour: r.StartHour,
		EndHour:   r.EndHour,
		Status:    status,
		CreatorID: creatorID,
		CreatedAt: r.CreatedAt,
	}

	for _, p := range r.Participants {
		userID, err := uuid.Parse(p.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid participant id %q: %w", p.UserID, err)
		}
		event.Participants = append(event.Participants, entity.Participant{
			UserID:       userID,
			Nickname:     p.Nickname,
			HasSubmitted: p.HasSubmitted,
		})
	}

	return event, nil
}

// ToEventPage maps a wire page onto the generic pagination entity
func ToEventPage(r *PaginatedEventResponse) (*coreentity.Pagination[entity.SchedulingEvent], error) {
	page := &coreentity.Pagination[entity.SchedulingEvent]{
		Items:      make([]entity.SchedulingEvent, 0, len(r.Items)),
		TotalItems: r.TotalItems,
		PageNumber: r.PageNumber,
		PageSize:   r.PageSize,
	}
	for i := range r.Items {
		event, err := ToEvent(&r.Items[i])
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, *event)
	}
	return page, nil
}

// ToParticipation maps the wire participation onto the entity
func ToParticipation(eventID uuid.UUID, r *ParticipationResponse) (*entity.Participation, error) {
	set, appErr := entity.ParseSlotKeys(r.UnavailableSlots)
	if appErr != nil {
		return nil, fmt.Errorf("participation has malformed slots: %w", appErr)
	}
	return &entity.Participation{
		EventID:          eventID,
		HasSubmitted:     r.HasSubmitted,
		UnavailableSlots: set,
	}, nil
}

// ToHeatmap maps the wire heatmap onto the entity
func ToHeatmap(r *HeatmapResponse) (*entity.Heatmap, error) {
	heatmap := &entity.Heatmap{
		TotalParticipants: r.TotalParticipants,
		Unavailable:       make(map[entity.Slot]int, len(r.Cells)),
	}
	for _, cell := range r.Cells {
		slot, appErr := entity.ParseSlot(cell.Slot)
		if appErr != nil {
			return nil, fmt.Errorf("heatmap has malformed slot: %w", appErr)
		}
		heatmap.Unavailable[slot] = cell.UnavailableCount
	}
	return heatmap, nil
}

// NewSubmitRequest serializes the working set in canonical order
func NewSubmitRequest(set *entity.SlotSet) *SubmitUnavailabilityRequest {
	return &SubmitUnavailabilityRequest{UnavailableSlots: set.SortedKeys()}
}
