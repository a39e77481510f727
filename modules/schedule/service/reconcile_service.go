package service

import (
	"context"

	"chinba-client/core/errors"
	"chinba-client/core/logger"
	"chinba-client/modules/schedule/entity"
	"chinba-client/modules/schedule/repository"
)

// ReconcileState is the per-event reconciliation state between the local
// draft and the server-known slot set
type ReconcileState string

const (
	StateUninitialized ReconcileState = "uninitialized"
	StateServerPending ReconcileState = "server_pending"
	StateServerSynced  ReconcileState = "server_synced"
	StateDraftActive   ReconcileState = "draft_active"
)

// EditSession owns one editing session for one event: the grid controller,
// the reconciliation state and the draft persistence behind it.
//
// A draft, once active, is sticky: it is never displaced by a server fetch
// resolving later, only by an explicit Save or Import. Intended for use from
// a single goroutine (the UI event loop); callers own the pending flag that
// prevents duplicate in-flight submissions.
type EditSession struct {
	event   *entity.SchedulingEvent
	gateway repository.GatewayInterface
	drafts  repository.DraftStoreInterface

	grid        *GridController
	state       ReconcileState
	serverSlots *entity.SlotSet // nil until the first fetch resolves
	closed      bool
}

// NewEditSession opens a session. A stored draft, if present, immediately
// becomes the working set; otherwise the session waits for server state.
func NewEditSession(event *entity.SchedulingEvent, gateway repository.GatewayInterface, drafts repository.DraftStoreInterface) *EditSession {
	s := &EditSession{
		event:   event,
		gateway: gateway,
		drafts:  drafts,
		state:   StateUninitialized,
	}

	if set, ok := drafts.Load(event.ID); ok {
		s.grid = NewGridController(event, set)
		s.state = StateDraftActive
		logger.Info("EditSession:DraftRestored", "event_id", event.ID.String(), "slots", set.Len())
	} else {
		s.grid = NewGridController(event, entity.NewSlotSet())
		s.state = StateServerPending
	}

	s.grid.OnCommit(s.onMutation)
	return s
}

// Grid exposes the gesture controller bound to this session
func (s *EditSession) Grid() *GridController {
	return s.grid
}

// State returns the current reconciliation state
func (s *EditSession) State() ReconcileState {
	return s.state
}

// WorkingSet returns the set the grid currently shows as committed
func (s *EditSession) WorkingSet() *entity.SlotSet {
	return s.grid.Set()
}

// ServerSlots returns the last fetched server set, or nil if none resolved
func (s *EditSession) ServerSlots() *entity.SlotSet {
	if s.serverSlots == nil {
		return nil
	}
	return s.serverSlots.Clone()
}

// Load fetches the server participation. If a draft is active it stays
// authoritative regardless of what the fetch returns; only a pending session
// adopts the server set. A NotAuthenticated failure leaves server state
// permanently unknown, which is fine: drafting works logged out.
func (s *EditSession) Load(ctx context.Context) *errors.AppError {
	participation, appErr := s.gateway.FetchParticipation(ctx, s.event.ID)
	if s.closed {
		// The session was closed while the request was in flight; the
		// result is dropped without touching state or the draft store.
		return nil
	}
	if appErr != nil {
		return appErr
	}

	s.serverSlots = participation.UnavailableSlots.Clone()
	if s.state == StateServerPending {
		s.grid.Replace(s.serverSlots)
		s.state = StateServerSynced
	}
	return nil
}

// Save submits the working set wholesale. On success the draft is cleared
// and the server becomes authoritative again; on failure the draft stays so
// no edits are lost.
func (s *EditSession) Save(ctx context.Context) *errors.AppError {
	if !s.event.IsActive() {
		return errors.NewAppError(errors.ErrInvalidInput, "event no longer accepts submissions", nil)
	}

	// Snapshot synchronously: a Save started after a Reset observes the
	// Reset's empty set.
	working := s.grid.Set()
	if appErr := s.event.ValidateSet(working); appErr != nil {
		return appErr
	}

	if appErr := s.gateway.SubmitUnavailability(ctx, s.event.ID, working); appErr != nil {
		return appErr
	}
	if s.closed {
		return nil
	}

	if clearErr := s.drafts.Clear(s.event.ID); clearErr != nil {
		logger.Warn("EditSession:Save:ClearDraft", "error", clearErr, "event_id", s.event.ID.String())
	}
	s.serverSlots = working.Clone()
	s.state = StateServerSynced
	return nil
}

// Import asks the backend to derive unavailable slots from the caller's
// stored timetable and adopts the result wholesale. A NoTimetableFound
// failure is returned as-is so the caller can show the dedicated
// register-a-timetable prompt; working set and draft are untouched on any
// failure.
func (s *EditSession) Import(ctx context.Context) *errors.AppError {
	if !s.event.IsActive() {
		return errors.NewAppError(errors.ErrInvalidInput, "event no longer accepts submissions", nil)
	}

	derived, appErr := s.gateway.ImportFromStoredTimetable(ctx, s.event.ID)
	if appErr != nil {
		return appErr
	}
	if s.closed {
		return nil
	}

	s.grid.Replace(derived)
	if clearErr := s.drafts.Clear(s.event.ID); clearErr != nil {
		logger.Warn("EditSession:Import:ClearDraft", "error", clearErr, "event_id", s.event.ID.String())
	}
	s.serverSlots = derived.Clone()
	s.state = StateServerSynced
	return nil
}

// Reset empties the working set. Emptying is itself a draftable action: the
// empty set is persisted as the draft, so a reload shows an empty grid
// rather than the pre-reset server state.
func (s *EditSession) Reset() {
	if s.closed {
		return
	}
	s.grid.Replace(entity.NewSlotSet())
	s.onMutation(s.grid.Set())
}

// Close marks the session unmounted. Results of in-flight requests arriving
// afterwards are ignored instead of corrupting state.
func (s *EditSession) Close() {
	s.closed = true
}

func (s *EditSession) onMutation(set *entity.SlotSet) {
	if s.closed {
		return
	}
	s.state = StateDraftActive
	if appErr := s.drafts.Save(s.event.ID, set); appErr != nil {
		// The in-memory working set is still correct; only durability of
		// the draft suffered.
		logger.Warn("EditSession:onMutation:PersistDraft", "error", appErr, "event_id", s.event.ID.String())
	}
}
