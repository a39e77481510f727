package service

import (
	"context"

	coreentity "chinba-client/core/entity"
	"chinba-client/core/errors"
	"chinba-client/modules/schedule/dto"
	"chinba-client/modules/schedule/entity"
	"chinba-client/modules/schedule/repository"

	"github.com/google/uuid"
)

// ScheduleServiceInterface is the entry point for the scheduling feature
type ScheduleServiceInterface interface {
	GetEvent(ctx context.Context, eventID uuid.UUID) (*entity.SchedulingEvent, *errors.AppError)
	ListMyEvents(ctx context.Context, pageNumber, pageSize int) (*coreentity.Pagination[entity.SchedulingEvent], *errors.AppError)
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*entity.SchedulingEvent, *errors.AppError)
	DeleteEvent(ctx context.Context, eventID uuid.UUID) *errors.AppError
	GetHeatmap(ctx context.Context, eventID uuid.UUID) (*entity.Heatmap, *errors.AppError)
	OpenEditSession(ctx context.Context, eventID uuid.UUID) (*EditSession, *errors.AppError)
}

// ScheduleService wires the gateway, the draft store and the optional
// event-detail cache
type ScheduleService struct {
	gateway repository.GatewayInterface
	drafts  repository.DraftStoreInterface
	events  *repository.EventCache
}

// NewScheduleService creates the service; events may be a nil-backed cache
func NewScheduleService(gateway repository.GatewayInterface, drafts repository.DraftStoreInterface, events *repository.EventCache) ScheduleServiceInterface {
	return &ScheduleService{
		gateway: gateway,
		drafts:  drafts,
		events:  events,
	}
}

// GetEvent returns event detail, read through the cache when one is wired
func (s *ScheduleService) GetEvent(ctx context.Context, eventID uuid.UUID) (*entity.SchedulingEvent, *errors.AppError) {
	if cached := s.events.Get(ctx, eventID); cached != nil {
		return cached, nil
	}

	event, appErr := s.gateway.FetchEvent(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}

	s.events.Put(ctx, event)
	return event, nil
}

func (s *ScheduleService) ListMyEvents(ctx context.Context, pageNumber, pageSize int) (*coreentity.Pagination[entity.SchedulingEvent], *errors.AppError) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.gateway.ListMyEvents(ctx, pageNumber, pageSize)
}

func (s *ScheduleService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*entity.SchedulingEvent, *errors.AppError) {
	event, appErr := s.gateway.CreateEvent(ctx, req)
	if appErr != nil {
		return nil, appErr
	}

	s.events.Put(ctx, event)
	return event, nil
}

func (s *ScheduleService) DeleteEvent(ctx context.Context, eventID uuid.UUID) *errors.AppError {
	if appErr := s.gateway.DeleteEvent(ctx, eventID); appErr != nil {
		return appErr
	}

	s.events.Invalidate(ctx, eventID)
	// A draft for a deleted event can never be submitted; drop it too.
	_ = s.drafts.Clear(eventID)
	return nil
}

func (s *ScheduleService) GetHeatmap(ctx context.Context, eventID uuid.UUID) (*entity.Heatmap, *errors.AppError) {
	return s.gateway.FetchHeatmap(ctx, eventID)
}

// OpenEditSession resolves the event and opens an editing session for it.
// The caller drives Load separately so a slow or unauthenticated fetch never
// blocks drafting.
func (s *ScheduleService) OpenEditSession(ctx context.Context, eventID uuid.UUID) (*EditSession, *errors.AppError) {
	event, appErr := s.GetEvent(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	return NewEditSession(event, s.gateway, s.drafts), nil
}
