package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chinba-client/core/config"
	"chinba-client/core/constants"
	coreentity "chinba-client/core/entity"
	"chinba-client/core/errors"
	"chinba-client/core/logger"
	"chinba-client/modules/schedule/dto"
	"chinba-client/modules/schedule/entity"

	"github.com/google/uuid"
)

// TokenSource supplies the in-memory bearer token. "No token" must be
// reported before any call is attempted.
type TokenSource interface {
	BearerToken() (string, *errors.AppError)
}

// GatewayInterface is the client-side boundary to the scheduling backend.
// No call retries automatically; every failure surfaces to the caller.
type GatewayInterface interface {
	FetchEvent(ctx context.Context, eventID uuid.UUID) (*entity.SchedulingEvent, *errors.AppError)
	ListMyEvents(ctx context.Context, pageNumber, pageSize int) (*coreentity.Pagination[entity.SchedulingEvent], *errors.AppError)
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*entity.SchedulingEvent, *errors.AppError)
	DeleteEvent(ctx context.Context, eventID uuid.UUID) *errors.AppError
	FetchParticipation(ctx context.Context, eventID uuid.UUID) (*entity.Participation, *errors.AppError)
	SubmitUnavailability(ctx context.Context, eventID uuid.UUID, set *entity.SlotSet) *errors.AppError
	ImportFromStoredTimetable(ctx context.Context, eventID uuid.UUID) (*entity.SlotSet, *errors.AppError)
	FetchHeatmap(ctx context.Context, eventID uuid.UUID) (*entity.Heatmap, *errors.AppError)
}

// Gateway talks JSON over HTTPS to the backend, bearer-token authenticated
type Gateway struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewGateway creates the backend client
func NewGateway(cfg config.APIConfig, tokens TokenSource) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}

	return &Gateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		tokens:  tokens,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   constants.DefaultConnectTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: constants.DefaultConnectTimeout,
			},
		},
	}
}

// ===================== Event operations =====================

func (g *Gateway) FetchEvent(ctx context.Context, eventID uuid.UUID) (*entity.SchedulingEvent, *errors.AppError) {
	var resp dto.EventResponse
	if appErr := g.call(ctx, http.MethodGet, g.eventPath(eventID, ""), nil, &resp); appErr != nil {
		return nil, appErr
	}

	event, err := dto.ToEvent(&resp)
	if err != nil {
		logger.Error("Gateway:FetchEvent:SchemaMismatch", "error", err, "event_id", eventID.String())
		return nil, errors.NewAppError(errors.ErrNetwork, "unexpected event payload", err)
	}
	return event, nil
}

func (g *Gateway) ListMyEvents(ctx context.Context, pageNumber, pageSize int) (*coreentity.Pagination[entity.SchedulingEvent], *errors.AppError) {
	query := url.Values{}
	query.Set("page_number", strconv.Itoa(pageNumber))
	query.Set("page_size", strconv.Itoa(pageSize))

	var resp dto.PaginatedEventResponse
	if appErr := g.call(ctx, http.MethodGet, g.eventsPath()+"?"+query.Encode(), nil, &resp); appErr != nil {
		return nil, appErr
	}

	page, err := dto.ToEventPage(&resp)
	if err != nil {
		logger.Error("Gateway:ListMyEvents:SchemaMismatch", "error", err)
		return nil, errors.NewAppError(errors.ErrNetwork, "unexpected event list payload", err)
	}
	return page, nil
}

func (g *Gateway) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*entity.SchedulingEvent, *errors.AppError) {
	if err := req.Validate(); err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, err.Error(), nil)
	}

	var resp dto.EventResponse
	if appErr := g.call(ctx, http.MethodPost, g.eventsPath(), req, &resp); appErr != nil {
		return nil, appErr
	}

	event, err := dto.ToEvent(&resp)
	if err != nil {
		logger.Error("Gateway:CreateEvent:SchemaMismatch", "error", err)
		return nil, errors.NewAppError(errors.ErrNetwork, "unexpected event payload", err)
	}
	return event, nil
}

func (g *Gateway) DeleteEvent(ctx context.Context, eventID uuid.UUID) *errors.AppError {
	return g.call(ctx, http.MethodDelete, g.eventPath(eventID, ""), nil, nil)
}

// ===================== Participation operations =====================

func (g *Gateway) FetchParticipation(ctx context.Context, eventID uuid.UUID) (*entity.Participation, *errors.AppError) {
	var resp dto.ParticipationResponse
	if appErr := g.call(ctx, http.MethodGet, g.eventPath(eventID, "participation"), nil, &resp); appErr != nil {
		return nil, appErr
	}

	participation, err := dto.ToParticipation(eventID, &resp)
	if err != nil {
		logger.Error("Gateway:FetchParticipation:SchemaMismatch", "error", err, "event_id", eventID.String())
		return nil, errors.NewAppError(errors.ErrNetwork, "unexpected participation payload", err)
	}
	return participation, nil
}

func (g *Gateway) SubmitUnavailability(ctx context.Context, eventID uuid.UUID, set *entity.SlotSet) *errors.AppError {
	return g.call(ctx, http.MethodPut, g.eventPath(eventID, "unavailability"), dto.NewSubmitRequest(set), nil)
}

func (g *Gateway) ImportFromStoredTimetable(ctx context.Context, eventID uuid.UUID) (*entity.SlotSet, *errors.AppError) {
	var resp dto.ImportTimetableResponse
	if appErr := g.call(ctx, http.MethodPost, g.eventPath(eventID, "import-timetable"), nil, &resp); appErr != nil {
		return nil, appErr
	}

	set, appErr := entity.ParseSlotKeys(resp.UnavailableSlots)
	if appErr != nil {
		logger.Error("Gateway:ImportFromStoredTimetable:SchemaMismatch", "error", appErr, "event_id", eventID.String())
		return nil, errors.NewAppError(errors.ErrNetwork, "unexpected import payload", appErr)
	}
	return set, nil
}

func (g *Gateway) FetchHeatmap(ctx context.Context, eventID uuid.UUID) (*entity.Heatmap, *errors.AppError) {
	var resp dto.HeatmapResponse
	if appErr := g.call(ctx, http.MethodGet, g.eventPath(eventID, "heatmap"), nil, &resp); appErr != nil {
		return nil, appErr
	}

	heatmap, err := dto.ToHeatmap(&resp)
	if err != nil {
		logger.Error("Gateway:FetchHeatmap:SchemaMismatch", "error", err, "event_id", eventID.String())
		return nil, errors.NewAppError(errors.ErrNetwork, "unexpected heatmap payload", err)
	}
	return heatmap, nil
}

// ===================== Transport =====================

func (g *Gateway) eventsPath() string {
	return constants.APIPathPrefix + "/chinba/events"
}

func (g *Gateway) eventPath(eventID uuid.UUID, suffix string) string {
	path := g.eventsPath() + "/" + eventID.String()
	if suffix != "" {
		path += "/" + suffix
	}
	return path
}

// call performs one request and decodes the success envelope's data field
// into out (out may be nil for calls without a payload)
func (g *Gateway) call(ctx context.Context, method, path string, body any, out any) *errors.AppError {
	token, appErr := g.tokens.BearerToken()
	if appErr != nil {
		return appErr
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.NewAppError(errors.ErrInternalServer, "failed to encode request", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		logger.Error("Gateway:call:Transport", "error", err, "method", method, "path", path)
		return errors.NewAppError(errors.ErrNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Gateway:call:ReadBody", "error", err, "method", method, "path", path)
		return errors.NewAppError(errors.ErrNetwork, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return g.mapError(resp.StatusCode, raw, method, path)
	}

	if out == nil {
		return nil
	}

	var envelope dto.SuccessEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Data == nil {
		logger.Error("Gateway:call:BadEnvelope", "method", method, "path", path, "status", resp.StatusCode)
		return errors.NewAppError(errors.ErrNetwork, "unexpected response envelope", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		logger.Error("Gateway:call:BadPayload", "error", err, "method", method, "path", path)
		return errors.NewAppError(errors.ErrNetwork, "unexpected response payload", err)
	}

	return nil
}

// mapError translates backend failures into the client taxonomy. The two
// documented timetable causes collapse into one category for the caller.
func (g *Gateway) mapError(status int, raw []byte, method, path string) *errors.AppError {
	var envelope dto.ErrorEnvelope
	_ = json.Unmarshal(raw, &envelope)

	logger.Warn("Gateway:call:APIError",
		"method", method,
		"path", path,
		"status", status,
		"code", envelope.Code,
	)

	switch envelope.Code {
	case dto.WireCodeNoTimetable, dto.WireCodeEmptyTimetable:
		return errors.NewAppError(errors.ErrNoTimetable, "no timetable to import", nil)
	case dto.WireCodeInvalidSlots:
		return errors.NewAppError(errors.ErrInvalidInput, messageOr(envelope, "slots outside the event range"), nil)
	case dto.WireCodeUnauthorized:
		return errors.NewAppError(errors.ErrUnauthorized, messageOr(envelope, "not authenticated"), nil)
	case dto.WireCodeNotFound:
		return errors.NewAppError(errors.ErrNotFound, messageOr(envelope, "event not found"), nil)
	}

	// no recognized code in the body; fall back to the status line
	switch status {
	case http.StatusUnauthorized:
		return errors.NewAppError(errors.ErrUnauthorized, messageOr(envelope, "not authenticated"), nil)
	case http.StatusNotFound:
		return errors.NewAppError(errors.ErrNotFound, messageOr(envelope, "event not found"), nil)
	case http.StatusBadRequest:
		return errors.NewAppError(errors.ErrInvalidInput, messageOr(envelope, "invalid request"), nil)
	default:
		return errors.NewAppError(errors.ErrNetwork, fmt.Sprintf("backend error: %d", status), nil)
	}
}

func messageOr(envelope dto.ErrorEnvelope, fallback string) string {
	if envelope.Message != "" {
		return envelope.Message
	}
	return fallback
}
