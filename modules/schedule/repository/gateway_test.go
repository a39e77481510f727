package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chinba-client/core/config"
	"chinba-client/core/errors"
	"chinba-client/modules/schedule/dto"
	"chinba-client/modules/schedule/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens struct {
	token string
}

func (s staticTokens) BearerToken() (string, *errors.AppError) {
	if s.token == "" {
		return "", errors.NewAppError(errors.ErrUnauthorized, "not authenticated", nil)
	}
	return s.token, nil
}

func successEnvelope(data any) map[string]any {
	return map[string]any{
		"status":    http.StatusOK,
		"message":   "Success",
		"data":      data,
		"timestamp": time.Now(),
	}
}

func errorEnvelope(code, message string) map[string]any {
	return map[string]any{
		"status":  "error",
		"code":    code,
		"message": message,
	}
}

func eventPayload(id uuid.UUID) map[string]any {
	return map[string]any{
		"id":         id.String(),
		"title":      "Study group",
		"dates":      []string{"2024-03-04", "2024-03-05"},
		"start_hour": 9,
		"end_hour":   18,
		"status":     "active",
		"creator_id": uuid.New().String(),
		"participants": []map[string]any{
			{"user_id": uuid.New().String(), "nickname": "dana", "has_submitted": true},
		},
		"created_at": time.Now().UTC(),
	}
}

func newGateway(t *testing.T, e *echo.Echo, token string) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	gw := NewGateway(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, staticTokens{token: token})
	return gw, srv
}

func TestNoTokenShortCircuits(t *testing.T) {
	hits := 0
	e := echo.New()
	e.Any("/*", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusOK, successEnvelope(nil))
	})
	gw, _ := newGateway(t, e, "")

	_, appErr := gw.FetchParticipation(context.Background(), uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
	assert.Equal(t, 0, hits, "no request may be attempted without a token")
}

func TestFetchEvent(t *testing.T) {
	eventID := uuid.New()
	var gotAuth string

	e := echo.New()
	e.GET("/api/v1/chinba/events/:id", func(c echo.Context) error {
		gotAuth = c.Request().Header.Get(echo.HeaderAuthorization)
		require.Equal(t, eventID.String(), c.Param("id"))
		return c.JSON(http.StatusOK, successEnvelope(eventPayload(eventID)))
	})
	gw, _ := newGateway(t, e, "token-123")

	event, appErr := gw.FetchEvent(context.Background(), eventID)
	require.Nil(t, appErr)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, eventID, event.ID)
	assert.Equal(t, 9, event.StartHour)
	assert.Equal(t, 18, event.EndHour)
	assert.Equal(t, entity.EventStatusActive, event.Status)
	require.Len(t, event.Participants, 1)
	assert.True(t, event.Participants[0].HasSubmitted)
}

func TestFetchEventSchemaMismatchIsNetworkError(t *testing.T) {
	eventID := uuid.New()
	payload := eventPayload(eventID)
	payload["status"] = "banana"

	e := echo.New()
	e.GET("/api/v1/chinba/events/:id", func(c echo.Context) error {
		return c.JSON(http.StatusOK, successEnvelope(payload))
	})
	gw, _ := newGateway(t, e, "token-123")

	_, appErr := gw.FetchEvent(context.Background(), eventID)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNetwork, appErr.Code)
}

func TestFetchParticipationErrors(t *testing.T) {
	e := echo.New()
	e.GET("/api/v1/chinba/events/:id/participation", func(c echo.Context) error {
		switch c.Param("id") {
		case "00000000-0000-0000-0000-000000000001":
			return c.JSON(http.StatusUnauthorized, errorEnvelope("UNAUTHORIZED", "token rejected"))
		default:
			return c.JSON(http.StatusNotFound, errorEnvelope("NOT_FOUND", "event not found"))
		}
	})
	gw, _ := newGateway(t, e, "token-123")

	_, appErr := gw.FetchParticipation(context.Background(), uuid.MustParse("00000000-0000-0000-0000-000000000001"))
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnauthorized, appErr.Code)

	_, appErr = gw.FetchParticipation(context.Background(), uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestWireCodeWinsOverStatus(t *testing.T) {
	// The body's error code is authoritative; the status line is only a
	// fallback when the backend sends no recognized code
	cases := []struct {
		wireCode string
		want     errors.ErrorCode
	}{
		{"UNAUTHORIZED", errors.ErrUnauthorized},
		{"NOT_FOUND", errors.ErrNotFound},
	}
	for _, tc := range cases {
		e := echo.New()
		e.GET("/api/v1/chinba/events/:id/participation", func(c echo.Context) error {
			return c.JSON(http.StatusBadRequest, errorEnvelope(tc.wireCode, "mismatched status line"))
		})
		gw, _ := newGateway(t, e, "token-123")

		_, appErr := gw.FetchParticipation(context.Background(), uuid.New())
		require.NotNil(t, appErr, "code %s", tc.wireCode)
		assert.Equal(t, tc.want, appErr.Code, "code %s", tc.wireCode)
	}
}

func TestFetchParticipation(t *testing.T) {
	eventID := uuid.New()

	e := echo.New()
	e.GET("/api/v1/chinba/events/:id/participation", func(c echo.Context) error {
		return c.JSON(http.StatusOK, successEnvelope(map[string]any{
			"has_submitted":     true,
			"unavailable_slots": []string{"2024-03-04T09", "2024-03-05T17"},
		}))
	})
	gw, _ := newGateway(t, e, "token-123")

	participation, appErr := gw.FetchParticipation(context.Background(), eventID)
	require.Nil(t, appErr)
	assert.True(t, participation.HasSubmitted)
	assert.Equal(t, []string{"2024-03-04T09", "2024-03-05T17"}, participation.UnavailableSlots.SortedKeys())
}

func TestSubmitUnavailabilityBody(t *testing.T) {
	eventID := uuid.New()
	var body dto.SubmitUnavailabilityRequest

	e := echo.New()
	e.PUT("/api/v1/chinba/events/:id/unavailability", func(c echo.Context) error {
		require.NoError(t, c.Bind(&body))
		return c.JSON(http.StatusOK, successEnvelope(nil))
	})
	gw, _ := newGateway(t, e, "token-123")

	set, _ := entity.ParseSlotKeys([]string{"2024-03-05T10", "2024-03-04T09"})
	require.Nil(t, gw.SubmitUnavailability(context.Background(), eventID, set))
	assert.Equal(t, []string{"2024-03-04T09", "2024-03-05T10"}, body.UnavailableSlots)

	// Full-replace semantics: an empty set goes on the wire as an empty
	// list, meaning "fully available"
	require.Nil(t, gw.SubmitUnavailability(context.Background(), eventID, entity.NewSlotSet()))
	assert.NotNil(t, body.UnavailableSlots)
	assert.Len(t, body.UnavailableSlots, 0)
}

func TestSubmitValidationRejection(t *testing.T) {
	e := echo.New()
	e.PUT("/api/v1/chinba/events/:id/unavailability", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, errorEnvelope("INVALID_SLOTS", "slots outside the event range"))
	})
	gw, _ := newGateway(t, e, "token-123")

	set, _ := entity.ParseSlotKeys([]string{"2024-03-04T23"})
	appErr := gw.SubmitUnavailability(context.Background(), uuid.New(), set)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
}

func TestImportFromStoredTimetable(t *testing.T) {
	e := echo.New()
	e.POST("/api/v1/chinba/events/:id/import-timetable", func(c echo.Context) error {
		return c.JSON(http.StatusOK, successEnvelope(map[string]any{
			"unavailable_slots": []string{"2024-03-04T09", "2024-03-04T10"},
		}))
	})
	gw, _ := newGateway(t, e, "token-123")

	set, appErr := gw.ImportFromStoredTimetable(context.Background(), uuid.New())
	require.Nil(t, appErr)
	assert.Equal(t, []string{"2024-03-04T09", "2024-03-04T10"}, set.SortedKeys())
}

func TestImportTimetableCausesCollapse(t *testing.T) {
	// Both documented backend causes map to the same client-facing
	// category so the UI shows one register-a-timetable prompt.
	for _, wireCode := range []string{"TIMETABLE_NOT_REGISTERED", "TIMETABLE_EMPTY"} {
		e := echo.New()
		e.POST("/api/v1/chinba/events/:id/import-timetable", func(c echo.Context) error {
			return c.JSON(http.StatusBadRequest, errorEnvelope(wireCode, "nothing to import"))
		})
		gw, _ := newGateway(t, e, "token-123")

		_, appErr := gw.ImportFromStoredTimetable(context.Background(), uuid.New())
		require.NotNil(t, appErr, "code %s", wireCode)
		assert.Equal(t, errors.ErrNoTimetable, appErr.Code, "code %s", wireCode)
	}
}

func TestServerFailureIsNetworkError(t *testing.T) {
	e := echo.New()
	e.GET("/api/v1/chinba/events/:id/participation", func(c echo.Context) error {
		return c.String(http.StatusBadGateway, "upstream exploded")
	})
	gw, _ := newGateway(t, e, "token-123")

	_, appErr := gw.FetchParticipation(context.Background(), uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNetwork, appErr.Code)
}

func TestListMyEvents(t *testing.T) {
	first, second := uuid.New(), uuid.New()

	e := echo.New()
	e.GET("/api/v1/chinba/events", func(c echo.Context) error {
		assert.Equal(t, "2", c.QueryParam("page_number"))
		assert.Equal(t, "10", c.QueryParam("page_size"))
		return c.JSON(http.StatusOK, successEnvelope(map[string]any{
			"items":       []map[string]any{eventPayload(first), eventPayload(second)},
			"total_items": 12,
			"page_number": 2,
			"page_size":   10,
		}))
	})
	gw, _ := newGateway(t, e, "token-123")

	page, appErr := gw.ListMyEvents(context.Background(), 2, 10)
	require.Nil(t, appErr)
	assert.Equal(t, 12, page.TotalItems)
	require.Len(t, page.Items, 2)
	assert.Equal(t, first, page.Items[0].ID)
	assert.Equal(t, second, page.Items[1].ID)
}

func TestCreateEvent(t *testing.T) {
	created := uuid.New()
	var body dto.CreateEventRequest

	e := echo.New()
	e.POST("/api/v1/chinba/events", func(c echo.Context) error {
		require.NoError(t, c.Bind(&body))
		return c.JSON(http.StatusOK, successEnvelope(eventPayload(created)))
	})
	gw, _ := newGateway(t, e, "token-123")

	req := &dto.CreateEventRequest{
		Title:     "Study group",
		Dates:     []string{"2024-03-04", "2024-03-05"},
		StartHour: 9,
		EndHour:   18,
	}
	event, appErr := gw.CreateEvent(context.Background(), req)
	require.Nil(t, appErr)
	assert.Equal(t, created, event.ID)
	assert.Equal(t, "Study group", body.Title)

	// Local validation rejects a bad request before it goes on the wire
	_, appErr = gw.CreateEvent(context.Background(), &dto.CreateEventRequest{Title: "x", Dates: []string{"2024-03-04"}, StartHour: 10, EndHour: 10})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
}

func TestFetchHeatmap(t *testing.T) {
	e := echo.New()
	e.GET("/api/v1/chinba/events/:id/heatmap", func(c echo.Context) error {
		return c.JSON(http.StatusOK, successEnvelope(map[string]any{
			"total_participants": 5,
			"cells": []map[string]any{
				{"slot": "2024-03-04T09", "unavailable_count": 3},
				{"slot": "2024-03-04T10", "unavailable_count": 0},
			},
		}))
	})
	gw, _ := newGateway(t, e, "token-123")

	heatmap, appErr := gw.FetchHeatmap(context.Background(), uuid.New())
	require.Nil(t, appErr)
	assert.Equal(t, 5, heatmap.TotalParticipants)

	slot, _ := entity.ParseSlot("2024-03-04T09")
	assert.Equal(t, 3, heatmap.UnavailableCount(slot))
	assert.Equal(t, 2, heatmap.AvailableCount(slot))

	free, _ := entity.ParseSlot("2024-03-04T10")
	assert.Equal(t, 5, heatmap.AvailableCount(free))
}

func TestDeleteEvent(t *testing.T) {
	eventID := uuid.New()
	deleted := false

	e := echo.New()
	e.DELETE("/api/v1/chinba/events/:id", func(c echo.Context) error {
		deleted = c.Param("id") == eventID.String()
		return c.JSON(http.StatusOK, successEnvelope(nil))
	})
	gw, _ := newGateway(t, e, "token-123")

	require.Nil(t, gw.DeleteEvent(context.Background(), eventID))
	assert.True(t, deleted)
}

func TestBadEnvelopeIsNetworkError(t *testing.T) {
	e := echo.New()
	e.GET("/api/v1/chinba/events/:id/participation", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"totally": "different"})
	})
	gw, _ := newGateway(t, e, "token-123")

	_, appErr := gw.FetchParticipation(context.Background(), uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNetwork, appErr.Code)
}
