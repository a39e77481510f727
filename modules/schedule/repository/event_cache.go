package repository

import (
	"context"

	"chinba-client/core/cache"
	"chinba-client/core/constants"
	"chinba-client/modules/schedule/entity"

	"github.com/google/uuid"
)

// EventCache is an optional read-through cache for event detail, which is
// read-only reference data. Participation and drafts are never cached here,
// so the draft/server authority rules are unaffected. A nil cache disables
// every method.
type EventCache struct {
	cache cache.ICache
}

func NewEventCache(c cache.ICache) *EventCache {
	return &EventCache{cache: c}
}

func (c *EventCache) Get(ctx context.Context, eventID uuid.UUID) *entity.SchedulingEvent {
	if c == nil || c.cache == nil {
		return nil
	}

	var event entity.SchedulingEvent
	hit, err := c.cache.GetJSON(ctx, c.key(eventID), &event)
	if err != nil || !hit || event.ID != eventID {
		return nil
	}
	return &event
}

func (c *EventCache) Put(ctx context.Context, event *entity.SchedulingEvent) {
	if c == nil || c.cache == nil || event == nil {
		return
	}
	_ = c.cache.SetJSON(ctx, c.key(event.ID), event, constants.EventDetailCacheTTL)
}

func (c *EventCache) Invalidate(ctx context.Context, eventID uuid.UUID) {
	if c == nil || c.cache == nil {
		return
	}
	_ = c.cache.Delete(ctx, c.key(eventID))
}

func (c *EventCache) key(eventID uuid.UUID) string {
	return constants.RedisKeyEventDetail + eventID.String()
}
