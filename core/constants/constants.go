package constants

import "time"

// HTTP client defaults
const (
	DefaultTimeout        = 10 * time.Second
	DefaultConnectTimeout = 5 * time.Second
	DefaultAPIBaseURL     = "https://api.chinba.app"
	APIPathPrefix         = "/api/v1"
)

// Draft storage
const (
	DraftNamespace  = "chinba-draft"
	DraftFileExt    = ".json"
	ContextFileName = ".context"
	DefaultDraftDir = ".chinba/drafts"
	ContextIDLength = 7
)

// Redis cache keys
const (
	RedisKeyEventDetail = "chinba:event:"
	EventDetailCacheTTL = 2 * time.Minute
)

// Slot bounds
const (
	MinHour = 0
	MaxHour = 24
)

// OAuth
const (
	OAuthStateLength = 32
	OAuthStateTTL    = 10 * time.Minute
)
