package entity

import "time"

// Provider identifies a social login provider
type Provider string

const (
	ProviderKakao  Provider = "kakao"
	ProviderGoogle Provider = "google"
	ProviderNaver  Provider = "naver"
)

// LoginAttempt tracks one outstanding authorization redirect, keyed by its
// state parameter
type LoginAttempt struct {
	Provider  Provider
	State     string
	CreatedAt time.Time
}
