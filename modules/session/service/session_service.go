package service

import (
	"context"
	"sync"
	"time"

	"chinba-client/core/config"
	"chinba-client/core/constants"
	"chinba-client/core/errors"
	"chinba-client/core/logger"
	"chinba-client/core/utils"
	"chinba-client/modules/session/entity"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// SessionServiceInterface is the explicitly constructed session object:
// created at app bootstrap, cleared on logout, never implicitly reset. The
// bearer token lives in memory only and does not survive a restart.
type SessionServiceInterface interface {
	// BeginLogin starts a social login and returns the provider's
	// authorization URL with a fresh state parameter
	BeginLogin(provider entity.Provider) (string, *errors.AppError)
	// CompleteLogin validates the callback state and exchanges the code
	// for a token, which becomes the session token
	CompleteLogin(ctx context.Context, provider entity.Provider, state, code string) *errors.AppError
	// AdoptToken captures a bearer token delivered out of band (deep-link
	// callback from an external browser)
	AdoptToken(accessToken string) *errors.AppError
	// BearerToken returns the current token, or an unauthorized error when
	// there is none or it has expired; callers must not attempt API calls
	// in that case
	BearerToken() (string, *errors.AppError)
	Authenticated() bool
	// SetOnboardingPending marks that login interrupted an onboarding flow
	// that should resume afterwards
	SetOnboardingPending(pending bool)
	// ResumeOnboarding reports and clears the pending-onboarding flag
	ResumeOnboarding() bool
	Logout()
}

type sessionService struct {
	mu         sync.Mutex
	providers  map[entity.Provider]*oauth2.Config
	attempts   map[string]entity.LoginAttempt
	token      *oauth2.Token
	onboarding bool
}

// NewSessionService builds the session from the configured providers.
// Providers without a client ID are left unregistered.
func NewSessionService(cfg config.OAuthConfig) SessionServiceInterface {
	s := &sessionService{
		providers: make(map[entity.Provider]*oauth2.Config),
		attempts:  make(map[string]entity.LoginAttempt),
	}

	register := func(p entity.Provider, pc config.OAuthProviderConfig) {
		if pc.ClientID == "" {
			return
		}
		s.providers[p] = &oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  pc.RedirectURL,
			Scopes:       pc.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  pc.AuthURL,
				TokenURL: pc.TokenURL,
			},
		}
	}
	register(entity.ProviderKakao, cfg.Kakao)
	register(entity.ProviderGoogle, cfg.Google)
	register(entity.ProviderNaver, cfg.Naver)

	return s
}

func (s *sessionService) BeginLogin(provider entity.Provider) (string, *errors.AppError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oc, ok := s.providers[provider]
	if !ok {
		return "", errors.NewAppError(errors.ErrInvalidInput, "unknown login provider", nil)
	}

	state := utils.GenerateRandomString(constants.OAuthStateLength)
	s.attempts[state] = entity.LoginAttempt{
		Provider:  provider,
		State:     state,
		CreatedAt: time.Now(),
	}

	return oc.AuthCodeURL(state), nil
}

func (s *sessionService) CompleteLogin(ctx context.Context, provider entity.Provider, state, code string) *errors.AppError {
	s.mu.Lock()
	oc, ok := s.providers[provider]
	attempt, found := s.attempts[state]
	delete(s.attempts, state)
	s.mu.Unlock()

	if !ok {
		return errors.NewAppError(errors.ErrInvalidInput, "unknown login provider", nil)
	}
	if !found || attempt.Provider != provider {
		return errors.NewAppError(errors.ErrUnauthorized, "unknown or reused login state", nil)
	}
	if time.Since(attempt.CreatedAt) > constants.OAuthStateTTL {
		return errors.NewAppError(errors.ErrUnauthorized, "login attempt expired, start again", nil)
	}

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		logger.Error("SessionService:CompleteLogin:Exchange", "error", err, "provider", string(provider))
		return errors.NewAppError(errors.ErrNetwork, "token exchange failed", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	logger.Info("SessionService:LoginCompleted", "provider", string(provider))
	return nil
}

func (s *sessionService) AdoptToken(accessToken string) *errors.AppError {
	if accessToken == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "empty token", nil)
	}

	token := &oauth2.Token{AccessToken: accessToken}

	// If the token is a JWT, read its expiry so a dead token is rejected
	// before any call hits the network. The signature is the backend's to
	// verify, not ours.
	if exp := jwtExpiry(accessToken); exp != nil {
		if time.Now().After(*exp) {
			return errors.NewAppError(errors.ErrTokenExpired, "token already expired", nil)
		}
		token.Expiry = *exp
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *sessionService) BearerToken() (string, *errors.AppError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil || s.token.AccessToken == "" {
		return "", errors.NewAppError(errors.ErrUnauthorized, "not authenticated", nil)
	}
	if !s.token.Expiry.IsZero() && time.Now().After(s.token.Expiry) {
		return "", errors.NewAppError(errors.ErrTokenExpired, "session expired, log in again", nil)
	}
	return s.token.AccessToken, nil
}

func (s *sessionService) Authenticated() bool {
	_, appErr := s.BearerToken()
	return appErr == nil
}

func (s *sessionService) SetOnboardingPending(pending bool) {
	s.mu.Lock()
	s.onboarding = pending
	s.mu.Unlock()
}

func (s *sessionService) ResumeOnboarding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.onboarding
	s.onboarding = false
	return pending
}

func (s *sessionService) Logout() {
	s.mu.Lock()
	s.token = nil
	s.onboarding = false
	s.attempts = make(map[string]entity.LoginAttempt)
	s.mu.Unlock()
	logger.Info("SessionService:LoggedOut")
}

// jwtExpiry extracts the exp claim without verifying the signature
func jwtExpiry(raw string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	return &exp.Time
}
