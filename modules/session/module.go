package session

import (
	"chinba-client/core/config"
	"chinba-client/modules/session/service"
)

// Init constructs the session object from the configured OAuth providers
func Init(cfg *config.Config) service.SessionServiceInterface {
	return service.NewSessionService(cfg.OAuth)
}
