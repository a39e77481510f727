package app

import (
	"chinba-client/core/config"
	"chinba-client/modules/schedule"
	schedulesvc "chinba-client/modules/schedule/service"
	"chinba-client/modules/session"
	sessionsvc "chinba-client/modules/session/service"
)

// App assembles the client: one session object and the scheduling feature
// built on top of it. Embedders create it once at bootstrap.
type App struct {
	Config   *config.Config
	Session  sessionsvc.SessionServiceInterface
	Schedule schedulesvc.ScheduleServiceInterface
}

// New loads configuration and wires the modules
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	sessionSvc := session.Init(cfg)

	scheduleSvc, err := schedule.Init(cfg, sessionSvc)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Session:  sessionSvc,
		Schedule: scheduleSvc,
	}, nil
}
