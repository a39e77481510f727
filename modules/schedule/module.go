package schedule

import (
	"chinba-client/core/cache"
	"chinba-client/core/config"
	"chinba-client/core/logger"
	"chinba-client/modules/schedule/repository"
	"chinba-client/modules/schedule/service"
)

// Init wires the schedule module: draft store, gateway, optional event cache
func Init(cfg *config.Config, tokens repository.TokenSource) (service.ScheduleServiceInterface, error) {
	drafts, appErr := repository.NewFileDraftStore(cfg.Storage.DraftDir, cfg.Storage.Namespace)
	if appErr != nil {
		return nil, appErr
	}

	gateway := repository.NewGateway(cfg.API, tokens)

	var c cache.ICache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis)
		if err != nil {
			// cache is optional; the module runs uncached
			logger.Warn("ScheduleModule:Init:CacheUnavailable", "error", err)
		} else {
			c = redisCache
		}
	}

	return service.NewScheduleService(gateway, drafts, repository.NewEventCache(c)), nil
}
