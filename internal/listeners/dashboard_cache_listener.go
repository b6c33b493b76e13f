package listeners

import (
	"context"

	"go.uber.org/zap"

	"semapa/internal/events"
	"semapa/internal/repositories"
	"semapa/pkg/constants"
	"semapa/pkg/eventbus"
)

// DashboardCacheListener drops the cached dashboard whenever counted data changes.
type DashboardCacheListener struct {
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
}

func NewDashboardCacheListener(cacheRepo repositories.CacheRepositoryInterface, logger *zap.Logger) *DashboardCacheListener {
	return &DashboardCacheListener{cacheRepo: cacheRepo, logger: logger}
}

func (l *DashboardCacheListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.StatusChangedEventName, l.Handle)
	bus.Subscribe(events.RecordChangedEventName, l.Handle)
}

func (l *DashboardCacheListener) Handle(ctx context.Context, event eventbus.Event) error {
	if err := l.cacheRepo.Del(ctx, constants.CacheKeyDashboardStats); err != nil {
		return err
	}
	l.logger.Debug("Cache do painel invalidado", zap.String("event", event.Name()))
	return nil
}
