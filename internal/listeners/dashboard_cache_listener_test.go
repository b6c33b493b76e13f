package listeners

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"semapa/internal/entities"
	"semapa/internal/events"
	"semapa/internal/testutil"
	"semapa/pkg/constants"
	"semapa/pkg/eventbus"
)

func TestDashboardCacheListener_DropsSnapshotOnChange(t *testing.T) {
	store := testutil.NewStore()
	cache := store.Registry().Cache
	bus := eventbus.New(zap.NewNop())
	NewDashboardCacheListener(cache, zap.NewNop()).Register(bus)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, constants.CacheKeyDashboardStats, "{}", 0))
	bus.Publish(ctx, events.StatusChangedEvent{History: entities.StatusHistory{
		Entidade:   constants.EntidadeRequerimento,
		EntidadeID: 1,
		StatusNovo: constants.RequerimentoAprovado,
	}})
	bus.Wait()
	_, ok := store.CacheValue(constants.CacheKeyDashboardStats)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, constants.CacheKeyDashboardStats, "{}", 0))
	bus.Publish(ctx, events.RecordChangedEvent{Entidade: "arvore", ID: 7, Acao: "excluir"})
	bus.Wait()
	_, ok = store.CacheValue(constants.CacheKeyDashboardStats)
	assert.False(t, ok)
}
