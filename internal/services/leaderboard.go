package services

import (
	"context"

	"sleepfi/internal/datastore/redis_store"
	"sleepfi/internal/models"
	"sleepfi/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

type ServiceLeaderboard struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, redisDB, cache, readonlyCache, serviceConfig}, nil
}

func (service *ServiceLeaderboard) GetPointsLeaderboard(ctx context.Context, wallet string) (*models.LeaderboardResponse, error) {
	limit, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, DEFAULT_LEADERBOARD_LIMIT)

	callback := func() ([]*models.LeaderboardItem, error) {
		items, err := redis_store.GetLeaderboard(ctx, service.redisDB, LEADERBOARD_POINTS, limit)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			item.Username = censorWallet(item.Wallet)
		}
		return items, nil
	}

	items, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyLeaderboard(LEADERBOARD_POINTS, limit), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, err
	}

	response := &models.LeaderboardResponse{Leaderboard: items}

	if wallet != "" {
		me, err := redis_store.GetLeaderboardRank(ctx, service.redisDB, LEADERBOARD_POINTS, wallet)
		if err == nil && me != nil {
			me.Username = censorWallet(me.Wallet)
			response.Me = me
		}
	}

	return response, nil
}

func (service *ServiceLeaderboard) ClearLeaderboard(ctx context.Context) error {
	return redis_store.ClearLeaderboard(ctx, service.redisDB, LEADERBOARD_POINTS)
}

// censorWallet keeps the address recognizable to its owner without exposing
// the full identifier on a public board.
func censorWallet(wallet string) string {
	if len(wallet) <= 12 {
		return wallet
	}
	return wallet[:6] + "..." + wallet[len(wallet)-4:]
}
