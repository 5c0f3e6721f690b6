package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sleepfi/internal/datastore"
	"sleepfi/internal/economy"
	"sleepfi/internal/models"
	"sleepfi/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceSeason struct {
	container     *do.Injector
	postgresDB    *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
	serviceConfig *ServiceConfig
}

func NewServiceSeason(container *do.Injector) (*ServiceSeason, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
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

	return &ServiceSeason{container, postgresDB, cache, readonlyCache, serviceConfig}, nil
}

func (service *ServiceSeason) GetActiveSeason(ctx context.Context) (*models.SeasonState, error) {
	callback := func() (*models.SeasonState, error) {
		return datastore.GetActiveSeason(ctx, service.postgresDB)
	}

	season, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeySeasonState(), CACHE_TTL_1_MIN, callback)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSeason
	}
	if err != nil {
		return nil, err
	}

	return season, nil
}

// EnsureActiveSeason returns the active season, starting a fresh one when
// none exists. Week count is fixed from the participant count at this moment
// and never recomputed for the season's lifetime.
func (service *ServiceSeason) EnsureActiveSeason(ctx context.Context) (*models.SeasonState, error) {
	season, err := service.GetActiveSeason(ctx)
	if err == nil {
		return season, nil
	}
	if !errors.Is(err, ErrNoActiveSeason) {
		return nil, err
	}

	participants, err := datastore.CountParticipants(ctx, service.postgresDB)
	if err != nil {
		return nil, err
	}

	pool, _ := service.serviceConfig.GetInt64Config(ctx, CONFIG_TOTAL_SEASON_POOL, DEFAULT_TOTAL_SEASON_POOL)

	now := time.Now().UTC()
	season = &models.SeasonState{
		Status:          models.SEASON_STATUS_ACTIVE,
		StartDate:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		TotalWeeks:      economy.SeasonWeeks(participants),
		CurrentWeek:     1,
		TotalSeasonPool: pool,
	}

	if err := datastore.InsertSeason(ctx, service.postgresDB, season); err != nil {
		return nil, err
	}

	_ = service.cache.Delete(ctx, DBKeySeasonState())

	return season, nil
}

// WeekOf maps a wall-clock instant onto the season's 1-based week index.
// Past the final week it keeps counting; callers clamp via DifficultyByWeek.
func (service *ServiceSeason) WeekOf(season *models.SeasonState, now time.Time) int {
	days := int(now.UTC().Sub(season.StartDate).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days/7 + 1
}

func (service *ServiceSeason) ActiveParticipantCount(ctx context.Context) (int, error) {
	callback := func() (int, error) {
		return datastore.CountParticipants(ctx, service.postgresDB)
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyParticipantCount(), CACHE_TTL_5_MINS, callback)
}

func (service *ServiceSeason) ClearSeasonCache(ctx context.Context) error {
	return service.cache.Delete(ctx, DBKeySeasonState())
}
