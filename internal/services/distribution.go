package services

import (
	"context"
	"log"
	"sort"
	"time"

	"sleepfi/internal/datastore"
	"sleepfi/internal/economy"
	"sleepfi/internal/models"
	"sleepfi/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type DistributionResult struct {
	Night             string `json:"night"`
	Skipped           bool   `json:"skipped"`
	Reason            string `json:"reason,omitempty"`
	TotalPoints       int64  `json:"total_points"`
	PoolSize          int64  `json:"pool_size"`
	TokensDistributed int64  `json:"tokens_distributed"`
	ParticipantCount  int    `json:"participant_count"`
}

type ServiceDistribution struct {
	container       *do.Injector
	postgresDB      *bun.DB
	cache           caching.Cache
	rs              *redsync.Redsync
	serviceSeason   *ServiceSeason
	serviceNotifier *ServiceNotifier
}

func NewServiceDistribution(container *do.Injector) (*ServiceDistribution, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	serviceSeason, err := do.Invoke[*ServiceSeason](container)
	if err != nil {
		return nil, err
	}

	serviceNotifier, err := do.Invoke[*ServiceNotifier](container)
	if err != nil {
		return nil, err
	}

	return &ServiceDistribution{container, postgresDB, cache, rs, serviceSeason, serviceNotifier}, nil
}

// AllocateTokens splits the nightly pool across wallets proportionally to
// their points, flooring each share. The floor means the awarded sum can fall
// short of the pool by strictly less than the wallet count; the shortfall is
// an accepted loss, never redistributed. A wallet whose points exceed the
// grand total gets nothing (corrupted aggregation guard).
func AllocateTokens(pool int64, pointsByWallet map[string]int64) ([]datastore.WalletAward, int64) {
	var grandTotal int64
	for _, points := range pointsByWallet {
		grandTotal += points
	}

	wallets := make([]string, 0, len(pointsByWallet))
	for wallet := range pointsByWallet {
		wallets = append(wallets, wallet)
	}
	sort.Strings(wallets)

	awards := make([]datastore.WalletAward, 0, len(wallets))
	var distributed int64
	for _, wallet := range wallets {
		points := pointsByWallet[wallet]

		var tokens int64
		if grandTotal > 0 && points >= 0 && points <= grandTotal {
			tokens = pool * points / grandTotal
		}

		awards = append(awards, datastore.WalletAward{Wallet: wallet, Points: points, Tokens: tokens})
		distributed += tokens
	}

	return awards, distributed
}

// RunDailyDistribution converts yesterday's accumulated points into tokens.
// Safe to call any number of times: the unique DistributionRecord per night
// makes re-entry a no-op.
func (service *ServiceDistribution) RunDailyDistribution(ctx context.Context) (*DistributionResult, error) {
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	return service.RunDistributionForNight(ctx, models.NightOf(yesterday))
}

func (service *ServiceDistribution) RunDistributionForNight(ctx context.Context, night string) (*DistributionResult, error) {
	mutex := service.rs.NewMutex(LockKeyDistribution(night))
	if err := mutex.Lock(); err != nil {
		// another instance is mid-run for this night
		return &DistributionResult{Night: night, Skipped: true, Reason: "locked"}, nil
	}
	// nolint:errcheck
	defer mutex.Unlock()

	exists, err := datastore.DistributionRecordExists(ctx, service.postgresDB, night)
	if err != nil {
		return nil, err
	}
	if exists {
		return &DistributionResult{Night: night, Skipped: true, Reason: "already distributed"}, nil
	}

	sessions, err := datastore.GetUnprocessedSessionsByNight(ctx, service.postgresDB, night)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return &DistributionResult{Night: night, Skipped: true, Reason: "no sessions"}, nil
	}

	pointsByWallet := make(map[string]int64)
	var totalPoints int64
	activeDevices := make(map[string]bool)
	for _, session := range sessions {
		pointsByWallet[session.Wallet] += session.Points
		totalPoints += session.Points
		if session.StorageGB > 0 {
			activeDevices[session.Wallet] = true
		}
	}

	season, err := service.serviceSeason.EnsureActiveSeason(ctx)
	if err != nil {
		return nil, err
	}

	// the pool scales with how many wallets actually slept that night
	pool := economy.NightlyPool(len(pointsByWallet), season.TotalSeasonPool)

	awards, distributed := AllocateTokens(pool, pointsByWallet)

	season.CurrentWeek = service.serviceSeason.WeekOf(season, time.Now().UTC())
	if season.CurrentWeek > season.TotalWeeks {
		season.Status = models.SEASON_STATUS_COMPLETED
	}

	record := &models.DistributionRecord{
		Night:             night,
		TotalPoints:       totalPoints,
		PoolSize:          pool,
		TokensDistributed: distributed,
		ParticipantCount:  len(pointsByWallet),
		ActiveDeviceCount: len(activeDevices),
	}

	if err := datastore.CommitDistribution(ctx, service.postgresDB, record, awards, sessions, season); err != nil {
		if datastore.IsUniqueViolation(err) {
			// a concurrent run landed the record first; nothing was committed here
			log.Println("distribution already recorded for", night)
			return &DistributionResult{Night: night, Skipped: true, Reason: "already distributed"}, nil
		}
		return nil, err
	}

	_ = service.cache.Delete(ctx, DBKeySeasonState())

	service.serviceNotifier.NotifyDistributionCompleted(ctx, &models.DistributionEvent{
		RunID:             uuid.NewString(),
		Night:             night,
		TotalPoints:       totalPoints,
		PoolSize:          pool,
		TokensDistributed: distributed,
		ParticipantCount:  len(pointsByWallet),
	})

	return &DistributionResult{
		Night:             night,
		TotalPoints:       totalPoints,
		PoolSize:          pool,
		TokensDistributed: distributed,
		ParticipantCount:  len(pointsByWallet),
	}, nil
}

func (service *ServiceDistribution) GetRecentDistributions(ctx context.Context, limit int) ([]*models.DistributionRecord, error) {
	callback := func() ([]*models.DistributionRecord, error) {
		return datastore.GetRecentDistributionRecords(ctx, service.postgresDB, limit)
	}

	return caching.UseCache(ctx, service.cache, DBKeyRecentDistributions(limit), CACHE_TTL_5_MINS, callback)
}
