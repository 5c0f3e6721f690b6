package services

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"sleepfi/internal/datastore"
	"sleepfi/internal/datastore/redis_store"
	"sleepfi/internal/economy"
	"sleepfi/internal/models"
	"sleepfi/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/tonkeeper/tongo"
	"github.com/uptrace/bun"
)

// SessionReport is the telemetry shape handed over by the transport
// collaborator at session end. The aggregate ClientRate is advisory only;
// every multiplier is recomputed server-side from the per-field inputs.
type SessionReport struct {
	Wallet            string  `json:"wallet"`
	AuthToken         string  `json:"auth_token,omitempty"`
	Username          *string `json:"username,omitempty"`
	MinutesActive     int     `json:"minutes_active"`
	StorageGB         float64 `json:"storage_gb"`
	StakedAmount      float64 `json:"staked_amount"`
	ChecksPassed      int     `json:"checks_passed"`
	ChecksFailed      int     `json:"checks_failed"`
	DailyTaskBonus    float64 `json:"daily_task_bonus"`
	ActiveBoostID     *string `json:"active_boost_id,omitempty"`
	IsHolder          bool    `json:"is_holder"`
	ClientRate        float64 `json:"client_rate"`
	StartMs           int64   `json:"start_ms"`
	EndMs             int64   `json:"end_ms"`
	DeviceFingerprint *string `json:"device_fingerprint,omitempty"`
}

type RecordSessionResult struct {
	NewBalance    int64                       `json:"new_balance"`
	PointsEarned  int64                       `json:"points_earned"`
	EffectiveRate float64                     `json:"effective_rate"`
	ServerRate    float64                     `json:"server_rate"`
	Breakdown     economy.MultiplierBreakdown `json:"breakdown"`
	Duplicate     bool                        `json:"duplicate"`
}

type ServiceLedger struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	postgresDB    *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
	rs            *redsync.Redsync
	serviceSeason *ServiceSeason
	serviceConfig *ServiceConfig
	auth          *Authentication
}

func NewServiceLedger(container *do.Injector) (*ServiceLedger, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

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

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	serviceSeason, err := do.Invoke[*ServiceSeason](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	auth, err := do.Invoke[*Authentication](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLedger{container, redisDB, postgresDB, cache, readonlyCache, rs, serviceSeason, serviceConfig, auth}, nil
}

// ValidateWallet runs the basic address-format check on a reported wallet.
func ValidateWallet(wallet string) error {
	if wallet == "" {
		return errors.New("empty wallet")
	}

	_, err := tongo.ParseAddress(wallet)
	return err
}

// ValidateWindow rejects non-positive session durations.
func ValidateWindow(startMs, endMs int64) error {
	if endMs <= startMs {
		return errors.New("session end must be after start")
	}
	return nil
}

// EffectiveRate bounds a malicious client to under-reporting: the credited
// rate is never above what the server itself computed from the raw inputs.
func EffectiveRate(clientRate, serverRate float64) float64 {
	if clientRate < 0 {
		clientRate = 0
	}
	return math.Min(clientRate, serverRate)
}

// CreditedPoints converts the effective per-second rate into whole points
// over the session's wall-clock duration. Never negative.
func CreditedPoints(effectiveRate float64, durationSecs float64) int64 {
	points := int64(math.Floor(effectiveRate * durationSecs))
	if points < 0 {
		return 0
	}
	return points
}

// RecordSessionEnd prices and persists one session-end report.
//
// Duplicate reports for an identical (wallet, start, end) window return the
// previously recorded result with Duplicate=true and zero points earned;
// client retries never double-credit.
func (service *ServiceLedger) RecordSessionEnd(ctx context.Context, report *SessionReport) (*RecordSessionResult, error) {
	authRequired, _ := service.serviceConfig.GetBoolConfig(ctx, CONFIG_AUTH_REQUIRED, true)
	if authRequired {
		if report.AuthToken == "" {
			return nil, errorx.Wrap(errors.New("missing auth token"), errorx.Authn)
		}
		claims, err := service.auth.Validate(report.AuthToken)
		if err != nil {
			return nil, errorx.Wrap(errors.New("invalid auth token"), errorx.Authn)
		}
		if claims.Wallet != report.Wallet {
			return nil, errorx.Wrap(errors.New("token wallet mismatch"), errorx.Authn)
		}
	}

	if err := ValidateWallet(report.Wallet); err != nil {
		return nil, errorx.Wrap(err, errorx.Validation)
	}
	if err := ValidateWindow(report.StartMs, report.EndMs); err != nil {
		return nil, errorx.Wrap(err, errorx.Validation)
	}

	mutex := service.rs.NewMutex(LockKeyWalletSession(report.Wallet))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrSessionLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	if result, ok, err := service.findExistingResult(ctx, report); err != nil {
		return nil, err
	} else if ok {
		return result, nil
	}

	season, err := service.serviceSeason.EnsureActiveSeason(ctx)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	participants, err := service.serviceSeason.ActiveParticipantCount(ctx)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	// boost, holder and referral state come from the participant row, not
	// the report; a client cannot claim multipliers it never purchased
	existing, err := datastore.FindParticipant(ctx, service.postgresDB, report.Wallet)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	now := time.Now().UTC()
	input := economy.SessionInput{
		MinutesActive:      report.MinutesActive,
		StorageGB:          report.StorageGB,
		HumanChecksPassed:  report.ChecksPassed,
		HumanChecksFailed:  report.ChecksFailed,
		StakedAmount:       report.StakedAmount,
		DailyTaskBonus:     report.DailyTaskBonus,
		WeekIndex:          service.serviceSeason.WeekOf(season, now),
		SeasonTotalWeeks:   season.TotalWeeks,
		ActiveParticipants: participants,
		Now:                now,
	}
	if existing != nil {
		input.ReferralCount = existing.ReferralCount
		input.IsHolder = existing.IsHolder
		if existing.ActiveBoostID != nil {
			input.ActiveBoostID = *existing.ActiveBoostID
		}
		input.BoostExpiresAt = existing.BoostExpiresAt
	}

	reward := economy.ComputeSessionPoints(input)

	durationSecs := float64(report.EndMs-report.StartMs) / 1000
	serverRate := float64(reward.Points) / durationSecs
	effectiveRate := EffectiveRate(report.ClientRate, serverRate)
	points := CreditedPoints(effectiveRate, durationSecs)

	session := &models.SleepSession{
		Wallet:        report.Wallet,
		Night:         models.NightOf(time.UnixMilli(report.EndMs)),
		StartMs:       report.StartMs,
		EndMs:         report.EndMs,
		MinutesActive: report.MinutesActive,
		StorageGB:     report.StorageGB,
		ChecksPassed:  report.ChecksPassed,
		ChecksFailed:  report.ChecksFailed,
		StakedAmount:  report.StakedAmount,
		ClientRate:    report.ClientRate,
		ServerRate:    serverRate,
		EffectiveRate: effectiveRate,
		Multipliers: map[string]float64{
			"storage":     reward.Breakdown.Storage,
			"human_check": reward.Breakdown.HumanCheck,
			"stake":       reward.Breakdown.Stake,
			"social":      reward.Breakdown.Social,
			"paid_boost":  reward.Breakdown.PaidBoost,
			"holder":      reward.Breakdown.Holder,
			"difficulty":  reward.Breakdown.Difficulty,
		},
		Points: points,
	}

	participant, err := datastore.CreditSession(ctx, service.postgresDB, session, report.Username)
	if err != nil {
		if datastore.IsUniqueViolation(err) {
			// a concurrent retry won the insert, or a second window was
			// reported for the same night
			if result, ok, findErr := service.findExistingResult(ctx, report); findErr == nil && ok {
				return result, nil
			}
			if _, nightErr := datastore.FindSessionByNight(ctx, service.postgresDB, session.Wallet, session.Night); nightErr == nil {
				return nil, errorx.Wrap(errors.New("session already recorded for this night"), errorx.Invalid)
			}
			return nil, errorx.Wrap(errors.New("duplicate session"), errorx.Invalid)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	// remember the reported stake so the forecast tier matches the last night
	//nolint:errcheck
	datastore.SetParticipantStake(ctx, service.postgresDB, report.Wallet, report.StakedAmount)

	// best effort; the credited balance is already durable
	//nolint:errcheck
	redis_store.SetLeaderboard(ctx, service.redisDB, LEADERBOARD_POINTS, &models.LeaderboardItem{
		Wallet: participant.Wallet,
		Score:  float64(participant.PointBalance),
	})
	_ = service.cache.Delete(ctx, DBKeyParticipant(report.Wallet))
	_ = service.cache.Delete(ctx, DBKeyParticipantBalance(report.Wallet))

	return &RecordSessionResult{
		NewBalance:    participant.PointBalance,
		PointsEarned:  points,
		EffectiveRate: effectiveRate,
		ServerRate:    serverRate,
		Breakdown:     reward.Breakdown,
		Duplicate:     false,
	}, nil
}

func (service *ServiceLedger) findExistingResult(ctx context.Context, report *SessionReport) (*RecordSessionResult, bool, error) {
	session, err := datastore.FindSessionByWindow(ctx, service.postgresDB, report.Wallet, report.StartMs, report.EndMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errorx.Wrap(err, errorx.Service)
	}

	participant, err := datastore.FindParticipant(ctx, service.postgresDB, report.Wallet)
	if err != nil {
		return nil, false, errorx.Wrap(err, errorx.Service)
	}

	return &RecordSessionResult{
		NewBalance:    participant.PointBalance,
		PointsEarned:  0,
		EffectiveRate: session.EffectiveRate,
		ServerRate:    session.ServerRate,
		Breakdown: economy.MultiplierBreakdown{
			Storage:    session.Multipliers["storage"],
			HumanCheck: session.Multipliers["human_check"],
			Stake:      session.Multipliers["stake"],
			Social:     session.Multipliers["social"],
			PaidBoost:  session.Multipliers["paid_boost"],
			Holder:     session.Multipliers["holder"],
			Difficulty: session.Multipliers["difficulty"],
		},
		Duplicate: true,
	}, true, nil
}

// RegisterReferral credits the referrer one referral slot. First contact only:
// a wallet that already has a participant row cannot be claimed, so re-issuing
// a token with a different referrer never farms referral boost.
func (service *ServiceLedger) RegisterReferral(ctx context.Context, wallet, referrer string) error {
	if err := ValidateWallet(referrer); err != nil {
		return errorx.Wrap(err, errorx.Validation)
	}
	if wallet == referrer {
		return errorx.Wrap(errors.New("self referral"), errorx.Invalid)
	}

	_, err := datastore.FindParticipant(ctx, service.postgresDB, wallet)
	if err == nil {
		// not a fresh signup; silently ignore the claim
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return errorx.Wrap(err, errorx.Service)
	}

	fresh := &models.Participant{Wallet: wallet, HolderMultiplier: 1.0}
	if err := datastore.InsertParticipant(ctx, service.postgresDB, fresh); err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	if err := datastore.AddReferral(ctx, service.postgresDB, referrer); err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyParticipant(referrer))
	return nil
}

// GetSessions pages through a wallet's recorded sessions, newest first.
func (service *ServiceLedger) GetSessions(ctx context.Context, wallet string, limit, offset int) ([]*models.SleepSession, error) {
	if err := ValidateWallet(wallet); err != nil {
		return nil, errorx.Wrap(err, errorx.Validation)
	}

	sessions, err := datastore.GetSessionsByWallet(ctx, service.postgresDB, wallet, limit, offset)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return sessions, nil
}

// GetBalance reads a wallet's point balance, creating the participant with a
// zero balance on first contact. A balance read never errors on an unknown
// wallet.
func (service *ServiceLedger) GetBalance(ctx context.Context, wallet string) (*models.Participant, error) {
	if err := ValidateWallet(wallet); err != nil {
		return nil, errorx.Wrap(err, errorx.Validation)
	}

	callback := func() (*models.Participant, error) {
		participant, err := datastore.FindParticipant(ctx, service.postgresDB, wallet)
		if errors.Is(err, sql.ErrNoRows) {
			fresh := &models.Participant{Wallet: wallet, HolderMultiplier: 1.0, IsNew: true}
			if err := datastore.InsertParticipant(ctx, service.postgresDB, fresh); err != nil {
				return nil, err
			}
			return fresh, nil
		}
		return participant, err
	}

	participant, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyParticipant(wallet), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return participant, nil
}
