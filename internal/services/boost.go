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

	"github.com/go-redsync/redsync/v4"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceBoost struct {
	container  *do.Injector
	postgresDB *bun.DB
	cache      caching.Cache
	rs         *redsync.Redsync
}

func NewServiceBoost(container *do.Injector) (*ServiceBoost, error) {
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

	return &ServiceBoost{container, postgresDB, cache, rs}, nil
}

type PurchasedBoost struct {
	BoostID   string    `json:"boost_id"`
	Percent   float64   `json:"percent"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PurchaseBoost activates a catalog boost for the wallet. A new purchase
// always overwrites the active boost, even when the new one is cheaper or
// shorter: last purchase wins. Changing that is a product decision, not a
// bug fix.
func (service *ServiceBoost) PurchaseBoost(ctx context.Context, wallet string, boostID string) (*PurchasedBoost, error) {
	if err := ValidateWallet(wallet); err != nil {
		return nil, errorx.Wrap(err, errorx.Validation)
	}

	entry, ok := economy.LookupBoost(boostID)
	if !ok {
		return nil, errorx.Wrap(errors.New("unknown boost"), errorx.NotExist)
	}

	mutex := service.rs.NewMutex(LockKeyWalletBoost(wallet))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrBoostLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	if err := service.ensureParticipant(ctx, wallet); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	expiresAt := time.Now().UTC().Add(entry.Duration)
	if err := datastore.SetParticipantBoost(ctx, service.postgresDB, wallet, entry.ID, expiresAt); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyParticipant(wallet))

	return &PurchasedBoost{BoostID: entry.ID, Percent: entry.Percent, ExpiresAt: expiresAt}, nil
}

func (service *ServiceBoost) GrantHolder(ctx context.Context, wallet string, grant bool) error {
	if err := ValidateWallet(wallet); err != nil {
		return errorx.Wrap(err, errorx.Validation)
	}

	if err := service.ensureParticipant(ctx, wallet); err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	multiplier := economy.PermanentHolderMultiplier(grant)
	if err := datastore.SetParticipantHolder(ctx, service.postgresDB, wallet, grant, multiplier); err != nil {
		return errorx.Wrap(err, errorx.Service)
	}

	_ = service.cache.Delete(ctx, DBKeyParticipant(wallet))
	return nil
}

// Forecast previews the wallet's composed boost multiplier for tonight's
// distribution, using the multiplicative forecast shape.
func (service *ServiceBoost) Forecast(ctx context.Context, wallet string) (map[string]any, error) {
	if err := ValidateWallet(wallet); err != nil {
		return nil, errorx.Wrap(err, errorx.Validation)
	}

	participant, err := datastore.FindParticipant(ctx, service.postgresDB, wallet)
	if errors.Is(err, sql.ErrNoRows) {
		participant = &models.Participant{Wallet: wallet, HolderMultiplier: 1.0}
	} else if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	input := economy.SessionInput{
		StakedAmount:  participant.StakedAmount,
		ReferralCount: participant.ReferralCount,
		IsHolder:      participant.IsHolder,
		Now:           time.Now().UTC(),
	}
	if participant.ActiveBoostID != nil {
		input.ActiveBoostID = *participant.ActiveBoostID
	}
	input.BoostExpiresAt = participant.BoostExpiresAt

	multiplier, capped := economy.ForecastMultiplier(input)

	return map[string]any{
		"wallet":     wallet,
		"multiplier": multiplier,
		"capped":     capped,
	}, nil
}

func (service *ServiceBoost) ensureParticipant(ctx context.Context, wallet string) error {
	return datastore.InsertParticipant(ctx, service.postgresDB, &models.Participant{
		Wallet:           wallet,
		HolderMultiplier: 1.0,
	})
}
