package datastore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sleepfi/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

func CreateTableDistributionRecord(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.DistributionRecord)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.DistributionRecord)(nil)).Index("index_distribution_record_night").Unique().IfNotExists().Column("night").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindDistributionRecord(ctx context.Context, db *bun.DB, night string) (*models.DistributionRecord, error) {
	var record models.DistributionRecord
	err := db.NewSelect().Model(&record).Where("night = ?", night).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func DistributionRecordExists(ctx context.Context, db *bun.DB, night string) (bool, error) {
	_, err := FindDistributionRecord(ctx, db, night)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func GetRecentDistributionRecords(ctx context.Context, db *bun.DB, limit int) ([]*models.DistributionRecord, error) {
	var records []*models.DistributionRecord
	err := db.NewSelect().Model(&records).OrderExpr("night desc").Limit(limit).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// IsUniqueViolation reports whether err is the Postgres duplicate-key error.
// Two distribution runs racing on the same night lose on this constraint,
// which callers treat as a benign no-op.
func IsUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}

type WalletAward struct {
	Wallet string `json:"wallet"`
	Points int64  `json:"points"`
	Tokens int64  `json:"tokens"`
}

// CommitDistribution applies one nightly run atomically: sessions flip to
// processed with their token annotation, lifetime token totals are credited,
// season counters advance and the unique DistributionRecord lands. Any
// failure rolls the whole night back; the next tick retries from scratch.
func CommitDistribution(
	ctx context.Context,
	db *bun.DB,
	record *models.DistributionRecord,
	awards []WalletAward,
	sessions []*models.SleepSession,
	season *models.SeasonState,
) error {
	now := time.Now().UTC()

	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return err
		}

		tokensByWallet := make(map[string]int64, len(awards))
		for _, award := range awards {
			tokensByWallet[award.Wallet] = award.Tokens
		}

		for _, session := range sessions {
			if _, err := tx.NewUpdate().
				Model((*models.SleepSession)(nil)).
				Set("processed = true").
				Set("tokens_awarded = ?", tokensByWallet[session.Wallet]).
				Set("processed_at = ?", now).
				Where("id = ?", session.ID).
				Where("processed = false").
				Exec(ctx); err != nil {
				return err
			}
		}

		for _, award := range awards {
			if award.Tokens == 0 {
				continue
			}
			if _, err := tx.NewUpdate().
				Model((*models.Participant)(nil)).
				Set("lifetime_tokens = lifetime_tokens + ?", award.Tokens).
				Set("updated_at = current_timestamp").
				Where("wallet = ?", award.Wallet).
				Exec(ctx); err != nil {
				return err
			}
		}

		if _, err := tx.NewUpdate().
			Model(season).
			Set("current_week = ?", season.CurrentWeek).
			Set("status = ?", season.Status).
			Set("total_points = total_points + ?", record.TotalPoints).
			Set("total_tokens_distributed = total_tokens_distributed + ?", record.TokensDistributed).
			Set("nights_processed = nights_processed + 1").
			Set("updated_at = current_timestamp").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		return nil
	})
}
