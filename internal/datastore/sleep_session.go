package datastore

import (
	"context"

	"sleepfi/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSleepSession(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.SleepSession)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	// one session per wallet per UTC night
	_, err = db.NewCreateIndex().Model((*models.SleepSession)(nil)).Index("index_sleep_session_wallet_night").Unique().IfNotExists().Column("wallet", "night").Exec(ctx)
	if err != nil {
		return err
	}

	// replay idempotency on the exact reported window
	_, err = db.NewCreateIndex().Model((*models.SleepSession)(nil)).Index("index_sleep_session_wallet_window").Unique().IfNotExists().Column("wallet", "start_ms", "end_ms").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SleepSession)(nil)).Index("index_sleep_session_night_processed").IfNotExists().Column("night", "processed").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindSessionByWindow(ctx context.Context, db *bun.DB, wallet string, startMs, endMs int64) (*models.SleepSession, error) {
	var session models.SleepSession
	err := db.NewSelect().Model(&session).
		Where("wallet = ?", wallet).
		Where("start_ms = ?", startMs).
		Where("end_ms = ?", endMs).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func FindSessionByNight(ctx context.Context, db *bun.DB, wallet string, night string) (*models.SleepSession, error) {
	var session models.SleepSession
	err := db.NewSelect().Model(&session).
		Where("wallet = ?", wallet).
		Where("night = ?", night).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func GetUnprocessedSessionsByNight(ctx context.Context, db *bun.DB, night string) ([]*models.SleepSession, error) {
	var sessions []*models.SleepSession
	err := db.NewSelect().Model(&sessions).
		Where("night = ?", night).
		Where("processed = false").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func GetSessionsByWallet(ctx context.Context, db *bun.DB, wallet string, limit, offset int) ([]*models.SleepSession, error) {
	var sessions []*models.SleepSession
	err := db.NewSelect().Model(&sessions).
		Where("wallet = ?", wallet).
		OrderExpr("night desc").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// CreditSession inserts the priced session and folds its points into the
// participant balance in one transaction. The participant row is locked
// before the balance write so concurrent reports for the same wallet cannot
// lose an update.
func CreditSession(ctx context.Context, db *bun.DB, session *models.SleepSession, username *string) (*models.Participant, error) {
	var participant *models.Participant

	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := InsertParticipant(ctx, tx, &models.Participant{
			Wallet:           session.Wallet,
			Username:         username,
			HolderMultiplier: 1.0,
		}); err != nil {
			return err
		}

		locked, err := FindParticipantForUpdate(ctx, tx, session.Wallet)
		if err != nil {
			return err
		}

		if _, err := tx.NewInsert().Model(session).Returning("*").Exec(ctx); err != nil {
			return err
		}

		newBalance := locked.PointBalance + session.Points
		if newBalance < 0 {
			newBalance = 0
		}

		if _, err := tx.NewUpdate().
			Model((*models.Participant)(nil)).
			Set("point_balance = ?", newBalance).
			Set("session_count = session_count + 1").
			Set("updated_at = current_timestamp").
			Where("wallet = ?", session.Wallet).
			Exec(ctx); err != nil {
			return err
		}

		locked.PointBalance = newBalance
		locked.SessionCount++
		participant = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return participant, nil
}
