package datastore

import (
	"context"
	"time"

	"sleepfi/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableParticipant(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Participant)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Participant)(nil)).Index("index_participant_is_holder").IfNotExists().Column("is_holder").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Participant)(nil)).Index("index_participant_point_balance").IfNotExists().Column("point_balance").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func FindParticipant(ctx context.Context, db bun.IDB, wallet string) (*models.Participant, error) {
	var participant models.Participant
	err := db.NewSelect().Model(&participant).Where("wallet = ?", wallet).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &participant, nil
}

// FindParticipantForUpdate locks the balance row for the rest of the
// surrounding transaction. Must only be called inside RunInTx.
func FindParticipantForUpdate(ctx context.Context, tx bun.Tx, wallet string) (*models.Participant, error) {
	var participant models.Participant
	err := tx.NewSelect().Model(&participant).Where("wallet = ?", wallet).For("UPDATE").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &participant, nil
}

func InsertParticipant(ctx context.Context, db bun.IDB, participant *models.Participant) error {
	_, err := db.NewInsert().Model(participant).On("CONFLICT (wallet) DO NOTHING").Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func ListParticipants(ctx context.Context, db *bun.DB, limit, offset int) ([]*models.Participant, error) {
	var participants []*models.Participant
	err := db.NewSelect().
		Model(&participants).
		Order("wallet ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	return participants, err
}

func CountParticipants(ctx context.Context, db *bun.DB) (int, error) {
	return db.NewSelect().Model((*models.Participant)(nil)).Count(ctx)
}

func SetParticipantBoost(ctx context.Context, db *bun.DB, wallet string, boostID string, expiresAt time.Time) error {
	_, err := db.NewUpdate().
		Model((*models.Participant)(nil)).
		Set("active_boost_id = ?", boostID).
		Set("boost_expires_at = ?", expiresAt).
		Set("updated_at = current_timestamp").
		Where("wallet = ?", wallet).
		Exec(ctx)
	return err
}

func SetParticipantHolder(ctx context.Context, db *bun.DB, wallet string, isHolder bool, multiplier float64) error {
	_, err := db.NewUpdate().
		Model((*models.Participant)(nil)).
		Set("is_holder = ?", isHolder).
		Set("holder_multiplier = ?", multiplier).
		Set("updated_at = current_timestamp").
		Where("wallet = ?", wallet).
		Exec(ctx)
	return err
}

func SetParticipantStake(ctx context.Context, db *bun.DB, wallet string, stakedAmount float64) error {
	_, err := db.NewUpdate().
		Model((*models.Participant)(nil)).
		Set("staked_amount = ?", stakedAmount).
		Set("updated_at = current_timestamp").
		Where("wallet = ?", wallet).
		Exec(ctx)
	return err
}

func AddReferral(ctx context.Context, db *bun.DB, wallet string) error {
	_, err := db.NewUpdate().
		Model((*models.Participant)(nil)).
		Set("referral_count = referral_count + 1").
		Where("wallet = ?", wallet).
		Exec(ctx)
	return err
}
