package datastore

import (
	"context"

	"sleepfi/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSeasonState(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.SeasonState)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.SeasonState)(nil)).Index("index_season_state_status").IfNotExists().Column("status").Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetActiveSeason(ctx context.Context, db bun.IDB, statuses ...string) (*models.SeasonState, error) {
	if len(statuses) == 0 {
		statuses = []string{models.SEASON_STATUS_ACTIVE}
	}

	var season models.SeasonState
	err := db.NewSelect().Model(&season).
		Where("status IN (?)", bun.In(statuses)).
		OrderExpr("id desc").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &season, nil
}

func InsertSeason(ctx context.Context, db *bun.DB, season *models.SeasonState) error {
	_, err := db.NewInsert().Model(season).Returning("*").Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}
