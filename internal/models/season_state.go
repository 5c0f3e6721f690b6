package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	SEASON_STATUS_ACTIVE    = "ACTIVE"
	SEASON_STATUS_PAUSED    = "PAUSED"
	SEASON_STATUS_COMPLETED = "COMPLETED"
)

// SeasonState is the singleton record of the active reward season. TotalWeeks
// is fixed from the participant count at season start; CurrentWeek and the
// cumulative counters move once per nightly distribution.
type SeasonState struct {
	bun.BaseModel          `bun:"table:season_state"`
	ID                     int       `bun:"id,pk,autoincrement" json:"id"`
	Status                 string    `bun:"status" json:"status"`
	StartDate              time.Time `bun:"start_date" json:"start_date"`
	TotalWeeks             int       `bun:"total_weeks" json:"total_weeks"`
	CurrentWeek            int       `bun:"current_week" json:"current_week"`
	TotalSeasonPool        int64     `bun:"total_season_pool" json:"total_season_pool"`
	TotalPoints            int64     `bun:"total_points" json:"total_points"`
	TotalTokensDistributed int64     `bun:"total_tokens_distributed" json:"total_tokens_distributed"`
	NightsProcessed        int       `bun:"nights_processed" json:"nights_processed"`
	CreatedAt              time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt              time.Time `bun:"updated_at" json:"updated_at"`
}
