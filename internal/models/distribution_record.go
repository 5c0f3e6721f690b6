package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DistributionRecord is the immutable audit row for one nightly run. Its
// unique night constraint is the idempotency boundary: a night that already
// has a record is never distributed again.
type DistributionRecord struct {
	bun.BaseModel     `bun:"table:distribution_record"`
	ID                int64     `bun:"id,pk,autoincrement" json:"id"`
	Night             string    `bun:"night" json:"night"`
	TotalPoints       int64     `bun:"total_points" json:"total_points"`
	PoolSize          int64     `bun:"pool_size" json:"pool_size"`
	TokensDistributed int64     `bun:"tokens_distributed" json:"tokens_distributed"`
	ParticipantCount  int       `bun:"participant_count" json:"participant_count"`
	ActiveDeviceCount int       `bun:"active_device_count" json:"active_device_count"`
	CreatedAt         time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// DistributionEvent is the fire-and-forget completion broadcast sent to
// collaborators after a successful run.
type DistributionEvent struct {
	RunID             string `json:"run_id" msgpack:"run_id"`
	Night             string `json:"night" msgpack:"night"`
	TotalPoints       int64  `json:"total_points" msgpack:"total_points"`
	PoolSize          int64  `json:"pool_size" msgpack:"pool_size"`
	TokensDistributed int64  `json:"tokens_distributed" msgpack:"tokens_distributed"`
	ParticipantCount  int    `json:"participant_count" msgpack:"participant_count"`
}
