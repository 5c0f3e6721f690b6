package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SleepSession is one sleep-tracking interval for one wallet on one UTC
// night. Immutable after pricing; the only later mutation is the processed
// flag plus its token annotation when the nightly distribution runs.
type SleepSession struct {
	bun.BaseModel `bun:"table:sleep_session"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Wallet        string     `bun:"wallet" json:"wallet"`
	Night         string     `bun:"night" json:"night"`
	StartMs       int64      `bun:"start_ms" json:"start_ms"`
	EndMs         int64      `bun:"end_ms" json:"end_ms"`
	MinutesActive int        `bun:"minutes_active" json:"minutes_active"`
	StorageGB     float64    `bun:"storage_gb" json:"storage_gb"`
	ChecksPassed  int        `bun:"checks_passed" json:"checks_passed"`
	ChecksFailed  int        `bun:"checks_failed" json:"checks_failed"`
	StakedAmount  float64    `bun:"staked_amount" json:"staked_amount"`
	ClientRate    float64    `bun:"client_rate" json:"client_rate"`
	ServerRate    float64    `bun:"server_rate" json:"server_rate"`
	EffectiveRate float64    `bun:"effective_rate" json:"effective_rate"`
	Multipliers   map[string]float64 `bun:"multipliers,type:jsonb" json:"multipliers"`
	Points        int64      `bun:"points" json:"points"`
	Processed     bool       `bun:"processed,default:false" json:"processed"`
	TokensAwarded int64      `bun:"tokens_awarded" json:"tokens_awarded"`
	ProcessedAt   *time.Time `bun:"processed_at" json:"processed_at"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// NightFormat is the UTC calendar-day key. Day boundaries are always UTC so
// a timezone shift cannot replay the same night.
const NightFormat = "2006-01-02"

func NightOf(t time.Time) string {
	return t.UTC().Format(NightFormat)
}
