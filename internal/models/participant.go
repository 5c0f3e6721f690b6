package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Participant is one economy account, keyed by wallet address. Created on
// first contact and never deleted.
type Participant struct {
	bun.BaseModel     `bun:"table:participant"`
	Wallet            string     `bun:"wallet,pk" json:"wallet"`
	Username          *string    `bun:"username" json:"username"`
	PointBalance      int64      `bun:"point_balance" json:"point_balance"`
	LifetimeTokens    int64      `bun:"lifetime_tokens" json:"lifetime_tokens"`
	SessionCount      int        `bun:"session_count" json:"session_count"`
	ReferralCount     int        `bun:"referral_count" json:"referral_count"`
	IsHolder          bool       `bun:"is_holder,default:false" json:"is_holder"`
	HolderMultiplier  float64    `bun:"holder_multiplier" json:"holder_multiplier"`
	ActiveBoostID     *string    `bun:"active_boost_id" json:"active_boost_id"`
	BoostExpiresAt    *time.Time `bun:"boost_expires_at" json:"boost_expires_at"`
	StakedAmount      float64    `bun:"staked_amount" json:"staked_amount"`
	DeviceFingerprint *string    `bun:"device_fingerprint" json:"-"`
	CreatedAt         time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time  `bun:"updated_at" json:"updated_at"`

	IsNew bool `bun:"-" json:"is_new,omitempty"`
}

// WalletFromAuth only use in middleware
type WalletFromAuth struct {
	Wallet   string `json:"wallet"`
	Username string `json:"username"`
}
