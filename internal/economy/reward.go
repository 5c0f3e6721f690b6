package economy

import "time"

const (
	RATE_PER_MINUTE    = 0.2
	MAX_MINUTES_ACTIVE = 480
)

type SessionInput struct {
	MinutesActive      int        `json:"minutes_active"`
	StorageGB          float64    `json:"storage_gb"`
	HumanChecksPassed  int        `json:"human_checks_passed"`
	HumanChecksFailed  int        `json:"human_checks_failed"`
	StakedAmount       float64    `json:"staked_amount"`
	ReferralCount      int        `json:"referral_count"`
	DailyTaskBonus     float64    `json:"daily_task_bonus"`
	IsHolder           bool       `json:"is_holder"`
	ActiveBoostID      string     `json:"active_boost_id"`
	BoostExpiresAt     *time.Time `json:"boost_expires_at"`
	WeekIndex          int        `json:"week_index"`
	SeasonTotalWeeks   int        `json:"season_total_weeks"`
	ActiveParticipants int        `json:"active_participants"`
	Now                time.Time  `json:"now"`
}

// MultiplierBreakdown is returned to the client alongside the point total so
// users can see how every factor contributed.
type MultiplierBreakdown struct {
	Storage    float64 `json:"storage"`
	HumanCheck float64 `json:"human_check"`
	Stake      float64 `json:"stake"`
	Social     float64 `json:"social"`
	PaidBoost  float64 `json:"paid_boost"`
	Holder     float64 `json:"holder"`
	Difficulty float64 `json:"difficulty"`
}

type SessionReward struct {
	Points        int64               `json:"points"`
	BasePoints    float64             `json:"base_points"`
	RawMultiplier float64             `json:"raw_multiplier"`
	Multiplier    float64             `json:"multiplier"`
	Capped        bool                `json:"capped"`
	Breakdown     MultiplierBreakdown `json:"breakdown"`
}

// ComputeSessionPoints prices one session. Deterministic for fixed inputs;
// the only time dependence is the explicit Now/WeekIndex in the input.
//
// The boost composition here is the additive award-time shape:
// (1 + social + paid) * holder. The nightly forecast uses the multiplicative
// shape instead (see ForecastMultiplier); the two are kept separate on
// purpose because unifying them would change historical point totals.
func ComputeSessionPoints(input SessionInput) SessionReward {
	minutes := input.MinutesActive
	if minutes < 0 {
		minutes = 0
	}
	if minutes > MAX_MINUTES_ACTIVE {
		minutes = MAX_MINUTES_ACTIVE
	}

	// the season freezes its week count at creation; only fall back to the
	// live participant count when pricing outside any season
	weeks := input.SeasonTotalWeeks
	if weeks <= 0 {
		weeks = SeasonWeeks(input.ActiveParticipants)
	}
	breakdown := MultiplierBreakdown{
		Storage:    StorageMultiplier(input.StorageGB),
		HumanCheck: HumanCheckMultiplier(input.HumanChecksPassed, input.HumanChecksFailed),
		Stake:      StakeMultiplier(input.StakedAmount),
		Social:     SocialBoost(input.ReferralCount, input.DailyTaskBonus),
		PaidBoost:  PaidBoostPercent(input.ActiveBoostID, input.BoostExpiresAt, input.Now),
		Holder:     PermanentHolderMultiplier(input.IsHolder),
		Difficulty: DifficultyByWeek(input.WeekIndex, weeks),
	}

	base := float64(minutes) * RATE_PER_MINUTE *
		breakdown.Storage *
		breakdown.HumanCheck *
		breakdown.Difficulty

	raw := (1 + breakdown.Social + breakdown.PaidBoost) * breakdown.Holder * breakdown.Stake
	capped := raw > COMPOSED_MULTIPLIER_CAP

	multiplier := raw
	if capped {
		multiplier = COMPOSED_MULTIPLIER_CAP
	}

	return SessionReward{
		Points:        int64(base * multiplier),
		BasePoints:    base,
		RawMultiplier: raw,
		Multiplier:    multiplier,
		Capped:        capped,
		Breakdown:     breakdown,
	}
}

// ForecastMultiplier is the full multiplicative composition used by the
// nightly distribution preview: (1+social) * (1+paid) * holder * stake,
// capped at the same ceiling as the award-time shape.
func ForecastMultiplier(input SessionInput) (float64, bool) {
	social := SocialBoost(input.ReferralCount, input.DailyTaskBonus)
	paid := PaidBoostPercent(input.ActiveBoostID, input.BoostExpiresAt, input.Now)
	holder := PermanentHolderMultiplier(input.IsHolder)
	stake := StakeMultiplier(input.StakedAmount)

	raw := (1 + social) * (1 + paid) * holder * stake
	if raw > COMPOSED_MULTIPLIER_CAP {
		return COMPOSED_MULTIPLIER_CAP, true
	}
	return raw, false
}
