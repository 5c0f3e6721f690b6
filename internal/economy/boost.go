package economy

import (
	"sort"
	"time"
)

const (
	STORAGE_MIN_GB          = 0
	STORAGE_MAX_GB          = 100
	STORAGE_MULTIPLIER_MIN  = 1.0
	STORAGE_MULTIPLIER_MAX  = 2.0
	HUMAN_CHECK_FULL_RATE   = 0.8
	HUMAN_CHECK_HALF_RATE   = 0.5
	STAKE_MID_THRESHOLD     = 100
	STAKE_HIGH_THRESHOLD    = 1000
	REFERRAL_BOOST_PER_REF  = 0.01
	REFERRAL_BOOST_CAP      = 0.20
	TASK_BONUS_CAP          = 0.30
	SOCIAL_BOOST_CAP        = 0.40
	HOLDER_MULTIPLIER       = 3.0
	COMPOSED_MULTIPLIER_CAP = 6.0
)

type BoostCatalogEntry struct {
	ID       string        `json:"id"`
	Percent  float64       `json:"percent"`
	Duration time.Duration `json:"duration"`
}

var boostCatalog = map[string]BoostCatalogEntry{
	"surge":     {ID: "surge", Percent: 0.5, Duration: 24 * time.Hour},
	"overdrive": {ID: "overdrive", Percent: 1.0, Duration: 72 * time.Hour},
	"hibernate": {ID: "hibernate", Percent: 2.0, Duration: 168 * time.Hour},
}

// LookupBoost returns the catalog entry for a boost id. Callers must handle
// the missing case themselves; an unknown id silently becoming "no boost"
// has masked typos before.
func LookupBoost(id string) (BoostCatalogEntry, bool) {
	entry, ok := boostCatalog[id]
	return entry, ok
}

func BoostCatalog() []BoostCatalogEntry {
	entries := make([]BoostCatalogEntry, 0, len(boostCatalog))
	for _, entry := range boostCatalog {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Percent < entries[j].Percent })
	return entries
}

// StorageMultiplier maps allocated storage (GB) linearly onto
// [STORAGE_MULTIPLIER_MIN, STORAGE_MULTIPLIER_MAX]. Out-of-range input is
// clamped, not rejected.
func StorageMultiplier(storageGB float64) float64 {
	if storageGB < STORAGE_MIN_GB {
		storageGB = STORAGE_MIN_GB
	}
	if storageGB > STORAGE_MAX_GB {
		storageGB = STORAGE_MAX_GB
	}

	span := STORAGE_MULTIPLIER_MAX - STORAGE_MULTIPLIER_MIN
	return STORAGE_MULTIPLIER_MIN + span*(storageGB-STORAGE_MIN_GB)/(STORAGE_MAX_GB-STORAGE_MIN_GB)
}

// HumanCheckMultiplier buckets the pass rate into three tiers. The steps are
// intentionally not smoothed so the penalty stays legible to users.
// Zero checks means the session was too short to be challenged: full credit.
func HumanCheckMultiplier(passed, failed int) float64 {
	total := passed + failed
	if total <= 0 {
		return 1.0
	}

	rate := float64(passed) / float64(total)
	switch {
	case rate >= HUMAN_CHECK_FULL_RATE:
		return 1.0
	case rate >= HUMAN_CHECK_HALF_RATE:
		return 0.7
	default:
		return 0.3
	}
}

// StakeMultiplier is a three-tier step function. Thresholds are inclusive:
// exactly at a threshold counts as the higher tier.
func StakeMultiplier(stakedAmount float64) float64 {
	switch {
	case stakedAmount >= STAKE_HIGH_THRESHOLD:
		return 1.5
	case stakedAmount >= STAKE_MID_THRESHOLD:
		return 1.2
	default:
		return 1.0
	}
}

// SocialBoost sums the referral contribution (1% per referral, capped) and
// the supplied daily task bonus (capped), then caps the sum again. The double
// cap keeps any single growth channel from dominating.
func SocialBoost(referralCount int, dailyTaskBonus float64) float64 {
	if referralCount < 0 {
		referralCount = 0
	}

	referral := float64(referralCount) * REFERRAL_BOOST_PER_REF
	if referral > REFERRAL_BOOST_CAP {
		referral = REFERRAL_BOOST_CAP
	}

	if dailyTaskBonus < 0 {
		dailyTaskBonus = 0
	}
	if dailyTaskBonus > TASK_BONUS_CAP {
		dailyTaskBonus = TASK_BONUS_CAP
	}

	boost := referral + dailyTaskBonus
	if boost > SOCIAL_BOOST_CAP {
		boost = SOCIAL_BOOST_CAP
	}

	return boost
}

func PermanentHolderMultiplier(isHolder bool) float64 {
	if isHolder {
		return HOLDER_MULTIPLIER
	}
	return 1.0
}

// PaidBoostPercent resolves the active paid boost to its catalog percent.
// Returns 0 for an empty or unknown id, or when the boost has expired.
func PaidBoostPercent(activeBoostID string, expiresAt *time.Time, now time.Time) float64 {
	if activeBoostID == "" || expiresAt == nil {
		return 0
	}
	if !now.Before(*expiresAt) {
		return 0
	}

	entry, ok := LookupBoost(activeBoostID)
	if !ok {
		// unknown id behaves like no boost; kept visible here instead of a
		// `?:`-style default buried at the call sites
		return 0
	}

	return entry.Percent
}

// PaidBoostMultiplier is PaidBoostPercent expressed as a factor >= 1.0.
func PaidBoostMultiplier(activeBoostID string, expiresAt *time.Time, now time.Time) float64 {
	return 1.0 + PaidBoostPercent(activeBoostID, expiresAt, now)
}
