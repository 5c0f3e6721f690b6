package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStorageMultiplier(t *testing.T) {
	tests := []struct {
		name      string
		storageGB float64
		want      float64
	}{
		{"minimum allocation", 0, 1.0},
		{"half allocation", 50, 1.5},
		{"max allocation", 100, 2.0},
		{"clamped above max", 5000, 2.0},
		{"clamped below min", -10, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, StorageMultiplier(tt.storageGB), 1e-9)
		})
	}
}

func TestStorageMultiplierMonotonic(t *testing.T) {
	prev := StorageMultiplier(0)
	for gb := 1.0; gb <= 200; gb++ {
		cur := StorageMultiplier(gb)
		require.GreaterOrEqual(t, cur, prev, "storage multiplier decreased at %v GB", gb)
		prev = cur
	}
}

func TestHumanCheckMultiplier(t *testing.T) {
	tests := []struct {
		name   string
		passed int
		failed int
		want   float64
	}{
		{"no checks defaults to full", 0, 0, 1.0},
		{"all passed", 10, 0, 1.0},
		{"exactly 80 percent", 8, 2, 1.0},
		{"exactly 50 percent", 5, 5, 0.7},
		{"between 50 and 80", 3, 2, 0.7},
		{"below 50 percent", 2, 8, 0.3},
		{"all failed", 0, 5, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HumanCheckMultiplier(tt.passed, tt.failed))
		})
	}
}

func TestStakeMultiplierInclusiveThresholds(t *testing.T) {
	require.Equal(t, 1.0, StakeMultiplier(0))
	require.Equal(t, 1.0, StakeMultiplier(99.9))
	require.Equal(t, 1.2, StakeMultiplier(100))
	require.Equal(t, 1.2, StakeMultiplier(999))
	require.Equal(t, 1.5, StakeMultiplier(1000))
	require.Equal(t, 1.5, StakeMultiplier(1_000_000))
}

func TestSocialBoostCaps(t *testing.T) {
	// per-source caps
	require.InDelta(t, 0.05, SocialBoost(5, 0), 1e-9)
	require.InDelta(t, REFERRAL_BOOST_CAP, SocialBoost(500, 0), 1e-9)
	require.InDelta(t, TASK_BONUS_CAP, SocialBoost(0, 0.9), 1e-9)

	// aggregate cap wins over the sum of capped sources
	require.InDelta(t, SOCIAL_BOOST_CAP, SocialBoost(500, 0.9), 1e-9)

	// negatives are treated as zero
	require.InDelta(t, 0, SocialBoost(-3, -0.1), 1e-9)
}

func TestPaidBoostPercent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	require.Equal(t, 0.5, PaidBoostPercent("surge", &future, now))
	require.Equal(t, 1.0, PaidBoostPercent("overdrive", &future, now))
	require.Equal(t, 2.0, PaidBoostPercent("hibernate", &future, now))

	require.Equal(t, 0.0, PaidBoostPercent("surge", &past, now), "expired boost")
	require.Equal(t, 0.0, PaidBoostPercent("surge", &now, now), "expiry is exclusive")
	require.Equal(t, 0.0, PaidBoostPercent("", nil, now), "no active boost")
	require.Equal(t, 0.0, PaidBoostPercent("does-not-exist", &future, now), "unknown id falls back to no boost")
}

func TestLookupBoostUnknownID(t *testing.T) {
	_, ok := LookupBoost("surgee")
	require.False(t, ok)

	entry, ok := LookupBoost("surge")
	require.True(t, ok)
	require.Equal(t, 24*time.Hour, entry.Duration)
}

func TestBoostCatalogOrderedByStrength(t *testing.T) {
	entries := BoostCatalog()
	require.Len(t, entries, 3)
	require.Equal(t, "surge", entries[0].ID)
	require.Equal(t, "overdrive", entries[1].ID)
	require.Equal(t, "hibernate", entries[2].ID)
}

func TestPermanentHolderMultiplier(t *testing.T) {
	require.Equal(t, HOLDER_MULTIPLIER, PermanentHolderMultiplier(true))
	require.Equal(t, 1.0, PermanentHolderMultiplier(false))
}
