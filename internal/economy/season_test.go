package economy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeasonWeeks(t *testing.T) {
	tests := []struct {
		participants int
		want         int
	}{
		{0, 16},
		{500, 16},
		{999, 16},
		{1_000, 15},
		{3_000, 15},
		{5_000, 14},
		{10_000, 12},
		{25_000, 10},
		{50_000, 8},
		{100_000, 8},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, SeasonWeeks(tt.participants), "participants=%d", tt.participants)
	}
}

func TestNightlyPool(t *testing.T) {
	// 16 weeks -> 112 nights
	require.Equal(t, int64(1_000_000_000/112), NightlyPool(500, 1_000_000_000))
	// 8 weeks -> 56 nights
	require.Equal(t, int64(1_000_000_000/56), NightlyPool(100_000, 1_000_000_000))
	// floor division
	require.Equal(t, int64(0), NightlyPool(500, 111))
}

func TestDifficultyByWeek(t *testing.T) {
	require.Equal(t, 1.0, DifficultyByWeek(1, 16))
	require.InDelta(t, 0.2, DifficultyByWeek(16, 16), 1e-9)

	// past the final week is treated as the final week
	require.InDelta(t, 0.2, DifficultyByWeek(40, 16), 1e-9)

	// single-week season never divides by zero
	require.Equal(t, 1.0, DifficultyByWeek(1, 1))
}

func TestDifficultyStaysInRange(t *testing.T) {
	for _, maxWeeks := range []int{1, 8, 10, 12, 14, 15, 16} {
		for week := 1; week <= maxWeeks+5; week++ {
			d := DifficultyByWeek(week, maxWeeks)
			require.GreaterOrEqual(t, d, DIFFICULTY_FLOOR, "week=%d max=%d", week, maxWeeks)
			require.LessOrEqual(t, d, 1.0, "week=%d max=%d", week, maxWeeks)
		}
	}
}
