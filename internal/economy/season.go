package economy

const (
	SEASON_MAX_WEEKS = 16
	SEASON_MIN_WEEKS = 8

	DIFFICULTY_FLOOR = 0.2
)

// SeasonWeeks shortens the season as adoption grows. Higher adoption means a
// shorter season and a larger nightly pool, which rewards early adopters.
func SeasonWeeks(activeParticipants int) int {
	switch {
	case activeParticipants < 1_000:
		return 16
	case activeParticipants < 5_000:
		return 15
	case activeParticipants < 10_000:
		return 14
	case activeParticipants < 25_000:
		return 12
	case activeParticipants < 50_000:
		return 10
	default:
		return SEASON_MIN_WEEKS
	}
}

// NightlyPool splits the season pool evenly across every night of the season,
// floored. SeasonWeeks never returns 0, so this never divides by zero.
func NightlyPool(activeParticipants int, totalSeasonPool int64) int64 {
	nights := int64(SeasonWeeks(activeParticipants)) * 7
	return totalSeasonPool / nights
}

// DifficultyByWeek decays linearly from 1.0 at week 1 to DIFFICULTY_FLOOR at
// the final week. Week indexes past maxWeeks are treated as the final week
// rather than extrapolating below the floor.
func DifficultyByWeek(weekIndex, maxWeeks int) float64 {
	if weekIndex < 1 {
		weekIndex = 1
	}
	if maxWeeks < 1 {
		maxWeeks = 1
	}
	if weekIndex > maxWeeks {
		weekIndex = maxWeeks
	}

	denom := maxWeeks - 1
	if denom < 1 {
		denom = 1
	}

	difficulty := 1.0 - 0.8*float64(weekIndex-1)/float64(denom)
	if difficulty < DIFFICULTY_FLOOR {
		difficulty = DIFFICULTY_FLOOR
	}
	if difficulty > 1.0 {
		difficulty = 1.0
	}

	return difficulty
}
