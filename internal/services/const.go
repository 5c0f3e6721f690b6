package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrSessionLock = errors.New("session report locked")
var ErrDistributionLock = errors.New("distribution run locked")
var ErrBoostLock = errors.New("boost purchase locked")
var ErrNoActiveSeason = errors.New("no active season")

const (
	CONFIG_SERVER_MODE               = "SERVER_MODE"
	CONFIG_TOTAL_SEASON_POOL         = "TOTAL_SEASON_POOL"
	CONFIG_DISTRIBUTION_HOUR_UTC     = "DISTRIBUTION_HOUR_UTC"
	CONFIG_CRONJOB_TIME_DISTRIBUTION = "CRONJOB_TIME_DISTRIBUTION"
	CONFIG_LEADERBOARD_LIMIT         = "LEADERBOARD_LIMIT"
	CONFIG_AUTH_REQUIRED             = "AUTH_REQUIRED"
	CONFIG_DISTRIBUTION_WEBHOOK      = "DISTRIBUTION_WEBHOOK_URL"
	CONFIG_ANNOUNCE_CHAT_ID          = "ANNOUNCE_CHAT_ID"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	LEADERBOARD_POINTS = "points"

	DEFAULT_TOTAL_SEASON_POOL     = int64(1_000_000_000)
	DEFAULT_DISTRIBUTION_HOUR_UTC = 9
	DEFAULT_LEADERBOARD_LIMIT     = 20

	SESSION_REPORT_RATE_LIMIT_PER_MINUTE = 10

	CACHE_TTL_5_SECONDS  = 5 * time.Second
	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute
	CACHE_TTL_15_MINS    = 15 * time.Minute
	CACHE_TTL_1_HOUR     = 1 * time.Hour
)

func LockKeyWalletSession(wallet string) string {
	return fmt.Sprintf("lock:wallet-session:%s", wallet)
}

func LockKeyWalletBoost(wallet string) string {
	return fmt.Sprintf("lock:wallet-boost:%s", wallet)
}

func LockKeyDistribution(night string) string {
	return fmt.Sprintf("lock:distribution:%s", night)
}

// db
func DBKeyParticipant(wallet string) string {
	return fmt.Sprintf("participant:%s", wallet)
}

func DBKeyParticipantBalance(wallet string) string {
	return fmt.Sprintf("participant:%s:balance", wallet)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeySeasonState() string {
	return "season:active"
}

func DBKeyParticipantCount() string {
	return "participant:count"
}

func DBKeyLeaderboard(name string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%d", strings.ToLower(name), limit)
}

func DBKeyRecentDistributions(limit int) string {
	return fmt.Sprintf("distributions:recent:%d", limit)
}

func LimitKeySessionReport(wallet string) string {
	return fmt.Sprintf("limit:session-report:%s", wallet)
}
