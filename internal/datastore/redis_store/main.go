package redis_store

import (
	"context"
	"errors"
	"strings"

	"sleepfi/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const DISTRIBUTION_CHANNEL = "distribution:completed"

func dbKeyLeaderboard(name string) string {
	return "leaderboard:" + strings.ToLower(name)
}

func SetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, item *models.LeaderboardItem) (*models.LeaderboardItem, error) {
	if item.Wallet == "" {
		return nil, errors.New("invalid leaderboard item")
	}

	err := cmd.ZAdd(ctx, dbKeyLeaderboard(name), redis.Z{
		Score:  item.Score,
		Member: item.Wallet,
	}).Err()
	if err != nil {
		return nil, err
	}

	return item, nil
}

func GetLeaderboard(ctx context.Context, cmd redis.Cmdable, name string, limit int) ([]*models.LeaderboardItem, error) {
	zs, err := cmd.ZRevRangeWithScores(ctx, dbKeyLeaderboard(name), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	items := make([]*models.LeaderboardItem, 0, len(zs))
	for i, z := range zs {
		wallet, ok := z.Member.(string)
		if !ok {
			continue
		}
		items = append(items, &models.LeaderboardItem{
			Wallet: wallet,
			Score:  z.Score,
			Rank:   i + 1,
		})
	}

	return items, nil
}

func GetLeaderboardRank(ctx context.Context, cmd redis.Cmdable, name string, wallet string) (*models.LeaderboardItem, error) {
	rank, err := cmd.ZRevRank(ctx, dbKeyLeaderboard(name), wallet).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	score, err := cmd.ZScore(ctx, dbKeyLeaderboard(name), wallet).Result()
	if err != nil {
		return nil, err
	}

	return &models.LeaderboardItem{
		Wallet: wallet,
		Score:  score,
		Rank:   int(rank) + 1,
	}, nil
}

func ClearLeaderboard(ctx context.Context, cmd redis.Cmdable, name string) error {
	return cmd.Del(ctx, dbKeyLeaderboard(name)).Err()
}

// PublishDistributionEvent broadcasts a completed run to any subscribed
// collaborators (realtime UI push). Fire and forget.
func PublishDistributionEvent(ctx context.Context, cmd redis.Cmdable, event *models.DistributionEvent) error {
	b, err := msgpack.Marshal(event)
	if err != nil {
		return err
	}

	return cmd.Publish(ctx, DISTRIBUTION_CHANNEL, b).Err()
}
