package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"sleepfi/internal/datastore"
	"sleepfi/internal/datastore/redis_store"
	"sleepfi/internal/models"
	"sleepfi/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigSeed(),
			commandLeaderboardSeed(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableParticipant(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableSleepSession(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableSeasonState(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableDistributionRecord(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			log.Println("migration done")
			return nil
		},
	}
}

func commandConfigSeed() *cli.Command {
	return &cli.Command{
		Name: "seed-config",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			seeds := []models.Config{
				{Key: services.CONFIG_SERVER_MODE, Value: services.SERVER_MODE_PRODUCTION},
				{Key: services.CONFIG_TOTAL_SEASON_POOL, Value: fmt.Sprintf("%d", services.DEFAULT_TOTAL_SEASON_POOL)},
				{Key: services.CONFIG_DISTRIBUTION_HOUR_UTC, Value: fmt.Sprintf("%d", services.DEFAULT_DISTRIBUTION_HOUR_UTC)},
				{Key: services.CONFIG_CRONJOB_TIME_DISTRIBUTION, Value: fmt.Sprintf("0 %d * * *", services.DEFAULT_DISTRIBUTION_HOUR_UTC)},
				{Key: services.CONFIG_LEADERBOARD_LIMIT, Value: fmt.Sprintf("%d", services.DEFAULT_LEADERBOARD_LIMIT)},
				{Key: services.CONFIG_AUTH_REQUIRED, Value: "true"},
			}

			for _, seed := range seeds {
				if err := datastore.InsertConfig(ctx, db, seed); err != nil {
					log.Fatal(err)
				}
			}

			log.Println("config seeded")
			return nil
		},
	}
}

// seed-leaderboard rebuilds the points board from the participant table, for
// a fresh redis or after a flush.
func commandLeaderboardSeed() *cli.Command {
	return &cli.Command{
		Name: "seed-leaderboard",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}
			redisDB, err := getRedis()
			if err != nil {
				log.Fatal(err)
			}

			if err := redis_store.ClearLeaderboard(ctx, redisDB, services.LEADERBOARD_POINTS); err != nil {
				log.Fatal(err)
			}

			limit := 100
			offset := 0
			for {
				participants, err := datastore.ListParticipants(ctx, db, limit, offset)
				if err != nil {
					log.Fatal(err)
				}
				if len(participants) == 0 {
					break
				}
				offset += limit

				for _, participant := range participants {
					_, err := redis_store.SetLeaderboard(ctx, redisDB, services.LEADERBOARD_POINTS, &models.LeaderboardItem{
						Wallet: participant.Wallet,
						Score:  float64(participant.PointBalance),
					})
					if err != nil {
						log.Fatal(err)
					}
				}

				log.Println("seeded", offset, "participants")
			}

			log.Println("leaderboard seeded")
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func getRedis() (redis.UniversalClient, error) {
	clusterURL := os.Getenv("CLUSTER_REDIS_DB")
	if clusterURL != "" {
		clusterOpts, err := redis.ParseClusterURL(clusterURL)
		if err != nil {
			return nil, err
		}
		return redis.NewClusterClient(clusterOpts), nil
	}

	return db.InitRedis(&db.RedisConfig{
		URL: os.Getenv("REDIS_DB"),
	})
}
