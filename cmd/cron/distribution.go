package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"sleepfi/internal/datastore"
	"sleepfi/internal/services"

	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
)

type DistributionJob struct {
	Db                  *bun.DB
	ServiceDistribution *services.ServiceDistribution
}

func NewDistributionJob(db *bun.DB, serviceDistribution *services.ServiceDistribution) *DistributionJob {
	return &DistributionJob{
		Db:                  db,
		ServiceDistribution: serviceDistribution,
	}
}

func (j *DistributionJob) Start(cronRunner *cron.Cron) {
	timeline, err := datastore.GetConfigByKey(context.Background(), j.Db, services.CONFIG_CRONJOB_TIME_DISTRIBUTION)
	if err != nil {
		fmt.Println(err)
		return
	}

	spec := fmt.Sprintf("0 %d * * *", services.DEFAULT_DISTRIBUTION_HOUR_UTC)
	if timeline != nil && timeline.Value != "" {
		spec = timeline.Value
	}

	_, err = cronRunner.AddFunc(spec, j.runScheduledTask)
	log.Println("Distribution cronjob start at:", time.Now().Format("2006-01-02 15:04:05"), "cron:", spec, err)

	// catch up on a missed night immediately; re-entry is a no-op
	j.runScheduledTask()
}

func (j *DistributionJob) runScheduledTask() {
	ctx := context.Background()
	log.Println("Start nightly distribution ...")

	result, err := j.ServiceDistribution.RunDailyDistribution(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}

	if result.Skipped {
		log.Println("Distribution skipped:", result.Night, result.Reason)
		return
	}

	log.Printf("Distribution done: night=%s participants=%d points=%d pool=%d tokens=%d\n",
		result.Night, result.ParticipantCount, result.TotalPoints, result.PoolSize, result.TokensDistributed)
}
