package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"sleepfi/internal/datastore/redis_store"
	"sleepfi/internal/models"

	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	tele "gopkg.in/telebot.v3"
)

// ServiceNotifier fans a completed distribution out to collaborators:
// redis pub/sub for the realtime UI push, an optional webhook, and an
// optional Telegram announcement. All channels are best effort; a failed
// notification never rolls back a committed distribution.
type ServiceNotifier struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	serviceConfig *ServiceConfig
	httpClient    *httpclient.Client
	botToken      string
}

func NewServiceNotifier(container *do.Injector, botToken string) (*ServiceNotifier, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(10*time.Second),
		httpclient.WithRetryCount(3),
		httpclient.WithRetrier(heimdall.NewRetrier(heimdall.NewConstantBackoff(2*time.Second, 500*time.Millisecond))),
	)

	return &ServiceNotifier{container, redisDB, serviceConfig, client, botToken}, nil
}

func (service *ServiceNotifier) NotifyDistributionCompleted(ctx context.Context, event *models.DistributionEvent) {
	if err := redis_store.PublishDistributionEvent(ctx, service.redisDB, event); err != nil {
		log.Println("distribution publish failed:", err)
	}

	if err := service.postWebhook(ctx, event); err != nil {
		log.Println("distribution webhook failed:", err)
	}

	if err := service.announce(ctx, event); err != nil {
		log.Println("distribution announcement failed:", err)
	}
}

func (service *ServiceNotifier) postWebhook(ctx context.Context, event *models.DistributionEvent) error {
	url, err := service.serviceConfig.GetStringConfig(ctx, CONFIG_DISTRIBUTION_WEBHOOK, "")
	if err != nil || url == "" {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	resp, err := service.httpClient.Post(url, bytes.NewReader(body), headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}

	return nil
}

func (service *ServiceNotifier) announce(ctx context.Context, event *models.DistributionEvent) error {
	if service.botToken == "" {
		return nil
	}

	chatIDStr, err := service.serviceConfig.GetStringConfig(ctx, CONFIG_ANNOUNCE_CHAT_ID, "")
	if err != nil || chatIDStr == "" {
		return nil
	}

	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return err
	}

	pref := tele.Settings{
		Token:  service.botToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(
		"🌙 Nightly distribution for %s complete!\n\n💤 %d points reported\n🪙 %d of %d tokens distributed\n👥 %d sleepers rewarded",
		event.Night, event.TotalPoints, event.TokensDistributed, event.PoolSize, event.ParticipantCount,
	)

	_, err = b.Send(&tele.Chat{ID: chatID}, text, &tele.SendOptions{ParseMode: tele.ModeHTML})
	return err
}
