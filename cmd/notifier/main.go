package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/producthub/storefront/internal/catalog"
	"github.com/producthub/storefront/internal/config"
	kafkax "github.com/producthub/storefront/internal/kafka"
	"github.com/producthub/storefront/internal/notify"
	"github.com/producthub/storefront/internal/orders"
	"github.com/producthub/storefront/internal/postgres"
	"github.com/producthub/storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalw("db connect", "err", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Products:          &catalog.Repo{DB: db},
		Redis:             rdb,
		Log:               log,
		LowStockThreshold: mustAtoi(os.Getenv("LOW_STOCK_THRESHOLD"), 5),
	}

	group := getenv("NOTIFIER_GROUP", "storefront-notifier")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), 4)

	for _, topic := range []string{orders.TopicOrderPlaced, orders.TopicOrderStatusChanged} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers, log)
		go func(topic string) {
			log.Infow("notifier consumer started", "group", group, "topic", topic, "workers", workers)
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				log.Errorw("consumer exit", "topic", topic, "err", err)
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down notifier...")
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
