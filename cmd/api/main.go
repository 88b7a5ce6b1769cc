package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/producthub/storefront/internal/catalog"
	"github.com/producthub/storefront/internal/config"
	"github.com/producthub/storefront/internal/httpx"
	kafkax "github.com/producthub/storefront/internal/kafka"
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

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalw("db connect", "err", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: one per topic
	placed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, log)
	placed.Start(ctx)
	status := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, log)
	status.Start(ctx)

	// core + handlers
	svc := &orders.Service{Store: &orders.PGStore{DB: db}}
	router := httpx.NewRouter()

	oh := &httpx.OrdersHandler{
		Svc:            svc,
		Redis:          rdb,
		PlacedProducer: placed,
		StatusProducer: status,
		Service:        cfg.ServiceName,
	}
	oh.Register(router)

	ph := &httpx.ProductsHandler{Repo: &catalog.Repo{DB: db}}
	ph.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Infow("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen", "err", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	placed.Close() // close inbox -> flush & close writer
	status.Close()
	cancel()
	placed.WaitClosed()
	status.WaitClosed()
}
