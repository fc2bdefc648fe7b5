package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ceylonkart/storefront/internal/catalog"
	"github.com/ceylonkart/storefront/internal/config"
	"github.com/ceylonkart/storefront/internal/fulfillment"
	kafkax "github.com/ceylonkart/storefront/internal/kafka"
	"github.com/ceylonkart/storefront/internal/orders"
	"github.com/ceylonkart/storefront/internal/postgres"
	"github.com/ceylonkart/storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &fulfillment.Service{
		DB:          db,
		Catalog:     &catalog.Repo{DB: db},
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-fulfillment",
	}

	workers := 4
	if v := os.Getenv("FULFILLMENT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, "fulfillment", orders.TopicPaymentUpdated, workers)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("shutting down...")
		cancel()
	}()

	log.Printf("fulfillment consuming %s", orders.TopicPaymentUpdated)
	if err := cons.Start(ctx, svc.HandlePaymentUpdated); err != nil {
		log.Fatalf("consumer: %v", err)
	}
}
