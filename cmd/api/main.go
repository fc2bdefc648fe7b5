package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ceylonkart/storefront/internal/catalog"
	"github.com/ceylonkart/storefront/internal/config"
	"github.com/ceylonkart/storefront/internal/httpx"
	kafkax "github.com/ceylonkart/storefront/internal/kafka"
	"github.com/ceylonkart/storefront/internal/orders"
	"github.com/ceylonkart/storefront/internal/payhere"
	"github.com/ceylonkart/storefront/internal/postgres"
	"github.com/ceylonkart/storefront/internal/promo"
	"github.com/ceylonkart/storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	createdProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	createdProd.Start(ctx)
	paymentProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicPaymentUpdated, 1024)
	paymentProd.Start(ctx)

	gateway := payhere.Config{
		MerchantID:     cfg.PayHere.MerchantID,
		MerchantSecret: cfg.PayHere.MerchantSecret,
		ReturnURL:      cfg.PayHere.ReturnURL,
		CancelURL:      cfg.PayHere.CancelURL,
		NotifyURL:      strings.TrimRight(cfg.BaseURL, "/") + "/api/orders/payhere-notify",
		Currency:       cfg.PayHere.Currency,
		Sandbox:        cfg.PayHere.Sandbox,
	}
	if gateway.MerchantSecret == "" {
		log.Printf("WARNING PAYHERE_MERCHANT_SECRET not set; checkout and notify verification will refuse to run")
	}

	// Handlers
	router := httpx.NewRouter()
	ph := &httpx.PromoHandler{Store: &promo.Repo{DB: db}}
	ph.Register(router)
	oh := &httpx.OrdersHandler{
		Store:           &orders.Repo{DB: db},
		Gateway:         gateway,
		Redis:           rdb,
		CreatedProducer: createdProd,
		PaymentProducer: paymentProd,
		Service:         cfg.ServiceName,
	}
	oh.Register(router)
	ch := &httpx.CatalogHandler{Store: &catalog.Repo{DB: db}}
	ch.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	createdProd.Close()
	paymentProd.Close()
	cancel()
	createdProd.WaitClosed()
	paymentProd.WaitClosed()
}
