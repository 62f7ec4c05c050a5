package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/solcache/internal/auth"
	"github.com/example/solcache/internal/chain"
	"github.com/example/solcache/internal/config"
	"github.com/example/solcache/internal/handlers"
	"github.com/example/solcache/internal/httpapi"
	"github.com/example/solcache/internal/rate"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.Load()
	if cfg.RPCURL == "" {
		log.Warn("SOLANA_RPC_URL is empty; balance lookups will fail until it is set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.WithError(err).Fatal("mongo connect")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	store, err := auth.NewMongoKeyStore(ctx, mongoClient, cfg.MongoDB, cfg.KeyCacheTTL)
	if err != nil {
		log.WithError(err).Fatal("api key store init")
	}

	fetcher := chain.NewClient(cfg.RPCURL, cfg.Commitment)
	bh := handlers.NewBalanceHandler(handlers.BalanceDeps{
		Fetcher:        fetcher,
		Timeout:        cfg.BalanceTimeout,
		MaxConcurrency: cfg.MaxConcurrency,

		CacheTTL:          cfg.CacheTTL,
		CacheMaxEvicted:   cfg.CacheMaxEvicted,
		CacheScanInterval: cfg.CacheScanInterval,
	})

	lm := rate.NewLimiterMap(cfg.RateLimitRPM, cfg.RateLimitRPM, 5*time.Minute)
	defer lm.Stop()

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Balances:   bh,
		Admin:      handlers.NewAdminHandler(store, cfg.AdminToken),
		Signup:     handlers.NewSignupHandler(store),
		Limiter:    lm,
		Store:      store,
		AdminToken: cfg.AdminToken,
	})

	srv := &http.Server{
		Addr:         ":" + sanitizePort(cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
