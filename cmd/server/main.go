package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hoteza-pos/api/internal/config"
	"github.com/hoteza-pos/api/internal/events"
	"github.com/hoteza-pos/api/internal/kv"
	"github.com/hoteza-pos/api/internal/logger"
	"github.com/hoteza-pos/api/internal/repository"
	"github.com/hoteza-pos/api/internal/router"
	"github.com/hoteza-pos/api/internal/scheduler"
	"github.com/hoteza-pos/api/internal/service"
	"github.com/hoteza-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()

	sugar, err := logger.New(cfg.LogMode, cfg.LogFile)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer sugar.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// storage
	store, err := kv.Open(ctx, kv.Options{
		Driver:        cfg.StoreDriver,
		BoltPath:      cfg.BoltPath,
		DatabaseURL:   cfg.DatabaseURL,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		Prefix:        cfg.StoreKeyPrefix,
		Timeout:       cfg.StoreTimeout,
	})
	if err != nil {
		sugar.Fatalw("failed to open store", "driver", cfg.StoreDriver, "error", err)
	}
	sugar.Infow("store opened", "driver", cfg.StoreDriver)

	// events
	hub := ws.NewHub(sugar)
	publishers := events.Fanout{hub}

	var broker *events.RabbitMQ
	if cfg.AMQPURL != "" {
		broker, err = events.DialRabbitMQ(cfg.AMQPURL, sugar)
		if err != nil {
			sugar.Fatalw("failed to connect to RabbitMQ", "error", err)
		}
		publishers = append(publishers, broker)
		sugar.Infow("connected to RabbitMQ", "exchange", events.Exchange)
	}

	loc := cfg.Location()
	st, err := service.LoadState(ctx, repository.New(store, sugar), service.Options{
		Location:  loc,
		Publisher: publishers,
		Logger:    sugar,
	})
	if err != nil {
		sugar.Fatalw("failed to load state", "error", err)
	}
	svc := service.NewServices(st, nil)

	// Session start resets yesterday's counter before the first request.
	sched, err := scheduler.New(loc, svc.Gate, st.Today, sugar)
	if err != nil {
		sugar.Fatalw("failed to init scheduler", "error", err)
	}
	sched.Rollover(ctx)
	sched.Start()

	go hub.Run(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router.New(cfg, svc, hub, sugar),
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error, 1)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		sugar.Infow("signal caught", "signal", s.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		err := srv.Shutdown(shutdownCtx)
		sched.Stop(shutdownCtx)
		cancel()

		if broker != nil {
			if err := broker.Close(); err != nil {
				sugar.Errorw("error closing RabbitMQ", "error", err)
			}
		}
		if err := store.Close(); err != nil {
			sugar.Errorw("error closing store", "error", err)
		}
		shutdown <- err
	}()

	sugar.Infow("server has started", "addr", srv.Addr, "timezone", loc.String())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("server failed", "error", err)
	}
	if err := <-shutdown; err != nil {
		sugar.Errorw("shutdown failed", "error", err)
	}
	sugar.Infow("server has stopped", "addr", srv.Addr)
}
