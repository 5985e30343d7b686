// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gaems12/connection-hub/internal/app"
	"github.com/gaems12/connection-hub/internal/centrifugo"
	"github.com/gaems12/connection-hub/internal/config"
	"github.com/gaems12/connection-hub/internal/consumer"
	"github.com/gaems12/connection-hub/internal/database"
	"github.com/gaems12/connection-hub/internal/events"
	"github.com/gaems12/connection-hub/internal/executor"
	"github.com/gaems12/connection-hub/internal/scheduling"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	rdb, err := database.Connect(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("redis connection failed")
	}
	defer rdb.Close()

	nc, err := nats.Connect(cfg.NATSURL, nats.Name("connection-hub"))
	if err != nil {
		log.WithError(err).Fatal("nats connection failed")
	}
	defer nc.Drain()

	js, err := nc.JetStream()
	if err != nil {
		log.WithError(err).Fatal("jetstream context failed")
	}
	if err := events.EnsureStream(js); err != nil {
		log.WithError(err).Fatal("stream bootstrap failed")
	}

	runtime := app.NewRuntime(
		rdb,
		events.NewPublisher(js, log),
		centrifugo.NewClient(cfg.CentrifugoURL, cfg.CentrifugoAPIKey, log),
		log,
		cfg.LockTTL,
		cfg.LobbyTTL,
		cfg.GameTTL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.New(js, runtime, log).Run(ctx)
	})
	g.Go(func() error {
		return scheduling.NewRunner(rdb, executor.New(runtime, log), log).Run(ctx)
	})

	log.Info("connection hub started")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("shutdown with error")
	}
	log.Info("connection hub stopped")
}
