package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/city-traffic/internal/auth"
	"github.com/ukydev/city-traffic/internal/broker"
	"github.com/ukydev/city-traffic/internal/config"
	"github.com/ukydev/city-traffic/internal/db"
	"github.com/ukydev/city-traffic/internal/handlers"
	"github.com/ukydev/city-traffic/internal/runner"
	"github.com/ukydev/city-traffic/internal/sim"
)

// app is a fully wired server.
type app struct {
	runID   string
	runner  *runner.Runner
	journal *runner.Journal
	handler http.Handler
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func configureLogging(level, format string) {
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// newApp connects the optional sinks and builds the world, runner and router.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{runID: uuid.NewString()}
	logger := log.WithField("run_id", a.runID)

	var sinks []runner.AccidentSink
	var history db.AccidentCollection
	var runnerOpts []runner.Option

	if cfg.Server.MongoURI != "" {
		client, err := db.ConnectMongo(ctx, cfg.Server.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })

		coll := db.NewAccidentCollection(client, cfg.Server.MongoDB)
		if err := coll.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Warn("Failed to create accident indexes")
		}
		sinks = append(sinks, coll)
		history = coll
		logger.WithField("database", cfg.Server.MongoDB).Info("Connected to MongoDB")
	}

	if cfg.Server.MQTTBroker != "" {
		client, err := broker.Connect(cfg.Server.MQTTBroker, "city-traffic-"+a.runID[:8])
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		a.closers = append(a.closers, func() { client.Disconnect(250) })

		pub := broker.NewPublisher(client, cfg.Server.MQTTTopic)
		sinks = append(sinks, runner.AccidentSinkFunc(pub.PublishAccident))
		runnerOpts = append(runnerOpts, runner.WithSnapshotSink(pub, cfg.Server.MQTTEvery))
		logger.WithFields(log.Fields{
			"broker": cfg.Server.MQTTBroker,
			"topic":  cfg.Server.MQTTTopic,
		}).Info("Connected to MQTT broker")
	}

	a.journal = runner.NewJournal(256, sinks...)

	world, err := sim.NewWorld(cfg, rand.New(rand.NewSource(cfg.Simulation.Seed)),
		sim.WithRunID(a.runID),
		sim.WithLogger(logger.WithField("component", "sim")),
		sim.WithAccidentHandler(a.journal.Record),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	runnerOpts = append(runnerOpts,
		runner.WithLogger(logger.WithField("component", "runner")),
		runner.WithStatsEvery(cfg.Simulation.StatsEvery),
	)
	a.runner = runner.New(world, cfg.TickInterval(), runnerOpts...)

	authService := auth.NewService(cfg.Server)
	if !authService.OperatorEnabled() {
		logger.Warn("OPERATOR_PASSWORD_HASH not set, command endpoints are open")
	}
	a.handler = handlers.NewRouter(handlers.NewSimHandler(a.runner, history), authService, logger.WithField("component", "http"))

	logger.WithFields(log.Fields{
		"seed":         cfg.Simulation.Seed,
		"fps":          cfg.Simulation.FPS,
		"max_vehicles": cfg.Simulation.MaxVehicles,
		"journal":      len(sinks),
	}).Info("Simulation configured")
	return a, nil
}

func run(ctx context.Context, cfg config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	go a.journal.Run(ctx)
	go a.runner.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

func main() {
	configureLogging(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("Server failed")
	}
}
