package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"holdem-server/internal/config"
	"holdem-server/internal/jwt"
	"holdem-server/internal/mux"
	"holdem-server/pkg/evaluator"
	"holdem-server/pkg/events"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/room"
	"holdem-server/pkg/store"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10
const shutdownTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", "", "the listen address, overrides http.addr")

func main() {
	flag.Parse()
	setupLogger()

	cfg := config.Instance()

	// fail fast
	jwt.LoadKeys()

	s, closeStore := openStore(cfg)
	defer closeStore()

	recorder, closeEvents := openEvents(cfg)
	defer closeEvents()

	pitBoss := room.NewPitBoss(room.Options{
		Serialize:   cfg.Room.Serialize,
		TurnTimeout: cfg.Room.TurnTimeoutDuration(),
	})

	engine := holdem.NewEngine(s, evaluator.New(), nil, holdem.Options{
		MaxPlayers:          cfg.Room.MaxPlayers,
		StartingMoney:       cfg.Room.StartingMoney,
		HighRollerThreshold: cfg.Room.HighRollerThreshold,
		Flag:                cfg.Room.Flag,
		Recorder:            events.Multi(pitBoss, recorder, events.LogRecorder(logrus.StandardLogger())),
	})
	pitBoss.StartShift(engine)
	defer pitBoss.EndShift()

	games, err := pitBoss.Bootstrap(context.Background(), cfg.Room.Names)
	if err != nil {
		logrus.WithError(err).Fatal("could not create rooms")
	}
	logrus.WithField("rooms", len(games)).Info("rooms ready")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedHeaders:   []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: len(cfg.HTTP.CORSOrigins) > 0,
	})

	m := mux.NewMux(engine, pitBoss, mux.Options{
		Version:         Version,
		RecaptchaSecret: cfg.RecaptchaSecret,
		JoinRateLimit:   cfg.HTTP.RateLimit,
	})

	listenAddr := cfg.HTTP.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      loggingHandler(c.Handler(m)),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logrus.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("could not shut down cleanly")
		}
	}()

	logrus.WithField("addr", srv.Addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Error("server stopped")
	}
}

// openStore returns the configured store and a func to release it
func openStore(cfg config.Config) (store.Store, func()) {
	switch cfg.Store.Driver {
	case config.DriverMemory, "":
		logrus.Warn("using the in-memory store, rooms are lost on restart")
		return store.NewMemoryStore(), func() {}
	case config.DriverPostgres:
		db, err := store.OpenPostgres(cfg.PGDSN)
		if err != nil {
			logrus.WithError(err).Fatal("could not connect to database")
		}

		// run the db migrations
		if err := store.Migrate(db, cfg.MigrationsPath); err != nil {
			logrus.WithError(err).Fatal("could not run migrations")
		}

		return store.NewPostgresStore(db), func() {
			_ = db.Close()
		}
	}

	logrus.WithField("driver", cfg.Store.Driver).Fatal("unknown store driver")
	return nil, nil
}

// openEvents connects the NATS recorder when a URL is configured
func openEvents(cfg config.Config) (holdem.Recorder, func()) {
	if cfg.NATS.URL == "" {
		return nil, func() {}
	}

	conn, err := events.Connect(cfg.NATS.URL, cfg.NATS.Token)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to nats")
	}

	logrus.WithField("url", cfg.NATS.URL).Info("publishing hand events")
	return events.NewNATSRecorder(conn, cfg.NATS.Subject, logrus.StandardLogger()), conn.Close
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
