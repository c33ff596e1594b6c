package main

import (
	"database/sql"
	"time"

	"holdem-server/internal/config"
	"holdem-server/pkg/store"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Instance()
	db := waitForDB(cfg.PGDSN)
	defer db.Close()

	if err := store.Migrate(db, cfg.MigrationsPath); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	logrus.Info("migrations complete")
}

func waitForDB(dsn string) *sql.DB {
	timeout := time.NewTimer(time.Second * 10)
	defer timeout.Stop()

	for {
		db, err := store.OpenPostgres(dsn)
		if err == nil {
			return db
		}

		logrus.WithError(err).Debug("database not ready")

		select {
		case <-timeout.C:
			logrus.WithError(err).Fatal("could not connect to database")
		case <-time.After(time.Millisecond * 500):
		}
	}
}
