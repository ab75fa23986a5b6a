package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // драйвер postgres
	_ "modernc.org/sqlite"
)

// DriverPostgres имя драйвера lib/pq
const DriverPostgres = "postgres"

// Open подключается к базе и проверяет соединение.
// Для SQLite включаются внешние ключи и остается одно соединение:
// база ":memory:" живет ровно столько, сколько ее соединение.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB connection string (dsn) cannot be empty")
	}
	if driver == DriverSQLite {
		dsn = withForeignKeys(dsn)
	}

	logger.Info("Connecting to database...", slog.String("driver", driver))
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		logger.Error("Failed to connect to database", slog.String("driver", driver), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", slog.String("error", err.Error()))
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	logger.Info("Successfully connected to database.", slog.String("driver", driver))
	return db, nil
}

func withForeignKeys(dsn string) string {
	const pragma = "_pragma=foreign_keys(1)"
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragma
	}
	return dsn + "?" + pragma
}
