package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORAGE", "DATABASE_URL", "HTTP_PORT", "GRPC_PORT", "LOG_LEVEL", "TOP_FILMS_DEFAULT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageMemory || cfg.HTTPPort != "8080" || cfg.GRPCPort != "9092" || cfg.TopFilmsDefault != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("unexpected level: %v", cfg.SlogLevel())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://film:secret@db:5432/filmorate?sslmode=disable")
	t.Setenv("HTTP_PORT", "8181")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TOP_FILMS_DEFAULT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StoragePostgres || cfg.HTTPPort != "8181" || cfg.TopFilmsDefault != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("unexpected level: %v", cfg.SlogLevel())
	}
	if got := maskPassword(cfg.DatabaseURL); got != "postgres://film:********@db:5432/filmorate?sslmode=disable" {
		t.Fatalf("password not masked: %s", got)
	}
}

func TestLoadRejectsBadStorage(t *testing.T) {
	t.Setenv("STORAGE", "mongo")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown storage")
	}

	t.Setenv("STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for postgres without DATABASE_URL")
	}
}

func TestLoadSQLiteDefaultDSN(t *testing.T) {
	t.Setenv("STORAGE", "sqlite")
	t.Setenv("DATABASE_URL", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "file:filmorate.db" {
		t.Fatalf("unexpected sqlite dsn: %s", cfg.DatabaseURL)
	}
}
