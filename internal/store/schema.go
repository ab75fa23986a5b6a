package store

import (
	"context"
	"fmt"
	"log/slog"

	"filmorate/internal/catalog"

	"github.com/jmoiron/sqlx"
)

// DriverSQLite имя драйвера modernc.org/sqlite
const DriverSQLite = "sqlite"

func isSQLite(db *sqlx.DB) bool {
	return db.DriverName() == DriverSQLite
}

func schemaStatements(sqlite bool) []string {
	idColumn := "BIGSERIAL PRIMARY KEY"
	if sqlite {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS genres (
			genre_id INTEGER PRIMARY KEY,
			name     VARCHAR(64) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS mpa_ratings (
			mpa_id INTEGER PRIMARY KEY,
			name   VARCHAR(16) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS films (
			film_id      ` + idColumn + `,
			name         VARCHAR(255) NOT NULL,
			description  VARCHAR(200) NOT NULL DEFAULT '',
			release_date DATE NOT NULL,
			duration     INTEGER NOT NULL CHECK (duration > 0),
			mpa_id       INTEGER NOT NULL REFERENCES mpa_ratings (mpa_id)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id  ` + idColumn + `,
			name     VARCHAR(255) NOT NULL,
			email    VARCHAR(255) NOT NULL,
			login    VARCHAR(255) NOT NULL,
			birthday DATE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS film_genres (
			film_id  BIGINT NOT NULL REFERENCES films (film_id),
			genre_id INTEGER NOT NULL REFERENCES genres (genre_id),
			position INTEGER NOT NULL,
			PRIMARY KEY (film_id, genre_id)
		)`,
		`CREATE TABLE IF NOT EXISTS film_likes (
			film_id BIGINT NOT NULL REFERENCES films (film_id),
			user_id BIGINT NOT NULL REFERENCES users (user_id),
			PRIMARY KEY (film_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_friends (
			user_id   BIGINT NOT NULL REFERENCES users (user_id),
			friend_id BIGINT NOT NULL REFERENCES users (user_id),
			PRIMARY KEY (user_id, friend_id)
		)`,
	}
}

// Bootstrap создает таблицы, если их нет, и заполняет справочники жанров и рейтингов.
// Повторный вызов ничего не меняет.
func Bootstrap(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	logger.InfoContext(ctx, "Bootstrapping database schema", slog.String("driver", db.DriverName()))

	for _, stmt := range schemaStatements(isSQLite(db)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return withTx(ctx, db, func(tx *sqlx.Tx) error {
		genreQuery := tx.Rebind(`INSERT INTO genres (genre_id, name) VALUES (?, ?) ON CONFLICT DO NOTHING`)
		for _, g := range catalog.Genres {
			if _, err := tx.ExecContext(ctx, genreQuery, g.ID, g.Name); err != nil {
				return fmt.Errorf("failed to seed genre %d: %w", g.ID, err)
			}
		}
		ratingQuery := tx.Rebind(`INSERT INTO mpa_ratings (mpa_id, name) VALUES (?, ?) ON CONFLICT DO NOTHING`)
		for _, r := range catalog.Ratings {
			if _, err := tx.ExecContext(ctx, ratingQuery, r.ID, r.Name); err != nil {
				return fmt.Errorf("failed to seed rating %d: %w", r.ID, err)
			}
		}
		logger.DebugContext(ctx, "Catalog tables seeded",
			slog.Int("genres", len(catalog.Genres)), slog.Int("ratings", len(catalog.Ratings)))
		return nil
	})
}
