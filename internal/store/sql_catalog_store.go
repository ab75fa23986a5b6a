package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"filmorate/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SQLCatalogStore читает справочники из таблиц genres и mpa_ratings,
// заполненных Bootstrap.
type SQLCatalogStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewSQLCatalogStore(db *sqlx.DB, logger *slog.Logger) (*SQLCatalogStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &SQLCatalogStore{db: db, logger: logger}, nil
}

func (s *SQLCatalogStore) GetAllGenres(ctx context.Context) ([]domain.Genre, error) {
	genres := []domain.Genre{}
	if err := s.db.SelectContext(ctx, &genres, `SELECT genre_id, name FROM genres ORDER BY genre_id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list genres from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (s *SQLCatalogStore) GetGenreByID(ctx context.Context, id int) (domain.Genre, error) {
	var genre domain.Genre
	err := s.db.GetContext(ctx, &genre, s.db.Rebind(`SELECT genre_id, name FROM genres WHERE genre_id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Genre not found by ID in DB", slog.Int("genreID", id))
			return domain.Genre{}, fmt.Errorf("unknown genre id %d: %w", id, domain.ErrInvalidReference)
		}
		return domain.Genre{}, fmt.Errorf("failed to get genre by ID: %w", err)
	}
	return genre, nil
}

func (s *SQLCatalogStore) GetAllRatings(ctx context.Context) ([]domain.MpaRating, error) {
	ratings := []domain.MpaRating{}
	if err := s.db.SelectContext(ctx, &ratings, `SELECT mpa_id, name FROM mpa_ratings ORDER BY mpa_id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list ratings from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}

func (s *SQLCatalogStore) GetRatingByID(ctx context.Context, id int) (domain.MpaRating, error) {
	var rating domain.MpaRating
	err := s.db.GetContext(ctx, &rating, s.db.Rebind(`SELECT mpa_id, name FROM mpa_ratings WHERE mpa_id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Rating not found by ID in DB", slog.Int("mpaID", id))
			return domain.MpaRating{}, fmt.Errorf("unknown rating id %d: %w", id, domain.ErrInvalidReference)
		}
		return domain.MpaRating{}, fmt.Errorf("failed to get rating by ID: %w", err)
	}
	return rating, nil
}
