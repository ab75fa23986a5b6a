// Package service связывает хранилища: проверяет существование фильмов и
// пользователей перед изменением связей и считает производные выборки.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"filmorate/internal/domain"
	"filmorate/internal/store"
)

// DefaultTopCount размер топа, если клиент не указал count
const DefaultTopCount = 10

type FilmService struct {
	films    store.FilmStore
	users    store.UserStore
	topLimit int
	logger   *slog.Logger
}

// NewFilmService создает сервис фильмов. topLimit <= 0 заменяется на DefaultTopCount.
func NewFilmService(films store.FilmStore, users store.UserStore, topLimit int, logger *slog.Logger) *FilmService {
	if topLimit <= 0 {
		topLimit = DefaultTopCount
	}
	return &FilmService{films: films, users: users, topLimit: topLimit, logger: logger}
}

func (s *FilmService) AddFilm(ctx context.Context, film domain.Film) (domain.Film, error) {
	return s.films.AddFilm(ctx, film)
}

func (s *FilmService) UpdateFilm(ctx context.Context, film domain.Film) (domain.Film, error) {
	return s.films.UpdateFilm(ctx, film)
}

func (s *FilmService) GetAllFilms(ctx context.Context) ([]domain.Film, error) {
	return s.films.GetAllFilms(ctx)
}

func (s *FilmService) GetFilmByID(ctx context.Context, id int64) (domain.Film, error) {
	return s.films.GetFilmByID(ctx, id)
}

func (s *FilmService) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := s.checkFilmAndUser(ctx, filmID, userID); err != nil {
		return err
	}
	if err := s.films.AddLike(ctx, filmID, userID); err != nil {
		return fmt.Errorf("failed to add like: %w", err)
	}
	s.logger.InfoContext(ctx, "Like added", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

func (s *FilmService) RemoveLike(ctx context.Context, filmID, userID int64) error {
	if err := s.checkFilmAndUser(ctx, filmID, userID); err != nil {
		return err
	}
	if err := s.films.RemoveLike(ctx, filmID, userID); err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	s.logger.InfoContext(ctx, "Like removed", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

// GetTopFilms возвращает count популярных фильмов; count <= 0 означает значение по умолчанию.
func (s *FilmService) GetTopFilms(ctx context.Context, count int) ([]domain.Film, error) {
	if count <= 0 {
		count = s.topLimit
	}
	return s.films.GetTopFilms(ctx, count)
}

func (s *FilmService) checkFilmAndUser(ctx context.Context, filmID, userID int64) error {
	if _, err := s.films.GetFilmByID(ctx, filmID); err != nil {
		return err
	}
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return nil
}
