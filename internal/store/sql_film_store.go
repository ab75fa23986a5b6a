package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"filmorate/internal/catalog"
	"filmorate/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SQLFilmStore реализует FilmStore поверх sqlx (PostgreSQL или SQLite).
type SQLFilmStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLFilmStore создает новый экземпляр SQLFilmStore.
func NewSQLFilmStore(db *sqlx.DB, logger *slog.Logger) (*SQLFilmStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &SQLFilmStore{db: db, logger: logger}, nil
}

const filmSelect = `SELECT f.film_id, f.name, f.description, f.release_date, f.duration,
       f.mpa_id, m.name AS mpa_name
FROM films AS f
JOIN mpa_ratings AS m ON m.mpa_id = f.mpa_id`

// filmRow строка films с присоединенным рейтингом
type filmRow struct {
	ID          int64  `db:"film_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	ReleaseDate dbDate `db:"release_date"`
	Duration    int    `db:"duration"`
	MpaID       int    `db:"mpa_id"`
	MpaName     string `db:"mpa_name"`
}

func (r filmRow) toFilm() domain.Film {
	return domain.Film{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		ReleaseDate: r.ReleaseDate.Time,
		Duration:    r.Duration,
		Mpa:         &domain.MpaRating{ID: r.MpaID, Name: r.MpaName},
		Genres:      []domain.Genre{},
		Likes:       []int64{},
	}
}

// filmGenreRow строка одиночной выборки: фильм + (возможно NULL) жанр
type filmGenreRow struct {
	filmRow
	GenreID   sql.NullInt64  `db:"genre_id"`
	GenreName sql.NullString `db:"genre_name"`
}

type filmGenreLink struct {
	FilmID    int64  `db:"film_id"`
	GenreID   int    `db:"genre_id"`
	GenreName string `db:"genre_name"`
}

type filmLikeLink struct {
	FilmID int64 `db:"film_id"`
	UserID int64 `db:"user_id"`
}

// AddFilm сохраняет фильм и его жанры, возвращает агрегат с присвоенным ID.
func (s *SQLFilmStore) AddFilm(ctx context.Context, film domain.Film) (domain.Film, error) {
	film, err := catalog.ReconcileFilm(film)
	if err != nil {
		s.logger.WarnContext(ctx, "Film references unknown catalog entry", slog.String("error", err.Error()))
		return domain.Film{}, err
	}

	var id int64
	s.logger.DebugContext(ctx, "Executing AddFilm query", slog.String("name", film.Name), slog.Int("genres", len(film.Genres)))
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`INSERT INTO films (name, description, release_date, duration, mpa_id)
              VALUES (?, ?, ?, ?, ?) RETURNING film_id`)
		if err := tx.QueryRowxContext(ctx, query,
			film.Name, film.Description, dbDate{film.ReleaseDate}, film.Duration, film.Mpa.ID,
		).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("insert returned no film_id: %w", domain.ErrInternal)
			}
			return fmt.Errorf("failed to insert film: %w", err)
		}
		if id <= 0 {
			return fmt.Errorf("insert returned invalid film_id %d: %w", id, domain.ErrInternal)
		}
		return insertFilmGenres(ctx, tx, id, film.Genres)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create film in DB", slog.String("error", err.Error()))
		return domain.Film{}, err
	}

	film.ID = id
	film.Likes = []int64{}
	s.logger.InfoContext(ctx, "Film created successfully in DB", slog.Int64("filmID", id))
	return film, nil
}

// UpdateFilm заменяет поля фильма, набор жанров и набор лайков.
func (s *SQLFilmStore) UpdateFilm(ctx context.Context, film domain.Film) (domain.Film, error) {
	film, err := catalog.ReconcileFilm(film)
	if err != nil {
		s.logger.WarnContext(ctx, "Film references unknown catalog entry", slog.String("error", err.Error()))
		return domain.Film{}, err
	}

	s.logger.DebugContext(ctx, "Executing UpdateFilm query", slog.Int64("filmID", film.ID))
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		found, err := exists(ctx, tx, "films", "film_id", film.ID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("film %d: %w", film.ID, domain.ErrNotFound)
		}

		query := tx.Rebind(`UPDATE films SET name = ?, description = ?, release_date = ?, duration = ?, mpa_id = ?
              WHERE film_id = ?`)
		res, err := tx.ExecContext(ctx, query,
			film.Name, film.Description, dbDate{film.ReleaseDate}, film.Duration, film.Mpa.ID, film.ID)
		if err != nil {
			return fmt.Errorf("failed to update film: %w", err)
		}
		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected for film update: %w", err)
		}
		if rowsAffected != 1 {
			return fmt.Errorf("film update touched %d rows: %w", rowsAffected, domain.ErrInternal)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM film_genres WHERE film_id = ?`), film.ID); err != nil {
			return fmt.Errorf("failed to clear film genres: %w", err)
		}
		if err := insertFilmGenres(ctx, tx, film.ID, film.Genres); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM film_likes WHERE film_id = ?`), film.ID); err != nil {
			return fmt.Errorf("failed to clear film likes: %w", err)
		}
		likeQuery := tx.Rebind(`INSERT INTO film_likes (film_id, user_id) VALUES (?, ?)`)
		for _, userID := range uniqueSorted(film.Likes) {
			if _, err := tx.ExecContext(ctx, likeQuery, film.ID, userID); err != nil {
				if isForeignKeyViolation(err) {
					return fmt.Errorf("like from user %d: %w", userID, domain.ErrNotFound)
				}
				return fmt.Errorf("failed to insert film like: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "Film for update not found in DB", slog.Int64("filmID", film.ID), slog.String("error", err.Error()))
			return domain.Film{}, err
		}
		s.logger.ErrorContext(ctx, "Failed to update film in DB", slog.Int64("filmID", film.ID), slog.String("error", err.Error()))
		return domain.Film{}, err
	}

	s.logger.InfoContext(ctx, "Film updated successfully in DB", slog.Int64("filmID", film.ID))
	return s.GetFilmByID(ctx, film.ID)
}

func insertFilmGenres(ctx context.Context, tx *sqlx.Tx, filmID int64, genres []domain.Genre) error {
	query := tx.Rebind(`INSERT INTO film_genres (film_id, genre_id, position) VALUES (?, ?, ?)`)
	for pos, g := range genres {
		if _, err := tx.ExecContext(ctx, query, filmID, g.ID, pos); err != nil {
			return fmt.Errorf("failed to insert film genre %d: %w", g.ID, err)
		}
	}
	return nil
}

// GetAllFilms возвращает все фильмы по возрастанию ID.
func (s *SQLFilmStore) GetAllFilms(ctx context.Context) ([]domain.Film, error) {
	var rows []filmRow
	s.logger.DebugContext(ctx, "Executing GetAllFilms query")
	if err := s.db.SelectContext(ctx, &rows, filmSelect+` ORDER BY f.film_id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list films from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list films: %w", err)
	}

	films, err := s.hydrate(ctx, rows, false)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Films listed from DB", slog.Int("count", len(films)))
	return films, nil
}

// GetFilmByID собирает фильм из одного запроса с LEFT JOIN на жанры, лайки читаются отдельно.
func (s *SQLFilmStore) GetFilmByID(ctx context.Context, id int64) (domain.Film, error) {
	query := s.db.Rebind(`SELECT f.film_id, f.name, f.description, f.release_date, f.duration,
       f.mpa_id, m.name AS mpa_name, fg.genre_id, g.name AS genre_name
FROM films AS f
JOIN mpa_ratings AS m ON m.mpa_id = f.mpa_id
LEFT OUTER JOIN film_genres AS fg ON fg.film_id = f.film_id
LEFT OUTER JOIN genres AS g ON g.genre_id = fg.genre_id
WHERE f.film_id = ?
ORDER BY fg.position`)

	s.logger.DebugContext(ctx, "Executing GetFilmByID query", slog.Int64("filmID", id))
	rows, err := s.db.QueryxContext(ctx, query, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get film by ID from DB", slog.Int64("filmID", id), slog.String("error", err.Error()))
		return domain.Film{}, fmt.Errorf("failed to get film by ID: %w", err)
	}
	defer rows.Close()

	var film domain.Film
	genres := newGrouper[int64, domain.Genre]()
	for rows.Next() {
		var row filmGenreRow
		if err := rows.StructScan(&row); err != nil {
			return domain.Film{}, fmt.Errorf("failed to scan film row: %w", err)
		}
		if genres.touch(row.ID) {
			film = row.toFilm()
		}
		if row.GenreID.Valid {
			genres.add(row.ID, domain.Genre{ID: int(row.GenreID.Int64), Name: row.GenreName.String})
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Film{}, fmt.Errorf("failed to read film rows: %w", err)
	}
	if len(genres.parents()) == 0 {
		s.logger.WarnContext(ctx, "Film not found by ID in DB", slog.Int64("filmID", id))
		return domain.Film{}, fmt.Errorf("film %d: %w", id, domain.ErrNotFound)
	}
	film.Genres = genres.get(id)

	var likes []int64
	if err := s.db.SelectContext(ctx, &likes,
		s.db.Rebind(`SELECT user_id FROM film_likes WHERE film_id = ? ORDER BY user_id`), id); err != nil {
		return domain.Film{}, fmt.Errorf("failed to get film likes: %w", err)
	}
	if likes != nil {
		film.Likes = likes
	}

	s.logger.InfoContext(ctx, "Film found by ID in DB", slog.Int64("filmID", id))
	return film, nil
}

// AddLike ставит лайк. Повторный лайк ничего не меняет.
func (s *SQLFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	query := s.db.Rebind(`INSERT INTO film_likes (film_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING`)

	s.logger.DebugContext(ctx, "Executing AddLike query", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	if _, err := s.db.ExecContext(ctx, query, filmID, userID); err != nil {
		if isForeignKeyViolation(err) {
			s.logger.WarnContext(ctx, "Like references missing film or user", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
			return fmt.Errorf("like %d/%d: %w", filmID, userID, domain.ErrNotFound)
		}
		s.logger.ErrorContext(ctx, "Failed to add like in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to add like: %w", err)
	}
	s.logger.InfoContext(ctx, "Like added in DB", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

// RemoveLike убирает лайк. Отсутствующий лайк не ошибка.
func (s *SQLFilmStore) RemoveLike(ctx context.Context, filmID, userID int64) error {
	query := s.db.Rebind(`DELETE FROM film_likes WHERE film_id = ? AND user_id = ?`)

	s.logger.DebugContext(ctx, "Executing RemoveLike query", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	res, err := s.db.ExecContext(ctx, query, filmID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove like in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove like: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.InfoContext(ctx, "Like to remove was absent", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
		return nil
	}
	s.logger.InfoContext(ctx, "Like removed in DB", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

// GetTopFilms возвращает limit самых популярных фильмов. При равенстве лайков выше меньший ID.
func (s *SQLFilmStore) GetTopFilms(ctx context.Context, limit int) ([]domain.Film, error) {
	query := filmSelect + `
LEFT OUTER JOIN film_likes AS fl ON fl.film_id = f.film_id
GROUP BY f.film_id, f.name, f.description, f.release_date, f.duration, f.mpa_id, m.name
ORDER BY COUNT(fl.user_id) DESC, f.film_id ASC`
	var args []any
	// отрицательный limit: без ограничения
	if limit >= 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	query = s.db.Rebind(query)

	var rows []filmRow
	s.logger.DebugContext(ctx, "Executing GetTopFilms query", slog.Int("limit", limit))
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to rank films in DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get top films: %w", err)
	}

	films, err := s.hydrate(ctx, rows, true)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Top films selected from DB", slog.Int("count", len(films)))
	return films, nil
}

// hydrate дополняет строки фильмов жанрами и лайками, сохраняя порядок rows.
// При onlyRows дочерние строки выбираются по списку ID из rows, иначе целиком.
func (s *SQLFilmStore) hydrate(ctx context.Context, rows []filmRow, onlyRows bool) ([]domain.Film, error) {
	films := make([]domain.Film, 0, len(rows))
	if len(rows) == 0 {
		return films, nil
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	genreQuery := `SELECT fg.film_id, fg.genre_id, g.name AS genre_name
FROM film_genres AS fg
JOIN genres AS g ON g.genre_id = fg.genre_id`
	likeQuery := `SELECT film_id, user_id FROM film_likes`

	var genreArgs, likeArgs []any
	if onlyRows {
		var err error
		genreQuery, genreArgs, err = sqlx.In(genreQuery+` WHERE fg.film_id IN (?)`, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to build genres query: %w", err)
		}
		likeQuery, likeArgs, err = sqlx.In(likeQuery+` WHERE film_id IN (?)`, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to build likes query: %w", err)
		}
	}
	genreQuery = s.db.Rebind(genreQuery + ` ORDER BY fg.film_id, fg.position`)
	likeQuery = s.db.Rebind(likeQuery + ` ORDER BY film_id, user_id`)

	var genreLinks []filmGenreLink
	if err := s.db.SelectContext(ctx, &genreLinks, genreQuery, genreArgs...); err != nil {
		return nil, fmt.Errorf("failed to load film genres: %w", err)
	}
	genres := newGrouper[int64, domain.Genre]()
	for _, l := range genreLinks {
		genres.add(l.FilmID, domain.Genre{ID: l.GenreID, Name: l.GenreName})
	}

	var likeLinks []filmLikeLink
	if err := s.db.SelectContext(ctx, &likeLinks, likeQuery, likeArgs...); err != nil {
		return nil, fmt.Errorf("failed to load film likes: %w", err)
	}
	likes := newGrouper[int64, int64]()
	for _, l := range likeLinks {
		likes.add(l.FilmID, l.UserID)
	}

	for _, r := range rows {
		film := r.toFilm()
		film.Genres = genres.get(r.ID)
		film.Likes = likes.get(r.ID)
		films = append(films, film)
	}
	return films, nil
}
