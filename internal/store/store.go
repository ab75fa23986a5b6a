// Package store содержит хранилища фильмов, пользователей и справочников:
// реляционные (sqlx поверх PostgreSQL или SQLite) и in-memory.
// Оба варианта обязаны давать одинаковый наблюдаемый результат.
package store

import (
	"context"

	"filmorate/internal/domain"
)

// FilmStore определяет операции с агрегатами фильмов.
type FilmStore interface {
	AddFilm(ctx context.Context, film domain.Film) (domain.Film, error)
	UpdateFilm(ctx context.Context, film domain.Film) (domain.Film, error)
	GetAllFilms(ctx context.Context) ([]domain.Film, error)
	GetFilmByID(ctx context.Context, id int64) (domain.Film, error)
	AddLike(ctx context.Context, filmID, userID int64) error
	RemoveLike(ctx context.Context, filmID, userID int64) error
	GetTopFilms(ctx context.Context, limit int) ([]domain.Film, error)
}

// UserStore определяет операции с пользователями и симметричной связью дружбы.
type UserStore interface {
	AddUser(ctx context.Context, user domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	AddFriend(ctx context.Context, userID, friendID int64) error
	RemoveFriend(ctx context.Context, userID, friendID int64) error
	GetAllFriendsByID(ctx context.Context, userID int64) ([]domain.User, error)
	GetUsersByIDSet(ctx context.Context, ids []int64) ([]domain.User, error)
	GetUserFriendIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
}

// CatalogStore отдает справочники жанров и рейтингов.
type CatalogStore interface {
	GetAllGenres(ctx context.Context) ([]domain.Genre, error)
	GetGenreByID(ctx context.Context, id int) (domain.Genre, error)
	GetAllRatings(ctx context.Context) ([]domain.MpaRating, error)
	GetRatingByID(ctx context.Context, id int) (domain.MpaRating, error)
}

var (
	_ FilmStore    = (*SQLFilmStore)(nil)
	_ FilmStore    = (*MemoryFilmStore)(nil)
	_ UserStore    = (*SQLUserStore)(nil)
	_ UserStore    = (*MemoryUserStore)(nil)
	_ CatalogStore = (*SQLCatalogStore)(nil)
	_ CatalogStore = (*MemoryCatalogStore)(nil)
)
