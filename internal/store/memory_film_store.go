package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"filmorate/internal/catalog"
	"filmorate/internal/domain"
)

// MemoryFilmStore хранит фильмы в памяти процесса.
// Авторы лайков проверяются по users, как внешний ключ film_likes.user_id.
type MemoryFilmStore struct {
	mu     sync.RWMutex
	films  map[int64]*domain.Film
	nextID int64
	users  UserStore
	logger *slog.Logger
}

func NewMemoryFilmStore(users UserStore, logger *slog.Logger) *MemoryFilmStore {
	return &MemoryFilmStore{
		films:  make(map[int64]*domain.Film),
		users:  users,
		logger: logger,
	}
}

// checkLikers убеждается, что все пользователи из ids существуют.
func (m *MemoryFilmStore) checkLikers(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if _, err := m.users.GetUserByID(ctx, id); err != nil {
			return fmt.Errorf("like from user %d: %w", id, err)
		}
	}
	return nil
}

func (m *MemoryFilmStore) AddFilm(ctx context.Context, film domain.Film) (domain.Film, error) {
	film, err := catalog.ReconcileFilm(film)
	if err != nil {
		return domain.Film{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	film.ID = m.nextID
	film.Likes = []int64{}
	// Клонируем фильм перед сохранением, чтобы вызывающий не мог изменить его через срезы
	stored := film.Clone()
	m.films[film.ID] = &stored

	m.logger.DebugContext(ctx, "[MEMORY STORE] Film created", slog.Int64("filmID", film.ID), slog.String("name", film.Name))
	return film.Clone(), nil
}

func (m *MemoryFilmStore) UpdateFilm(ctx context.Context, film domain.Film) (domain.Film, error) {
	film, err := catalog.ReconcileFilm(film)
	if err != nil {
		return domain.Film{}, err
	}
	film.Likes = uniqueSorted(film.Likes)
	if err := m.checkLikers(ctx, film.Likes); err != nil {
		return domain.Film{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.films[film.ID]; !ok {
		return domain.Film{}, fmt.Errorf("film %d: %w", film.ID, domain.ErrNotFound)
	}
	stored := film.Clone()
	m.films[film.ID] = &stored

	m.logger.DebugContext(ctx, "[MEMORY STORE] Film updated", slog.Int64("filmID", film.ID))
	return stored.Clone(), nil
}

func (m *MemoryFilmStore) GetAllFilms(ctx context.Context) ([]domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	films := make([]domain.Film, 0, len(m.films))
	for _, f := range m.films {
		films = append(films, f.Clone())
	}
	sort.Slice(films, func(i, j int) bool { return films[i].ID < films[j].ID })
	return films, nil
}

func (m *MemoryFilmStore) GetFilmByID(ctx context.Context, id int64) (domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.films[id]
	if !ok {
		m.logger.DebugContext(ctx, "[MEMORY STORE] Film not found", slog.Int64("filmID", id))
		return domain.Film{}, fmt.Errorf("film %d: %w", id, domain.ErrNotFound)
	}
	return f.Clone(), nil
}

func (m *MemoryFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := m.checkLikers(ctx, []int64{userID}); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.films[filmID]
	if !ok {
		return fmt.Errorf("film %d: %w", filmID, domain.ErrNotFound)
	}
	f.Likes = uniqueSorted(append(f.Likes, userID))
	m.logger.DebugContext(ctx, "[MEMORY STORE] Like added", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

func (m *MemoryFilmStore) RemoveLike(ctx context.Context, filmID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.films[filmID]
	if !ok {
		return nil
	}
	likes := f.Likes[:0:0]
	for _, id := range f.Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	f.Likes = likes
	m.logger.DebugContext(ctx, "[MEMORY STORE] Like removed", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

func (m *MemoryFilmStore) GetTopFilms(ctx context.Context, limit int) ([]domain.Film, error) {
	films, err := m.GetAllFilms(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(films, func(i, j int) bool {
		if len(films[i].Likes) != len(films[j].Likes) {
			return len(films[i].Likes) > len(films[j].Likes)
		}
		return films[i].ID < films[j].ID
	})
	if limit >= 0 && limit < len(films) {
		films = films[:limit]
	}
	return films, nil
}
