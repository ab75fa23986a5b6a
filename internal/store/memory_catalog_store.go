package store

import (
	"context"

	"filmorate/internal/catalog"
	"filmorate/internal/domain"
)

// MemoryCatalogStore отдает справочники прямо из пакета catalog.
type MemoryCatalogStore struct{}

func NewMemoryCatalogStore() *MemoryCatalogStore {
	return &MemoryCatalogStore{}
}

func (MemoryCatalogStore) GetAllGenres(ctx context.Context) ([]domain.Genre, error) {
	return append([]domain.Genre(nil), catalog.Genres...), nil
}

func (MemoryCatalogStore) GetGenreByID(ctx context.Context, id int) (domain.Genre, error) {
	return catalog.GenreByID(id)
}

func (MemoryCatalogStore) GetAllRatings(ctx context.Context) ([]domain.MpaRating, error) {
	return append([]domain.MpaRating(nil), catalog.Ratings...), nil
}

func (MemoryCatalogStore) GetRatingByID(ctx context.Context, id int) (domain.MpaRating, error) {
	return catalog.RatingByID(id)
}
