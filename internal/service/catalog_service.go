package service

import (
	"context"

	"filmorate/internal/domain"
	"filmorate/internal/store"
)

type CatalogService struct {
	catalog store.CatalogStore
}

func NewCatalogService(catalog store.CatalogStore) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) GetAllGenres(ctx context.Context) ([]domain.Genre, error) {
	return s.catalog.GetAllGenres(ctx)
}

func (s *CatalogService) GetGenreByID(ctx context.Context, id int) (domain.Genre, error) {
	return s.catalog.GetGenreByID(ctx, id)
}

func (s *CatalogService) GetAllRatings(ctx context.Context) ([]domain.MpaRating, error) {
	return s.catalog.GetAllRatings(ctx)
}

func (s *CatalogService) GetRatingByID(ctx context.Context, id int) (domain.MpaRating, error) {
	return s.catalog.GetRatingByID(ctx, id)
}
