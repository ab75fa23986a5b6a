// Package catalog содержит фиксированные справочники жанров и рейтингов MPA
// и сверяет с ними ссылки, пришедшие от клиента.
package catalog

import (
	"fmt"

	"filmorate/internal/domain"
)

// Genres справочник жанров. ID элемента = индекс + 1.
var Genres = []domain.Genre{
	{ID: 1, Name: "Комедия"},
	{ID: 2, Name: "Драма"},
	{ID: 3, Name: "Мультфильм"},
	{ID: 4, Name: "Триллер"},
	{ID: 5, Name: "Документальный"},
	{ID: 6, Name: "Боевик"},
}

// Ratings справочник рейтингов MPA. Первый элемент используется по умолчанию.
var Ratings = []domain.MpaRating{
	{ID: 1, Name: "G"},
	{ID: 2, Name: "PG"},
	{ID: 3, Name: "PG-13"},
	{ID: 4, Name: "R"},
	{ID: 5, Name: "NC-17"},
}

// GenreByID возвращает канонический жанр или ErrInvalidReference.
func GenreByID(id int) (domain.Genre, error) {
	if id < 1 || id > len(Genres) {
		return domain.Genre{}, fmt.Errorf("unknown genre id %d: %w", id, domain.ErrInvalidReference)
	}
	return Genres[id-1], nil
}

// RatingByID возвращает канонический рейтинг или ErrInvalidReference.
func RatingByID(id int) (domain.MpaRating, error) {
	if id < 1 || id > len(Ratings) {
		return domain.MpaRating{}, fmt.Errorf("unknown rating id %d: %w", id, domain.ErrInvalidReference)
	}
	return Ratings[id-1], nil
}

// ResolveGenre заменяет имя жанра каноническим. ID главный, имя только подсказка.
func ResolveGenre(g domain.Genre) (domain.Genre, error) {
	return GenreByID(g.ID)
}

// ResolveRating сверяет рейтинг с каталогом. nil означает "не указан"
// и дает первый рейтинг каталога. Любой переданный ID, включая 0, проверяется.
func ResolveRating(r *domain.MpaRating) (domain.MpaRating, error) {
	if r == nil {
		return Ratings[0], nil
	}
	return RatingByID(r.ID)
}

// ReconcileFilm приводит жанры и рейтинг фильма к каталогу.
// Повторы жанров отбрасываются, порядок первого появления сохраняется.
func ReconcileFilm(f domain.Film) (domain.Film, error) {
	mpa, err := ResolveRating(f.Mpa)
	if err != nil {
		return domain.Film{}, err
	}

	genres := make([]domain.Genre, 0, len(f.Genres))
	seen := make(map[int]struct{}, len(f.Genres))
	for _, g := range f.Genres {
		resolved, err := ResolveGenre(g)
		if err != nil {
			return domain.Film{}, err
		}
		if _, dup := seen[resolved.ID]; dup {
			continue
		}
		seen[resolved.ID] = struct{}{}
		genres = append(genres, resolved)
	}

	out := f.Clone()
	out.Mpa = &mpa
	out.Genres = genres
	return out, nil
}
