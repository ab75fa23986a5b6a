// internal/domain/film.go
package domain

import (
	"time"
)

// DateLayout формат дат в API (релиз фильма, день рождения пользователя)
const DateLayout = "2006-01-02"

// Genre жанр фильма из фиксированного каталога
type Genre struct {
	ID   int    `json:"id" db:"genre_id"`
	Name string `json:"name" db:"name"`
}

// MpaRating возрастной рейтинг MPA из фиксированного каталога
type MpaRating struct {
	ID   int    `json:"id" db:"mpa_id"`
	Name string `json:"name" db:"name"`
}

// Film представляет агрегат фильма: скалярные поля + жанры, рейтинг и лайки
type Film struct {
	ID          int64
	Name        string
	Description string
	ReleaseDate time.Time
	Duration    int
	Genres      []Genre    // Порядок как у клиента, без дубликатов
	Mpa         *MpaRating // nil: рейтинг не указан. После сверки с каталогом всегда задан
	Likes       []int64    // ID пользователей, по возрастанию
}

// HasGenre сообщает, есть ли у фильма жанр с указанным ID.
func (f Film) HasGenre(id int) bool {
	for _, g := range f.Genres {
		if g.ID == id {
			return true
		}
	}
	return false
}

// Clone возвращает копию фильма, не разделяющую срезы и рейтинг с оригиналом.
func (f Film) Clone() Film {
	c := f
	c.Genres = append([]Genre(nil), f.Genres...)
	c.Likes = append([]int64(nil), f.Likes...)
	if c.Genres == nil {
		c.Genres = []Genre{}
	}
	if c.Likes == nil {
		c.Likes = []int64{}
	}
	if f.Mpa != nil {
		mpa := *f.Mpa
		c.Mpa = &mpa
	}
	return c
}

// RefRequest ссылка на элемент каталога в теле запроса.
// Диапазон ID проверяется каталогом, а не валидатором.
type RefRequest struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// FilmRequest тело запроса на создание/обновление фильма
type FilmRequest struct {
	ID          int64        `json:"id,omitempty"`
	Name        string       `json:"name" validate:"required,notblank"`
	Description string       `json:"description,omitempty" validate:"max=200"`
	ReleaseDate string       `json:"releaseDate" validate:"required,datetime=2006-01-02,releasedate"`
	Duration    int          `json:"duration" validate:"gt=0"`
	Genres      []RefRequest `json:"genres,omitempty"`
	Mpa         *RefRequest  `json:"mpa,omitempty"`
	Likes       []int64      `json:"likes,omitempty"` // nil: поле не передано
}

// ToFilm переводит запрос в доменную модель. Дата должна быть уже провалидирована.
func (r FilmRequest) ToFilm() (Film, error) {
	releaseDate, err := time.Parse(DateLayout, r.ReleaseDate)
	if err != nil {
		return Film{}, err
	}
	film := Film{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		ReleaseDate: releaseDate,
		Duration:    r.Duration,
		Genres:      make([]Genre, 0, len(r.Genres)),
		Likes:       append([]int64{}, r.Likes...),
	}
	for _, g := range r.Genres {
		film.Genres = append(film.Genres, Genre{ID: g.ID, Name: g.Name})
	}
	if r.Mpa != nil {
		film.Mpa = &MpaRating{ID: r.Mpa.ID, Name: r.Mpa.Name}
	}
	return film, nil
}

// FilmResponse представление фильма в ответах API
type FilmResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ReleaseDate string    `json:"releaseDate"`
	Duration    int       `json:"duration"`
	Genres      []Genre   `json:"genres"`
	Mpa         MpaRating `json:"mpa"`
	Likes       []int64   `json:"likes"`
}

// NewFilmResponse строит ответ API из доменной модели.
func NewFilmResponse(f Film) FilmResponse {
	c := f.Clone()
	resp := FilmResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ReleaseDate: c.ReleaseDate.Format(DateLayout),
		Duration:    c.Duration,
		Genres:      c.Genres,
		Likes:       c.Likes,
	}
	if c.Mpa != nil {
		resp.Mpa = *c.Mpa
	}
	return resp
}
