package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"filmorate/internal/domain"
)

func filmResponses(films []domain.Film) []domain.FilmResponse {
	out := make([]domain.FilmResponse, 0, len(films))
	for _, f := range films {
		out = append(out, domain.NewFilmResponse(f))
	}
	return out
}

// CreateFilm обрабатывает запрос на создание нового фильма.
func (h *HTTPHandler) CreateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP CreateFilm request received", slog.String("path", r.URL.Path))

	var req domain.FilmRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	film, err := req.ToFilm()
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	created, err := h.films.AddFilm(ctx, film)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, domain.NewFilmResponse(created))
}

// UpdateFilm заменяет фильм целиком, включая жанры и лайки.
func (h *HTTPHandler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP UpdateFilm request received", slog.String("path", r.URL.Path))

	var req domain.FilmRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	film, err := req.ToFilm()
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation error", err.Error())
		return
	}
	if req.Likes == nil {
		// лайки не переданы: сохраняем текущие
		current, err := h.films.GetFilmByID(ctx, film.ID)
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		film.Likes = current.Likes
	}

	updated, err := h.films.UpdateFilm(ctx, film)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, domain.NewFilmResponse(updated))
}

func (h *HTTPHandler) GetFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.GetAllFilms(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, filmResponses(films))
}

func (h *HTTPHandler) GetFilmByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	film, err := h.films.GetFilmByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, domain.NewFilmResponse(film))
}

func (h *HTTPHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, h.films.AddLike)
}

func (h *HTTPHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	h.changeLike(w, r, h.films.RemoveLike)
}

func (h *HTTPHandler) changeLike(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, filmID, userID int64) error) {
	filmID, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if err := apply(r.Context(), filmID, userID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

// GetPopularFilms возвращает топ фильмов по лайкам, размер задается ?count=.
func (h *HTTPHandler) GetPopularFilms(w http.ResponseWriter, r *http.Request) {
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondError(w, r, http.StatusBadRequest, "Validation error", "count must be a positive integer")
			return
		}
		count = n
	}
	films, err := h.films.GetTopFilms(r.Context(), count)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, filmResponses(films))
}
