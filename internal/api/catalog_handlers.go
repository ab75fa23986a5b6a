package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func (h *HTTPHandler) GetGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.GetAllGenres(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genres)
}

func (h *HTTPHandler) GetGenreByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.catalogID(w, r)
	if !ok {
		return
	}
	genre, err := h.catalog.GetGenreByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genre)
}

func (h *HTTPHandler) GetRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.catalog.GetAllRatings(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, ratings)
}

func (h *HTTPHandler) GetRatingByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.catalogID(w, r)
	if !ok {
		return
	}
	rating, err := h.catalog.GetRatingByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, rating)
}

func (h *HTTPHandler) catalogID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation error", "catalog id "+strconv.Quote(raw)+" is not a number")
		return 0, false
	}
	return id, true
}
