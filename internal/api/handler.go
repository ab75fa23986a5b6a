package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"filmorate/internal/domain"
	"filmorate/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// HTTPHandler содержит зависимости для HTTP обработчиков filmorate
type HTTPHandler struct {
	films     *service.FilmService
	users     *service.UserService
	catalog   *service.CatalogService
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHTTPHandler(films *service.FilmService, users *service.UserService, catalog *service.CatalogService, l *slog.Logger, v *validator.Validate) *HTTPHandler {
	return &HTTPHandler{
		films:     films,
		users:     users,
		catalog:   catalog,
		logger:    l,
		validator: v,
	}
}

// ErrorResponse формат ошибки во всех ответах API
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

var errUnsupportedMediaType = errors.New("unsupported media type")

// --- Вспомогательные функции ---
func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, status int, message, description string) {
	h.respondJSON(w, r, status, ErrorResponse{Error: message, Description: description})
}

// respondServiceError переводит ошибку сервиса в HTTP статус.
func (h *HTTPHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, errUnsupportedMediaType):
		h.respondError(w, r, http.StatusUnsupportedMediaType, "Unsupported media type", err.Error())
	case errors.As(err, &validationErrs), errors.Is(err, domain.ErrValidation):
		h.logger.WarnContext(r.Context(), "Request rejected by validation", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusBadRequest, "Validation error", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.logger.WarnContext(r.Context(), "Requested object not found", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusNotFound, "Object not found", err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Request failed", slog.String("error", err.Error()))
		h.respondError(w, r, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}

// decodeAndValidate читает JSON тело в dst и проверяет его валидатором.
func (h *HTTPHandler) decodeAndValidate(r *http.Request, dst interface{}) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: %q", errUnsupportedMediaType, ct)
		}
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request payload: %v: %w", err, domain.ErrValidation)
	}
	return h.validator.StructCtx(r.Context(), dst)
}

// pathID читает целочисленный параметр пути.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("path parameter %s=%q is not a number: %w", name, raw, domain.ErrValidation)
	}
	return id, nil
}
