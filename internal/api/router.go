package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(handler *HTTPHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware, handler.LoggingMiddleware)

	// Эндпоинты для фильмов
	filmsRouter := router.PathPrefix("/films").Subrouter()
	filmsRouter.HandleFunc("", handler.CreateFilm).Methods(http.MethodPost)
	filmsRouter.HandleFunc("", handler.UpdateFilm).Methods(http.MethodPut)
	filmsRouter.HandleFunc("", handler.GetFilms).Methods(http.MethodGet)
	filmsRouter.HandleFunc("/popular", handler.GetPopularFilms).Methods(http.MethodGet)
	filmsRouter.HandleFunc("/{id}", handler.GetFilmByID).Methods(http.MethodGet)
	filmsRouter.HandleFunc("/{id}/like/{userId}", handler.AddLike).Methods(http.MethodPut)
	filmsRouter.HandleFunc("/{id}/like/{userId}", handler.RemoveLike).Methods(http.MethodDelete)

	// Эндпоинты для пользователей и дружбы
	usersRouter := router.PathPrefix("/users").Subrouter()
	usersRouter.HandleFunc("", handler.CreateUser).Methods(http.MethodPost)
	usersRouter.HandleFunc("", handler.UpdateUser).Methods(http.MethodPut)
	usersRouter.HandleFunc("", handler.GetUsers).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{id}", handler.GetUserByID).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{id}/friends", handler.GetFriends).Methods(http.MethodGet)
	usersRouter.HandleFunc("/{id}/friends/{friendId}", handler.AddFriend).Methods(http.MethodPut)
	usersRouter.HandleFunc("/{id}/friends/{friendId}", handler.RemoveFriend).Methods(http.MethodDelete)
	usersRouter.HandleFunc("/{id}/friends/common/{otherId}", handler.GetCommonFriends).Methods(http.MethodGet)

	// Справочники
	router.HandleFunc("/genres", handler.GetGenres).Methods(http.MethodGet)
	router.HandleFunc("/genres/{id}", handler.GetGenreByID).Methods(http.MethodGet)
	router.HandleFunc("/mpa", handler.GetRatings).Methods(http.MethodGet)
	router.HandleFunc("/mpa/{id}", handler.GetRatingByID).Methods(http.MethodGet)

	return router
}
