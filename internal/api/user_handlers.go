package api

import (
	"log/slog"
	"net/http"

	"filmorate/internal/domain"
)

func userResponses(users []domain.User) []domain.UserResponse {
	out := make([]domain.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, domain.NewUserResponse(u))
	}
	return out
}

// CreateUser регистрирует пользователя. Пустое имя заменяется логином.
func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP CreateUser request received", slog.String("path", r.URL.Path))

	var req domain.UserRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	user, err := req.ToUser()
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation error", err.Error())
		return
	}

	created, err := h.users.AddUser(ctx, user)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, domain.NewUserResponse(created))
}

func (h *HTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP UpdateUser request received", slog.String("path", r.URL.Path))

	var req domain.UserRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	user, err := req.ToUser()
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "Validation error", err.Error())
		return
	}
	if req.Friends == nil {
		current, err := h.users.GetUserByID(ctx, user.ID)
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		user.Friends = current.Friends
	}

	updated, err := h.users.UpdateUser(ctx, user)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, domain.NewUserResponse(updated))
}

func (h *HTTPHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAllUsers(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, userResponses(users))
}

func (h *HTTPHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, domain.NewUserResponse(user))
}

func (h *HTTPHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, ok := h.userPair(w, r, "friendId")
	if !ok {
		return
	}
	if err := h.users.AddFriend(r.Context(), userID, friendID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

func (h *HTTPHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, ok := h.userPair(w, r, "friendId")
	if !ok {
		return
	}
	if err := h.users.RemoveFriend(r.Context(), userID, friendID); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

func (h *HTTPHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	friends, err := h.users.GetFriends(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, userResponses(friends))
}

func (h *HTTPHandler) GetCommonFriends(w http.ResponseWriter, r *http.Request) {
	userID, otherID, ok := h.userPair(w, r, "otherId")
	if !ok {
		return
	}
	common, err := h.users.GetCommonFriends(r.Context(), userID, otherID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, userResponses(common))
}

func (h *HTTPHandler) userPair(w http.ResponseWriter, r *http.Request, second string) (int64, int64, bool) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondServiceError(w, r, err)
		return 0, 0, false
	}
	otherID, err := pathID(r, second)
	if err != nil {
		h.respondServiceError(w, r, err)
		return 0, 0, false
	}
	return userID, otherID, true
}
