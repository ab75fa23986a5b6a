package service

import (
	"context"
	"fmt"
	"log/slog"

	"filmorate/internal/domain"
	"filmorate/internal/store"
)

type UserService struct {
	users  store.UserStore
	logger *slog.Logger
}

func NewUserService(users store.UserStore, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) AddUser(ctx context.Context, user domain.User) (domain.User, error) {
	return s.users.AddUser(ctx, user)
}

// UpdateUser заменяет пользователя вместе с друзьями. Себя в друзьях быть не может.
func (s *UserService) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	for _, id := range user.Friends {
		if id == user.ID {
			return domain.User{}, fmt.Errorf("user %d cannot befriend themselves: %w", user.ID, domain.ErrValidation)
		}
	}
	return s.users.UpdateUser(ctx, user)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.GetAllUsers(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *UserService) AddFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.checkPair(ctx, userID, friendID); err != nil {
		return err
	}
	if err := s.users.AddFriend(ctx, userID, friendID); err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	s.logger.InfoContext(ctx, "Friend added", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.checkPair(ctx, userID, friendID); err != nil {
		return err
	}
	if err := s.users.RemoveFriend(ctx, userID, friendID); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	s.logger.InfoContext(ctx, "Friend removed", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *UserService) GetFriends(ctx context.Context, userID int64) ([]domain.User, error) {
	return s.users.GetAllFriendsByID(ctx, userID)
}

// GetCommonFriends возвращает общих друзей двух пользователей по возрастанию ID.
func (s *UserService) GetCommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error) {
	left, err := s.users.GetUserFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	right, err := s.users.GetUserFriendIDs(ctx, otherID)
	if err != nil {
		return nil, err
	}

	common := make([]int64, 0)
	for id := range left {
		if _, ok := right[id]; ok {
			common = append(common, id)
		}
	}
	return s.users.GetUsersByIDSet(ctx, common)
}

func (s *UserService) checkPair(ctx context.Context, userID, friendID int64) error {
	if userID == friendID {
		return fmt.Errorf("user %d cannot befriend themselves: %w", userID, domain.ErrValidation)
	}
	for _, id := range []int64{userID, friendID} {
		if _, err := s.users.GetUserByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
