package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"filmorate/internal/domain"
)

// MemoryUserStore хранит пользователей в памяти процесса.
// Дружба симметрична: обе стороны меняются под одной блокировкой.
type MemoryUserStore struct {
	mu      sync.RWMutex
	users   map[int64]*domain.User
	friends map[int64]map[int64]struct{}
	nextID  int64
	logger  *slog.Logger
}

func NewMemoryUserStore(logger *slog.Logger) *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[int64]*domain.User),
		friends: make(map[int64]map[int64]struct{}),
		logger:  logger,
	}
}

func (m *MemoryUserStore) AddUser(ctx context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	user = user.Normalize()
	user.ID = m.nextID
	user.Friends = nil
	stored := user
	m.users[user.ID] = &stored
	m.friends[user.ID] = make(map[int64]struct{})

	m.logger.DebugContext(ctx, "[MEMORY STORE] User created", slog.Int64("userID", user.ID), slog.String("login", user.Login))
	return m.snapshot(user.ID), nil
}

func (m *MemoryUserStore) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", user.ID, domain.ErrNotFound)
	}
	next := uniqueSorted(user.Friends)
	for _, id := range next {
		if _, ok := m.users[id]; !ok {
			return domain.User{}, fmt.Errorf("friend list of user %d has unknown ids: %w", user.ID, domain.ErrNotFound)
		}
	}

	user = user.Normalize()
	user.Friends = nil
	stored := user
	m.users[user.ID] = &stored

	for old := range m.friends[user.ID] {
		delete(m.friends[old], user.ID)
	}
	m.friends[user.ID] = make(map[int64]struct{}, len(next))
	for _, id := range next {
		m.link(user.ID, id)
	}

	m.logger.DebugContext(ctx, "[MEMORY STORE] User updated", slog.Int64("userID", user.ID))
	return m.snapshot(user.ID), nil
}

func (m *MemoryUserStore) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return m.snapshots(ids), nil
}

func (m *MemoryUserStore) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.users[id]; !ok {
		m.logger.DebugContext(ctx, "[MEMORY STORE] User not found", slog.Int64("userID", id))
		return domain.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return m.snapshot(id), nil
}

func (m *MemoryUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range []int64{userID, friendID} {
		if _, ok := m.users[id]; !ok {
			return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
		}
	}
	m.link(userID, friendID)
	m.logger.DebugContext(ctx, "[MEMORY STORE] Friend added", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (m *MemoryUserStore) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.friends[userID], friendID)
	delete(m.friends[friendID], userID)
	m.logger.DebugContext(ctx, "[MEMORY STORE] Friend removed", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (m *MemoryUserStore) GetAllFriendsByID(ctx context.Context, userID int64) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.users[userID]; !ok {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return m.snapshots(setToSorted(m.friends[userID])), nil
}

func (m *MemoryUserStore) GetUsersByIDSet(ctx context.Context, ids []int64) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	known := make([]int64, 0, len(ids))
	for _, id := range uniqueSorted(ids) {
		if _, ok := m.users[id]; ok {
			known = append(known, id)
		}
	}
	return m.snapshots(known), nil
}

func (m *MemoryUserStore) GetUserFriendIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.users[userID]; !ok {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	set := make(map[int64]struct{}, len(m.friends[userID]))
	for id := range m.friends[userID] {
		set[id] = struct{}{}
	}
	return set, nil
}

// link записывает дружбу в обе стороны. Вызывается под m.mu.
func (m *MemoryUserStore) link(a, b int64) {
	for _, pair := range [][2]int64{{a, b}, {b, a}} {
		if m.friends[pair[0]] == nil {
			m.friends[pair[0]] = make(map[int64]struct{})
		}
		m.friends[pair[0]][pair[1]] = struct{}{}
	}
}

// snapshot копия пользователя с текущим множеством друзей. Вызывается под m.mu.
func (m *MemoryUserStore) snapshot(id int64) domain.User {
	user := m.users[id].Clone()
	user.Friends = setToSorted(m.friends[id])
	return user
}

func (m *MemoryUserStore) snapshots(ids []int64) []domain.User {
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.snapshot(id))
	}
	return out
}
