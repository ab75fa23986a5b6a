package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"filmorate/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SQLUserStore реализует UserStore поверх sqlx (PostgreSQL или SQLite).
type SQLUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLUserStore создает новый экземпляр SQLUserStore.
func NewSQLUserStore(db *sqlx.DB, logger *slog.Logger) (*SQLUserStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &SQLUserStore{db: db, logger: logger}, nil
}

const userSelect = `SELECT u.user_id, u.name, u.email, u.login, u.birthday FROM users AS u`

type userRow struct {
	ID       int64  `db:"user_id"`
	Name     string `db:"name"`
	Email    string `db:"email"`
	Login    string `db:"login"`
	Birthday dbDate `db:"birthday"`
}

func (r userRow) toUser() domain.User {
	return domain.User{
		ID:       r.ID,
		Name:     r.Name,
		Email:    r.Email,
		Login:    r.Login,
		Birthday: r.Birthday.Time,
		Friends:  []int64{},
	}
}

type userFriendRow struct {
	userRow
	FriendID sql.NullInt64 `db:"friend_id"`
}

type friendLink struct {
	UserID   int64 `db:"user_id"`
	FriendID int64 `db:"friend_id"`
}

// AddUser сохраняет пользователя. Друзья черновика игнорируются: связи
// создаются через AddFriend или UpdateUser.
func (s *SQLUserStore) AddUser(ctx context.Context, user domain.User) (domain.User, error) {
	user = user.Normalize()
	query := s.db.Rebind(`INSERT INTO users (name, email, login, birthday) VALUES (?, ?, ?, ?) RETURNING user_id`)

	var id int64
	s.logger.DebugContext(ctx, "Executing AddUser query", slog.String("login", user.Login))
	err := s.db.QueryRowxContext(ctx, query, user.Name, user.Email, user.Login, dbDate{user.Birthday}).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("insert returned no user_id: %w", domain.ErrInternal)
		} else {
			err = fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return domain.User{}, err
	}
	if id <= 0 {
		return domain.User{}, fmt.Errorf("insert returned invalid user_id %d: %w", id, domain.ErrInternal)
	}

	user.ID = id
	user.Friends = []int64{}
	s.logger.InfoContext(ctx, "User created successfully in DB", slog.Int64("userID", id))
	return user, nil
}

// UpdateUser заменяет поля пользователя и множество друзей.
// Зеркальные записи дружбы удаляются и создаются вместе с прямыми.
func (s *SQLUserStore) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	user = user.Normalize()
	friends := uniqueSorted(user.Friends)

	s.logger.DebugContext(ctx, "Executing UpdateUser query", slog.Int64("userID", user.ID), slog.Int("friends", len(friends)))
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		found, err := exists(ctx, tx, "users", "user_id", user.ID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("user %d: %w", user.ID, domain.ErrNotFound)
		}

		res, err := tx.ExecContext(ctx,
			tx.Rebind(`UPDATE users SET name = ?, email = ?, login = ?, birthday = ? WHERE user_id = ?`),
			user.Name, user.Email, user.Login, dbDate{user.Birthday}, user.ID)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected for user update: %w", err)
		}
		if rowsAffected != 1 {
			return fmt.Errorf("user update touched %d rows: %w", rowsAffected, domain.ErrInternal)
		}

		if len(friends) > 0 {
			query, args, err := sqlx.In(`SELECT COUNT(*) FROM users WHERE user_id IN (?)`, friends)
			if err != nil {
				return fmt.Errorf("failed to build friends check: %w", err)
			}
			var known int
			if err := tx.GetContext(ctx, &known, tx.Rebind(query), args...); err != nil {
				return fmt.Errorf("failed to check friends: %w", err)
			}
			if known != len(friends) {
				return fmt.Errorf("friend list of user %d has unknown ids: %w", user.ID, domain.ErrNotFound)
			}
		}

		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`DELETE FROM user_friends WHERE user_id = ? OR friend_id = ?`), user.ID, user.ID); err != nil {
			return fmt.Errorf("failed to clear friends: %w", err)
		}
		for _, friendID := range friends {
			if err := insertFriendPair(ctx, tx, user.ID, friendID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "User for update not found in DB", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
			return domain.User{}, err
		}
		s.logger.ErrorContext(ctx, "Failed to update user in DB", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return domain.User{}, err
	}

	s.logger.InfoContext(ctx, "User updated successfully in DB", slog.Int64("userID", user.ID))
	return s.GetUserByID(ctx, user.ID)
}

func insertFriendPair(ctx context.Context, tx *sqlx.Tx, userID, friendID int64) error {
	query := tx.Rebind(`INSERT INTO user_friends (user_id, friend_id) VALUES (?, ?) ON CONFLICT DO NOTHING`)
	for _, pair := range [][2]int64{{userID, friendID}, {friendID, userID}} {
		if _, err := tx.ExecContext(ctx, query, pair[0], pair[1]); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("friendship %d/%d: %w", userID, friendID, domain.ErrNotFound)
			}
			return fmt.Errorf("failed to insert friendship: %w", err)
		}
	}
	return nil
}

func (s *SQLUserStore) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	s.logger.DebugContext(ctx, "Executing GetAllUsers query")
	if err := s.db.SelectContext(ctx, &rows, userSelect+` ORDER BY u.user_id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return s.hydrate(ctx, rows, false)
}

// GetUserByID собирает пользователя из одного запроса с LEFT JOIN на друзей.
func (s *SQLUserStore) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	query := s.db.Rebind(`SELECT u.user_id, u.name, u.email, u.login, u.birthday, uf.friend_id
FROM users AS u
LEFT OUTER JOIN user_friends AS uf ON uf.user_id = u.user_id
WHERE u.user_id = ?
ORDER BY uf.friend_id`)

	s.logger.DebugContext(ctx, "Executing GetUserByID query", slog.Int64("userID", id))
	rows, err := s.db.QueryxContext(ctx, query, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get user by ID from DB", slog.Int64("userID", id), slog.String("error", err.Error()))
		return domain.User{}, fmt.Errorf("failed to get user by ID: %w", err)
	}
	defer rows.Close()

	var user domain.User
	friends := newGrouper[int64, int64]()
	for rows.Next() {
		var row userFriendRow
		if err := rows.StructScan(&row); err != nil {
			return domain.User{}, fmt.Errorf("failed to scan user row: %w", err)
		}
		if friends.touch(row.ID) {
			user = row.toUser()
		}
		if row.FriendID.Valid {
			friends.add(row.ID, row.FriendID.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.User{}, fmt.Errorf("failed to read user rows: %w", err)
	}
	if len(friends.parents()) == 0 {
		s.logger.WarnContext(ctx, "User not found by ID in DB", slog.Int64("userID", id))
		return domain.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	user.Friends = friends.get(id)
	return user, nil
}

// AddFriend записывает дружбу в обе стороны.
func (s *SQLUserStore) AddFriend(ctx context.Context, userID, friendID int64) error {
	s.logger.DebugContext(ctx, "Executing AddFriend query", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return insertFriendPair(ctx, tx, userID, friendID)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to add friend in DB", slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("error", err.Error()))
		return err
	}
	s.logger.InfoContext(ctx, "Friend added in DB", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

// RemoveFriend удаляет дружбу в обе стороны. Отсутствующая связь не ошибка.
func (s *SQLUserStore) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	s.logger.DebugContext(ctx, "Executing RemoveFriend query", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`DELETE FROM user_friends WHERE user_id = ? AND friend_id = ?`)
		for _, pair := range [][2]int64{{userID, friendID}, {friendID, userID}} {
			if _, err := tx.ExecContext(ctx, query, pair[0], pair[1]); err != nil {
				return fmt.Errorf("failed to remove friendship: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove friend in DB", slog.String("error", err.Error()))
		return err
	}
	s.logger.InfoContext(ctx, "Friend removed in DB", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

func (s *SQLUserStore) GetAllFriendsByID(ctx context.Context, userID int64) ([]domain.User, error) {
	found, err := exists(ctx, s.db, "users", "user_id", userID)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.WarnContext(ctx, "User not found by ID in DB", slog.Int64("userID", userID))
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}

	query := s.db.Rebind(userSelect + `
JOIN user_friends AS uf ON uf.friend_id = u.user_id
WHERE uf.user_id = ?
ORDER BY u.user_id`)
	var rows []userRow
	s.logger.DebugContext(ctx, "Executing GetAllFriendsByID query", slog.Int64("userID", userID))
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list friends from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return s.hydrate(ctx, rows, true)
}

// GetUsersByIDSet возвращает найденных пользователей из ids по возрастанию ID.
// Отсутствующие ID пропускаются.
func (s *SQLUserStore) GetUsersByIDSet(ctx context.Context, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	query, args, err := sqlx.In(userSelect+` WHERE u.user_id IN (?) ORDER BY u.user_id`, uniqueSorted(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to build users query: %w", err)
	}

	var rows []userRow
	s.logger.DebugContext(ctx, "Executing GetUsersByIDSet query", slog.Int("ids", len(ids)))
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get users by id set from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	return s.hydrate(ctx, rows, true)
}

// GetUserFriendIDs возвращает только ID друзей, без сборки агрегатов.
func (s *SQLUserStore) GetUserFriendIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	found, err := exists(ctx, s.db, "users", "user_id", userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}

	var ids []int64
	if err := s.db.SelectContext(ctx, &ids,
		s.db.Rebind(`SELECT friend_id FROM user_friends WHERE user_id = ?`), userID); err != nil {
		return nil, fmt.Errorf("failed to get friend ids: %w", err)
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (s *SQLUserStore) hydrate(ctx context.Context, rows []userRow, onlyRows bool) ([]domain.User, error) {
	users := make([]domain.User, 0, len(rows))
	if len(rows) == 0 {
		return users, nil
	}

	query := `SELECT user_id, friend_id FROM user_friends`
	var args []any
	if onlyRows {
		ids := make([]int64, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ID)
		}
		var err error
		query, args, err = sqlx.In(query+` WHERE user_id IN (?)`, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to build friends query: %w", err)
		}
	}

	var links []friendLink
	if err := s.db.SelectContext(ctx, &links, s.db.Rebind(query+` ORDER BY user_id, friend_id`), args...); err != nil {
		return nil, fmt.Errorf("failed to load friends: %w", err)
	}
	friends := newGrouper[int64, int64]()
	for _, l := range links {
		friends.add(l.UserID, l.FriendID)
	}

	for _, r := range rows {
		user := r.toUser()
		user.Friends = friends.get(r.ID)
		users = append(users, user)
	}
	return users, nil
}
