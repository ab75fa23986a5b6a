package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"filmorate/internal/domain"
	"filmorate/internal/store"
)

func newServices(t *testing.T) (*FilmService, *UserService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := store.NewMemoryUserStore(logger)
	films := store.NewMemoryFilmStore(users, logger)
	return NewFilmService(films, users, 0, logger), NewUserService(users, logger)
}

func addUser(t *testing.T, s *UserService, login string) domain.User {
	t.Helper()
	u, err := s.AddUser(context.Background(), domain.User{
		Login:    login,
		Email:    login + "@example.com",
		Birthday: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("add user %s: %v", login, err)
	}
	return u
}

func addFilm(t *testing.T, s *FilmService, name string) domain.Film {
	t.Helper()
	f, err := s.AddFilm(context.Background(), domain.Film{
		Name:        name,
		ReleaseDate: time.Date(2010, time.July, 16, 0, 0, 0, 0, time.UTC),
		Duration:    148,
	})
	if err != nil {
		t.Fatalf("add film %s: %v", name, err)
	}
	return f
}

func TestAddLikeRequiresUser(t *testing.T) {
	films, users := newServices(t)
	film := addFilm(t, films, "Inception")
	user := addUser(t, users, "cobb")
	ctx := context.Background()

	if err := films.AddLike(ctx, film.ID, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown user: expected not found, got %v", err)
	}
	if err := films.AddLike(ctx, 99, user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown film: expected not found, got %v", err)
	}
	if err := films.RemoveLike(ctx, film.ID, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("remove with unknown user: expected not found, got %v", err)
	}
	if err := films.AddLike(ctx, film.ID, user.ID); err != nil {
		t.Fatalf("add like: %v", err)
	}
}

func TestTopFilmsDefaultCount(t *testing.T) {
	films, users := newServices(t)
	ctx := context.Background()
	user := addUser(t, users, "viewer")
	var last domain.Film
	for i := 0; i < 12; i++ {
		last = addFilm(t, films, "film")
	}
	if err := films.AddLike(ctx, last.ID, user.ID); err != nil {
		t.Fatalf("add like: %v", err)
	}

	for _, count := range []int{0, -3} {
		top, err := films.GetTopFilms(ctx, count)
		if err != nil {
			t.Fatalf("top films: %v", err)
		}
		if len(top) != DefaultTopCount {
			t.Fatalf("count %d: expected %d films, got %d", count, DefaultTopCount, len(top))
		}
		if top[0].ID != last.ID {
			t.Fatalf("liked film must rank first, got %d", top[0].ID)
		}
	}

	top, err := films.GetTopFilms(ctx, 3)
	if err != nil || len(top) != 3 {
		t.Fatalf("explicit count: %d films, err %v", len(top), err)
	}
}

func TestFriendValidation(t *testing.T) {
	_, users := newServices(t)
	ctx := context.Background()
	a := addUser(t, users, "a")

	if err := users.AddFriend(ctx, a.ID, a.ID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("self friendship: expected validation error, got %v", err)
	}
	if err := users.AddFriend(ctx, a.ID, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown friend: expected not found, got %v", err)
	}
	if err := users.RemoveFriend(ctx, 404, a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown user: expected not found, got %v", err)
	}
}

func TestUpdateUserRejectsSelfFriendship(t *testing.T) {
	_, users := newServices(t)
	ctx := context.Background()
	a := addUser(t, users, "a")
	b := addUser(t, users, "b")

	a.Friends = []int64{b.ID, a.ID}
	if _, err := users.UpdateUser(ctx, a); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("self in friend list: expected validation error, got %v", err)
	}
	got, err := users.GetUserByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if len(got.Friends) != 0 {
		t.Fatalf("rejected update must not add friends: %v", got.Friends)
	}

	a.Friends = []int64{b.ID}
	updated, err := users.UpdateUser(ctx, a)
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if !reflect.DeepEqual(updated.Friends, []int64{b.ID}) {
		t.Fatalf("unexpected friends: %v", updated.Friends)
	}
}

func TestCommonFriends(t *testing.T) {
	_, users := newServices(t)
	ctx := context.Background()
	a := addUser(t, users, "a")
	b := addUser(t, users, "b")
	c := addUser(t, users, "c")
	d := addUser(t, users, "d")
	e := addUser(t, users, "e")

	for _, pair := range [][2]int64{{a.ID, d.ID}, {a.ID, c.ID}, {b.ID, d.ID}, {b.ID, c.ID}, {a.ID, e.ID}} {
		if err := users.AddFriend(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("add friend %v: %v", pair, err)
		}
	}

	common, err := users.GetCommonFriends(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("common friends: %v", err)
	}
	ids := []int64{}
	for _, u := range common {
		ids = append(ids, u.ID)
	}
	if !reflect.DeepEqual(ids, []int64{c.ID, d.ID}) {
		t.Fatalf("unexpected common friends: %v", ids)
	}

	none, err := users.GetCommonFriends(ctx, b.ID, e.ID)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no common friends, got %v (%v)", none, err)
	}

	if _, err := users.GetCommonFriends(ctx, a.ID, 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown other user: expected not found, got %v", err)
	}
}
