package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"filmorate/internal/domain"
	"filmorate/internal/service"
	"filmorate/internal/store"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fixture struct {
	client FilmServiceClient
	conn   *grpc.ClientConn
	films  *service.FilmService
	users  *service.UserService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userStore := store.NewMemoryUserStore(logger)
	films := service.NewFilmService(store.NewMemoryFilmStore(userStore, logger), userStore, 0, logger)
	users := service.NewUserService(userStore, logger)

	lis := bufconn.Listen(1 << 20)
	grpcSrv, _ := NewGRPCServer(NewServer(films, users, logger), logger)
	go grpcSrv.Serve(lis)
	t.Cleanup(grpcSrv.Stop)

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
	client, err := NewFilmServiceGRPCClient("passthrough:///bufnet", logger, dialer)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	conn := client.(*filmServiceGRPCClient).conn
	return fixture{client: client, conn: conn, films: films, users: users}
}

func TestExistenceChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	film, err := f.films.AddFilm(ctx, domain.Film{
		Name:        "Solaris",
		ReleaseDate: time.Date(1972, time.March, 20, 0, 0, 0, 0, time.UTC),
		Duration:    167,
		Genres:      []domain.Genre{{ID: 2}},
	})
	if err != nil {
		t.Fatalf("add film: %v", err)
	}

	exists, err := f.client.CheckFilmExists(ctx, film.ID)
	if err != nil || !exists {
		t.Fatalf("film must exist: %v %v", exists, err)
	}
	exists, err = f.client.CheckFilmExists(ctx, film.ID+100)
	if err != nil || exists {
		t.Fatalf("unknown film must not exist: %v %v", exists, err)
	}
	exists, err = f.client.CheckUserExists(ctx, 1)
	if err != nil || exists {
		t.Fatalf("no users yet: %v %v", exists, err)
	}

	if _, err := f.users.AddUser(ctx, domain.User{Login: "kelvin", Email: "k@solaris.su"}); err != nil {
		t.Fatalf("add user: %v", err)
	}
	exists, err = f.client.CheckUserExists(ctx, 1)
	if err != nil || !exists {
		t.Fatalf("user must exist: %v %v", exists, err)
	}
}

func TestGetFilmInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	film, err := f.films.AddFilm(ctx, domain.Film{
		Name:        "Stalker",
		ReleaseDate: time.Date(1979, time.May, 25, 0, 0, 0, 0, time.UTC),
		Duration:    161,
		Genres:      []domain.Genre{{ID: 2}, {ID: 4}},
		Mpa:         &domain.MpaRating{ID: 3},
	})
	if err != nil {
		t.Fatalf("add film: %v", err)
	}

	info, err := f.client.GetFilmInfo(ctx, film.ID)
	if err != nil {
		t.Fatalf("get film info: %v", err)
	}
	if info["name"] != "Stalker" || info["mpa"] != "PG-13" || info["releaseDate"] != "1979-05-25" {
		t.Fatalf("unexpected info: %v", info)
	}
	if info["duration"] != float64(161) || info["likes"] != float64(0) {
		t.Fatalf("unexpected numbers: %v", info)
	}
	genres, ok := info["genres"].([]interface{})
	if !ok || len(genres) != 2 || genres[0] != "Драма" {
		t.Fatalf("unexpected genres: %v", info["genres"])
	}

	_, err = f.client.GetFilmInfo(ctx, 404)
	if status.Code(errors.Unwrap(err)) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestInvalidArgument(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.CheckFilmExists(context.Background(), 0)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("client must reject non-positive id, got %v", err)
	}
}

func TestHealthServing(t *testing.T) {
	f := newFixture(t)
	resp, err := healthpb.NewHealthClient(f.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected status: %v", resp.GetStatus())
	}
}
