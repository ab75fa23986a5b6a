package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"filmorate/internal/domain"
	"filmorate/internal/service"
	"filmorate/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := store.NewMemoryUserStore(logger)
	films := store.NewMemoryFilmStore(users, logger)
	handler := NewHTTPHandler(
		service.NewFilmService(films, users, 0, logger),
		service.NewUserService(users, logger),
		service.NewCatalogService(store.NewMemoryCatalogStore()),
		logger,
		NewValidator(),
	)
	srv := httptest.NewServer(NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, body string, out interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp
}

const filmBody = `{"name":"Nausicaa","description":"Valley of the Wind","releaseDate":"1984-03-11","duration":117,
	"mpa":{"id":2},"genres":[{"id":3,"name":"WRONG"},{"id":2},{"id":3}]}`

func TestCreateAndGetFilm(t *testing.T) {
	srv := newTestServer(t)

	var created domain.FilmResponse
	resp := doJSON(t, srv, http.MethodPost, "/films", filmBody, &created)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	if created.ID != 1 || created.ReleaseDate != "1984-03-11" || created.Mpa.Name != "PG" {
		t.Fatalf("unexpected film: %+v", created)
	}
	want := []domain.Genre{{ID: 3, Name: "Мультфильм"}, {ID: 2, Name: "Драма"}}
	if !reflect.DeepEqual(created.Genres, want) {
		t.Fatalf("genres: want %v, got %v", want, created.Genres)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatalf("response must carry a request id")
	}

	var got domain.FilmResponse
	if resp := doJSON(t, srv, http.MethodGet, "/films/1", "", &got); resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status %d", resp.StatusCode)
	}
	if !reflect.DeepEqual(got, created) {
		t.Fatalf("get returned %+v, created %+v", got, created)
	}
}

func TestFilmValidation(t *testing.T) {
	srv := newTestServer(t)
	cases := map[string]string{
		"blank name":     `{"name":"  ","releaseDate":"2000-01-01","duration":10}`,
		"long desc":      `{"name":"x","description":"` + strings.Repeat("a", 201) + `","releaseDate":"2000-01-01","duration":10}`,
		"too early":      `{"name":"x","releaseDate":"1895-12-27","duration":10}`,
		"bad date":       `{"name":"x","releaseDate":"01.01.2000","duration":10}`,
		"zero duration":  `{"name":"x","releaseDate":"2000-01-01","duration":0}`,
		"malformed json": `{"name":`,
	}
	for name, body := range cases {
		var errResp ErrorResponse
		resp := doJSON(t, srv, http.MethodPost, "/films", body, &errResp)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.StatusCode)
		}
		if errResp.Error == "" || errResp.Description == "" {
			t.Fatalf("%s: error body incomplete: %+v", name, errResp)
		}
	}

	var ok domain.FilmResponse
	resp := doJSON(t, srv, http.MethodPost, "/films", `{"name":"Workers","releaseDate":"1895-12-28","duration":1}`, &ok)
	if resp.StatusCode != http.StatusOK || ok.Mpa.ID != 1 {
		t.Fatalf("first cinema day must be accepted with default mpa: %d %+v", resp.StatusCode, ok)
	}
}

func TestUnknownCatalogReferenceIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	body := `{"name":"x","releaseDate":"2000-01-01","duration":10,"genres":[{"id":9}]}`
	if resp := doJSON(t, srv, http.MethodPost, "/films", body, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body = `{"name":"x","releaseDate":"2000-01-01","duration":10,"mpa":{"id":0}}`
	if resp := doJSON(t, srv, http.MethodPost, "/films", body, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("explicit mpa id 0: expected 404, got %d", resp.StatusCode)
	}
	body = `{"name":"x","releaseDate":"2000-01-01","duration":10}`
	var created domain.FilmResponse
	if resp := doJSON(t, srv, http.MethodPost, "/films", body, &created); resp.StatusCode != http.StatusOK || created.Mpa.Name != "G" {
		t.Fatalf("absent mpa must default to G: %d %+v", resp.StatusCode, created)
	}
}

func TestUnsupportedMediaType(t *testing.T) {
	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/films", strings.NewReader(filmBody))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.StatusCode)
	}
}

func TestUpdateFilmKeepsLikesWhenAbsent(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/films", filmBody, nil)
	doJSON(t, srv, http.MethodPost, "/users", `{"email":"a@b.cd","login":"fan","birthday":"2000-01-01"}`, nil)
	if resp := doJSON(t, srv, http.MethodPut, "/films/1/like/1", "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("like: status %d", resp.StatusCode)
	}

	var updated domain.FilmResponse
	body := `{"id":1,"name":"Nausicaa","releaseDate":"1984-03-11","duration":118,"genres":[]}`
	if resp := doJSON(t, srv, http.MethodPut, "/films", body, &updated); resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}
	if len(updated.Genres) != 0 || !reflect.DeepEqual(updated.Likes, []int64{1}) || updated.Duration != 118 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	body = `{"id":1,"name":"Nausicaa","releaseDate":"1984-03-11","duration":118,"likes":[]}`
	if resp := doJSON(t, srv, http.MethodPut, "/films", body, &updated); resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}
	if len(updated.Likes) != 0 {
		t.Fatalf("explicit empty likes must clear them: %v", updated.Likes)
	}

	body = `{"id":99,"name":"x","releaseDate":"1984-03-11","duration":1}`
	if resp := doJSON(t, srv, http.MethodPut, "/films", body, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown film: expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateFilmRejectsUnknownLiker(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, srv, http.MethodPost, "/films", filmBody, nil)

	body := `{"id":1,"name":"Nausicaa","releaseDate":"1984-03-11","duration":200,"likes":[999]}`
	if resp := doJSON(t, srv, http.MethodPut, "/films", body, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown liker: expected 404, got %d", resp.StatusCode)
	}
	var got domain.FilmResponse
	doJSON(t, srv, http.MethodGet, "/films/1", "", &got)
	if len(got.Likes) != 0 || got.Duration != 117 {
		t.Fatalf("rejected update must not change the film: %+v", got)
	}
}

func TestPopularFilms(t *testing.T) {
	srv := newTestServer(t)
	for i := 0; i < 3; i++ {
		doJSON(t, srv, http.MethodPost, "/films", filmBody, nil)
	}
	doJSON(t, srv, http.MethodPost, "/users", `{"email":"a@b.cd","login":"fan","birthday":"2000-01-01"}`, nil)
	doJSON(t, srv, http.MethodPut, "/films/3/like/1", "", nil)

	var top []domain.FilmResponse
	if resp := doJSON(t, srv, http.MethodGet, "/films/popular?count=2", "", &top); resp.StatusCode != http.StatusOK {
		t.Fatalf("popular: status %d", resp.StatusCode)
	}
	if len(top) != 2 || top[0].ID != 3 || top[1].ID != 1 {
		t.Fatalf("unexpected ranking: %+v", top)
	}
	if resp := doJSON(t, srv, http.MethodGet, "/films/popular?count=abc", "", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad count: expected 400, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, srv, http.MethodPut, "/films/3/like/42", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("like from unknown user: expected 404, got %d", resp.StatusCode)
	}
}

func TestUsersAndFriends(t *testing.T) {
	srv := newTestServer(t)
	var created domain.UserResponse
	resp := doJSON(t, srv, http.MethodPost, "/users", `{"email":"neo@matrix.io","login":"neo","birthday":"1964-09-02"}`, &created)
	if resp.StatusCode != http.StatusOK || created.Name != "neo" {
		t.Fatalf("create: %d %+v", resp.StatusCode, created)
	}
	doJSON(t, srv, http.MethodPost, "/users", `{"name":"Trinity","email":"t@matrix.io","login":"trinity","birthday":"1967-08-21"}`, nil)
	doJSON(t, srv, http.MethodPost, "/users", `{"email":"m@matrix.io","login":"morpheus","birthday":"1961-07-30"}`, nil)

	for _, path := range []string{"/users/1/friends/3", "/users/2/friends/3"} {
		if resp := doJSON(t, srv, http.MethodPut, path, "", nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", path, resp.StatusCode)
		}
	}

	var friends []domain.UserResponse
	doJSON(t, srv, http.MethodGet, "/users/3/friends", "", &friends)
	if len(friends) != 2 || friends[0].ID != 1 || friends[1].ID != 2 {
		t.Fatalf("friendship must be mutual: %+v", friends)
	}

	var common []domain.UserResponse
	doJSON(t, srv, http.MethodGet, "/users/1/friends/common/2", "", &common)
	if len(common) != 1 || common[0].ID != 3 {
		t.Fatalf("unexpected common friends: %+v", common)
	}

	if resp := doJSON(t, srv, http.MethodPut, "/users/1/friends/1", "", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self friendship: expected 400, got %d", resp.StatusCode)
	}
	selfBody := `{"id":1,"email":"neo@matrix.io","login":"neo","birthday":"1964-09-02","friends":[1]}`
	if resp := doJSON(t, srv, http.MethodPut, "/users", selfBody, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self in friend list: expected 400, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, srv, http.MethodGet, "/users/9/friends", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown user: expected 404, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, srv, http.MethodGet, "/users/abc", "", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("non numeric id: expected 400, got %d", resp.StatusCode)
	}

	if resp := doJSON(t, srv, http.MethodDelete, "/users/3/friends/1", "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("remove friend: status %d", resp.StatusCode)
	}
	var user domain.UserResponse
	doJSON(t, srv, http.MethodGet, "/users/1", "", &user)
	if len(user.Friends) != 0 {
		t.Fatalf("removal must be mutual: %+v", user)
	}
}

func TestUserValidation(t *testing.T) {
	srv := newTestServer(t)
	cases := map[string]string{
		"bad email":       `{"email":"not-an-email","login":"x","birthday":"2000-01-01"}`,
		"login w/ space":  `{"email":"a@b.cd","login":"two words","birthday":"2000-01-01"}`,
		"future birthday": `{"email":"a@b.cd","login":"x","birthday":"2999-01-01"}`,
		"missing login":   `{"email":"a@b.cd","birthday":"2000-01-01"}`,
	}
	for name, body := range cases {
		if resp := doJSON(t, srv, http.MethodPost, "/users", body, nil); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.StatusCode)
		}
	}
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t)
	var genres []domain.Genre
	doJSON(t, srv, http.MethodGet, "/genres", "", &genres)
	if len(genres) != 6 || genres[5].Name != "Боевик" {
		t.Fatalf("unexpected genres: %v", genres)
	}
	var rating domain.MpaRating
	if resp := doJSON(t, srv, http.MethodGet, "/mpa/5", "", &rating); resp.StatusCode != http.StatusOK || rating.Name != "NC-17" {
		t.Fatalf("mpa 5: %d %+v", resp.StatusCode, rating)
	}
	if resp := doJSON(t, srv, http.MethodGet, "/genres/7", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("genre 7: expected 404, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, srv, http.MethodGet, "/mpa/x", "", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("mpa x: expected 400, got %d", resp.StatusCode)
	}
}
