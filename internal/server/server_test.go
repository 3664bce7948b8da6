package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/HarshMohan14/zambara/internal/docstore"
	"github.com/HarshMohan14/zambara/internal/docstore/docstoretest"
	"github.com/HarshMohan14/zambara/internal/games"
	"github.com/HarshMohan14/zambara/internal/ranking"
	"github.com/HarshMohan14/zambara/internal/scores"
)

const (
	testEmail    = "admin@zambara.in"
	testPassword = "changeme"
)

type testEnv struct {
	router http.Handler
	store  docstore.Store
	games  *games.Manager
	scores *scores.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, docstoretest.New(t), nil)
}

func newTestEnvWith(t *testing.T, store docstore.Store, limiter *IPRateLimiter) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := scores.NewRepository(store)
	mgr := games.NewManager(store, repo, logger, nil)
	deps := Deps{
		Logger:     logger,
		Games:      mgr,
		Scores:     repo,
		Rankings:   ranking.NewAggregator(repo, mgr, store, logger, nil),
		Sessions:   NewDocSessions(store),
		Admin:      AdminCredentials{Email: testEmail, PasswordHash: string(hash)},
		SessionTTL: time.Hour,
		Limiter:    limiter,
	}
	return &testEnv{
		router: NewRouter(deps, nil),
		store:  store,
		games:  mgr,
		scores: repo,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login returns the session cookies of a fresh admin login.
func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/admin/login", AdminLoginRequest{Email: testEmail, Password: testPassword}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

type response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) response[T] {
	t.Helper()
	var resp response[T]
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestUnknownAPIPathIsJSON404(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp := decode[any](t, w); resp.Success || resp.Error == "" {
		t.Errorf("resp = %+v", resp)
	}
}
