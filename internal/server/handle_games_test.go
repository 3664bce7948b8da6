package server

import (
	"net/http"
	"testing"

	"github.com/HarshMohan14/zambara/internal/zambara"
)

func gameBody() map[string]any {
	return map[string]any{
		"name":       "Friday table",
		"difficulty": "medium",
		"eventId":    "ev1",
		"hostId":     "h1",
		"players": []any{
			map[string]string{"name": "Asha", "mobile": "9876543210"},
			map[string]string{"name": "Bilal", "mobile": "9876543211"},
			map[string]string{"name": "Chen", "mobile": "9876543212"},
		},
	}
}

func createGame(t *testing.T, env *testEnv, cookies []*http.Cookie) zambara.Game {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/games", gameBody(), cookies)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[zambara.Game](t, w).Data
}

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	g := createGame(t, env, cookies)
	if g.ID == "" || g.Status != zambara.GameStatusRunning || g.StartTime == nil {
		t.Fatalf("game = %+v", g)
	}
	if len(g.Players) != 3 {
		t.Errorf("players = %d", len(g.Players))
	}

	// Public read.
	w := env.do(t, http.MethodGet, "/api/games/"+g.ID, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	if got := decode[zambara.Game](t, w).Data; got.ID != g.ID {
		t.Errorf("got id %q", got.ID)
	}
}

func TestCreateGameValidation(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"two players", func(b map[string]any) { b["players"] = b["players"].([]any)[:2] }},
		{"legacy bare names have no mobile", func(b map[string]any) { b["players"] = []any{"Asha", "Bilal", "Chen"} }},
		{"bad mobile", func(b map[string]any) {
			b["players"].([]any)[0] = map[string]string{"name": "Asha", "mobile": "abc"}
		}},
		{"missing event", func(b map[string]any) { delete(b, "eventId") }},
		{"bad player shape", func(b map[string]any) { b["players"] = []any{1, 2, 3} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := gameBody()
			tt.mutate(body)
			w := env.do(t, http.MethodPost, "/api/games", body, cookies)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			resp := decode[any](t, w)
			if resp.Success || resp.Error == "" {
				t.Errorf("resp = %+v", resp)
			}
		})
	}
}

func TestCompleteGame(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)
	g := createGame(t, env, cookies)

	w := env.do(t, http.MethodPatch, "/api/games/"+g.ID, map[string]string{"winner": "Bilal_9876543211"}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	done := decode[zambara.Game](t, w).Data
	if done.Status != zambara.GameStatusCompleted || done.WinnerTime == nil || done.WinnerID != "Bilal_9876543211" {
		t.Fatalf("game = %+v", done)
	}

	w = env.do(t, http.MethodPatch, "/api/games/"+g.ID, map[string]string{"winner": "Asha"}, cookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second complete: expected 400, got %d", w.Code)
	}
	if resp := decode[any](t, w); resp.Error != zambara.ErrAlreadyCompleted.Error() {
		t.Errorf("error = %q", resp.Error)
	}

	w = env.do(t, http.MethodPatch, "/api/games/missing", map[string]string{"winner": "Asha"}, cookies)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: expected 404, got %d", w.Code)
	}

	// The completion record is on the public leaderboard.
	w = env.do(t, http.MethodGet, "/api/leaderboard?gameId="+g.ID, nil, nil)
	lb := decode[LeaderboardResponse](t, w).Data
	if lb.Total != 1 || lb.Entries[0].PlayerID != "Bilal_9876543211" {
		t.Errorf("leaderboard = %+v", lb)
	}
}

func TestUpdateGameMetadata(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)
	g := createGame(t, env, cookies)

	w := env.do(t, http.MethodPatch, "/api/games/"+g.ID, map[string]string{"name": "Finals", "difficulty": "hard"}, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	got := decode[zambara.Game](t, w).Data
	if got.Name != "Finals" || got.Difficulty != zambara.DifficultyHard || got.Status != zambara.GameStatusRunning {
		t.Errorf("game = %+v", got)
	}

	w = env.do(t, http.MethodPatch, "/api/games/"+g.ID, map[string]string{"difficulty": "brutal"}, cookies)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad difficulty: expected 400, got %d", w.Code)
	}
}

func TestListAndDeleteGames(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)
	first := createGame(t, env, cookies)
	createGame(t, env, cookies)
	createGame(t, env, cookies)

	w := env.do(t, http.MethodGet, "/api/games?eventId=ev1&limit=2", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	page := decode[GamesPage](t, w).Data
	if page.Total != 3 || len(page.Games) != 2 || page.Limit != 2 {
		t.Fatalf("page = %+v", page)
	}

	if w := env.do(t, http.MethodGet, "/api/games?status=paused", nil, cookies); w.Code != http.StatusBadRequest {
		t.Errorf("bad status: expected 400, got %d", w.Code)
	}

	if w := env.do(t, http.MethodPatch, "/api/games/"+first.ID, map[string]string{"winner": "Asha"}, cookies); w.Code != http.StatusOK {
		t.Fatalf("complete: %d", w.Code)
	}

	w = env.do(t, http.MethodDelete, "/api/games/"+first.ID, nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/games/"+first.ID, nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("get deleted: expected 404, got %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/api/games/"+first.ID, nil, cookies); w.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/leaderboard?excludeDeleted=false&gameId="+first.ID, nil, nil)
	if lb := decode[LeaderboardResponse](t, w).Data; lb.Total != 0 || len(lb.Entries) != 0 {
		t.Errorf("leaderboard after delete = %+v", lb)
	}
}
