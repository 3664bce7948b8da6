package server

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/HarshMohan14/zambara/internal/export"
	"github.com/HarshMohan14/zambara/internal/scores"
	"github.com/HarshMohan14/zambara/internal/zambara"
)

// seedEvent creates an event with two games whose records have times 15 and
// 5, plus a third record of 25 on the first game.
func seedEvent(t *testing.T, env *testEnv) (eventID string, gameIDs []string) {
	t.Helper()
	ctx := context.Background()

	eventID, err := env.store.Create(ctx, zambara.CollectionEvents, zambara.Event{Name: "Launch Night"})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	for i, times := range [][]float64{{15, 25}, {5}} {
		body := gameBody()
		body["eventId"] = eventID
		body["name"] = []string{"Table one", "Table two"}[i]
		w := env.do(t, http.MethodPost, "/api/games", body, env.login(t))
		if w.Code != http.StatusCreated {
			t.Fatalf("create game: %d %s", w.Code, w.Body.String())
		}
		g := decode[zambara.Game](t, w).Data
		gameIDs = append(gameIDs, g.ID)
		for _, tm := range times {
			tm := tm
			if _, err := env.scores.Create(ctx, scores.NewScore{PlayerName: "P", GameID: g.ID, Time: &tm}); err != nil {
				t.Fatalf("create score: %v", err)
			}
		}
	}
	return eventID, gameIDs
}

func TestRankingsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	eventID, _ := seedEvent(t, env)

	tests := []struct {
		name      string
		query     string
		wantTimes []float64
		wantRanks []int
		wantLimit int
	}{
		{"defaults", "", []float64{5, 15, 25}, []int{1, 2, 3}, 50},
		{"page two of size one", "&page=2&pageSize=1", []float64{15}, []int{2}, 1},
		{"limit offset", "&limit=2&offset=1", []float64{15, 25}, []int{2, 3}, 2},
		{"limit capped", "&limit=9999", []float64{5, 15, 25}, []int{1, 2, 3}, 500},
		{"page past the end", "&page=4&pageSize=1", nil, nil, 1},
		{"page beyond int range", "&page=9223372036854775807&pageSize=50", nil, nil, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/rankings?eventId="+eventID+tt.query, nil, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			data := decode[RankingsResponse](t, w).Data
			if data.Total != 3 {
				t.Errorf("Total = %d, want 3", data.Total)
			}
			if data.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", data.Limit, tt.wantLimit)
			}
			if data.Offset < 0 {
				t.Errorf("Offset = %d, want non-negative", data.Offset)
			}
			if len(data.Rankings) != len(tt.wantTimes) {
				t.Fatalf("got %d entries, want %d", len(data.Rankings), len(tt.wantTimes))
			}
			for i, e := range data.Rankings {
				if *e.Time != tt.wantTimes[i] || e.Rank != tt.wantRanks[i] {
					t.Errorf("entry %d = rank %d time %v", i, e.Rank, *e.Time)
				}
			}
			if data.Event == nil || data.Event.Name != "Launch Night" {
				t.Errorf("Event = %+v", data.Event)
			}
		})
	}
}

func TestRankingsEndpointErrors(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, http.MethodGet, "/api/rankings", nil, nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing eventId: expected 400, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/rankings?eventId=e&limit=abc", nil, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/rankings?eventId=empty", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("empty event: expected 200, got %d", w.Code)
	}
	// event is present and null when the event has no games.
	if body := w.Body.String(); !strings.Contains(body, `"event":null`) || !strings.Contains(body, `"rankings":[]`) {
		t.Errorf("body = %s", body)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, gameIDs := seedEvent(t, env)
	gameID := gameIDs[0]

	w := env.do(t, http.MethodGet, "/api/leaderboard?gameId="+gameID+"&order=desc", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	lb := decode[LeaderboardResponse](t, w).Data
	if lb.Total != 2 || *lb.Entries[0].Time != 25 || lb.Entries[0].GameName != "Table one" {
		t.Errorf("leaderboard = %+v", lb)
	}
	if lb.Limit != 100 {
		t.Errorf("Limit = %d, want 100", lb.Limit)
	}

	for _, q := range []string{"", "?gameId=" + gameID + "&order=sideways", "?gameId=" + gameID + "&excludeDeleted=maybe"} {
		if w := env.do(t, http.MethodGet, "/api/leaderboard"+q, nil, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", q, w.Code)
		}
	}
}

func TestExportRankings(t *testing.T) {
	env := newTestEnv(t)
	eventID, _ := seedEvent(t, env)

	w := env.do(t, http.MethodGet, "/api/admin/rankings/export?eventId="+eventID, nil, env.login(t))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != export.ContentType {
		t.Errorf("content-type = %q", got)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, export.Filename(eventID)) {
		t.Errorf("content-disposition = %q", got)
	}

	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Rankings")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3", len(rows))
	}
	if rows[1][0] != "1" || rows[1][3] != "5" {
		t.Errorf("first row = %v", rows[1])
	}
}
