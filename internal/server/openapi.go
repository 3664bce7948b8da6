package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/HarshMohan14/zambara/internal/export"
	"github.com/HarshMohan14/zambara/internal/scores"
	"github.com/HarshMohan14/zambara/internal/zambara"
)

// Response shapes for the document. Handlers write the same fields through
// envelope.

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type GameResponse struct {
	Success bool         `json:"success"`
	Data    zambara.Game `json:"data"`
}

type GamesPageResponse struct {
	Success bool      `json:"success"`
	Data    GamesPage `json:"data"`
}

type DeletedEnvelope struct {
	Success bool            `json:"success"`
	Data    DeletedResponse `json:"data"`
}

type LeaderboardEnvelope struct {
	Success bool                `json:"success"`
	Data    LeaderboardResponse `json:"data"`
}

type RankingsEnvelope struct {
	Success bool             `json:"success"`
	Data    RankingsResponse `json:"data"`
}

type ScoreResponse struct {
	Success bool          `json:"success"`
	Data    zambara.Score `json:"data"`
}

type ScoresResponse struct {
	Success bool            `json:"success"`
	Data    []zambara.Score `json:"data"`
}

type AdminMeEnvelope struct {
	Success bool            `json:"success"`
	Data    AdminMeResponse `json:"data"`
}

type gameIDPath struct {
	ID string `path:"id"`
}

type listGamesQuery struct {
	EventID string `query:"eventId"`
	HostID  string `query:"hostId"`
	Status  string `query:"status" enum:"running,completed"`
	Limit   int    `query:"limit"`
	Offset  int    `query:"offset"`
}

type leaderboardQuery struct {
	GameID         string `query:"gameId" required:"true"`
	Limit          int    `query:"limit" default:"100" maximum:"500"`
	Offset         int    `query:"offset"`
	ExcludeDeleted bool   `query:"excludeDeleted" default:"true"`
	Order          string `query:"order" enum:"asc,desc" default:"asc"`
}

type rankingsQuery struct {
	EventID  string `query:"eventId" required:"true"`
	Page     int    `query:"page" minimum:"1"`
	PageSize int    `query:"pageSize" maximum:"500"`
	Limit    int    `query:"limit" default:"50" maximum:"500"`
	Offset   int    `query:"offset"`
}

type updateGameInput struct {
	gameIDPath
	UpdateGameRequest
}

type scoresQuery struct {
	GameID string `query:"gameId"`
}

type exportQuery struct {
	EventID string `query:"eventId" required:"true"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Zambara API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Game lifecycle, leaderboards and event rankings for Zambara.")

	add := func(method, path, summary, desc string, req any, resps map[int]any) {
		op, _ := r.NewOperationContext(method, path)
		op.SetSummary(summary)
		op.SetDescription(desc)
		if req != nil {
			op.AddReqStructure(req)
		}
		for status, body := range resps {
			op.AddRespStructure(body, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(op)
	}

	errResp := ErrorResponse{}

	add(http.MethodGet, "/healthz", "Health check",
		"Returns the health status of backend dependencies.", nil,
		map[int]any{http.StatusOK: HealthResponse{}, http.StatusServiceUnavailable: HealthResponse{}})

	add(http.MethodPost, "/api/games", "Create game",
		"Starts a running game with 3 to 6 players. Requires admin_session cookie.",
		CreateGameRequest{},
		map[int]any{http.StatusCreated: GameResponse{}, http.StatusBadRequest: errResp, http.StatusUnauthorized: errResp})

	add(http.MethodGet, "/api/games", "List games",
		"Lists games newest first with optional filters. Requires admin_session cookie.",
		listGamesQuery{},
		map[int]any{http.StatusOK: GamesPageResponse{}, http.StatusUnauthorized: errResp})

	add(http.MethodGet, "/api/games/{id}", "Get game", "Returns one game.",
		gameIDPath{},
		map[int]any{http.StatusOK: GameResponse{}, http.StatusNotFound: errResp})

	add(http.MethodPatch, "/api/games/{id}", "Complete or update game",
		"With winner set, completes a running game and records the winner's time. "+
			"Otherwise updates name and difficulty. Requires admin_session cookie.",
		updateGameInput{},
		map[int]any{http.StatusOK: GameResponse{}, http.StatusBadRequest: errResp, http.StatusNotFound: errResp})

	add(http.MethodDelete, "/api/games/{id}", "Delete game",
		"Deletes the game and its completion records. Requires admin_session cookie.",
		gameIDPath{},
		map[int]any{http.StatusOK: DeletedEnvelope{}, http.StatusNotFound: errResp})

	add(http.MethodGet, "/api/leaderboard", "Game leaderboard",
		"Completion records of one game ranked by time.",
		leaderboardQuery{},
		map[int]any{http.StatusOK: LeaderboardEnvelope{}, http.StatusBadRequest: errResp, http.StatusTooManyRequests: errResp})

	add(http.MethodGet, "/api/rankings", "Event rankings",
		"Completion records of every game in an event ranked by time.",
		rankingsQuery{},
		map[int]any{http.StatusOK: RankingsEnvelope{}, http.StatusBadRequest: errResp, http.StatusTooManyRequests: errResp})

	add(http.MethodGet, "/api/scores", "List completion records",
		"All records, or one game's records. Requires admin_session cookie.",
		scoresQuery{},
		map[int]any{http.StatusOK: ScoresResponse{}, http.StatusUnauthorized: errResp})

	add(http.MethodPost, "/api/scores", "Create completion record",
		"Adds a record by hand. Requires admin_session cookie.",
		scores.NewScore{},
		map[int]any{http.StatusCreated: ScoreResponse{}, http.StatusBadRequest: errResp})

	add(http.MethodDelete, "/api/scores/{id}", "Delete completion record",
		"Requires admin_session cookie.",
		gameIDPath{},
		map[int]any{http.StatusOK: DeletedEnvelope{}, http.StatusNotFound: errResp})

	exportOp, _ := r.NewOperationContext(http.MethodGet, "/api/admin/rankings/export")
	exportOp.SetSummary("Export event rankings")
	exportOp.SetDescription("Downloads every ranking of an event as XLSX. Requires admin_session cookie.")
	exportOp.AddReqStructure(exportQuery{})
	exportOp.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK), openapi.WithContentType(export.ContentType))
	exportOp.AddRespStructure(errResp, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(exportOp)

	add(http.MethodPost, "/api/admin/login", "Admin login",
		"Authenticate with email and password. Sets admin_session cookie.",
		AdminLoginRequest{},
		map[int]any{http.StatusOK: AdminMeEnvelope{}, http.StatusUnauthorized: errResp})

	add(http.MethodPost, "/api/admin/logout", "Admin logout",
		"Clears admin session and cookie.", nil,
		map[int]any{http.StatusOK: ErrorResponse{Success: true}})

	add(http.MethodGet, "/api/admin/me", "Current admin",
		"Returns the currently authenticated admin. Requires admin_session cookie.", nil,
		map[int]any{http.StatusOK: AdminMeEnvelope{}, http.StatusUnauthorized: errResp})

	return r.Spec
}

// HealthResponse documents the /healthz body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

