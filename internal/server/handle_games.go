package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HarshMohan14/zambara/internal/games"
	"github.com/HarshMohan14/zambara/internal/zambara"
)

const (
	defaultGamesLimit = 50
	maxGamesLimit     = 500
)

// CreateGameRequest is the body for POST /api/games. Players may be bare
// names or {name, mobile} objects.
type CreateGameRequest struct {
	Name       string                `json:"name,omitempty"`
	Difficulty zambara.Difficulty    `json:"difficulty,omitempty"`
	Players    []zambara.PlayerInput `json:"players"`
	EventID    string                `json:"eventId"`
	HostID     string                `json:"hostId"`
}

// UpdateGameRequest is the body for PATCH /api/games/{id}. A present winner
// completes the game; otherwise name and difficulty are updated.
type UpdateGameRequest struct {
	Winner     *string             `json:"winner,omitempty"`
	Name       *string             `json:"name,omitempty"`
	Difficulty *zambara.Difficulty `json:"difficulty,omitempty"`
}

type GamesPage struct {
	Games  []zambara.Game `json:"games"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type DeletedResponse struct {
	ID string `json:"id"`
}

func handleCreateGame(logger *slog.Logger, mgr *games.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		g, err := mgr.Create(r.Context(), games.CreateInput{
			Name:       req.Name,
			Difficulty: req.Difficulty,
			Players:    zambara.NormalizePlayers(req.Players),
			EventID:    req.EventID,
			HostID:     req.HostID,
		})
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeData(w, http.StatusCreated, g)
	}
}

func handleListGames(logger *slog.Logger, mgr *games.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := games.ListFilter{
			EventID: q.Get("eventId"),
			HostID:  q.Get("hostId"),
			Status:  zambara.GameStatus(q.Get("status")),
		}
		switch filter.Status {
		case "", zambara.GameStatusRunning, zambara.GameStatusCompleted:
		default:
			writeError(w, http.StatusBadRequest, "status must be running or completed")
			return
		}

		limit, err := queryInt(r, "limit", defaultGamesLimit)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		if limit <= 0 {
			limit = defaultGamesLimit
		}
		limit = min(limit, maxGamesLimit)
		offset = max(offset, 0)

		all, err := mgr.List(r.Context(), filter)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		page := []zambara.Game{}
		if offset < len(all) {
			page = all[offset:min(offset+limit, len(all))]
		}
		writeData(w, http.StatusOK, GamesPage{Games: page, Total: len(all), Limit: limit, Offset: offset})
	}
}

func handleGetGame(logger *slog.Logger, mgr *games.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := mgr.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeData(w, http.StatusOK, g)
	}
}

func handleUpdateGame(logger *slog.Logger, mgr *games.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateGameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		id := chi.URLParam(r, "id")
		var (
			g   zambara.Game
			err error
		)
		if req.Winner != nil {
			g, err = mgr.Complete(r.Context(), id, *req.Winner)
		} else {
			g, err = mgr.UpdateMetadata(r.Context(), id, games.MetadataUpdate{
				Name:       req.Name,
				Difficulty: req.Difficulty,
			})
		}
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeData(w, http.StatusOK, g)
	}
}

func handleDeleteGame(logger *slog.Logger, mgr *games.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := mgr.Delete(r.Context(), id); err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeData(w, http.StatusOK, DeletedResponse{ID: id})
	}
}
