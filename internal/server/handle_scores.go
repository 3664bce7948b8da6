package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/HarshMohan14/zambara/internal/scores"
)

func handleListScores(logger *slog.Logger, repo *scores.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := strings.TrimSpace(r.URL.Query().Get("gameId"))

		var (
			list any
			err  error
		)
		if gameID != "" {
			list, err = repo.ListByGame(r.Context(), gameID, false)
		} else {
			list, err = repo.List(r.Context())
		}
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeData(w, http.StatusOK, list)
	}
}

func handleCreateScore(logger *slog.Logger, repo *scores.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scores.NewScore
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s, err := repo.Create(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeData(w, http.StatusCreated, s)
	}
}

func handleDeleteScore(logger *slog.Logger, repo *scores.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := repo.Delete(r.Context(), id); err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeData(w, http.StatusOK, DeletedResponse{ID: id})
	}
}
