package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, d Deps) {
	logger := d.Logger

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Zambara API", "/openapi.json", "/docs"))
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	// Public reads, rate limited per client IP.
	r.Group(func(r chi.Router) {
		r.Use(rateLimitMiddleware(d.Limiter))
		r.Get("/api/leaderboard", handleLeaderboard(logger, d.Rankings))
		r.Get("/api/rankings", handleRankings(logger, d.Rankings))
		r.Get("/api/games/{id}", handleGetGame(logger, d.Games))
	})

	// Admin auth.
	r.Post("/api/admin/login", handleAdminLogin(logger, d.Admin, d.Sessions, d.SessionTTL))
	r.Post("/api/admin/logout", handleAdminLogout(d.Sessions))

	r.Group(func(r chi.Router) {
		r.Use(adminAuthMiddleware(logger, d.Sessions))

		r.Get("/api/admin/me", handleAdminMe())
		r.Get("/api/admin/rankings/export", handleExportRankings(logger, d.Rankings))

		r.Get("/api/games", handleListGames(logger, d.Games))
		r.Post("/api/games", handleCreateGame(logger, d.Games))
		r.Patch("/api/games/{id}", handleUpdateGame(logger, d.Games))
		r.Delete("/api/games/{id}", handleDeleteGame(logger, d.Games))

		r.Get("/api/scores", handleListScores(logger, d.Scores))
		r.Post("/api/scores", handleCreateScore(logger, d.Scores))
		r.Delete("/api/scores/{id}", handleDeleteScore(logger, d.Scores))
	})

	var spa http.HandlerFunc
	if d.SPADir != "" {
		if info, err := os.Stat(d.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", d.SPADir)
			spa = handleSPA(d.SPADir)
		}
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if spa == nil || strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		spa(w, r)
	})
}
