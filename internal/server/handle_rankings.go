package server

import (
	"bytes"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/HarshMohan14/zambara/internal/export"
	"github.com/HarshMohan14/zambara/internal/ranking"
)

type LeaderboardResponse struct {
	ranking.Leaderboard
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type RankingsResponse struct {
	ranking.EventRankings
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func handleLeaderboard(logger *slog.Logger, agg *ranking.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := requiredQuery(r, "gameId")
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		page, err := pageFromQuery(r, ranking.DefaultLeaderboardLimit)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		excludeDeleted, err := queryBool(r, "excludeDeleted", true)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		var desc bool
		switch strings.ToLower(r.URL.Query().Get("order")) {
		case "", "asc":
		case "desc":
			desc = true
		default:
			writeError(w, http.StatusBadRequest, "order must be asc or desc")
			return
		}

		lb, err := agg.LeaderboardByGame(r.Context(), gameID, page, ranking.LeaderboardOptions{
			ExcludeDeleted: excludeDeleted,
			Descending:     desc,
		})
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeData(w, http.StatusOK, LeaderboardResponse{Leaderboard: lb, Limit: page.Limit, Offset: page.Offset})
	}
}

// handleRankings accepts page/pageSize (1-based page) as used by the landing
// page slider, or limit/offset like the other endpoints.
func handleRankings(logger *slog.Logger, agg *ranking.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := requiredQuery(r, "eventId")
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		var page ranking.Page
		if r.URL.Query().Has("page") || r.URL.Query().Has("pageSize") {
			n, err := queryInt(r, "page", 1)
			if err != nil {
				writeDomainError(w, r, logger, err)
				return
			}
			size, err := queryInt(r, "pageSize", ranking.DefaultRankingsLimit)
			if err != nil {
				writeDomainError(w, r, logger, err)
				return
			}
			page = pageFromNumber(n, size)
		} else {
			page, err = pageFromQuery(r, ranking.DefaultRankingsLimit)
			if err != nil {
				writeDomainError(w, r, logger, err)
				return
			}
		}

		res, err := agg.RankingsByEvent(r.Context(), eventID, page)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeData(w, http.StatusOK, RankingsResponse{EventRankings: res, Limit: page.Limit, Offset: page.Offset})
	}
}

// handleExportRankings streams every ranking of an event as an XLSX file.
func handleExportRankings(logger *slog.Logger, agg *ranking.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := requiredQuery(r, "eventId")
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		all, err := agg.AllByEvent(r.Context(), eventID)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		var buf bytes.Buffer
		if err := export.WriteRankings(&buf, all); err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(eventID)+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

func pageFromQuery(r *http.Request, def int) (ranking.Page, error) {
	limit, err := queryInt(r, "limit", def)
	if err != nil {
		return ranking.Page{}, err
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return ranking.Page{}, err
	}
	return normalizePage(ranking.Page{Limit: limit, Offset: offset}, def), nil
}

func pageFromNumber(n, size int) ranking.Page {
	size = normalizePage(ranking.Page{Limit: size}, ranking.DefaultRankingsLimit).Limit
	if n < 1 {
		n = 1
	}
	// Pages past the addressable range are empty rather than wrapping.
	if n-1 > math.MaxInt/size {
		return ranking.Page{Limit: size, Offset: math.MaxInt}
	}
	return ranking.Page{Limit: size, Offset: (n - 1) * size}
}

// normalizePage mirrors the aggregator's defaults so responses echo the
// window actually used.
func normalizePage(p ranking.Page, def int) ranking.Page {
	if p.Limit <= 0 {
		p.Limit = def
	}
	p.Limit = min(p.Limit, ranking.MaxLimit)
	p.Offset = max(p.Offset, 0)
	return p
}

