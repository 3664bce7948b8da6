// Package ranking derives leaderboards from completion records. Nothing here
// is persisted: every call reads the records and sorts them again.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/HarshMohan14/zambara/internal/docstore"
	"github.com/HarshMohan14/zambara/internal/games"
	"github.com/HarshMohan14/zambara/internal/metrics"
	"github.com/HarshMohan14/zambara/internal/zambara"
)

const (
	DefaultLeaderboardLimit = 100
	DefaultRankingsLimit    = 50
	MaxLimit                = 500

	// fanOut bounds concurrent score reads for event rankings.
	fanOut = 8

	deletedEventName = "Deleted event"
)

type ScoreSource interface {
	ListByGame(ctx context.Context, gameID string, ordered bool) ([]zambara.Score, error)
}

type GameSource interface {
	Get(ctx context.Context, gameID string) (zambara.Game, error)
	List(ctx context.Context, f games.ListFilter) ([]zambara.Game, error)
}

// Page is a limit/offset window. Zero or negative limits take the
// operation's default.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize(def int) Page {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type Entry struct {
	Rank       int       `json:"rank"`
	ScoreID    string    `json:"scoreId"`
	PlayerName string    `json:"playerName"`
	PlayerID   string    `json:"playerId,omitempty"`
	Time       *float64  `json:"time"`
	GameID     string    `json:"gameId"`
	GameName   string    `json:"gameName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Leaderboard struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

type LeaderboardOptions struct {
	// ExcludeDeleted drops records whose game no longer exists.
	ExcludeDeleted bool
	Descending     bool
}

type EventInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted,omitempty"`
}

type EventRankings struct {
	Rankings []Entry    `json:"rankings"`
	Total    int        `json:"total"`
	Event    *EventInfo `json:"event"`
}

type Aggregator struct {
	scores  ScoreSource
	games   GameSource
	events  docstore.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	fallbackLogged atomic.Bool
}

func NewAggregator(scores ScoreSource, games GameSource, events docstore.Store, logger *slog.Logger, m *metrics.Metrics) *Aggregator {
	return &Aggregator{
		scores:  scores,
		games:   games,
		events:  events,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("github.com/HarshMohan14/zambara/internal/ranking"),
	}
}

// LeaderboardByGame ranks the completion records of one game.
func (a *Aggregator) LeaderboardByGame(ctx context.Context, gameID string, page Page, opts LeaderboardOptions) (Leaderboard, error) {
	ctx, span := a.tracer.Start(ctx, "ranking.LeaderboardByGame", trace.WithAttributes(attribute.String("game.id", gameID)))
	defer span.End()

	page = page.normalize(DefaultLeaderboardLimit)

	var gameName string
	g, err := a.games.Get(ctx, gameID)
	switch {
	case err == nil:
		gameName = g.DisplayName()
	case errors.Is(err, zambara.ErrNotFound):
		if opts.ExcludeDeleted {
			return Leaderboard{Entries: []Entry{}}, nil
		}
	default:
		return Leaderboard{}, err
	}

	recs, err := a.scoresFor(ctx, gameID, "leaderboard")
	if err != nil {
		span.RecordError(err)
		return Leaderboard{}, err
	}

	sortScores(recs, opts.Descending)
	entries := rank(recs, func(string) string { return gameName })
	return Leaderboard{Entries: slice(entries, page), Total: len(entries)}, nil
}

// RankingsByEvent merges the records of every game in the event into one
// ascending ranking.
func (a *Aggregator) RankingsByEvent(ctx context.Context, eventID string, page Page) (EventRankings, error) {
	page = page.normalize(DefaultRankingsLimit)

	res, err := a.rankEvent(ctx, eventID)
	if err != nil {
		return EventRankings{}, err
	}
	res.Rankings = slice(res.Rankings, page)
	return res, nil
}

// AllByEvent returns the full event ranking from a single read of every game.
func (a *Aggregator) AllByEvent(ctx context.Context, eventID string) (EventRankings, error) {
	return a.rankEvent(ctx, eventID)
}

func (a *Aggregator) rankEvent(ctx context.Context, eventID string) (EventRankings, error) {
	ctx, span := a.tracer.Start(ctx, "ranking.RankingsByEvent", trace.WithAttributes(attribute.String("event.id", eventID)))
	defer span.End()

	gs, err := a.games.List(ctx, games.ListFilter{EventID: eventID})
	if err != nil {
		span.RecordError(err)
		return EventRankings{}, err
	}
	if len(gs) == 0 {
		return EventRankings{Rankings: []Entry{}}, nil
	}

	event, err := a.event(ctx, eventID)
	if err != nil {
		return EventRankings{}, err
	}

	names := make(map[string]string, len(gs))
	perGame := make([][]zambara.Score, len(gs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(fanOut)
	for i, g := range gs {
		names[g.ID] = g.DisplayName()
		eg.Go(func() error {
			recs, err := a.scoresFor(egCtx, g.ID, "rankings")
			if err != nil {
				return fmt.Errorf("reading scores of game %s: %w", g.ID, err)
			}
			perGame[i] = recs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		return EventRankings{}, err
	}

	var all []zambara.Score
	for _, recs := range perGame {
		all = append(all, recs...)
	}
	sortScores(all, false)
	entries := rank(all, func(id string) string { return names[id] })
	span.SetAttributes(attribute.Int("games", len(gs)), attribute.Int("scores", len(entries)))

	return EventRankings{
		Rankings: entries,
		Total:    len(entries),
		Event:    event,
	}, nil
}

func (a *Aggregator) event(ctx context.Context, eventID string) (*EventInfo, error) {
	var ev zambara.Event
	err := a.events.Get(ctx, zambara.CollectionEvents, eventID, &ev)
	if errors.Is(err, docstore.ErrNotFound) {
		return &EventInfo{ID: eventID, Name: deletedEventName, Deleted: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading event: %w", err)
	}
	return &EventInfo{ID: eventID, Name: ev.Name}, nil
}

// scoresFor asks the store for time-ordered records and retries unordered
// when the store lacks the index. Callers sort the result either way.
func (a *Aggregator) scoresFor(ctx context.Context, gameID, operation string) ([]zambara.Score, error) {
	recs, err := a.scores.ListByGame(ctx, gameID, true)
	if !errors.Is(err, docstore.ErrFailedPrecondition) {
		return recs, err
	}

	a.metrics.RankingFallback(operation)
	if a.fallbackLogged.CompareAndSwap(false, true) {
		a.logger.Warn("ordered score query rejected by store, sorting in memory",
			"operation", operation,
			"error", err,
		)
	}
	return a.scores.ListByGame(ctx, gameID, false)
}

// sortScores orders by time with missing times treated as worst: last when
// ascending, first when descending. Equal times fall back to createdAt then
// id, both ascending.
func sortScores(recs []zambara.Score, desc bool) {
	key := func(s zambara.Score) float64 {
		if s.Time == nil {
			return math.Inf(1)
		}
		return *s.Time
	}
	sort.SliceStable(recs, func(i, j int) bool {
		ki, kj := key(recs[i]), key(recs[j])
		if ki != kj {
			if desc {
				return ki > kj
			}
			return ki < kj
		}
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}

func rank(recs []zambara.Score, gameName func(gameID string) string) []Entry {
	out := make([]Entry, len(recs))
	for i, s := range recs {
		out[i] = Entry{
			Rank:       i + 1,
			ScoreID:    s.ID,
			PlayerName: s.PlayerName,
			PlayerID:   s.PlayerID,
			Time:       s.Time,
			GameID:     s.GameID,
			GameName:   gameName(s.GameID),
			CreatedAt:  s.CreatedAt,
		}
	}
	return out
}

func slice(entries []Entry, p Page) []Entry {
	if p.Offset >= len(entries) {
		return []Entry{}
	}
	end := p.Offset + p.Limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[p.Offset:end]
}
