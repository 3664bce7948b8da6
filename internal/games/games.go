// Package games owns the lifecycle of a single game: creation with its
// players, the one-way running to completed transition, and deletion.
package games

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/HarshMohan14/zambara/internal/docstore"
	"github.com/HarshMohan14/zambara/internal/metrics"
	"github.com/HarshMohan14/zambara/internal/scores"
	"github.com/HarshMohan14/zambara/internal/zambara"
)

// ScoreStore is the slice of the completion record repository the manager
// needs.
type ScoreStore interface {
	Create(ctx context.Context, in scores.NewScore) (zambara.Score, error)
	DeleteByGame(ctx context.Context, gameID string) (int, error)
}

type Manager struct {
	store   docstore.Store
	scores  ScoreStore
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

func NewManager(store docstore.Store, scores ScoreStore, logger *slog.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		store:   store,
		scores:  scores,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("github.com/HarshMohan14/zambara/internal/games"),
		now:     time.Now,
	}
}

// WithClock returns a copy of the manager that reads time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	c := *m
	c.now = now
	return &c
}

type CreateInput struct {
	Name       string
	Difficulty zambara.Difficulty
	Players    []zambara.Player
	EventID    string
	HostID     string
}

func (in *CreateInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.EventID = strings.TrimSpace(in.EventID)
	in.HostID = strings.TrimSpace(in.HostID)
	for i := range in.Players {
		in.Players[i].Name = strings.TrimSpace(in.Players[i].Name)
		in.Players[i].Mobile = strings.TrimSpace(in.Players[i].Mobile)
	}

	if err := zambara.ValidatePlayers(in.Players); err != nil {
		return err
	}
	if err := zambara.Required("eventId", in.EventID); err != nil {
		return err
	}
	if err := zambara.Required("hostId", in.HostID); err != nil {
		return err
	}
	if in.Difficulty != "" && !in.Difficulty.Valid() {
		return &zambara.ValidationError{Field: "difficulty", Message: "difficulty must be easy, medium, or hard"}
	}
	return nil
}

// Create validates the input and persists a running game started now.
func (m *Manager) Create(ctx context.Context, in CreateInput) (zambara.Game, error) {
	ctx, span := m.tracer.Start(ctx, "games.Create")
	defer span.End()

	if err := in.validate(); err != nil {
		return zambara.Game{}, err
	}

	now := m.now().UTC()
	g := zambara.Game{
		Name:       in.Name,
		Difficulty: in.Difficulty,
		Players:    in.Players,
		EventID:    in.EventID,
		HostID:     in.HostID,
		Status:     zambara.GameStatusRunning,
		StartTime:  &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	id, err := m.store.Create(ctx, zambara.CollectionGames, g)
	if err != nil {
		span.RecordError(err)
		return zambara.Game{}, fmt.Errorf("creating game: %w", err)
	}
	g.ID = id
	span.SetAttributes(attribute.String("game.id", id))

	m.metrics.GameCreated()
	m.logger.Info("game created", "game_id", id, "event_id", g.EventID, "players", len(g.Players))
	return g, nil
}

// Complete moves a running game to completed, records the winner and the
// elapsed whole seconds, then writes a completion record for the winner.
// The record write is best effort: its failure is logged, never returned.
func (m *Manager) Complete(ctx context.Context, gameID, winner string) (zambara.Game, error) {
	ctx, span := m.tracer.Start(ctx, "games.Complete", trace.WithAttributes(attribute.String("game.id", gameID)))
	defer span.End()

	if err := zambara.Required("winner", winner); err != nil {
		return zambara.Game{}, err
	}

	g, err := m.Get(ctx, gameID)
	if err != nil {
		return zambara.Game{}, err
	}
	if g.Status != zambara.GameStatusRunning {
		return zambara.Game{}, zambara.ErrAlreadyCompleted
	}
	if g.StartTime == nil || g.StartTime.IsZero() {
		return zambara.Game{}, zambara.ErrMissingStartTime
	}

	now := m.now().UTC()
	elapsed := int64(now.Sub(*g.StartTime) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	ref := zambara.ParseWinner(winner).Resolve(g.Players)

	fields := map[string]any{
		"status":      zambara.GameStatusCompleted,
		"winner":      ref.Name,
		"winnerId":    ref.ID(),
		"winnerTime":  elapsed,
		"completedAt": now,
		"updatedAt":   now,
	}
	if ref.Mobile != "" {
		fields["winnerMobile"] = ref.Mobile
	}
	if err := m.store.Update(ctx, zambara.CollectionGames, gameID, fields); err != nil {
		span.RecordError(err)
		if errors.Is(err, docstore.ErrNotFound) {
			return zambara.Game{}, zambara.ErrNotFound
		}
		return zambara.Game{}, fmt.Errorf("completing game: %w", err)
	}

	g.Status = zambara.GameStatusCompleted
	g.Winner = ref.Name
	g.WinnerID = ref.ID()
	g.WinnerMobile = ref.Mobile
	g.WinnerTime = &elapsed
	g.CompletedAt = &now
	g.UpdatedAt = now
	m.metrics.GameCompleted()

	t := float64(elapsed)
	_, err = m.scores.Create(ctx, scores.NewScore{
		PlayerName:   ref.Name,
		PlayerMobile: ref.Mobile,
		PlayerID:     ref.ID(),
		GameID:       gameID,
		Time:         &t,
	})
	if err != nil {
		m.metrics.ScoreRecordFailed()
		m.logger.Error("writing completion record failed",
			"game_id", gameID,
			"winner", ref.ID(),
			"error", err,
		)
	}

	m.logger.Info("game completed", "game_id", gameID, "winner", ref.ID(), "winner_time", elapsed)
	return g, nil
}

// Delete removes the game's completion records, then the game. The two steps
// are not atomic.
func (m *Manager) Delete(ctx context.Context, gameID string) error {
	ctx, span := m.tracer.Start(ctx, "games.Delete", trace.WithAttributes(attribute.String("game.id", gameID)))
	defer span.End()

	if _, err := m.Get(ctx, gameID); err != nil {
		return err
	}

	n, err := m.scores.DeleteByGame(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("deleting scores of game %s: %w", gameID, err)
	}

	if err := m.store.Delete(ctx, zambara.CollectionGames, gameID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return zambara.ErrNotFound
		}
		return fmt.Errorf("deleting game: %w", err)
	}

	m.metrics.GameDeleted()
	m.logger.Info("game deleted", "game_id", gameID, "scores_deleted", n)
	return nil
}

func (m *Manager) Get(ctx context.Context, gameID string) (zambara.Game, error) {
	var g zambara.Game
	if err := m.store.Get(ctx, zambara.CollectionGames, gameID, &g); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return zambara.Game{}, zambara.ErrNotFound
		}
		return zambara.Game{}, fmt.Errorf("reading game: %w", err)
	}
	g.ID = gameID
	return g, nil
}

type ListFilter struct {
	EventID string
	HostID  string
	Status  zambara.GameStatus
}

// List returns the games matching every non-empty filter field, newest first.
func (m *Manager) List(ctx context.Context, f ListFilter) ([]zambara.Game, error) {
	var q docstore.Query
	if f.EventID != "" {
		q.Filters = append(q.Filters, docstore.Filter{Field: "eventId", Value: f.EventID})
	}
	if f.HostID != "" {
		q.Filters = append(q.Filters, docstore.Filter{Field: "hostId", Value: f.HostID})
	}
	if f.Status != "" {
		q.Filters = append(q.Filters, docstore.Filter{Field: "status", Value: string(f.Status)})
	}

	snaps, err := m.store.Query(ctx, zambara.CollectionGames, q)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	out := make([]zambara.Game, 0, len(snaps))
	for _, snap := range snaps {
		var g zambara.Game
		if err := snap.DataTo(&g); err != nil {
			return nil, fmt.Errorf("decoding game %s: %w", snap.ID(), err)
		}
		g.ID = snap.ID()
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MetadataUpdate carries the optional fields PATCH may change on a game.
type MetadataUpdate struct {
	Name       *string
	Difficulty *zambara.Difficulty
}

func (u MetadataUpdate) validate() error {
	if u.Difficulty != nil && *u.Difficulty != "" && !u.Difficulty.Valid() {
		return &zambara.ValidationError{Field: "difficulty", Message: "difficulty must be easy, medium, or hard"}
	}
	return nil
}

// UpdateMetadata changes display fields without touching the lifecycle.
func (m *Manager) UpdateMetadata(ctx context.Context, gameID string, u MetadataUpdate) (zambara.Game, error) {
	if err := u.validate(); err != nil {
		return zambara.Game{}, err
	}

	g, err := m.Get(ctx, gameID)
	if err != nil {
		return zambara.Game{}, err
	}

	now := m.now().UTC()
	fields := map[string]any{"updatedAt": now}
	if u.Name != nil {
		g.Name = strings.TrimSpace(*u.Name)
		fields["name"] = g.Name
	}
	if u.Difficulty != nil {
		g.Difficulty = *u.Difficulty
		fields["difficulty"] = string(g.Difficulty)
	}
	if err := m.store.Update(ctx, zambara.CollectionGames, gameID, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return zambara.Game{}, zambara.ErrNotFound
		}
		return zambara.Game{}, fmt.Errorf("updating game: %w", err)
	}
	g.UpdatedAt = now
	return g, nil
}
