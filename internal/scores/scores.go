// Package scores stores completion records, one per completed game winner.
package scores

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HarshMohan14/zambara/internal/docstore"
	"github.com/HarshMohan14/zambara/internal/zambara"
)

// NewScore is the input for Create.
type NewScore struct {
	PlayerName   string   `json:"playerName"`
	PlayerMobile string   `json:"playerMobile,omitempty"`
	PlayerID     string   `json:"playerId,omitempty"`
	GameID       string   `json:"gameId"`
	Time         *float64 `json:"time"`
}

func (n *NewScore) validate() error {
	n.PlayerName = strings.TrimSpace(n.PlayerName)
	n.PlayerMobile = strings.TrimSpace(n.PlayerMobile)
	n.GameID = strings.TrimSpace(n.GameID)
	if err := zambara.Required("gameId", n.GameID); err != nil {
		return err
	}
	if err := zambara.Required("playerName", n.PlayerName); err != nil {
		return err
	}
	return zambara.ValidateTime(n.Time)
}

type Repository struct {
	store docstore.Store
	now   func() time.Time
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store, now: time.Now}
}

// Create validates and persists a completion record.
func (r *Repository) Create(ctx context.Context, in NewScore) (zambara.Score, error) {
	if err := in.validate(); err != nil {
		return zambara.Score{}, err
	}

	t := *in.Time
	s := zambara.Score{
		PlayerName:   in.PlayerName,
		PlayerMobile: in.PlayerMobile,
		PlayerID:     in.PlayerID,
		GameID:       in.GameID,
		Time:         &t,
		CreatedAt:    r.now().UTC(),
	}
	id, err := r.store.Create(ctx, zambara.CollectionScores, s)
	if err != nil {
		return zambara.Score{}, fmt.Errorf("creating score: %w", err)
	}
	s.ID = id
	return s, nil
}

// ListByGame returns the records of one game. With ordered set the store is
// asked to sort by time; a missing index surfaces as
// docstore.ErrFailedPrecondition.
func (r *Repository) ListByGame(ctx context.Context, gameID string, ordered bool) ([]zambara.Score, error) {
	q := docstore.Where("gameId", gameID)
	if ordered {
		q = q.Ordered("time", docstore.Asc)
	}
	return r.query(ctx, q)
}

// List returns every record, newest first.
func (r *Repository) List(ctx context.Context) ([]zambara.Score, error) {
	all, err := r.query(ctx, docstore.Query{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

func (r *Repository) Get(ctx context.Context, id string) (zambara.Score, error) {
	var s zambara.Score
	if err := r.store.Get(ctx, zambara.CollectionScores, id, &s); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return zambara.Score{}, zambara.ErrNotFound
		}
		return zambara.Score{}, err
	}
	s.ID = id
	return s, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, zambara.CollectionScores, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return zambara.ErrNotFound
	}
	return err
}

// DeleteByGame removes every record of a game and reports how many went.
func (r *Repository) DeleteByGame(ctx context.Context, gameID string) (int, error) {
	list, err := r.ListByGame(ctx, gameID, false)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, s := range list {
		err := r.store.Delete(ctx, zambara.CollectionScores, s.ID)
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return n, fmt.Errorf("deleting score %s: %w", s.ID, err)
		}
		n++
	}
	return n, nil
}

func (r *Repository) query(ctx context.Context, q docstore.Query) ([]zambara.Score, error) {
	snaps, err := r.store.Query(ctx, zambara.CollectionScores, q)
	if err != nil {
		return nil, err
	}
	out := make([]zambara.Score, 0, len(snaps))
	for _, snap := range snaps {
		var s zambara.Score
		if err := snap.DataTo(&s); err != nil {
			return nil, fmt.Errorf("decoding score %s: %w", snap.ID(), err)
		}
		s.ID = snap.ID()
		out = append(out, s)
	}
	return out, nil
}
