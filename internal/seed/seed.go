// Package seed fills an empty store with a demo event, a host and a handful
// of completed games so the landing page has rankings to show.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/HarshMohan14/zambara/internal/docstore"
	"github.com/HarshMohan14/zambara/internal/games"
	"github.com/HarshMohan14/zambara/internal/zambara"
)

type Options struct {
	Games int
	// Seed makes the generated names and times reproducible. Zero picks a
	// seed from the clock.
	Seed int64
}

type Result struct {
	EventID string
	HostID  string
	GameIDs []string
	Skipped bool
}

// Demo seeds the store unless an event already exists.
func Demo(ctx context.Context, logger *slog.Logger, store docstore.Store, mgr *games.Manager, opts Options) (Result, error) {
	existing, err := store.Query(ctx, zambara.CollectionEvents, docstore.Query{Limit: 1})
	if err != nil {
		return Result{}, fmt.Errorf("checking for events: %w", err)
	}
	if len(existing) > 0 {
		return Result{Skipped: true}, nil
	}

	if opts.Games <= 0 {
		opts.Games = 5
	}
	s := opts.Seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	faker := gofakeit.New(uint64(s))

	eventID, err := store.Create(ctx, zambara.CollectionEvents, zambara.Event{Name: faker.Company() + " Game Night"})
	if err != nil {
		return Result{}, fmt.Errorf("creating event: %w", err)
	}
	hostID, err := store.Create(ctx, zambara.CollectionHosts, zambara.Host{Name: faker.Name()})
	if err != nil {
		return Result{}, fmt.Errorf("creating host: %w", err)
	}

	// Each game starts at the clock and completes a random number of seconds
	// later, so winner times differ.
	clock := time.Now().Add(-time.Duration(opts.Games) * time.Hour)
	m := mgr.WithClock(func() time.Time { return clock })

	res := Result{EventID: eventID, HostID: hostID}
	difficulties := []zambara.Difficulty{zambara.DifficultyEasy, zambara.DifficultyMedium, zambara.DifficultyHard}
	for i := 0; i < opts.Games; i++ {
		players := make([]zambara.Player, faker.Number(zambara.MinPlayers, zambara.MaxPlayers))
		for j := range players {
			players[j] = zambara.Player{Name: faker.FirstName(), Mobile: faker.Numerify("98########")}
		}

		g, err := m.Create(ctx, games.CreateInput{
			Name:       fmt.Sprintf("Table %d", i+1),
			Difficulty: difficulties[faker.Number(0, len(difficulties)-1)],
			Players:    players,
			EventID:    eventID,
			HostID:     hostID,
		})
		if err != nil {
			return Result{}, fmt.Errorf("creating game %d: %w", i+1, err)
		}

		clock = clock.Add(time.Duration(faker.Number(60, 900)) * time.Second)
		winner := players[faker.Number(0, len(players)-1)]
		if _, err := m.Complete(ctx, g.ID, winner.ID()); err != nil {
			return Result{}, fmt.Errorf("completing game %d: %w", i+1, err)
		}
		clock = clock.Add(10 * time.Minute)
		res.GameIDs = append(res.GameIDs, g.ID)
	}

	logger.Info("demo data seeded", "event_id", eventID, "games", len(res.GameIDs))
	return res, nil
}
