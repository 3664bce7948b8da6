package scores

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/HarshMohan14/zambara/internal/docstore"
	"github.com/HarshMohan14/zambara/internal/docstore/docstoretest"
	"github.com/HarshMohan14/zambara/internal/zambara"
)

func seconds(v float64) *float64 { return &v }

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	store := docstoretest.New(t)
	repo := NewRepository(store)

	tests := []struct {
		name string
		in   NewScore
	}{
		{"negative time", NewScore{PlayerName: "Asha", GameID: "g1", Time: seconds(-5)}},
		{"nan time", NewScore{PlayerName: "Asha", GameID: "g1", Time: seconds(math.NaN())}},
		{"missing time", NewScore{PlayerName: "Asha", GameID: "g1"}},
		{"missing game", NewScore{PlayerName: "Asha", Time: seconds(5)}},
		{"blank player", NewScore{PlayerName: "  ", GameID: "g1", Time: seconds(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tt.in)
			if !zambara.IsValidation(err) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}

	// Nothing was persisted.
	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no records, got %d", len(all))
	}
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstoretest.New(t))

	for _, tm := range []float64{30, 10, 20} {
		if _, err := repo.Create(ctx, NewScore{PlayerName: "P", GameID: "g1", Time: seconds(tm)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := repo.Create(ctx, NewScore{PlayerName: "Q", GameID: "g2", Time: seconds(1)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	ordered, err := repo.ListByGame(ctx, "g1", true)
	if err != nil {
		t.Fatalf("list ordered: %v", err)
	}
	if len(ordered) != 3 {
		t.Fatalf("len = %d, want 3", len(ordered))
	}
	for i, want := range []float64{10, 20, 30} {
		if *ordered[i].Time != want {
			t.Errorf("ordered[%d].Time = %v, want %v", i, *ordered[i].Time, want)
		}
		if ordered[i].ID == "" {
			t.Errorf("ordered[%d] has no id", i)
		}
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len(all) = %d, want 4", len(all))
	}
}

func TestListByGameSurfacesMissingIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(&docstoretest.NoIndex{Store: docstoretest.New(t)})

	if _, err := repo.ListByGame(ctx, "g1", true); !errors.Is(err, docstore.ErrFailedPrecondition) {
		t.Fatalf("err = %v, want ErrFailedPrecondition", err)
	}
	if _, err := repo.ListByGame(ctx, "g1", false); err != nil {
		t.Fatalf("unordered: %v", err)
	}
}

func TestDeleteByGameAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(docstoretest.New(t))

	for i := 0; i < 3; i++ {
		if _, err := repo.Create(ctx, NewScore{PlayerName: "P", GameID: "g1", Time: seconds(float64(i))}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	keep, err := repo.Create(ctx, NewScore{PlayerName: "Q", GameID: "g2", Time: seconds(1)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := repo.DeleteByGame(ctx, "g1")
	if err != nil {
		t.Fatalf("delete by game: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted %d, want 3", n)
	}
	left, _ := repo.ListByGame(ctx, "g1", false)
	if len(left) != 0 {
		t.Errorf("expected g1 empty, got %d", len(left))
	}

	got, err := repo.Get(ctx, keep.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.GameID != "g2" {
		t.Errorf("GameID = %q", got.GameID)
	}

	if err := repo.Delete(ctx, keep.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, keep.ID); !errors.Is(err, zambara.ErrNotFound) {
		t.Fatalf("second delete: err = %v, want ErrNotFound", err)
	}
}
