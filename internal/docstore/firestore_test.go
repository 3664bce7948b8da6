package docstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/HarshMohan14/zambara/internal/database"
	"github.com/HarshMohan14/zambara/internal/docstore"
	"github.com/HarshMohan14/zambara/internal/zambara"
)

func newFirestore(t *testing.T) *docstore.Firestore {
	t.Helper()
	host := os.Getenv("FIRESTORE_EMULATOR_HOST")
	if host == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := database.OpenFirestore(context.Background(), "zambara-test", host)
	if err != nil {
		t.Fatalf("opening firestore: %v", err)
	}
	s := docstore.NewFirestore(client)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFirestoreOrderedQueryKeepsDocsWithoutField(t *testing.T) {
	ctx := context.Background()
	s := newFirestore(t)
	collection := "items-" + uuid.NewString()

	for _, doc := range []map[string]any{
		{"name": "b", "group": "g1", "rank": 20},
		{"name": "n", "group": "g1"},
		{"name": "a", "group": "g1", "rank": 10},
	} {
		if _, err := s.Create(ctx, collection, doc); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		dir  docstore.Direction
		want []string
	}{
		{docstore.Asc, []string{"a", "b", "n"}},
		{docstore.Desc, []string{"n", "b", "a"}},
	}
	for _, tt := range tests {
		snaps, err := s.Query(ctx, collection, docstore.Where("group", "g1").Ordered("rank", tt.dir))
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		var got []string
		for _, sn := range snaps {
			var it item
			if err := sn.DataTo(&it); err != nil {
				t.Fatalf("DataTo: %v", err)
			}
			got = append(got, it.Name)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("direction %v: got %v, want %v", tt.dir, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("direction %v: got %v, want %v", tt.dir, got, tt.want)
			}
		}
	}
}

func TestFirestoreDecodesLegacyPlayers(t *testing.T) {
	ctx := context.Background()
	s := newFirestore(t)
	collection := "games-" + uuid.NewString()

	id, err := s.Create(ctx, collection, map[string]any{
		"players": []any{"Asha", map[string]any{"name": "Ravi", "mobile": "9876543210"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var g zambara.Game
	if err := s.Get(ctx, collection, id, &g); err != nil {
		t.Fatalf("get: %v", err)
	}
	want := []zambara.Player{{Name: "Asha"}, {Name: "Ravi", Mobile: "9876543210"}}
	if len(g.Players) != len(want) || g.Players[0] != want[0] || g.Players[1] != want[1] {
		t.Fatalf("players = %+v, want %+v", g.Players, want)
	}
}
