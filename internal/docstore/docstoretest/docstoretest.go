// Package docstoretest provides document stores for tests: a real libSQL
// store on a temporary file, and wrappers that inject backend failures.
package docstoretest

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/HarshMohan14/zambara/internal/database"
	"github.com/HarshMohan14/zambara/internal/docstore"
	"github.com/HarshMohan14/zambara/internal/migrations"
)

// New opens a migrated libSQL store that is closed when the test ends.
func New(t testing.TB) *docstore.LibSQL {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		t.Fatalf("running migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return docstore.NewLibSQL(db)
}

// NoIndex rejects every ordered query the way Firestore does when a
// composite index is missing.
type NoIndex struct {
	docstore.Store
	Rejected atomic.Int64
}

func (s *NoIndex) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Snapshot, error) {
	if q.OrderBy != "" && len(q.Filters) > 0 {
		s.Rejected.Add(1)
		return nil, docstore.ErrFailedPrecondition
	}
	return s.Store.Query(ctx, collection, q)
}

// ErrInjected is returned by FailCreate.
var ErrInjected = errors.New("injected failure")

// FailCreate fails every Create in the named collection.
type FailCreate struct {
	docstore.Store
	Collection string
}

func (s *FailCreate) Create(ctx context.Context, collection string, doc any) (string, error) {
	if collection == s.Collection {
		return "", ErrInjected
	}
	return s.Store.Create(ctx, collection, doc)
}
