// Package docstore is a small collection/document abstraction over the
// backing database. Documents are structs; backends decide how they are
// encoded (JSONB rows for libSQL, native documents for Firestore).
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound = errors.New("document not found")

	// ErrFailedPrecondition is returned by Query when the backend cannot
	// serve the requested filter/order combination, typically because a
	// composite index is missing. Callers may retry without OrderBy.
	ErrFailedPrecondition = errors.New("query failed precondition")
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

// Filter is an equality predicate on a top-level field.
type Filter struct {
	Field string
	Value any
}

type Query struct {
	Filters   []Filter
	OrderBy   string
	Direction Direction
	Limit     int
}

// Where returns a Query with a single equality filter.
func Where(field string, value any) Query {
	return Query{Filters: []Filter{{Field: field, Value: value}}}
}

// Ordered returns a copy of q ordered by field.
func (q Query) Ordered(field string, dir Direction) Query {
	q.OrderBy = field
	q.Direction = dir
	return q
}

// Unordered returns a copy of q without ordering.
func (q Query) Unordered() Query {
	q.OrderBy = ""
	return q
}

// Snapshot is a single document read from the store.
type Snapshot interface {
	ID() string
	DataTo(v any) error
}

type Store interface {
	// Create stores doc under a new identifier and returns it.
	Create(ctx context.Context, collection string, doc any) (string, error)
	Get(ctx context.Context, collection, id string, dest any) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Snapshot, error)
	Ping(ctx context.Context) error
	Close() error
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkField(name string) error {
	if !fieldPattern.MatchString(name) {
		return fmt.Errorf("invalid field name %q", name)
	}
	return nil
}

func (q Query) validate() error {
	for _, f := range q.Filters {
		if err := checkField(f.Field); err != nil {
			return err
		}
	}
	if q.OrderBy != "" {
		if err := checkField(q.OrderBy); err != nil {
			return err
		}
	}
	return nil
}
