package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore adapts a *firestore.Client to Store.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

type firestoreSnapshot struct {
	snap *firestore.DocumentSnapshot
}

func (s firestoreSnapshot) ID() string { return s.snap.Ref.ID }

func (s firestoreSnapshot) DataTo(v any) error { return decodeSnapshot(s.snap, v) }

// decodeSnapshot uses the native codec and falls back to the JSON decoders of
// the destination type for shapes the native codec rejects, such as players
// stored as bare names.
func decodeSnapshot(snap *firestore.DocumentSnapshot, v any) error {
	err := snap.DataTo(v)
	if err == nil {
		return nil
	}
	data, jerr := json.Marshal(snap.Data())
	if jerr != nil {
		return err
	}
	if jerr := json.Unmarshal(data, v); jerr != nil {
		return err
	}
	return nil
}

// mapError translates gRPC status codes into store errors.
func mapError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %v", ErrFailedPrecondition, err)
	}
	return err
}

func (s *Firestore) Create(ctx context.Context, collection string, doc any) (string, error) {
	ref := s.client.Collection(collection).NewDoc()
	if _, err := ref.Create(ctx, doc); err != nil {
		return "", mapError(err)
	}
	return ref.ID, nil
}

func (s *Firestore) Get(ctx context.Context, collection, id string, dest any) error {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return mapError(err)
	}
	return decodeSnapshot(snap, dest)
}

func (s *Firestore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		if err := checkField(k); err != nil {
			return err
		}
		updates = append(updates, firestore.Update{Path: k, Value: v})
	}
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	return mapError(err)
}

// Delete fails with ErrNotFound when the document does not exist; Firestore
// itself treats deletes of missing documents as successful.
func (s *Firestore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	return mapError(err)
}

func (s *Firestore) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	fq := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, "==", f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Direction == Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	docs, err := fq.Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}
	if q.OrderBy != "" && q.Limit == 0 {
		docs, err = s.withUnordered(ctx, collection, q, docs)
		if err != nil {
			return nil, err
		}
	}
	snaps := make([]Snapshot, len(docs))
	for i, d := range docs {
		snaps[i] = firestoreSnapshot{snap: d}
	}
	return snaps, nil
}

// withUnordered adds the documents an ordered query skipped because they lack
// the order field. They go last when ascending and first when descending,
// matching the libSQL backend.
func (s *Firestore) withUnordered(ctx context.Context, collection string, q Query, ordered []*firestore.DocumentSnapshot) ([]*firestore.DocumentSnapshot, error) {
	fq := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, "==", f.Value)
	}
	all, err := fq.Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}
	if len(all) == len(ordered) {
		return ordered, nil
	}

	seen := make(map[string]struct{}, len(ordered))
	for _, d := range ordered {
		seen[d.Ref.ID] = struct{}{}
	}
	var missing []*firestore.DocumentSnapshot
	for _, d := range all {
		if _, ok := seen[d.Ref.ID]; !ok {
			missing = append(missing, d)
		}
	}
	if q.Direction == Desc {
		return append(missing, ordered...), nil
	}
	return append(ordered, missing...), nil
}

// Ping issues a single-document read against a reserved collection.
func (s *Firestore) Ping(ctx context.Context) error {
	_, err := s.client.Collection("_health").Limit(1).Documents(ctx).GetAll()
	return mapError(err)
}

func (s *Firestore) Close() error {
	return s.client.Close()
}

var _ Store = (*Firestore)(nil)
