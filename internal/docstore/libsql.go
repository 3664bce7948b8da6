package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LibSQL stores every collection in the documents table created by the
// migrations package, one JSONB row per document.
type LibSQL struct {
	db *sql.DB
}

func NewLibSQL(db *sql.DB) *LibSQL {
	return &LibSQL{db: db}
}

type jsonSnapshot struct {
	id   string
	data []byte
}

func (s jsonSnapshot) ID() string { return s.id }

func (s jsonSnapshot) DataTo(v any) error { return json.Unmarshal(s.data, v) }

func (s *LibSQL) Create(ctx context.Context, collection string, doc any) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES (?, ?, jsonb(?))`,
		collection, id, string(data),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *LibSQL) Get(ctx context.Context, collection, id string, dest any) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM documents WHERE collection = ? AND id = ?`, collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// Update loads the document, merges fields and saves it in a transaction.
func (s *LibSQL) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT json(data) FROM documents WHERE collection = ? AND id = ?`, collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	doc := map[string]any{}
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return err
	}
	for k, v := range fields {
		if err := checkField(k); err != nil {
			return err
		}
		doc[k] = v
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET data = jsonb(?) WHERE collection = ? AND id = ?`,
		string(merged), collection, id,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *LibSQL) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *LibSQL) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	var b strings.Builder
	args := []any{collection}
	b.WriteString(`SELECT id, json(data) FROM documents WHERE collection = ?`)
	for _, f := range q.Filters {
		fmt.Fprintf(&b, ` AND json_extract(data, '$.%s') = ?`, f.Field)
		args = append(args, f.Value)
	}
	if q.OrderBy != "" {
		dir := "ASC NULLS LAST"
		if q.Direction == Desc {
			dir = "DESC NULLS FIRST"
		}
		fmt.Fprintf(&b, ` ORDER BY json_extract(data, '$.%s') %s, rowid`, q.OrderBy, dir)
	} else {
		b.WriteString(` ORDER BY rowid`)
	}
	if q.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		snaps = append(snaps, jsonSnapshot{id: id, data: []byte(data)})
	}
	return snaps, rows.Err()
}

func (s *LibSQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *LibSQL) Close() error {
	return s.db.Close()
}

var _ Store = (*LibSQL)(nil)
