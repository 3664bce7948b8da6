package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/HarshMohan14/zambara/internal/docstore"
)

const adminCookieName = "admin_session"

var errNoAdminSession = errors.New("no valid admin session")

type AdminSession struct {
	AdminID   string    `json:"adminId" firestore:"adminId"`
	Email     string    `json:"email" firestore:"email"`
	ExpiresAt time.Time `json:"expiresAt" firestore:"expiresAt"`
}

// SessionStore keeps admin sessions keyed by the cookie value. Get returns
// errNoAdminSession for unknown or expired sessions.
type SessionStore interface {
	Create(ctx context.Context, sess AdminSession) (string, error)
	Get(ctx context.Context, id string) (AdminSession, error)
	Delete(ctx context.Context, id string) error
}

const collectionSessions = "adminSessions"

// DocSessions stores sessions in the document store. Expired sessions are
// removed when they are next read.
type DocSessions struct {
	store docstore.Store
	now   func() time.Time
}

func NewDocSessions(store docstore.Store) *DocSessions {
	return &DocSessions{store: store, now: time.Now}
}

func (s *DocSessions) Create(ctx context.Context, sess AdminSession) (string, error) {
	id, err := s.store.Create(ctx, collectionSessions, sess)
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return id, nil
}

func (s *DocSessions) Get(ctx context.Context, id string) (AdminSession, error) {
	var sess AdminSession
	err := s.store.Get(ctx, collectionSessions, id, &sess)
	if errors.Is(err, docstore.ErrNotFound) {
		return AdminSession{}, errNoAdminSession
	}
	if err != nil {
		return AdminSession{}, err
	}
	if !s.now().Before(sess.ExpiresAt) {
		_ = s.store.Delete(ctx, collectionSessions, id)
		return AdminSession{}, errNoAdminSession
	}
	return sess, nil
}

func (s *DocSessions) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, collectionSessions, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	return err
}

// RedisSessions stores sessions as JSON values that expire with the session.
type RedisSessions struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{rdb: rdb, now: time.Now}
}

func sessionKey(id string) string { return "zambara:session:" + id }

func (s *RedisSessions) Create(ctx context.Context, sess AdminSession) (string, error) {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return "", errors.New("session already expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(id), data, ttl).Err(); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return id, nil
}

func (s *RedisSessions) Get(ctx context.Context, id string) (AdminSession, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return AdminSession{}, errNoAdminSession
	}
	if err != nil {
		return AdminSession{}, err
	}
	var sess AdminSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return AdminSession{}, err
	}
	return sess, nil
}

func (s *RedisSessions) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}
