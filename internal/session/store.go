// Package session keeps server-side login sessions in Redis. A session is
// the source of truth for who is logged in: deleting it logs the client out
// no matter what cookie it still holds.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) Create(ctx context.Context, userID uint) (Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return Session{}, fmt.Errorf("json.Marshal -> %w", err)
	}

	if err = s.client.Set(ctx, keyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("s.client.Set -> %w", err)
	}

	return sess, nil
}

func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}

		return Session{}, fmt.Errorf("s.client.Get -> %w", err)
	}

	var sess Session
	if err = json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return sess, nil
}

// Destroy removes the session. Destroying a missing session is not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("s.client.Del -> %w", err)
	}

	return nil
}
