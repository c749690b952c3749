package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"equiprent-backend/internal/domain"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a Store keeping carts in Redis, so they survive
// process restarts and are shared across instances. Each cart lives under one
// key with a sliding TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) key(sessionID string) string {
	return "selection:" + sessionID
}

func (s *redisStore) load(ctx context.Context, sessionID string) (domain.Selection, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewSelection(), nil
	}
	if err != nil {
		return domain.Selection{}, fmt.Errorf("load selection: %w", err)
	}
	sel := domain.NewSelection()
	if err := json.Unmarshal(data, &sel); err != nil {
		return domain.Selection{}, fmt.Errorf("decode selection: %w", err)
	}
	return sel, nil
}

func (s *redisStore) save(ctx context.Context, sessionID string, sel domain.Selection) error {
	if sel.Empty() {
		return s.Clear(ctx, sessionID)
	}
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

func (s *redisStore) Add(ctx context.Context, sessionID string, kind domain.SelectionKind, id int64, quantity int32) error {
	if quantity <= 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	sel, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	apply(&sel, kind, id, lineQuantity(sel, kind, id)+quantity)
	return s.save(ctx, sessionID, sel)
}

func (s *redisStore) SetQuantity(ctx context.Context, sessionID string, kind domain.SelectionKind, id int64, quantity int32) error {
	sel, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	apply(&sel, kind, id, quantity)
	return s.save(ctx, sessionID, sel)
}

func (s *redisStore) Remove(ctx context.Context, sessionID string, kind domain.SelectionKind, id int64) error {
	return s.SetQuantity(ctx, sessionID, kind, id, 0)
}

func (s *redisStore) View(ctx context.Context, sessionID string) (domain.Selection, error) {
	return s.load(ctx, sessionID)
}

func (s *redisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}
