package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"table-games-backend/internal/config"
	"table-games-backend/internal/models"
)

// RedisStore persists sessions as JSON blobs under session:<id>. Reads fail
// soft: a malformed blob is treated the same as a missing one, since client
// state is never worth crashing over.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	key := fmt.Sprintf(KeySession, sessionID)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %v", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		log.Printf("Discarding malformed session %s: %v", sessionID, err)
		return nil, ErrSessionNotFound
	}

	if session.Offers == nil {
		session.Offers = map[models.GameType][]string{}
	}

	return &session, nil
}

func (s *RedisStore) Put(ctx context.Context, session *models.Session) error {
	key := fmt.Sprintf(KeySession, session.ID)

	session.UpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %v", err)
	}

	return s.client.Set(ctx, key, data, TTLSession).Err()
}

func (s *RedisStore) MarkPlayed(ctx context.Context, sessionID string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Played = true
	return s.Put(ctx, session)
}

func (s *RedisStore) MarkRated(ctx context.Context, sessionID string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	session.Rated = true
	return s.Put(ctx, session)
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf(KeySession, sessionID)
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
