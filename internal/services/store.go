package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"table-games-backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore is the persistence boundary for sessions. The redis-backed
// implementation is used in production; MemoryStore backs tests and
// redis-less development.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Put(ctx context.Context, session *models.Session) error
	MarkPlayed(ctx context.Context, sessionID string) error
	MarkRated(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *MemoryStore) Put(_ context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.UpdatedAt = time.Now()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MemoryStore) MarkPlayed(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.Played = true
	session.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) MarkRated(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.Rated = true
	session.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}
