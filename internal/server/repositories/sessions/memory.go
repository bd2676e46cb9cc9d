package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/server/models"
)

// MemoryRepository is an in-memory Repository for tests and development.
type MemoryRepository struct {
	mu     sync.RWMutex
	byHash map[string]*models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byHash: make(map[string]*models.Session)}
}

func (r *MemoryRepository) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.byHash[session.RefreshTokenHash] = &cp
	return nil
}

func (r *MemoryRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.byHash[tokenHash]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (r *MemoryRepository) RevokeByTokenHash(ctx context.Context, tokenHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.byHash[tokenHash]; ok && session.RevokedAt == nil {
		t := at
		session.RevokedAt = &t
	}
	return nil
}

func (r *MemoryRepository) RevokeAllForUser(ctx context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.byHash {
		if session.UserID == userID && session.RevokedAt == nil {
			t := at
			session.RevokedAt = &t
		}
	}
	return nil
}
