package users

import (
	"context"
	"sync"
	"time"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/server/models"
)

// MemoryRepository is an in-memory Repository used in tests and in
// development mode without a database.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.User
	byEml map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[string]*models.User),
		byEml: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEml[user.Email]; ok {
		return nil, apperr.ErrAlreadyExists
	}
	cp := *user
	r.byID[user.ID] = &cp
	r.byEml[user.Email] = user.ID
	return user, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEml[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id, hash, salt string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	user.PasswordHash = hash
	user.PasswordSalt = salt
	user.UpdatedAt = at
	return nil
}

// SetStatus flips an account between active and disabled. Only the memory
// implementation needs it; tests use it to simulate administrative action.
func (r *MemoryRepository) SetStatus(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.byID[id]; ok {
		user.Status = status
	}
}
