package emailcodes

import (
	"context"
	"sync"
	"time"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/server/models"
)

// MemoryRepository is an in-memory Repository for tests and development.
type MemoryRepository struct {
	mu    sync.Mutex
	codes []*models.EmailVerification
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, code *models.EmailVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *code
	r.codes = append(r.codes, &cp)
	return nil
}

func (r *MemoryRepository) FindNewestActive(ctx context.Context, email, purpose, codeHash string, now time.Time) (*models.EmailVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var newest *models.EmailVerification
	for _, code := range r.codes {
		if code.Email != email || code.Purpose != purpose || code.CodeHash != codeHash {
			continue
		}
		if code.ConsumedAt != nil || code.ExpiresAt.Before(now) {
			continue
		}
		if newest == nil || code.CreatedAt.After(newest.CreatedAt) {
			newest = code
		}
	}
	if newest == nil {
		return nil, apperr.ErrNotFound
	}
	cp := *newest
	return &cp, nil
}

func (r *MemoryRepository) Consume(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, code := range r.codes {
		if code.ID == id {
			if code.ConsumedAt != nil {
				return false, nil
			}
			t := at
			code.ConsumedAt = &t
			return true, nil
		}
	}
	return false, nil
}
