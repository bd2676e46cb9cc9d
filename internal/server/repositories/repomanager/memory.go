package repomanager

import (
	"context"
	"database/sql"

	"github.com/lulemo/habitlock/internal/dbx"
	"github.com/lulemo/habitlock/internal/server/repositories/emailcodes"
	"github.com/lulemo/habitlock/internal/server/repositories/sessions"
	"github.com/lulemo/habitlock/internal/server/repositories/users"
)

// MemoryManager serves shared in-memory repositories. Used by tests and by
// the server's development mode (-d memory).
type MemoryManager struct {
	users      *users.MemoryRepository
	sessions   *sessions.MemoryRepository
	emailCodes *emailcodes.MemoryRepository
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		users:      users.NewMemoryRepository(),
		sessions:   sessions.NewMemoryRepository(),
		emailCodes: emailcodes.NewMemoryRepository(),
	}
}

func (m *MemoryManager) Users(dbx.DBTX) users.Repository               { return m.users }
func (m *MemoryManager) Sessions(dbx.DBTX) sessions.Repository        { return m.sessions }
func (m *MemoryManager) EmailCodes(dbx.DBTX) emailcodes.Repository    { return m.emailCodes }
func (m *MemoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

// UserStore exposes the concrete users repository for test-only helpers.
func (m *MemoryManager) UserStore() *users.MemoryRepository { return m.users }
