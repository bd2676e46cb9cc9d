// Package repomanager hands out repository instances bound to a DB handle,
// so services can run several repositories inside one transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/lulemo/habitlock/internal/dbx"
	"github.com/lulemo/habitlock/internal/server/repositories/emailcodes"
	"github.com/lulemo/habitlock/internal/server/repositories/sessions"
	"github.com/lulemo/habitlock/internal/server/repositories/users"
)

// RepositoryManager builds repositories bound to db, which is either the
// pool or an open transaction. The memory implementation ignores db.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	EmailCodes(db dbx.DBTX) emailcodes.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
