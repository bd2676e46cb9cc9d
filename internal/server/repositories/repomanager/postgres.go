package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/lulemo/habitlock/internal/dbx"
	"github.com/lulemo/habitlock/internal/server/migrations"
	"github.com/lulemo/habitlock/internal/server/repositories/emailcodes"
	"github.com/lulemo/habitlock/internal/server/repositories/sessions"
	"github.com/lulemo/habitlock/internal/server/repositories/users"
)

// PostgresManager builds PostgreSQL-backed repositories.
type PostgresManager struct{}

func NewPostgresManager() *PostgresManager {
	return &PostgresManager{}
}

func (m *PostgresManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresManager) EmailCodes(db dbx.DBTX) emailcodes.Repository {
	return emailcodes.NewPostgresRepository(db)
}

func (m *PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Open connects to PostgreSQL through the pgx stdlib adapter.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}
