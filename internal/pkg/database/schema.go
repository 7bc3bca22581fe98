package database

import (
	"context"
	_ "embed"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schemaSQL string

// schemaLockID serialises concurrent EnsureSchema calls across processes.
const schemaLockID = 7421001

// EnsureSchema applies the idempotent schema. The API, reconciler and
// notifier may start together, so the DDL runs under an advisory lock.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	conn, err := db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, schemaLockID); err != nil {
		return err
	}
	defer conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, schemaLockID)

	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		return err
	}

	log.Info().Msg("Database schema ensured")
	return nil
}
