// Package postgres implements the document store against PostgreSQL.
// It keeps the same sparse-uniqueness semantics as the mongo adapter by
// storing absent identifiers as NULL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenapp/server/core"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ core.Store = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{pool: pool}
}

// Migrate creates the schema if it does not exist yet.
func (a *Adapter) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS public.users (
			id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			name           TEXT NOT NULL,
			email          TEXT UNIQUE,
			phone          TEXT UNIQUE,
			picture        TEXT,
			password_hash  TEXT NOT NULL,
			federated_id   TEXT UNIQUE,
			auth_mode      TEXT NOT NULL,
			otp_hash       TEXT,
			otp_expires_at TIMESTAMPTZ,
			otp_channel    TEXT,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS public.contents (
			id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			user_id    TEXT NOT NULL REFERENCES public.users(id),
			query      TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS contents_user_created_idx
			ON public.contents (user_id, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := a.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}
