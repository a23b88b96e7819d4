package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lumenapp/server/core"
)

func (a *Adapter) Insert(ctx context.Context, c *core.Content) (*core.Content, error) {
	query := `INSERT INTO public.contents (user_id, query, body)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at, updated_at`

	inserted := *c
	err := a.pool.QueryRow(ctx, query, c.UserID, c.Query, c.Body).
		Scan(&inserted.ID, &inserted.CreatedAt, &inserted.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert content: %w", err)
	}
	return &inserted, nil
}

func (a *Adapter) FindContentByID(ctx context.Context, id string) (*core.Content, error) {
	query := `SELECT id, user_id, query, body, created_at, updated_at
	          FROM public.contents WHERE id = $1`

	c := &core.Content{}
	err := a.pool.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.UserID, &c.Query, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find content: %w", err)
	}
	return c, nil
}

func (a *Adapter) FindContentByUser(ctx context.Context, userID string) ([]*core.Content, error) {
	query := `SELECT id, user_id, query, body, created_at, updated_at
	          FROM public.contents WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := a.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	var out []*core.Content
	for rows.Next() {
		c := &core.Content{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.Query, &c.Body, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read content rows: %w", err)
	}
	return out, nil
}
