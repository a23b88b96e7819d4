package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lumenapp/server/core"
)

const uniqueViolation = "23505"

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return core.ErrConflict
	}
	return err
}

const userColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(picture, ''),
	          password_hash, COALESCE(federated_id, ''), auth_mode, otp_hash, otp_expires_at, otp_channel, created_at`

func scanUser(row pgx.Row) (*core.User, error) {
	u := &core.User{}
	var otpHash, otpChannel *string
	var otpExpiresAt *time.Time

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.Picture,
		&u.PasswordHash, &u.FederatedID, &u.AuthMode, &otpHash, &otpExpiresAt, &otpChannel, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}

	if otpHash != nil && otpExpiresAt != nil && otpChannel != nil {
		u.Otp = &core.PendingOtp{
			Hash:      *otpHash,
			ExpiresAt: *otpExpiresAt,
			Channel:   core.OtpChannel(*otpChannel),
		}
	}
	return u, nil
}

func (a *Adapter) FindByIdentity(ctx context.Context, q core.IdentityQuery) (*core.User, error) {
	if q.Empty() {
		return nil, core.ErrNotFound
	}

	var clauses []string
	var args []any
	if q.Email != "" {
		args = append(args, q.Email)
		clauses = append(clauses, fmt.Sprintf("email = $%d", len(args)))
	}
	if q.Phone != "" {
		args = append(args, q.Phone)
		clauses = append(clauses, fmt.Sprintf("phone = $%d", len(args)))
	}
	if q.FederatedID != "" {
		args = append(args, q.FederatedID)
		clauses = append(clauses, fmt.Sprintf("federated_id = $%d", len(args)))
	}

	query := `SELECT ` + userColumns + `
	          FROM public.users WHERE ` + strings.Join(clauses, " OR ") + ` LIMIT 1`

	user, err := scanUser(a.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (a *Adapter) FindByID(ctx context.Context, id string) (*core.User, error) {
	query := `SELECT ` + userColumns + `
	          FROM public.users WHERE id = $1`

	user, err := scanUser(a.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (a *Adapter) Create(ctx context.Context, u *core.User) (*core.User, error) {
	// NULLIF keeps empty identifiers out of the unique constraints.
	query := `INSERT INTO public.users (name, email, phone, picture, password_hash, federated_id, auth_mode)
	          VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7)
	          RETURNING id, created_at`

	created := *u
	err := a.pool.QueryRow(ctx, query,
		u.Name, u.Email, u.Phone, u.Picture, u.PasswordHash, u.FederatedID, string(u.AuthMode),
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if err := translate(err); errors.Is(err, core.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &created, nil
}

func (a *Adapter) Update(ctx context.Context, id string, upd core.UserUpdate) (*core.User, error) {
	var sets []string
	var args []any
	add := func(expr string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if upd.Name != nil {
		add("name = $%d", *upd.Name)
	}
	if upd.Phone != nil {
		add("phone = NULLIF($%d, '')", *upd.Phone)
	}
	if upd.Picture != nil {
		add("picture = $%d", *upd.Picture)
	}
	if upd.PasswordHash != nil {
		add("password_hash = $%d", *upd.PasswordHash)
	}
	if upd.FederatedID != nil {
		add("federated_id = NULLIF($%d, '')", *upd.FederatedID)
	}
	if upd.Otp != nil {
		add("otp_hash = $%d", upd.Otp.Hash)
		add("otp_expires_at = $%d", upd.Otp.ExpiresAt)
		add("otp_channel = $%d", string(upd.Otp.Channel))
	}
	if upd.ClearOtp {
		sets = append(sets, "otp_hash = NULL", "otp_expires_at = NULL", "otp_channel = NULL")
	}
	if len(sets) == 0 {
		return a.FindByID(ctx, id)
	}

	args = append(args, id)
	query := `UPDATE public.users SET ` + strings.Join(sets, ", ") +
		fmt.Sprintf(` WHERE id = $%d RETURNING `, len(args)) + userColumns

	user, err := scanUser(a.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err := translate(err); errors.Is(err, core.ErrConflict) || errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
