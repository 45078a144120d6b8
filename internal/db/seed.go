package db

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/healthvault/internal/config"
	"github.com/geocoder89/healthvault/internal/domain/user"
	"github.com/geocoder89/healthvault/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds one OWNER account from the environment so a fresh
// deployment has a login. No-op when the credentials are unset or the account
// already exists.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.NewString(), cfg.AdminName, cfg.AdminEmail, hash, user.RoleOwner, time.Now().UTC(),
	)

	return err
}
