package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rango/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	CreateWithProfile(ctx context.Context, user domain.User, profile domain.UserProfile) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

// CreateWithProfile inserta usuario y perfil en una sola transacción.
func (r *PgUserRepository) CreateWithProfile(ctx context.Context, user domain.User, profile domain.UserProfile) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertUser = `
			INSERT INTO users (id, username, email, password_hash, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.Exec(ctx, insertUser,
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.IsActive,
			user.CreatedAt,
		); err != nil {
			return mapWriteError(err)
		}

		const insertProfile = `
			INSERT INTO user_profiles (user_id, website, picture)
			VALUES ($1, $2, $3)
		`
		_, err := tx.Exec(ctx, insertProfile, user.ID, profile.Website, profile.Picture)
		return mapWriteError(err)
	})
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
		SELECT id, username, email, password_hash, is_active, last_login, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `
		SELECT id, username, email, password_hash, is_active, last_login, created_at
		FROM users
		WHERE username = $1
	`
	return r.scanOne(ctx, query, username)
}

func (r *PgUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET last_login = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) scanOne(ctx context.Context, query string, arg string) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.LastLogin,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}
