package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rango/internal/domain"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (domain.UserProfile, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.UserProfile, error) {
	const query = `
		SELECT user_id, website, picture
		FROM user_profiles
		WHERE user_id = $1
	`
	var profile domain.UserProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.Website,
		&profile.Picture,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, err
	}
	return profile, err
}
