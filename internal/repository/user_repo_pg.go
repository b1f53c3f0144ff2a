package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"skybook/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkVerified(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.QueryRow(ctx, `INSERT INTO users (username, email, password_hash, verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		user.Username, user.Email, user.PasswordHash, user.Verified).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, email, password_hash, verified, created_at, updated_at FROM users WHERE email=$1`, email)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Verified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PGUserRepository) MarkVerified(ctx context.Context, email string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET verified=true, updated_at=now() WHERE email=$1`, email)
	return err
}

func (r *PGUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET password_hash=$1, updated_at=now() WHERE email=$2`, passwordHash, email)
	return err
}

var _ UserRepository = (*PGUserRepository)(nil)
