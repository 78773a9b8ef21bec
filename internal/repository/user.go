package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/gocrud/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password, created_at, updated_at`

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = @email`,
		pgx.NamedArgs{"email": email})
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = @id`,
		pgx.NamedArgs{"id": id})
}

// UpdatePassword stores an already hashed password.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) (*model.User, error) {
	return r.getOne(ctx, `
		UPDATE users
		SET password = @password, updated_at = now()
		WHERE id = @id
		RETURNING `+userColumns,
		pgx.NamedArgs{"id": id, "password": hash})
}

func (r *UserRepository) getOne(ctx context.Context, sql string, args pgx.NamedArgs) (*model.User, error) {
	rows, err := r.pool.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("users", err)
		}
		return nil, fmt.Errorf("failed to collect user: %w", err)
	}
	return user, nil
}
