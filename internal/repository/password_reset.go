package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/gocrud/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PasswordResetRepository struct {
	pool *pgxpool.Pool
}

func NewPasswordResetRepository(pool *pgxpool.Pool) *PasswordResetRepository {
	return &PasswordResetRepository{pool: pool}
}

const resetColumns = `id, email, token, created_at, updated_at`

// Replace drops every pending reset for email and stores a new one, in one
// transaction.
func (r *PasswordResetRepository) Replace(ctx context.Context, email, token string) (*model.PasswordReset, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM password_resets WHERE email = @email`,
		pgx.NamedArgs{"email": email}); err != nil {
		return nil, fmt.Errorf("failed to delete password resets: %w", err)
	}

	rows, err := tx.Query(ctx, `
		INSERT INTO password_resets (email, token)
		VALUES (@email, @token)
		RETURNING `+resetColumns,
		pgx.NamedArgs{"email": email, "token": token})
	if err != nil {
		return nil, fmt.Errorf("failed to insert password reset: %w", err)
	}

	reset, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.PasswordReset])
	if err != nil {
		return nil, fmt.Errorf("failed to collect password reset: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit password reset: %w", err)
	}
	return reset, nil
}

func (r *PasswordResetRepository) GetByToken(ctx context.Context, token string) (*model.PasswordReset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resetColumns+` FROM password_resets WHERE token = @token`,
		pgx.NamedArgs{"token": token})
	if err != nil {
		return nil, fmt.Errorf("failed to query password reset: %w", err)
	}

	reset, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.PasswordReset])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("password_resets", err)
		}
		return nil, fmt.Errorf("failed to collect password reset: %w", err)
	}
	return reset, nil
}

func (r *PasswordResetRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM password_resets WHERE id = @id`,
		pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete password reset: %w", err)
	}
	return nil
}
