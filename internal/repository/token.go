package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/gocrud/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

const tokenColumns = `id, user_id, name, type, token, expires_at, created_at`

func (r *TokenRepository) Create(ctx context.Context, t *model.AccessToken) (*model.AccessToken, error) {
	rows, err := r.pool.Query(ctx, `
		INSERT INTO api_tokens (user_id, name, type, token, expires_at)
		VALUES (@user_id, @name, @type, @token, @expires_at)
		RETURNING `+tokenColumns,
		pgx.NamedArgs{
			"user_id":    t.UserID,
			"name":       t.Name,
			"type":       t.Type,
			"token":      t.Token,
			"expires_at": t.ExpiresAt,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to insert api token: %w", err)
	}

	created, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.AccessToken])
	if err != nil {
		return nil, fmt.Errorf("failed to collect api token: %w", err)
	}
	return created, nil
}

// GetByToken looks a token up by its jti.
func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*model.AccessToken, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tokenColumns+` FROM api_tokens WHERE token = @token`,
		pgx.NamedArgs{"token": token})
	if err != nil {
		return nil, fmt.Errorf("failed to query api token: %w", err)
	}

	found, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.AccessToken])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("api_tokens", err)
		}
		return nil, fmt.Errorf("failed to collect api token: %w", err)
	}
	return found, nil
}

func (r *TokenRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM api_tokens WHERE token = @token`,
		pgx.NamedArgs{"token": token})
	if err != nil {
		return fmt.Errorf("failed to delete api token: %w", err)
	}
	return nil
}

// DeleteExpired removes tokens past their expiry and reports how many.
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM api_tokens WHERE expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired api tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
