// Package gormq implements query.Builder on top of gorm.
package gormq

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/gocrud/internal/query"
	"gorm.io/gorm"
)

// Builder is a query.Builder for the model T. Build one per request.
type Builder[T any] struct {
	*scope
}

var _ query.Builder[struct{}] = (*Builder[struct{}])(nil)

// New parses the schema of T and returns an empty builder over db.
func New[T any](db *gorm.DB) (*Builder[T], error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, fmt.Errorf("parse schema for %T: %w", *new(T), err)
	}
	return &Builder[T]{scope: newScope(db, stmt.Schema)}, nil
}

// Query returns the recorded query bound to ctx without executing it.
func (b *Builder[T]) Query(ctx context.Context) *gorm.DB {
	tx := b.db.WithContext(ctx).Model(new(T))
	if err := b.err(); err != nil {
		_ = tx.AddError(err)
	}
	return b.apply(tx)
}

func (b *Builder[T]) Paginate(ctx context.Context, page, limit int) (*query.Page[T], error) {
	if err := b.err(); err != nil {
		return nil, err
	}

	var total int64
	if err := b.filter(b.db.WithContext(ctx).Model(new(T))).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", b.schema.Table, err)
	}

	var rows []T
	err := b.Query(ctx).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", b.schema.Table, err)
	}

	return query.NewPage(rows, total, page, limit), nil
}

func (b *Builder[T]) First(ctx context.Context) (*T, error) {
	if err := b.err(); err != nil {
		return nil, err
	}

	row := new(T)
	if err := b.Query(ctx).Take(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, query.ErrNotFound
		}
		return nil, fmt.Errorf("first %s: %w", b.schema.Table, err)
	}
	return row, nil
}

func (b *Builder[T]) All(ctx context.Context) ([]T, error) {
	if err := b.err(); err != nil {
		return nil, err
	}

	rows := []T{}
	if err := b.Query(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", b.schema.Table, err)
	}
	return rows, nil
}
