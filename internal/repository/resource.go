package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/gocrud/internal/query"
	"github.com/deppfellow/gocrud/internal/query/gormq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Resource stores one entity type through gorm. It backs the generic CRUD
// endpoints, including filtered listing through query.Builder.
type Resource[T any] struct {
	db    *gorm.DB
	table string
}

func NewResource[T any](db *gorm.DB) *Resource[T] {
	r := &Resource[T]{db: db}
	if tn, ok := any(new(T)).(schema.Tabler); ok {
		r.table = tn.TableName()
	}
	return r
}

// Query returns an empty builder for one request.
func (r *Resource[T]) Query(context.Context) (query.Builder[T], error) {
	b, err := gormq.New[T](r.db)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Resource[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.table, err)
	}
	return entity, nil
}

func (r *Resource[T]) Find(ctx context.Context, id int64) (*T, error) {
	entity := new(T)
	if err := r.db.WithContext(ctx).Take(entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(r.table, query.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find %s: %w", r.table, err)
	}
	return entity, nil
}

// Save writes every field of an entity loaded with Find.
func (r *Resource[T]) Save(ctx context.Context, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.table, err)
	}
	return entity, nil
}

// Delete removes the row and returns it as it was before deletion.
func (r *Resource[T]) Delete(ctx context.Context, id int64) (*T, error) {
	entity := new(T)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(entity, id).Error; err != nil {
			return err
		}
		res := tx.Delete(new(T), id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(r.table, query.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to delete %s: %w", r.table, err)
	}
	return entity, nil
}
