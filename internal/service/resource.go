package service

import (
	"context"
	"net/url"
	"time"

	"github.com/deppfellow/gocrud/internal/metrics"
	"github.com/deppfellow/gocrud/internal/query"
)

type ResourceStore[T any] interface {
	Query(ctx context.Context) (query.Builder[T], error)
	Create(ctx context.Context, entity *T) (*T, error)
	Find(ctx context.Context, id int64) (*T, error)
	Save(ctx context.Context, entity *T) (*T, error)
	Delete(ctx context.Context, id int64) (*T, error)
}

// ResourceHooks run after an entity is persisted. The returned entity is
// what the caller responds with. Both are optional.
type ResourceHooks[T any] struct {
	AfterCreate func(ctx context.Context, entity *T) (*T, error)
	AfterUpdate func(ctx context.Context, entity *T) (*T, error)
}

// ResourceService is the CRUD surface for one entity type, with filtered
// listing compiled from request parameters.
type ResourceService[T any] struct {
	name     string
	store    ResourceStore[T]
	compiler *query.Compiler
	hooks    ResourceHooks[T]
	metrics  *metrics.Metrics
}

func NewResourceService[T any](
	name string,
	store ResourceStore[T],
	compiler *query.Compiler,
	hooks ResourceHooks[T],
	m *metrics.Metrics,
) *ResourceService[T] {
	return &ResourceService[T]{
		name:     name,
		store:    store,
		compiler: compiler,
		hooks:    hooks,
		metrics:  m,
	}
}

func (s *ResourceService[T]) Name() string { return s.name }

// List parses values into a filter, compiles it onto a fresh builder and
// shapes the result.
func (s *ResourceService[T]) List(ctx context.Context, values url.Values) (res query.Result[T], err error) {
	defer s.observe("list", time.Now(), &err)

	f, err := query.ParseFilters(values)
	if err != nil {
		return res, err
	}

	b, err := s.store.Query(ctx)
	if err != nil {
		return res, err
	}
	if err = s.compiler.Compile(f, b); err != nil {
		return res, err
	}

	res, err = query.Shape(ctx, b, f)
	if err != nil {
		return res, err
	}
	s.metrics.ListShape(s.name, shapeName(res.Kind))
	return res, nil
}

func (s *ResourceService[T]) Create(ctx context.Context, entity *T) (out *T, err error) {
	defer s.observe("create", time.Now(), &err)

	out, err = s.store.Create(ctx, entity)
	if err != nil {
		return nil, err
	}
	if s.hooks.AfterCreate != nil {
		return s.hooks.AfterCreate(ctx, out)
	}
	return out, nil
}

func (s *ResourceService[T]) Retrieve(ctx context.Context, id int64) (out *T, err error) {
	defer s.observe("retrieve", time.Now(), &err)
	return s.store.Find(ctx, id)
}

// Update loads the entity, lets apply change it and saves it. apply is not
// called when the entity does not exist.
func (s *ResourceService[T]) Update(ctx context.Context, id int64, apply func(*T) error) (out *T, err error) {
	defer s.observe("update", time.Now(), &err)

	entity, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = apply(entity); err != nil {
		return nil, err
	}

	out, err = s.store.Save(ctx, entity)
	if err != nil {
		return nil, err
	}
	if s.hooks.AfterUpdate != nil {
		return s.hooks.AfterUpdate(ctx, out)
	}
	return out, nil
}

// Delete removes the entity and returns the removed row.
func (s *ResourceService[T]) Delete(ctx context.Context, id int64) (out *T, err error) {
	defer s.observe("delete", time.Now(), &err)
	return s.store.Delete(ctx, id)
}

func (s *ResourceService[T]) observe(op string, start time.Time, err *error) {
	s.metrics.Observe(s.name, op, start, *err)
}

func shapeName(k query.ResultKind) string {
	switch k {
	case query.KindPage:
		return "page"
	case query.KindFirst:
		return "first"
	default:
		return "list"
	}
}
