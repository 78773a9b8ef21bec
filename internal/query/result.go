package query

import (
	"context"
	"encoding/json"
)

type PageMeta struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	FirstPage   int   `json:"first_page"`
}

type Page[T any] struct {
	Meta PageMeta `json:"meta"`
	Data []T      `json:"data"`
}

// NewPage wraps one page of rows. The last page is never below the first,
// so an empty result still reports last_page 1.
func NewPage[T any](data []T, total int64, page, limit int) *Page[T] {
	if data == nil {
		data = []T{}
	}
	last := 1
	if limit > 0 && total > 0 {
		last = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Page[T]{
		Meta: PageMeta{
			Total:       total,
			PerPage:     limit,
			CurrentPage: page,
			LastPage:    last,
			FirstPage:   1,
		},
		Data: data,
	}
}

// Result is the outcome of a list request. Exactly one of Page, Entity and
// List is set, according to Kind.
type Result[T any] struct {
	Kind   ResultKind
	Page   *Page[T]
	Entity *T
	List   []T
}

type ResultKind int

const (
	KindPage ResultKind = iota
	KindFirst
	KindList
)

func (r Result[T]) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case KindPage:
		return json.Marshal(r.Page)
	case KindFirst:
		return json.Marshal(r.Entity)
	default:
		list := r.List
		if list == nil {
			list = []T{}
		}
		return json.Marshal(list)
	}
}

// Shape executes a compiled builder. Pagination is checked first and wins
// over first; with neither, every matching row is returned.
func Shape[T any](ctx context.Context, b Builder[T], f Filter) (Result[T], error) {
	if f.Pagination.Paginate {
		page, err := b.Paginate(ctx, f.Pagination.Page, f.Pagination.Limit)
		if err != nil {
			return Result[T]{}, err
		}
		return Result[T]{Kind: KindPage, Page: page}, nil
	}

	if f.First {
		entity, err := b.First(ctx)
		if err != nil {
			return Result[T]{}, err
		}
		return Result[T]{Kind: KindFirst, Entity: entity}, nil
	}

	list, err := b.All(ctx)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Kind: KindList, List: list}, nil
}
