package query

import (
	"context"
	"fmt"
)

// call is one recorded Clauses operation. Nested holds what a scope added.
type call struct {
	Op     string
	Field  string
	Args   []string
	Nested []call
}

type recorder struct {
	calls []call
}

func (r *recorder) add(op, field string, args ...string) {
	r.calls = append(r.calls, call{Op: op, Field: field, Args: args})
}

func (r *recorder) scoped(op, relation string, scope func(Clauses)) {
	c := call{Op: op, Field: relation}
	if scope != nil {
		nested := &recorder{}
		scope(nested)
		c.Nested = nested.calls
	}
	r.calls = append(r.calls, c)
}

func (r *recorder) Where(field string, value any) { r.add("where", field, fmt.Sprint(value)) }
func (r *recorder) WhereNull(field string)         { r.add("whereNull", field) }
func (r *recorder) WhereNotIn(field string, values []string) {
	r.add("whereNotIn", field, values...)
}
func (r *recorder) WhereBetween(field string, bounds []string) {
	r.add("whereBetween", field, bounds...)
}
func (r *recorder) WhereLike(field, pattern string)  { r.add("like", field, pattern) }
func (r *recorder) WhereILike(field, pattern string) { r.add("ilike", field, pattern) }
func (r *recorder) WhereHas(relation string, scope func(Clauses)) {
	r.scoped("whereHas", relation, scope)
}
func (r *recorder) Select(fields []string) { r.add("select", "", fields...) }
func (r *recorder) OrderBy(field, direction string) {
	r.add("order", field, direction)
}
func (r *recorder) Preload(relation string, scope func(Clauses)) {
	r.scoped("preload", relation, scope)
}

// ops lists the top-level operation names in order.
func (r *recorder) ops() []string {
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Op)
	}
	return out
}

func (r *recorder) find(op string) []call {
	var out []call
	for _, c := range r.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

type row struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// fakeBuilder executes against an in-memory slice and records what was
// asked of it.
type fakeBuilder struct {
	recorder
	rows []row
	err  error

	executed string
	page     int
	limit    int
}

func (b *fakeBuilder) Paginate(_ context.Context, page, limit int) (*Page[row], error) {
	b.executed, b.page, b.limit = "paginate", page, limit
	if b.err != nil {
		return nil, b.err
	}
	start := min((page-1)*limit, len(b.rows))
	end := min(start+limit, len(b.rows))
	return NewPage(b.rows[start:end], int64(len(b.rows)), page, limit), nil
}

func (b *fakeBuilder) First(context.Context) (*row, error) {
	b.executed = "first"
	if b.err != nil {
		return nil, b.err
	}
	if len(b.rows) == 0 {
		return nil, ErrNotFound
	}
	r := b.rows[0]
	return &r, nil
}

func (b *fakeBuilder) All(context.Context) ([]row, error) {
	b.executed = "all"
	if b.err != nil {
		return nil, b.err
	}
	return b.rows, nil
}

var _ Builder[row] = (*fakeBuilder)(nil)
