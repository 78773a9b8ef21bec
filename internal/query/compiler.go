package query

import (
	"strings"
)

// DefaultIdentifier is the primary key column forced into every projection.
const DefaultIdentifier = "id"

// Compiler applies a Filter to a Clauses. It holds only construction-time
// settings and is safe for concurrent use.
type Compiler struct {
	dialect    Dialect
	identifier string
}

type CompilerOption func(*Compiler)

// WithIdentifier overrides the identifier column (default "id").
func WithIdentifier(name string) CompilerOption {
	return func(c *Compiler) {
		if name != "" {
			c.identifier = name
		}
	}
}

func NewCompiler(dialect Dialect, opts ...CompilerOption) *Compiler {
	c := &Compiler{dialect: dialect, identifier: DefaultIdentifier}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Compiler) Dialect() Dialect { return c.dialect }

func (c *Compiler) Identifier() string { return c.identifier }

// Compile adds every clause requested by f to q, in a fixed order:
// with, where, whereNull, whereNotIn, like, select, whereBetween, whereHas,
// order. Map-valued parameters are applied in sorted key order.
func (c *Compiler) Compile(f Filter, q Clauses) error {
	if f.With != nil && (f.With.IsMap() || f.With.Value != "") {
		AddWithClauses(q, *f.With, c.identifier)
	}

	for _, field := range sortedKeys(f.Where) {
		q.Where(field, f.Where[field])
	}

	for _, field := range f.WhereNull {
		q.WhereNull(field)
	}

	for _, field := range sortedKeys(f.WhereNotIn) {
		q.WhereNotIn(field, strings.Split(f.WhereNotIn[field], ","))
	}

	if f.Like != nil && (f.Like.IsMap() || f.Like.Value != "") {
		if err := AddLikeClauses(q, *f.Like, c.dialect); err != nil {
			return err
		}
	}

	if f.Select != nil {
		q.Select(c.projection(*f.Select))
	}

	for _, field := range sortedKeys(f.WhereBetween) {
		q.WhereBetween(field, strings.Split(f.WhereBetween[field], ","))
	}

	for _, relation := range sortedKeys(f.WhereHas) {
		field, value, ok := strings.Cut(f.WhereHas[relation], ",")
		if !ok || field == "" {
			return inputError(ParamWhereHas+"["+relation+"]",
				"expected \"field,value\", got %q", f.WhereHas[relation])
		}
		q.WhereHas(relation, func(related Clauses) {
			related.Where(field, value)
		})
	}

	if f.Order.Field != "" {
		q.OrderBy(f.Order.Field, f.Order.Direction)
	}

	return nil
}

// projection splits a select list and forces the identifier in front.
// An empty list means every column and is returned as nil.
func (c *Compiler) projection(raw string) []string {
	fields := splitList(raw)
	if len(fields) == 0 {
		return nil
	}
	return withIdentifier(c.identifier, fields)
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	return Param{Fields: m}.Keys()
}
