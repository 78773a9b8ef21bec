package query

import "context"

// Clauses is the composable half of a query bound to one entity (table).
//
// Every method adds to the query; none of them reorder what was added before,
// and all predicates are joined with AND. Implementations report bad input
// (unknown relation, wrong bound count) when the query is executed, not here.
type Clauses interface {
	// Where adds field = value.
	Where(field string, value any)

	// WhereNull adds field IS NULL.
	WhereNull(field string)

	// WhereNotIn adds field NOT IN (values...).
	WhereNotIn(field string, values []string)

	// WhereBetween adds field BETWEEN bounds[0] AND bounds[1].
	// The number of bounds is not checked by callers.
	WhereBetween(field string, bounds []string)

	// WhereLike adds field LIKE pattern. Case sensitivity follows the
	// backend collation.
	WhereLike(field, pattern string)

	// WhereILike adds lower(field) ILIKE pattern.
	WhereILike(field, pattern string)

	// WhereHas requires at least one related row for relation. scope
	// receives the related query and may add predicates to it.
	WhereHas(relation string, scope func(Clauses))

	// Select restricts the projection. An empty slice selects all fields.
	Select(fields []string)

	// OrderBy appends an ordering. direction is "asc", "desc" or empty.
	OrderBy(field, direction string)

	// Preload eager-loads relation. scope, when non-nil, receives the
	// related query and may narrow it or preload further relations.
	Preload(relation string, scope func(Clauses))
}

// Builder is a Clauses that can also be executed against the store.
type Builder[T any] interface {
	Clauses

	// Paginate fetches one page and the total count of matching rows.
	Paginate(ctx context.Context, page, limit int) (*Page[T], error)

	// First fetches the first matching row or returns ErrNotFound.
	First(ctx context.Context) (*T, error)

	// All fetches every matching row.
	All(ctx context.Context) ([]T, error)
}
