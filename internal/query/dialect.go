package query

import "strings"

// Dialect selects the syntax used for case-insensitive substring matching.
type Dialect string

const (
	// DialectDefault uses a plain LIKE; case sensitivity follows collation.
	DialectDefault Dialect = "default"
	// DialectPostgres forces case-insensitivity with lower(field) ILIKE.
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a configured connection name onto a Dialect.
func ParseDialect(name string) Dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pg", "postgres", "postgresql":
		return DialectPostgres
	default:
		return DialectDefault
	}
}

// LikeClause adds a substring match of term against field.
//
// term is lower-cased. A "relation.field" is matched inside an existence
// predicate on relation instead of on the entity's own columns.
func LikeClause(q Clauses, field, term string, d Dialect) {
	pattern := "%" + strings.ToLower(term) + "%"

	relation, column, scoped := strings.Cut(field, ".")
	if !scoped {
		like(q, field, pattern, d)
		return
	}
	q.WhereHas(relation, func(related Clauses) {
		like(related, column, pattern, d)
	})
}

func like(q Clauses, field, pattern string, d Dialect) {
	if d == DialectPostgres {
		q.WhereILike(field, pattern)
		return
	}
	q.WhereLike(field, pattern)
}

// AddLikeClauses applies a like parameter: either one "field,term" string
// or a field -> term mapping.
func AddLikeClauses(q Clauses, likes Param, d Dialect) error {
	if !likes.IsMap() {
		field, term, ok := strings.Cut(likes.Value, ",")
		if !ok || field == "" {
			return inputError(ParamLike, "expected \"field,term\", got %q", likes.Value)
		}
		LikeClause(q, field, term, d)
		return nil
	}

	for _, field := range likes.Keys() {
		LikeClause(q, field, likes.Fields[field], d)
	}
	return nil
}
