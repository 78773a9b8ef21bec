package gormq

import (
	"errors"
	"slices"
	"strings"

	"github.com/deppfellow/gocrud/internal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// scope records clauses for one schema. It never touches the *gorm.DB it
// was built from until apply is called, so counting and fetching can share
// the same predicates.
type scope struct {
	db     *gorm.DB
	schema *schema.Schema

	where    []clause.Expression
	selects  []string
	orders   []clause.OrderByColumn
	preloads []preload

	// required columns are added to a narrowed projection so gorm can
	// attach preloaded rows to their owners.
	required []string
	errs     []error
}

type preload struct {
	name  string
	child *scope
}

var _ query.Clauses = (*scope)(nil)

func newScope(db *gorm.DB, s *schema.Schema) *scope {
	return &scope{db: db, schema: s}
}

func (s *scope) column(field string) clause.Column {
	return clause.Column{Table: s.schema.Table, Name: s.dbName(field)}
}

// dbName resolves a request field onto a column. Unknown names pass through
// and fail in the store. Fields hidden from JSON (`json:"-"`) are refused,
// so no filter can match on values the API never returns.
func (s *scope) dbName(field string) string {
	f := s.lookup(field)
	if f == nil {
		return field
	}
	if jsonName(f) == "-" {
		s.fail(&query.InputError{Param: field, Reason: "field cannot be queried"})
	}
	return f.DBName
}

func (s *scope) lookup(field string) *schema.Field {
	if f := s.schema.LookUpField(field); f != nil && f.DBName != "" {
		return f
	}
	for _, f := range s.schema.Fields {
		if f.DBName == "" {
			continue
		}
		if strings.EqualFold(f.Name, field) || strings.EqualFold(jsonName(f), field) {
			return f
		}
	}
	return nil
}

func jsonName(f *schema.Field) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	return name
}

// relation finds a relationship by field name, ignoring case and
// underscores so "api_tokens" matches APITokens.
func (s *scope) relation(name string) (*schema.Relationship, bool) {
	if rel, ok := s.schema.Relationships.Relations[name]; ok {
		return rel, true
	}
	want := normalize(name)
	for key, rel := range s.schema.Relationships.Relations {
		if normalize(key) == want {
			return rel, true
		}
	}
	return nil, false
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

func (s *scope) fail(err error) { s.errs = append(s.errs, err) }

func (s *scope) err() error { return errors.Join(s.errs...) }

func (s *scope) Where(field string, value any) {
	s.where = append(s.where, clause.Eq{Column: s.column(field), Value: value})
}

func (s *scope) WhereNull(field string) {
	s.where = append(s.where, clause.Eq{Column: s.column(field), Value: nil})
}

func (s *scope) WhereNotIn(field string, values []string) {
	s.where = append(s.where, clause.Not(clause.IN{Column: s.column(field), Values: anys(values)}))
}

func (s *scope) WhereBetween(field string, bounds []string) {
	if len(bounds) != 2 {
		s.fail(&query.InputError{
			Param:  query.ParamWhereBetween + "[" + field + "]",
			Reason: "expected exactly two bounds",
		})
		return
	}
	s.where = append(s.where, clause.Expr{
		SQL:  "? BETWEEN ? AND ?",
		Vars: []any{s.column(field), bounds[0], bounds[1]},
	})
}

func (s *scope) WhereLike(field, pattern string) {
	s.where = append(s.where, clause.Like{Column: s.column(field), Value: pattern})
}

func (s *scope) WhereILike(field, pattern string) {
	s.where = append(s.where, clause.Expr{
		SQL:  "lower(?) ILIKE ?",
		Vars: []any{s.column(field), pattern},
	})
}

func (s *scope) WhereHas(relation string, fn func(query.Clauses)) {
	rel, ok := s.relation(relation)
	if !ok {
		s.fail(unknownRelation(relation))
		return
	}
	if rel.Type == schema.Many2Many {
		s.fail(&query.InputError{Param: relation, Reason: "many-to-many relations cannot be filtered"})
		return
	}

	related := newScope(s.db, rel.FieldSchema)
	if fn != nil {
		fn(related)
	}
	if err := related.err(); err != nil {
		s.fail(err)
		return
	}

	conds := append(s.correlate(rel), related.where...)
	sub := s.db.Session(&gorm.Session{NewDB: true}).
		Table(rel.FieldSchema.Table).
		Select("1").
		Clauses(clause.Where{Exprs: conds})

	s.where = append(s.where, clause.Expr{SQL: "EXISTS (?)", Vars: []any{sub}})
}

// correlate joins related rows of rel to the current row.
func (s *scope) correlate(rel *schema.Relationship) []clause.Expression {
	related := rel.FieldSchema.Table
	conds := make([]clause.Expression, 0, len(rel.References))
	for _, ref := range rel.References {
		switch {
		case ref.PrimaryValue != "":
			conds = append(conds, clause.Eq{
				Column: clause.Column{Table: related, Name: ref.ForeignKey.DBName},
				Value:  ref.PrimaryValue,
			})
		case ref.OwnPrimaryKey:
			conds = append(conds, clause.Expr{SQL: "? = ?", Vars: []any{
				clause.Column{Table: related, Name: ref.ForeignKey.DBName},
				clause.Column{Table: s.schema.Table, Name: ref.PrimaryKey.DBName},
			}})
		default:
			conds = append(conds, clause.Expr{SQL: "? = ?", Vars: []any{
				clause.Column{Table: related, Name: ref.PrimaryKey.DBName},
				clause.Column{Table: s.schema.Table, Name: ref.ForeignKey.DBName},
			}})
		}
	}
	return conds
}

func (s *scope) Select(fields []string) {
	s.selects = s.selects[:0]
	for _, f := range fields {
		s.selects = append(s.selects, s.dbName(f))
	}
}

func (s *scope) OrderBy(field, direction string) {
	var desc bool
	switch strings.ToLower(direction) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		s.fail(&query.InputError{Param: query.ParamOrder, Reason: "direction must be asc or desc, got " + direction})
		return
	}
	s.orders = append(s.orders, clause.OrderByColumn{Column: s.column(field), Desc: desc})
}

func (s *scope) Preload(relation string, fn func(query.Clauses)) {
	rel, ok := s.relation(relation)
	if !ok {
		s.fail(unknownRelation(relation))
		return
	}

	child := newScope(s.db, rel.FieldSchema)
	if fn != nil {
		fn(child)
	}
	if err := child.err(); err != nil {
		s.fail(err)
		return
	}
	s.joinKeys(rel, child)
	s.preloads = append(s.preloads, preload{name: rel.Name, child: child})
}

// joinKeys records which columns each side must keep when projected.
func (s *scope) joinKeys(rel *schema.Relationship, child *scope) {
	keep := func(sc *scope, f *schema.Field) {
		if f != nil && f.Schema == sc.schema && !slices.Contains(sc.required, f.DBName) {
			sc.required = append(sc.required, f.DBName)
		}
	}
	if rel.FieldSchema.PrioritizedPrimaryField != nil {
		keep(child, rel.FieldSchema.PrioritizedPrimaryField)
	}
	for _, ref := range rel.References {
		switch {
		case ref.PrimaryValue != "":
			keep(child, ref.ForeignKey)
		case ref.OwnPrimaryKey:
			keep(s, ref.PrimaryKey)
			keep(child, ref.ForeignKey)
		default:
			keep(s, ref.ForeignKey)
			keep(child, ref.PrimaryKey)
		}
	}
	if rel.Polymorphic != nil {
		keep(child, rel.Polymorphic.PolymorphicID)
		keep(child, rel.Polymorphic.PolymorphicType)
	}
}

func (s *scope) columns() []string {
	if len(s.selects) == 0 {
		return nil
	}
	cols := slices.Clone(s.selects)
	for _, r := range s.required {
		if !slices.Contains(cols, r) {
			cols = append(cols, r)
		}
	}
	return cols
}

// filter adds only the predicates. Counting uses it on its own.
func (s *scope) filter(tx *gorm.DB) *gorm.DB {
	if len(s.where) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: s.where})
	}
	return tx
}

// apply adds every recorded clause to tx.
func (s *scope) apply(tx *gorm.DB) *gorm.DB {
	tx = s.filter(tx)
	if cols := s.columns(); len(cols) > 0 {
		tx = tx.Select(cols)
	}
	for _, o := range s.orders {
		tx = tx.Order(o)
	}
	for _, p := range s.preloads {
		child := p.child
		if child.empty() {
			tx = tx.Preload(p.name)
			continue
		}
		tx = tx.Preload(p.name, func(db *gorm.DB) *gorm.DB {
			return child.apply(db)
		})
	}
	return tx
}

func (s *scope) empty() bool {
	return len(s.where) == 0 && len(s.selects) == 0 && len(s.orders) == 0 && len(s.preloads) == 0
}

func unknownRelation(name string) error {
	return &query.InputError{Param: name, Reason: "unknown relation"}
}

func anys(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
