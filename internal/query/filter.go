package query

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Recognized request parameter names. Spelling and case are part of the
// public API.
const (
	ParamPaginate     = "paginate"
	ParamLimit        = "limit"
	ParamPage         = "page"
	ParamOrder        = "order"
	ParamWith         = "with"
	ParamWhere        = "where"
	ParamWhereNull    = "whereNull"
	ParamWhereNotIn   = "whereNotIn"
	ParamLike         = "like"
	ParamSelect       = "select"
	ParamFirst        = "first"
	ParamWhereBetween = "whereBetween"
	ParamWhereHas     = "whereHas"
)

const (
	DefaultLimit = 20
	DefaultPage  = 1
	DefaultOrder = "id,asc"
)

var recognized = []string{
	ParamPaginate, ParamLimit, ParamPage, ParamOrder, ParamWith, ParamWhere,
	ParamWhereNull, ParamWhereNotIn, ParamLike, ParamSelect, ParamFirst,
	ParamWhereBetween, ParamWhereHas,
}

// Param is a raw request value that is either a bare string or a keyed
// mapping. Query strings spell mappings with brackets: with[posts]=title.
type Param struct {
	Value  string
	Fields map[string]string
}

// IsMap reports whether the parameter was supplied in mapping form.
func (p Param) IsMap() bool { return p.Fields != nil }

// Keys returns the mapping keys in sorted order.
func (p Param) Keys() []string { return slices.Sorted(maps.Keys(p.Fields)) }

type Pagination struct {
	Paginate bool
	Page     int
	Limit    int
}

type Order struct {
	Field     string
	Direction string
}

// Filter is the normalized form of a list request's filtering and shaping
// options. It is built once per request and never mutated afterwards.
//
// Nil pointers and nil maps mean "not applied".
type Filter struct {
	Pagination   Pagination
	Order        Order
	With         *Param
	Where        map[string]string
	WhereNull    []string
	WhereNotIn   map[string]string
	WhereBetween map[string]string
	Like         *Param
	WhereHas     map[string]string
	Select       *string
	First        bool
}

// rawParam collects every spelling of one recognized parameter.
type rawParam struct {
	value    string
	hasValue bool
	fields   map[string]string
}

// ParseFilters extracts the recognized keys from values.
//
// It is pure: the same recognized input always yields an equal Filter.
// Unknown keys are ignored. When a parameter is given both as a bare value
// and in mapping form, the mapping wins.
func ParseFilters(values url.Values) (Filter, error) {
	raw := collect(values)

	f := Filter{
		Pagination: Pagination{Paginate: true, Page: DefaultPage, Limit: DefaultLimit},
	}

	if r, ok := raw[ParamPaginate]; ok && r.value != "" {
		f.Pagination.Paginate = containsTrue(r.value)
	}

	if r, ok := raw[ParamLimit]; ok && r.value != "" {
		n, err := positiveInt(ParamLimit, r.value)
		if err != nil {
			return Filter{}, err
		}
		f.Pagination.Limit = n
	}

	if r, ok := raw[ParamPage]; ok && r.value != "" {
		n, err := positiveInt(ParamPage, r.value)
		if err != nil {
			return Filter{}, err
		}
		f.Pagination.Page = n
	}

	order := DefaultOrder
	if r, ok := raw[ParamOrder]; ok && r.value != "" {
		order = r.value
	}
	f.Order = splitOrder(order)

	if r, ok := raw[ParamFirst]; ok {
		f.First = containsTrue(r.value)
	}

	if r, ok := raw[ParamWith]; ok {
		f.With = r.param()
	}
	if r, ok := raw[ParamLike]; ok {
		f.Like = r.param()
	}
	if r, ok := raw[ParamSelect]; ok && r.hasValue {
		s := r.value
		f.Select = &s
	}

	if r, ok := raw[ParamWhereNull]; ok {
		if r.fields != nil {
			f.WhereNull = slices.Sorted(maps.Keys(r.fields))
		} else {
			f.WhereNull = splitList(r.value)
		}
	}

	var err error
	if f.Where, err = mapping(raw, ParamWhere); err != nil {
		return Filter{}, err
	}
	if f.WhereNotIn, err = mapping(raw, ParamWhereNotIn); err != nil {
		return Filter{}, err
	}
	if f.WhereBetween, err = mapping(raw, ParamWhereBetween); err != nil {
		return Filter{}, err
	}
	if f.WhereHas, err = mapping(raw, ParamWhereHas); err != nil {
		return Filter{}, err
	}

	return f, nil
}

func collect(values url.Values) map[string]*rawParam {
	raw := make(map[string]*rawParam)
	get := func(name string) *rawParam {
		r, ok := raw[name]
		if !ok {
			r = &rawParam{}
			raw[name] = r
		}
		return r
	}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		base, sub, bracketed := splitBracket(key)
		if !slices.Contains(recognized, base) {
			continue
		}
		r := get(base)
		switch {
		case !bracketed:
			r.value = vals[0]
			r.hasValue = true
		case sub == "":
			// with[]=posts&with[]=tokens
			if r.fields == nil {
				r.fields = make(map[string]string)
			}
			for _, v := range vals {
				if v != "" {
					r.fields[v] = ""
				}
			}
		default:
			if r.fields == nil {
				r.fields = make(map[string]string)
			}
			r.fields[sub] = vals[0]
		}
	}
	return raw
}

func (r *rawParam) param() *Param {
	if r.fields != nil {
		return &Param{Fields: r.fields}
	}
	return &Param{Value: r.value}
}

// splitBracket splits "where[email]" into ("where", "email", true).
func splitBracket(key string) (string, string, bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, "", false
	}
	sub := key[open+1 : len(key)-1]
	if strings.ContainsAny(sub, "[]") {
		return "", "", false
	}
	return key[:open], sub, true
}

func mapping(raw map[string]*rawParam, name string) (map[string]string, error) {
	r, ok := raw[name]
	if !ok {
		return nil, nil
	}
	if r.fields == nil {
		return nil, inputError(name, "expected %s[field]=value", name)
	}
	return r.fields, nil
}

func containsTrue(v string) bool {
	return strings.Contains(strings.ToLower(v), "true")
}

func positiveInt(name, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 0, inputError(name, "%q is not a positive integer", v)
	}
	return n, nil
}

func splitOrder(v string) Order {
	field, direction, _ := strings.Cut(v, ",")
	return Order{Field: strings.TrimSpace(field), Direction: strings.TrimSpace(direction)}
}

// splitList splits a comma-separated list and drops empty tokens.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
