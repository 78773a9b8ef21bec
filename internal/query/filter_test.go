package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, raw string) Filter {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	f, err := ParseFilters(values)
	require.NoError(t, err)
	return f
}

func TestParseFilters_Defaults(t *testing.T) {
	f := parse(t, "")

	assert.Equal(t, Pagination{Paginate: true, Page: 1, Limit: 20}, f.Pagination)
	assert.Equal(t, Order{Field: "id", Direction: "asc"}, f.Order)
	assert.False(t, f.First)
	assert.Nil(t, f.With)
	assert.Nil(t, f.Where)
	assert.Nil(t, f.WhereNull)
	assert.Nil(t, f.WhereNotIn)
	assert.Nil(t, f.WhereBetween)
	assert.Nil(t, f.Like)
	assert.Nil(t, f.WhereHas)
	assert.Nil(t, f.Select)
}

func TestParseFilters_Paginate(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"paginate=true", true},
		{"paginate=TRUE", true},
		{"paginate=yes-true", true},
		{"paginate=false", false},
		{"paginate=1", false},
		{"paginate=yes", false},
		{"paginate=", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parse(t, tt.raw).Pagination.Paginate)
		})
	}
}

func TestParseFilters_First(t *testing.T) {
	assert.True(t, parse(t, "first=true").First)
	assert.True(t, parse(t, "first=True").First)
	assert.False(t, parse(t, "first=1").First)
	assert.False(t, parse(t, "first=").First)
}

func TestParseFilters_LimitPageOrder(t *testing.T) {
	f := parse(t, "limit=5&page=2&order=createdAt,desc")

	assert.Equal(t, 5, f.Pagination.Limit)
	assert.Equal(t, 2, f.Pagination.Page)
	assert.Equal(t, Order{Field: "createdAt", Direction: "desc"}, f.Order)

	assert.Equal(t, Order{Field: "email", Direction: ""}, parse(t, "order=email").Order)
	assert.Equal(t, Order{Field: "email", Direction: "desc"}, parse(t, "order= email , desc ").Order)
}

func TestParseFilters_BadNumbers(t *testing.T) {
	for _, raw := range []string{"limit=abc", "limit=0", "page=-1", "page=1.5"} {
		t.Run(raw, func(t *testing.T) {
			values, err := url.ParseQuery(raw)
			require.NoError(t, err)

			_, err = ParseFilters(values)
			require.Error(t, err)
			assert.True(t, IsInputError(err))
		})
	}
}

func TestParseFilters_Mappings(t *testing.T) {
	f := parse(t, "where[email]=a@b.c&whereNotIn[status]=active,banned"+
		"&whereBetween[age]=18,65&whereHas[posts]=title,Hello&whereNull[deleted_at]=1")

	assert.Equal(t, map[string]string{"email": "a@b.c"}, f.Where)
	assert.Equal(t, map[string]string{"status": "active,banned"}, f.WhereNotIn)
	assert.Equal(t, map[string]string{"age": "18,65"}, f.WhereBetween)
	assert.Equal(t, map[string]string{"posts": "title,Hello"}, f.WhereHas)
	assert.Equal(t, []string{"deleted_at"}, f.WhereNull)
}

func TestParseFilters_MappingRequired(t *testing.T) {
	for _, raw := range []string{"where=email", "whereNotIn=a,b", "whereBetween=1,2", "whereHas=posts"} {
		t.Run(raw, func(t *testing.T) {
			values, err := url.ParseQuery(raw)
			require.NoError(t, err)

			_, err = ParseFilters(values)
			assert.True(t, IsInputError(err))
		})
	}
}

func TestParseFilters_WithAndLike(t *testing.T) {
	f := parse(t, "with=posts.comments&like=email,foo")
	require.NotNil(t, f.With)
	assert.False(t, f.With.IsMap())
	assert.Equal(t, "posts.comments", f.With.Value)
	require.NotNil(t, f.Like)
	assert.Equal(t, "email,foo", f.Like.Value)

	f = parse(t, "with[posts]=title&with[tokens]=&like[email]=foo&with=ignored")
	require.NotNil(t, f.With)
	assert.True(t, f.With.IsMap())
	assert.Equal(t, map[string]string{"posts": "title", "tokens": ""}, f.With.Fields)
	assert.Equal(t, map[string]string{"email": "foo"}, f.Like.Fields)

	f = parse(t, "with[]=posts&with[]=tokens")
	assert.Equal(t, []string{"posts", "tokens"}, f.With.Keys())
}

func TestParseFilters_WhereNullList(t *testing.T) {
	assert.Equal(t, []string{"deleted_at", "bio"}, parse(t, "whereNull=deleted_at,,bio").WhereNull)
	assert.Equal(t, []string{"a", "b"}, parse(t, "whereNull[b]=&whereNull[a]=").WhereNull)
}

func TestParseFilters_Select(t *testing.T) {
	f := parse(t, "select=email")
	require.NotNil(t, f.Select)
	assert.Equal(t, "email", *f.Select)

	f = parse(t, "select=")
	require.NotNil(t, f.Select)
	assert.Equal(t, "", *f.Select)
}

func TestParseFilters_IgnoresUnknown(t *testing.T) {
	assert.Equal(t, parse(t, "limit=3"), parse(t, "limit=3&foo=bar&where_x=1&Limit=9"))
}

func TestParseFilters_Idempotent(t *testing.T) {
	raw := "select=email&with[posts]=title&where[email]=a&order=email,desc&like[bio]=x"
	assert.Equal(t, parse(t, raw), parse(t, raw))
}
