package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/gocrud/internal/config"
	"github.com/deppfellow/gocrud/internal/errs"
	"github.com/deppfellow/gocrud/internal/middleware"
	"github.com/deppfellow/gocrud/internal/model"
	"github.com/deppfellow/gocrud/internal/query"
	"github.com/deppfellow/gocrud/internal/server"
	"github.com/deppfellow/gocrud/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name string `json:"name" validate:"required"`
	Tag  string `json:"tag"`
}

func (r *echoRequest) Validate() error { return validate.Struct(r) }

func newTestEcho() (*echo.Echo, Handler) {
	nop := zerolog.Nop()
	s := &server.Server{Config: &config.Config{}, Logger: &nop}

	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(s).GlobalErrorHandler
	return e, NewHandler(s)
}

func send(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	e, h := newTestEcho()

	var seen []echoRequest
	e.POST("/echo", Handle(h, func(c echo.Context, req *echoRequest) (*echoRequest, error) {
		seen = append(seen, *req)
		if req.Name == "fail" {
			return nil, errs.NewForbiddenError("no", false)
		}
		return req, nil
	}, http.StatusCreated, func() *echoRequest { return &echoRequest{} }))

	t.Run("success", func(t *testing.T) {
		rec := send(e, http.MethodPost, "/echo", `{"name":"a","tag":"x"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"name":"a","tag":"x"}`, rec.Body.String())
	})

	t.Run("fresh request per call", func(t *testing.T) {
		rec := send(e, http.MethodPost, "/echo", `{"name":"b"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Empty(t, seen[len(seen)-1].Tag)
	})

	t.Run("validation failure", func(t *testing.T) {
		calls := len(seen)
		rec := send(e, http.MethodPost, "/echo", `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Len(t, seen, calls)

		var body errs.HTTPError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "name", body.Errors[0].Field)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := send(e, http.MethodPost, "/echo", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("handler error", func(t *testing.T) {
		rec := send(e, http.MethodPost, "/echo", `{"name":"fail"}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandleNoContent(t *testing.T) {
	e, h := newTestEcho()

	e.DELETE("/things/:id", HandleNoContent(h, func(c echo.Context, req *IDRequest) error {
		if req.ID == 2 {
			return errors.New("boom")
		}
		return nil
	}, http.StatusNoContent, func() *IDRequest { return &IDRequest{} }))

	rec := send(e, http.MethodDelete, "/things/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())

	assert.Equal(t, http.StatusInternalServerError, send(e, http.MethodDelete, "/things/2", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(e, http.MethodDelete, "/things/0", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(e, http.MethodDelete, "/things/abc", "").Code)
}

func TestResetRequestBinding(t *testing.T) {
	e, h := newTestEcho()

	var got ResetRequest
	reset := Handle(h, func(c echo.Context, req *ResetRequest) (*LogoutResponse, error) {
		got = *req
		return &LogoutResponse{Success: true}, nil
	}, http.StatusOK, func() *ResetRequest { return &ResetRequest{} })
	e.PUT("/reset/:token", reset)
	e.PUT("/reset/:token/:email", reset)

	rec := send(e, http.MethodPut, "/reset/tok/sealed",
		`{"password":"secret-pass","password_confirmation":"secret-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, "sealed", got.Email)

	rec = send(e, http.MethodPut, "/reset/tok",
		`{"password":"secret-pass","password_confirmation":"other-pass"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "password_confirmation", body.Errors[0].Field)
	assert.Equal(t, "must match password", body.Errors[0].Error)
}

func TestUserRequests(t *testing.T) {
	t.Run("create applies every field", func(t *testing.T) {
		req := &CreateUserRequest{Email: "a@b.c", Password: "password1"}
		require.NoError(t, req.Validate())

		var u model.User
		req.Apply(&u)
		assert.Equal(t, "a@b.c", u.Email)
		assert.Equal(t, "password1", u.Password)
	})

	t.Run("create rejects bad email", func(t *testing.T) {
		assert.Error(t, (&CreateUserRequest{Email: "nope"}).Validate())
	})

	t.Run("update keeps absent fields", func(t *testing.T) {
		email := "new@b.c"
		req := &UpdateUserRequest{IDRequest: IDRequest{ID: 3}, Email: &email}
		require.NoError(t, req.Validate())
		assert.Equal(t, int64(3), req.ResourceID())

		u := model.User{Email: "old@b.c", Password: "hash"}
		req.Apply(&u)
		assert.Equal(t, "new@b.c", u.Email)
		assert.Equal(t, "hash", u.Password)
	})

	t.Run("update validates present fields", func(t *testing.T) {
		short := "short"
		assert.Error(t, (&UpdateUserRequest{IDRequest: IDRequest{ID: 3}, Password: &short}).Validate())
		assert.Error(t, (&UpdateUserRequest{}).Validate())
	})
}

// memUsers is a ResourceStore without list support.
type memUsers struct {
	rows map[int64]model.User
}

func (m *memUsers) Query(context.Context) (query.Builder[model.User], error) {
	return nil, errors.New("listing is not supported")
}

func (m *memUsers) Create(_ context.Context, u *model.User) (*model.User, error) {
	u.ID = int64(len(m.rows) + 1)
	m.rows[u.ID] = *u
	return u, nil
}

func (m *memUsers) Find(_ context.Context, id int64) (*model.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("table:users:%w", query.ErrNotFound)
	}
	return &u, nil
}

func (m *memUsers) Save(_ context.Context, u *model.User) (*model.User, error) {
	m.rows[u.ID] = *u
	return u, nil
}

func (m *memUsers) Delete(ctx context.Context, id int64) (*model.User, error) {
	u, err := m.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	delete(m.rows, id)
	return u, nil
}

func TestUserHandler_Delete(t *testing.T) {
	e, h := newTestEcho()

	store := &memUsers{rows: map[int64]model.User{1: {ID: 1, Email: "a@b.c"}}}
	svc := service.NewResourceService[model.User]("users", store,
		query.NewCompiler(query.DialectDefault), service.ResourceHooks[model.User]{}, nil)
	users := NewResourceHandler[model.User, *CreateUserRequest, *UpdateUserRequest](h.server, svc)

	e.DELETE("/users/:id", Handle(users.Handler, users.Delete, http.StatusOK,
		func() *IDRequest { return &IDRequest{} }))

	rec := send(e, http.MethodDelete, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var deleted model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.Equal(t, int64(1), deleted.ID)
	assert.Equal(t, "a@b.c", deleted.Email)
	assert.Empty(t, store.rows)

	rec = send(e, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "User not found", body.Message)
}
