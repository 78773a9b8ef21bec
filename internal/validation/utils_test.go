package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/gocrud/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var v = validator.New()

type resetPayload struct {
	Token                string `param:"token" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

func (p *resetPayload) Validate() error { return v.Struct(p) }

type customPayload struct{}

func (customPayload) Validate() error {
	return CustomValidationErrors{{Field: "name", Message: "is taken"}}
}

func bind(t *testing.T, body string, payload Validatable) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/reset/abc", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("token")
	c.SetParamValues("abc")
	return BindAndValidate(c, payload)
}

func fieldErrors(t *testing.T, err error) []errs.FieldError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	return httpErr.Errors
}

func TestBindAndValidate_OK(t *testing.T) {
	p := &resetPayload{}
	require.NoError(t, bind(t, `{"password":"password1","password_confirmation":"password1"}`, p))
	assert.Equal(t, "abc", p.Token)
	assert.Equal(t, "password1", p.Password)
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	err := bind(t, `{"password":"short","password_confirmation":"other"}`, &resetPayload{})
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "password", Error: "must be at least 8 characters"},
		{Field: "password_confirmation", Error: "must match password"},
	}, fieldErrors(t, err))
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	err := bind(t, `{"password":`, &resetPayload{})
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Nil(t, httpErr.Errors)
	assert.NotEmpty(t, httpErr.Message)
}

func TestBindAndValidate_Custom(t *testing.T) {
	err := bind(t, `{}`, &customPayload{})
	assert.Equal(t, []errs.FieldError{{Field: "name", Error: "is taken"}}, fieldErrors(t, err))
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "email", fieldName("Email"))
	assert.Equal(t, "password_confirmation", fieldName("PasswordConfirmation"))
	assert.Equal(t, "callback_url", fieldName("CallbackURL"))
	assert.Equal(t, "id", fieldName("ID"))
}
