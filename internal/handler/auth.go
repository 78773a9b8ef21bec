package handler

import (
	"github.com/deppfellow/gocrud/internal/middleware"
	"github.com/deppfellow/gocrud/internal/model"
	"github.com/deppfellow/gocrud/internal/server"
	"github.com/deppfellow/gocrud/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

func (r *RegisterRequest) Validate() error { return validate.Struct(r) }

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error { return validate.Struct(r) }

type ForgotRequest struct {
	Email       string `json:"email" validate:"required,email"`
	CallbackURL string `json:"callbackUrl" validate:"omitempty,url"`
}

func (r *ForgotRequest) Validate() error { return validate.Struct(r) }

// ResetRequest takes the token and the optional sealed email from the
// recovery link path.
type ResetRequest struct {
	Token                string `param:"token" validate:"required"`
	Email                string `param:"email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

func (r *ResetRequest) Validate() error { return validate.Struct(r) }

// EmptyRequest is for endpoints that read nothing from the request.
type EmptyRequest struct{}

func (*EmptyRequest) Validate() error { return nil }

type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AuthHandler struct {
	Handler
	auth *service.AuthService
}

func NewAuthHandler(s *server.Server, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Handler: NewHandler(s), auth: auth}
}

func (h *AuthHandler) Register(c echo.Context, req *RegisterRequest) (*model.User, error) {
	return h.auth.Register(c.Request().Context(), req.Email, req.Password)
}

func (h *AuthHandler) Login(c echo.Context, req *LoginRequest) (*service.LoginResult, error) {
	return h.auth.Login(c.Request().Context(), req.Email, req.Password)
}

func (h *AuthHandler) Logout(c echo.Context, _ *EmptyRequest) (*LogoutResponse, error) {
	if err := h.auth.Logout(c.Request().Context(), middleware.MustIdentity(c)); err != nil {
		return nil, err
	}
	return &LogoutResponse{Success: true, Message: "user logged out"}, nil
}

func (h *AuthHandler) Me(c echo.Context, _ *EmptyRequest) (*model.User, error) {
	return h.auth.CurrentUser(c.Request().Context(), middleware.MustIdentity(c))
}

func (h *AuthHandler) Forgot(c echo.Context, req *ForgotRequest) error {
	return h.auth.Forgot(c.Request().Context(), req.Email, req.CallbackURL)
}

func (h *AuthHandler) Reset(c echo.Context, req *ResetRequest) (*model.User, error) {
	return h.auth.Reset(c.Request().Context(), req.Token, req.Email, req.Password)
}
