package handler

import (
	"github.com/deppfellow/gocrud/internal/model"
	"github.com/deppfellow/gocrud/internal/server"
	"github.com/deppfellow/gocrud/internal/service"
)

type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Auth    *AuthHandler
	Users   *UserHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Auth:    NewAuthHandler(s, services.Auth),
		Users:   NewResourceHandler[model.User, *CreateUserRequest, *UpdateUserRequest](s, services.Users),
	}
}
