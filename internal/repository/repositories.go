package repository

import (
	"github.com/deppfellow/gocrud/internal/model"
	"github.com/deppfellow/gocrud/internal/server"
)

type Repositories struct {
	Users          *UserRepository
	Tokens         *TokenRepository
	PasswordResets *PasswordResetRepository

	// UserResources backs the generic /users endpoints.
	UserResources *Resource[model.User]
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Users:          NewUserRepository(s.DB.Pool),
		Tokens:         NewTokenRepository(s.DB.Pool),
		PasswordResets: NewPasswordResetRepository(s.DB.Pool),
		UserResources:  NewResource[model.User](s.DB.ORM),
	}
}
