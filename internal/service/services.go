package service

import (
	"context"

	"github.com/deppfellow/gocrud/internal/lib/job"
	"github.com/deppfellow/gocrud/internal/model"
	"github.com/deppfellow/gocrud/internal/query"
	"github.com/deppfellow/gocrud/internal/repository"
	"github.com/deppfellow/gocrud/internal/server"
	"github.com/rs/zerolog"
)

type Services struct {
	Auth   *AuthService
	Tokens *TokenService
	Users  *ResourceService[model.User]
	Job    *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	dialect := query.ParseDialect(s.Config.Database.Dialect)
	compiler := query.NewCompiler(dialect)

	var cache TokenCache
	if s.Redis != nil {
		cache = NewRedisTokenCache(s.Redis)
	}
	tokens := NewTokenService(s.Config.Auth.SecretKey, s.Config.Auth.TokenExpiry, repos.Tokens, cache, s.Logger)

	users := NewResourceService("users", repos.UserResources, compiler, UserHooks(s.Job, s.Logger), s.Metrics)

	auth := NewAuthService(AuthDeps{
		Users:     repos.Users,
		Resets:    repos.PasswordResets,
		Resources: users,
		Tokens:    tokens,
		Sealer:    NewEmailSealer(s.Config.Auth.SecretKey),
		Jobs:      s.Job,
		Config: AuthConfig{
			ResetTokenExpiry: s.Config.Auth.ResetTokenExpiry,
			ResetCallbackURL: s.Config.Auth.ResetCallbackURL,
		},
		Metrics: s.Metrics,
		Logger:  s.Logger,
	})

	s.Logger.Info().Str("dialect", string(dialect)).Msg("services initialized")

	return &Services{
		Auth:   auth,
		Tokens: tokens,
		Users:  users,
		Job:    s.Job,
	}, nil
}

// UserHooks queues the welcome email for every created user. A failed
// enqueue is logged and does not fail the request; the user already exists.
func UserHooks(jobs Enqueuer, logger *zerolog.Logger) ResourceHooks[model.User] {
	return ResourceHooks[model.User]{
		AfterCreate: func(ctx context.Context, u *model.User) (*model.User, error) {
			task, err := job.NewWelcomeEmailTask(u.Email)
			if err == nil {
				err = jobs.Enqueue(ctx, task)
			}
			if err != nil {
				logger.Error().Err(err).Int64("user_id", u.ID).Msg("failed to queue welcome email")
			}
			return u, nil
		},
	}
}
