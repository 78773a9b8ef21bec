package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/gocrud/internal/errs"
	"github.com/deppfellow/gocrud/internal/lib/job"
	"github.com/deppfellow/gocrud/internal/metrics"
	"github.com/deppfellow/gocrud/internal/model"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const resetTokenBytes = 10

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) (*model.User, error)
}

type PasswordResetStore interface {
	Replace(ctx context.Context, email, token string) (*model.PasswordReset, error)
	GetByToken(ctx context.Context, token string) (*model.PasswordReset, error)
	Delete(ctx context.Context, id int64) error
}

type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task) error
}

type AuthConfig struct {
	ResetTokenExpiry time.Duration
	ResetCallbackURL string
}

type AuthService struct {
	users     UserStore
	resets    PasswordResetStore
	resources *ResourceService[model.User]
	tokens    *TokenService
	sealer    *EmailSealer
	jobs      Enqueuer
	cfg       AuthConfig
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
	now       func() time.Time
}

type AuthDeps struct {
	Users     UserStore
	Resets    PasswordResetStore
	Resources *ResourceService[model.User]
	Tokens    *TokenService
	Sealer    *EmailSealer
	Jobs      Enqueuer
	Config    AuthConfig
	Metrics   *metrics.Metrics
	Logger    *zerolog.Logger
}

func NewAuthService(d AuthDeps) *AuthService {
	return &AuthService{
		users:     d.Users,
		resets:    d.Resets,
		resources: d.Resources,
		tokens:    d.Tokens,
		sealer:    d.Sealer,
		jobs:      d.Jobs,
		cfg:       d.Config,
		metrics:   d.Metrics,
		logger:    d.Logger,
		now:       time.Now,
	}
}

// LoginResult carries the fresh token and its owner.
type LoginResult struct {
	User  *model.User  `json:"user"`
	Token *IssuedToken `json:"token"`
}

// Register creates the user through the users resource so its hooks run.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.resources.Create(ctx, &model.User{Email: email, Password: password})
	s.metrics.Auth("register", err)
	return user, err
}

func (s *AuthService) Login(ctx context.Context, email, password string) (res *LoginResult, err error) {
	defer func() { s.metrics.Auth("login", err) }()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewUnauthorizedError("Invalid user credentials", true)
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, errs.NewUnauthorizedError("Invalid user credentials", true)
	}

	token, err := s.tokens.Issue(ctx, user, "login")
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token}, nil
}

func (s *AuthService) Logout(ctx context.Context, id *Identity) error {
	err := s.tokens.Revoke(ctx, id.TokenID)
	s.metrics.Auth("logout", err)
	return err
}

func (s *AuthService) CurrentUser(ctx context.Context, id *Identity) (*model.User, error) {
	return s.users.GetByID(ctx, id.UserID)
}

// Forgot replaces any pending reset for email and queues a recovery mail
// linking to callbackURL/token/sealedEmail.
func (s *AuthService) Forgot(ctx context.Context, email, callbackURL string) (err error) {
	defer func() { s.metrics.Auth("forgot", err) }()

	if callbackURL == "" {
		callbackURL = s.cfg.ResetCallbackURL
	}
	if callbackURL == "" {
		return errs.NewBadRequestError("callbackUrl is required", true, nil, []errs.FieldError{
			{Field: "callbackUrl", Error: "is required"},
		}, nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := randomToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if _, err := s.resets.Replace(ctx, user.Email, token); err != nil {
		return err
	}

	sealed, err := s.sealer.Seal(user.Email)
	if err != nil {
		return fmt.Errorf("failed to seal email: %w", err)
	}
	link := fmt.Sprintf("%s/%s/%s", strings.TrimRight(callbackURL, "/"), token, sealed)

	task, err := job.NewPasswordRecoveryTask(user.Email, link)
	if err != nil {
		return fmt.Errorf("failed to build password recovery task: %w", err)
	}
	return s.jobs.Enqueue(ctx, task)
}

// Reset sets a new password for the owner of token. sealedEmail, when the
// link carried one, must open to the same address the reset was issued for.
func (s *AuthService) Reset(ctx context.Context, token, sealedEmail, password string) (res *model.User, err error) {
	defer func() { s.metrics.Auth("reset", err) }()

	reset, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if reset.Expired(s.now(), s.cfg.ResetTokenExpiry) {
		if err := s.resets.Delete(ctx, reset.ID); err != nil {
			s.logger.Warn().Err(err).Int64("reset_id", reset.ID).Msg("failed to delete expired password reset")
		}
		return nil, errs.NewUnauthorizedError("Old token provided or token already used", true)
	}

	if sealedEmail != "" {
		email, err := s.sealer.Open(sealedEmail)
		if err != nil || !strings.EqualFold(email, reset.Email) {
			return nil, errs.NewUnauthorizedError("Old token provided or token already used", true)
		}
	}

	user, err := s.users.GetByEmail(ctx, reset.Email)
	if err != nil {
		return nil, err
	}

	hash, err := model.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err = s.users.UpdatePassword(ctx, user.ID, hash)
	if err != nil {
		return nil, err
	}

	if err := s.resets.Delete(ctx, reset.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func randomToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
