package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/deppfellow/gocrud/internal/errs"
	"github.com/deppfellow/gocrud/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const tokenCachePrefix = "auth:token:"

type TokenStore interface {
	Create(ctx context.Context, t *model.AccessToken) (*model.AccessToken, error)
	GetByToken(ctx context.Context, token string) (*model.AccessToken, error)
	DeleteByToken(ctx context.Context, token string) error
}

// TokenCache remembers live token ids so most requests skip the database.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Claims struct {
	jwt.RegisteredClaims
}

// IssuedToken is what login hands to the client.
type IssuedToken struct {
	Type      string    `json:"type"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity is the verified owner of a bearer token.
type Identity struct {
	UserID  int64
	TokenID string
}

type TokenService struct {
	secret []byte
	ttl    time.Duration
	store  TokenStore
	cache  TokenCache
	logger *zerolog.Logger
	now    func() time.Time
}

// NewTokenService signs HS256 tokens with secret. cache may be nil.
func NewTokenService(secret string, ttl time.Duration, store TokenStore, cache TokenCache, logger *zerolog.Logger) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

func (s *TokenService) Issue(ctx context.Context, user *model.User, name string) (*IssuedToken, error) {
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	jti := uuid.NewString()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if _, err := s.store.Create(ctx, &model.AccessToken{
		UserID:    user.ID,
		Name:      name,
		Type:      model.TokenTypeBearer,
		Token:     jti,
		ExpiresAt: &expires,
	}); err != nil {
		return nil, err
	}

	s.remember(ctx, jti, user.ID, s.ttl)

	return &IssuedToken{Type: model.TokenTypeBearer, Token: signed, ExpiresAt: expires}, nil
}

// Verify checks the signature and expiry of raw and that the token has not
// been revoked.
func (s *TokenService) Verify(ctx context.Context, raw string) (*Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.ID == "" {
		return nil, errs.NewUnauthorizedError("Invalid or expired token", false)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, errs.NewUnauthorizedError("Invalid or expired token", false)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, tokenCachePrefix+claims.ID)
		switch {
		case err == nil && cached == claims.Subject:
			return &Identity{UserID: userID, TokenID: claims.ID}, nil
		case err != nil && !errors.Is(err, redis.Nil):
			s.logger.Warn().Err(err).Msg("token cache unavailable, checking database")
		}
	}

	stored, err := s.store.GetByToken(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NewUnauthorizedError("Token has been revoked", false)
		}
		return nil, err
	}
	if stored.UserID != userID || stored.Expired(s.now()) {
		return nil, errs.NewUnauthorizedError("Invalid or expired token", false)
	}

	if stored.ExpiresAt != nil {
		s.remember(ctx, claims.ID, userID, stored.ExpiresAt.Sub(s.now()))
	}
	return &Identity{UserID: userID, TokenID: claims.ID}, nil
}

func (s *TokenService) Revoke(ctx context.Context, tokenID string) error {
	if err := s.store.DeleteByToken(ctx, tokenID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, tokenCachePrefix+tokenID); err != nil {
			return fmt.Errorf("failed to evict token: %w", err)
		}
	}
	return nil
}

func (s *TokenService) remember(ctx context.Context, jti string, userID int64, ttl time.Duration) {
	if s.cache == nil || ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, tokenCachePrefix+jti, strconv.FormatInt(userID, 10), ttl); err != nil {
		s.logger.Warn().Err(err).Str("token_id", jti).Msg("failed to cache token")
	}
}

// RedisTokenCache adapts a go-redis client to TokenCache.
type RedisTokenCache struct {
	client redis.Cmdable
}

func NewRedisTokenCache(client redis.Cmdable) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

func (c *RedisTokenCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *RedisTokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisTokenCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
