package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/deppfellow/gocrud/internal/errs"
	"github.com/deppfellow/gocrud/internal/service"
	"github.com/labstack/echo/v4"
)

type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*service.Identity, error)
}

type AuthMiddleware struct {
	tokens TokenVerifier
}

func NewAuthMiddleware(tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth accepts "Authorization: Bearer <token>" and stores the
// verified identity on the context.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			GetLogger(c).Warn().Str("function", "RequireAuth").Msg("missing bearer token")
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		identity, err := auth.tokens.Verify(c.Request().Context(), raw)
		if err != nil {
			GetLogger(c).Warn().Err(err).Str("function", "RequireAuth").Msg("token rejected")
			return err
		}

		userID := strconv.FormatInt(identity.UserID, 10)
		c.Set(IdentityKey, identity)
		c.Set(UserIDKey, userID)

		l := GetLogger(c).With().Str("user_id", userID).Logger()
		setLogger(c, &l)

		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetIdentity returns the identity set by RequireAuth, if any.
func GetIdentity(c echo.Context) (*service.Identity, bool) {
	id, ok := c.Get(IdentityKey).(*service.Identity)
	return id, ok
}

// MustIdentity is GetIdentity for routes behind RequireAuth.
func MustIdentity(c echo.Context) *service.Identity {
	id, ok := GetIdentity(c)
	if !ok {
		panic("middleware: identity requested on an unauthenticated route")
	}
	return id
}
