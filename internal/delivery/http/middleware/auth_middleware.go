package middleware

import (
	"errors"
	"strings"

	"skill-swap/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
)

const (
	CtxUserIDKey = "user_id"
	CtxEmailKey  = "email"
)

type tokenSource func(c fiber.Ctx) (string, bool)

// AuthMiddleware resolves the swap participant from an access token issued by
// the identity provider. Refresh tokens are never accepted.
type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

// Middleware reads "Authorization: Bearer <token>".
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return m.handler(func(c fiber.Ctx) (string, bool) {
		return bearerTokenFromHeader(c.Get("Authorization"))
	})
}

// QueryMiddleware reads the token from a query parameter. Browsers cannot set
// headers on a websocket handshake.
func (m *AuthMiddleware) QueryMiddleware(param string) fiber.Handler {
	return m.handler(func(c fiber.Ctx) (string, bool) {
		tok := strings.TrimSpace(c.Query(param))
		return tok, tok != ""
	})
}

func (m *AuthMiddleware) handler(source tokenSource) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := source(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.authenticate(token)
		if err != nil {
			return err
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxEmailKey, claims.Email)

		return c.Next()
	}
}

func (m *AuthMiddleware) authenticate(token string) (jwt.Claims, error) {
	if m == nil || m.jwt == nil {
		return jwt.Claims{}, NewAppError(fiber.StatusServiceUnavailable, "Authentication unavailable", nil, nil)
	}

	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return jwt.Claims{}, NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
		}
		return jwt.Claims{}, NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
	}

	if claims.TokenType != jwt.TokenTypeAccess || m.jwt.IsRefreshToken(claims) {
		return jwt.Claims{}, NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
	}
	return claims, nil
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
