package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/guide-store/internal/domain"
	"github.com/spec-kit/guide-store/internal/repository"
	apperrors "github.com/spec-kit/guide-store/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User      *domain.User
	TokenID   string
	ExpiresAt int64
}

// Middleware validates bearer tokens and loads principals.
type Middleware struct {
	tokens  *TokenManager
	users   repository.UserRepository
	revoker TokenRevoker
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository, revoker TokenRevoker) *Middleware {
	return &Middleware{tokens: tokens, users: users, revoker: revoker}
}

// Required enforces authentication for protected routes.
func (m *Middleware) Required(c *fiber.Ctx) error {
	principal, err := m.resolve(c)
	if err != nil {
		return err
	}
	if principal == nil {
		return apperrors.NewUnauthenticated("missing authorization header")
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional loads the principal when a valid token is presented, and lets
// anonymous requests through. Read paths use this to tailor access.
func (m *Middleware) Optional(c *fiber.Ctx) error {
	principal, err := m.resolve(c)
	if err == nil && principal != nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

func (m *Middleware) resolve(c *fiber.Ctx) (*Principal, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid token")
	}

	revoked, err := m.revoker.IsRevoked(c.Context(), claims.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if revoked {
		return nil, apperrors.NewUnauthenticated("token revoked")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthenticated("user not found")
		}
		return nil, apperrors.MapError(err)
	}

	return &Principal{
		User:      user,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
