package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/guide-store/internal/api/dto"
	"github.com/spec-kit/guide-store/internal/auth"
	"github.com/spec-kit/guide-store/internal/config"
	"github.com/spec-kit/guide-store/internal/domain"
	"github.com/spec-kit/guide-store/internal/service"
	apperrors "github.com/spec-kit/guide-store/pkg/util/errorutil"
)

// AuthHandler exposes session endpoints for customers.
type AuthHandler struct {
	auth  *service.AuthService
	oauth config.OAuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, oauth config.OAuthConfig) *AuthHandler {
	return &AuthHandler{auth: authService, oauth: oauth}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Signout handles POST /api/auth/signout. The presented token is revoked
// until its natural expiry.
func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("session required")
	}

	if err := h.auth.Signout(c.Context(), principal.TokenID, time.Unix(principal.ExpiresAt, 0)); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"message": "signed out"})
}

// Providers handles GET /api/auth/providers.
func (h *AuthHandler) Providers(c *fiber.Ctx) error {
	providers := []string{"credentials"}
	if h.oauth.GoogleEnabled() {
		providers = append(providers, "google")
	}
	return c.JSON(fiber.Map{"data": providers})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Image:     user.Image,
		CreatedAt: user.CreatedAt,
	}
}
