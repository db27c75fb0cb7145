package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-marketplace/internal/api/dto"
	"github.com/spec-kit/tour-marketplace/internal/service"
)

// AuthHandler exposes login, role selection and identity endpoints.
type AuthHandler struct {
	auth  *service.AuthService
	roles *service.RoleResolver
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, roles *service.RoleResolver) *AuthHandler {
	return &AuthHandler{auth: authService, roles: roles}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// SelectRole handles POST /auth/select-role. Any role in the token is
// ignored; only the granted set decides.
func (h *AuthHandler) SelectRole(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.SelectRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	session, err := h.roles.SelectActiveRole(c.UserContext(), p.UserID, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// Logout handles POST /auth/logout. Tokens are not revoked.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), p.UserID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Me(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	resp := dto.NewUserResponse(user)
	resp.ActiveRole = p.ActiveRole
	return c.JSON(fiber.Map{"data": resp})
}

func sessionResponse(s *service.Session) dto.SessionResponse {
	return dto.SessionResponse{
		Token:                 s.Token,
		ExpiresAt:             s.ExpiresAt,
		User:                  dto.NewUserResponse(s.User),
		RequiresRoleSelection: s.RequiresRoleSelection,
	}
}
