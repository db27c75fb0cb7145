package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-marketplace/internal/auth"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewAuthenticationRequired("authentication required")
	}
	return p, nil
}

func actor(c *fiber.Ctx) (domain.Actor, error) {
	p, err := principal(c)
	if err != nil {
		return domain.Actor{}, err
	}
	return p.Actor(), nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// parsePage reads page and page_size, defaulting to the first 20 items.
func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

func parseStatuses(raw string) ([]domain.WorkflowState, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []domain.WorkflowState
	for _, part := range strings.Split(raw, ",") {
		state, err := domain.ParseWorkflowState(strings.TrimSpace(part))
		if err != nil {
			return nil, apperrors.NewValidationError("unknown product status", map[string]any{"status": part})
		}
		out = append(out, state)
	}
	return out, nil
}

func parseRoles(raw []string) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(raw))
	for _, r := range raw {
		role, err := domain.ParseRole(r)
		if err != nil {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": r})
		}
		out = append(out, role)
	}
	return out, nil
}
