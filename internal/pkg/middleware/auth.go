package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/usercontext"
)

// AdminChecker answers whether a user holds the admin role.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireAPIAuth ensures an authenticated caller and returns JSON 401 otherwise.
func RequireAPIAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return unauthorized(c, "login required")
	}
	return c.Next()
}

// RequireAdmin ensures an authenticated admin. A failed role lookup is
// treated as non-admin.
func RequireAdmin(checker AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userCtx := usercontext.GetUserContext(c)
		if !userCtx.IsLoggedIn {
			return unauthorized(c, "login required")
		}

		isAdmin, err := checker.IsAdmin(c.UserContext(), userCtx.UserID)
		if err != nil {
			logger.L().Warn("admin role lookup failed", zap.String("user_id", userCtx.UserID.String()), zap.Error(err))
		}
		if !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "admin role required",
			})
		}
		return c.Next()
	}
}
