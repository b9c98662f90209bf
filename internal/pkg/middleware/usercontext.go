package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/auth"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the user context for every request from the
// Supabase access token. Requests without an Authorization header continue
// as anonymous; a header that does not carry a valid token is rejected.
func UserContextMiddleware(verifier *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			usercontext.Set(c, usercontext.UserContext{})
			return c.Next()
		}

		token, ok := auth.ExtractBearerToken(header)
		if !ok {
			return unauthorized(c, "Malformed authorization header")
		}

		claims, userID, err := verifier.Verify(token)
		if err != nil {
			logger.L().Debug("rejected access token", zap.String("path", c.Path()), zap.Error(err))
			return unauthorized(c, "Invalid or expired token")
		}

		usercontext.Set(c, usercontext.UserContext{
			UserID:     userID,
			Email:      claims.Email,
			IsLoggedIn: true,
		})
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": message,
	})
}
