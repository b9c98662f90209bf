package usercontext

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserContext represents the authenticated caller of a request
type UserContext struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	IsLoggedIn bool      `json:"is_logged_in"`
}

// Set stores the user context on the fiber context
func Set(c *fiber.Ctx, userCtx UserContext) {
	c.Locals(KeyUserContext, userCtx)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or uuid.Nil if not logged in
func GetUserID(c *fiber.Ctx) uuid.UUID {
	return GetUserContext(c).UserID
}
