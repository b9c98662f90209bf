package router

import (
	"github.com/gofiber/fiber/v2"

	apiv1 "github.com/ManuelReschke/PhaseGate/internal/api/v1"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", newAPILimiter())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1", middleware.UserContextMiddleware(h.deps.Verifier))
	v1.Use("/progress", middleware.RequireAPIAuth)
	v1.Use("/admin", middleware.RequireAdmin(h.deps.Service.Resolver()))
	apiv1.RegisterHandlers(v1, apiv1.NewAPIServer())
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
