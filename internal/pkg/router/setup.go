package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PhaseGate/app/controllers"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/auth"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/progress"
)

// Router installs a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the services the routes are wired to.
type Dependencies struct {
	Service  *progress.Service
	Verifier *auth.Verifier
	// Stats is nil when no cache is reachable.
	Stats controllers.CompletionStats
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	controllers.InitializeProgressController(deps.Service)
	controllers.InitializeAdminController(deps.Service, deps.Stats)

	setup(app, NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
