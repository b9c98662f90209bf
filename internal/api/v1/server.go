package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PhaseGate/app/controllers"
)

// ServerInterface lists the operations of public/docs/v1/openapi.yml.
type ServerInterface interface {
	// (GET /ping)
	GetPing(c *fiber.Ctx) error
	// (GET /phases)
	GetPhases(c *fiber.Ctx) error
	// (GET /progress)
	GetProgress(c *fiber.Ctx) error
	// (POST /progress/{phase}/complete)
	PostCompletePhase(c *fiber.Ctx, phase string) error
	// (GET /admin/statistics)
	GetAdminStatistics(c *fiber.Ctx) error
	// (PUT /admin/users/{id}/plan)
	PutAdminUserPlan(c *fiber.Ctx, id string) error
}

// Pong is the ping response body.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

func (s *APIServer) GetPhases(c *fiber.Ctx) error {
	return controllers.HandlePhases(c)
}

// GetProgress returns the caller's snapshot. Authentication is enforced by
// the router.
func (s *APIServer) GetProgress(c *fiber.Ctx) error {
	return controllers.HandleGetProgress(c)
}

// PostCompletePhase delegates to the progress controller, which reads the
// phase from the route params.
func (s *APIServer) PostCompletePhase(c *fiber.Ctx, phase string) error {
	return controllers.HandleCompletePhase(c)
}

func (s *APIServer) GetAdminStatistics(c *fiber.Ctx) error {
	return controllers.HandleAdminStatistics(c)
}

func (s *APIServer) PutAdminUserPlan(c *fiber.Ctx, id string) error {
	return controllers.HandleAdminUpdateUserPlan(c)
}

// RegisterHandlers binds every operation to its route below router.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)
	router.Get("/phases", si.GetPhases)
	router.Get("/progress", si.GetProgress)
	router.Post("/progress/:phase/complete", func(c *fiber.Ctx) error {
		return si.PostCompletePhase(c, c.Params("phase"))
	})
	router.Get("/admin/statistics", si.GetAdminStatistics)
	router.Put("/admin/users/:id/plan", func(c *fiber.Ctx) error {
		return si.PutAdminUserPlan(c, c.Params("id"))
	})
}
