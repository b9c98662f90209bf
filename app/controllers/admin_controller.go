package controllers

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/progress"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/statistics"
)

// CompletionStats reads the recorded completion counters.
type CompletionStats interface {
	Completions(ctx context.Context) ([]statistics.PhaseCount, error)
}

// AdminController handles admin-only API requests
type AdminController struct {
	service  *progress.Service
	stats    CompletionStats
	validate *validator.Validate
}

// NewAdminController creates a new admin controller. stats may be nil when
// no cache is configured.
func NewAdminController(service *progress.Service, stats CompletionStats) *AdminController {
	return &AdminController{
		service:  service,
		stats:    stats,
		validate: validator.New(),
	}
}

type updatePlanRequest struct {
	Plan string `json:"plan" validate:"required,oneof=free pro premium gold"`
}

// HandleStatistics returns phase completion counters.
func (ac *AdminController) HandleStatistics(c *fiber.Ctx) error {
	if ac.stats == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "statistics_unavailable", "Statistics store not configured")
	}

	counts, err := ac.stats.Completions(c.UserContext())
	if err != nil {
		logger.L().Error("reading completion statistics failed", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load statistics")
	}

	var total int64
	for _, pc := range counts {
		total += pc.Completions
	}
	return c.JSON(fiber.Map{
		"total_completions": total,
		"phases":            counts,
		"catalog_size":      ac.service.Catalog().Len(),
	})
}

// HandleUpdateUserPlan moves a user to another plan.
func (ac *AdminController) HandleUpdateUserPlan(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil || userID == uuid.Nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid user id")
	}

	var req updatePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
	}
	req.Plan = strings.ToLower(strings.TrimSpace(req.Plan))
	if err := ac.validate.Struct(req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "plan must be one of free, pro, premium, gold")
	}

	sub, err := ac.service.Resolver().ChangePlan(c.UserContext(), userID, req.Plan)
	if err != nil {
		return handleServiceError(c, "Failed to update plan", err)
	}

	logger.L().Info("user plan changed", zap.String("user_id", userID.String()), zap.String("plan", sub.Plan))
	return c.JSON(sub)
}
