package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/phases"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/progress"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/usercontext"
)

// ProgressController serves the phase catalog and the caller's progress.
type ProgressController struct {
	service *progress.Service
}

// NewProgressController creates a progress controller on the given service.
func NewProgressController(service *progress.Service) *ProgressController {
	return &ProgressController{service: service}
}

type completePhaseRequest struct {
	ProgressData json.RawMessage `json:"progress_data"`
}

// ProgressResponse is the JSON view of a snapshot.
type ProgressResponse struct {
	UserID               string                 `json:"user_id"`
	Plan                 string                 `json:"plan"`
	IsAdmin              bool                   `json:"is_admin"`
	CompletedCount       int                    `json:"completed_count"`
	TotalPhases          int                    `json:"total_phases"`
	CompletionPercentage int                    `json:"completion_percentage"`
	NextPhase            *phases.Phase          `json:"next_phase"`
	Phases               []progress.PhaseStatus `json:"phases"`
	Degraded             bool                   `json:"degraded"`
	LoadedAt             string                 `json:"loaded_at"`
}

// NewProgressResponse renders a snapshot. degraded marks a snapshot built
// from fallback values after a read failure.
func NewProgressResponse(snap *progress.Snapshot, degraded bool) ProgressResponse {
	resp := ProgressResponse{
		UserID:               snap.UserID().String(),
		Plan:                 snap.Tier().String(),
		IsAdmin:              snap.IsAdmin(),
		CompletedCount:       snap.CompletedCount(),
		TotalPhases:          snap.Catalog().Len(),
		CompletionPercentage: snap.CompletionPercentage(),
		Phases:               snap.Statuses(),
		Degraded:             degraded,
		LoadedAt:             snap.LoadedAt().UTC().Format(time.RFC3339),
	}
	if next, ok := snap.NextPhase(); ok {
		resp.NextPhase = &next
	}
	return resp
}

// HandlePhases returns the ordered catalog.
func (pc *ProgressController) HandlePhases(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"phases": pc.service.Catalog().Ordered(),
	})
}

// HandleGetProgress returns the snapshot of the authenticated caller.
func (pc *ProgressController) HandleGetProgress(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "login required")
	}
	userID := usercontext.GetUserID(c)

	snap, err := pc.service.Load(c.UserContext(), userID)
	if err != nil {
		logger.L().Warn("serving degraded progress", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return c.JSON(NewProgressResponse(snap, err != nil))
}

// HandleCompletePhase marks a phase completed for the caller. Locked phases
// are refused with 403 and the reason.
func (pc *ProgressController) HandleCompletePhase(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "login required")
	}
	userID := usercontext.GetUserID(c)

	phaseID := c.Params("phase")
	if !pc.service.Catalog().Has(phaseID) {
		return jsonError(c, fiber.StatusNotFound, "not_found", "Unknown phase")
	}

	var req completePhaseRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid request body")
		}
	}

	current, err := pc.service.Load(c.UserContext(), userID)
	if err != nil {
		logger.L().Warn("gating on degraded progress",
			zap.String("user_id", userID.String()),
			zap.String("phase", phaseID),
			zap.Error(err))
	}
	status, _ := current.Status(phaseID)
	if !status.Unlocked {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":                "phase_locked",
			"message":              "Phase is locked",
			"lock_reason":          status.LockReason,
			"missing_requirements": status.MissingRequirements,
			"required_plan":        status.Phase.RequiredPlan,
		})
	}

	var data any
	if len(req.ProgressData) > 0 && string(req.ProgressData) != "null" {
		data = req.ProgressData
	}

	snap, err := pc.service.MarkPhaseComplete(c.UserContext(), userID, phaseID, data)
	if err != nil {
		return handleServiceError(c, "Failed to complete phase", err)
	}
	return c.JSON(NewProgressResponse(snap, false))
}
