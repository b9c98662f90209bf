package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/progress"
)

// Global progress controller instance
var progressController *ProgressController

// InitializeProgressController sets the global progress controller
func InitializeProgressController(service *progress.Service) {
	progressController = NewProgressController(service)
}

// GetProgressController returns the global progress controller instance
func GetProgressController() *ProgressController {
	if progressController == nil {
		panic("controllers: progress controller not initialized")
	}
	return progressController
}

// HandlePhases - Adapter for the catalog listing
func HandlePhases(c *fiber.Ctx) error {
	return GetProgressController().HandlePhases(c)
}

// HandleGetProgress - Adapter for the caller's snapshot
func HandleGetProgress(c *fiber.Ctx) error {
	return GetProgressController().HandleGetProgress(c)
}

// HandleCompletePhase - Adapter for phase completion
func HandleCompletePhase(c *fiber.Ctx) error {
	return GetProgressController().HandleCompletePhase(c)
}
