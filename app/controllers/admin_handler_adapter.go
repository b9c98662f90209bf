package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/progress"
)

// Global admin controller instance
var adminController *AdminController

// InitializeAdminController sets the global admin controller
func InitializeAdminController(service *progress.Service, stats CompletionStats) {
	adminController = NewAdminController(service, stats)
}

// GetAdminController returns the global admin controller instance
func GetAdminController() *AdminController {
	if adminController == nil {
		panic("controllers: admin controller not initialized")
	}
	return adminController
}

// HandleAdminStatistics - Adapter for completion statistics
func HandleAdminStatistics(c *fiber.Ctx) error {
	return GetAdminController().HandleStatistics(c)
}

// HandleAdminUpdateUserPlan - Adapter for plan changes
func HandleAdminUpdateUserPlan(c *fiber.Ctx) error {
	return GetAdminController().HandleUpdateUserPlan(c)
}
