package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/progress"
)

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

// handleServiceError maps progress errors to HTTP responses.
func handleServiceError(c *fiber.Ctx, msg string, err error) error {
	switch {
	case errors.Is(err, progress.ErrAuthRequired):
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "login required")
	case errors.Is(err, progress.ErrUnknownPhase):
		return jsonError(c, fiber.StatusNotFound, "not_found", "Unknown phase")
	case errors.Is(err, progress.ErrInvalidProgressData):
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "progress_data must be valid JSON")
	case errors.Is(err, progress.ErrPersistence):
		logger.L().Error(msg, zap.String("path", c.Path()), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "persistence_error", msg)
	default:
		logger.L().Error(msg, zap.String("path", c.Path()), zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", msg)
	}
}
