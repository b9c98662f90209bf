package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/auth"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/cache"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/database"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/env"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/progress"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/router"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/statistics"
)

func main() {
	env.SetupEnvFile()
	if _, err := logger.Setup(env.IsDev()); err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}
	defer logger.Sync()

	app := NewApplication()
	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func NewApplication() *fiber.App {
	db := database.SetupDatabase()
	cache.SetupCache()

	verifier, err := auth.NewVerifierFromEnv()
	if err != nil {
		logger.L().Fatal("auth setup failed", zap.Error(err))
	}

	opts := []progress.Option{progress.WithLogger(logger.L())}
	deps := router.Dependencies{Verifier: verifier}
	if cache.Available() {
		recorder := statistics.NewCacheRecorder()
		opts = append(opts, progress.WithRecorder(recorder))
		deps.Stats = recorder
	} else {
		logger.L().Warn("completion statistics disabled, cache unreachable")
	}
	deps.Service = progress.NewServiceFromDB(db, opts...)

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/phasegate to project root
		"../../../", // Fallback
	}

	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	app := fiber.New(fiber.Config{
		AppName:   "PhaseGate",
		BodyLimit: 1 << 20, // progress payloads are small JSON documents
	})

	// recovery and logging
	app.Use(recover.New(), fiberlogger.New())

	// SWAGGER / OPENAPI
	if basePath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: basePath + "public/docs/v1/openapi.yml",
			Path:     "v1",
		}))
	} else {
		logger.L().Warn("openapi document not found, swagger ui disabled")
	}

	// ROUTER
	router.InstallRouter(app, deps)

	return app
}
