package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/cache"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/database"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/env"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/progress"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/statistics"
)

func main() {
	env.SetupEnvFile()
	if _, err := logger.Setup(env.IsDev()); err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}
	defer logger.Sync()

	root := newRootCmd(func() (*progress.Service, error) {
		db := database.SetupDatabase()
		opts := []progress.Option{progress.WithLogger(logger.L())}
		cache.SetupCache()
		if cache.Available() {
			opts = append(opts, progress.WithRecorder(statistics.NewCacheRecorder()))
		}
		return progress.NewServiceFromDB(db, opts...), nil
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
