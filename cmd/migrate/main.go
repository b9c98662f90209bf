package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/database"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/env"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
)

func main() {
	env.SetupEnvFile()
	if _, err := logger.Setup(env.IsDev()); err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}
	defer logger.Sync()
	l := logger.L()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	driver := database.Driver()

	l.Info("connecting to database",
		zap.String("driver", driver),
		zap.String("user", env.GetEnv("DB_USER", "")),
		zap.String("host", env.GetEnv("DB_HOST", "127.0.0.1")),
		zap.String("name", env.GetEnv("DB_NAME", "")),
	)

	m, err := migrate.New(sourceURL(driver), migrationURL(driver))
	if err != nil {
		l.Fatal("failed to initialise migrations", zap.Error(err))
	}

	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			l.Warn("failed to close migration resources", zap.NamedError("source", sourceErr), zap.NamedError("database", dbErr))
		}
	}()

	switch command {
	case "up":
		// Run all pending migrations
		if err := m.Up(); errors.Is(err, migrate.ErrNoChange) {
			l.Info("no change: database is up to date")
		} else if err != nil {
			l.Fatal("running migrations failed", zap.Error(err))
		} else {
			l.Info("migrations applied")
		}

	case "down":
		// Roll back the last migration
		if err := m.Steps(-1); err != nil {
			l.Fatal("rolling back the last migration failed", zap.Error(err))
		}
		l.Info("last migration rolled back")

	case "goto":
		if len(os.Args) < 3 {
			l.Fatal("missing version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			l.Fatal("invalid version number", zap.Error(err))
		}

		if err := m.Migrate(uint(version)); errors.Is(err, migrate.ErrNoChange) {
			l.Info("no change: database already at version", zap.Uint64("version", version))
		} else if err != nil {
			l.Fatal("migrating to version failed", zap.Uint64("version", version), zap.Error(err))
		} else {
			l.Info("migrated to version", zap.Uint64("version", version))
		}

	case "status":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			l.Info("no migrations applied yet")
		} else if err != nil {
			l.Fatal("reading migration version failed", zap.Error(err))
		} else {
			l.Info("current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

// sourceURL points at migrations/<driver>, relative to the project root.
func sourceURL(driver string) string {
	return "file://migrations/" + driver
}

func migrationURL(driver string) string {
	if driver == database.DriverPostgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(env.GetEnv("DB_USER", "postgres"), env.GetEnv("DB_PASSWORD", "")),
			Host:     fmt.Sprintf("%s:%s", env.GetEnv("DB_HOST", "127.0.0.1"), env.GetEnv("DB_PORT", "5432")),
			Path:     "/" + env.GetEnv("DB_NAME", "postgres"),
			RawQuery: "sslmode=" + url.QueryEscape(env.GetEnv("DB_SSLMODE", "require")),
		}
		return u.String()
	}
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)
}

func printUsage() {
	fmt.Println("Usage: go run cmd/migrate/main.go [command]")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply all pending migrations")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - show the current migration version")
}
