package database

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ManuelReschke/PhaseGate/app/models"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/env"
	"github.com/ManuelReschke/PhaseGate/internal/pkg/logger"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var (
	mu sync.RWMutex
	DB *gorm.DB
)

// GetDB returns the shared connection, or nil before SetupDatabase ran.
func GetDB() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return DB
}

// SetDB installs an already opened connection, mainly for tests and tools.
func SetDB(db *gorm.DB) {
	mu.Lock()
	DB = db
	mu.Unlock()
}

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&models.UserProgress{},
		&models.UserSubscription{},
		&models.UserRole{},
	}
}

// Driver returns the configured driver name (mysql or postgres).
func Driver() string {
	switch strings.ToLower(env.GetEnv("DB_DRIVER", DriverMySQL)) {
	case DriverPostgres, "postgresql", "supabase":
		return DriverPostgres
	default:
		return DriverMySQL
	}
}

// DSN builds the connection string for the configured driver.
func DSN() string {
	if Driver() == DriverPostgres {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			env.GetEnv("DB_HOST", "127.0.0.1"),
			env.GetEnv("DB_USER", "postgres"),
			env.GetEnv("DB_PASSWORD", ""),
			env.GetEnv("DB_NAME", "postgres"),
			env.GetEnv("DB_PORT", "5432"),
			env.GetEnv("DB_SSLMODE", "require"),
		)
	}
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)
}

func dialector() gorm.Dialector {
	if Driver() == DriverPostgres {
		return postgres.New(postgres.Config{
			DSN:                  DSN(),
			PreferSimpleProtocol: true, // Supabase pooler runs in transaction mode
		})
	}
	return mysql.New(mysql.Config{
		DSN:                       DSN(), // data source name
		DefaultStringSize:         256,   // default size for string fields
		DisableDatetimePrecision:  true,  // disable datetime precision, which not supported before MySQL 5.6
		DontSupportRenameIndex:    true,  // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
		DontSupportRenameColumn:   true,  // `change` when rename column, rename column not supported before MySQL 8, MariaDB
		SkipInitializeWithVersion: false, // auto configure based on currently MySQL version
	})
}

// SetupDatabase connects with retries, migrates the tables and stores the
// connection for GetDB. It panics when the database stays unreachable.
func SetupDatabase() *gorm.DB {
	log := logger.L()
	gormLevel := gormlogger.Warn
	if env.IsDev() {
		gormLevel = gormlogger.Info
	}

	var err error
	for i := 0; i < maxRetries; i++ {
		var db *gorm.DB
		db, err = gorm.Open(dialector(), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormLevel),
		})
		if err == nil {
			if err = db.AutoMigrate(Models()...); err != nil {
				log.Error("auto migration failed", zap.Error(err))
			}
			SetDB(db)
			log.Info("connected to database", zap.String("driver", Driver()))
			return db
		}

		log.Warn("failed to connect to database",
			zap.Int("try", i+1),
			zap.Int("max_tries", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			log.Info("retrying database connection", zap.Duration("delay", retryDelay))
			time.Sleep(retryDelay)
		}
	}

	panic(err)
}
