// manage.go: database migration and shared gorm plumbing
package datastore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tphakala/playlog-go/internal/logging"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// datastoreLogger is the package logger, shared by both store backends.
var datastoreLogger = func() *slog.Logger {
	if l := logging.ForService("datastore"); l != nil {
		return l
	}
	return slog.Default().With("service", "datastore")
}()

// createGormLogger builds the gorm logger used by both backends. Debug
// enables statement logging, otherwise only warnings and errors surface.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.Default.LogMode(level)
}

// performAutoMigration migrates every table the engine owns.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	migrationStart := time.Now()

	if err := db.AutoMigrate(&Station{}, &Sound{}, &Track{}, &Diffusion{}, &Log{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		datastoreLogger.Debug("database migration completed",
			"db_type", dbType,
			"connection", connectionInfo,
			"duration", time.Since(migrationStart))
	}
	return nil
}
