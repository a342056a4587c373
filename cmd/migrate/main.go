package main

import (
	"paywin/internal/config" // Custom import path (Config)
	"paywin/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	if cfg.DBDriver == "memory" {
		logrus.Info("In-memory store needs no migration")
		return
	}
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatal(err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.WithField("driver", cfg.DBDriver).Info("Database migration completed")
}
