package db

import (
	"paywin/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Models lists every table managed by AutoMigrate
func Models() []any {
	return []any{
		&domain.Profile{},
		&domain.Transaction{},
		&domain.BetHistoryEntry{},
		&domain.Withdrawal{},
		&domain.RechargeCode{},
		&domain.MineRound{},
		&domain.Payment{},
		&domain.Post{},
		&domain.PostComment{},
		&domain.PostLike{},
	}
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	return db.AutoMigrate(Models()...)
}
