// Package gorm provides GORM-based database operations for teamboard.
package gorm

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: assistant message log
		{
			ID: "001_messages",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&Message{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("messages")
			},
		},

		// Migration 002: knowledge base items
		{
			ID: "002_knowledge_base",
			Migrate: func(tx *gorm.DB) error {
				// AutoMigrate creates the table with all indexes from struct
				// tags. source_message_id carries no FK on purpose.
				return tx.AutoMigrate(&KnowledgeItem{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("knowledge_base")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("run gormigrate migrations: %w", err)
	}

	return nil
}
