// Package gorm provides GORM-based database operations for teamboard.
package gorm

import (
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/teamboard/teamboard/pkg/models"
)

// GORM Models

// Message represents a logged assistant exchange.
type Message struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Question       string `gorm:"type:text;not null"`
	Answer         string `gorm:"type:text;not null"`
	Timestamp      string `gorm:"not null"`
	TimestampEpoch int64  `gorm:"index:idx_messages_timestamp,sort:desc;not null"`
	TokensUsed     sql.NullInt64
	ResponseTime   sql.NullInt64 // milliseconds
	ModelUsed      sql.NullString
}

func (Message) TableName() string { return "messages" }

// BeforeCreate hook to ensure timestamps are set.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.TimestampEpoch == 0 {
		m.TimestampEpoch = time.Now().UnixMilli()
	}
	if m.Timestamp == "" {
		m.Timestamp = time.Now().Format(time.RFC3339)
	}
	return nil
}

// KnowledgeItem represents a curated knowledge base entry.
//
// SourceMessageID is a weak reference into messages: there is deliberately
// no foreign key constraint, so deleting the source message leaves a
// dangling but harmless reference.
type KnowledgeItem struct {
	ID                  int64                  `gorm:"primaryKey;autoIncrement"`
	Question            string                 `gorm:"type:text;not null"`
	Answer              string                 `gorm:"type:text;not null"`
	Tags                models.JSONStringArray `gorm:"type:text"` // JSON array
	IsPinned            bool                   `gorm:"default:false;index:idx_knowledge_pinned"`
	Category            sql.NullString         `gorm:"type:text;index:idx_knowledge_category"`
	IsModerated         bool                   `gorm:"default:false;index:idx_knowledge_moderated"`
	ModerationNotes     sql.NullString         `gorm:"type:text"`
	SourceMessageID     sql.NullInt64
	AccessCount         int `gorm:"default:0"`
	LastAccessedAt      sql.NullString
	LastAccessedAtEpoch sql.NullInt64
	CreatedAt           string `gorm:"not null"`
	CreatedAtEpoch      int64  `gorm:"index:idx_knowledge_created,sort:desc;not null"`
	UpdatedAt           string `gorm:"not null"`
	UpdatedAtEpoch      int64  `gorm:"not null"`
}

func (KnowledgeItem) TableName() string { return "knowledge_base" }

// BeforeCreate hook to ensure timestamps are set.
func (k *KnowledgeItem) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if k.CreatedAtEpoch == 0 {
		k.CreatedAtEpoch = now.UnixMilli()
	}
	if k.CreatedAt == "" {
		k.CreatedAt = now.Format(time.RFC3339)
	}
	if k.UpdatedAtEpoch == 0 {
		k.UpdatedAtEpoch = k.CreatedAtEpoch
	}
	if k.UpdatedAt == "" {
		k.UpdatedAt = k.CreatedAt
	}
	return nil
}
