// Package gorm provides GORM-based database operations for teamboard.
package gorm

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/teamboard/teamboard/pkg/models"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// MessageStore provides message-log database operations using GORM.
type MessageStore struct {
	db *gorm.DB
}

// NewMessageStore creates a new message store.
func NewMessageStore(store *Store) *MessageStore {
	return &MessageStore{db: store.DB}
}

// MessageMeta carries the generation metadata logged with an exchange.
// Zero values mean "unknown" and are stored as NULL.
type MessageMeta struct {
	TokensUsed   int64
	ResponseTime int64 // milliseconds
	Model        string
}

// Append logs a question/answer exchange and returns the stored row.
func (s *MessageStore) Append(ctx context.Context, question, answer string, meta MessageMeta) (*models.Message, error) {
	row := &Message{
		Question: question,
		Answer:   answer,
	}
	if meta.TokensUsed > 0 {
		row.TokensUsed = sql.NullInt64{Int64: meta.TokensUsed, Valid: true}
	}
	if meta.ResponseTime > 0 {
		row.ResponseTime = sql.NullInt64{Int64: meta.ResponseTime, Valid: true}
	}
	row.ModelUsed = sqlNullString(meta.Model)

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}

	return toModelMessage(row), nil
}

// Recent returns messages newest-first. A non-positive limit falls back to
// the default and an oversized one is capped.
func (s *MessageStore) Recent(ctx context.Context, limit, offset int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	if offset < 0 {
		offset = 0
	}

	var rows []Message
	err := s.db.WithContext(ctx).
		Order("timestamp_epoch DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*models.Message, len(rows))
	for i := range rows {
		result[i] = toModelMessage(&rows[i])
	}
	return result, nil
}

// GetByID retrieves a single message. Returns (nil, nil) when the id is
// unknown.
func (s *MessageStore) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	var row Message
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toModelMessage(&row), nil
}

// Delete removes a message. Returns false when the id is unknown. Knowledge
// items promoted from the message keep their sourceMessageId untouched.
func (s *MessageStore) Delete(ctx context.Context, id int64) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&Message{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Stats returns message-log counters. "Today" starts at local midnight of
// the server's timezone.
func (s *MessageStore) Stats(ctx context.Context) (*models.MessageStats, error) {
	var stats models.MessageStats

	if err := s.db.WithContext(ctx).Model(&Message{}).Count(&stats.TotalMessages).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	err := s.db.WithContext(ctx).
		Model(&Message{}).
		Where("timestamp_epoch >= ?", midnight.UnixMilli()).
		Count(&stats.TodayMessages).Error
	if err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	err = s.db.WithContext(ctx).
		Model(&Message{}).
		Where("response_time IS NOT NULL").
		Select("AVG(response_time)").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		stats.AverageResponseTime = int64(math.Round(avg.Float64))
	}

	return &stats, nil
}

// toModelMessage converts a GORM Message to pkg/models.
func toModelMessage(m *Message) *models.Message {
	return &models.Message{
		ID:             m.ID,
		Question:       m.Question,
		Answer:         m.Answer,
		Timestamp:      m.Timestamp,
		TokensUsed:     int64Ptr(m.TokensUsed),
		ResponseTime:   int64Ptr(m.ResponseTime),
		ModelUsed:      stringPtr(m.ModelUsed),
		TimestampEpoch: m.TimestampEpoch,
	}
}
