// Package gorm provides GORM-based database operations for teamboard.
package gorm

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/teamboard/teamboard/pkg/models"
)

// KnowledgeStore provides knowledge-base database operations using GORM.
type KnowledgeStore struct {
	db *gorm.DB
}

// NewKnowledgeStore creates a new knowledge store.
func NewKnowledgeStore(store *Store) *KnowledgeStore {
	return &KnowledgeStore{db: store.DB}
}

// NewKnowledgeItem is the input for Create. The moderation verdict is part
// of the input so it is written atomically with the row.
type NewKnowledgeItem struct {
	Question        string
	Answer          string
	Tags            []string
	Category        *string
	IsPinned        bool
	SourceMessageID *int64
	Approved        bool
	ModerationNotes string // empty when there is nothing to report
}

// KnowledgeUpdate is a partial patch for Update. Nil fields are left
// untouched; a nil Tags slice means "unchanged" while an empty one clears
// the tags.
type KnowledgeUpdate struct {
	Question        *string
	Answer          *string
	Tags            []string
	Category        *string // empty string clears the category
	IsPinned        *bool
	Approved        *bool
	ModerationNotes *string // empty string clears the notes
}

// Create inserts a new knowledge item and returns the stored row.
func (s *KnowledgeStore) Create(ctx context.Context, in *NewKnowledgeItem) (*models.KnowledgeItem, error) {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	row := &KnowledgeItem{
		Question:        in.Question,
		Answer:          in.Answer,
		Tags:            models.JSONStringArray(tags),
		IsPinned:        in.IsPinned,
		Category:        sqlNullStringPtr(in.Category),
		IsModerated:     in.Approved,
		ModerationNotes: sqlNullString(in.ModerationNotes),
		SourceMessageID: sqlNullInt64Ptr(in.SourceMessageID),
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}

	return toModelKnowledgeItem(row), nil
}

// GetByID retrieves a knowledge item without touching the access counter.
// Returns (nil, nil) when the id is unknown.
func (s *KnowledgeStore) GetByID(ctx context.Context, id int64) (*models.KnowledgeItem, error) {
	var row KnowledgeItem
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toModelKnowledgeItem(&row), nil
}

// RecordAccess bumps access_count and last_accessed_at for a single-item
// read and returns the updated item. The counter is a read-modify-write:
// concurrent reads of the same item may lose increments, which is accepted
// (approximate counter). Returns (nil, nil) when the id is unknown.
func (s *KnowledgeStore) RecordAccess(ctx context.Context, id int64) (*models.KnowledgeItem, error) {
	var row KnowledgeItem
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	nowStr := now.Format(time.RFC3339)
	nowEpoch := now.UnixMilli()
	updates := map[string]interface{}{
		"access_count":           row.AccessCount + 1,
		"last_accessed_at":       nowStr,
		"last_accessed_at_epoch": nowEpoch,
		"updated_at":             nowStr,
		"updated_at_epoch":       nowEpoch,
	}
	if err := s.db.WithContext(ctx).Model(&KnowledgeItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	row.AccessCount++
	row.LastAccessedAt = sqlNullString(nowStr)
	row.LastAccessedAtEpoch = sqlNullInt64Ptr(&nowEpoch)
	row.UpdatedAt = nowStr
	row.UpdatedAtEpoch = nowEpoch
	return toModelKnowledgeItem(&row), nil
}

// Update applies a partial patch and returns the updated item. The caller
// is expected to have verified that the id exists; an unknown id still
// returns (nil, nil).
func (s *KnowledgeStore) Update(ctx context.Context, id int64, patch KnowledgeUpdate) (*models.KnowledgeItem, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"updated_at":       now.Format(time.RFC3339),
		"updated_at_epoch": now.UnixMilli(),
	}
	if patch.Question != nil {
		updates["question"] = *patch.Question
	}
	if patch.Answer != nil {
		updates["answer"] = *patch.Answer
	}
	if patch.Tags != nil {
		updates["tags"] = models.JSONStringArray(patch.Tags)
	}
	if patch.Category != nil {
		updates["category"] = sqlNullString(*patch.Category)
	}
	if patch.IsPinned != nil {
		updates["is_pinned"] = *patch.IsPinned
	}
	if patch.Approved != nil {
		updates["is_moderated"] = *patch.Approved
	}
	if patch.ModerationNotes != nil {
		updates["moderation_notes"] = sqlNullString(*patch.ModerationNotes)
	}

	if err := s.db.WithContext(ctx).Model(&KnowledgeItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes a knowledge item. Returns false when the id is unknown.
func (s *KnowledgeStore) Delete(ctx context.Context, id int64) (bool, error) {
	result := s.db.WithContext(ctx).Delete(&KnowledgeItem{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List returns knowledge items matching the filter, pinned items first,
// then newest first, ties in insertion order. An empty result is an empty
// slice, never an error.
func (s *KnowledgeStore) List(ctx context.Context, f models.KnowledgeFilter) ([]*models.KnowledgeItem, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = models.DefaultListLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Model(&KnowledgeItem{}).Scopes(listOrdering())
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(question) LIKE ? OR LOWER(answer) LIKE ?", pattern, pattern)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.IsPinned != nil {
		query = query.Where("is_pinned = ?", *f.IsPinned)
	}

	if len(f.Tags) == 0 {
		var rows []KnowledgeItem
		if err := query.Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
			return nil, err
		}
		return toModelKnowledgeItems(rows), nil
	}

	// Tag intersection is defined in Go rather than with engine-specific
	// array operators, so pagination moves behind the filter.
	var rows []KnowledgeItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	matched := make([]*models.KnowledgeItem, 0, limit)
	skipped := 0
	for i := range rows {
		if !models.TagsIntersect(rows[i].Tags, f.Tags) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		matched = append(matched, toModelKnowledgeItem(&rows[i]))
		if len(matched) == limit {
			break
		}
	}
	return matched, nil
}

// ListTags returns all distinct tags across items that have at least one
// tag, sorted lexicographically.
func (s *KnowledgeStore) ListTags(ctx context.Context) ([]string, error) {
	var arrays []models.JSONStringArray
	err := s.db.WithContext(ctx).
		Model(&KnowledgeItem{}).
		Where("tags IS NOT NULL AND tags != '[]'").
		Pluck("tags", &arrays).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	tags := []string{}
	for _, arr := range arrays {
		for _, tag := range arr {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// ListCategories returns all distinct non-empty categories, sorted
// lexicographically.
func (s *KnowledgeStore) ListCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.WithContext(ctx).
		Model(&KnowledgeItem{}).
		Distinct().
		Where("category IS NOT NULL AND category != ''").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Stats returns knowledge base counters. pendingModeration counts rejected
// items (is_moderated = false), preserving the original contract's naming.
func (s *KnowledgeStore) Stats(ctx context.Context) (*models.KnowledgeStats, error) {
	var stats models.KnowledgeStats

	if err := s.db.WithContext(ctx).Model(&KnowledgeItem{}).Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&KnowledgeItem{}).Where("is_pinned = ?", true).Count(&stats.PinnedItems).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&KnowledgeItem{}).Where("is_moderated = ?", false).Count(&stats.PendingModeration).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// ====================
// GORM Scopes (Reusable Query Filters)
// ====================

// listOrdering orders pinned items first, then newest first; creation-time
// ties keep insertion order.
func listOrdering() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("is_pinned DESC, created_at_epoch DESC, id ASC")
	}
}

// ====================
// Helper Functions
// ====================

// toModelKnowledgeItem converts a GORM KnowledgeItem to pkg/models.
func toModelKnowledgeItem(k *KnowledgeItem) *models.KnowledgeItem {
	tags := []string(k.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &models.KnowledgeItem{
		ID:              k.ID,
		Question:        k.Question,
		Answer:          k.Answer,
		Tags:            tags,
		IsPinned:        k.IsPinned,
		Category:        stringPtr(k.Category),
		IsModerated:     k.IsModerated,
		ModerationNotes: stringPtr(k.ModerationNotes),
		SourceMessageID: int64Ptr(k.SourceMessageID),
		AccessCount:     k.AccessCount,
		LastAccessedAt:  stringPtr(k.LastAccessedAt),
		CreatedAt:       k.CreatedAt,
		UpdatedAt:       k.UpdatedAt,
		CreatedAtEpoch:  k.CreatedAtEpoch,
	}
}

// toModelKnowledgeItems converts a slice of GORM rows to pkg/models.
func toModelKnowledgeItems(rows []KnowledgeItem) []*models.KnowledgeItem {
	result := make([]*models.KnowledgeItem, len(rows))
	for i := range rows {
		result[i] = toModelKnowledgeItem(&rows[i])
	}
	return result
}
