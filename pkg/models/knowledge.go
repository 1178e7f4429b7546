// Package models contains domain models for teamboard.
package models

// Length bounds enforced before any write reaches the store.
const (
	MaxQuestionLen = 2000
	MaxAnswerLen   = 10000
	MaxCategoryLen = 100
)

// DefaultListLimit is applied when a list request carries no limit.
const DefaultListLimit = 50

// KnowledgeItem is a curated, taggable, pinnable question/answer record.
//
// IsModerated preserves the external contract's naming: true means the
// content passed moderation, not that it awaits review.
type KnowledgeItem struct {
	ID              int64    `db:"id" json:"id"`
	Question        string   `db:"question" json:"question"`
	Answer          string   `db:"answer" json:"answer"`
	Tags            []string `db:"tags" json:"tags"`
	IsPinned        bool     `db:"is_pinned" json:"isPinned"`
	Category        *string  `db:"category" json:"category"`
	IsModerated     bool     `db:"is_moderated" json:"isModerated"`
	ModerationNotes *string  `db:"moderation_notes" json:"moderationNotes"`
	SourceMessageID *int64   `db:"source_message_id" json:"sourceMessageId"`
	AccessCount     int      `db:"access_count" json:"accessCount"`
	LastAccessedAt  *string  `db:"last_accessed_at" json:"lastAccessedAt"`
	CreatedAt       string   `db:"created_at" json:"createdAt"`
	UpdatedAt       string   `db:"updated_at" json:"updatedAt"`
	CreatedAtEpoch  int64    `db:"created_at_epoch" json:"-"`
}

// KnowledgeFilter narrows a knowledge base listing. Zero values mean
// "no constraint"; IsPinned is tri-state via the pointer.
type KnowledgeFilter struct {
	Search   string
	Tags     []string
	Category string
	IsPinned *bool
	Limit    int
	Offset   int
}

// KnowledgeStats mirrors the stats payload of the original dashboard API.
// PendingModeration counts rejected items (is_moderated = false); the name
// is part of the external contract.
type KnowledgeStats struct {
	TotalItems        int64 `json:"totalItems"`
	PinnedItems       int64 `json:"pinnedItems"`
	PendingModeration int64 `json:"pendingModeration"`
}

// TagsIntersect reports whether the two tag sequences share at least one
// tag. Matching is exact and order-independent; an empty side never
// intersects.
func TagsIntersect(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(a))
	for _, tag := range a {
		seen[tag] = struct{}{}
	}
	for _, tag := range b {
		if _, ok := seen[tag]; ok {
			return true
		}
	}
	return false
}
