// Package knowledge implements the curated knowledge base: validation,
// moderation gating, and persistence of question/answer items.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	gormdb "github.com/teamboard/teamboard/internal/db/gorm"
	"github.com/teamboard/teamboard/internal/moderation"
	"github.com/teamboard/teamboard/pkg/models"
)

// ErrNotFound is returned when a knowledge item id is unknown.
var ErrNotFound = errors.New("knowledge base item not found")

// ErrMessageNotFound is returned by SaveFromMessage when the source message
// id is unknown.
var ErrMessageNotFound = errors.New("message not found")

// ValidationError reports invalid caller input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Service coordinates the knowledge base: every mutation passes through the
// moderation gate before it reaches the store.
type Service struct {
	store    *gormdb.KnowledgeStore
	messages *gormdb.MessageStore
	gate     *moderation.Gate
	logger   zerolog.Logger
}

// NewService creates the knowledge service.
func NewService(store *gormdb.KnowledgeStore, messages *gormdb.MessageStore, gate *moderation.Gate, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		messages: messages,
		gate:     gate,
		logger:   logger,
	}
}

// CreateInput is the caller-facing input for CreateItem.
type CreateInput struct {
	Question        string
	Answer          string
	Tags            []string
	Category        *string
	IsPinned        bool
	SourceMessageID *int64
}

// CreateItem validates, moderates, and stores a new knowledge item. Items
// that fail moderation are still stored, marked unapproved with the reason
// in moderationNotes.
func (s *Service) CreateItem(ctx context.Context, in CreateInput) (*models.KnowledgeItem, error) {
	question := strings.TrimSpace(in.Question)
	answer := strings.TrimSpace(in.Answer)

	if question == "" {
		return nil, &ValidationError{Reason: "Question is required"}
	}
	if answer == "" {
		return nil, &ValidationError{Reason: "Answer is required"}
	}
	if utf8.RuneCountInString(question) > models.MaxQuestionLen {
		return nil, &ValidationError{Reason: fmt.Sprintf("Question must be %d characters or less", models.MaxQuestionLen)}
	}
	if utf8.RuneCountInString(answer) > models.MaxAnswerLen {
		return nil, &ValidationError{Reason: fmt.Sprintf("Answer must be %d characters or less", models.MaxAnswerLen)}
	}
	category, err := normalizeCategory(in.Category)
	if err != nil {
		return nil, err
	}

	verdict := s.gate.Evaluate(ctx, question, answer)
	if !verdict.Approved {
		s.logger.Info().Str("notes", verdict.Notes).Msg("knowledge item failed moderation")
	}

	return s.store.Create(ctx, &gormdb.NewKnowledgeItem{
		Question:        question,
		Answer:          answer,
		Tags:            in.Tags,
		Category:        category,
		IsPinned:        in.IsPinned,
		SourceMessageID: in.SourceMessageID,
		Approved:        verdict.Approved,
		ModerationNotes: verdict.Notes,
	})
}

// SaveFromMessage promotes a logged assistant exchange into the knowledge
// base, keeping a weak reference to the source message.
func (s *Service) SaveFromMessage(ctx context.Context, messageID int64, tags []string, category *string, isPinned bool) (*models.KnowledgeItem, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	return s.CreateItem(ctx, CreateInput{
		Question:        msg.Question,
		Answer:          msg.Answer,
		Tags:            tags,
		Category:        category,
		IsPinned:        isPinned,
		SourceMessageID: &msg.ID,
	})
}

// UpdateInput is a partial patch for UpdateItem. Nil fields are left
// unchanged; a nil Tags slice means unchanged while an empty one clears
// the tags.
type UpdateInput struct {
	Question *string
	Answer   *string
	Tags     []string
	Category *string
	IsPinned *bool
}

// UpdateItem validates and applies a partial update. When the question or
// answer changes, the merged content is re-moderated and the item's
// approval state is rewritten.
func (s *Service) UpdateItem(ctx context.Context, id int64, in UpdateInput) (*models.KnowledgeItem, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}

	patch := gormdb.KnowledgeUpdate{
		Tags:     in.Tags,
		IsPinned: in.IsPinned,
	}

	question := current.Question
	answer := current.Answer

	if in.Question != nil {
		trimmed := strings.TrimSpace(*in.Question)
		if trimmed == "" {
			return nil, &ValidationError{Reason: "Question is required"}
		}
		if utf8.RuneCountInString(trimmed) > models.MaxQuestionLen {
			return nil, &ValidationError{Reason: fmt.Sprintf("Question must be %d characters or less", models.MaxQuestionLen)}
		}
		patch.Question = &trimmed
		question = trimmed
	}
	if in.Answer != nil {
		trimmed := strings.TrimSpace(*in.Answer)
		if trimmed == "" {
			return nil, &ValidationError{Reason: "Answer is required"}
		}
		if utf8.RuneCountInString(trimmed) > models.MaxAnswerLen {
			return nil, &ValidationError{Reason: fmt.Sprintf("Answer must be %d characters or less", models.MaxAnswerLen)}
		}
		patch.Answer = &trimmed
		answer = trimmed
	}
	if in.Category != nil {
		category, err := normalizeCategory(in.Category)
		if err != nil {
			return nil, err
		}
		if category == nil {
			empty := ""
			patch.Category = &empty
		} else {
			patch.Category = category
		}
	}

	// Content changes reset the moderation state.
	if in.Question != nil || in.Answer != nil {
		verdict := s.gate.Evaluate(ctx, question, answer)
		patch.Approved = &verdict.Approved
		patch.ModerationNotes = &verdict.Notes
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// GetItem retrieves a single item and records the access.
func (s *Service) GetItem(ctx context.Context, id int64) (*models.KnowledgeItem, error) {
	item, err := s.store.RecordAccess(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// DeleteItem removes an item.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ListItems returns items matching the filter.
func (s *Service) ListItems(ctx context.Context, f models.KnowledgeFilter) ([]*models.KnowledgeItem, error) {
	return s.store.List(ctx, f)
}

// ListTags returns all distinct tags in use.
func (s *Service) ListTags(ctx context.Context) ([]string, error) {
	return s.store.ListTags(ctx)
}

// ListCategories returns all distinct categories in use.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	return s.store.ListCategories(ctx)
}

// Stats returns knowledge base counters.
func (s *Service) Stats(ctx context.Context) (*models.KnowledgeStats, error) {
	return s.store.Stats(ctx)
}

// normalizeCategory trims and bounds a category. A nil or blank category
// normalizes to nil.
func normalizeCategory(category *string) (*string, error) {
	if category == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*category)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > models.MaxCategoryLen {
		return nil, &ValidationError{Reason: fmt.Sprintf("Category must be %d characters or less", models.MaxCategoryLen)}
	}
	return &trimmed, nil
}
