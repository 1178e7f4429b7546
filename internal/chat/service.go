// Package chat implements the assistant message log: asking the assistant
// a question, logging the exchange, and reading the history back.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/teamboard/teamboard/internal/assistant"
	gormdb "github.com/teamboard/teamboard/internal/db/gorm"
	"github.com/teamboard/teamboard/pkg/models"
)

// ErrNotFound is returned when a message id is unknown.
var ErrNotFound = errors.New("message not found")

// ErrAssistantUnavailable covers every assistant failure, including a
// missing API key. Callers map it to a single service-unavailable response.
var ErrAssistantUnavailable = errors.New("AI service temporarily unavailable")

// maxQuestionLen bounds an incoming question, matching the knowledge base
// question bound.
const maxQuestionLen = 2000

// historyWindow is the number of past exchanges replayed as context.
const historyWindow = 5

// ValidationError reports invalid caller input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Generator produces an assistant reply for a question with conversation
// history. Satisfied by assistant.Client.
type Generator interface {
	SendMessage(ctx context.Context, message string, history []*models.Message) (*assistant.Reply, error)
}

// Service coordinates the message log. A nil generator means the assistant
// is not configured; reads still work but Ask fails.
type Service struct {
	store     *gormdb.MessageStore
	generator Generator
	logger    zerolog.Logger
}

// NewService creates the chat service.
func NewService(store *gormdb.MessageStore, generator Generator, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

// Ask sends a question to the assistant with recent history as context and
// logs the completed exchange. History replay failures are ignored so a
// read error cannot block the conversation.
func (s *Service) Ask(ctx context.Context, question string) (*models.Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &ValidationError{Reason: "Message is required"}
	}
	if utf8.RuneCountInString(question) > maxQuestionLen {
		return nil, &ValidationError{Reason: fmt.Sprintf("Message must be %d characters or less", maxQuestionLen)}
	}

	if s.generator == nil {
		return nil, fmt.Errorf("%w: OpenAI API key not configured", ErrAssistantUnavailable)
	}

	history, err := s.store.Recent(ctx, historyWindow, 0)
	if err != nil {
		s.logger.Warn().Err(err).Msg("loading history failed, asking without context")
		history = nil
	}
	reverse(history)

	reply, err := s.generator.SendMessage(ctx, question, history)
	if err != nil {
		s.logger.Error().Err(err).Msg("assistant request failed")
		return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}

	return s.store.Append(ctx, question, reply.Answer, gormdb.MessageMeta{
		TokensUsed:   reply.TokensUsed,
		ResponseTime: reply.ResponseTime,
		Model:        reply.Model,
	})
}

// Recent returns messages newest-first.
func (s *Service) Recent(ctx context.Context, limit, offset int) ([]*models.Message, error) {
	return s.store.Recent(ctx, limit, offset)
}

// Get retrieves a single message.
func (s *Service) Get(ctx context.Context, id int64) (*models.Message, error) {
	msg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrNotFound
	}
	return msg, nil
}

// Delete removes a message from the log.
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// Stats returns message-log counters.
func (s *Service) Stats(ctx context.Context) (*models.MessageStats, error) {
	return s.store.Stats(ctx)
}

// reverse flips newest-first store order into the chronological order the
// assistant expects.
func reverse(msgs []*models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
