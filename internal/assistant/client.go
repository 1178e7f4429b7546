// Package assistant wraps the OpenAI API for chat completion and content
// moderation.
package assistant

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/teamboard/teamboard/internal/moderation"
	"github.com/teamboard/teamboard/pkg/models"
)

const systemPrompt = `You are a helpful AI assistant for an internal team dashboard.
Your role is to assist team members with questions about work, projects, tools, processes, and general knowledge.
Be concise but thorough in your responses. If you're unsure about something specific to the team or company,
let them know you might need more context or suggest they check with relevant team members.
Keep responses professional but friendly.`

// contextWindow is the number of past exchanges replayed into each request.
const contextWindow = 5

// Config holds OpenAI client configuration.
type Config struct {
	APIKey      string
	Model       string  // default: gpt-3.5-turbo
	MaxTokens   int     // default: 500
	Temperature float32 // default: 0.7
}

// Reply is a completed assistant exchange with its generation metadata.
type Reply struct {
	Answer       string
	TokensUsed   int64
	ResponseTime int64 // milliseconds
	Model        string
}

// Client talks to the OpenAI chat completion and moderation endpoints.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      zerolog.Logger
}

// NewClient creates an OpenAI-backed assistant client. Returns
// ErrNotConfigured when no API key is set so the caller can run with the
// assistant disabled.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}

	return &Client{
		api:         openai.NewClient(cfg.APIKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}, nil
}

// SendMessage sends a question to the assistant with recent history as
// conversation context. history is expected in chronological order.
func (c *Client) SendMessage(ctx context.Context, message string, history []*models.Message) (*Reply, error) {
	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    buildMessages(message, history),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("chat completion failed")
		return nil, classifyError(err)
	}

	return &Reply{
		Answer:       resp.Choices[0].Message.Content,
		TokensUsed:   int64(resp.Usage.TotalTokens),
		ResponseTime: time.Since(start).Milliseconds(),
		Model:        c.model,
	}, nil
}

// Moderate checks text against the OpenAI moderation endpoint.
func (c *Client) Moderate(ctx context.Context, text string) (moderation.Result, error) {
	resp, err := c.api.Moderations(ctx, openai.ModerationRequest{Input: text})
	if err != nil {
		return moderation.Result{}, err
	}
	if len(resp.Results) == 0 {
		return moderation.Result{}, nil
	}

	result := resp.Results[0]
	return moderation.Result{
		Flagged:    result.Flagged,
		Categories: categoryMap(result.Categories),
	}, nil
}

// buildMessages assembles the completion request: system prompt, up to
// contextWindow past exchanges as user/assistant pairs, then the current
// question.
func buildMessages(message string, history []*models.Message) []openai.ChatCompletionMessage {
	if len(history) > contextWindow {
		history = history[len(history)-contextWindow:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2*len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, msg := range history {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: msg.Question},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: msg.Answer},
		)
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
	return messages
}

// categoryMap flattens the moderation category struct into the policy-name
// map used by the moderation gate.
func categoryMap(c openai.ResultCategories) map[string]bool {
	return map[string]bool{
		"harassment":             c.Harassment,
		"harassment/threatening": c.HarassmentThreatening,
		"hate":                   c.Hate,
		"hate/threatening":       c.HateThreatening,
		"self-harm":              c.SelfHarm,
		"self-harm/intent":       c.SelfHarmIntent,
		"self-harm/instructions": c.SelfHarmInstructions,
		"sexual":                 c.Sexual,
		"sexual/minors":          c.SexualMinors,
		"violence":               c.Violence,
		"violence/graphic":       c.ViolenceGraphic,
	}
}
