package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeModerator struct {
	result Result
	err    error
	calls  int
}

func (f *fakeModerator) Moderate(ctx context.Context, text string) (Result, error) {
	f.calls++
	return f.result, f.err
}

func testGate(m Moderator) *Gate {
	return NewGate(m, time.Second, zerolog.Nop())
}

func TestEvaluateApproved(t *testing.T) {
	g := testGate(nil)

	v := g.Evaluate(context.Background(), "How do I reset my password?", "Use the self-service portal.")
	assert.True(t, v.Approved)
	assert.Empty(t, v.Notes)
}

func TestEvaluateKeywordDenylist(t *testing.T) {
	g := testGate(nil)

	v := g.Evaluate(context.Background(), "Is this SPAM?", "No.")
	assert.False(t, v.Approved)
	assert.Equal(t, "Content contains inappropriate keyword: spam", v.Notes)

	// Denylist scans the answer too.
	v = g.Evaluate(context.Background(), "Question", "That would be inappropriate.")
	assert.False(t, v.Approved)
	assert.Equal(t, "Content contains inappropriate keyword: inappropriate", v.Notes)
}

func TestEvaluateExternalFlagged(t *testing.T) {
	m := &fakeModerator{result: Result{
		Flagged: true,
		Categories: map[string]bool{
			"violence":   true,
			"harassment": true,
			"sexual":     false,
		},
	}}
	g := testGate(m)

	v := g.Evaluate(context.Background(), "q", "a")
	assert.False(t, v.Approved)
	assert.Equal(t, "Content flagged for: harassment, violence", v.Notes)
	assert.Equal(t, 1, m.calls)
}

func TestEvaluateExternalClean(t *testing.T) {
	m := &fakeModerator{result: Result{Flagged: false}}
	g := testGate(m)

	v := g.Evaluate(context.Background(), "q", "a")
	assert.True(t, v.Approved)
	assert.Empty(t, v.Notes)
}

func TestEvaluateFailOpen(t *testing.T) {
	m := &fakeModerator{err: errors.New("connection refused")}
	g := testGate(m)

	// A failed external check approves the content and skips the keyword
	// scan, even for denylisted words.
	v := g.Evaluate(context.Background(), "This is spam", "a")
	assert.True(t, v.Approved)
	assert.Equal(t, "Moderation service unavailable", v.Notes)
}

func TestEvaluateExternalCleanThenKeyword(t *testing.T) {
	m := &fakeModerator{result: Result{Flagged: false}}
	g := testGate(m)

	v := g.Evaluate(context.Background(), "some spam here", "a")
	assert.False(t, v.Approved)
	assert.Equal(t, "Content contains inappropriate keyword: spam", v.Notes)
}
