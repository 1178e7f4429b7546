// Package moderation decides whether knowledge base content is approved
// for display. The decision combines an optional external moderation
// service with a local keyword denylist.
package moderation

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Result is an external moderation verdict. Categories holds the per-policy
// flags reported by the service.
type Result struct {
	Flagged    bool
	Categories map[string]bool
}

// Moderator checks content against an external moderation service.
type Moderator interface {
	Moderate(ctx context.Context, text string) (Result, error)
}

// Verdict is the gate's final decision for a piece of content. Notes is
// empty when the content is approved with nothing to report.
type Verdict struct {
	Approved bool
	Notes    string
}

// unavailableNote marks content that was approved because the external
// service could not be reached. Such items pass but stay auditable.
const unavailableNote = "Moderation service unavailable"

// denylist is scanned case-insensitively against the combined content.
var denylist = []string{"spam", "inappropriate"}

// Gate evaluates knowledge content before it is stored. A nil moderator
// disables the external check and leaves only the keyword scan.
type Gate struct {
	moderator Moderator
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewGate creates a moderation gate. timeout bounds each external call;
// a non-positive value falls back to 5 seconds.
func NewGate(moderator Moderator, timeout time.Duration, logger zerolog.Logger) *Gate {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Gate{
		moderator: moderator,
		timeout:   timeout,
		logger:    logger,
	}
}

// Evaluate runs the question and answer through the external service and
// the keyword denylist. The gate fails open: when the external service
// errors, the content is approved with an audit note and the keyword scan
// is skipped.
func (g *Gate) Evaluate(ctx context.Context, question, answer string) Verdict {
	content := question + "\n\n" + answer

	if g.moderator != nil {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		result, err := g.moderator.Moderate(callCtx, content)
		cancel()
		if err != nil {
			g.logger.Warn().Err(err).Msg("external moderation failed, approving content")
			return Verdict{Approved: true, Notes: unavailableNote}
		}
		if result.Flagged {
			return Verdict{Approved: false, Notes: "Content flagged for: " + joinCategories(result.Categories)}
		}
	}

	lowered := strings.ToLower(content)
	for _, word := range denylist {
		if strings.Contains(lowered, word) {
			return Verdict{Approved: false, Notes: "Content contains inappropriate keyword: " + word}
		}
	}

	return Verdict{Approved: true}
}

// joinCategories renders the flagged category names in a stable order.
func joinCategories(categories map[string]bool) string {
	names := make([]string, 0, len(categories))
	for name, flagged := range categories {
		if flagged {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
