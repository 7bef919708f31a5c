// Package summarize turns item text into a short summary through a
// language model provider.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thedittmer/intel-hub/internal/failure"
	"github.com/thedittmer/intel-hub/internal/models"
	"github.com/thedittmer/intel-hub/internal/sources"
)

// FailedSummary is returned in place of a summary whenever generation fails.
const FailedSummary = "An error occurred while generating the summary."

// DefaultBudget is how many characters of source text reach the prompt.
const DefaultBudget = 8000

const summaryPrompt = `You are an editor specializing in AI. Summarize the following %s for a technical reader.
Lead with the main result, then list the key points.
Text: %s`

// Provider generates text for a prompt. Streaming providers call onChunk
// once per received fragment; single-shot providers call it once with the
// whole response.
type Provider interface {
	Generate(ctx context.Context, prompt string, onChunk func(fragment string)) (string, error)
}

// Summarizer builds prompts and guards provider calls.
type Summarizer struct {
	provider Provider
	budget   int
}

// New creates a Summarizer. A non-positive budget uses DefaultBudget.
func New(provider Provider, budget int) *Summarizer {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Summarizer{provider: provider, budget: budget}
}

// Prompt returns the prompt sent for text of the given source type.
func (s *Summarizer) Prompt(text, sourceType string) string {
	return fmt.Sprintf(summaryPrompt, sourceType, sources.Truncate(text, s.budget))
}

// Summarize summarizes text. onUpdate, when non-nil, receives the text
// accumulated so far after every fragment. On failure the returned string
// is FailedSummary and the error says why.
func (s *Summarizer) Summarize(ctx context.Context, text, sourceType string, onUpdate func(accumulated string)) (string, error) {
	if s.provider == nil {
		return FailedSummary, failure.New(failure.Config, "summarize", errors.New("no summary provider configured"))
	}

	var acc strings.Builder
	out, err := s.provider.Generate(ctx, s.Prompt(text, sourceType), func(fragment string) {
		acc.WriteString(fragment)
		if onUpdate != nil {
			onUpdate(acc.String())
		}
	})
	if err != nil {
		return FailedSummary, failure.Wrap("summarize", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return FailedSummary, failure.New(failure.Malformed, "summarize", errors.New("empty response"))
	}
	return out, nil
}

// Item summarizes an item's content, labelled with its source.
func (s *Summarizer) Item(ctx context.Context, item models.Item, onUpdate func(accumulated string)) (string, error) {
	return s.Summarize(ctx, sources.PlainText(item.Content), item.Source, onUpdate)
}
