package llm

import (
	"context"
	"fmt"
	"log/slog"

	"DealScanner/internal/ports"
)

// Generator produces text from a user prompt.
type Generator interface {
	Generate(ctx context.Context, userPrompt string) (string, error)
}

// Service turns (title, body) into a short summary, fetching the body from
// the post's detail page. Any failure degrades to fixed fallback text; the
// underlying error is returned alongside it so callers can log the reason,
// but the text is always usable.
type Service struct {
	generator      Generator
	content        ports.ContentFetcher
	promptTemplate string
	logger         *slog.Logger
}

var _ ports.Summarizer = (*Service)(nil)

// NewService wires the generation client and the detail-page content fetcher.
func NewService(generator Generator, content ports.ContentFetcher, promptTemplate string, logger *slog.Logger) *Service {
	return &Service{
		generator:      generator,
		content:        content,
		promptTemplate: promptTemplate,
		logger:         logger,
	}
}

// Summarize fetches the post body and asks the generation service for a
// summary. A post whose body cannot be obtained is a hard failure for that
// post; the caller still receives fallback text.
func (s *Service) Summarize(ctx context.Context, title, url string) (string, error) {
	if s.content == nil || s.generator == nil {
		return FallbackSummary(title), fmt.Errorf("summarizer misconfigured")
	}

	body, err := s.content.FetchContent(ctx, url)
	if err != nil {
		s.warn("post body unavailable", "url", url, "error", err)
		return FallbackSummary(title), fmt.Errorf("fetch content: %w", err)
	}

	prompt := fmt.Sprintf("%s\n\nTitle: %s\n\nBody:\n%s", s.promptTemplate, title, body)

	summary, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.warn("summary generation failed", "url", url, "error", err)
		return FallbackSummary(title), fmt.Errorf("generate summary: %w", err)
	}
	if summary == "" {
		return FallbackSummary(title), fmt.Errorf("generation service returned empty text")
	}

	return summary, nil
}

// FallbackSummary is the fixed-shape text substituted when summarization
// cannot complete.
func FallbackSummary(title string) string {
	return fmt.Sprintf("[summary unavailable] %s - the summary could not be generated.", title)
}

func (s *Service) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
