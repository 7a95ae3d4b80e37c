package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"DealScanner/internal/domain"
	"DealScanner/internal/ports"
)

// DeliveryPolicy names when a post is marked sent relative to its delivery
// outcome.
type DeliveryPolicy int

const (
	// MarkSentAlways records a post as sent after a single delivery attempt,
	// success or failure. At most one attempt ever happens per post; a
	// failed delivery is dropped.
	MarkSentAlways DeliveryPolicy = iota
	// MarkSentOnSuccess leaves failed deliveries unsent so a later run can
	// retry them.
	MarkSentOnSuccess
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.PostSource
	Repository ports.PostRepository
	Summarizer ports.Summarizer
	Notifier   ports.Notifier
	Policy     DeliveryPolicy
	Logger     *slog.Logger
}

// Pipeline drives one scan: fetch listing, dedup against the store, then
// summarize, deliver and mark each new post independently. Per-post failures
// are logged and never block the remaining posts; only configuration errors
// abort a run, and those are caught before the pipeline exists.
type Pipeline struct {
	source     ports.PostSource
	repository ports.PostRepository
	summarizer ports.Summarizer
	notifier   ports.Notifier
	policy     DeliveryPolicy
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		summarizer: deps.Summarizer,
		notifier:   deps.Notifier,
		policy:     deps.Policy,
		logger:     deps.Logger,
	}
}

// Run executes one full pass for the keyword. An unreachable or malformed
// listing degrades to "zero new posts" rather than an error; the same holds
// for a failing store.
func (p *Pipeline) Run(ctx context.Context, keyword string, now time.Time) error {
	if p.source == nil || p.repository == nil {
		return nil
	}

	posts, err := p.source.FetchListing(ctx, keyword, now)
	if err != nil {
		p.warn("listing fetch failed, treating as empty", "keyword", keyword, "error", err)
		return nil
	}
	p.info("listing fetched", "keyword", keyword, "posts", len(posts))

	if len(posts) == 0 {
		return nil
	}

	fresh, err := p.repository.InsertBatch(ctx, posts)
	if err != nil {
		// Posts inserted before the fault still get processed this run; the
		// rest will be rediscovered next run.
		p.warn("batch insert degraded", "error", err)
	}
	p.info("new posts discovered", "count", len(fresh))

	for _, post := range fresh {
		p.process(ctx, post)
	}

	return nil
}

// process takes one post through summarize -> deliver -> mark sent. Every
// failure is contained here so the caller's loop continues.
func (p *Pipeline) process(ctx context.Context, post domain.Post) {
	// A concurrent run may have delivered this post between our insert and
	// now; skip rather than deliver twice.
	if sent, err := p.repository.ExistsAndSent(ctx, post.ID); err != nil {
		p.warn("sent pre-check degraded", "post", post.ID, "error", err)
	} else if sent {
		p.info("post already delivered, skipping", "post", post.ID)
		return
	}

	summary := p.summarize(ctx, post)

	deliverErr := p.deliver(ctx, formatMessage(post, summary))
	if deliverErr != nil {
		p.warn("delivery failed", "post", post.ID, "error", deliverErr)
	}

	if p.policy == MarkSentOnSuccess && deliverErr != nil {
		return
	}

	if ok, err := p.repository.MarkSent(ctx, post.ID); err != nil {
		p.warn("mark sent degraded", "post", post.ID, "error", err)
	} else if !ok {
		p.info("post was already marked sent", "post", post.ID)
	}
}

func (p *Pipeline) summarize(ctx context.Context, post domain.Post) string {
	if p.summarizer == nil {
		return post.Title
	}

	// The summarizer substitutes fallback text itself; the error only
	// carries the reason for the log.
	summary, err := p.summarizer.Summarize(ctx, post.Title, post.URL)
	if err != nil {
		p.warn("summarization degraded to fallback", "post", post.ID, "error", err)
	}
	if summary == "" {
		summary = post.Title
	}
	return summary
}

func (p *Pipeline) deliver(ctx context.Context, message string) error {
	if p.notifier == nil {
		return errors.New("no notifier configured")
	}
	return p.notifier.Send(ctx, message)
}

// formatMessage embeds the linked title and the summary using the chat
// endpoint's hyperlink markup.
func formatMessage(post domain.Post, summary string) string {
	return fmt.Sprintf("<a href=%q>%s</a>\n\n[Summary]\n%s", post.URL, post.Title, summary)
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
