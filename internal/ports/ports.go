package ports

import (
	"context"
	"time"

	"DealScanner/internal/domain"
)

// PostSource pulls keyword-matching posts from the configured boards.
type PostSource interface {
	FetchListing(ctx context.Context, keyword string, now time.Time) ([]domain.Post, error)
}

// PostRepository is the sole reader/writer of persisted post state. Every
// write is atomic at single-post granularity so concurrent runs cannot
// double-insert or revert a sent flag.
type PostRepository interface {
	// InsertIfAbsent persists the post unless its ID already exists and
	// reports whether a new row was created.
	InsertIfAbsent(ctx context.Context, post domain.Post) (bool, error)
	// InsertBatch applies InsertIfAbsent in input order and returns exactly
	// the newly inserted subset, relative order preserved.
	InsertBatch(ctx context.Context, posts []domain.Post) ([]domain.Post, error)
	// ExistsAndSent reports whether the post exists and was already sent.
	ExistsAndSent(ctx context.Context, postID string) (bool, error)
	// MarkSent flips SummarySent to true; false when no row changed (missing
	// ID or already sent).
	MarkSent(ctx context.Context, postID string) (bool, error)
	// ListUnsent returns unsent posts oldest insertion first.
	ListUnsent(ctx context.Context) ([]domain.Post, error)
	// ListAll returns every post newest insertion first (diagnostics).
	ListAll(ctx context.Context) ([]domain.Post, error)
	Close() error
}

// ContentFetcher extracts the plain-text body of a single post.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// Summarizer turns a post into a short natural-language summary. On failure
// implementations return fallback text embedding the title together with the
// underlying error, so callers always have usable text.
type Summarizer interface {
	Summarize(ctx context.Context, title, url string) (string, error)
}

// Notifier delivers a formatted message to a chat endpoint.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
