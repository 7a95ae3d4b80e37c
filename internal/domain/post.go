package domain

import "time"

// Post is the core entity describing a single forum post discovered on a
// board listing page.
type Post struct {
	// ID is the numeric identifier the forum assigns to the post; it is the
	// primary key of the store.
	ID    string
	Title string
	// URL is the absolute link to the post's detail page.
	URL string
	// CreatedAt is the canonical "YYYY/MM/DD HH:MM:SS" timestamp produced by
	// the normalizer. When the listing supplied only a date it carries a
	// best-effort midnight time; unknown shapes pass through unchanged.
	CreatedAt string
	// SummarySent flips to true after exactly one delivery attempt and never
	// reverts.
	SummarySent bool
	// InsertedAt is assigned by the repository at first persistence.
	InsertedAt time.Time
}
