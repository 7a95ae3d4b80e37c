package parser

import (
	"context"
	"fmt"
	"strings"

	"DealScanner/internal/ports"
)

// contentSelector identifies the single cell holding a post's body text.
const contentSelector = "td.board-contents"

// HTMLContentFetcher extracts the plain-text body of a post's detail page.
type HTMLContentFetcher struct {
	fetcher *PageFetcher
}

var _ ports.ContentFetcher = (*HTMLContentFetcher)(nil)

// NewContentFetcher wires the shared page fetcher.
func NewContentFetcher(fetcher *PageFetcher) *HTMLContentFetcher {
	if fetcher == nil {
		fetcher = NewPageFetcher(nil, "", 0)
	}
	return &HTMLContentFetcher{fetcher: fetcher}
}

// FetchContent retrieves the detail page and returns the body cell's text
// with script, style, iframe and ad subtrees stripped and whitespace
// collapsed.
func (c *HTMLContentFetcher) FetchContent(ctx context.Context, pageURL string) (string, error) {
	doc, err := c.fetcher.FetchDocument(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch post %s: %w", pageURL, err)
	}

	cell := doc.Find(contentSelector).First()
	if cell.Length() == 0 {
		return "", fmt.Errorf("post body cell not found at %s", pageURL)
	}

	cell.Find("script, style, iframe, ins").Remove()

	text := strings.Join(strings.Fields(cell.Text()), " ")
	if text == "" {
		return "", fmt.Errorf("post body empty at %s", pageURL)
	}

	return text, nil
}
