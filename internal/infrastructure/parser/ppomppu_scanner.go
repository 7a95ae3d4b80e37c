package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DealScanner/internal/domain"
	"DealScanner/internal/scanner"
)

const (
	listingTableSelector = "table#revolution_main_table"
	postRowSelector      = "tr.baseList"
	searchType           = "sub_memo"
)

// PpomppuScanner crawls zboard search listings and extracts the ordinary
// posts matching the requested keyword. Pinned and notice rows carry no
// numeric id and are skipped; a malformed row is logged and skipped without
// aborting the remaining rows.
type PpomppuScanner struct {
	fetcher *PageFetcher
	logger  *slog.Logger
}

var _ scanner.Scanner = (*PpomppuScanner)(nil)

// NewPpomppuScanner wires the shared page fetcher.
func NewPpomppuScanner(fetcher *PageFetcher, logger *slog.Logger) *PpomppuScanner {
	if fetcher == nil {
		fetcher = NewPageFetcher(nil, "", 0)
	}
	return &PpomppuScanner{fetcher: fetcher, logger: logger}
}

// Name identifies the strategy inside the registry.
func (p *PpomppuScanner) Name() string {
	return "ppomppu"
}

// Scan walks through each board's search listing and returns the posts
// matching the keyword, listing order preserved.
func (p *PpomppuScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Post, error) {
	if len(req.Boards) == 0 {
		return nil, fmt.Errorf("no boards provided for site %s", req.SiteName)
	}

	results := make([]domain.Post, 0)
	for _, board := range req.Boards {
		searchURL, err := buildSearchURL(board.URL, req.Keyword)
		if err != nil {
			return nil, fmt.Errorf("board %s: %w", board.Name, err)
		}

		doc, err := p.fetcher.FetchDocument(ctx, searchURL)
		if err != nil {
			return nil, fmt.Errorf("board %s: %w", board.Name, err)
		}

		results = append(results, p.extractPosts(doc, board.URL, req.Now)...)
	}

	return results, nil
}

func (p *PpomppuScanner) extractPosts(doc *goquery.Document, boardURL string, now time.Time) []domain.Post {
	var posts []domain.Post

	doc.Find(listingTableSelector).Find(postRowSelector).Each(func(i int, row *goquery.Selection) {
		idText := strings.TrimSpace(row.Find("td.baseList-numb").First().Text())
		if !isDigits(idText) {
			// Notice rows print a label instead of a number.
			return
		}

		post, err := parseRow(row, idText, boardURL, now)
		if err != nil {
			p.warn("skipping malformed row", "row", i, "error", err)
			return
		}
		posts = append(posts, post)
	})

	return posts
}

func parseRow(row *goquery.Selection, postID, boardURL string, now time.Time) (domain.Post, error) {
	anchor := row.Find("a.baseList-title").First()
	if anchor.Length() == 0 {
		return domain.Post{}, fmt.Errorf("post %s: title anchor not found", postID)
	}

	title := strings.TrimSpace(anchor.Text())
	if title == "" {
		return domain.Post{}, fmt.Errorf("post %s: empty title", postID)
	}

	href, ok := anchor.Attr("href")
	if !ok || href == "" {
		return domain.Post{}, fmt.Errorf("post %s: missing link", postID)
	}

	absolute, err := resolveLink(boardURL, href)
	if err != nil {
		return domain.Post{}, fmt.Errorf("post %s: %w", postID, err)
	}

	rawTime := strings.TrimSpace(row.Find("time.baseList-time").First().Text())

	return domain.Post{
		ID:        postID,
		Title:     title,
		URL:       absolute,
		CreatedAt: NormalizeTimestamp(rawTime, now),
	}, nil
}

func buildSearchURL(boardURL, keyword string) (string, error) {
	parsed, err := url.Parse(boardURL)
	if err != nil {
		return "", fmt.Errorf("invalid board url %s: %w", boardURL, err)
	}

	query := parsed.Query()
	query.Set("page", "1")
	query.Set("search_type", searchType)
	query.Set("keyword", keyword)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func resolveLink(boardURL, href string) (string, error) {
	base, err := url.Parse(boardURL)
	if err != nil {
		return "", fmt.Errorf("invalid board url %s: %w", boardURL, err)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid link %s: %w", href, err)
	}

	return base.ResolveReference(ref).String(), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (p *PpomppuScanner) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
