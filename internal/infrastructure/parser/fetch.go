package parser

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36" +
	" (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// PageFetcher retrieves forum pages and decodes them from EUC-KR, the fixed
// legacy encoding the forum serves. A shared rate limiter paces every
// outbound request regardless of which component asked for the page.
type PageFetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewPageFetcher wires an HTTP client; userAgent defaults to a realistic
// browser string and requestsPerSecond to 1.
func NewPageFetcher(client *http.Client, userAgent string, requestsPerSecond float64) *PageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &PageFetcher{
		client:    client,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// FetchDocument GETs the page and parses the EUC-KR body into a goquery
// document.
func (f *PageFetcher) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forum returned %s", resp.Status)
	}

	decoded := transform.NewReader(resp.Body, korean.EUCKR.NewDecoder())
	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
