package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"DealScanner/internal/config"
	"DealScanner/internal/domain"
	"DealScanner/internal/ports"
	"DealScanner/internal/scanner"
)

// StrategySource implements PostSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.PostSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// FetchListing iterates over configured sites and executes their scanners,
// deduplicating posts that match on more than one board.
func (s *StrategySource) FetchListing(ctx context.Context, keyword string, now time.Time) ([]domain.Post, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch listing", "sites", len(s.sites), "keyword", keyword)

	seen := map[string]struct{}{}
	var aggregated []domain.Post
	for _, site := range s.sites {
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := scanner.Request{
			Keyword:  keyword,
			Now:      now,
			SiteName: site.Name,
			Options:  site.Options,
			Boards:   toScannerBoards(site.Boards),
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("scan site %s: %w", site.Name, err)
		}

		for _, post := range results {
			if _, ok := seen[post.ID]; ok {
				continue
			}
			seen[post.ID] = struct{}{}
			aggregated = append(aggregated, post)
		}
		s.debug("site produced posts", "site", site.Name, "count", len(results))
	}

	s.debug("strategy source done", "total_posts", len(aggregated))
	return aggregated, nil
}

func toScannerBoards(cfg []config.BoardConfig) []scanner.Board {
	boards := make([]scanner.Board, 0, len(cfg))
	for _, board := range cfg {
		boards = append(boards, scanner.Board{
			Name: board.Name,
			URL:  board.URL,
		})
	}
	return boards
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
