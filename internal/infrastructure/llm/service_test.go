package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	reply string
	err   error
	got   string
}

func (s *stubGenerator) Generate(ctx context.Context, userPrompt string) (string, error) {
	s.got = userPrompt
	return s.reply, s.err
}

type stubContent struct {
	body string
	err  error
}

func (s *stubContent) FetchContent(ctx context.Context, url string) (string, error) {
	return s.body, s.err
}

func TestServiceSummarize(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{reply: "A crisp summary."}
	svc := NewService(gen, &stubContent{body: "full post body"}, "Summarize the post.", nil)

	got, err := svc.Summarize(context.Background(), "Fold7 deal", "https://example.com/1")
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "A crisp summary." {
		t.Fatalf("unexpected summary: %q", got)
	}

	for _, fragment := range []string{"Summarize the post.", "Fold7 deal", "full post body"} {
		if !strings.Contains(gen.got, fragment) {
			t.Fatalf("prompt missing %q: %q", fragment, gen.got)
		}
	}
}

func TestServiceFallbackWhenBodyUnavailable(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{reply: "should not be called"}
	svc := NewService(gen, &stubContent{err: errors.New("fetch failed")}, "tmpl", nil)

	got, err := svc.Summarize(context.Background(), "Fold7 deal", "https://example.com/1")
	if err == nil {
		t.Fatalf("expected error when body fetch fails")
	}
	if !strings.Contains(got, "Fold7 deal") {
		t.Fatalf("fallback does not embed the title: %q", got)
	}
	if gen.got != "" {
		t.Fatalf("generator was called despite missing body")
	}
}

func TestServiceFallbackOnGenerationFailure(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{err: errors.New("quota exceeded")}
	svc := NewService(gen, &stubContent{body: "body"}, "tmpl", nil)

	got, err := svc.Summarize(context.Background(), "Fold7 deal", "https://example.com/1")
	if err == nil {
		t.Fatalf("expected error when generation fails")
	}
	if got != FallbackSummary("Fold7 deal") {
		t.Fatalf("unexpected fallback text: %q", got)
	}
}

func TestServiceFallbackOnEmptyReply(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubGenerator{}, &stubContent{body: "body"}, "tmpl", nil)

	got, err := svc.Summarize(context.Background(), "Fold7 deal", "https://example.com/1")
	if err == nil {
		t.Fatalf("expected error for empty reply")
	}
	if !strings.Contains(got, "Fold7 deal") {
		t.Fatalf("fallback does not embed the title: %q", got)
	}
}
