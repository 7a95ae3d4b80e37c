package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"DealScanner/internal/scanner"
)

const listingHTML = `
<html><body>
<table id="revolution_main_table">
  <tr class="baseList">
    <td class="baseList-numb">공지</td>
    <td><a class="baseList-title" href="view.php?id=phone&no=1">Pinned notice</a></td>
  </tr>
  <tr class="baseList">
    <td class="baseList-numb">3871406</td>
    <td><a class="baseList-title" href="view.php?id=phone&no=3871406">폴드7 자급제 졸업</a></td>
    <td><time class="baseList-time">13:05:32</time></td>
  </tr>
  <tr class="baseList">
    <td class="baseList-numb">3871111</td>
    <td>row without a title anchor</td>
  </tr>
  <tr class="baseList">
    <td class="baseList-numb">3871200</td>
    <td><a class="baseList-title" href="view.php?id=phone&no=3871200">Second deal</a></td>
    <td><time class="baseList-time">25/07/18</time></td>
  </tr>
  <tr class="otherRow">
    <td class="baseList-numb">999</td>
    <td><a class="baseList-title" href="view.php?no=999">Wrong row class</a></td>
  </tr>
</table>
</body></html>`

func encodeEUCKR(t *testing.T, s string) []byte {
	t.Helper()

	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return encoded
}

func TestBuildSearchURL(t *testing.T) {
	t.Parallel()

	got, err := buildSearchURL("https://www.ppomppu.co.kr/zboard/zboard.php?id=phone", "폴드7")
	if err != nil {
		t.Fatalf("buildSearchURL returned error: %v", err)
	}

	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}

	q := parsed.Query()
	if q.Get("id") != "phone" {
		t.Fatalf("expected id=phone, got %s", q.Get("id"))
	}
	if q.Get("page") != "1" {
		t.Fatalf("expected page=1, got %s", q.Get("page"))
	}
	if q.Get("search_type") != "sub_memo" {
		t.Fatalf("expected search_type=sub_memo, got %s", q.Get("search_type"))
	}
	if q.Get("keyword") != "폴드7" {
		t.Fatalf("expected keyword roundtrip, got %s", q.Get("keyword"))
	}
}

func TestPpomppuScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("keyword") != "폴드7" {
			t.Errorf("unexpected keyword: %s", r.URL.Query().Get("keyword"))
		}
		w.Header().Set("Content-Type", "text/html; charset=euc-kr")
		_, _ = w.Write(encodeEUCKR(t, listingHTML))
	}))
	defer server.Close()

	now := time.Date(2025, time.July, 19, 15, 0, 0, 0, time.UTC)
	sc := NewPpomppuScanner(NewPageFetcher(server.Client(), "", 100), nil)

	posts, err := sc.Scan(context.Background(), scanner.Request{
		Keyword:  "폴드7",
		Now:      now,
		SiteName: "ppomppu-phone",
		Boards: []scanner.Board{
			{Name: "phone", URL: server.URL + "/zboard/zboard.php?id=phone"},
		},
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	// The notice row, the anchorless row and the wrong-class row are all
	// excluded; the two ordinary posts survive in listing order.
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	first := posts[0]
	if first.ID != "3871406" {
		t.Fatalf("unexpected first id: %s", first.ID)
	}
	if first.Title != "폴드7 자급제 졸업" {
		t.Fatalf("EUC-KR title not decoded: %q", first.Title)
	}
	if first.URL != server.URL+"/zboard/view.php?id=phone&no=3871406" {
		t.Fatalf("link not resolved to absolute: %s", first.URL)
	}
	if first.CreatedAt != "25/07/19 13:05:32" {
		t.Fatalf("time-of-day not normalized: %s", first.CreatedAt)
	}

	second := posts[1]
	if second.ID != "3871200" {
		t.Fatalf("unexpected second id: %s", second.ID)
	}
	if second.CreatedAt != "2025/07/18 00:00:00" {
		t.Fatalf("date not normalized: %s", second.CreatedAt)
	}
}

func TestPpomppuScannerScanHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	sc := NewPpomppuScanner(NewPageFetcher(server.Client(), "", 100), nil)

	posts, err := sc.Scan(context.Background(), scanner.Request{
		Keyword: "kw",
		Now:     time.Now(),
		Boards:  []scanner.Board{{Name: "phone", URL: server.URL}},
	})
	if err == nil {
		t.Fatalf("expected error for HTTP 500")
	}
	if len(posts) != 0 {
		t.Fatalf("expected no posts on failure, got %d", len(posts))
	}
}

func TestPpomppuScannerScanNoBoards(t *testing.T) {
	t.Parallel()

	sc := NewPpomppuScanner(nil, nil)
	if _, err := sc.Scan(context.Background(), scanner.Request{Keyword: "kw"}); err == nil {
		t.Fatalf("expected error without boards")
	}
}

func TestPageFetcherSendsUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write(encodeEUCKR(t, "<html><body>ok</body></html>"))
	}))
	defer server.Close()

	fetcher := NewPageFetcher(server.Client(), "custom-agent/1.0", 100)
	if _, err := fetcher.FetchDocument(context.Background(), server.URL); err != nil {
		t.Fatalf("FetchDocument error: %v", err)
	}

	if gotUA != "custom-agent/1.0" {
		t.Fatalf("unexpected user agent: %s", gotUA)
	}
}
