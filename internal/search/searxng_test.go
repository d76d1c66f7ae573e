package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearxNG_RequestShapeAndParsing(t *testing.T) {
	var gotQuery, gotFormat, gotCategories, gotTimeRange, gotCount, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = q.Get("q")
		gotFormat = q.Get("format")
		gotCategories = q.Get("categories")
		gotTimeRange = q.Get("time_range")
		gotCount = q.Get("count")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [
			{"title": " Cambodia visa news ", "url": "https://gov.kh/press/1", "content": "official update", "publishedDate": "2026-02-01", "engine": "bing news"},
			{"title": "", "url": "https://example.com/untitled", "content": "no title"},
			{"title": "Extra result", "url": "https://example.com/extra"}
		]}`))
	}))
	defer srv.Close()

	p := &SearxNG{BaseURL: srv.URL, UserAgent: "topicgen-test"}
	got, err := p.Search(context.Background(), "Cambodia visa", 2, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "Cambodia visa" || gotFormat != "json" || gotCategories != "news" {
		t.Fatalf("request params: q=%q format=%q categories=%q", gotQuery, gotFormat, gotCategories)
	}
	if gotTimeRange != "year" {
		t.Fatalf("200 days must map to the year range, got %q", gotTimeRange)
	}
	if gotCount != "2" {
		t.Fatalf("count = %q", gotCount)
	}
	if gotUA != "topicgen-test" {
		t.Fatalf("user agent = %q", gotUA)
	}
	if len(got) != 2 {
		t.Fatalf("maxResults must cap the parsed list, got %d", len(got))
	}
	if got[0].Title != "Cambodia visa news" || got[0].URL != "https://gov.kh/press/1" {
		t.Fatalf("first result misparsed: %+v", got[0])
	}
	if got[0].Source != "searxng" || got[0].DisplayLink != "bing news" {
		t.Fatalf("provenance fields misparsed: %+v", got[0])
	}
	// The titleless item stays in the response; downstream gating owns it.
	if got[1].Title != "" || got[1].URL != "https://example.com/untitled" {
		t.Fatalf("shape problems must pass through: %+v", got[1])
	}
}

func TestSearxNG_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := &SearxNG{BaseURL: srv.URL}
	if _, err := p.Search(context.Background(), "x", 5, 0); err == nil {
		t.Fatalf("non-2xx status must error")
	}
}

func TestSearxNG_MissingBaseURL(t *testing.T) {
	p := &SearxNG{}
	if _, err := p.Search(context.Background(), "x", 5, 0); err == nil {
		t.Fatalf("missing base url must error")
	}
}

func TestTimeRange(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{0, ""}, {1, "day"}, {7, "week"}, {31, "month"}, {365, "year"},
	}
	for _, c := range cases {
		if got := timeRange(c.days); got != c.want {
			t.Fatalf("timeRange(%d) = %q, want %q", c.days, got, c.want)
		}
	}
}
