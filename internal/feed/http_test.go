package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"feedview/internal/logger"
)

func TestHTTPSourceFetch(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"id": "a", "kind": "text", "title": "one"},
				{"title": "two", "options": []string{"x", "y"}},
			},
			"has_more": true,
		})
	}))
	defer srv.Close()

	src, err := NewHTTPSource(HTTPOptions{BaseURL: srv.URL + "/feed", Log: logger.Discard("feed-http")})
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}
	res, err := src.Fetch(context.Background(), Query{Text: "hello world", Offset: 8, Limit: 4})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Blocks) != 2 || !res.HasMore {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Blocks[1].ID() == "" || res.Blocks[1].Kind != KindPoll {
		t.Fatalf("second block not normalized: %+v", res.Blocks[1])
	}
	if q := gotQuery.Load().(string); q != "limit=4&offset=8&q=hello+world" {
		t.Fatalf("query = %q", q)
	}
}

func TestHTTPSourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such feed", http.StatusNotFound)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(HTTPOptions{BaseURL: srv.URL, Log: logger.Discard("feed-http")})
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}
	if _, err := src.Fetch(context.Background(), Query{Limit: 4}); !errors.Is(err, ErrBadStatus) {
		t.Fatalf("Fetch err = %v, want ErrBadStatus", err)
	}
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"id":"z","title":"ok"}],"has_more":false}`))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(HTTPOptions{BaseURL: srv.URL, Retries: 2, Log: logger.Discard("feed-http")})
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}
	res, err := NewCursor(src, "", 4).LoadMore(context.Background())
	if err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if len(res.Items) != 1 || res.HasMore {
		t.Fatalf("unexpected page %+v", res)
	}
	if calls.Load() != 2 {
		t.Fatalf("server called %d times, want 2", calls.Load())
	}
}

func TestNewHTTPSourceRequiresURL(t *testing.T) {
	if _, err := NewHTTPSource(HTTPOptions{}); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}
