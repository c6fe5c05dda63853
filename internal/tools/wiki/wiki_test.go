package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(filepath.Join(t.TempDir(), "wiki.bleve"), WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, srv
}

func TestLookupFetchesAndCaches(t *testing.T) {
	var requests atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"query":{"pages":{"42":{"pageid":42,"title":"Go (programming language)","extract":"Go is a statically typed language."}}}}`))
	}))

	out, err := client.Lookup(context.Background(), "Go (programming language)")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !strings.Contains(out, "Go (programming language)") || !strings.Contains(out, "statically typed") {
		t.Errorf("out = %q", out)
	}
	if requests.Load() != 1 {
		t.Fatalf("requests = %d, want 1", requests.Load())
	}

	// Second lookup is served from the cache.
	out2, err := client.Lookup(context.Background(), "Go (programming language)")
	if err != nil {
		t.Fatalf("cached Lookup: %v", err)
	}
	if out2 != out {
		t.Errorf("cached result differs: %q vs %q", out2, out)
	}
	if requests.Load() != 1 {
		t.Errorf("requests = %d after cached lookup, want 1", requests.Load())
	}
}

func TestLookupResolvesViaSearch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("list") == "search":
			w.Write([]byte(`{"query":{"search":[{"title":"Ada Lovelace"}]}}`))
		case q.Get("titles") == "Ada Lovelace":
			w.Write([]byte(`{"query":{"pages":{"7":{"pageid":7,"title":"Ada Lovelace","extract":"English mathematician."}}}}`))
		default:
			// Unknown title: MediaWiki reports a missing page.
			w.Write([]byte(`{"query":{"pages":{"-1":{"title":"ada the mathematician","missing":{}}}}}`))
		}
	}))

	out, err := client.Lookup(context.Background(), "ada the mathematician")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !strings.Contains(out, "Ada Lovelace") || !strings.Contains(out, "English mathematician.") {
		t.Errorf("out = %q", out)
	}
}

func TestLookupNoArticle(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("list") == "search" {
			w.Write([]byte(`{"query":{"search":[]}}`))
			return
		}
		w.Write([]byte(`{"query":{"pages":{"-1":{"title":"xyzzy","missing":{}}}}}`))
	}))

	_, err := client.Lookup(context.Background(), "xyzzy")
	if err == nil || !strings.Contains(err.Error(), "no article found") {
		t.Fatalf("expected no-article error, got %v", err)
	}
}

func TestLookupToolValidatesTopic(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"query":{"pages":{}}}`))
	}))
	tool := NewLookupTool(client)

	if _, err := tool.Fn(context.Background(), map[string]any{"topic": ""}); err == nil {
		t.Error("expected error for empty topic")
	}
}
