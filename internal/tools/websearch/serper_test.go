package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearchRendersResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("missing API key header")
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["q"] != "capital of france" {
			t.Errorf("unexpected request body: %v", body)
		}
		w.Write([]byte(`{
			"answerBox": {"answer": "Paris"},
			"organic": [
				{"title": "Paris - Wikipedia", "link": "https://en.wikipedia.org/wiki/Paris", "snippet": "Capital of France."},
				{"title": "France", "link": "https://example.com/fr", "snippet": "A country."},
				{"title": "Extra", "link": "https://example.com/x", "snippet": "More."}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithEndpoint(srv.URL))

	out, err := client.Search(context.Background(), "capital of france", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if !strings.HasPrefix(out, "Answer: Paris") {
		t.Errorf("answer box missing: %q", out)
	}
	if !strings.Contains(out, "Paris - Wikipedia") || !strings.Contains(out, "https://en.wikipedia.org/wiki/Paris") {
		t.Errorf("organic result missing: %q", out)
	}
	if strings.Contains(out, "Extra") {
		t.Errorf("max_results not honored: %q", out)
	}
}

func TestSearchEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("k", WithEndpoint(srv.URL))
	out, err := client.Search(context.Background(), "nothing", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out != "No results found." {
		t.Errorf("out = %q", out)
	}
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("k", WithEndpoint(srv.URL))
	_, err := client.Search(context.Background(), "q", 5)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected 429 error, got %v", err)
	}
}

func TestSearchToolArgs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"organic": [{"title": "T", "link": "L", "snippet": "S"}]}`))
	}))
	defer srv.Close()

	tool := NewSearchTool(NewClient("k", WithEndpoint(srv.URL)))

	if _, err := tool.Fn(context.Background(), map[string]any{"query": "  "}); err == nil {
		t.Error("expected error for blank query")
	}

	out, err := tool.Fn(context.Background(), map[string]any{"query": "x"})
	if err != nil {
		t.Fatalf("tool: %v", err)
	}
	if !strings.Contains(out, "T") {
		t.Errorf("out = %q", out)
	}
}
