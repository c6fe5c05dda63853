// Package websearch provides the web_search tool backed by the Serper.dev
// Google search API.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

const defaultEndpoint = "https://google.serper.dev/search"

// Client calls the Serper search API.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

type Option func(*Client)

// WithEndpoint overrides the API endpoint, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	AnswerBox struct {
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
	} `json:"answerBox"`
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search runs one query and renders the results as readable text for the
// model: the answer box first if present, then the organic results.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (string, error) {
	payload, err := json.Marshal(map[string]any{"q": query})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("search API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}

	var b strings.Builder
	if parsed.AnswerBox.Answer != "" {
		fmt.Fprintf(&b, "Answer: %s\n\n", parsed.AnswerBox.Answer)
	} else if parsed.AnswerBox.Snippet != "" {
		fmt.Fprintf(&b, "Answer: %s\n\n", parsed.AnswerBox.Snippet)
	}

	if maxResults <= 0 {
		maxResults = 5
	}
	for i, r := range parsed.Organic {
		if i >= maxResults {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Link, r.Snippet)
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "No results found.", nil
	}
	return out, nil
}

// NewSearchTool creates the web_search tool.
func NewSearchTool(client *Client) engine.Tool {
	return engine.Tool{
		Name:        "web_search",
		Description: "Searches the web for current information. Returns the top results with titles, links and snippets.",
		SchemaJSON:  `{"type":"object","properties":{"query":{"type":"string","description":"The search query"},"max_results":{"type":"integer","description":"Maximum number of results to return. Default: 5"}},"required":["query"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			query, ok := args["query"].(string)
			if !ok || strings.TrimSpace(query) == "" {
				return "", fmt.Errorf("query must be a non-empty string")
			}
			maxResults := 0
			if n, ok := args["max_results"].(float64); ok {
				maxResults = int(n)
			}
			return client.Search(ctx, query, maxResults)
		},
		Retryable: true,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "search",
			Tags:     []string{"read-only", "idempotent"},
		},
	}
}
