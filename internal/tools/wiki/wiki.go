// Package wiki provides the wiki_lookup tool: encyclopedia lookups against
// the MediaWiki API with a local full-text cache, so repeated lookups within
// and across sessions skip the network.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

const defaultEndpoint = "https://en.wikipedia.org/w/api.php"

// Article is one cached encyclopedia entry.
type Article struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Client fetches article summaries from a MediaWiki endpoint and caches them
// in a bleve index.
type Client struct {
	endpoint   string
	httpClient *http.Client
	index      bleve.Index
}

type Option func(*Client)

// WithEndpoint overrides the API endpoint, mainly for tests.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient opens (or creates) the cache index at indexPath.
func NewClient(indexPath string, opts ...Option) (*Client, error) {
	index, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(indexPath, bleve.NewIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open article cache: %w", err)
	}

	c := &Client{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		index:      index,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Close() error {
	return c.index.Close()
}

// Lookup returns the article summary for topic, consulting the cache first.
func (c *Client) Lookup(ctx context.Context, topic string) (string, error) {
	if cached, ok := c.fromCache(topic); ok {
		return fmt.Sprintf("%s\n\n%s", cached.Title, cached.Summary), nil
	}

	article, err := c.fetch(ctx, topic)
	if err != nil {
		return "", err
	}

	// A cache write failure must not fail the lookup.
	_ = c.index.Index(cacheKey(article.Title), article)

	return fmt.Sprintf("%s\n\n%s", article.Title, article.Summary), nil
}

func cacheKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// fromCache searches the index for topic and returns the best hit if it
// matches well enough.
func (c *Client) fromCache(topic string) (Article, bool) {
	// Exact key first, then a fuzzy title match.
	if doc := c.loadArticle(cacheKey(topic)); doc != nil {
		return *doc, true
	}

	query := bleve.NewMatchQuery(topic)
	query.SetField("title")
	req := bleve.NewSearchRequest(query)
	req.Size = 1

	res, err := c.index.Search(req)
	if err != nil || res.Total == 0 {
		return Article{}, false
	}
	if doc := c.loadArticle(res.Hits[0].ID); doc != nil {
		return *doc, true
	}
	return Article{}, false
}

func (c *Client) loadArticle(id string) *Article {
	query := bleve.NewDocIDQuery([]string{id})
	req := bleve.NewSearchRequest(query)
	req.Fields = []string{"title", "summary"}

	res, err := c.index.Search(req)
	if err != nil || res.Total == 0 {
		return nil
	}

	fields := res.Hits[0].Fields
	title, _ := fields["title"].(string)
	summary, _ := fields["summary"].(string)
	if title == "" || summary == "" {
		return nil
	}
	return &Article{Title: title, Summary: summary}
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int       `json:"pageid"`
			Title   string    `json:"title"`
			Extract string    `json:"extract"`
			Missing *struct{} `json:"missing,omitempty"`
		} `json:"pages"`
	} `json:"query"`
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

func (c *Client) fetch(ctx context.Context, topic string) (Article, error) {
	article, found, err := c.fetchExtract(ctx, topic)
	if err != nil {
		return Article{}, err
	}
	if found {
		return article, nil
	}

	// No page under that exact title; resolve via full-text search.
	title, err := c.searchTitle(ctx, topic)
	if err != nil {
		return Article{}, err
	}
	if title == "" {
		return Article{}, fmt.Errorf("no article found for %q", topic)
	}

	article, found, err = c.fetchExtract(ctx, title)
	if err != nil {
		return Article{}, err
	}
	if !found {
		return Article{}, fmt.Errorf("no article found for %q", topic)
	}
	return article, nil
}

func (c *Client) fetchExtract(ctx context.Context, title string) (Article, bool, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
	}

	var parsed extractResponse
	if err := c.get(ctx, params, &parsed); err != nil {
		return Article{}, false, err
	}

	for _, page := range parsed.Query.Pages {
		if page.Missing != nil || page.Extract == "" {
			continue
		}
		return Article{
			Title:     page.Title,
			Summary:   strings.TrimSpace(page.Extract),
			FetchedAt: time.Now().UTC(),
		}, true, nil
	}
	return Article{}, false, nil
}

func (c *Client) searchTitle(ctx context.Context, topic string) (string, error) {
	params := url.Values{
		"action":   {"query"},
		"format":   {"json"},
		"list":     {"search"},
		"srsearch": {topic},
		"srlimit":  {"1"},
	}

	var parsed searchResponse
	if err := c.get(ctx, params, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Query.Search) == 0 {
		return "", nil
	}
	return parsed.Query.Search[0].Title, nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wiki request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wiki API returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// NewLookupTool creates the wiki_lookup tool.
func NewLookupTool(client *Client) engine.Tool {
	return engine.Tool{
		Name:        "wiki_lookup",
		Description: "Looks up an encyclopedia article and returns its summary. Good for background facts on people, places and concepts.",
		SchemaJSON:  `{"type":"object","properties":{"topic":{"type":"string","description":"The topic to look up"}},"required":["topic"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			topic, ok := args["topic"].(string)
			if !ok || strings.TrimSpace(topic) == "" {
				return "", fmt.Errorf("topic must be a non-empty string")
			}
			return client.Lookup(ctx, topic)
		},
		Retryable: true,
		Metadata: engine.ToolMetadata{
			Version:  "1.0.0",
			Category: "search",
			Tags:     []string{"read-only", "idempotent", "cached"},
		},
	}
}
