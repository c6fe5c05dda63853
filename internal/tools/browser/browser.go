// Package browser provides lightweight web browsing tools for the agent: an
// HTTP-backed page session with navigation, link following and content
// extraction. One Browser instance is held per session so page state survives
// across turns, and must be released on session teardown.
package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	maxPageBytes   = 2 * 1024 * 1024
	requestTimeout = 20 * time.Second
	userAgent      = "sidekick/1.0 (+https://github.com/ChamsBouzaiene/sidekick)"
)

// Browser holds the current page of one session.
type Browser struct {
	mu         sync.Mutex
	httpClient *http.Client
	currentURL *url.URL
	doc        *goquery.Document
	closed     bool
}

// New creates a browser with its own cookie jar.
func New() (*Browser, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Browser{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: requestTimeout,
		},
	}, nil
}

// Close releases the browser. Further operations fail.
func (b *Browser) Close(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.doc = nil
	b.currentURL = nil
	b.httpClient.CloseIdleConnections()
	return nil
}

// Navigate loads rawURL and makes it the current page. Returns the page
// title and final URL after redirects.
func (b *Browser) Navigate(ctx context.Context, rawURL string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", fmt.Errorf("browser is closed")
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", target.Scheme)
	}

	return b.load(ctx, target)
}

// load fetches target and replaces the current page. Caller holds the lock.
func (b *Browser) load(ctx context.Context, target *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%s returned %d", target, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", target, err)
	}

	final := resp.Request.URL
	b.currentURL = final
	b.doc = doc

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("Loaded %s\nTitle: %s", final, title), nil
}

// Click follows the first link whose visible text contains linkText
// (case-insensitive) and navigates to it.
func (b *Browser) Click(ctx context.Context, linkText string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requirePage(); err != nil {
		return "", err
	}

	needle := strings.ToLower(strings.TrimSpace(linkText))
	var href string
	b.doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(strings.TrimSpace(s.Text())), needle) {
			href, _ = s.Attr("href")
			return false
		}
		return true
	})
	if href == "" {
		return "", fmt.Errorf("no link matching %q on the current page", linkText)
	}

	target, err := b.resolve(href)
	if err != nil {
		return "", err
	}
	return b.load(ctx, target)
}

// ExtractText returns the readable text of the current page, scripts and
// styles stripped, whitespace collapsed.
func (b *Browser) ExtractText() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requirePage(); err != nil {
		return "", err
	}

	root := b.doc.Find("body")
	if root.Length() == 0 {
		root = b.doc.Selection
	}

	var b2 strings.Builder
	for _, node := range root.Nodes {
		writeText(&b2, node)
	}
	text := collapseWhitespace(b2.String())
	if text == "" {
		return "(no visible text)", nil
	}
	return text, nil
}

// writeText walks the node tree appending text content, skipping script and
// style subtrees.
func writeText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
			b.WriteByte('\n')
		}
	}
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Links lists the links on the current page as "text -> absolute URL" lines.
func (b *Browser) Links(limit int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requirePage(); err != nil {
		return "", err
	}
	if limit <= 0 {
		limit = 50
	}

	var lines []string
	b.doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		target, err := b.resolve(href)
		if err != nil {
			return true
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			text = "(no text)"
		}
		lines = append(lines, fmt.Sprintf("%s -> %s", text, target))
		return len(lines) < limit
	})

	if len(lines) == 0 {
		return "No links on the current page.", nil
	}
	return strings.Join(lines, "\n"), nil
}

// Select returns the text of elements matching a CSS selector on the current
// page.
func (b *Browser) Select(selector string, limit int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requirePage(); err != nil {
		return "", err
	}
	if limit <= 0 {
		limit = 20
	}

	var parts []string
	b.doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text != "" {
			parts = append(parts, text)
		}
		return len(parts) < limit
	})

	if len(parts) == 0 {
		return "", fmt.Errorf("no elements match %q", selector)
	}
	return strings.Join(parts, "\n"), nil
}

func (b *Browser) requirePage() error {
	if b.closed {
		return fmt.Errorf("browser is closed")
	}
	if b.doc == nil {
		return fmt.Errorf("no page loaded; call browser_navigate first")
	}
	return nil
}

func (b *Browser) resolve(href string) (*url.URL, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("invalid link %q: %w", href, err)
	}
	resolved := b.currentURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil, fmt.Errorf("unsupported link scheme %q", resolved.Scheme)
	}
	return resolved, nil
}
