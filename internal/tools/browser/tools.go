package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

// Tools returns the browsing tool set bound to one Browser instance.
func Tools(b *Browser) []engine.Tool {
	return []engine.Tool{
		newNavigateTool(b),
		newClickTool(b),
		newExtractTextTool(b),
		newLinksTool(b),
		newSelectTool(b),
	}
}

func newNavigateTool(b *Browser) engine.Tool {
	return engine.Tool{
		Name:        "browser_navigate",
		Description: "Opens a web page in your browser session and makes it the current page. Returns the page title.",
		SchemaJSON:  `{"type":"object","properties":{"url":{"type":"string","description":"The absolute URL to open (http or https)"}},"required":["url"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			rawURL, ok := args["url"].(string)
			if !ok || strings.TrimSpace(rawURL) == "" {
				return "", fmt.Errorf("url must be a non-empty string")
			}
			return b.Navigate(ctx, rawURL)
		},
		Retryable: true,
		Metadata:  engine.ToolMetadata{Version: "1.0.0", Category: "browser"},
	}
}

func newClickTool(b *Browser) engine.Tool {
	return engine.Tool{
		Name:        "browser_click",
		Description: "Follows a link on the current page by its visible text (case-insensitive substring match).",
		SchemaJSON:  `{"type":"object","properties":{"link_text":{"type":"string","description":"Visible text of the link to follow"}},"required":["link_text"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			linkText, ok := args["link_text"].(string)
			if !ok || strings.TrimSpace(linkText) == "" {
				return "", fmt.Errorf("link_text must be a non-empty string")
			}
			return b.Click(ctx, linkText)
		},
		Retryable: true,
		Metadata:  engine.ToolMetadata{Version: "1.0.0", Category: "browser"},
	}
}

func newExtractTextTool(b *Browser) engine.Tool {
	return engine.Tool{
		Name:        "browser_extract_text",
		Description: "Returns the readable text content of the current page, with scripts and styling removed.",
		SchemaJSON:  `{"type":"object","properties":{},"required":[]}`,
		Fn: func(ctx context.Context, _ map[string]any) (string, error) {
			return b.ExtractText()
		},
		Retryable: true,
		Metadata:  engine.ToolMetadata{Version: "1.0.0", Category: "browser", Tags: []string{"read-only"}},
	}
}

func newLinksTool(b *Browser) engine.Tool {
	return engine.Tool{
		Name:        "browser_links",
		Description: "Lists the links on the current page with their text and absolute URLs.",
		SchemaJSON:  `{"type":"object","properties":{"limit":{"type":"integer","description":"Maximum number of links to return. Default: 50"}},"required":[]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			limit := 0
			if l, ok := args["limit"].(float64); ok {
				limit = int(l)
			}
			return b.Links(limit)
		},
		Retryable: true,
		Metadata:  engine.ToolMetadata{Version: "1.0.0", Category: "browser", Tags: []string{"read-only"}},
	}
}

func newSelectTool(b *Browser) engine.Tool {
	return engine.Tool{
		Name:        "browser_select",
		Description: "Extracts the text of elements matching a CSS selector on the current page, e.g. 'h1' or '.article p'.",
		SchemaJSON:  `{"type":"object","properties":{"selector":{"type":"string","description":"CSS selector to match"},"limit":{"type":"integer","description":"Maximum number of elements to return. Default: 20"}},"required":["selector"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			selector, ok := args["selector"].(string)
			if !ok || strings.TrimSpace(selector) == "" {
				return "", fmt.Errorf("selector must be a non-empty string")
			}
			limit := 0
			if l, ok := args["limit"].(float64); ok {
				limit = int(l)
			}
			return b.Select(selector, limit)
		},
		Retryable: true,
		Metadata:  engine.ToolMetadata{Version: "1.0.0", Category: "browser", Tags: []string{"read-only"}},
	}
}
