package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Sentinel texts keep the aggregated corpus well-formed when a page yields
// nothing; the extraction prompt treats them as noise.
const (
	placeholderNoBody      = "no article body"
	placeholderFetchFailed = "text extraction failed"
)

const (
	pageFetchTimeout = 5 * time.Second
	pageUserAgent    = "Mozilla/5.0 (compatible; checkmate/1.0)"
)

// PageFetcher downloads article pages and extracts their readable text.
type PageFetcher struct {
	httpClient *http.Client
}

// NewPageFetcher creates a PageFetcher with a short per-page timeout.
func NewPageFetcher() *PageFetcher {
	return &PageFetcher{httpClient: &http.Client{Timeout: pageFetchTimeout}}
}

// FetchText returns the visible text of the article at url. It never fails:
// unreachable or unparseable pages yield a sentinel placeholder so the caller
// can aggregate results without special cases.
func (f *PageFetcher) FetchText(ctx context.Context, url string) string {
	text, err := f.fetch(ctx, url)
	if err != nil {
		slog.Warn("article fetch failed", "url", url, "error", err)
		return placeholderFetchFailed
	}
	if text == "" {
		return placeholderNoBody
	}
	return text
}

func (f *PageFetcher) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating page request: %w", err)
	}
	req.Header.Set("User-Agent", pageUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}
	return extractArticleText(doc), nil
}

// extractArticleText tries the known article containers in order of
// specificity and returns the text of the first one that has any.
func extractArticleText(doc *html.Node) string {
	candidates := []func(*html.Node) bool{
		func(n *html.Node) bool { return n.Data == "div" && attrVal(n, "id") == "newsct_article" },
		func(n *html.Node) bool { return n.Data == "article" },
		func(n *html.Node) bool { return n.Data == "div" && hasClass(n, "content") },
		func(n *html.Node) bool { return n.Data == "main" },
		func(n *html.Node) bool { return n.Data == "body" },
	}
	for _, match := range candidates {
		if node := findNode(doc, match); node != nil {
			if text := visibleText(node); text != "" {
				return text
			}
		}
	}
	return ""
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// visibleText collects the text nodes under n, skipping script and style
// subtrees, with runs of whitespace collapsed.
func visibleText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
