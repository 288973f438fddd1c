package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultSearchURL     = "https://openapi.naver.com/v1/search/news.json"
	defaultSearchTimeout = 10 * time.Second
)

// Result is a single news search hit.
type Result struct {
	Title string
	Link  string
}

// Client queries the Naver news search API.
type Client struct {
	clientID     string
	clientSecret string
	searchURL    string
	httpClient   *http.Client
}

// NewClient creates a search client with the given API credentials.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		searchURL:    defaultSearchURL,
		httpClient:   &http.Client{Timeout: defaultSearchTimeout},
	}
}

// NewClientWithSearchURL creates a client pointing at a custom endpoint (for testing).
func NewClientWithSearchURL(clientID, clientSecret, searchURL string) *Client {
	c := NewClient(clientID, clientSecret)
	c.searchURL = searchURL
	return c
}

type searchResponse struct {
	Items []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"items"`
}

// Search returns up to count results for the query, newest first. Titles come
// back from the API with embedded markup; they are returned as plain text.
func (c *Client) Search(ctx context.Context, query string, count int) ([]Result, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(count))
	params.Set("sort", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("news search: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	results := make([]Result, 0, len(result.Items))
	for _, item := range result.Items {
		results = append(results, Result{
			Title: stripTags(item.Title),
			Link:  item.Link,
		})
	}
	return results, nil
}

// stripTags flattens a markup fragment into its text content, decoding
// entities along the way.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var sb strings.Builder
	tz := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			sb.WriteString(tz.Token().Data)
		}
	}
}
