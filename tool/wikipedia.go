package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WikipediaSearch is a tool that looks up topics on Wikipedia through the
// MediaWiki action API and returns cleaned intro summaries.
type WikipediaSearch struct {
	BaseURL    string
	TopK       int
	MaxChars   int
	UserAgent  string
	HTTPClient *http.Client
}

type WikipediaOption func(*WikipediaSearch)

// WithWikipediaBaseURL sets the MediaWiki API endpoint.
// Default is "https://en.wikipedia.org/w/api.php".
func WithWikipediaBaseURL(baseURL string) WikipediaOption {
	return func(w *WikipediaSearch) {
		w.BaseURL = baseURL
	}
}

// WithWikipediaTopK sets how many pages to summarize per query (1-10).
func WithWikipediaTopK(topK int) WikipediaOption {
	return func(w *WikipediaSearch) {
		if topK < 1 {
			topK = 1
		}
		if topK > 10 {
			topK = 10
		}
		w.TopK = topK
	}
}

// WithWikipediaMaxChars caps the length of each page summary.
func WithWikipediaMaxChars(maxChars int) WikipediaOption {
	return func(w *WikipediaSearch) {
		if maxChars > 0 {
			w.MaxChars = maxChars
		}
	}
}

// WithWikipediaUserAgent sets the User-Agent header sent to the API.
func WithWikipediaUserAgent(userAgent string) WikipediaOption {
	return func(w *WikipediaSearch) {
		w.UserAgent = userAgent
	}
}

// WithWikipediaHTTPClient sets the HTTP client used for requests.
func WithWikipediaHTTPClient(client *http.Client) WikipediaOption {
	return func(w *WikipediaSearch) {
		w.HTTPClient = client
	}
}

// NewWikipediaSearch creates a new WikipediaSearch tool. No API key is needed.
func NewWikipediaSearch(opts ...WikipediaOption) *WikipediaSearch {
	w := &WikipediaSearch{
		BaseURL:    "https://en.wikipedia.org/w/api.php",
		TopK:       3,
		MaxChars:   4000,
		UserAgent:  "hybridchat (https://github.com/smallnest/hybridchat)",
		HTTPClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Name returns the name of the tool.
func (w *WikipediaSearch) Name() string {
	return "Wikipedia"
}

// Description returns the description of the tool.
func (w *WikipediaSearch) Description() string {
	return "A wrapper around Wikipedia. Useful for when you need to answer general " +
		"questions about people, places, companies, facts, historical events, or " +
		"other subjects. Input should be a search query."
}

// Call searches Wikipedia for the input and returns the intro summaries of the
// top matching pages.
func (w *WikipediaSearch) Call(ctx context.Context, input string) (string, error) {
	titles, err := w.searchTitles(ctx, input)
	if err != nil {
		return "", err
	}
	if len(titles) == 0 {
		return "No good Wikipedia search results found", nil
	}

	extracts, err := w.fetchExtracts(ctx, titles)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, title := range titles {
		extract, ok := extracts[title]
		if !ok || extract == "" {
			continue
		}

		summary, err := cleanExtract(extract)
		if err != nil {
			return "", err
		}
		if summary == "" {
			continue
		}
		if len(summary) > w.MaxChars {
			summary = summary[:w.MaxChars]
		}

		sb.WriteString(fmt.Sprintf("Page: %s\nSummary: %s\n\n", title, summary))
	}

	if sb.Len() == 0 {
		return "No good Wikipedia search results found", nil
	}

	return sb.String(), nil
}

// searchTitles resolves a free-form query to the titles of the top matching
// pages, in relevance order.
func (w *WikipediaSearch) searchTitles(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", fmt.Sprintf("%d", w.TopK))
	params.Set("format", "json")

	var result struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := w.get(ctx, params, &result); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(result.Query.Search))
	for _, hit := range result.Query.Search {
		titles = append(titles, hit.Title)
	}
	return titles, nil
}

// fetchExtracts loads the HTML intro extracts for the given page titles.
func (w *WikipediaSearch) fetchExtracts(ctx context.Context, titles []string) (map[string]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("titles", strings.Join(titles, "|"))
	params.Set("redirects", "1")
	params.Set("format", "json")

	var result struct {
		Query struct {
			Pages map[string]struct {
				Title   string `json:"title"`
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := w.get(ctx, params, &result); err != nil {
		return nil, err
	}

	extracts := make(map[string]string, len(result.Query.Pages))
	for _, page := range result.Query.Pages {
		extracts[page.Title] = page.Extract
	}
	return extracts, nil
}

// get performs a GET against the MediaWiki API and decodes the JSON response.
func (w *WikipediaSearch) get(ctx context.Context, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s?%s", w.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", w.UserAgent)

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia api returned status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// cleanExtract strips markup from an HTML extract and collapses whitespace.
func cleanExtract(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse extract: %w", err)
	}

	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
