package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// SerperSearch is a tool that uses the Serper API (serper.dev) to run Google
// web searches.
type SerperSearch struct {
	APIKey     string
	BaseURL    string
	Num        int
	Country    string
	Lang       string
	HTTPClient *http.Client
}

type SerperOption func(*SerperSearch)

// WithSerperBaseURL sets the base URL for the Serper API.
func WithSerperBaseURL(baseURL string) SerperOption {
	return func(s *SerperSearch) {
		s.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithSerperNum sets the number of results to return (1-100).
func WithSerperNum(num int) SerperOption {
	return func(s *SerperSearch) {
		if num < 1 {
			num = 1
		}
		if num > 100 {
			num = 100
		}
		s.Num = num
	}
}

// WithSerperCountry sets the country code for search results (e.g., "us", "cn").
func WithSerperCountry(country string) SerperOption {
	return func(s *SerperSearch) {
		s.Country = country
	}
}

// WithSerperLang sets the language code for search results (e.g., "en", "zh").
func WithSerperLang(lang string) SerperOption {
	return func(s *SerperSearch) {
		s.Lang = lang
	}
}

// WithSerperHTTPClient sets the HTTP client used for requests.
func WithSerperHTTPClient(client *http.Client) SerperOption {
	return func(s *SerperSearch) {
		s.HTTPClient = client
	}
}

// NewSerperSearch creates a new SerperSearch tool.
// If apiKey is empty, it tries to read from SERP_API_KEY environment variable.
func NewSerperSearch(apiKey string, opts ...SerperOption) (*SerperSearch, error) {
	if apiKey == "" {
		apiKey = os.Getenv("SERP_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("SERP_API_KEY not set")
	}

	s := &SerperSearch{
		APIKey:     apiKey,
		BaseURL:    "https://google.serper.dev",
		Num:        10,
		Country:    "us",
		Lang:       "en",
		HTTPClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Name returns the name of the tool.
func (s *SerperSearch) Name() string {
	return "Google_Search"
}

// Description returns the description of the tool.
func (s *SerperSearch) Description() string {
	return "Use this tool when the user asks about current events, live updates, " +
		"or real-time data. Input should be a search query."
}

// Call executes the search.
func (s *SerperSearch) Call(ctx context.Context, input string) (string, error) {
	payload := map[string]any{
		"q":   input,
		"num": s.Num,
	}
	if s.Country != "" {
		payload["gl"] = s.Country
	}
	if s.Lang != "" {
		payload["hl"] = s.Lang
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.APIKey)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("serper api returned status: %d", resp.StatusCode)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// Format the output
	var sb strings.Builder

	// The answer box, when present, is the most direct answer.
	if box, ok := result["answerBox"].(map[string]any); ok {
		answer, _ := box["answer"].(string)
		if answer == "" {
			answer, _ = box["snippet"].(string)
		}
		if answer != "" {
			sb.WriteString(fmt.Sprintf("Answer: %s\n\n", answer))
		}
	}

	if kg, ok := result["knowledgeGraph"].(map[string]any); ok {
		title, _ := kg["title"].(string)
		kgType, _ := kg["type"].(string)
		description, _ := kg["description"].(string)
		if title != "" {
			sb.WriteString(fmt.Sprintf("Knowledge Graph: %s (%s)\n%s\n\n", title, kgType, description))
		}
	}

	if organic, ok := result["organic"].([]any); ok {
		for i, r := range organic {
			if item, ok := r.(map[string]any); ok {
				title, _ := item["title"].(string)
				link, _ := item["link"].(string)
				snippet, _ := item["snippet"].(string)

				sb.WriteString(fmt.Sprintf("%d. Title: %s\nURL: %s\nDescription: %s\n\n",
					i+1, title, link, snippet))
			}
		}
	}

	if sb.Len() == 0 {
		return "No results found", nil
	}

	return sb.String(), nil
}
