package tool

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSerperSearch(t *testing.T) {
	t.Setenv("SERP_API_KEY", "")

	// Missing key is an error
	_, err := NewSerperSearch("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SERP_API_KEY")

	// Key from the environment
	t.Setenv("SERP_API_KEY", "env-key")
	s, err := NewSerperSearch("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", s.APIKey)

	// Explicit key wins and defaults apply
	s, err = NewSerperSearch("direct-key")
	require.NoError(t, err)
	assert.Equal(t, "direct-key", s.APIKey)
	assert.Equal(t, "https://google.serper.dev", s.BaseURL)
	assert.Equal(t, 10, s.Num)
	assert.Equal(t, "us", s.Country)
	assert.Equal(t, "en", s.Lang)

	// Options apply and the result count is clamped
	s, err = NewSerperSearch("direct-key",
		WithSerperNum(500),
		WithSerperCountry("de"),
		WithSerperLang("de"),
	)
	require.NoError(t, err)
	assert.Equal(t, 100, s.Num)
	assert.Equal(t, "de", s.Country)
	assert.Equal(t, "de", s.Lang)
}

func TestSerperSearch_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "latest go release", body["q"])
		assert.Equal(t, float64(10), body["num"])
		assert.Equal(t, "us", body["gl"])
		assert.Equal(t, "en", body["hl"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"answerBox": {"answer": "Go 1.25"},
			"knowledgeGraph": {"title": "Go", "type": "Programming language", "description": "Go is a statically typed language."},
			"organic": [
				{"title": "Go Blog", "link": "https://go.dev/blog", "snippet": "Release notes."},
				{"title": "Downloads", "link": "https://go.dev/dl", "snippet": "All releases."}
			]
		}`))
	}))
	defer server.Close()

	s, err := NewSerperSearch("test-key", WithSerperBaseURL(server.URL))
	require.NoError(t, err)

	result, err := s.Call(context.Background(), "latest go release")
	require.NoError(t, err)

	assert.Contains(t, result, "Answer: Go 1.25")
	assert.Contains(t, result, "Knowledge Graph: Go (Programming language)")
	assert.Contains(t, result, "1. Title: Go Blog")
	assert.Contains(t, result, "URL: https://go.dev/blog")
	assert.Contains(t, result, "2. Title: Downloads")

	// The answer box comes before organic results
	assert.Less(t, strings.Index(result, "Answer:"), strings.Index(result, "1. Title:"))
}

func TestSerperSearch_CallAnswerBoxSnippet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answerBox": {"snippet": "From the snippet field."}}`))
	}))
	defer server.Close()

	s, err := NewSerperSearch("test-key", WithSerperBaseURL(server.URL))
	require.NoError(t, err)

	result, err := s.Call(context.Background(), "anything")
	require.NoError(t, err)
	assert.Contains(t, result, "Answer: From the snippet field.")
}

func TestSerperSearch_CallNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	s, err := NewSerperSearch("test-key", WithSerperBaseURL(server.URL))
	require.NoError(t, err)

	result, err := s.Call(context.Background(), "nothing matches this")
	require.NoError(t, err)
	assert.Equal(t, "No results found", result)
}

func TestSerperSearch_CallAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	s, err := NewSerperSearch("test-key", WithSerperBaseURL(server.URL))
	require.NoError(t, err)

	_, err = s.Call(context.Background(), "query")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "serper api returned status: 403")
}

func TestSerperSearch_CallInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{invalid`))
	}))
	defer server.Close()

	s, err := NewSerperSearch("test-key", WithSerperBaseURL(server.URL))
	require.NoError(t, err)

	_, err = s.Call(context.Background(), "query")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestSerperSearch_NameAndDescription(t *testing.T) {
	s, err := NewSerperSearch("test-key")
	require.NoError(t, err)

	assert.Equal(t, "Google_Search", s.Name())
	assert.Contains(t, s.Description(), "current events")
}
