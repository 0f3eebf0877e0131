package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/smallnest/hybridchat/llms/groq"
)

// Config holds the application configuration.
type Config struct {
	// LLM configuration
	GroqAPIKey  string
	Model       string
	Temperature float64

	// Tool configuration
	SerpAPIKey       string
	WikipediaBaseURL string

	// Logging
	LogLevel string
}

// loadEnv seeds the environment from a .env file if one exists. Real
// environment variables win; values already set are never overridden.
func loadEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading %s file: %v", path, err)
		return
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		if key == "" || os.Getenv(key) != "" {
			continue
		}
		os.Setenv(key, value)
	}
}

// unquote strips one pair of matching surrounding quotes.
func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	first, last := value[0], value[len(value)-1]
	if first == last && (first == '"' || first == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}

// loadConfig loads configuration from environment variables with sensible
// defaults.
func loadConfig() Config {
	return Config{
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		Model:            getEnv("GROQ_MODEL", string(groq.ModelNameLlama4Scout)),
		Temperature:      getEnvFloat("GROQ_TEMPERATURE", 0.2),
		SerpAPIKey:       os.Getenv("SERP_API_KEY"),
		WikipediaBaseURL: os.Getenv("WIKIPEDIA_BASE_URL"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

// validateConfig validates that required configuration is present.
func validateConfig(cfg Config) {
	if cfg.GroqAPIKey == "" {
		log.Fatal("GROQ_API_KEY environment variable is required")
	}
	if cfg.SerpAPIKey == "" {
		log.Fatal("SERP_API_KEY environment variable is required")
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value.
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid %s value %q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}
