package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

// TestLLM_Create tests the LLM creation with various options.
func TestLLM_Create(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{
			name: "with api key",
			opts: []Option{
				WithAPIKey("test-key"),
			},
		},
		{
			name: "with api key and model",
			opts: []Option{
				WithAPIKey("test-key"),
				WithModel(ModelNameLlama33_70BVersatile),
			},
		},
		{
			name:    "without api key",
			opts:    nil,
			wantErr: ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GROQ_API_KEY", "")

			llm, err := New(tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if llm == nil {
				t.Error("New() returned nil LLM")
			}
		})
	}
}

func TestLLM_GenerateContent(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "meta-llama/llama-4-scout-17b-16e-instruct",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "Hello there"}, "finish_reason": "stop"}
			],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	llm, err := New(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("Failed to create LLM: %v", err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, "You are helpful."),
		llms.TextParts(llms.ChatMessageTypeHuman, "Hello"),
	}

	resp, err := llm.GenerateContent(context.Background(), messages, llms.WithTemperature(0.2))
	if err != nil {
		t.Fatalf("Failed to generate content: %v", err)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("Expected path /chat/completions, got %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth, got %s", gotAuth)
	}
	if gotReq["model"] != string(ModelNameLlama4Scout) {
		t.Errorf("Expected default model, got %v", gotReq["model"])
	}

	wireMsgs, ok := gotReq["messages"].([]any)
	if !ok || len(wireMsgs) != 2 {
		t.Fatalf("Expected 2 wire messages, got %v", gotReq["messages"])
	}
	first := wireMsgs[0].(map[string]any)
	second := wireMsgs[1].(map[string]any)
	if first["role"] != "system" || second["role"] != "user" {
		t.Errorf("Unexpected role mapping: %v, %v", first["role"], second["role"])
	}

	if len(resp.Choices) != 1 {
		t.Fatalf("Expected 1 choice, got %d", len(resp.Choices))
	}
	choice := resp.Choices[0]
	if choice.Content != "Hello there" {
		t.Errorf("Expected content 'Hello there', got '%s'", choice.Content)
	}
	if choice.StopReason != "stop" {
		t.Errorf("Expected stop reason 'stop', got '%s'", choice.StopReason)
	}
	if choice.GenerationInfo["total_tokens"] != 15 {
		t.Errorf("Expected 15 total tokens, got %v", choice.GenerationInfo["total_tokens"])
	}
}

func TestLLM_GenerateContent_ToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)

		if tools, ok := req["tools"].([]any); !ok || len(tools) != 1 {
			t.Errorf("Expected 1 tool in request, got %v", req["tools"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "meta-llama/llama-4-scout-17b-16e-instruct",
			"choices": [
				{
					"index": 0,
					"message": {
						"role": "assistant",
						"content": "",
						"tool_calls": [
							{"id": "call_1", "type": "function", "function": {"name": "web_search", "arguments": "{\"input\": \"weather\"}"}}
						]
					},
					"finish_reason": "tool_calls"
				}
			],
			"usage": {"prompt_tokens": 20, "completion_tokens": 10, "total_tokens": 30}
		}`))
	}))
	defer server.Close()

	llm, err := New(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("Failed to create LLM: %v", err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "What is the weather?"),
	}

	resp, err := llm.GenerateContent(context.Background(), messages, llms.WithTools([]llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "web_search",
				Description: "Search the web",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"input": map[string]any{"type": "string"},
					},
				},
			},
		},
	}))
	if err != nil {
		t.Fatalf("Failed to generate content: %v", err)
	}

	if len(resp.Choices) != 1 {
		t.Fatalf("Expected 1 choice, got %d", len(resp.Choices))
	}
	choice := resp.Choices[0]
	if choice.StopReason != "tool_calls" {
		t.Errorf("Expected stop reason 'tool_calls', got '%s'", choice.StopReason)
	}
	if len(choice.ToolCalls) != 1 {
		t.Fatalf("Expected 1 tool call, got %d", len(choice.ToolCalls))
	}
	tc := choice.ToolCalls[0]
	if tc.ID != "call_1" || tc.FunctionCall.Name != "web_search" {
		t.Errorf("Unexpected tool call: %+v", tc)
	}
	if !strings.Contains(tc.FunctionCall.Arguments, "weather") {
		t.Errorf("Expected arguments to carry the input, got %s", tc.FunctionCall.Arguments)
	}
}

func TestLLM_GenerateContent_Streaming(t *testing.T) {
	var gotReq map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(`data: {"id":"chatcmpl-test","object":"chat.completion.chunk","created":1700000000,"model":"meta-llama/llama-4-scout-17b-16e-instruct","choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"},"finish_reason":null}]}

data: {"id":"chatcmpl-test","object":"chat.completion.chunk","created":1700000000,"model":"meta-llama/llama-4-scout-17b-16e-instruct","choices":[{"index":0,"delta":{"content":"lo"},"finish_reason":null}]}

data: {"id":"chatcmpl-test","object":"chat.completion.chunk","created":1700000000,"model":"meta-llama/llama-4-scout-17b-16e-instruct","choices":[{"index":0,"delta":{"content":"!"},"finish_reason":"stop"}]}

data: [DONE]

`))
	}))
	defer server.Close()

	llm, err := New(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("Failed to create LLM: %v", err)
	}

	var deltas []string
	resp, err := llm.GenerateContent(
		context.Background(),
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "Hello")},
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			deltas = append(deltas, string(chunk))
			return nil
		}),
	)
	if err != nil {
		t.Fatalf("Failed to generate content: %v", err)
	}

	if gotReq["stream"] != true {
		t.Errorf("Expected stream=true in request, got %v", gotReq["stream"])
	}
	if got := strings.Join(deltas, "|"); got != "Hel|lo|!" {
		t.Errorf("Expected deltas Hel|lo|!, got %s", got)
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("Expected 1 choice, got %d", len(resp.Choices))
	}
	if resp.Choices[0].Content != "Hello!" {
		t.Errorf("Expected accumulated content 'Hello!', got '%s'", resp.Choices[0].Content)
	}
	if resp.Choices[0].StopReason != "stop" {
		t.Errorf("Expected stop reason 'stop', got '%s'", resp.Choices[0].StopReason)
	}
}

func TestLLM_GenerateContent_StreamingToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(`data: {"id":"chatcmpl-test","object":"chat.completion.chunk","created":1700000000,"model":"meta-llama/llama-4-scout-17b-16e-instruct","choices":[{"index":0,"delta":{"role":"assistant","tool_calls":[{"index":0,"id":"call_abc","type":"function","function":{"name":"web_search","arguments":""}}]},"finish_reason":null}]}

data: {"id":"chatcmpl-test","object":"chat.completion.chunk","created":1700000000,"model":"meta-llama/llama-4-scout-17b-16e-instruct","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"input\": \"gol"}}]},"finish_reason":null}]}

data: {"id":"chatcmpl-test","object":"chat.completion.chunk","created":1700000000,"model":"meta-llama/llama-4-scout-17b-16e-instruct","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"ang\"}"}}]},"finish_reason":"tool_calls"}]}

data: [DONE]

`))
	}))
	defer server.Close()

	llm, err := New(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("Failed to create LLM: %v", err)
	}

	resp, err := llm.GenerateContent(
		context.Background(),
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "Search for golang")},
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error { return nil }),
	)
	if err != nil {
		t.Fatalf("Failed to generate content: %v", err)
	}

	if len(resp.Choices) != 1 {
		t.Fatalf("Expected 1 choice, got %d", len(resp.Choices))
	}
	choice := resp.Choices[0]
	if choice.StopReason != "tool_calls" {
		t.Errorf("Expected stop reason 'tool_calls', got '%s'", choice.StopReason)
	}
	if len(choice.ToolCalls) != 1 {
		t.Fatalf("Expected 1 aggregated tool call, got %d", len(choice.ToolCalls))
	}
	tc := choice.ToolCalls[0]
	if tc.ID != "call_abc" || tc.Type != "function" {
		t.Errorf("Unexpected tool call identity: %+v", tc)
	}
	if tc.FunctionCall.Name != "web_search" {
		t.Errorf("Expected function name web_search, got %s", tc.FunctionCall.Name)
	}
	if tc.FunctionCall.Arguments != `{"input": "golang"}` {
		t.Errorf("Expected reassembled arguments, got %s", tc.FunctionCall.Arguments)
	}
}

func TestLLM_GenerateContent_ToolResponseRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)

		msgs := req["messages"].([]any)
		last := msgs[len(msgs)-1].(map[string]any)
		if last["role"] != "tool" || last["tool_call_id"] != "call_1" {
			t.Errorf("Expected trailing tool response message, got %v", last)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "meta-llama/llama-4-scout-17b-16e-instruct",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "It is sunny."}, "finish_reason": "stop"}
			],
			"usage": {"prompt_tokens": 30, "completion_tokens": 5, "total_tokens": 35}
		}`))
	}))
	defer server.Close()

	llm, err := New(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("Failed to create LLM: %v", err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "What is the weather?"),
		{
			Role: llms.ChatMessageTypeAI,
			Parts: []llms.ContentPart{
				llms.ToolCall{
					ID:   "call_1",
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      "web_search",
						Arguments: `{"input": "weather"}`,
					},
				},
			},
		},
		{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{
					ToolCallID: "call_1",
					Name:       "web_search",
					Content:    "Sunny, 25C",
				},
			},
		},
	}

	resp, err := llm.GenerateContent(context.Background(), messages)
	if err != nil {
		t.Fatalf("Failed to generate content: %v", err)
	}
	if resp.Choices[0].Content != "It is sunny." {
		t.Errorf("Unexpected content: %s", resp.Choices[0].Content)
	}
}

func TestLLM_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "meta-llama/llama-4-scout-17b-16e-instruct",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "memory"}, "finish_reason": "stop"}
			],
			"usage": {"prompt_tokens": 50, "completion_tokens": 1, "total_tokens": 51}
		}`))
	}))
	defer server.Close()

	llm, err := New(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
	)
	if err != nil {
		t.Fatalf("Failed to create LLM: %v", err)
	}

	out, err := llm.Call(context.Background(), "Classify this query")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out != "memory" {
		t.Errorf("Expected 'memory', got '%s'", out)
	}
}

// TestLLM_GenerateContent_Live tests the content generation with the real API.
// Skipped if GROQ_API_KEY is not set.
func TestLLM_GenerateContent_Live(t *testing.T) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		t.Skip("GROQ_API_KEY not set")
	}

	llm, err := New(
		WithAPIKey(apiKey),
		WithModel(ModelNameLlama31_8BInstant),
	)
	if err != nil {
		t.Fatalf("Failed to create LLM: %v", err)
	}

	resp, err := llm.GenerateContent(context.Background(), []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, "Hello, how are you?"),
	})
	if err != nil {
		t.Fatalf("Failed to generate content: %v", err)
	}

	if len(resp.Choices) == 0 {
		t.Fatal("No choices in response")
	}
	if resp.Choices[0].Content == "" {
		t.Error("Empty response content")
	}

	t.Logf("Response: %s", resp.Choices[0].Content)
	t.Logf("StopReason: %s", resp.Choices[0].StopReason)
}
