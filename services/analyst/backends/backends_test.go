// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backends

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

func chatMessages() []datatypes.Message {
	return []datatypes.Message{
		{Role: "system", Content: "You are an analyst."},
		{Role: "user", Content: "What is the total revenue?"},
	}
}

// =========================================================================
// OpenAI Client
// =========================================================================

func TestOpenAIChatSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization header = %q", got)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		w.Write([]byte(`{"id":"cmpl-1","choices":[{"index":0,"message":{"role":"assistant","content":"Total revenue is $900."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", "gpt-4o-mini", server.URL, 5*time.Second, nil)
	text, err := client.Chat(context.Background(), chatMessages(), ChatOptions{Temperature: 0.3, MaxTokens: 1000})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if text != "Total revenue is $900." {
		t.Errorf("Chat text = %q", text)
	}
}

func TestOpenAIChatMissingKey(t *testing.T) {
	client := NewOpenAIClient("", "gpt-4o-mini", "http://unused", time.Second, nil)
	_, err := client.Chat(context.Background(), chatMessages(), ChatOptions{Temperature: -1})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if CodeOf(err) != CodeUnavailable {
		t.Errorf("error code = %q, want %q", CodeOf(err), CodeUnavailable)
	}
}

func TestOpenAIChatServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", "gpt-4o-mini", server.URL, 5*time.Second, nil)
	_, err := client.Chat(context.Background(), chatMessages(), ChatOptions{Temperature: -1})
	if err == nil {
		t.Fatal("expected error for 500 status")
	}
	if CodeOf(err) != CodeUnavailable {
		t.Errorf("error code = %q, want %q", CodeOf(err), CodeUnavailable)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should mention the status code, got: %v", err)
	}
}

func TestOpenAIChatEmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"cmpl-2","choices":[]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", "gpt-4o-mini", server.URL, 5*time.Second, nil)
	_, err := client.Chat(context.Background(), chatMessages(), ChatOptions{Temperature: -1})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
	if CodeOf(err) != CodeEmpty {
		t.Errorf("error code = %q, want %q", CodeOf(err), CodeEmpty)
	}
}

func TestOpenAIChatContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", "gpt-4o-mini", server.URL, 5*time.Second, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, chatMessages(), ChatOptions{Temperature: -1})
	if err == nil {
		t.Fatal("expected error for expired context")
	}
	if CodeOf(err) != CodeTimeout {
		t.Errorf("error code = %q, want %q", CodeOf(err), CodeTimeout)
	}
}

func TestOpenAIChatRateLimited(t *testing.T) {
	limiter := NewRateLimiter(map[string]int{"openai": 1})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", "gpt-4o-mini", server.URL, 5*time.Second, limiter)
	if _, err := client.Chat(context.Background(), chatMessages(), ChatOptions{Temperature: -1}); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}
	_, err := client.Chat(context.Background(), chatMessages(), ChatOptions{Temperature: -1})
	if err == nil {
		t.Fatal("second call should be rate limited")
	}
	if !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("error should mention rate limit, got: %v", err)
	}
}

// =========================================================================
// Ollama Client
// =========================================================================

func TestOllamaChatSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("request path = %q, want /api/chat", r.URL.Path)
		}
		w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Revenue totals 900."},"done":true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.2", 5*time.Second)
	text, err := client.Chat(context.Background(), chatMessages(), ChatOptions{Temperature: 0.3})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if text != "Revenue totals 900." {
		t.Errorf("Chat text = %q", text)
	}
}

func TestOllamaChatBlankContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"   "},"done":true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.2", 5*time.Second)
	_, err := client.Chat(context.Background(), chatMessages(), ChatOptions{Temperature: -1})
	if err == nil {
		t.Fatal("expected error for blank content")
	}
	if CodeOf(err) != CodeEmpty {
		t.Errorf("error code = %q, want %q", CodeOf(err), CodeEmpty)
	}
}

func TestOllamaChatNoBaseURL(t *testing.T) {
	client := NewOllamaClient("", "llama3.2", time.Second)
	_, err := client.Chat(context.Background(), chatMessages(), ChatOptions{Temperature: -1})
	if err == nil {
		t.Fatal("expected error for unconfigured base URL")
	}
	if CodeOf(err) != CodeUnavailable {
		t.Errorf("error code = %q, want %q", CodeOf(err), CodeUnavailable)
	}
}

// =========================================================================
// Rate Limiter
// =========================================================================

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(map[string]int{"openai": 2})

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("openai"); !ok {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	ok, retryAfter := rl.Allow("openai")
	if ok {
		t.Fatal("third call within the window should be denied")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("retryAfter = %v, want within (0, 1m]", retryAfter)
	}
}

func TestRateLimiterNonPositiveBudgetUnlimited(t *testing.T) {
	rl := NewRateLimiter(map[string]int{"ollama": 0, "anthropic": -3})
	for i := 0; i < 10; i++ {
		if ok, _ := rl.Allow("ollama"); !ok {
			t.Fatal("zero budget should mean unlimited")
		}
		if ok, _ := rl.Allow("anthropic"); !ok {
			t.Fatal("negative budget should mean unlimited")
		}
	}
}

func TestRateLimiterUnconfiguredProvider(t *testing.T) {
	rl := NewRateLimiter(nil)
	if ok, _ := rl.Allow("openai"); !ok {
		t.Fatal("unconfigured provider should be allowed")
	}
}

// =========================================================================
// Error Classification
// =========================================================================

func TestClassifyChatError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"empty completion", NewBackendError("openai", CodeEmpty, errors.New("no completion text returned")), "empty"},
		{"deadline", NewBackendError("openai", CodeTimeout, context.DeadlineExceeded), "timeout"},
		{"auth", NewBackendError("openai", CodeUnavailable, errors.New("API returned status 401")), "auth"},
		{"rate limit", NewBackendError("openai", CodeUnavailable, errors.New("API returned status 429")), "rate_limit"},
		{"server", NewBackendError("openai", CodeUnavailable, errors.New("API returned status 503")), "server"},
		{"other", errors.New("connection refused"), "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyChatError(tc.err); got != tc.want {
				t.Errorf("classifyChatError(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

// =========================================================================
// Prompt Builder
// =========================================================================

func TestBuildMessagesIncludesContext(t *testing.T) {
	ds, err := datatypes.NewDataset(
		[]string{"product", "revenue"},
		[][]string{{"Widget", "100"}, {"Gadget", "250.5"}},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}

	convo := &datatypes.ConversationContext{}
	convo.Append("what are the top products", datatypes.Intent{Category: datatypes.CategoryRanking})

	messages := BuildMessages("what is the total revenue", ds, convo)
	if len(messages) != 3 {
		t.Fatalf("len(messages) = %d, want 3 (system, history, question)", len(messages))
	}
	if messages[0].Role != "system" || !strings.Contains(messages[0].Content, "expert data analyst") {
		t.Errorf("system message = %+v", messages[0])
	}
	if messages[1].Content != "what are the top products" {
		t.Errorf("history message = %q", messages[1].Content)
	}
	last := messages[len(messages)-1].Content
	for _, want := range []string{"2 rows, 2 columns", "revenue", "product", "what is the total revenue", "SAMPLE ROWS"} {
		if !strings.Contains(last, want) {
			t.Errorf("final prompt missing %q:\n%s", want, last)
		}
	}
}

func TestDataContextNilDataset(t *testing.T) {
	if got := DataContext(nil); !strings.Contains(got, "none loaded") {
		t.Errorf("DataContext(nil) = %q", got)
	}
}

func TestDataContextNumericSummary(t *testing.T) {
	ds, err := datatypes.NewDataset(
		[]string{"revenue"},
		[][]string{{"100"}, {"200"}, {"300"}},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	got := DataContext(ds)
	if !strings.Contains(got, "sum 600.00") || !strings.Contains(got, "mean 200.00") {
		t.Errorf("numeric summary missing from context:\n%s", got)
	}
}
