// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// =========================================================================
// OpenAI Wire Types
// =========================================================================

type openaiRequest struct {
	Model               string          `json:"model"`
	Messages            []openaiMessage `json:"messages"`
	Temperature         *float32        `json:"temperature,omitempty"`
	MaxCompletionTokens *int            `json:"max_completion_tokens,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	ID      string         `json:"id"`
	Choices []openaiChoice `json:"choices"`
	Error   *openaiError   `json:"error,omitempty"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// =========================================================================
// Client Implementation
// =========================================================================

// OpenAIClient implements ChatClient against the OpenAI chat completions
// REST API using raw net/http, no SDK.
//
// Thread Safety: OpenAIClient is safe for concurrent use.
type OpenAIClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	limiter    *RateLimiter
}

// NewOpenAIClient creates a client with explicit configuration.
//
// Inputs:
//   - apiKey: The OpenAI API key. Must be non-empty.
//   - model: The model name (e.g. "gpt-4o-mini").
//   - baseURL: The chat completions endpoint.
//   - timeout: Per-call HTTP timeout.
//   - limiter: Optional request rate limiter. May be nil.
//
// Outputs:
//   - *OpenAIClient: The configured client.
func NewOpenAIClient(apiKey, model, baseURL string, timeout time.Duration, limiter *RateLimiter) *OpenAIClient {
	return &OpenAIClient{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		limiter:    limiter,
	}
}

// Chat implements ChatClient using the OpenAI chat completions API.
//
// # Description
//
//	Sends the conversation as a single completion request. All failures
//	come back as *BackendError: transport and status problems as
//	unavailable, deadline hits as timeout, and a well-formed response
//	with no text as empty.
//
// Thread Safety: Safe for concurrent use.
func (o *OpenAIClient) Chat(ctx context.Context, messages []datatypes.Message, opts ChatOptions) (string, error) {
	ctx, span := otel.Tracer(chatTracerName).Start(ctx, "backends.OpenAIClient.Chat",
		trace.WithAttributes(
			attribute.String("provider", "openai"),
			attribute.Int("message_count", len(messages)),
		),
	)
	defer span.End()

	start := time.Now()
	text, err := o.chat(ctx, messages, opts)
	recordChatMetrics("openai", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return text, nil
}

func (o *OpenAIClient) chat(ctx context.Context, messages []datatypes.Message, opts ChatOptions) (string, error) {
	if o.apiKey == "" {
		return "", NewBackendError("openai", CodeUnavailable, errors.New("API key is missing"))
	}
	if o.limiter != nil {
		if ok, retryAfter := o.limiter.Allow("openai"); !ok {
			return "", NewBackendError("openai", CodeUnavailable,
				fmt.Errorf("rate limit reached, retry in %s", retryAfter))
		}
	}

	payload := openaiRequest{
		Model:    o.model,
		Messages: toOpenAIMessages(messages),
	}
	if opts.Temperature >= 0 {
		temp := float32(opts.Temperature)
		payload.Temperature = &temp
	}
	if opts.MaxTokens > 0 {
		payload.MaxCompletionTokens = &opts.MaxTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", NewBackendError("openai", CodeUnavailable, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return "", NewBackendError("openai", CodeUnavailable, fmt.Errorf("creating HTTP request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	slog.Debug("sending request to OpenAI", slog.String("model", o.model))

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", NewBackendError("openai", CodeTimeout, err)
		}
		return "", NewBackendError("openai", CodeUnavailable, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewBackendError("openai", CodeUnavailable, fmt.Errorf("reading response body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", NewBackendError("openai", CodeUnavailable,
			fmt.Errorf("API returned status %d", resp.StatusCode))
	}

	var apiResp openaiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", NewBackendError("openai", CodeUnavailable, fmt.Errorf("parsing response JSON: %w", err))
	}
	if apiResp.Error != nil {
		return "", NewBackendError("openai", CodeUnavailable,
			fmt.Errorf("API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message))
	}
	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
		return "", NewBackendError("openai", CodeEmpty, errors.New("no completion text returned"))
	}

	slog.Debug("received OpenAI chat response",
		slog.String("finish_reason", apiResp.Choices[0].FinishReason),
		slog.Int("response_len", len(apiResp.Choices[0].Message.Content)),
	)
	return apiResp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []datatypes.Message) []openaiMessage {
	out := make([]openaiMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		switch role {
		case "system", "user", "assistant":
		default:
			slog.Warn("unknown message role, mapping to user", slog.String("unknown_role", role))
			role = "user"
		}
		out = append(out, openaiMessage{Role: role, Content: m.Content})
	}
	return out
}
