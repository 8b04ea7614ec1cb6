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
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// =========================================================================
// Ollama Wire Types
// =========================================================================

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature *float32 `json:"temperature,omitempty"`
	NumPredict  *int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// =========================================================================
// Client Implementation
// =========================================================================

// OllamaClient implements ChatClient against a local Ollama server's
// /api/chat endpoint with streaming disabled.
//
// Thread Safety: OllamaClient is safe for concurrent use.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewOllamaClient creates a client for the given Ollama server.
//
// Inputs:
//   - baseURL: Server base URL (e.g. "http://localhost:11434").
//   - model: The model name (e.g. "llama3.2").
//   - timeout: Per-call HTTP timeout. Local models can be slow on first
//     load, so this is typically longer than the remote tier's.
//
// Outputs:
//   - *OllamaClient: The configured client.
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

// Chat implements ChatClient against the Ollama chat API.
//
// Thread Safety: Safe for concurrent use.
func (o *OllamaClient) Chat(ctx context.Context, messages []datatypes.Message, opts ChatOptions) (string, error) {
	ctx, span := otel.Tracer(chatTracerName).Start(ctx, "backends.OllamaClient.Chat",
		trace.WithAttributes(
			attribute.String("provider", "ollama"),
			attribute.String("model", o.model),
			attribute.Int("message_count", len(messages)),
		),
	)
	defer span.End()

	start := time.Now()
	text, err := o.chat(ctx, messages, opts)
	recordChatMetrics("ollama", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return text, nil
}

func (o *OllamaClient) chat(ctx context.Context, messages []datatypes.Message, opts ChatOptions) (string, error) {
	if o.baseURL == "" {
		return "", NewBackendError("ollama", CodeUnavailable, errors.New("base URL is not configured"))
	}

	payload := ollamaChatRequest{
		Model:    o.model,
		Messages: make([]ollamaMessage, 0, len(messages)),
		Stream:   false,
	}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}
	if opts.Temperature >= 0 || opts.MaxTokens > 0 {
		options := &ollamaOptions{}
		if opts.Temperature >= 0 {
			temp := float32(opts.Temperature)
			options.Temperature = &temp
		}
		if opts.MaxTokens > 0 {
			options.NumPredict = &opts.MaxTokens
		}
		payload.Options = options
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", NewBackendError("ollama", CodeUnavailable, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewBuffer(body))
	if err != nil {
		return "", NewBackendError("ollama", CodeUnavailable, fmt.Errorf("creating HTTP request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("sending request to Ollama", slog.String("model", o.model))

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", NewBackendError("ollama", CodeTimeout, err)
		}
		return "", NewBackendError("ollama", CodeUnavailable, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewBackendError("ollama", CodeUnavailable, fmt.Errorf("reading response body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", NewBackendError("ollama", CodeUnavailable,
			fmt.Errorf("server returned status %d", resp.StatusCode))
	}

	var apiResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", NewBackendError("ollama", CodeUnavailable, fmt.Errorf("parsing response JSON: %w", err))
	}
	if apiResp.Error != "" {
		return "", NewBackendError("ollama", CodeUnavailable, fmt.Errorf("server error: %s", apiResp.Error))
	}
	if strings.TrimSpace(apiResp.Message.Content) == "" {
		return "", NewBackendError("ollama", CodeEmpty, errors.New("no completion text returned"))
	}
	return apiResp.Message.Content, nil
}
