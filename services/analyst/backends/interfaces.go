// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package backends holds the model-tier chat clients (remote OpenAI and
// local Ollama) plus the prompt construction they share. The
// deterministic tier lives elsewhere; everything here is allowed to
// fail, and failures are typed so the orchestrator can fall through.
package backends

import (
	"context"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// ChatOptions carries per-call generation parameters.
type ChatOptions struct {
	// Temperature in [0,2]; negative means provider default.
	Temperature float64

	// MaxTokens caps the completion length; zero means provider default.
	MaxTokens int
}

// ChatClient is a text-generation backend reachable by request/response.
//
// Description:
//
//	Implementations send the full conversation each call and return the
//	assistant's reply text. Errors should be *BackendError so the
//	orchestrator can label the failure; a plain error is treated as
//	unavailable.
//
// Thread Safety: Implementations must be safe for concurrent use.
type ChatClient interface {
	Chat(ctx context.Context, messages []datatypes.Message, opts ChatOptions) (string, error)
}
