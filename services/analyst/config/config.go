// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config holds the shared, immutable corpus data (synonym groups
// and the intent pattern corpus) and the engine configuration loaded from
// the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Provider constants for the configurable model backends.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Defaults for tunable engine parameters.
const (
	DefaultRemoteTimeout    = 30 * time.Second
	DefaultLocalTimeout     = 60 * time.Second
	DefaultRemoteRateLimit  = 60
	DefaultShortQuestion    = 6
	DefaultAnomalyThreshold = 3.0
)

// EngineConfig is the full configuration of the conversational analytics
// engine, loaded once at process start.
//
// Description:
//
//	The remote (OpenAI) tier is attempted only when OpenAIAPIKey is set.
//	The local (Ollama) tier is attempted only when OllamaBaseURL is set.
//	The deterministic tier needs no configuration and is always available.
type EngineConfig struct {
	// OpenAIAPIKey enables the remote tier when non-empty.
	OpenAIAPIKey string

	// OpenAIModel is the remote model identifier.
	OpenAIModel string `validate:"required"`

	// OpenAIBaseURL is the chat completions endpoint.
	OpenAIBaseURL string `validate:"required,url"`

	// OllamaBaseURL enables the local tier when non-empty.
	OllamaBaseURL string `validate:"omitempty,url"`

	// OllamaModel is the local model identifier.
	OllamaModel string

	// RemoteTimeout bounds a single remote-tier call.
	RemoteTimeout time.Duration `validate:"gt=0"`

	// LocalTimeout bounds a single local-tier call.
	LocalTimeout time.Duration `validate:"gt=0"`

	// RemoteRateLimit caps remote-tier requests per minute. Zero or
	// negative disables the cap.
	RemoteRateLimit int

	// ShortQuestionWords is the relevance gate's short-question threshold.
	ShortQuestionWords int `validate:"gt=0"`

	// AnomalyZThreshold is the z-score above which a value is flagged.
	AnomalyZThreshold float64 `validate:"gt=0"`
}

// LoadEngineConfig reads engine configuration from environment variables.
//
// # Description
//
//	Reads OPENAI_API_KEY, OPENAI_MODEL, OPENAI_BASE_URL, OLLAMA_BASE_URL
//	and OLLAMA_MODEL, applying defaults where unset. An empty OpenAI key
//	simply disables the remote tier; an empty Ollama URL disables the
//	local tier. Validation failures are configuration errors and abort
//	startup.
//
// # Outputs
//
//   - *EngineConfig: The validated configuration.
//   - error: Non-nil if validation fails.
func LoadEngineConfig() (*EngineConfig, error) {
	cfg := &EngineConfig{
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		OllamaBaseURL:      os.Getenv("OLLAMA_BASE_URL"),
		OllamaModel:        os.Getenv("OLLAMA_MODEL"),
		RemoteTimeout:      DefaultRemoteTimeout,
		LocalTimeout:       DefaultLocalTimeout,
		RemoteRateLimit:    DefaultRemoteRateLimit,
		ShortQuestionWords: DefaultShortQuestion,
		AnomalyZThreshold:  DefaultAnomalyThreshold,
	}

	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.OllamaBaseURL != "" && cfg.OllamaModel == "" {
		cfg.OllamaModel = "llama3.2"
		slog.Warn("OLLAMA_MODEL not set, defaulting to llama3.2")
	}

	if v := os.Getenv("ANALYST_REMOTE_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid ANALYST_REMOTE_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.RemoteTimeout = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("ANALYST_LOCAL_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid ANALYST_LOCAL_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.LocalTimeout = time.Duration(secs) * time.Second
	}
	if v := os.Getenv("ANALYST_REMOTE_RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid ANALYST_REMOTE_RATE_LIMIT %q: %w", v, err)
		}
		cfg.RemoteRateLimit = limit
	}
	if v := os.Getenv("ANALYST_ANOMALY_Z_THRESHOLD"); v != "" {
		z, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: invalid ANALYST_ANOMALY_Z_THRESHOLD %q: %w", v, err)
		}
		cfg.AnomalyZThreshold = z
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("engine configuration loaded",
		slog.Bool("remote_enabled", cfg.OpenAIAPIKey != ""),
		slog.Bool("local_enabled", cfg.OllamaBaseURL != ""),
		slog.String("remote_model", cfg.OpenAIModel),
		slog.String("local_model", cfg.OllamaModel),
	)
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *EngineConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}
