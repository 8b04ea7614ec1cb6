// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Synonym Configuration
// =============================================================================

//go:embed synonyms.yaml
var defaultSynonymsYAML []byte

// =============================================================================
// Synonym Types and Loading
// =============================================================================

// SynonymGroups maps canonical business/analytics terms to their
// interchangeable forms. Used by the intent classifier to expand a
// question into a synonym-augmented bag before pattern matching.
//
// The map is loaded from synonyms.yaml at startup and cached.
//
// # Thread Safety
//
// Safe for concurrent use after initialization (immutable after load).
type SynonymGroups map[string][]string

var (
	cachedSynonyms SynonymGroups
	synonymsOnce   sync.Once
	synonymsErr    error
)

// LoadSynonyms loads and caches the synonym groups from the embedded YAML
// configuration. Returns the cached result on subsequent calls.
//
// # Outputs
//
//   - SynonymGroups: The loaded mapping. Never nil on success.
//   - error: Non-nil if YAML parsing fails.
//
// # Thread Safety
//
// Safe for concurrent use (uses sync.Once internally).
func LoadSynonyms() (SynonymGroups, error) {
	synonymsOnce.Do(func() {
		var raw map[string][]string
		if err := yaml.Unmarshal(defaultSynonymsYAML, &raw); err != nil {
			synonymsErr = fmt.Errorf("parsing synonyms.yaml: %w", err)
			return
		}
		cachedSynonyms = raw
		slog.Info("synonym groups loaded",
			slog.Int("group_count", len(raw)),
		)
	})
	return cachedSynonyms, synonymsErr
}

// MustLoadSynonyms loads synonym groups or returns an empty map on error.
// Logs a warning if loading fails but does not panic; intent matching
// still works, just without synonym expansion.
//
// # Thread Safety
//
// Safe for concurrent use.
func MustLoadSynonyms() SynonymGroups {
	groups, err := LoadSynonyms()
	if err != nil {
		slog.Warn("synonym loading failed, continuing without expansion",
			slog.String("error", err.Error()),
		)
		return make(SynonymGroups)
	}
	return groups
}
