// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package intent classifies a user question into one of the closed set of
// analytic categories by fuzzy-matching it against the pattern corpus.
package intent

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/config"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// =========================================================================
// Prometheus Metrics
// =========================================================================

var (
	// classificationsTotal counts classifications by resulting category.
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "analyst",
		Subsystem: "intent",
		Name:      "classifications_total",
		Help:      "Total intent classifications by resulting category",
	}, []string{"category"})

	// classificationConfidence observes the raw match score distribution.
	classificationConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "analyst",
		Subsystem: "intent",
		Name:      "confidence",
		Help:      "Distribution of raw intent match scores",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})
)

// =========================================================================
// Classifier
// =========================================================================

var (
	digitsRe        = regexp.MustCompile(`\d+`)
	questionWords   = []string{"what", "how", "why", "when", "where", "which", "who"}
	timeWords       = []string{"daily", "weekly", "monthly", "yearly", "today", "yesterday", "last", "next"}
	inferredColumns = []struct {
		triggers  []string
		fragments []string
	}{
		{[]string{"revenue", "sales", "money", "price"}, []string{"revenue", "sales", "price"}},
		{[]string{"product", "item"}, []string{"product", "item"}},
		{[]string{"customer", "client", "user"}, []string{"customer", "client", "user"}},
		{[]string{"region", "location", "area"}, []string{"region", "location"}},
	}
)

// Classifier scores questions against the shared pattern corpus. The
// corpus and synonym groups are loaded once and shared read-only, so a
// single Classifier is safe for concurrent use.
type Classifier struct {
	patterns []config.PatternEntry
	synonyms config.SynonymGroups
}

// NewClassifier builds a Classifier over the embedded corpus.
func NewClassifier() *Classifier {
	return &Classifier{
		patterns: config.LoadPatterns(),
		synonyms: config.MustLoadSynonyms(),
	}
}

// Classify matches a question against the pattern corpus.
//
// # Description
//
//	Lowercases and trims the question, expands it word by word with
//	synonym groups, then scores every corpus entry as
//	similarity(expanded, phrase) * entry base confidence, keeping the
//	single best entry. Ties keep the first entry encountered; the corpus
//	load order is fixed, so classification is deterministic. No minimum
//	score is enforced: a weak best match still wins and its low
//	confidence is the caller's signal. Target columns are the columns the
//	question names directly; when none are named, up to one column per
//	domain vocabulary group (revenue, product, customer, region) is
//	inferred from the schema.
//
// Inputs:
//   - question: The raw user question.
//   - ds: The active dataset, used for column resolution. May be nil.
//
// Outputs:
//   - datatypes.Intent: The best category, its score, resolved target
//     columns, and question metadata.
//
// Thread Safety: Safe for concurrent use.
func (c *Classifier) Classify(question string, ds *datatypes.Dataset) datatypes.Intent {
	lower := strings.ToLower(strings.TrimSpace(question))
	expanded := c.expandSynonyms(lower)

	best := datatypes.Intent{Category: datatypes.CategoryUnknown}
	for _, entry := range c.patterns {
		score := Similarity(expanded, entry.Phrase) * entry.Confidence
		if score > best.Confidence {
			best.Confidence = score
			best.Category = entry.Category
		}
	}

	best.Metadata = extractMetadata(lower)
	best.TargetColumns, best.Explicit = resolveTargets(lower, ds)

	classificationsTotal.WithLabelValues(string(best.Category)).Inc()
	classificationConfidence.Observe(best.Confidence)
	slog.Debug("classified question",
		slog.String("category", string(best.Category)),
		slog.Float64("confidence", best.Confidence),
		slog.Int("target_columns", len(best.TargetColumns)),
		slog.Bool("explicit", best.Explicit),
	)
	return best
}

// expandSynonyms appends each matched synonym group's full term list
// after the word that triggered it. Duplicates are intentional; the
// similarity metric works on word sets.
func (c *Classifier) expandSynonyms(lower string) string {
	words := strings.Fields(lower)
	expanded := make([]string, 0, len(words))
	for _, word := range words {
		expanded = append(expanded, word)
		for key, group := range c.synonyms {
			if word == key || containsWord(group, word) {
				expanded = append(expanded, group...)
				break
			}
		}
	}
	return strings.Join(expanded, " ")
}

func containsWord(group []string, word string) bool {
	for _, g := range group {
		if g == word {
			return true
		}
	}
	return false
}

func extractMetadata(lower string) datatypes.IntentMetadata {
	md := datatypes.IntentMetadata{
		HasNumber: digitsRe.MatchString(lower),
		WordCount: len(strings.Fields(lower)),
	}
	for _, w := range questionWords {
		if strings.Contains(lower, w) {
			md.HasQuestionWord = true
			break
		}
	}
	for _, w := range timeWords {
		if strings.Contains(lower, w) {
			md.HasTimeReference = true
			break
		}
	}
	for _, m := range digitsRe.FindAllString(lower, -1) {
		if n, err := strconv.Atoi(m); err == nil {
			md.Numbers = append(md.Numbers, n)
		}
	}
	return md
}

// resolveTargets returns the question's target columns and whether they
// were named explicitly. Explicit references always win; inference runs
// only when the question names no column at all.
func resolveTargets(lower string, ds *datatypes.Dataset) ([]string, bool) {
	if ds == nil {
		return nil, false
	}

	var targets []string
	for _, col := range ds.ReferencedColumns(lower) {
		targets = append(targets, col.Name)
	}
	if len(targets) > 0 {
		return targets, true
	}

	for _, rule := range inferredColumns {
		triggered := false
		for _, t := range rule.triggers {
			if strings.Contains(lower, t) {
				triggered = true
				break
			}
		}
		if !triggered {
			continue
		}
		for _, name := range ds.ColumnNames() {
			colLower := strings.ToLower(name)
			matched := false
			for _, frag := range rule.fragments {
				if strings.Contains(colLower, frag) {
					matched = true
					break
				}
			}
			if matched {
				targets = append(targets, name)
				break
			}
		}
	}
	return targets, false
}
