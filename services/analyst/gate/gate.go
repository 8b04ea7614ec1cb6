// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package gate implements the relevance pre-filter that runs before any
// analytics. It rejects greetings, off-topic chatter, and under-specified
// questions, and synthesizes example questions from the dataset's actual
// columns so the user knows what to ask instead.
package gate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// =========================================================================
// Static Vocabulary
// =========================================================================

// greetings are matched exactly against the trimmed, lowercased question.
var greetings = map[string]struct{}{
	"hi":        {},
	"hello":     {},
	"hey":       {},
	"thanks":    {},
	"thank you": {},
	"bye":       {},
	"goodbye":   {},
}

// offTopicKeywords reject a question wherever they appear in it.
var offTopicKeywords = []string{
	"weather", "news", "sports", "politics", "recipe", "movie", "music",
	"game", "celebrity", "joke", "story", "poem", "song",
}

// vaguePatterns reject only when the question is also short. A long
// question containing "help" usually carries real content after it.
var vaguePatterns = []string{
	"tell me something", "anything", "what can you do", "help",
	"what is this", "explain", "describe this", "tell me about",
}

// dataKeywords mark a question as plausibly answerable from tabular data.
var dataKeywords = []string{
	"total", "sum", "average", "mean", "count", "how many", "show",
	"top", "bottom", "best", "worst", "trend", "forecast", "predict",
	"compare", "analysis", "revenue", "sales", "customer", "product",
}

// =========================================================================
// Gate
// =========================================================================

// Gate is the relevance pre-filter. It is stateless and safe for
// concurrent use.
type Gate struct {
	// ShortQuestionWords is the word count below which a question with no
	// data vocabulary and no column reference is rejected.
	ShortQuestionWords int
}

// New returns a Gate with the given short-question threshold.
func New(shortQuestionWords int) *Gate {
	return &Gate{ShortQuestionWords: shortQuestionWords}
}

// Evaluate decides whether a question is specific enough to analyze.
//
// # Description
//
//	Applies four checks in order: exact greeting match, off-topic keyword
//	containment, vague-phrase containment on short questions, and a
//	short-question check requiring at least one data keyword or column
//	reference. The first check that fires produces a GateResult with
//	guidance text and suggested questions derived from the dataset's
//	actual columns. A question that passes every check returns
//	IsVague=false.
//
// Inputs:
//   - question: The raw user question.
//   - ds: The active dataset, used only for its schema. May be nil.
//
// Outputs:
//   - datatypes.GateResult: The gate decision.
//
// Thread Safety: Safe for concurrent use. Pure function of its inputs.
func (g *Gate) Evaluate(question string, ds *datatypes.Dataset) datatypes.GateResult {
	lower := strings.ToLower(strings.TrimSpace(question))
	words := len(strings.Fields(lower))

	if _, ok := greetings[lower]; ok {
		slog.Debug("gate rejected greeting", slog.String("question", lower))
		return datatypes.GateResult{
			IsVague: true,
			Guidance: "Hello! I'm your analytics assistant. I can answer specific " +
				"questions about your dataset. To get started, try asking about your data.",
			Suggestions: SuggestQuestions(ds),
		}
	}

	for _, kw := range offTopicKeywords {
		if strings.Contains(lower, kw) {
			slog.Debug("gate rejected off-topic question",
				slog.String("keyword", kw),
				slog.Int("word_count", words),
			)
			return datatypes.GateResult{
				IsVague: true,
				Guidance: fmt.Sprintf("I'm designed to analyze your data, so I can't help "+
					"with %s-related questions. Here are some questions I can answer:", kw),
				Suggestions: SuggestQuestions(ds),
			}
		}
	}

	if words < g.ShortQuestionWords {
		for _, pattern := range vaguePatterns {
			if strings.Contains(lower, pattern) {
				slog.Debug("gate rejected vague question",
					slog.String("pattern", pattern),
					slog.Int("word_count", words),
				)
				return datatypes.GateResult{
					IsVague: true,
					Guidance: "Your question is a bit general. To provide meaningful " +
						"insights, I need a specific question about your data. " +
						"Here are some examples based on your dataset:",
					Suggestions: SuggestQuestions(ds),
				}
			}
		}

		if !hasDataKeyword(lower) && !mentionsColumn(lower, ds) {
			slog.Debug("gate rejected short non-data question",
				slog.Int("word_count", words),
			)
			return datatypes.GateResult{
				IsVague: true,
				Guidance: fmt.Sprintf("I'm not sure how to analyze %q with your current "+
					"dataset. Could you be more specific? For example, you might ask:", question),
				Suggestions: SuggestQuestions(ds),
			}
		}
	}

	return datatypes.GateResult{IsVague: false}
}

func hasDataKeyword(lower string) bool {
	for _, kw := range dataKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func mentionsColumn(lower string, ds *datatypes.Dataset) bool {
	if ds == nil {
		return false
	}
	for _, name := range ds.ColumnNames() {
		if datatypes.Mentions(lower, name) {
			return true
		}
	}
	return false
}

// =========================================================================
// Suggestion Synthesis
// =========================================================================

const maxSuggestions = 6

// SuggestQuestions builds up to six example questions from the dataset's
// columns. Revenue-like, product-like, region-like, date-like, and
// customer-like columns each contribute a template; generic summary
// prompts pad the list when fewer than three were derived.
func SuggestQuestions(ds *datatypes.Dataset) []string {
	if ds == nil || len(ds.ColumnNames()) == 0 {
		return []string{
			"What is the total revenue?",
			"Show me the top 5 products",
			"How have sales trended over time?",
		}
	}

	numeric := columnNames(ds.NumericColumns())
	categorical := columnNames(ds.CategoricalColumns())
	temporal := columnNames(ds.TemporalColumns())

	var suggestions []string
	spoken := func(col string) string {
		return strings.ReplaceAll(col, "_", " ")
	}

	if col := firstMatching(numeric, "revenue", "sales", "amount", "total", "price"); col != "" {
		suggestions = append(suggestions, fmt.Sprintf("What is the total %s?", spoken(col)))
	}
	if col := firstMatching(categorical, "product", "item", "category", "type"); col != "" && len(numeric) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Show me the top 5 %s", spoken(col)))
	}
	if col := firstMatching(categorical, "region", "location", "segment", "group", "category"); col != "" && len(numeric) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Compare %s performance", spoken(col)))
	}
	if len(temporal) > 0 && len(numeric) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Show me trends in %s over time", spoken(numeric[0])))
	}
	if len(numeric) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("What is the average %s?", spoken(numeric[0])))
	}
	if col := firstMatching(categorical, "customer", "client", "user"); col != "" {
		suggestions = append(suggestions, fmt.Sprintf("How many unique %s do we have?", spoken(col)))
	}

	if len(suggestions) < 3 {
		suggestions = append(suggestions,
			"Give me a summary of the data",
			"What are the key statistics?",
			"What insights can you find?",
		)
	}
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

func columnNames(cols []*datatypes.Column) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names
}

// firstMatching returns the first column whose lowercased name contains
// any of the given fragments, or "" when none match.
func firstMatching(columns []string, fragments ...string) string {
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, frag := range fragments {
			if strings.Contains(lower, frag) {
				return col
			}
		}
	}
	return ""
}
