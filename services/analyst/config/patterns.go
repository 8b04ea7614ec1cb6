// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// =============================================================================
// Pattern Corpus
// =============================================================================

// PatternEntry is one phrase template in the intent corpus with the base
// confidence assigned to a perfect match.
//
// Entries are immutable and shared read-only across all sessions.
type PatternEntry struct {
	Phrase     string
	Category   datatypes.Category
	Confidence float64
}

var (
	cachedPatterns []PatternEntry
	patternsOnce   sync.Once
)

// LoadPatterns builds and caches the full pattern corpus.
//
// # Description
//
//	Patterns are generated programmatically from metric x entity x
//	template grids so that a handful of templates yields thousands of
//	concrete phrases. The corpus order is deterministic: ties during
//	matching are broken by the first entry encountered, so generation
//	order is part of the classifier's observable behavior.
//
// # Thread Safety
//
// Safe for concurrent use (uses sync.Once internally; result is
// immutable after load).
func LoadPatterns() []PatternEntry {
	patternsOnce.Do(func() {
		cachedPatterns = buildPatterns()
		slog.Info("intent pattern corpus loaded",
			slog.Int("pattern_count", len(cachedPatterns)),
		)
	})
	return cachedPatterns
}

func buildPatterns() []PatternEntry {
	var out []PatternEntry
	out = append(out, aggregationPatterns()...)
	out = append(out, rankingPatterns()...)
	out = append(out, trendPatterns()...)
	out = append(out, comparisonPatterns()...)
	out = append(out, statisticsPatterns()...)
	out = append(out, diagnosticPatterns()...)
	out = append(out, predictivePatterns()...)
	out = append(out, prescriptivePatterns()...)
	out = append(out, distributionPatterns()...)
	out = append(out, correlationPatterns()...)
	out = append(out, segmentationPatterns()...)
	out = append(out, anomalyPatterns()...)
	return out
}

// corpusMetrics is the metric vocabulary used for grid expansion.
var corpusMetrics = []string{
	"revenue", "sales", "profit", "cost", "price", "value", "amount",
	"quantity", "orders", "transactions", "customers", "users",
	"products", "items", "units",
}

func aggregationPatterns() []PatternEntry {
	var out []PatternEntry
	add := func(phrase string, conf float64) {
		out = append(out, PatternEntry{Phrase: phrase, Category: datatypes.CategoryAggregation, Confidence: conf})
	}
	for _, m := range corpusMetrics {
		add(fmt.Sprintf("what is the total %s", m), 0.95)
		add(fmt.Sprintf("total %s", m), 0.90)
		add(fmt.Sprintf("show me total %s", m), 0.90)
		add(fmt.Sprintf("calculate total %s", m), 0.90)
		add(fmt.Sprintf("sum of %s", m), 0.90)
		add(fmt.Sprintf("aggregate %s", m), 0.85)
		add(fmt.Sprintf("overall %s", m), 0.85)
		add(fmt.Sprintf("combined %s", m), 0.85)
		add(fmt.Sprintf("what's the %s", m), 0.80)
		add(fmt.Sprintf("%s total", m), 0.80)
		add(fmt.Sprintf("how much %s", m), 0.85)
		add(fmt.Sprintf("how many %s", m), 0.85)
		add(fmt.Sprintf("give me %s", m), 0.75)
		add(fmt.Sprintf("all %s", m), 0.80)
	}
	for _, m := range corpusMetrics {
		add(fmt.Sprintf("what is the average %s", m), 0.95)
		add(fmt.Sprintf("average %s", m), 0.90)
		add(fmt.Sprintf("mean %s", m), 0.90)
		add(fmt.Sprintf("avg %s", m), 0.85)
		add(fmt.Sprintf("typical %s", m), 0.80)
	}
	return out
}

var corpusEntities = []string{
	"product", "customer", "category", "region", "salesperson", "item",
	"store", "location", "brand", "supplier", "channel", "segment",
}

func rankingPatterns() []PatternEntry {
	var out []PatternEntry
	add := func(phrase string, conf float64) {
		out = append(out, PatternEntry{Phrase: phrase, Category: datatypes.CategoryRanking, Confidence: conf})
	}
	numbers := []string{"5", "10", "20", "3", "1", "100"}
	for _, e := range corpusEntities {
		for _, n := range numbers {
			add(fmt.Sprintf("top %s %ss", n, e), 0.95)
			add(fmt.Sprintf("best %s %ss", n, e), 0.95)
			add(fmt.Sprintf("show me top %s %ss", n, e), 0.90)
			add(fmt.Sprintf("what are the top %s %ss", n, e), 0.95)
			add(fmt.Sprintf("bottom %s %ss", n, e), 0.95)
		}
		add(fmt.Sprintf("top %s", e), 0.90)
		add(fmt.Sprintf("best %s", e), 0.90)
		add(fmt.Sprintf("which %s are best", e), 0.90)
		add(fmt.Sprintf("highest %s", e), 0.85)
		add(fmt.Sprintf("most %s", e), 0.80)
		add(fmt.Sprintf("worst %s", e), 0.90)
		add(fmt.Sprintf("lowest %s", e), 0.85)
		add(fmt.Sprintf("rank %s", e), 0.85)
		add(fmt.Sprintf("%s ranking", e), 0.85)
	}
	return out
}

func trendPatterns() []PatternEntry {
	var out []PatternEntry
	add := func(phrase string, conf float64) {
		out = append(out, PatternEntry{Phrase: phrase, Category: datatypes.CategoryTrend, Confidence: conf})
	}
	metrics := []string{"sales", "revenue", "profit", "orders", "customers", "growth"}
	timeframes := []string{"over time", "monthly", "weekly", "daily", "yearly", "quarterly"}
	for _, m := range metrics {
		for _, tf := range timeframes {
			add(fmt.Sprintf("%s %s", m, tf), 0.95)
			add(fmt.Sprintf("show %s %s", m, tf), 0.90)
			add(fmt.Sprintf("%s over %s", m, tf), 0.90)
		}
		add(fmt.Sprintf("trend in %s", m), 0.95)
		add(fmt.Sprintf("%s trend", m), 0.90)
		add(fmt.Sprintf("how is %s changing", m), 0.90)
		add(fmt.Sprintf("visualize %s", m), 0.85)
		add(fmt.Sprintf("%s progression", m), 0.85)
		add(fmt.Sprintf("is %s increasing", m), 0.90)
		add(fmt.Sprintf("is %s decreasing", m), 0.90)
	}
	return out
}

func comparisonPatterns() []PatternEntry {
	var out []PatternEntry
	add := func(phrase string, conf float64) {
		out = append(out, PatternEntry{Phrase: phrase, Category: datatypes.CategoryComparison, Confidence: conf})
	}
	for _, e := range []string{"region", "category", "product", "store", "channel", "segment"} {
		add(fmt.Sprintf("compare %s", e), 0.95)
		add(fmt.Sprintf("%s comparison", e), 0.90)
		add(fmt.Sprintf("%s vs %s", e, e), 0.90)
		add(fmt.Sprintf("difference between %s", e), 0.90)
		add(fmt.Sprintf("%s performance", e), 0.85)
		add(fmt.Sprintf("which %s is better", e), 0.90)
		add(fmt.Sprintf("%s breakdown", e), 0.85)
	}
	return out
}

func flatPatterns(cat datatypes.Category, entries map[string]float64, order []string) []PatternEntry {
	out := make([]PatternEntry, 0, len(order))
	for _, phrase := range order {
		out = append(out, PatternEntry{Phrase: phrase, Category: cat, Confidence: entries[phrase]})
	}
	return out
}

func statisticsPatterns() []PatternEntry {
	return flatPatterns(datatypes.CategoryStatistics, map[string]float64{
		"statistics": 0.90, "stats": 0.85, "summary": 0.90, "overview": 0.85,
		"key metrics": 0.90, "kpi": 0.85, "metrics": 0.80, "median": 0.85,
		"standard deviation": 0.90, "variance": 0.85, "percentile": 0.85,
	}, []string{
		"statistics", "stats", "summary", "overview", "key metrics", "kpi",
		"metrics", "median", "standard deviation", "variance", "percentile",
	})
}

func diagnosticPatterns() []PatternEntry {
	return flatPatterns(datatypes.CategoryDiagnostic, map[string]float64{
		"why": 0.90, "what caused": 0.95, "reason for": 0.90, "root cause": 0.95,
		"why did": 0.90, "explain": 0.85, "what happened": 0.85,
		"investigate": 0.85, "analyze": 0.80,
	}, []string{
		"why", "what caused", "reason for", "root cause", "why did",
		"explain", "what happened", "investigate", "analyze",
	})
}

func predictivePatterns() []PatternEntry {
	return flatPatterns(datatypes.CategoryPredictive, map[string]float64{
		"forecast": 0.95, "predict": 0.95, "future": 0.85, "next month": 0.90,
		"next quarter": 0.90, "next year": 0.90, "projection": 0.90,
		"expected": 0.85, "anticipated": 0.85, "likely": 0.80,
	}, []string{
		"forecast", "predict", "future", "next month", "next quarter",
		"next year", "projection", "expected", "anticipated", "likely",
	})
}

func prescriptivePatterns() []PatternEntry {
	return flatPatterns(datatypes.CategoryPrescriptive, map[string]float64{
		"recommend": 0.95, "suggestion": 0.90, "what should": 0.95,
		"how can i improve": 0.95, "optimize": 0.90, "best action": 0.90,
		"advice": 0.85, "strategy": 0.85,
	}, []string{
		"recommend", "suggestion", "what should", "how can i improve",
		"optimize", "best action", "advice", "strategy",
	})
}

func distributionPatterns() []PatternEntry {
	return flatPatterns(datatypes.CategoryDistribution, map[string]float64{
		"distribution": 0.95, "spread": 0.85, "histogram": 0.90,
		"frequency": 0.85, "range": 0.80,
	}, []string{"distribution", "spread", "histogram", "frequency", "range"})
}

func correlationPatterns() []PatternEntry {
	return flatPatterns(datatypes.CategoryCorrelation, map[string]float64{
		"correlation": 0.95, "relationship": 0.90, "related": 0.85,
		"impact": 0.85, "effect": 0.80, "influence": 0.85,
	}, []string{"correlation", "relationship", "related", "impact", "effect", "influence"})
}

func segmentationPatterns() []PatternEntry {
	return flatPatterns(datatypes.CategorySegmentation, map[string]float64{
		"segment": 0.90, "cluster": 0.90, "break down by": 0.90, "split by": 0.85,
	}, []string{"segment", "cluster", "break down by", "split by"})
}

func anomalyPatterns() []PatternEntry {
	return flatPatterns(datatypes.CategoryAnomaly, map[string]float64{
		"anomaly": 0.95, "outlier": 0.95, "unusual": 0.90, "strange": 0.85,
		"unexpected": 0.90, "irregular": 0.85,
	}, []string{"anomaly", "outlier", "unusual", "strange", "unexpected", "irregular"})
}
