// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the shared types that cross package boundaries
// inside the analyst service: the tabular dataset, the classified intent,
// analytics results, chart specifications, and the answer envelope that is
// the single output contract of the engine.
//
// Thread Safety:
//
//	Most types in this package are plain data created per request and
//	never shared. A Dataset is immutable after construction and safe to
//	share across goroutines. A ConversationContext is shared across the
//	requests of one session and synchronizes internally.
package datatypes

import "sync"

// =============================================================================
// Intent Categories
// =============================================================================

// Category is the closed set of question intents the engine can dispatch.
//
// Description:
//
//	Each category maps to exactly one deterministic analytics strategy.
//	The set is closed: the dispatcher switches exhaustively over these
//	values, and anything else is treated as CategoryUnknown.
type Category string

const (
	CategoryAggregation  Category = "aggregation"
	CategoryRanking      Category = "ranking"
	CategoryTrend        Category = "trend"
	CategoryComparison   Category = "comparison"
	CategoryStatistics   Category = "statistics"
	CategoryDiagnostic   Category = "diagnostic"
	CategoryPredictive   Category = "predictive"
	CategoryPrescriptive Category = "prescriptive"
	CategoryDistribution Category = "distribution"
	CategoryCorrelation  Category = "correlation"
	CategorySegmentation Category = "segmentation"
	CategoryAnomaly      Category = "anomaly"
	CategoryUnknown      Category = "unknown"
)

// AllCategories lists every dispatchable category (excludes unknown).
var AllCategories = []Category{
	CategoryAggregation, CategoryRanking, CategoryTrend, CategoryComparison,
	CategoryStatistics, CategoryDiagnostic, CategoryPredictive,
	CategoryPrescriptive, CategoryDistribution, CategoryCorrelation,
	CategorySegmentation, CategoryAnomaly,
}

// =============================================================================
// Answer Envelope
// =============================================================================

// Tier identifies which backend produced an answer.
type Tier string

const (
	TierRemote        Tier = "remote"
	TierLocal         Tier = "local"
	TierDeterministic Tier = "deterministic"
	TierGate          Tier = "gate"
)

// AnswerEnvelope is the single normalized response object returned to the
// caller regardless of which backend tier answered.
//
// Description:
//
//	Every path through the engine terminates in a well-formed envelope.
//	Chart is nil when no visualization applies. Recommendations may be
//	empty but is never nil after the engine normalizes it.
type AnswerEnvelope struct {
	Answer          string     `json:"answer"`
	Confidence      float64    `json:"confidence"`
	Chart           *ChartSpec `json:"chart"`
	Recommendations []string   `json:"recommendations"`
	Source          Tier       `json:"source"`
	ElapsedSeconds  float64    `json:"elapsed_seconds"`
}

// =============================================================================
// Chart Specification
// =============================================================================

// ChartKind is the closed set of chart presentations.
type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartLine    ChartKind = "line"
	ChartPie     ChartKind = "pie"
	ChartMetrics ChartKind = "metrics"
	ChartNone    ChartKind = "none"
)

// ChartSpec is a backend-agnostic description of a chart's data, not a
// rendered image.
//
// Invariant: len(X) == len(Y) whenever Kind is bar, line, or pie.
// For ChartMetrics, X holds metric names and Y the corresponding values
// for card-style display.
type ChartSpec struct {
	Kind  ChartKind `json:"kind"`
	X     []any     `json:"x"`
	Y     []float64 `json:"y"`
	Title string    `json:"title"`
}

// =============================================================================
// Intent
// =============================================================================

// IntentMetadata holds category-independent signals extracted from the
// question text.
type IntentMetadata struct {
	HasNumber        bool  `json:"has_number"`
	HasQuestionWord  bool  `json:"has_question_word"`
	HasTimeReference bool  `json:"has_time_reference"`
	WordCount        int   `json:"word_count"`
	Numbers          []int `json:"numbers,omitempty"`
}

// Intent is the classified purpose of a single question.
//
// Description:
//
//	Created fresh per question and never persisted beyond the request.
//	TargetColumns lists dataset columns the question referenced, with
//	Explicit true when at least one was matched by name rather than
//	inferred from type.
type Intent struct {
	Category      Category       `json:"category"`
	Confidence    float64        `json:"confidence"`
	TargetColumns []string       `json:"target_columns"`
	Explicit      bool           `json:"explicit"`
	Metadata      IntentMetadata `json:"metadata"`
}

// =============================================================================
// Gate Result
// =============================================================================

// GateResult is the outcome of the relevance gate's pre-filter.
type GateResult struct {
	IsVague     bool     `json:"is_vague"`
	Guidance    string   `json:"guidance,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// =============================================================================
// Analytics Result
// =============================================================================

// Ranking holds a grouped, ordered ranking of categorical labels by an
// aggregated numeric value.
type Ranking struct {
	Labels         []string  `json:"labels"`
	Values         []float64 `json:"values"`
	CategoryColumn string    `json:"category_column"`
	ValueColumn    string    `json:"value_column"`
	Direction      string    `json:"direction"` // "top" or "bottom"
}

// Trend holds a chronologically ordered series with its classified direction.
type Trend struct {
	Keys        []string  `json:"keys"`
	Values      []float64 `json:"values"`
	ValueColumn string    `json:"value_column"`
	DateColumn  string    `json:"date_column"`
	Direction   string    `json:"direction"` // "increasing", "decreasing", "stable"
	ChangePct   float64   `json:"change_pct"`
}

// ComparisonGroup is one segment's aggregates in a comparison.
type ComparisonGroup struct {
	Label string  `json:"label"`
	Sum   float64 `json:"sum"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Comparison holds per-group aggregates of a numeric column.
type Comparison struct {
	CategoryColumn string            `json:"category_column"`
	ValueColumn    string            `json:"value_column"`
	Groups         []ComparisonGroup `json:"groups"`
}

// ColumnStats is the statistical summary of one numeric column.
type ColumnStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ForecastPoint is one projected value in a predictive result.
type ForecastPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// CorrelationPair is the Pearson correlation between two numeric columns.
type CorrelationPair struct {
	ColumnA string  `json:"column_a"`
	ColumnB string  `json:"column_b"`
	R       float64 `json:"r"`
	Strong  bool    `json:"strong"`
}

// Distribution holds a percentile summary of a numeric column plus the
// frequency breakdown of a categorical column when one exists.
type Distribution struct {
	ValueColumn string             `json:"value_column,omitempty"`
	Percentiles map[string]float64 `json:"percentiles,omitempty"`
	FreqColumn  string             `json:"freq_column,omitempty"`
	FreqLabels  []string           `json:"freq_labels,omitempty"`
	FreqCounts  []float64          `json:"freq_counts,omitempty"`
}

// Outlier is a single flagged row value.
type Outlier struct {
	Column string  `json:"column"`
	Row    int     `json:"row"`
	Value  float64 `json:"value"`
	ZScore float64 `json:"z_score"`
}

// AnalyticsResult is the category-tagged output of the dispatcher, consumed
// immediately by the synthesizer and composer and never persisted.
//
// Description:
//
//	Values carries scalar metrics keyed "<column>_sum" / "<column>_mean" /
//	"<column>_count"; ValueOrder preserves insertion order for stable
//	presentation. The typed fields are populated per category and nil
//	otherwise.
type AnalyticsResult struct {
	Category     Category               `json:"category"`
	Values       map[string]float64     `json:"values,omitempty"`
	ValueOrder   []string               `json:"-"`
	Ranking      *Ranking               `json:"ranking,omitempty"`
	Trend        *Trend                 `json:"trend,omitempty"`
	Comparison   *Comparison            `json:"comparison,omitempty"`
	Stats        map[string]ColumnStats `json:"stats,omitempty"`
	StatsOrder   []string               `json:"-"`
	Forecast     []ForecastPoint        `json:"forecast,omitempty"`
	Correlations []CorrelationPair      `json:"correlations,omitempty"`
	Distribution *Distribution          `json:"distribution,omitempty"`
	Outliers     []Outlier              `json:"outliers,omitempty"`
}

// SetValue records a named scalar, preserving first-insertion order.
func (r *AnalyticsResult) SetValue(name string, v float64) {
	if r.Values == nil {
		r.Values = make(map[string]float64)
	}
	if _, seen := r.Values[name]; !seen {
		r.ValueOrder = append(r.ValueOrder, name)
	}
	r.Values[name] = v
}

// Empty reports whether the dispatcher produced no usable output, which
// downstream stages treat as a resolution failure (reduced confidence,
// generic answer) rather than an error.
func (r *AnalyticsResult) Empty() bool {
	if r == nil {
		return true
	}
	return len(r.Values) == 0 && r.Ranking == nil && r.Trend == nil &&
		r.Comparison == nil && len(r.Stats) == 0 && len(r.Forecast) == 0 &&
		len(r.Correlations) == 0 && r.Distribution == nil && len(r.Outliers) == 0
}

// =============================================================================
// Conversation
// =============================================================================

// Message is a single chat message sent to a model backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn records one answered question for session history.
type Turn struct {
	Question string `json:"question"`
	Intent   Intent `json:"intent"`
}

// ConversationContext is the append-only history of prior turns in a
// session. It biases future matching but is never required for the
// correctness of a single turn.
//
// Thread Safety: Safe for concurrent use. Concurrent questions on the
// same session append through the internal mutex.
type ConversationContext struct {
	mu    sync.Mutex
	turns []Turn
}

// Append records a turn.
func (c *ConversationContext) Append(question string, intent Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, Turn{Question: question, Intent: intent})
}

// Reset clears the history.
func (c *ConversationContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
}

// History returns a copy of the recorded turns in order.
func (c *ConversationContext) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len reports the number of recorded turns.
func (c *ConversationContext) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}
