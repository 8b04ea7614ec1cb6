// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dispatch executes one deterministic analytic strategy per
// intent category against the active dataset. Strategies never raise:
// when a required column role cannot be filled, they return an empty
// category-tagged result and downstream stages degrade gracefully.
package dispatch

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// =========================================================================
// Prometheus Metrics
// =========================================================================

var (
	// executionsTotal counts dispatcher executions by category and outcome.
	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "analyst",
		Subsystem: "dispatch",
		Name:      "executions_total",
		Help:      "Total dispatcher executions by category and outcome",
	}, []string{"category", "outcome"})
)

// =========================================================================
// Dispatcher
// =========================================================================

const rankingLimit = 5

// bottomWords flip a ranking to ascending order.
var bottomWords = []string{"bottom", "worst", "lowest"}

// Dispatcher routes an intent category to its deterministic strategy.
// It holds only immutable configuration and is safe for concurrent use.
type Dispatcher struct {
	// AnomalyZ is the z-score magnitude above which a value is flagged.
	AnomalyZ float64
}

// New returns a Dispatcher with the given anomaly threshold.
func New(anomalyZ float64) *Dispatcher {
	return &Dispatcher{AnomalyZ: anomalyZ}
}

// Execute runs the strategy for the intent's category.
//
// # Description
//
//	Switches exhaustively over the closed category set. Every strategy
//	shares one column-resolution rule: explicitly named target columns
//	of the right kind beat the dataset's first column of that kind, and
//	a role that cannot be filled at all yields an empty result instead
//	of an error. An unknown category falls back to the statistics
//	summary so the deterministic tier always has something to say.
//
// Inputs:
//   - intent: The classified intent carrying category and target columns.
//   - question: The lowercased original question, used for direction words.
//   - ds: The active dataset. A nil dataset yields an empty result.
//
// Outputs:
//   - *datatypes.AnalyticsResult: Never nil.
//
// Thread Safety: Safe for concurrent use.
func (d *Dispatcher) Execute(intent datatypes.Intent, question string, ds *datatypes.Dataset) *datatypes.AnalyticsResult {
	res := &datatypes.AnalyticsResult{Category: intent.Category}
	if ds == nil {
		executionsTotal.WithLabelValues(string(intent.Category), "empty").Inc()
		return res
	}

	lower := strings.ToLower(question)
	switch intent.Category {
	case datatypes.CategoryAggregation:
		d.aggregate(res, intent.TargetColumns, ds)
	case datatypes.CategoryRanking:
		d.rank(res, intent.TargetColumns, lower, ds)
	case datatypes.CategoryTrend:
		d.trend(res, intent.TargetColumns, ds)
	case datatypes.CategoryComparison:
		d.compare(res, intent.TargetColumns, ds)
	case datatypes.CategoryStatistics:
		d.statistics(res, ds)
	case datatypes.CategoryDiagnostic:
		d.diagnose(res, intent.TargetColumns, ds)
	case datatypes.CategoryPredictive:
		d.forecast(res, intent.TargetColumns, ds)
	case datatypes.CategoryPrescriptive:
		d.prescribe(res, intent.TargetColumns, ds)
	case datatypes.CategoryDistribution:
		d.distribution(res, intent.TargetColumns, ds)
	case datatypes.CategoryCorrelation:
		d.correlate(res, ds)
	case datatypes.CategorySegmentation:
		d.segment(res, intent.TargetColumns, ds)
	case datatypes.CategoryAnomaly:
		d.anomalies(res, ds)
	case datatypes.CategoryUnknown:
		d.statistics(res, ds)
	}

	outcome := "ok"
	if res.Empty() {
		outcome = "empty"
	}
	executionsTotal.WithLabelValues(string(intent.Category), outcome).Inc()
	slog.Debug("dispatched analytics",
		slog.String("category", string(intent.Category)),
		slog.String("outcome", outcome),
	)
	return res
}

// =========================================================================
// Core Strategies
// =========================================================================

// aggregate computes sum, mean and non-null count for every targeted
// numeric column. With no numeric column anywhere, it reports the row
// count so the answer still carries a number.
func (d *Dispatcher) aggregate(res *datatypes.AnalyticsResult, targets []string, ds *datatypes.Dataset) {
	cols := targetNumericColumns(targets, ds)
	if len(cols) == 0 {
		res.SetValue("total_records", float64(ds.RowCount()))
		return
	}
	for _, col := range cols {
		vals := col.NonNullNumbers()
		res.SetValue(col.Name+"_sum", sum(vals))
		res.SetValue(col.Name+"_mean", mean(vals))
		res.SetValue(col.Name+"_count", float64(len(vals)))
	}
}

func (d *Dispatcher) rank(res *datatypes.AnalyticsResult, targets []string, lower string, ds *datatypes.Dataset) {
	catCol := resolveColumn(targets, ds, datatypes.KindCategorical)
	numCol := resolveColumn(targets, ds, datatypes.KindNumeric)
	if catCol == nil || numCol == nil {
		return
	}

	labels, values := groupSums(catCol, numCol)
	if len(labels) == 0 {
		return
	}

	ascending := false
	for _, w := range bottomWords {
		if strings.Contains(lower, w) {
			ascending = true
			break
		}
	}

	// Stable sort keeps the grouping order for equal sums.
	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if ascending {
			return values[idx[a]] < values[idx[b]]
		}
		return values[idx[a]] > values[idx[b]]
	})
	if len(idx) > rankingLimit {
		idx = idx[:rankingLimit]
	}

	ranking := &datatypes.Ranking{
		CategoryColumn: catCol.Name,
		ValueColumn:    numCol.Name,
		Direction:      "top",
	}
	if ascending {
		ranking.Direction = "bottom"
	}
	for _, i := range idx {
		ranking.Labels = append(ranking.Labels, labels[i])
		ranking.Values = append(ranking.Values, values[i])
	}
	res.Ranking = ranking
}

func (d *Dispatcher) trend(res *datatypes.AnalyticsResult, targets []string, ds *datatypes.Dataset) {
	series := d.dateSeries(targets, ds)
	if series == nil {
		return
	}
	series.Direction, series.ChangePct = classifyTrend(series.Values)
	res.Trend = series
}

// dateSeries builds the date-grouped sum series shared by the trend and
// predictive strategies. Returns nil when the dataset lacks a temporal
// or numeric column.
func (d *Dispatcher) dateSeries(targets []string, ds *datatypes.Dataset) *datatypes.Trend {
	dateCol := resolveColumn(targets, ds, datatypes.KindTemporal)
	numCol := resolveColumn(targets, ds, datatypes.KindNumeric)
	if dateCol == nil || numCol == nil {
		return nil
	}

	raw := dateCol.Strings()
	times := dateCol.Times()
	values := numCol.Float64s()

	type bucket struct {
		key   string
		order int64
		sum   float64
	}
	var order []string
	buckets := make(map[string]*bucket)
	for i, key := range raw {
		if i >= len(values) || i >= len(times) {
			break
		}
		v := values[i]
		if v != v {
			continue
		}
		b, seen := buckets[key]
		if !seen {
			b = &bucket{key: key, order: times[i].Unix()}
			buckets[key] = b
			order = append(order, key)
		}
		b.sum += v
	}
	if len(order) == 0 {
		return nil
	}
	sort.SliceStable(order, func(a, b int) bool {
		return buckets[order[a]].order < buckets[order[b]].order
	})

	series := &datatypes.Trend{
		ValueColumn: numCol.Name,
		DateColumn:  dateCol.Name,
	}
	for _, key := range order {
		series.Keys = append(series.Keys, key)
		series.Values = append(series.Values, buckets[key].sum)
	}
	return series
}

// classifyTrend compares the first-half mean against the second-half
// mean with a 5% relative dead-band.
func classifyTrend(values []float64) (string, float64) {
	if len(values) < 2 {
		return "stable", 0
	}
	half := len(values) / 2
	firstMean := mean(values[:half])
	secondMean := mean(values[half:])
	if firstMean == 0 {
		if secondMean == 0 {
			return "stable", 0
		}
		return "increasing", 100
	}
	changePct := (secondMean - firstMean) / firstMean * 100
	switch {
	case changePct > 5:
		return "increasing", changePct
	case changePct < -5:
		return "decreasing", changePct
	default:
		return "stable", changePct
	}
}

func (d *Dispatcher) compare(res *datatypes.AnalyticsResult, targets []string, ds *datatypes.Dataset) {
	res.Comparison = d.groupAggregates(targets, ds)
}

// groupAggregates computes sum, mean and count of a numeric column per
// group of a categorical column, shared by the comparison, diagnostic
// and segmentation strategies.
func (d *Dispatcher) groupAggregates(targets []string, ds *datatypes.Dataset) *datatypes.Comparison {
	catCol := resolveColumn(targets, ds, datatypes.KindCategorical)
	numCol := resolveColumn(targets, ds, datatypes.KindNumeric)
	if catCol == nil || numCol == nil {
		return nil
	}

	labels := catCol.Strings()
	values := numCol.Float64s()

	type agg struct {
		sum   float64
		count int
	}
	var order []string
	groups := make(map[string]*agg)
	for i, label := range labels {
		if i >= len(values) {
			break
		}
		v := values[i]
		if v != v {
			continue
		}
		g, seen := groups[label]
		if !seen {
			g = &agg{}
			groups[label] = g
			order = append(order, label)
		}
		g.sum += v
		g.count++
	}
	if len(order) == 0 {
		return nil
	}

	cmp := &datatypes.Comparison{
		CategoryColumn: catCol.Name,
		ValueColumn:    numCol.Name,
	}
	for _, label := range order {
		g := groups[label]
		cmp.Groups = append(cmp.Groups, datatypes.ComparisonGroup{
			Label: label,
			Sum:   g.sum,
			Mean:  g.sum / float64(g.count),
			Count: g.count,
		})
	}
	return cmp
}

func (d *Dispatcher) statistics(res *datatypes.AnalyticsResult, ds *datatypes.Dataset) {
	for _, col := range ds.NumericColumns() {
		vals := col.NonNullNumbers()
		if len(vals) == 0 {
			continue
		}
		lo, hi := minMax(vals)
		if res.Stats == nil {
			res.Stats = make(map[string]datatypes.ColumnStats)
		}
		res.Stats[col.Name] = datatypes.ColumnStats{
			Mean:   mean(vals),
			Median: median(vals),
			Std:    stddev(vals),
			Min:    lo,
			Max:    hi,
		}
		res.StatsOrder = append(res.StatsOrder, col.Name)
	}
}
