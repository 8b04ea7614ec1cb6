// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dispatch

import (
	"fmt"
	"math"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// =========================================================================
// Advanced Strategies
// =========================================================================

const (
	forecastWindow   = 3
	forecastHorizon  = 3
	strongRThreshold = 0.5
	maxOutliers      = 50
)

// diagnose breaks a metric down by dimension to surface which segment
// drives the overall movement: per-group aggregates plus each group's
// deviation from the overall mean.
func (d *Dispatcher) diagnose(res *datatypes.AnalyticsResult, targets []string, ds *datatypes.Dataset) {
	cmp := d.groupAggregates(targets, ds)
	if cmp == nil {
		return
	}
	res.Comparison = cmp

	var total float64
	var count int
	for _, g := range cmp.Groups {
		total += g.Sum
		count += g.Count
	}
	if count == 0 {
		return
	}
	overall := total / float64(count)
	res.SetValue("overall_mean", overall)
	for _, g := range cmp.Groups {
		res.SetValue(g.Label+"_mean_delta", g.Mean-overall)
	}
}

// forecast projects the date-grouped series forward with a trailing
// moving average: each projected point is the mean of the last
// forecastWindow values including prior projections.
func (d *Dispatcher) forecast(res *datatypes.AnalyticsResult, targets []string, ds *datatypes.Dataset) {
	series := d.dateSeries(targets, ds)
	if series == nil || len(series.Values) == 0 {
		return
	}
	series.Direction, series.ChangePct = classifyTrend(series.Values)
	res.Trend = series

	window := forecastWindow
	if len(series.Values) < window {
		window = len(series.Values)
	}
	extended := append([]float64(nil), series.Values...)
	for i := 1; i <= forecastHorizon; i++ {
		next := mean(extended[len(extended)-window:])
		extended = append(extended, next)
		res.Forecast = append(res.Forecast, datatypes.ForecastPoint{
			Label: fmt.Sprintf("period +%d", i),
			Value: next,
		})
	}
}

// prescribe ranks every group of the chosen dimension so the composer
// can recommend shifting attention from the weakest to the strongest.
func (d *Dispatcher) prescribe(res *datatypes.AnalyticsResult, targets []string, ds *datatypes.Dataset) {
	catCol := resolveColumn(targets, ds, datatypes.KindCategorical)
	numCol := resolveColumn(targets, ds, datatypes.KindNumeric)
	if catCol == nil || numCol == nil {
		return
	}
	labels, values := groupSums(catCol, numCol)
	if len(labels) == 0 {
		return
	}

	best, worst := 0, 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
		if v < values[worst] {
			worst = i
		}
	}
	res.Ranking = &datatypes.Ranking{
		Labels:         labels,
		Values:         values,
		CategoryColumn: catCol.Name,
		ValueColumn:    numCol.Name,
		Direction:      "top",
	}
	res.SetValue("best_value", values[best])
	res.SetValue("worst_value", values[worst])
}

// distribution summarizes the chosen numeric column as percentiles and,
// when a categorical column exists, its full frequency table. The
// synthesizer trims the frequency table for display.
func (d *Dispatcher) distribution(res *datatypes.AnalyticsResult, targets []string, ds *datatypes.Dataset) {
	dist := &datatypes.Distribution{}

	if numCol := resolveColumn(targets, ds, datatypes.KindNumeric); numCol != nil {
		vals := numCol.NonNullNumbers()
		if len(vals) > 0 {
			dist.ValueColumn = numCol.Name
			dist.Percentiles = map[string]float64{
				"p10": percentile(vals, 10),
				"p25": percentile(vals, 25),
				"p50": percentile(vals, 50),
				"p75": percentile(vals, 75),
				"p90": percentile(vals, 90),
			}
		}
	}

	if catCol := resolveColumn(targets, ds, datatypes.KindCategorical); catCol != nil {
		var order []string
		counts := make(map[string]float64)
		for _, label := range catCol.Strings() {
			if label == "" {
				continue
			}
			if _, seen := counts[label]; !seen {
				order = append(order, label)
			}
			counts[label]++
		}
		if len(order) > 0 {
			dist.FreqColumn = catCol.Name
			for _, label := range order {
				dist.FreqLabels = append(dist.FreqLabels, label)
				dist.FreqCounts = append(dist.FreqCounts, counts[label])
			}
		}
	}

	if dist.ValueColumn == "" && dist.FreqColumn == "" {
		return
	}
	res.Distribution = dist
}

// correlate computes the Pearson coefficient for every numeric column
// pair over rows where both values are present.
func (d *Dispatcher) correlate(res *datatypes.AnalyticsResult, ds *datatypes.Dataset) {
	numeric := ds.NumericColumns()
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			a, b := alignedPairs(numeric[i].Float64s(), numeric[j].Float64s())
			r, ok := pearson(a, b)
			if !ok {
				continue
			}
			res.Correlations = append(res.Correlations, datatypes.CorrelationPair{
				ColumnA: numeric[i].Name,
				ColumnB: numeric[j].Name,
				R:       r,
				Strong:  math.Abs(r) > strongRThreshold,
			})
		}
	}
}

// alignedPairs drops rows where either series has a missing value.
func alignedPairs(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var outA, outB []float64
	for i := 0; i < n; i++ {
		if a[i] != a[i] || b[i] != b[i] {
			continue
		}
		outA = append(outA, a[i])
		outB = append(outB, b[i])
	}
	return outA, outB
}

// segment produces group-wise aggregates plus each segment's share of
// the grand total.
func (d *Dispatcher) segment(res *datatypes.AnalyticsResult, targets []string, ds *datatypes.Dataset) {
	cmp := d.groupAggregates(targets, ds)
	if cmp == nil {
		return
	}
	res.Comparison = cmp

	var total float64
	for _, g := range cmp.Groups {
		total += g.Sum
	}
	if total == 0 {
		return
	}
	for _, g := range cmp.Groups {
		res.SetValue(g.Label+"_share_pct", g.Sum/total*100)
	}
}

// anomalies flags values whose z-score magnitude exceeds the configured
// threshold, scanning every numeric column row by row.
func (d *Dispatcher) anomalies(res *datatypes.AnalyticsResult, ds *datatypes.Dataset) {
	for _, col := range ds.NumericColumns() {
		vals := col.Float64s()
		clean := col.NonNullNumbers()
		if len(clean) < 2 {
			continue
		}
		m := mean(clean)
		sd := stddev(clean)
		if sd == 0 {
			continue
		}
		for row, v := range vals {
			if v != v {
				continue
			}
			z := (v - m) / sd
			if math.Abs(z) > d.AnomalyZ {
				res.Outliers = append(res.Outliers, datatypes.Outlier{
					Column: col.Name,
					Row:    row,
					Value:  v,
					ZScore: z,
				})
				if len(res.Outliers) >= maxOutliers {
					return
				}
			}
		}
	}
}
