// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package viz maps computed analytics results to backend-agnostic chart
// specifications. It never renders anything; the caller's frontend owns
// presentation.
package viz

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

const pieSliceLimit = 8

// Synthesize maps a category-tagged result to its default chart kind.
//
// # Description
//
//	ranking, comparison, diagnostic, segmentation and prescriptive
//	results become bar charts; trend and predictive results become line
//	charts (forecast points appended to the series); distribution
//	results become pie charts limited to the eight most frequent
//	labels, with the remainder dropped outright rather than bucketed
//	into an "other" slice; aggregation scalars become a "metrics" spec
//	carrying the name/value pairs for card-style display. A category
//	whose result lacks the data for its default kind returns nil, never
//	an empty chart.
func Synthesize(category datatypes.Category, res *datatypes.AnalyticsResult) *datatypes.ChartSpec {
	if res == nil {
		return nil
	}

	switch category {
	case datatypes.CategoryRanking, datatypes.CategoryPrescriptive:
		return rankingBar(res.Ranking)
	case datatypes.CategoryComparison, datatypes.CategoryDiagnostic, datatypes.CategorySegmentation:
		return comparisonBar(res.Comparison)
	case datatypes.CategoryTrend, datatypes.CategoryPredictive:
		return trendLine(res.Trend, res.Forecast)
	case datatypes.CategoryDistribution:
		return distributionPie(res.Distribution)
	case datatypes.CategoryAggregation:
		return metricsCard(res)
	default:
		return nil
	}
}

func rankingBar(r *datatypes.Ranking) *datatypes.ChartSpec {
	if r == nil || len(r.Labels) == 0 {
		return nil
	}
	spec := &datatypes.ChartSpec{
		Kind:  datatypes.ChartBar,
		Y:     r.Values,
		Title: fmt.Sprintf("%s by %s", titleize(r.ValueColumn), titleize(r.CategoryColumn)),
	}
	for _, label := range r.Labels {
		spec.X = append(spec.X, label)
	}
	return spec
}

func comparisonBar(c *datatypes.Comparison) *datatypes.ChartSpec {
	if c == nil || len(c.Groups) == 0 {
		return nil
	}
	spec := &datatypes.ChartSpec{
		Kind:  datatypes.ChartBar,
		Title: fmt.Sprintf("%s by %s", titleize(c.ValueColumn), titleize(c.CategoryColumn)),
	}
	for _, g := range c.Groups {
		spec.X = append(spec.X, g.Label)
		spec.Y = append(spec.Y, g.Sum)
	}
	return spec
}

func trendLine(t *datatypes.Trend, forecast []datatypes.ForecastPoint) *datatypes.ChartSpec {
	if t == nil || len(t.Keys) == 0 {
		return nil
	}
	spec := &datatypes.ChartSpec{
		Kind:  datatypes.ChartLine,
		Y:     append([]float64(nil), t.Values...),
		Title: fmt.Sprintf("%s over time", titleize(t.ValueColumn)),
	}
	for _, key := range t.Keys {
		spec.X = append(spec.X, key)
	}
	for _, p := range forecast {
		spec.X = append(spec.X, p.Label)
		spec.Y = append(spec.Y, p.Value)
	}
	return spec
}

// distributionPie keeps only the eight most frequent labels. The rest
// are dropped, not aggregated, so slice counts may not sum to the row
// count.
func distributionPie(d *datatypes.Distribution) *datatypes.ChartSpec {
	if d == nil || len(d.FreqLabels) == 0 {
		return nil
	}

	idx := make([]int, len(d.FreqLabels))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return d.FreqCounts[idx[a]] > d.FreqCounts[idx[b]]
	})
	if len(idx) > pieSliceLimit {
		idx = idx[:pieSliceLimit]
	}

	spec := &datatypes.ChartSpec{
		Kind:  datatypes.ChartPie,
		Title: fmt.Sprintf("Distribution of %s", titleize(d.FreqColumn)),
	}
	for _, i := range idx {
		spec.X = append(spec.X, d.FreqLabels[i])
		spec.Y = append(spec.Y, d.FreqCounts[i])
	}
	return spec
}

func metricsCard(res *datatypes.AnalyticsResult) *datatypes.ChartSpec {
	if len(res.ValueOrder) == 0 {
		return nil
	}
	spec := &datatypes.ChartSpec{
		Kind:  datatypes.ChartMetrics,
		Title: "Key Metrics",
	}
	for _, name := range res.ValueOrder {
		spec.X = append(spec.X, name)
		spec.Y = append(spec.Y, res.Values[name])
	}
	return spec
}

// titleize renders a column name for chart titles: underscores become
// spaces and each word is capitalized.
func titleize(col string) string {
	words := strings.Fields(strings.ReplaceAll(col, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
