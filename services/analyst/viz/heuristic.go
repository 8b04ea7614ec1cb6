// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// =========================================================================
// Heuristic Chart Mapping
// =========================================================================

// heuristicRules map chart kinds to trigger keywords, checked in order
// against both the question and the model's answer text. The model tiers
// skip the full analytics pipeline, so chart data comes straight from
// the dataset here.
var heuristicRules = []struct {
	kind     datatypes.ChartKind
	keywords []string
}{
	{datatypes.ChartBar, []string{"top", "best", "worst", "highest", "lowest", "compare", "ranking", "chart"}},
	{datatypes.ChartLine, []string{"trend", "over time", "time series", "evolution", "change"}},
	{datatypes.ChartPie, []string{"percentage", "proportion", "share", "breakdown", "distribution"}},
}

const heuristicBarLimit = 10

// HeuristicChart derives a chart for a model-tier answer from keyword
// matches in the question and answer text.
//
// # Description
//
//	The first rule whose keywords appear in either text wins: bar rules
//	group-sum the first numeric column by the first categorical column
//	and keep the ten largest groups; line rules build the date-grouped
//	sum series; pie rules count the first categorical column's values
//	with the usual eight-slice limit. Returns nil when no rule matches
//	or the dataset lacks the columns the matched kind needs.
func HeuristicChart(question, answer string, ds *datatypes.Dataset) *datatypes.ChartSpec {
	if ds == nil {
		return nil
	}
	qLower := strings.ToLower(question)
	aLower := strings.ToLower(answer)

	for _, rule := range heuristicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(qLower, kw) || strings.Contains(aLower, kw) {
				return heuristicData(rule.kind, ds)
			}
		}
	}
	return nil
}

func heuristicData(kind datatypes.ChartKind, ds *datatypes.Dataset) *datatypes.ChartSpec {
	switch kind {
	case datatypes.ChartBar:
		return heuristicBar(ds)
	case datatypes.ChartLine:
		return heuristicLine(ds)
	case datatypes.ChartPie:
		return heuristicPie(ds)
	}
	return nil
}

func heuristicBar(ds *datatypes.Dataset) *datatypes.ChartSpec {
	categorical := ds.CategoricalColumns()
	numeric := ds.NumericColumns()
	if len(categorical) == 0 || len(numeric) == 0 {
		return nil
	}
	catCol, numCol := categorical[0], numeric[0]

	labels := catCol.Strings()
	values := numCol.Float64s()
	var order []string
	sums := make(map[string]float64)
	for i, label := range labels {
		if i >= len(values) || values[i] != values[i] {
			continue
		}
		if _, seen := sums[label]; !seen {
			order = append(order, label)
		}
		sums[label] += values[i]
	}
	if len(order) == 0 {
		return nil
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sums[order[a]] > sums[order[b]]
	})
	if len(order) > heuristicBarLimit {
		order = order[:heuristicBarLimit]
	}

	spec := &datatypes.ChartSpec{
		Kind:  datatypes.ChartBar,
		Title: fmt.Sprintf("Top %d by %s", len(order), titleize(numCol.Name)),
	}
	for _, label := range order {
		spec.X = append(spec.X, label)
		spec.Y = append(spec.Y, sums[label])
	}
	return spec
}

func heuristicLine(ds *datatypes.Dataset) *datatypes.ChartSpec {
	temporal := ds.TemporalColumns()
	numeric := ds.NumericColumns()
	if len(temporal) == 0 || len(numeric) == 0 {
		return nil
	}
	dateCol, numCol := temporal[0], numeric[0]

	raw := dateCol.Strings()
	times := dateCol.Times()
	values := numCol.Float64s()

	type point struct {
		key   string
		order int64
		sum   float64
	}
	var order []string
	points := make(map[string]*point)
	for i, key := range raw {
		if i >= len(values) || i >= len(times) || values[i] != values[i] {
			continue
		}
		p, seen := points[key]
		if !seen {
			p = &point{key: key, order: times[i].Unix()}
			points[key] = p
			order = append(order, key)
		}
		p.sum += values[i]
	}
	if len(order) == 0 {
		return nil
	}
	sort.SliceStable(order, func(a, b int) bool {
		return points[order[a]].order < points[order[b]].order
	})

	spec := &datatypes.ChartSpec{
		Kind:  datatypes.ChartLine,
		Title: fmt.Sprintf("%s over time", titleize(numCol.Name)),
	}
	for _, key := range order {
		spec.X = append(spec.X, key)
		spec.Y = append(spec.Y, points[key].sum)
	}
	return spec
}

func heuristicPie(ds *datatypes.Dataset) *datatypes.ChartSpec {
	categorical := ds.CategoricalColumns()
	if len(categorical) == 0 {
		return nil
	}
	col := categorical[0]

	var order []string
	counts := make(map[string]float64)
	for _, label := range col.Strings() {
		if label == "" {
			continue
		}
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}
	if len(order) == 0 {
		return nil
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})
	if len(order) > pieSliceLimit {
		order = order[:pieSliceLimit]
	}

	spec := &datatypes.ChartSpec{
		Kind:  datatypes.ChartPie,
		Title: fmt.Sprintf("Distribution of %s", titleize(col.Name)),
	}
	for _, label := range order {
		spec.X = append(spec.X, label)
		spec.Y = append(spec.Y, counts[label])
	}
	return spec
}
