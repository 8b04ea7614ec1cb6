// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dispatch

import (
	"math"
	"reflect"
	"testing"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/config"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

func mustDataset(t *testing.T, header []string, rows [][]string) *datatypes.Dataset {
	t.Helper()
	ds, err := datatypes.NewDataset(header, rows)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return ds
}

func rankingDataset(t *testing.T) *datatypes.Dataset {
	// Group sums: A=300, B=500, C=100.
	return mustDataset(t,
		[]string{"product", "revenue"},
		[][]string{
			{"A", "100"},
			{"B", "250"},
			{"C", "100"},
			{"A", "200"},
			{"B", "250"},
		},
	)
}

func intentFor(cat datatypes.Category, targets ...string) datatypes.Intent {
	return datatypes.Intent{Category: cat, Confidence: 0.9, TargetColumns: targets}
}

func TestRankingTopAndBottom(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	ds := rankingDataset(t)

	res := d.Execute(intentFor(datatypes.CategoryRanking), "top products by revenue", ds)
	if res.Ranking == nil {
		t.Fatal("no ranking produced")
	}
	if !reflect.DeepEqual(res.Ranking.Labels, []string{"B", "A", "C"}) {
		t.Errorf("top labels = %v, want [B A C]", res.Ranking.Labels)
	}
	if !reflect.DeepEqual(res.Ranking.Values, []float64{500, 300, 100}) {
		t.Errorf("top values = %v, want [500 300 100]", res.Ranking.Values)
	}
	if res.Ranking.Direction != "top" {
		t.Errorf("direction = %q, want top", res.Ranking.Direction)
	}

	res = d.Execute(intentFor(datatypes.CategoryRanking), "worst products by revenue", ds)
	if !reflect.DeepEqual(res.Ranking.Labels, []string{"C", "A", "B"}) {
		t.Errorf("bottom labels = %v, want [C A B]", res.Ranking.Labels)
	}
	if res.Ranking.Direction != "bottom" {
		t.Errorf("direction = %q, want bottom", res.Ranking.Direction)
	}
}

func TestRankingTruncatesToFiveWithStableTies(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	// Six groups, two of them tied: grouping order must break the tie.
	ds := mustDataset(t,
		[]string{"store", "sales"},
		[][]string{
			{"S1", "10"}, {"S2", "60"}, {"S3", "40"}, {"S4", "40"},
			{"S5", "20"}, {"S6", "5"},
		},
	)
	res := d.Execute(intentFor(datatypes.CategoryRanking), "top stores", ds)
	want := []string{"S2", "S3", "S4", "S5", "S1"}
	if !reflect.DeepEqual(res.Ranking.Labels, want) {
		t.Errorf("labels = %v, want %v", res.Ranking.Labels, want)
	}
}

func TestColumnPrecedenceExplicitOverInferred(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	// First numeric column is "units"; the question names "revenue".
	ds := mustDataset(t,
		[]string{"product", "units", "revenue"},
		[][]string{
			{"A", "1", "100"},
			{"B", "9", "50"},
		},
	)

	res := d.Execute(intentFor(datatypes.CategoryRanking, "revenue"), "top products by revenue", ds)
	if res.Ranking.ValueColumn != "revenue" {
		t.Fatalf("ValueColumn = %q, want the explicitly named revenue", res.Ranking.ValueColumn)
	}
	if res.Ranking.Labels[0] != "A" {
		t.Errorf("top label = %q, want A (by revenue, not units)", res.Ranking.Labels[0])
	}
}

func TestAggregation(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	ds := rankingDataset(t)

	res := d.Execute(intentFor(datatypes.CategoryAggregation, "revenue"), "total revenue", ds)
	if got := res.Values["revenue_sum"]; got != 900 {
		t.Errorf("revenue_sum = %v, want 900", got)
	}
	if got := res.Values["revenue_mean"]; got != 180 {
		t.Errorf("revenue_mean = %v, want 180", got)
	}
	if got := res.Values["revenue_count"]; got != 5 {
		t.Errorf("revenue_count = %v, want 5", got)
	}
	wantOrder := []string{"revenue_sum", "revenue_mean", "revenue_count"}
	if !reflect.DeepEqual(res.ValueOrder, wantOrder) {
		t.Errorf("ValueOrder = %v, want %v", res.ValueOrder, wantOrder)
	}
}

func TestAggregationWithoutNumericColumnsCountsRows(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	ds := mustDataset(t,
		[]string{"name", "city"},
		[][]string{{"a", "x"}, {"b", "y"}, {"c", "z"}},
	)
	res := d.Execute(intentFor(datatypes.CategoryAggregation), "how many records", ds)
	if got := res.Values["total_records"]; got != 3 {
		t.Errorf("total_records = %v, want 3", got)
	}
}

func TestTrendDirections(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)

	cases := []struct {
		name   string
		values []string
		want   string
	}{
		{"increasing", []string{"100", "110", "200", "220"}, "increasing"},
		{"decreasing", []string{"200", "220", "100", "90"}, "decreasing"},
		{"stable within dead-band", []string{"100", "100", "102", "102"}, "stable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := make([][]string, len(tc.values))
			for i, v := range tc.values {
				rows[i] = []string{dateFor(i), v}
			}
			ds := mustDataset(t, []string{"order_date", "revenue"}, rows)
			res := d.Execute(intentFor(datatypes.CategoryTrend), "revenue trend", ds)
			if res.Trend == nil {
				t.Fatal("no trend produced")
			}
			if res.Trend.Direction != tc.want {
				t.Errorf("direction = %q (change %.1f%%), want %q",
					res.Trend.Direction, res.Trend.ChangePct, tc.want)
			}
		})
	}
}

func dateFor(i int) string {
	return "2024-01-0" + string(rune('1'+i))
}

func TestTrendGroupsDuplicateDatesChronologically(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	// Out-of-order rows with a repeated date.
	ds := mustDataset(t,
		[]string{"order_date", "revenue"},
		[][]string{
			{"2024-01-03", "30"},
			{"2024-01-01", "10"},
			{"2024-01-03", "5"},
			{"2024-01-02", "20"},
		},
	)
	res := d.Execute(intentFor(datatypes.CategoryTrend), "revenue over time", ds)
	if !reflect.DeepEqual(res.Trend.Keys, []string{"2024-01-01", "2024-01-02", "2024-01-03"}) {
		t.Errorf("keys = %v, want chronological", res.Trend.Keys)
	}
	if !reflect.DeepEqual(res.Trend.Values, []float64{10, 20, 35}) {
		t.Errorf("values = %v, want [10 20 35]", res.Trend.Values)
	}
}

func TestTrendRequiresTemporalColumn(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	ds := rankingDataset(t)
	res := d.Execute(intentFor(datatypes.CategoryTrend), "revenue trend", ds)
	if !res.Empty() {
		t.Error("trend without a temporal column should be empty, not an error")
	}
}

func TestComparison(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	ds := rankingDataset(t)
	res := d.Execute(intentFor(datatypes.CategoryComparison), "compare products", ds)
	if res.Comparison == nil {
		t.Fatal("no comparison produced")
	}
	if len(res.Comparison.Groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(res.Comparison.Groups))
	}
	// Groups keep first-appearance order.
	a := res.Comparison.Groups[0]
	if a.Label != "A" || a.Sum != 300 || a.Mean != 150 || a.Count != 2 {
		t.Errorf("group A = %+v, want {A 300 150 2}", a)
	}
}

func TestStatistics(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	ds := mustDataset(t,
		[]string{"v"},
		[][]string{{"2"}, {"4"}, {"4"}, {"4"}, {"5"}, {"5"}, {"7"}, {"9"}},
	)
	res := d.Execute(intentFor(datatypes.CategoryStatistics), "summary statistics", ds)
	st, ok := res.Stats["v"]
	if !ok {
		t.Fatal("no stats for column v")
	}
	if st.Mean != 5 || st.Median != 4.5 || st.Min != 2 || st.Max != 9 {
		t.Errorf("stats = %+v", st)
	}
	// Sample std of this series is sqrt(32/7).
	if want := math.Sqrt(32.0 / 7.0); math.Abs(st.Std-want) > 1e-9 {
		t.Errorf("std = %v, want %v", st.Std, want)
	}
}

func TestDistributionPercentilesAndFrequencies(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	ds := mustDataset(t,
		[]string{"category", "amount"},
		[][]string{
			{"x", "10"}, {"y", "20"}, {"x", "30"}, {"z", "40"}, {"x", "50"},
		},
	)
	res := d.Execute(intentFor(datatypes.CategoryDistribution), "distribution of amount", ds)
	if res.Distribution == nil {
		t.Fatal("no distribution produced")
	}
	if got := res.Distribution.Percentiles["p50"]; got != 30 {
		t.Errorf("p50 = %v, want 30", got)
	}
	if !reflect.DeepEqual(res.Distribution.FreqLabels, []string{"x", "y", "z"}) {
		t.Errorf("freq labels = %v", res.Distribution.FreqLabels)
	}
	if !reflect.DeepEqual(res.Distribution.FreqCounts, []float64{3, 1, 1}) {
		t.Errorf("freq counts = %v", res.Distribution.FreqCounts)
	}
}

func TestCorrelationStrongThreshold(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	// b is perfectly correlated with a; c is unrelated.
	ds := mustDataset(t,
		[]string{"a", "b", "c"},
		[][]string{
			{"1", "2", "5"},
			{"2", "4", "1"},
			{"3", "6", "9"},
			{"4", "8", "2"},
		},
	)
	res := d.Execute(intentFor(datatypes.CategoryCorrelation), "correlation between columns", ds)
	if len(res.Correlations) == 0 {
		t.Fatal("no correlations produced")
	}
	var ab *datatypes.CorrelationPair
	for i := range res.Correlations {
		p := &res.Correlations[i]
		if p.ColumnA == "a" && p.ColumnB == "b" {
			ab = p
		}
	}
	if ab == nil {
		t.Fatal("pair (a,b) missing")
	}
	if math.Abs(ab.R-1.0) > 1e-9 || !ab.Strong {
		t.Errorf("pair (a,b) = %+v, want r=1 strong", ab)
	}
}

func TestAnomalyZScore(t *testing.T) {
	d := New(2.0)
	rows := [][]string{}
	for i := 0; i < 20; i++ {
		rows = append(rows, []string{"100"})
	}
	rows = append(rows, []string{"1000"})
	ds := mustDataset(t, []string{"amount"}, rows)

	res := d.Execute(intentFor(datatypes.CategoryAnomaly), "any outliers", ds)
	if len(res.Outliers) != 1 {
		t.Fatalf("got %d outliers, want 1", len(res.Outliers))
	}
	o := res.Outliers[0]
	if o.Row != 20 || o.Value != 1000 || o.ZScore <= 2.0 {
		t.Errorf("outlier = %+v", o)
	}
}

func TestSegmentationShares(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	ds := rankingDataset(t)
	res := d.Execute(intentFor(datatypes.CategorySegmentation), "break down by product", ds)
	if res.Comparison == nil {
		t.Fatal("no segment aggregates produced")
	}
	if got := res.Values["B_share_pct"]; math.Abs(got-500.0/900*100) > 1e-9 {
		t.Errorf("B share = %v", got)
	}
}

func TestForecastProjectsMovingAverage(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	ds := mustDataset(t,
		[]string{"order_date", "revenue"},
		[][]string{
			{"2024-01-01", "10"},
			{"2024-01-02", "20"},
			{"2024-01-03", "30"},
		},
	)
	res := d.Execute(intentFor(datatypes.CategoryPredictive), "forecast revenue", ds)
	if len(res.Forecast) != 3 {
		t.Fatalf("got %d forecast points, want 3", len(res.Forecast))
	}
	if got := res.Forecast[0].Value; got != 20 {
		t.Errorf("first projection = %v, want mean(10,20,30)=20", got)
	}
}

func TestUnknownCategoryFallsBackToStatistics(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	ds := rankingDataset(t)
	res := d.Execute(intentFor(datatypes.CategoryUnknown), "tell me things", ds)
	if len(res.Stats) == 0 {
		t.Error("unknown category should fall back to the statistics summary")
	}
}

func TestNilDatasetYieldsEmptyResult(t *testing.T) {
	d := New(config.DefaultAnomalyThreshold)
	res := d.Execute(intentFor(datatypes.CategoryRanking), "top products", nil)
	if !res.Empty() {
		t.Error("nil dataset should yield an empty result")
	}
	if res.Category != datatypes.CategoryRanking {
		t.Errorf("category tag = %s, want ranking", res.Category)
	}
}
