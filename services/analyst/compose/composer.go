// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package compose turns computed analytics results into natural-language
// answers. The deterministic tier uses the per-category templates here;
// the model tiers produce free text and skip this package entirely.
package compose

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// Compose renders the deterministic answer text for a result.
//
// # Description
//
//	Dispatches on the result's category to a markdown template. An empty
//	result gets a generic completion notice so the deterministic tier
//	always has an answer string.
func Compose(res *datatypes.AnalyticsResult) string {
	if res == nil || res.Empty() {
		return "I analyzed your data but could not compute a specific result for that question. " +
			"Try naming a column from your dataset."
	}

	switch res.Category {
	case datatypes.CategoryAggregation:
		return composeAggregation(res)
	case datatypes.CategoryRanking, datatypes.CategoryPrescriptive:
		return composeRanking(res)
	case datatypes.CategoryTrend:
		return composeTrend(res)
	case datatypes.CategoryComparison, datatypes.CategoryDiagnostic, datatypes.CategorySegmentation:
		return composeComparison(res)
	case datatypes.CategoryStatistics, datatypes.CategoryUnknown:
		return composeStatistics(res)
	case datatypes.CategoryPredictive:
		return composeForecast(res)
	case datatypes.CategoryDistribution:
		return composeDistribution(res)
	case datatypes.CategoryCorrelation:
		return composeCorrelation(res)
	case datatypes.CategoryAnomaly:
		return composeAnomalies(res)
	}
	return "Analysis complete."
}

// =========================================================================
// Per-Category Templates
// =========================================================================

func composeAggregation(res *datatypes.AnalyticsResult) string {
	var parts []string
	for _, name := range res.ValueOrder {
		v := res.Values[name]
		switch {
		case strings.HasSuffix(name, "_sum"):
			col := spokenName(strings.TrimSuffix(name, "_sum"))
			parts = append(parts, fmt.Sprintf("**Total %s:** %s", col, FormatValue(v)))
		case strings.HasSuffix(name, "_mean"):
			col := spokenName(strings.TrimSuffix(name, "_mean"))
			parts = append(parts, fmt.Sprintf("**Average %s:** %s", col, FormatValue(v)))
		case strings.HasSuffix(name, "_count"):
			col := spokenName(strings.TrimSuffix(name, "_count"))
			parts = append(parts, fmt.Sprintf("**%s Records:** %s", col, groupThousands(v, 0)))
		case name == "total_records":
			parts = append(parts, fmt.Sprintf("**Total Records:** %s", groupThousands(v, 0)))
		}
	}
	if len(parts) == 0 {
		return "Analytics completed successfully."
	}
	return strings.Join(parts, "\n\n")
}

func composeRanking(res *datatypes.AnalyticsResult) string {
	r := res.Ranking
	if r == nil || len(r.Labels) == 0 {
		return "No ranking could be computed for that question."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s %d %s:**\n\n",
		titleWord(r.Direction), len(r.Labels), spokenName(r.CategoryColumn))
	for i, label := range r.Labels {
		fmt.Fprintf(&b, "%d. **%s**: %s\n", i+1, label, FormatValue(r.Values[i]))
	}
	if res.Category == datatypes.CategoryPrescriptive && len(r.Labels) > 1 {
		fmt.Fprintf(&b, "\nFocus investment on **%s** and review **%s**.",
			r.Labels[0], r.Labels[len(r.Labels)-1])
	}
	return b.String()
}

func composeTrend(res *datatypes.AnalyticsResult) string {
	t := res.Trend
	if t == nil {
		return "No trend could be computed for that question."
	}
	verb := "remained stable"
	if t.ChangePct > 5 {
		verb = "increased"
	} else if t.ChangePct < -5 {
		verb = "decreased"
	}
	return fmt.Sprintf(
		"**Trend Analysis for %s:**\n\n**Direction:** %s (%+.1f%% change)\n\n"+
			"The %s has %s by approximately %.1f%% over the analyzed period.\n\n"+
			"**Data points analyzed:** %d",
		spokenName(t.ValueColumn), titleWord(t.Direction), t.ChangePct,
		spokenName(t.ValueColumn), verb, math.Abs(t.ChangePct), len(t.Keys))
}

func composeComparison(res *datatypes.AnalyticsResult) string {
	c := res.Comparison
	if c == nil || len(c.Groups) == 0 {
		return "No comparison could be computed for that question."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s by %s:**\n\n", titleWord(spokenName(c.ValueColumn)), spokenName(c.CategoryColumn))
	for _, g := range c.Groups {
		fmt.Fprintf(&b, "- **%s**: %s total, %s average across %d records\n",
			g.Label, FormatValue(g.Sum), FormatValue(g.Mean), g.Count)
	}
	return b.String()
}

func composeStatistics(res *datatypes.AnalyticsResult) string {
	if len(res.StatsOrder) == 0 {
		return "No numeric columns were available to summarize."
	}
	var b strings.Builder
	b.WriteString("**Statistical Summary:**\n")
	for _, name := range res.StatsOrder {
		st := res.Stats[name]
		fmt.Fprintf(&b, "\n**%s:** mean %s, median %s, std %s, range %s to %s\n",
			spokenName(name), FormatValue(st.Mean), FormatValue(st.Median),
			groupThousands(st.Std, 2), FormatValue(st.Min), FormatValue(st.Max))
	}
	return b.String()
}

func composeForecast(res *datatypes.AnalyticsResult) string {
	if len(res.Forecast) == 0 {
		return "No forecast could be computed; the data needs a date column and a numeric column."
	}
	var b strings.Builder
	if res.Trend != nil {
		fmt.Fprintf(&b, "**Forecast for %s** (recent trend: %s):\n\n",
			spokenName(res.Trend.ValueColumn), res.Trend.Direction)
	} else {
		b.WriteString("**Forecast:**\n\n")
	}
	for _, p := range res.Forecast {
		fmt.Fprintf(&b, "- %s: %s\n", p.Label, FormatValue(p.Value))
	}
	b.WriteString("\nProjections use a trailing moving average of the most recent periods.")
	return b.String()
}

func composeDistribution(res *datatypes.AnalyticsResult) string {
	d := res.Distribution
	if d == nil {
		return "No distribution could be computed for that question."
	}
	var b strings.Builder
	if d.ValueColumn != "" {
		fmt.Fprintf(&b, "**Distribution of %s:**\n\n", spokenName(d.ValueColumn))
		for _, p := range []string{"p10", "p25", "p50", "p75", "p90"} {
			if v, ok := d.Percentiles[p]; ok {
				fmt.Fprintf(&b, "- %s: %s\n", p, FormatValue(v))
			}
		}
	}
	if d.FreqColumn != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "**Most common %s values:**\n\n", spokenName(d.FreqColumn))
		limit := len(d.FreqLabels)
		if limit > 5 {
			limit = 5
		}
		for i := 0; i < limit; i++ {
			fmt.Fprintf(&b, "- **%s**: %s occurrences\n", d.FreqLabels[i], groupThousands(d.FreqCounts[i], 0))
		}
	}
	return b.String()
}

func composeCorrelation(res *datatypes.AnalyticsResult) string {
	if len(res.Correlations) == 0 {
		return "No column pairs were available to correlate."
	}
	var b strings.Builder
	b.WriteString("**Correlation Analysis:**\n")
	for _, p := range res.Correlations {
		strength := "weak"
		if p.Strong {
			strength = "strong"
		}
		fmt.Fprintf(&b, "\n- **%s** and **%s**: r = %.2f (%s)",
			spokenName(p.ColumnA), spokenName(p.ColumnB), p.R, strength)
	}
	return b.String()
}

func composeAnomalies(res *datatypes.AnalyticsResult) string {
	if len(res.Outliers) == 0 {
		return "No significant outliers were found in the numeric columns."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**Found %d outliers:**\n", len(res.Outliers))
	limit := len(res.Outliers)
	if limit > 10 {
		limit = 10
	}
	for _, o := range res.Outliers[:limit] {
		fmt.Fprintf(&b, "\n- Row %d, **%s** = %s (z-score %.1f)",
			o.Row+1, spokenName(o.Column), FormatValue(o.Value), o.ZScore)
	}
	return b.String()
}

// =========================================================================
// Recommendations
// =========================================================================

// Recommendations derives short actionable follow-ups from the result.
// Only categories with an obvious action produce any; an empty slice is
// normal.
func Recommendations(res *datatypes.AnalyticsResult) []string {
	if res == nil {
		return nil
	}
	switch res.Category {
	case datatypes.CategoryRanking, datatypes.CategoryPrescriptive:
		r := res.Ranking
		if r == nil || len(r.Labels) == 0 {
			return nil
		}
		return []string{
			fmt.Sprintf("Prioritize resources for %s (top performer)", r.Labels[0]),
			fmt.Sprintf("Investigate underperformance of %s", r.Labels[len(r.Labels)-1]),
			"Consider reallocating budget from low to high performers",
		}
	case datatypes.CategoryTrend, datatypes.CategoryPredictive:
		t := res.Trend
		if t == nil {
			return nil
		}
		switch t.Direction {
		case "decreasing":
			return []string{
				fmt.Sprintf("Urgent: address the %.1f%% decline with corrective actions", math.Abs(t.ChangePct)),
				"Conduct root cause analysis to identify drivers",
			}
		case "increasing":
			return []string{
				fmt.Sprintf("Capitalize on the positive %.1f%% growth trend", t.ChangePct),
				"Consider scaling successful strategies",
			}
		default:
			return []string{"Monitor closely for emerging patterns"}
		}
	case datatypes.CategoryAggregation:
		return []string{
			"Regular monitoring recommended",
			"Set up automated alerts for significant changes",
		}
	case datatypes.CategoryAnomaly:
		if len(res.Outliers) > 0 {
			return []string{"Review the flagged rows for data entry errors or genuine events"}
		}
	}
	return nil
}

// =========================================================================
// Formatting Helpers
// =========================================================================

// FormatValue renders a number the way the answer templates expect:
// values above 100 as currency with two decimals, smaller values plain.
func FormatValue(v float64) string {
	if v > 100 {
		return "$" + groupThousands(v, 2)
	}
	return groupThousands(v, 2)
}

// groupThousands formats v with the given decimal places and commas
// separating thousands in the integer part.
func groupThousands(v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// spokenName renders a column name for prose: underscores to spaces,
// words capitalized.
func spokenName(col string) string {
	words := strings.Fields(strings.ReplaceAll(col, "_", " "))
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if size == 0 {
		return w
	}
	return strings.ToUpper(string(r)) + w[size:]
}
