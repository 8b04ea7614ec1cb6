// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dispatch

import (
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// =========================================================================
// Column Resolution
// =========================================================================

// resolveColumn picks the column for a required role. Explicitly named
// target columns of the right kind always win over the dataset's first
// column of that kind; nil means the role cannot be filled and the
// strategy must return an empty result.
func resolveColumn(targets []string, ds *datatypes.Dataset, kind datatypes.ColumnKind) *datatypes.Column {
	for _, name := range targets {
		if col, ok := ds.Column(name); ok && col.Kind == kind {
			return col
		}
	}
	var pool []*datatypes.Column
	switch kind {
	case datatypes.KindNumeric:
		pool = ds.NumericColumns()
	case datatypes.KindCategorical:
		pool = ds.CategoricalColumns()
	case datatypes.KindTemporal:
		pool = ds.TemporalColumns()
	}
	if len(pool) == 0 {
		return nil
	}
	return pool[0]
}

// targetNumericColumns returns every explicitly targeted numeric column,
// falling back to the dataset's first numeric column when the question
// named none.
func targetNumericColumns(targets []string, ds *datatypes.Dataset) []*datatypes.Column {
	var out []*datatypes.Column
	for _, name := range targets {
		if col, ok := ds.Column(name); ok && col.Kind == datatypes.KindNumeric {
			out = append(out, col)
		}
	}
	if len(out) == 0 {
		if numeric := ds.NumericColumns(); len(numeric) > 0 {
			out = append(out, numeric[0])
		}
	}
	return out
}

// groupSums aggregates the numeric column by the categorical column's
// values, preserving first-appearance order of the labels.
func groupSums(catCol, numCol *datatypes.Column) ([]string, []float64) {
	labels := catCol.Strings()
	values := numCol.Float64s()

	var order []string
	sums := make(map[string]float64)
	for i, label := range labels {
		if i >= len(values) {
			break
		}
		v := values[i]
		if v != v { // NaN marks a missing cell
			continue
		}
		if _, seen := sums[label]; !seen {
			order = append(order, label)
		}
		sums[label] += v
	}

	out := make([]float64, len(order))
	for i, label := range order {
		out[i] = sums[label]
	}
	return order, out
}
