// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Column Kinds
// =============================================================================

// ColumnKind is the inferred semantic type of a column.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
	KindTemporal    ColumnKind = "temporal"
)

// temporalLayouts are the date formats tried during inference, most
// specific first.
var temporalLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
}

// =============================================================================
// Column
// =============================================================================

// Column is one named, typed column of a dataset.
//
// Description:
//
//	Raw always holds the original cell text. For numeric columns, nums
//	holds the parsed values with NaN marking empty or unparsable cells.
//	For temporal columns, times holds parsed timestamps with the zero
//	time marking unparsable cells.
//
// Thread Safety: Immutable after construction; safe to share.
type Column struct {
	Name string
	Kind ColumnKind

	raw   []string
	nums  []float64
	times []time.Time
}

// Strings returns the raw cell values.
func (c *Column) Strings() []string { return c.raw }

// Float64s returns parsed numeric values (NaN for missing cells).
// Returns nil for non-numeric columns.
func (c *Column) Float64s() []float64 { return c.nums }

// Times returns parsed timestamps (zero time for missing cells).
// Returns nil for non-temporal columns.
func (c *Column) Times() []time.Time { return c.times }

// NonNullNumbers returns the numeric values with missing cells dropped.
func (c *Column) NonNullNumbers() []float64 {
	out := make([]float64, 0, len(c.nums))
	for _, v := range c.nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// =============================================================================
// Dataset
// =============================================================================

// Dataset is an immutable-per-session tabular structure: an ordered list of
// named columns with inferred semantic types.
//
// Description:
//
//	Created on upload/load and owned exclusively by the active session.
//	Re-upload replaces the dataset wholesale; it is never mutated in
//	place. Column names are unique and every column has the same row
//	count.
//
// Thread Safety: Immutable after construction; safe for concurrent reads.
type Dataset struct {
	columns []*Column
	byName  map[string]*Column
	rows    int
}

// NewDataset builds a dataset from a header row and data rows, inferring a
// semantic kind for every column.
//
// Inputs:
//   - header: Column names. Must be non-empty and unique.
//   - rows: Data rows. Short rows are padded with empty cells; long rows
//     are truncated to the header width.
//
// Outputs:
//   - *Dataset: The constructed dataset.
//   - error: Non-nil for an empty or duplicate header.
func NewDataset(header []string, rows [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("dataset: header is empty")
	}
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return nil, fmt.Errorf("dataset: duplicate column %q", name)
		}
		seen[name] = true
	}

	ds := &Dataset{
		byName: make(map[string]*Column, len(header)),
		rows:   len(rows),
	}
	for i, name := range header {
		raw := make([]string, len(rows))
		for r, row := range rows {
			if i < len(row) {
				raw[r] = strings.TrimSpace(row[i])
			}
		}
		col := buildColumn(name, raw)
		ds.columns = append(ds.columns, col)
		ds.byName[name] = col
	}

	slog.Debug("dataset constructed",
		slog.Int("rows", ds.rows),
		slog.Int("columns", len(ds.columns)),
	)
	return ds, nil
}

// ReadCSV builds a dataset from CSV input. The first record is the header.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: csv input is empty")
	}
	return NewDataset(records[0], records[1:])
}

// buildColumn infers the column kind and parses values accordingly.
//
// A column is numeric when every non-empty cell parses as a float and at
// least one cell is non-empty. It is temporal when its name contains
// "date" or "time", or when every non-empty cell parses with one of the
// known date layouts. Everything else is categorical.
func buildColumn(name string, raw []string) *Column {
	col := &Column{Name: name, raw: raw}

	nonEmpty := 0
	numeric := true
	for _, v := range raw {
		if v == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err != nil {
			numeric = false
		}
	}

	if numeric && nonEmpty > 0 {
		col.Kind = KindNumeric
		col.nums = make([]float64, len(raw))
		for i, v := range raw {
			if v == "" {
				col.nums[i] = math.NaN()
				continue
			}
			f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
			if err != nil {
				f = math.NaN()
			}
			col.nums[i] = f
		}
		return col
	}

	lower := strings.ToLower(name)
	nameHint := strings.Contains(lower, "date") || strings.Contains(lower, "time")
	times := make([]time.Time, len(raw))
	parsedAll := nonEmpty > 0
	for i, v := range raw {
		if v == "" {
			continue
		}
		t, ok := parseTemporal(v)
		if !ok {
			parsedAll = false
			break
		}
		times[i] = t
	}
	if parsedAll || (nameHint && nonEmpty > 0) {
		// Re-parse best effort when only the name hinted temporal.
		if !parsedAll {
			for i, v := range raw {
				if v == "" {
					continue
				}
				if t, ok := parseTemporal(v); ok {
					times[i] = t
				}
			}
		}
		col.Kind = KindTemporal
		col.times = times
		return col
	}

	col.Kind = KindCategorical
	return col
}

func parseTemporal(v string) (time.Time, bool) {
	for _, layout := range temporalLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RowCount returns the number of data rows.
func (d *Dataset) RowCount() int { return d.rows }

// Columns returns the ordered columns.
func (d *Dataset) Columns() []*Column { return d.columns }

// ColumnNames returns the ordered column names.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	c, ok := d.byName[name]
	return c, ok
}

// columnsOfKind returns columns of the given kind in dataset order.
func (d *Dataset) columnsOfKind(kind ColumnKind) []*Column {
	var out []*Column
	for _, c := range d.columns {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// NumericColumns returns numeric columns in dataset order.
func (d *Dataset) NumericColumns() []*Column { return d.columnsOfKind(KindNumeric) }

// CategoricalColumns returns categorical columns in dataset order.
func (d *Dataset) CategoricalColumns() []*Column { return d.columnsOfKind(KindCategorical) }

// TemporalColumns returns temporal columns in dataset order.
func (d *Dataset) TemporalColumns() []*Column { return d.columnsOfKind(KindTemporal) }

// Mentions reports whether the question text references the given column,
// either by exact lowercase match or with underscores normalized to spaces.
func Mentions(questionLower, columnName string) bool {
	name := strings.ToLower(columnName)
	if strings.Contains(questionLower, name) {
		return true
	}
	spaced := strings.ReplaceAll(name, "_", " ")
	return strings.Contains(questionLower, spaced)
}

// ReferencedColumns returns the columns mentioned in the question, in
// dataset order. The question must already be lowercased.
func (d *Dataset) ReferencedColumns(questionLower string) []*Column {
	var out []*Column
	for _, c := range d.columns {
		if Mentions(questionLower, c.Name) {
			out = append(out, c)
		}
	}
	return out
}
