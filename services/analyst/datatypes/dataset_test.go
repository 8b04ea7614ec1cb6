// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDatasetKindInference(t *testing.T) {
	ds, err := NewDataset(
		[]string{"order_date", "product", "revenue", "units"},
		[][]string{
			{"2024-01-01", "Widget", "100.50", "3"},
			{"2024-01-02", "Gadget", "1,250", "7"},
			{"2024-01-03", "Widget", "", "2"},
		},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}

	cases := []struct {
		name string
		want ColumnKind
	}{
		{"order_date", KindTemporal},
		{"product", KindCategorical},
		{"revenue", KindNumeric},
		{"units", KindNumeric},
	}
	for _, tc := range cases {
		col, ok := ds.Column(tc.name)
		if !ok {
			t.Fatalf("column %q missing", tc.name)
		}
		if col.Kind != tc.want {
			t.Errorf("column %q kind = %q, want %q", tc.name, col.Kind, tc.want)
		}
	}

	// Thousands separators parse, empties become NaN.
	revenue, _ := ds.Column("revenue")
	nums := revenue.Float64s()
	if nums[1] != 1250 {
		t.Errorf("revenue[1] = %v, want 1250", nums[1])
	}
	if !math.IsNaN(nums[2]) {
		t.Errorf("revenue[2] = %v, want NaN for empty cell", nums[2])
	}
	if got := revenue.NonNullNumbers(); len(got) != 2 {
		t.Errorf("NonNullNumbers len = %d, want 2", len(got))
	}
}

func TestNewDatasetTemporalNameHint(t *testing.T) {
	// Mixed formats defeat full parsing, but the name forces temporal.
	ds, err := NewDataset(
		[]string{"signup_date"},
		[][]string{{"2024-01-01"}, {"not a date"}, {"2024-03-01"}},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	col, _ := ds.Column("signup_date")
	if col.Kind != KindTemporal {
		t.Fatalf("kind = %q, want temporal via name hint", col.Kind)
	}
	times := col.Times()
	if times[0].IsZero() || !times[1].IsZero() {
		t.Errorf("expected parsed first cell and zero second cell, got %v", times)
	}
}

func TestNewDatasetUnevenRows(t *testing.T) {
	ds, err := NewDataset(
		[]string{"a", "b"},
		[][]string{{"1"}, {"2", "x", "overflow"}},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	if ds.RowCount() != 2 {
		t.Errorf("RowCount = %d, want 2", ds.RowCount())
	}
	b, _ := ds.Column("b")
	if got := b.Strings(); got[0] != "" || got[1] != "x" {
		t.Errorf("short rows should pad with empties, got %v", got)
	}
}

func TestNewDatasetRejectsBadHeaders(t *testing.T) {
	if _, err := NewDataset(nil, nil); err == nil {
		t.Error("empty header should be rejected")
	}
	if _, err := NewDataset([]string{"a", "a"}, nil); err == nil {
		t.Error("duplicate header should be rejected")
	}
}

func TestReadCSV(t *testing.T) {
	input := "product,revenue\nWidget,100\nGadget,250\n"
	ds, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if ds.RowCount() != 2 {
		t.Errorf("RowCount = %d, want 2", ds.RowCount())
	}
	if names := ds.ColumnNames(); names[0] != "product" || names[1] != "revenue" {
		t.Errorf("ColumnNames = %v", names)
	}

	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("empty input should be rejected")
	}
	if _, err := ReadCSV(strings.NewReader("a,b\n\"unterminated")); err == nil {
		t.Error("malformed csv should be rejected")
	}
}

func TestReadCSVFixture(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "..", "test", "fixtures", "sales.csv"))
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if ds.RowCount() != 12 {
		t.Errorf("RowCount = %d, want 12", ds.RowCount())
	}
	if got := len(ds.NumericColumns()); got != 2 {
		t.Errorf("numeric columns = %d, want revenue and units", got)
	}
	if got := len(ds.TemporalColumns()); got != 1 {
		t.Errorf("temporal columns = %d, want order_date only", got)
	}
	if got := len(ds.CategoricalColumns()); got != 3 {
		t.Errorf("categorical columns = %d, want product, region, customer", got)
	}
}

func TestColumnsOfKindOrder(t *testing.T) {
	ds, err := NewDataset(
		[]string{"units", "product", "revenue", "region"},
		[][]string{{"1", "Widget", "100", "North"}},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}

	nums := ds.NumericColumns()
	if len(nums) != 2 || nums[0].Name != "units" || nums[1].Name != "revenue" {
		t.Errorf("NumericColumns order = %v", columnList(nums))
	}
	cats := ds.CategoricalColumns()
	if len(cats) != 2 || cats[0].Name != "product" || cats[1].Name != "region" {
		t.Errorf("CategoricalColumns order = %v", columnList(cats))
	}
}

func columnList(cols []*Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func TestMentions(t *testing.T) {
	cases := []struct {
		question string
		column   string
		want     bool
	}{
		{"what is the total revenue", "revenue", true},
		{"show sales by order date", "order_date", true},
		{"show sales by order_date", "order_date", true},
		{"what are the top products", "region", false},
		{"total revenues this year", "revenue", true},
	}
	for _, tc := range cases {
		if got := Mentions(tc.question, tc.column); got != tc.want {
			t.Errorf("Mentions(%q, %q) = %v, want %v", tc.question, tc.column, got, tc.want)
		}
	}
}

func TestReferencedColumns(t *testing.T) {
	ds, err := NewDataset(
		[]string{"order_date", "product", "revenue"},
		[][]string{{"2024-01-01", "Widget", "100"}},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	refs := ds.ReferencedColumns("compare revenue by product")
	if len(refs) != 2 || refs[0].Name != "product" || refs[1].Name != "revenue" {
		t.Errorf("ReferencedColumns = %v", columnList(refs))
	}
}
