// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package intent

import (
	"math"
	"testing"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

func salesDataset(t *testing.T) *datatypes.Dataset {
	t.Helper()
	ds, err := datatypes.NewDataset(
		[]string{"order_date", "product", "region", "revenue", "units"},
		[][]string{
			{"2024-01-01", "Widget", "North", "120.50", "3"},
			{"2024-01-02", "Gadget", "South", "80.00", "1"},
		},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return ds
}

func TestClassifyCategories(t *testing.T) {
	c := NewClassifier()
	ds := salesDataset(t)

	cases := []struct {
		question string
		want     datatypes.Category
	}{
		{"what is the total revenue", datatypes.CategoryAggregation},
		{"show me the top 5 products", datatypes.CategoryRanking},
		{"is revenue increasing", datatypes.CategoryTrend},
		{"compare region performance", datatypes.CategoryComparison},
		{"are there any outliers in the data", datatypes.CategoryAnomaly},
		{"what is the distribution of revenue", datatypes.CategoryDistribution},
	}
	for _, tc := range cases {
		got := c.Classify(tc.question, ds)
		if got.Category != tc.want {
			t.Errorf("Classify(%q).Category = %s, want %s (confidence %.3f)",
				tc.question, got.Category, tc.want, got.Confidence)
		}
		if got.Confidence <= 0 || got.Confidence > 1 {
			t.Errorf("Classify(%q).Confidence = %.3f, want (0,1]", tc.question, got.Confidence)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier()
	ds := salesDataset(t)

	first := c.Classify("show me the top 5 products", ds)
	for i := 0; i < 10; i++ {
		again := c.Classify("show me the top 5 products", ds)
		if again.Category != first.Category || again.Confidence != first.Confidence {
			t.Fatalf("classification drifted on run %d: (%s, %.6f) vs (%s, %.6f)",
				i, again.Category, again.Confidence, first.Category, first.Confidence)
		}
	}
}

func TestClassifyNeverReturnsUnknownForNonEmptyInput(t *testing.T) {
	// No confidence floor is enforced: even a weak best match wins and
	// carries its low score as the signal.
	c := NewClassifier()
	got := c.Classify("purple monkey dishwasher", salesDataset(t))
	if got.Category == datatypes.CategoryUnknown {
		t.Fatal("weak match fell back to unknown; lowest-scoring match should still win")
	}
	if got.Confidence >= 0.5 {
		t.Errorf("nonsense question scored %.3f, expected a weak match", got.Confidence)
	}
}

func TestClassifyExplicitColumnsTakePriority(t *testing.T) {
	c := NewClassifier()
	ds := salesDataset(t)

	got := c.Classify("what is the total revenue", ds)
	if !got.Explicit {
		t.Fatal("named column was not marked explicit")
	}
	if len(got.TargetColumns) != 1 || got.TargetColumns[0] != "revenue" {
		t.Fatalf("TargetColumns = %v, want [revenue]", got.TargetColumns)
	}
}

func TestClassifyInfersColumnsFromVocabulary(t *testing.T) {
	c := NewClassifier()
	ds, err := datatypes.NewDataset(
		[]string{"item_name", "sales_total"},
		[][]string{{"Widget", "100"}},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}

	// "money" names no column but triggers the revenue vocabulary group,
	// which resolves to the first sales-like column.
	got := c.Classify("how much money did we make", ds)
	if got.Explicit {
		t.Fatal("inferred column was marked explicit")
	}
	if len(got.TargetColumns) != 1 || got.TargetColumns[0] != "sales_total" {
		t.Fatalf("TargetColumns = %v, want [sales_total]", got.TargetColumns)
	}
}

func TestExtractMetadata(t *testing.T) {
	md := extractMetadata("what were the top 10 products last month")
	if !md.HasNumber {
		t.Error("HasNumber = false, want true")
	}
	if !md.HasQuestionWord {
		t.Error("HasQuestionWord = false, want true")
	}
	if !md.HasTimeReference {
		t.Error("HasTimeReference = false, want true")
	}
	if md.WordCount != 8 {
		t.Errorf("WordCount = %d, want 8", md.WordCount)
	}
	if len(md.Numbers) != 1 || md.Numbers[0] != 10 {
		t.Errorf("Numbers = %v, want [10]", md.Numbers)
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("total revenue", "total revenue"); got != 1.0 {
		t.Errorf("exact match = %.3f, want 1.0", got)
	}
	if got := Similarity("what is the total revenue", "total revenue"); got != 0.95 {
		t.Errorf("containment = %.3f, want 0.95", got)
	}

	// A near miss must beat an unrelated phrase.
	near := Similarity("total revenu", "total revenue")
	far := Similarity("favorite color", "total revenue")
	if near <= far {
		t.Errorf("near=%.3f far=%.3f, want near > far", near, far)
	}
	for _, got := range []float64{near, far} {
		if got < 0 || got > 1 || math.IsNaN(got) {
			t.Errorf("similarity out of range: %.3f", got)
		}
	}
}
