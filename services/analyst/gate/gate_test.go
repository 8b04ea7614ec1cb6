// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gate

import (
	"strings"
	"testing"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/config"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

func salesDataset(t *testing.T) *datatypes.Dataset {
	t.Helper()
	ds, err := datatypes.NewDataset(
		[]string{"order_date", "product", "region", "revenue"},
		[][]string{
			{"2024-01-01", "Widget", "North", "120.50"},
			{"2024-01-02", "Gadget", "South", "80.00"},
			{"2024-01-03", "Widget", "North", "99.99"},
		},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return ds
}

func TestEvaluateRejectsGreetings(t *testing.T) {
	g := New(config.DefaultShortQuestion)
	ds := salesDataset(t)

	for _, q := range []string{"hi", "Hello", "  hey  ", "thanks", "Thank You", "bye", "goodbye"} {
		res := g.Evaluate(q, ds)
		if !res.IsVague {
			t.Errorf("Evaluate(%q).IsVague = false, want true", q)
		}
		if res.Guidance == "" {
			t.Errorf("Evaluate(%q) returned empty guidance", q)
		}
		if len(res.Suggestions) == 0 {
			t.Errorf("Evaluate(%q) returned no suggestions", q)
		}
	}
}

func TestEvaluateRejectsOffTopic(t *testing.T) {
	g := New(config.DefaultShortQuestion)
	ds := salesDataset(t)

	res := g.Evaluate("What is the weather like in Lagos today this week", ds)
	if !res.IsVague {
		t.Fatal("off-topic question passed the gate")
	}
	if !strings.Contains(res.Guidance, "weather") {
		t.Errorf("guidance does not name the off-topic keyword: %q", res.Guidance)
	}
}

func TestEvaluateVaguePatternsOnlyRejectShortQuestions(t *testing.T) {
	g := New(config.DefaultShortQuestion)
	ds := salesDataset(t)

	if res := g.Evaluate("help", ds); !res.IsVague {
		t.Error("bare 'help' passed the gate")
	}

	// Contains "help" but carries real analytical content past the
	// short-question threshold, so it must pass.
	long := "help me understand the monthly revenue trend across all regions"
	if res := g.Evaluate(long, ds); res.IsVague {
		t.Errorf("Evaluate(%q) rejected a specific question", long)
	}
}

func TestEvaluateShortQuestionNeedsDataVocabulary(t *testing.T) {
	g := New(config.DefaultShortQuestion)
	ds := salesDataset(t)

	if res := g.Evaluate("blue elephants dancing", ds); !res.IsVague {
		t.Error("short non-data question passed the gate")
	}

	// Short, but names a data keyword.
	if res := g.Evaluate("total revenue?", ds); res.IsVague {
		t.Error("short question with data keyword was rejected")
	}

	// Short, no keyword, but references a real column by name.
	if res := g.Evaluate("what about region?", ds); res.IsVague {
		t.Error("short question referencing a column was rejected")
	}

	// Underscore-normalized column reference.
	if res := g.Evaluate("latest order date?", ds); res.IsVague {
		t.Error("underscore-normalized column reference was rejected")
	}
}

func TestEvaluateAcceptsSpecificQuestions(t *testing.T) {
	g := New(config.DefaultShortQuestion)
	ds := salesDataset(t)

	for _, q := range []string{
		"What is the total revenue?",
		"Show me the top 5 products by revenue",
		"How has revenue trended over time?",
		"Compare revenue across regions",
	} {
		if res := g.Evaluate(q, ds); res.IsVague {
			t.Errorf("Evaluate(%q).IsVague = true, want false", q)
		}
	}
}

func TestSuggestQuestionsUsesActualColumns(t *testing.T) {
	ds := salesDataset(t)
	suggestions := SuggestQuestions(ds)

	if len(suggestions) == 0 || len(suggestions) > maxSuggestions {
		t.Fatalf("got %d suggestions, want 1..%d", len(suggestions), maxSuggestions)
	}

	joined := strings.ToLower(strings.Join(suggestions, " | "))
	for _, want := range []string{"revenue", "product", "region"} {
		if !strings.Contains(joined, want) {
			t.Errorf("suggestions missing column-derived term %q: %v", want, suggestions)
		}
	}
}

func TestSuggestQuestionsNilDatasetFallsBack(t *testing.T) {
	suggestions := SuggestQuestions(nil)
	if len(suggestions) != 3 {
		t.Fatalf("got %d fallback suggestions, want 3", len(suggestions))
	}
}

func TestSuggestQuestionsGenericPaddingWhenSchemaIsBare(t *testing.T) {
	ds, err := datatypes.NewDataset(
		[]string{"a", "b"},
		[][]string{{"x", "y"}},
	)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	suggestions := SuggestQuestions(ds)
	if len(suggestions) < 3 {
		t.Fatalf("got %d suggestions, want at least 3 after generic padding", len(suggestions))
	}
}
