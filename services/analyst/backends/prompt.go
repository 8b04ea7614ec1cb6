// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backends

import (
	"fmt"
	"strings"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

const systemPrompt = "You are an expert data analyst with deep knowledge of business analytics, " +
	"statistics, and data visualization. Be specific and cite numbers."

const (
	sampleRowLimit    = 3
	sampleValueLimit  = 5
	historyTurnLimit  = 4
	promptColumnLimit = 30
)

// BuildMessages assembles the conversation sent to a model tier: the
// analyst system role, a user turn carrying the dataset context and
// instructions, preceded by recent conversation history for follow-up
// questions.
//
// Inputs:
//   - question: The raw user question.
//   - ds: The active dataset. May be nil.
//   - convo: Prior turns in the session. May be nil.
//
// Outputs:
//   - []datatypes.Message: Ready to pass to ChatClient.Chat.
func BuildMessages(question string, ds *datatypes.Dataset, convo *datatypes.ConversationContext) []datatypes.Message {
	messages := []datatypes.Message{{Role: "system", Content: systemPrompt}}

	if convo != nil {
		turns := convo.History()
		if len(turns) > historyTurnLimit {
			turns = turns[len(turns)-historyTurnLimit:]
		}
		for _, t := range turns {
			messages = append(messages, datatypes.Message{Role: "user", Content: t.Question})
		}
	}

	messages = append(messages, datatypes.Message{
		Role:    "user",
		Content: buildPrompt(question, ds),
	})
	return messages
}

func buildPrompt(question string, ds *datatypes.Dataset) string {
	var b strings.Builder
	b.WriteString("Analyze the dataset described below and answer the question.\n\n")
	b.WriteString(DataContext(ds))
	fmt.Fprintf(&b, "\nUSER QUESTION: %s\n", question)
	b.WriteString(`
INSTRUCTIONS:
1. Provide a clear, actionable answer with specific numbers and insights
2. Be specific about which columns and data you are analyzing
3. If the question is unclear or irrelevant to the data, politely redirect
4. Keep the response concise, 2-4 paragraphs at most
`)
	return b.String()
}

// DataContext renders the dataset's schema, per-column detail and
// numeric summaries as prompt text.
func DataContext(ds *datatypes.Dataset) string {
	if ds == nil {
		return "DATASET: none loaded\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "DATASET: %d rows, %d columns\n\nCOLUMNS:\n", ds.RowCount(), len(ds.Columns()))

	for i, col := range ds.Columns() {
		if i >= promptColumnLimit {
			fmt.Fprintf(&b, "- ... and %d more columns\n", len(ds.Columns())-promptColumnLimit)
			break
		}
		switch col.Kind {
		case datatypes.KindNumeric:
			vals := col.NonNullNumbers()
			if len(vals) == 0 {
				fmt.Fprintf(&b, "- %s: numeric (no values)\n", col.Name)
				continue
			}
			fmt.Fprintf(&b, "- %s: numeric (%d non-null, sum %.2f, mean %.2f)\n",
				col.Name, len(vals), numSum(vals), numSum(vals)/float64(len(vals)))
		case datatypes.KindTemporal:
			fmt.Fprintf(&b, "- %s: date/time\n", col.Name)
		default:
			fmt.Fprintf(&b, "- %s: categorical [sample: %s]\n",
				col.Name, strings.Join(sampleValues(col.Strings()), ", "))
		}
	}

	if rows := sampleRows(ds); len(rows) > 0 {
		b.WriteString("\nSAMPLE ROWS:\n")
		b.WriteString(strings.Join(ds.ColumnNames(), " | "))
		b.WriteString("\n")
		for _, row := range rows {
			b.WriteString(strings.Join(row, " | "))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func numSum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func sampleValues(raw []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range raw {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) >= sampleValueLimit {
			break
		}
	}
	return out
}

func sampleRows(ds *datatypes.Dataset) [][]string {
	n := ds.RowCount()
	if n > sampleRowLimit {
		n = sampleRowLimit
	}
	var rows [][]string
	for i := 0; i < n; i++ {
		var row []string
		for _, col := range ds.Columns() {
			vals := col.Strings()
			if i < len(vals) {
				row = append(row, vals[i])
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return rows
}
