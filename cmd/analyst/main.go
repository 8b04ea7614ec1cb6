// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command analyst is the conversational analytics engine CLI.
//
// It answers natural-language questions about tabular datasets, either
// one-shot from the terminal or as an HTTP API server.
//
// Usage:
//
//	go run ./cmd/analyst ask --file sales.csv "what is the total revenue"
//	go run ./cmd/analyst serve --port 8080
//
// With OpenAI (remote model tier):
//
//	OPENAI_API_KEY=sk-... go run ./cmd/analyst serve
//
// With Ollama (local model tier):
//
//	OLLAMA_BASE_URL=http://localhost:11434 OLLAMA_MODEL=llama3.2 go run ./cmd/analyst serve
//
// Example requests:
//
//	# Create a session from a CSV file
//	curl -X POST http://localhost:8080/v1/analyst/sessions \
//	  -H "Content-Type: text/csv" --data-binary @sales.csv
//
//	# Ask a question
//	curl -X POST http://localhost:8080/v1/analyst/sessions/<id>/ask \
//	  -H "Content-Type: application/json" \
//	  -d '{"question": "show me the top 5 products by revenue"}'
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Conversational analytics over tabular datasets",
	Long: `Analyst answers natural-language questions about CSV datasets.

Questions are served by a tier chain: an optional remote model, an
optional local model, and a deterministic analytics pipeline that always
produces an answer. Without any model configuration the deterministic
tier alone gives complete, reproducible results.`,
}

func init() {
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
