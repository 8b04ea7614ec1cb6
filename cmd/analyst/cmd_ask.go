// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/config"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

// askFile and askJSON hold flag values for the ask command.
var (
	askFile string
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer one question about a CSV file",
	Args:  cobra.MinimumNArgs(1),
	Run:   runAskCommand,
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "Path to the CSV dataset (required)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the full answer envelope as JSON")
	askCmd.MarkFlagRequired("file")
}

func runAskCommand(_ *cobra.Command, args []string) {
	question := strings.Join(args, " ")

	cfg, err := config.LoadEngineConfig()
	if err != nil {
		log.Fatalf("Error: invalid configuration: %v", err)
	}

	f, err := os.Open(askFile)
	if err != nil {
		log.Fatalf("Error: opening dataset: %v", err)
	}
	defer f.Close()

	ds, err := datatypes.ReadCSV(f)
	if err != nil {
		log.Fatalf("Error: parsing dataset: %v", err)
	}

	engine := analyst.NewEngine(cfg)
	envelope := engine.Ask(context.Background(), question, ds, &datatypes.ConversationContext{})

	if askJSON {
		out, err := json.MarshalIndent(envelope, "", "  ")
		if err != nil {
			log.Fatalf("Error: encoding envelope: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("Question: %s\n", question)
	fmt.Println("---")
	fmt.Printf("\n%s\n", envelope.Answer)
	if len(envelope.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for i, rec := range envelope.Recommendations {
			fmt.Printf("%d. %s\n", i+1, rec)
		}
	}
	fmt.Printf("\n(source: %s, confidence: %.2f, elapsed: %.3fs)\n",
		envelope.Source, envelope.Confidence, envelope.ElapsedSeconds)
}
