// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package confidence combines the classifier's raw match score with
// data-sufficiency signals into the final answer confidence.
package confidence

import (
	"math"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/datatypes"
)

const (
	bonusLargeDataset = 0.10 // 30 rows or more
	bonusSmallDataset = 0.05 // 10 to 29 rows
	bonusNonEmpty     = 0.10
	bonusExplicitCols = 0.05

	// maxScore keeps every answer below certainty; 1.0 is never reported.
	maxScore = 0.99
)

// Score combines the intent's raw confidence with dataset and result
// quality bonuses, capped at 0.99 and rounded to two decimals.
//
// Inputs:
//   - intent: The classified intent; its Confidence is the base score.
//   - ds: The active dataset. May be nil.
//   - res: The dispatcher's result. May be nil.
//
// Outputs:
//   - float64: The final confidence in [0, 0.99].
func Score(intent datatypes.Intent, ds *datatypes.Dataset, res *datatypes.AnalyticsResult) float64 {
	score := intent.Confidence

	if ds != nil {
		switch rows := ds.RowCount(); {
		case rows >= 30:
			score += bonusLargeDataset
		case rows >= 10:
			score += bonusSmallDataset
		}
	}
	if !res.Empty() {
		score += bonusNonEmpty
	}
	if intent.Explicit {
		score += bonusExplicitCols
	}

	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	return math.Round(score*100) / 100
}
