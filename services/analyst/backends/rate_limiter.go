// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package backends

import (
	"sync"
	"time"
)

// rateWindow is the sliding window over which per-provider limits apply.
const rateWindow = time.Minute

// RateLimiter caps the request rate to each remote provider.
//
// Description:
//
//	Tracks the timestamps of recent requests per provider and refuses
//	a request once the provider has used up its per-window quota. A
//	provider with no configured limit, or a limit of zero or less, is
//	unlimited. When a request is refused, the caller receives the
//	duration until the oldest in-window request ages out.
//
// Thread Safety: Safe for concurrent use via sync.Mutex.
type RateLimiter struct {
	mu      sync.Mutex
	limits  map[string]int
	history map[string][]time.Time
}

// NewRateLimiter creates a rate limiter from per-provider request
// budgets per minute. Non-positive budgets are dropped, which makes
// those providers unlimited.
func NewRateLimiter(limitsPerMin map[string]int) *RateLimiter {
	limits := make(map[string]int, len(limitsPerMin))
	for provider, limit := range limitsPerMin {
		if limit > 0 {
			limits[provider] = limit
		}
	}
	return &RateLimiter{
		limits:  limits,
		history: make(map[string][]time.Time),
	}
}

// Allow reports whether a request to provider fits its budget,
// recording the request when it does.
//
// Outputs:
//   - bool: True if the request is allowed.
//   - time.Duration: If limited, how long to wait before retrying.
func (r *RateLimiter) Allow(provider string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	limit, limited := r.limits[provider]
	if !limited {
		return true, 0
	}

	now := time.Now()
	cutoff := now.Add(-rateWindow)

	recent := r.history[provider]
	keep := 0
	for keep < len(recent) && !recent[keep].After(cutoff) {
		keep++
	}
	recent = recent[keep:]

	if len(recent) >= limit {
		r.history[provider] = recent
		return false, recent[0].Add(rateWindow).Sub(now)
	}

	r.history[provider] = append(recent, now)
	return true, 0
}
