// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"context"
	"time"
)

type (
	LimiterFactory func(limit int64, window time.Duration) RateLimiter

	// RateLimiter enforces time-based limits such as "100 requests per minute".
	RateLimiter interface {
		// Allow records one event for key and reports whether it is within the limit.
		Allow(ctx context.Context, key Key) (Result, error)
	}

	// Key identifies the party being limited: a username, a remote address, etc.
	Key string

	Result struct {
		Allowed       bool
		Remaining     int64         // events left in the current window
		RetryAfter    time.Duration // zero when allowed
		Limit         int64         // max events per window
		Window        time.Duration // configured window size
		WindowResetIn time.Duration // time until the current window ends
	}
)
