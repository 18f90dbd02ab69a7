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
	"sync"
	"time"

	"conduit/modules/clock"

	"golang.org/x/time/rate"
)

var _ RateLimiter = (*LocalRateLimiter)(nil)

// LocalRateLimiter is an in-process token bucket per key. It is used when no
// shared counter store is configured, so limits apply per replica.
type LocalRateLimiter struct {
	clock  clock.Clock
	limit  int64
	window time.Duration

	mu        sync.Mutex
	buckets   map[Key]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func LocalFactory(c clock.Clock) LimiterFactory {
	return func(limit int64, window time.Duration) RateLimiter {
		return NewLocal(c, limit, window)
	}
}

func NewLocal(c clock.Clock, limit int64, window time.Duration) *LocalRateLimiter {
	if c == nil {
		c = clock.RealClockProvider()
	}
	return &LocalRateLimiter{
		clock:   c,
		limit:   limit,
		window:  window,
		buckets: make(map[Key]*bucket),
	}
}

// Allow implements RateLimiter. The bucket holds limit tokens and refills
// them evenly over one window.
func (l *LocalRateLimiter) Allow(ctx context.Context, key Key) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		every := rate.Every(l.window / time.Duration(max(l.limit, 1)))
		b = &bucket{limiter: rate.NewLimiter(every, int(l.limit))}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.evict(now)

	res := Result{
		Limit:         l.limit,
		Window:        l.window,
		WindowResetIn: l.window,
	}
	r := b.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); !r.OK() || delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = delay
		if !r.OK() {
			res.RetryAfter = l.window
		}
		return res, nil
	}
	res.Allowed = true
	res.Remaining = max(int64(b.limiter.TokensAt(now)), 0)
	return res, nil
}

// evict drops buckets idle for two windows, at most once per window. They
// would be full again anyway.
func (l *LocalRateLimiter) evict(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > 2*l.window {
			delete(l.buckets, k)
		}
	}
}
