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
	"fmt"
	"math/bits"
	"time"

	"conduit/modules/clock"
)

var _ RateLimiter = (*SlidingWindowRateLimiter)(nil)

// SlidingWindowRateLimiter approximates a sliding window with two adjacent
// fixed windows. The previous window's count is weighted by how much of it
// still overlaps the sliding window ending now.
type SlidingWindowRateLimiter struct {
	clock     clock.Clock
	counter   CounterStore
	keyPrefix string

	limit  uint64
	window time.Duration
}

func SlidingWindowFactory(c clock.Clock, counter CounterStore, keyPrefix string) LimiterFactory {
	return func(limit int64, window time.Duration) RateLimiter {
		return NewSlidingWindow(c, counter, keyPrefix, limit, window)
	}
}

func NewSlidingWindow(c clock.Clock, counter CounterStore, keyPrefix string, limit int64, window time.Duration) *SlidingWindowRateLimiter {
	if c == nil {
		c = clock.RealClockProvider()
	}
	return &SlidingWindowRateLimiter{
		clock:     c,
		counter:   counter,
		keyPrefix: keyPrefix,
		limit:     uint64(max(limit, 0)),
		window:    window,
	}
}

// Allow implements RateLimiter.
func (s *SlidingWindowRateLimiter) Allow(ctx context.Context, key Key) (Result, error) {
	windowNs := s.window.Nanoseconds()
	nowNs := s.clock.Now().UnixNano()
	idx := nowNs / windowNs

	current, err := s.counter.Incr(ctx, s.buildKey(key, idx), s.window*2)
	if err != nil {
		return Result{}, err
	}
	previous, err := s.counter.Get(ctx, s.buildKey(key, idx-1))
	if err != nil {
		return Result{}, err
	}

	elapsedNs := min(max(nowNs-idx*windowNs, 0), windowNs)
	overlapNs := windowNs - elapsedNs

	// usage and budget are both scaled by the window length so the comparison
	// stays in integers
	usage := weighted(uint64(max(current, 0)), uint64(windowNs), uint64(max(previous, 0)), uint64(overlapNs))
	budget := mul128(s.limit, uint64(windowNs))

	used := usage.ceilDiv(uint64(windowNs))
	remaining := uint64(0)
	if used < s.limit {
		remaining = s.limit - used
	}

	resetIn := max(s.window-time.Duration(elapsedNs), 0)
	result := Result{
		Allowed:       !budget.less(usage),
		Remaining:     int64(remaining),
		Limit:         int64(s.limit),
		Window:        s.window,
		WindowResetIn: resetIn,
	}
	if !result.Allowed {
		result.RetryAfter = resetIn
	}
	return result, nil
}

func (s *SlidingWindowRateLimiter) buildKey(key Key, windowIdx int64) string {
	return fmt.Sprintf("%s:%s:%d", s.keyPrefix, key, windowIdx)
}

type uint128 struct{ hi, lo uint64 }

func mul128(a, b uint64) uint128 {
	hi, lo := bits.Mul64(a, b)
	return uint128{hi, lo}
}

func weighted(a, wa, b, wb uint64) uint128 {
	x, y := mul128(a, wa), mul128(b, wb)
	lo, carry := bits.Add64(x.lo, y.lo, 0)
	hi, _ := bits.Add64(x.hi, y.hi, carry)
	return uint128{hi, lo}
}

func (u uint128) less(v uint128) bool {
	return u.hi < v.hi || (u.hi == v.hi && u.lo < v.lo)
}

// ceilDiv saturates at MaxUint64 when the quotient does not fit.
func (u uint128) ceilDiv(d uint64) uint64 {
	if u.hi >= d {
		return ^uint64(0)
	}
	q, r := bits.Div64(u.hi, u.lo, d)
	if r != 0 && q != ^uint64(0) {
		q++
	}
	return q
}
