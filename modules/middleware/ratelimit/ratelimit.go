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
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"conduit/modules/middleware/problem"
	rl "conduit/modules/ratelimit"
)

type (
	Pattern string
	method  string

	// KeyFunc extracts from a request the identifier being limited.
	KeyFunc func(*http.Request) rl.Key

	// RouteFunc resolves the pattern a request is routed to, "" if none.
	RouteFunc func(*http.Request) string

	Policy struct {
		Limiter rl.RateLimiter
		KeyFn   KeyFunc
	}

	// RuntimePolicy is the compiled form of RestHTTPConfig.
	RuntimePolicy struct {
		policyMap map[Pattern]map[method]Policy

		// Defaults applied when no route-specific rule exists. A method-specific
		// default takes precedence over the catch-all one.
		defaultByMethod map[method]Policy
		defaultPolicy   *Policy

		AllowIfNoMatch      bool
		AllowIfNoIdentifier bool

		RouteFn RouteFunc
	}
)

func normalizeMethod(m string) method {
	return method(strings.ToUpper(strings.TrimSpace(m)))
}

func (p *RuntimePolicy) findPolicy(r *http.Request) (Policy, bool) {
	pattern := ""
	if p.RouteFn != nil {
		pattern = p.RouteFn(r)
	}
	m := normalizeMethod(r.Method)

	if pm, ok := p.policyMap[Pattern(pattern)]; ok {
		if px, ok := pm[m]; ok {
			return px, true
		}
	}
	if px, ok := p.defaultByMethod[m]; ok {
		return px, true
	}
	if p.defaultPolicy != nil {
		return *p.defaultPolicy, true
	}
	return Policy{}, false
}

func compileRule(factory rl.LimiterFactory, rule EndpointRule, keyStrategies map[KeyStrategyId]KeyFunc) (Policy, error) {
	if rule.Window <= 0 {
		return Policy{}, errors.New("ratelimit parse policy: window must be positive")
	}
	if rule.Limit < 0 {
		return Policy{}, errors.New("ratelimit parse policy: limit must not be negative")
	}
	ks, ok := keyStrategies[rule.KeyStrategy]
	if !ok {
		return Policy{}, fmt.Errorf("ratelimit parse policy: no such key strategy %q", rule.KeyStrategy)
	}
	return Policy{Limiter: factory(rule.Limit, rule.Window), KeyFn: ks}, nil
}

// ParsePolicy compiles cfg into per-route limiters. Route patterns are
// expected to match what routeFn reports for registered routes.
func ParsePolicy(
	factory rl.LimiterFactory,
	cfg *RestHTTPConfig,
	routeFn RouteFunc,
	keyStrategies map[KeyStrategyId]KeyFunc,
) (*RuntimePolicy, error) {
	rtp := &RuntimePolicy{
		policyMap:           make(map[Pattern]map[method]Policy),
		defaultByMethod:     make(map[method]Policy),
		AllowIfNoIdentifier: cfg.AllowIfNoIdentifier,
		AllowIfNoMatch:      cfg.AllowIfNoMatch,
		RouteFn:             routeFn,
	}

	if cfg.DefaultPolicy.Window > 0 && cfg.DefaultPolicy.KeyStrategy != "" {
		px, err := compileRule(factory, cfg.DefaultPolicy, keyStrategies)
		if err != nil {
			return nil, err
		}
		if m := normalizeMethod(cfg.DefaultPolicy.Method); m != "" {
			rtp.defaultByMethod[m] = px
		} else {
			rtp.defaultPolicy = &px
		}
	}

	for _, r := range cfg.Routes {
		pat := Pattern(r.Pattern)
		if _, ok := rtp.policyMap[pat]; !ok {
			rtp.policyMap[pat] = make(map[method]Policy)
		}
		for _, rule := range r.EndpointRules {
			m := normalizeMethod(rule.Method)
			if _, ok := rtp.policyMap[pat][m]; ok {
				return nil, fmt.Errorf("ratelimit parse policy: duplicate method %s on %s", m, pat)
			}
			px, err := compileRule(factory, rule, keyStrategies)
			if err != nil {
				return nil, err
			}
			rtp.policyMap[pat][m] = px
		}
	}
	return rtp, nil
}

func NewRateLimitMiddleware(p *RuntimePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			px, ok := p.findPolicy(r)
			if !ok {
				if p.AllowIfNoMatch {
					next.ServeHTTP(w, r)
					return
				}
				slog.WarnContext(r.Context(), "no rate limit policy found",
					slog.String("middleware", "rate_limiter"),
					slog.String("url", r.URL.Path),
				)
				problem.Write(w, problem.TooManyRequests(http.StatusText(http.StatusTooManyRequests)))
				return
			}

			key := px.KeyFn(r)
			if key == "" {
				if p.AllowIfNoIdentifier {
					next.ServeHTTP(w, r)
					return
				}
				slog.WarnContext(r.Context(), "no rate limit key",
					slog.String("middleware", "rate_limiter"),
					slog.String("url", r.URL.Path),
				)
				problem.Write(w, problem.TooManyRequests(http.StatusText(http.StatusTooManyRequests)))
				return
			}

			result, err := px.Limiter.Allow(r.Context(), key)
			if err != nil {
				// counter store may be down
				slog.ErrorContext(r.Context(), "rate limit error",
					slog.Any("error", err),
					slog.String("url", r.URL.Path),
				)
				problem.Write(w, problem.Internal(http.StatusText(http.StatusInternalServerError)))
				return
			}

			writeRateLimitHeaders(w, result)
			if !result.Allowed {
				slog.DebugContext(r.Context(), "rate limited",
					slog.String("middleware", "rate_limiter"),
					slog.String("url", r.URL.Path),
				)
				problem.Write(w, problem.TooManyRequests(http.StatusText(http.StatusTooManyRequests)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimitHeaders(w http.ResponseWriter, result rl.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(int64(result.WindowResetIn.Seconds()), 10))
	if !result.Allowed {
		h.Set("Retry-After", strconv.FormatInt(int64(result.RetryAfter.Seconds()+0.5), 10))
	}
}

// RemoteIpKeyFunc keys by the last X-Forwarded-For hop, or by the peer
// address when the header is absent.
func RemoteIpKeyFunc(r *http.Request) rl.Key {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
			return rl.Key(ip)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return rl.Key(r.RemoteAddr)
	}
	return rl.Key(host)
}
