package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"resumescreen/internal/errors"

	"golang.org/x/time/rate"
)

const limiterEvictionAge = 10 * time.Minute

// LimiterManager keeps one token bucket per client key (IP or API key).
type LimiterManager struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastSeen  map[string]time.Time
	rate      rate.Limit
	burst     int
	rejected  int64
	done      chan struct{}
	closeOnce sync.Once
	logger    *errors.Logger
}

// RateLimiter is the limiter the server uses
type RateLimiter = LimiterManager

// NewRateLimiter allows requests tokens per window per key, with burstCapacity headroom.
// A zero window means one minute.
func NewRateLimiter(requests int, window time.Duration, burstCapacity int, logger *errors.Logger) *LimiterManager {
	if window <= 0 {
		window = time.Minute
	}

	m := &LimiterManager{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(float64(requests) / window.Seconds()),
		burst:    burstCapacity,
		done:     make(chan struct{}),
		logger:   logger,
	}

	go m.cleanupRoutine(limiterEvictionAge)
	return m
}

// GetLimiter retrieves or creates a limiter for a given key.
func (m *LimiterManager) GetLimiter(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	limiter, exists := m.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(m.rate, m.burst)
		m.limiters[key] = limiter
	}
	m.lastSeen[key] = time.Now()

	return limiter
}

// Allow reports whether key may make a request now. It never blocks.
func (m *LimiterManager) Allow(key string) bool {
	if m.GetLimiter(key).Allow() {
		return true
	}

	m.mu.Lock()
	m.rejected++
	m.mu.Unlock()
	return false
}

// GetStats returns current rate limiter statistics
func (m *LimiterManager) GetStats() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	return map[string]any{
		"enabled":           true,
		"active_limiters":   len(m.limiters),
		"rate_per_second":   float64(m.rate),
		"rate_per_minute":   float64(m.rate) * 60.0,
		"burst_capacity":    m.burst,
		"rejected_requests": m.rejected,
	}
}

func (m *LimiterManager) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(interval)
		case <-m.done:
			return
		}
	}
}

// cleanup drops limiters idle for longer than evictionAge
func (m *LimiterManager) cleanup(evictionAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, lastSeen := range m.lastSeen {
		if now.Sub(lastSeen) > evictionAge {
			delete(m.limiters, key)
			delete(m.lastSeen, key)
		}
	}

	if m.logger != nil {
		m.logger.Debug("Rate limiter cleanup completed",
			"remaining_limiters", len(m.limiters))
	}
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (m *LimiterManager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// rateLimitMiddleware rejects requests over the per-key budget with 429
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled || s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(key) {
				limiter, _, _ := strings.Cut(key, ":")
				s.Logger.Info("Rate limit exceeded",
					"limiter", limiter,
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r))
				s.Observability.RecordRateLimitHit(r.Context(), limiter)
				w.Header().Set("Retry-After", "60")
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := requestAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// requestAPIKey reads X-API-Key, falling back to an Authorization Bearer token
func requestAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP returns the first valid IP in a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}
