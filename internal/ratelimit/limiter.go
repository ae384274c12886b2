package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nextup-labs/nxt-ledger/internal/adapter"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
)

const (
	// DEFAULT_IDLE_TTL is how long an unused key keeps its bucket
	DEFAULT_IDLE_TTL = 10 * time.Minute
	// sweepEvery is the number of Allow calls between idle bucket sweeps
	sweepEvery = 1024
)

// Config holds the per-key token bucket settings
type Config struct {
	RequestsPerSecond float64
	Burst             int
	IdleTTL           time.Duration
}

// Limiter throttles requests per key
//
//go:generate mockgen -source=limiter.go -destination=../mocks/ratelimit.go -package=mocks -mock_names=Limiter=MockLimiter
type Limiter interface {
	// Allow consumes a token for key. When denied it returns how long to wait for the next token.
	Allow(key string) (bool, time.Duration)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiter struct {
	config  Config
	clock   adapter.Clock
	mu      sync.Mutex
	buckets map[string]*bucket
	calls   int
}

// NewLimiter creates a per-key limiter. It returns nil when RequestsPerSecond is not positive.
func NewLimiter(cfg Config, clock adapter.Clock) Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(int(cfg.RequestsPerSecond), 1)
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DEFAULT_IDLE_TTL
	}

	logger.Info("Rate limiter initialized",
		zap.Float64("requests_per_second", cfg.RequestsPerSecond),
		zap.Int("burst", cfg.Burst),
	)

	return &limiter{
		config:  cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

func (l *limiter) Allow(key string) (bool, time.Duration) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	r := b.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops buckets idle for longer than the TTL
func (l *limiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.config.IdleTTL {
			delete(l.buckets, key)
		}
	}
}
