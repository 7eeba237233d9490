package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
)

// Limiter governs outbound fetch pacing with one token bucket per
// platform. Buckets are shared process-wide: created at startup, live
// for the process lifetime, no reset except restart. Refill is
// wall-clock based, so idle periods recover capacity smoothly. There is
// no cross-platform borrowing.
type Limiter struct {
	buckets map[domain.Platform]*rate.Limiter
}

// New builds buckets for every configured platform.
func New(limits map[string]config.RateConfig) *Limiter {
	buckets := make(map[domain.Platform]*rate.Limiter, len(limits))
	for platform, rc := range limits {
		perMinute := rc.PerMinute
		if perMinute <= 0 {
			perMinute = 60
		}
		burst := rc.Burst
		if burst <= 0 {
			burst = perMinute
		}
		buckets[domain.Platform(platform)] = rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
	}
	return &Limiter{buckets: buckets}
}

// Acquire blocks until a token for the platform is available or the
// context deadline elapses, in which case it fails with
// domain.ErrRateLimitTimeout.
func (l *Limiter) Acquire(ctx context.Context, platform domain.Platform) error {
	bucket, ok := l.buckets[platform]
	if !ok {
		return fmt.Errorf("no rate bucket for platform %s", platform)
	}

	// rate.Limiter rejects waits that cannot complete before the
	// caller's deadline as well as interrupted waits.
	if err := bucket.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrRateLimitTimeout, platform, err)
	}
	return nil
}

// Allow reports whether a token is immediately available without waiting.
func (l *Limiter) Allow(platform domain.Platform) bool {
	bucket, ok := l.buckets[platform]
	if !ok {
		return false
	}
	return bucket.Allow()
}
