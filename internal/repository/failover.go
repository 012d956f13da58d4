package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

const defaultRetryAfter = time.Minute

// FailoverRateLimitRepository uses the primary store and switches to the fallback while the primary is failing.
// The primary is retried once retryAfter has passed since the last failure.
type FailoverRateLimitRepository struct {
	primary    domain.RateLimitRepository
	fallback   domain.RateLimitRepository
	logger     *zerolog.Logger
	retryAfter time.Duration
	now        func() time.Time

	mu       sync.Mutex
	isDown   bool
	downedAt time.Time
}

func NewFailoverRateLimitRepository(primary, fallback domain.RateLimitRepository, logger *zerolog.Logger) *FailoverRateLimitRepository {
	return &FailoverRateLimitRepository{
		primary:    primary,
		fallback:   fallback,
		logger:     logger,
		retryAfter: defaultRetryAfter,
		now:        time.Now,
	}
}

func (r *FailoverRateLimitRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}

// Degraded reports whether calls are currently served by the fallback.
func (r *FailoverRateLimitRepository) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isDown
}

func (r *FailoverRateLimitRepository) usePrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.isDown || r.now().Sub(r.downedAt) >= r.retryAfter
}

func (r *FailoverRateLimitRepository) markUp() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isDown {
		r.logger.Info().Msg("primary rate limit store recovered")
	}
	r.isDown = false
}

func (r *FailoverRateLimitRepository) markDown(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isDown {
		r.logger.Error().Err(err).Msg("primary rate limit store failed, falling back to memory")
	}
	r.isDown = true
	r.downedAt = r.now()
}
