package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/logger"
)

// Ensure the decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)
	_ driven.LLMService       = (*RateLimitedLLM)(nil)
)

// Limiter throttles provider calls with a token bucket and honours the
// back-off a provider requests when it rate limits us.
type Limiter struct {
	mu       sync.Mutex
	bucket   *rate.Limiter
	resumeAt time.Time
}

// NewLimiter creates a limiter from settings. A non-positive rate disables
// proactive throttling but still honours provider back-off.
func NewLimiter(settings domain.RateLimitSettings) *Limiter {
	limit := rate.Inf
	if settings.RequestsPerSecond > 0 {
		limit = rate.Limit(settings.RequestsPerSecond)
	}
	burst := settings.Burst
	if burst < 1 {
		burst = 1
	}
	return &Limiter{bucket: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a call may be made or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	resumeAt := l.resumeAt
	l.mu.Unlock()

	if d := time.Until(resumeAt); d > 0 {
		logger.Debug("Backing off %s after provider rate limit", d.Round(time.Millisecond))
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.bucket.Wait(ctx)
}

// Observe records a provider's requested back-off carried by err.
func (l *Limiter) Observe(err error) {
	var perr *domain.ProviderError
	if !errors.As(err, &perr) || perr.Reason != domain.ReasonRateLimit || perr.RetryAfter <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if at := time.Now().Add(perr.RetryAfter); at.After(l.resumeAt) {
		l.resumeAt = at
	}
}

// RateLimitedEmbedding throttles an embedding service.
type RateLimitedEmbedding struct {
	driven.EmbeddingService
	limiter *Limiter
}

// NewRateLimitedEmbedding wraps svc with limiter.
func NewRateLimitedEmbedding(svc driven.EmbeddingService, limiter *Limiter) *RateLimitedEmbedding {
	return &RateLimitedEmbedding{EmbeddingService: svc, limiter: limiter}
}

// Embed waits for the limiter, then embeds text.
func (r *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := r.EmbeddingService.Embed(ctx, text)
	r.limiter.Observe(err)
	return v, err
}

// EmbedBatch waits for the limiter, then embeds texts in one call.
func (r *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := r.EmbeddingService.EmbedBatch(ctx, texts)
	r.limiter.Observe(err)
	return v, err
}

// RateLimitedLLM throttles an LLM service.
type RateLimitedLLM struct {
	driven.LLMService
	limiter *Limiter
}

// NewRateLimitedLLM wraps svc with limiter.
func NewRateLimitedLLM(svc driven.LLMService, limiter *Limiter) *RateLimitedLLM {
	return &RateLimitedLLM{LLMService: svc, limiter: limiter}
}

// Generate waits for the limiter, then generates a completion.
func (r *RateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := r.LLMService.Generate(ctx, prompt, opts)
	r.limiter.Observe(err)
	return out, err
}
