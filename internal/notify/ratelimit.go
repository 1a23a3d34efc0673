package notify

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Notifier behind a token bucket so a burst of bookings
// cannot trip provider limits. A cancelled wait counts as a failed delivery,
// consistent with the best-effort contract.
type RateLimited struct {
	inner   Notifier
	limiter *rate.Limiter
}

func NewRateLimited(inner Notifier, perSecond float64, burst int) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (r *RateLimited) Notify(ctx context.Context, recipient, subject, body string) bool {
	if err := r.limiter.Wait(ctx); err != nil {
		return false
	}
	return r.inner.Notify(ctx, recipient, subject, body)
}
