package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	likesMinuteWindow = time.Minute
	likesBurstWindow  = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// Limiter throttles like submissions with two fixed windows: a sustained
// per-minute cap and a short burst cap.
type Limiter struct {
	store     WindowStore
	perMinute int
	perBurst  int
}

func NewLimiter(store WindowStore, perMinute, perBurst int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if perBurst < 0 {
		perBurst = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		perBurst:  perBurst,
	}
}

// AllowLike counts the attempt against both windows. When either window is
// exhausted it returns allowed=false and the number of seconds to wait.
func (l *Limiter) AllowLike(ctx context.Context, userID int64) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, minuteKey(userID), likesMinuteWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perMinute) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perBurst > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, burstKey(userID), likesBurstWindow)
		if err != nil {
			return 0, false, err
		}
		if count > int64(l.perBurst) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}

	return 0, true, nil
}

// RetryAfterLike reports the current wait without consuming an attempt.
func (l *Limiter) RetryAfterLike(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.WindowState(ctx, minuteKey(userID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perMinute) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perBurst > 0 {
		count, ttl, err := l.store.WindowState(ctx, burstKey(userID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perBurst) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	return retryAfterSec, nil
}

func minuteKey(userID int64) string {
	return "rate:likes:min:" + strconv.FormatInt(userID, 10)
}

func burstKey(userID int64) string {
	return "rate:likes:10s:" + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
