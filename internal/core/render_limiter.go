package core

// render_limiter.go bounds how many chart exports run at once.
//
// Rasterizing a chart allocates a full canvas, so parallel exports are
// capped. When all slots are occupied, new requests wait up to maxWait
// before failing with ErrTooManyRenders. WaitForDrain lets shutdown finish
// in-flight exports first.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyRenders is returned when all render slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyRenders = errors.New("too many concurrent renders, please try again later")

// DefaultMaxConcurrentRenders is the default limit for parallel exports.
const DefaultMaxConcurrentRenders = 4

// DefaultMaxRenderWait is how long to wait for a slot before rejecting.
const DefaultMaxRenderWait = 10 * time.Second

// RenderLimiter controls concurrent exports using a semaphore.
type RenderLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewRenderLimiter allows at most maxConcurrent simultaneous renders.
func NewRenderLimiter(maxConcurrent int, maxWait time.Duration) *RenderLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentRenders
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxRenderWait
	}

	return &RenderLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a render slot.
// The caller MUST call Release() when the render completes (use defer).
func (l *RenderLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyRenders
	}
}

// TryAcquire takes a slot without blocking.
func (l *RenderLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *RenderLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of renders in progress.
func (l *RenderLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no render is active or ctx is cancelled.
func (l *RenderLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RenderLimiterStatus is a snapshot of the limiter for monitoring.
type RenderLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *RenderLimiter) Status() RenderLimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return RenderLimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
