package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/user/replaycap/pkg/ports"
)

// Clock is a mock implementation of ports.Clock. Sleep returns immediately
// (after honoring context cancellation), advances the mock's current time by
// the requested duration, and records the call, so pacing tests can count
// sleeps instead of waiting them out.
type Clock struct {
	mu  sync.Mutex
	now time.Time

	NowFunc   func() time.Time
	SleepFunc func(ctx context.Context, d time.Duration) error

	SleepCalls []time.Duration
}

// NewClock creates a mock clock starting at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *Clock) Now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Clock) Sleep(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	m.SleepCalls = append(m.SleepCalls, d)
	m.now = m.now.Add(d)
	m.mu.Unlock()

	if m.SleepFunc != nil {
		return m.SleepFunc(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Slept returns the total duration requested across all Sleep calls.
func (m *Clock) Slept() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total time.Duration
	for _, d := range m.SleepCalls {
		total += d
	}
	return total
}

// SleepCount returns the number of Sleep calls.
func (m *Clock) SleepCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SleepCalls)
}

var _ ports.Clock = (*Clock)(nil)
