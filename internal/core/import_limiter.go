package core

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrTooManyImports is returned when every slot stays busy for the whole
// wait period.
var ErrTooManyImports = errors.New("too many imports in progress, please try again later")

const (
	// DefaultMaxConcurrentImports is used when the configured limit is not positive.
	DefaultMaxConcurrentImports = 3
	// DefaultMaxWaitTime is used when the configured wait is not positive.
	DefaultMaxWaitTime = 30 * time.Second
)

// Job describes one piece of work holding a limiter slot.
type Job struct {
	Kind    string    `json:"kind"`
	Label   string    `json:"label,omitempty"`
	Started time.Time `json:"started"`
}

// ImportLimiter bounds how many imports and standardize runs execute at
// once and keeps track of what is running so the status endpoint and
// shutdown can report it.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu   sync.Mutex
	jobs map[uint64]Job
	seq  uint64
	idle chan struct{} // closed while no job is running
}

// NewImportLimiter allows maxConcurrent jobs and lets callers queue for up
// to maxWait. Non-positive arguments select the defaults.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	idle := make(chan struct{})
	close(idle)
	return &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		jobs:    make(map[uint64]Job),
		idle:    idle,
	}
}

// Acquire takes a slot for a job of the given kind. It gives up with
// ErrTooManyImports after maxWait, or with ctx's error if ctx ends first.
// The returned release func is safe to call more than once.
func (l *ImportLimiter) Acquire(ctx context.Context, kind, label string) (func(), error) {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return l.track(kind, label), nil
	case <-timer.C:
		return nil, ErrTooManyImports
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *ImportLimiter) TryAcquire(kind, label string) (func(), bool) {
	select {
	case l.slots <- struct{}{}:
		return l.track(kind, label), true
	default:
		return nil, false
	}
}

func (l *ImportLimiter) track(kind, label string) func() {
	l.mu.Lock()
	if len(l.jobs) == 0 {
		l.idle = make(chan struct{})
	}
	l.seq++
	id := l.seq
	l.jobs[id] = Job{Kind: kind, Label: label, Started: time.Now()}
	l.mu.Unlock()

	return sync.OnceFunc(func() {
		l.mu.Lock()
		delete(l.jobs, id)
		if len(l.jobs) == 0 {
			close(l.idle)
		}
		l.mu.Unlock()
		<-l.slots
	})
}

// Active returns the number of running jobs.
func (l *ImportLimiter) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.jobs)
}

// WaitForDrain blocks until no job is running or ctx ends.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LimiterStatus is a snapshot of an ImportLimiter.
type LimiterStatus struct {
	Active        int   `json:"active"`
	Available     int   `json:"available"`
	MaxConcurrent int   `json:"max_concurrent"`
	Jobs          []Job `json:"jobs"`
}

// Status lists running jobs oldest first.
func (l *ImportLimiter) Status() LimiterStatus {
	l.mu.Lock()
	ids := make([]uint64, 0, len(l.jobs))
	for id := range l.jobs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	jobs := make([]Job, 0, len(ids))
	for _, id := range ids {
		jobs = append(jobs, l.jobs[id])
	}
	l.mu.Unlock()

	return LimiterStatus{
		Active:        len(jobs),
		Available:     cap(l.slots) - len(jobs),
		MaxConcurrent: cap(l.slots),
		Jobs:          jobs,
	}
}
