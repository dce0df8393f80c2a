// Package tasks keeps bookkeeping for long-running jobs (downloads driven by
// an external tool) so clients can poll their progress. It is a degenerate
// cache: entries are keyed by task ID and a task nobody has touched for the
// stale period reads as absent, evaluated lazily like cache freshness.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"contentgw/pkg/platform/sentinel"
	"contentgw/pkg/requestcontext"
)

// DefaultStaleAfter is how long an untouched task stays visible.
const DefaultStaleAfter = time.Hour

type Status string

const (
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
	StatusFailed   Status = "failed"
)

var (
	ErrTaskNotFound = fmt.Errorf("task %w", sentinel.ErrNotFound)
	ErrTaskClosed   = errors.New("task already finished")
	ErrInvalidTask  = errors.New("invalid task")
)

type Task struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Progress  float64   `json:"progress"`
	URL       string    `json:"url"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Task) stale(now time.Time, after time.Duration) bool {
	return !now.Before(t.UpdatedAt.Add(after))
}

// Tracker is safe for concurrent use.
type Tracker struct {
	mu         sync.RWMutex
	tasks      map[string]*Task
	staleAfter time.Duration
	newID      func() string
}

type Option func(*Tracker)

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) {
		t.newID = newID
	}
}

// NewTracker returns a tracker that forgets tasks idle for staleAfter.
func NewTracker(staleAfter time.Duration, opts ...Option) *Tracker {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	t := &Tracker{
		tasks:      make(map[string]*Task),
		staleAfter: staleAfter,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start registers a running task for target.
func (t *Tracker) Start(ctx context.Context, target string) (Task, error) {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Task{}, fmt.Errorf("%w: url must be absolute http(s)", ErrInvalidTask)
	}
	now := requestcontext.Now(ctx)
	task := &Task{
		ID:        t.newID(),
		Status:    StatusRunning,
		URL:       u.String(),
		StartedAt: now,
		UpdatedAt: now,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks[task.ID] = task
	return *task, nil
}

// Update records progress, a percentage clamped to [0, 100].
func (t *Tracker) Update(ctx context.Context, id string, progress float64) (Task, error) {
	if math.IsNaN(progress) {
		return Task{}, fmt.Errorf("%w: progress is not a number", ErrInvalidTask)
	}
	now := requestcontext.Now(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	task, err := t.live(id, now)
	if err != nil {
		return Task{}, err
	}
	if task.Status != StatusRunning {
		return Task{}, ErrTaskClosed
	}
	task.Progress = max(0, min(100, progress))
	task.UpdatedAt = now
	return *task, nil
}

// Finish closes a task. A nil cause marks it finished at 100%; otherwise it
// is failed with the cause's message.
func (t *Tracker) Finish(ctx context.Context, id string, cause error) (Task, error) {
	now := requestcontext.Now(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	task, err := t.live(id, now)
	if err != nil {
		return Task{}, err
	}
	if task.Status != StatusRunning {
		return Task{}, ErrTaskClosed
	}
	if cause != nil {
		task.Status = StatusFailed
		task.Error = cause.Error()
	} else {
		task.Status = StatusFinished
		task.Progress = 100
	}
	task.UpdatedAt = now
	return *task, nil
}

func (t *Tracker) Get(ctx context.Context, id string) (Task, error) {
	now := requestcontext.Now(ctx)

	t.mu.RLock()
	defer t.mu.RUnlock()
	task, err := t.live(id, now)
	if err != nil {
		return Task{}, err
	}
	return *task, nil
}

func (t *Tracker) Remove(_ context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tasks, id)
}

// Purge drops stale tasks and returns how many were removed.
func (t *Tracker) Purge(_ context.Context, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for id, task := range t.tasks {
		if task.stale(now, t.staleAfter) {
			delete(t.tasks, id)
			removed++
		}
	}
	return removed
}

// live must be called with the lock held.
func (t *Tracker) live(id string, now time.Time) (*Task, error) {
	task, ok := t.tasks[id]
	if !ok || task.stale(now, t.staleAfter) {
		return nil, ErrTaskNotFound
	}
	return task, nil
}
