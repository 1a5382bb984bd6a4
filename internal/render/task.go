package render

import (
	"context"
	"errors"
	"sync"
	"time"

	"reelctl/internal/services"
)

// Default polling cadences.
const (
	DirectPollInterval   = 1500 * time.Millisecond
	WorkflowPollInterval = 15 * time.Second
)

// FetchFunc returns the latest snapshot of a job.
type FetchFunc func(ctx context.Context) (Job, error)

// ErrStopped is returned by Wait when observation ended before a terminal
// status.
var ErrStopped = errors.New("render observation stopped")

// Task observes a job on a fixed interval until it is terminal, the fetch
// fails, Stop is called, or the context ends.
type Task struct {
	updates chan Job
	done    chan struct{}
	cancel  context.CancelFunc

	mu   sync.Mutex
	last Job
	err  error
}

// Poll starts observing. The first fetch happens after one interval.
func Poll(ctx context.Context, interval time.Duration, fetch FetchFunc) *Task {
	if interval <= 0 {
		interval = DirectPollInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		updates: make(chan Job, 1),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	go t.run(ctx, interval, fetch)
	return t
}

func (t *Task) run(ctx context.Context, interval time.Duration, fetch FetchFunc) {
	defer close(t.done)
	defer close(t.updates)
	defer t.cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.finish(Job{}, false, ErrStopped)
			return
		case <-ticker.C:
		}

		job, err := fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.finish(Job{}, false, ErrStopped)
				return
			}
			failed := t.Last()
			failed.Status = StatusFailure
			failed.Progress = "polling failed"
			failed.UpdatedAt = time.Now().UTC()
			t.publish(failed)
			t.finish(failed, true, services.Wrap(services.ErrTransport, "render", "poll", "polling failed", err))
			return
		}
		t.publish(job)
		if job.Terminal() {
			t.finish(job, true, nil)
			return
		}
	}
}

// publish keeps only the newest snapshot buffered so a slow or absent
// reader never stalls the ticker.
func (t *Task) publish(job Job) {
	t.mu.Lock()
	t.last = job
	t.mu.Unlock()
	select {
	case t.updates <- job:
		return
	default:
	}
	select {
	case <-t.updates:
	default:
	}
	select {
	case t.updates <- job:
	default:
	}
}

func (t *Task) finish(job Job, set bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if set {
		t.last = job
	}
	t.err = err
}

// Updates delivers snapshots and is closed when observation ends.
func (t *Task) Updates() <-chan Job {
	return t.updates
}

// Done is closed when observation ends.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Last returns the newest snapshot seen.
func (t *Task) Last() Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Wait blocks until observation ends and returns the final snapshot.
func (t *Task) Wait() (Job, error) {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.err
}

// Stop cancels observation and waits for the goroutine to exit.
func (t *Task) Stop() {
	t.cancel()
	<-t.done
}
