package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"reelctl/internal/logging"
	"reelctl/internal/reel"
	"reelctl/internal/services"
)

// ErrSyncBusy is returned when another process holds the sync lock.
var ErrSyncBusy = errors.New("sync already in progress")

const defaultRepublishTimeout = 30 * time.Second

// Local is the subset of the local store a sync cycle reads and rewrites.
type Local interface {
	Scripts(ctx context.Context) ([]reel.Script, error)
	ReplaceScripts(ctx context.Context, scripts []reel.Script) error
	History(ctx context.Context) ([]reel.HistoryItem, error)
	ReplaceHistory(ctx context.Context, items []reel.HistoryItem) error
}

// Remote is the sync side of the generation webhook.
type Remote interface {
	LoadScripts(ctx context.Context) ([]reel.Script, error)
	SaveScripts(ctx context.Context, scripts []reel.Script) error
	LoadHistory(ctx context.Context) ([]reel.HistoryItem, error)
	SaveHistory(ctx context.Context, items []reel.HistoryItem) error
}

// Outcome describes one sync cycle.
type Outcome[T any] struct {
	Items        []T
	LocalCount   int
	RemoteCount  int
	Republished  bool
	RepublishErr error
}

// Engine runs sync cycles between a Local store and a Remote.
type Engine struct {
	local            Local
	remote           Remote
	logger           *slog.Logger
	lock             *flock.Flock
	running          sync.Mutex
	republishTimeout time.Duration
	async            bool
	pending          sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.NewComponentLogger(logger, "merge")
	}
}

// WithLockFile guards each cycle with an advisory file lock so two processes
// on one machine do not interleave cycles.
func WithLockFile(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.lock = flock.New(path)
		}
	}
}

// WithRepublishTimeout bounds the fire-and-forget re-publish call.
func WithRepublishTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.republishTimeout = d
		}
	}
}

// WithAsyncRepublish runs re-publish in the background. Long-lived callers
// (the local API) use it; call Wait before shutdown.
func WithAsyncRepublish() Option {
	return func(e *Engine) {
		e.async = true
	}
}

// NewEngine wires an Engine. A nil remote makes every cycle fail with a
// configuration error.
func NewEngine(local Local, remote Remote, opts ...Option) *Engine {
	e := &Engine{
		local:            local,
		remote:           remote,
		logger:           logging.NewComponentLogger(nil, "merge"),
		republishTimeout: defaultRepublishTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wait blocks until background re-publish calls finish.
func (e *Engine) Wait() {
	e.pending.Wait()
}

// SyncScripts runs one script sync cycle. When the remote fetch fails the
// local collection is returned unchanged together with the fetch error.
func (e *Engine) SyncScripts(ctx context.Context) (Outcome[reel.Script], error) {
	unlock, err := e.acquire()
	if err != nil {
		local, lerr := e.local.Scripts(ctx)
		if lerr != nil {
			return Outcome[reel.Script]{}, lerr
		}
		return Outcome[reel.Script]{Items: local, LocalCount: len(local)}, err
	}
	defer unlock()

	local, err := e.local.Scripts(ctx)
	if err != nil {
		return Outcome[reel.Script]{}, err
	}
	out := Outcome[reel.Script]{Items: local, LocalCount: len(local)}

	if e.remote == nil {
		return out, services.Wrap(services.ErrConfiguration, "merge", "load scripts", "webhook url is not configured", nil)
	}
	remote, err := e.remote.LoadScripts(ctx)
	if err != nil {
		return out, fmt.Errorf("load remote scripts: %w", err)
	}
	out.RemoteCount = len(remote)

	merged := Scripts(local, remote)
	if err := e.local.ReplaceScripts(ctx, merged); err != nil {
		return out, err
	}
	out.Items = merged

	if ScriptsDiverge(merged, remote) {
		out.Republished = true
		out.RepublishErr = e.republish(ctx, "scripts", func(ctx context.Context) error {
			return e.remote.SaveScripts(ctx, merged)
		})
	}
	e.logger.Info("scripts synced",
		logging.Int("local", out.LocalCount),
		logging.Int("remote", out.RemoteCount),
		logging.Int("merged", len(merged)),
		logging.Bool("republished", out.Republished),
	)
	return out, nil
}

// SyncHistory runs one history sync cycle with the same failure contract as
// SyncScripts.
func (e *Engine) SyncHistory(ctx context.Context) (Outcome[reel.HistoryItem], error) {
	unlock, err := e.acquire()
	if err != nil {
		local, lerr := e.local.History(ctx)
		if lerr != nil {
			return Outcome[reel.HistoryItem]{}, lerr
		}
		return Outcome[reel.HistoryItem]{Items: local, LocalCount: len(local)}, err
	}
	defer unlock()

	local, err := e.local.History(ctx)
	if err != nil {
		return Outcome[reel.HistoryItem]{}, err
	}
	out := Outcome[reel.HistoryItem]{Items: local, LocalCount: len(local)}

	if e.remote == nil {
		return out, services.Wrap(services.ErrConfiguration, "merge", "load history", "webhook url is not configured", nil)
	}
	remote, err := e.remote.LoadHistory(ctx)
	if err != nil {
		return out, fmt.Errorf("load remote history: %w", err)
	}
	out.RemoteCount = len(remote)

	merged := reel.CapHistory(History(local, remote), reel.HistoryLimit)
	if err := e.local.ReplaceHistory(ctx, merged); err != nil {
		return out, err
	}
	out.Items = merged

	if HistoryDiverges(merged, remote) {
		out.Republished = true
		out.RepublishErr = e.republish(ctx, "history", func(ctx context.Context) error {
			return e.remote.SaveHistory(ctx, merged)
		})
	}
	e.logger.Info("history synced",
		logging.Int("local", out.LocalCount),
		logging.Int("remote", out.RemoteCount),
		logging.Int("merged", len(merged)),
		logging.Bool("republished", out.Republished),
	)
	return out, nil
}

// PushScripts publishes the local collection as-is, replacing the remote copy.
func (e *Engine) PushScripts(ctx context.Context) (int, error) {
	if e.remote == nil {
		return 0, services.Wrap(services.ErrConfiguration, "merge", "push scripts", "webhook url is not configured", nil)
	}
	unlock, err := e.acquire()
	if err != nil {
		return 0, err
	}
	defer unlock()

	local, err := e.local.Scripts(ctx)
	if err != nil {
		return 0, err
	}
	return len(local), e.remote.SaveScripts(ctx, local)
}

// republish runs save under its own deadline. Errors are logged and returned
// for reporting only. In async mode nil is returned immediately.
func (e *Engine) republish(ctx context.Context, what string, save func(context.Context) error) error {
	run := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, e.republishTimeout)
		defer cancel()
		err := save(ctx)
		if err != nil {
			logging.WarnWithContext(e.logger, "re-publish failed", "sync_republish_failed",
				"remote copy stays out of step until the next sync",
				logging.String("collection", what),
				logging.Error(err),
			)
		}
		return err
	}
	if !e.async {
		return run(ctx)
	}
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		_ = run(context.WithoutCancel(ctx))
	}()
	return nil
}

func (e *Engine) acquire() (func(), error) {
	if !e.running.TryLock() {
		return nil, ErrSyncBusy
	}
	if e.lock == nil {
		return e.running.Unlock, nil
	}
	ok, err := e.lock.TryLock()
	if err != nil {
		e.running.Unlock()
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		e.running.Unlock()
		return nil, ErrSyncBusy
	}
	return func() {
		_ = e.lock.Unlock()
		e.running.Unlock()
	}, nil
}
