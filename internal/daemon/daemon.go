package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/review"
)

// Daemon owns the review session: the in-memory queue, the action pipeline,
// and the single-instance lock. It lives for the duration of one curation
// session and holds no persistent state of its own.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *review.Pipeline

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	SocketPath    string
	LockFilePath  string
	PriorityForum string
	ItemCount     int
	DraftStats    map[string]int
	LastRefresh   time.Time
	LastError     string
}

// New constructs a daemon around an initialized pipeline.
func New(cfg *config.Config, pipeline *review.Pipeline, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || pipeline == nil {
		return nil, errors.New("daemon requires config and pipeline")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		pipeline: pipeline,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the session lock and performs the initial queue fetch. A
// failed first fetch is not fatal: the session comes up with an empty queue
// and the operator retries with an explicit refresh.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another curatord instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.running.Store(true)

	if err := d.pipeline.Refresh(d.ctx); err != nil {
		d.logger.Warn("initial refresh failed, starting with empty queue",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "Check that curator-server is running, then run curator refresh"))
	}

	d.logger.Info("curator daemon started",
		logging.String("lock", d.lockPath),
		logging.String("socket", d.cfg.SocketPath()))
	return nil
}

// Stop releases the session lock. Queue state is discarded with the process.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("curator daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	store := d.pipeline.Store()
	stats := make(map[string]int, 3)
	for state, count := range store.Stats() {
		stats[string(state)] = count
	}
	lastRefresh, lastError := d.pipeline.LastRefresh()
	return Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		SocketPath:    d.cfg.SocketPath(),
		LockFilePath:  d.lockPath,
		PriorityForum: store.PriorityForum(),
		ItemCount:     store.Len(),
		DraftStats:    stats,
		LastRefresh:   lastRefresh,
		LastError:     lastError,
	}
}

// Queue returns the current queue in display order.
func (d *Daemon) Queue() []review.Entry {
	return d.pipeline.Store().Snapshot()
}

// Entry returns a single queue entry.
func (d *Daemon) Entry(id string) (review.Entry, error) {
	return d.pipeline.Store().Get(id)
}

// Refresh re-fetches the queue from the backend.
func (d *Daemon) Refresh(ctx context.Context) error {
	return d.pipeline.Refresh(ctx)
}

// SetNote records the operator note for an item.
func (d *Daemon) SetNote(id, text string) error {
	return d.pipeline.Store().SetNote(id, text)
}

// SetReply replaces the draft text of a ready item.
func (d *Daemon) SetReply(id, text string) error {
	return d.pipeline.Store().SetReply(id, text)
}

// ToggleExpand flips the detail expansion flag for an item.
func (d *Daemon) ToggleExpand(id string) (bool, error) {
	return d.pipeline.Store().ToggleExpanded(id)
}

// Generate requests a reply draft for an item.
func (d *Daemon) Generate(ctx context.Context, id string) error {
	return d.pipeline.Generate(ctx, id)
}

// Approve posts the item's draft and removes it from the queue.
func (d *Daemon) Approve(ctx context.Context, id string) error {
	return d.pipeline.Approve(ctx, id)
}

// Reject discards the item server-side and removes it from the queue.
func (d *Daemon) Reject(ctx context.Context, id string) error {
	return d.pipeline.Reject(ctx, id)
}

// PostDirect posts the operator note verbatim and removes the item.
func (d *Daemon) PostDirect(ctx context.Context, id string) error {
	return d.pipeline.PostDirect(ctx, id)
}
