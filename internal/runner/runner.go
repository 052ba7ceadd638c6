// Package runner drives a sim.World in real time and fans its state out to
// websocket subscribers, periodic snapshot sinks and the accident journal.
package runner

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/city-traffic/internal/models"
	"github.com/ukydev/city-traffic/internal/sim"
)

// SnapshotSink receives a snapshot every few ticks.
type SnapshotSink interface {
	PublishSnapshot(snap models.Snapshot) error
}

type snapshotSink struct {
	sink  SnapshotSink
	every uint64
}

// Runner serialises every access to its World. The tick loop, HTTP handlers
// and websocket readers all go through the same lock.
type Runner struct {
	mu         sync.Mutex
	world      *sim.World
	paused     bool
	interval   time.Duration
	statsEvery uint64
	sinks      []snapshotSink
	logger     *log.Entry

	subMu   sync.Mutex
	subs    map[int]chan models.Snapshot
	nextSub int
}

// Option customises a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(l *log.Entry) Option {
	return func(r *Runner) { r.logger = l }
}

// WithStatsEvery logs population statistics every n ticks. Zero disables it.
func WithStatsEvery(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.statsEvery = uint64(n)
		}
	}
}

// WithSnapshotSink publishes a snapshot to s every n ticks.
func WithSnapshotSink(s SnapshotSink, n int) Option {
	return func(r *Runner) {
		if s != nil && n > 0 {
			r.sinks = append(r.sinks, snapshotSink{sink: s, every: uint64(n)})
		}
	}
}

// New returns a Runner ticking w every interval.
func New(w *sim.World, interval time.Duration, opts ...Option) *Runner {
	r := &Runner{
		world:    w,
		interval: interval,
		logger:   log.WithField("component", "runner"),
		subs:     make(map[int]chan models.Snapshot),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run ticks the world until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.WithFields(log.Fields{
		"interval": r.interval,
		"run_id":   r.world.RunID(),
	}).Info("Simulation started")

	for {
		select {
		case <-ctx.Done():
			r.logger.WithField("tick", r.Stats().Tick).Info("Simulation stopped")
			r.closeSubscribers()
			return ctx.Err()
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick advances the world by one step unless paused, then fans out the result.
func (r *Runner) Tick() {
	r.mu.Lock()
	if r.paused {
		r.mu.Unlock()
		return
	}
	r.world.Step()
	stats := r.world.Stats()
	now := r.world.Now()

	var due []SnapshotSink
	for _, s := range r.sinks {
		if stats.Tick%s.every == 0 {
			due = append(due, s.sink)
		}
	}
	hasSubs := r.subscriberCount() > 0
	var snap models.Snapshot
	if len(due) > 0 || hasSubs {
		snap = r.snapshotLocked()
	}
	r.mu.Unlock()

	if r.statsEvery > 0 && stats.Tick%r.statsEvery == 0 {
		r.logger.WithFields(log.Fields{
			"tick":           stats.Tick,
			"active":         stats.Active,
			"capacity":       stats.Capacity,
			"spawned":        stats.Spawned,
			"despawned":      stats.Despawned,
			"accidents":      stats.Accidents,
			"live_accidents": stats.LiveAccidents,
			"sim_time":       now.Format("15:04"),
		}).Info("Population")
	}

	for _, s := range due {
		if err := s.PublishSnapshot(snap); err != nil {
			r.logger.WithError(err).Warn("Failed to publish snapshot")
		}
	}
	if hasSubs {
		r.broadcast(snap)
	}
}

// Do runs fn with exclusive access to the world.
func (r *Runner) Do(fn func(w *sim.World) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.world)
}

// SetPaused freezes or resumes the tick loop.
func (r *Runner) SetPaused(paused bool) {
	r.mu.Lock()
	changed := r.paused != paused
	r.paused = paused
	r.mu.Unlock()

	if changed {
		r.logger.WithField("paused", paused).Info("Simulation pause toggled")
	}
}

// Paused reports whether the tick loop is frozen.
func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Snapshot returns the current world state.
func (r *Runner) Snapshot() models.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Stats returns the current counters.
func (r *Runner) Stats() models.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.world.Stats()
}

func (r *Runner) snapshotLocked() models.Snapshot {
	snap := r.world.Snapshot()
	snap.Paused = r.paused
	return snap
}

// Subscribe returns a channel that receives a snapshot after every tick and a
// function that ends the subscription. A slow subscriber only ever sees the
// latest snapshot.
func (r *Runner) Subscribe() (<-chan models.Snapshot, func()) {
	ch := make(chan models.Snapshot, 1)

	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.subMu.Lock()
			if _, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(ch)
			}
			r.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (r *Runner) subscriberCount() int {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	return len(r.subs)
}

func (r *Runner) broadcast(snap models.Snapshot) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (r *Runner) closeSubscribers() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
}
