package runner

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/city-traffic/internal/models"
)

// AccidentSink stores or forwards one accident record.
type AccidentSink interface {
	StoreAccident(ctx context.Context, rec models.AccidentRecord) error
}

// AccidentSinkFunc adapts a function to AccidentSink.
type AccidentSinkFunc func(ctx context.Context, rec models.AccidentRecord) error

func (f AccidentSinkFunc) StoreAccident(ctx context.Context, rec models.AccidentRecord) error {
	return f(ctx, rec)
}

// Journal moves accident records off the tick loop and hands them to its
// sinks in order. Record never blocks; records are dropped when the buffer is full.
type Journal struct {
	records chan models.AccidentRecord
	sinks   []AccidentSink
	timeout time.Duration
	drain   time.Duration
	logger  *log.Entry
}

// NewJournal returns a Journal buffering up to size records.
func NewJournal(size int, sinks ...AccidentSink) *Journal {
	return &Journal{
		records: make(chan models.AccidentRecord, size),
		sinks:   sinks,
		timeout: 5 * time.Second,
		drain:   2 * time.Second,
		logger:  log.WithField("component", "journal"),
	}
}

// Record queues rec for the sinks. It is safe to call from inside a tick.
func (j *Journal) Record(rec models.AccidentRecord) {
	select {
	case j.records <- rec:
	default:
		j.logger.WithField("accident_id", rec.AccidentID).Warn("Accident journal full, dropping record")
	}
}

// Run delivers queued records until ctx is cancelled, then flushes what is
// still buffered within the drain timeout.
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			j.flush()
			return
		case rec := <-j.records:
			j.deliver(ctx, rec)
		}
	}
}

func (j *Journal) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), j.drain)
	defer cancel()
	for {
		if ctx.Err() != nil {
			if n := len(j.records); n > 0 {
				j.logger.WithField("pending", n).Warn("Accident journal drain timed out")
			}
			return
		}
		select {
		case rec := <-j.records:
			j.deliver(ctx, rec)
		default:
			return
		}
	}
}

func (j *Journal) deliver(ctx context.Context, rec models.AccidentRecord) {
	for _, s := range j.sinks {
		sctx, cancel := context.WithTimeout(ctx, j.timeout)
		err := s.StoreAccident(sctx, rec)
		cancel()
		if err != nil {
			j.logger.WithError(err).WithField("accident_id", rec.AccidentID).Error("Failed to store accident")
		}
	}
}
