package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"impostor/internal/domain"
)

// recordTimeout bounds a single sink write
const recordTimeout = 5 * time.Second

// OutcomeSink receives every resolved round
type OutcomeSink interface {
	Record(ctx context.Context, outcome domain.Outcome) error
}

// OutcomeDispatcher hands outcomes to a sink on its own goroutine so the
// session never waits on sink I/O. Outcomes are dropped when the buffer is
// full. A nil dispatcher discards everything.
type OutcomeDispatcher struct {
	sink      OutcomeSink
	ch        chan domain.Outcome
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewOutcomeDispatcher starts a dispatcher. It returns nil when sink is nil.
func NewOutcomeDispatcher(sink OutcomeSink, bufferSize int, logger *slog.Logger) *OutcomeDispatcher {
	if sink == nil {
		return nil
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}

	d := &OutcomeDispatcher{
		sink:   sink,
		ch:     make(chan domain.Outcome, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *OutcomeDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case outcome := <-d.ch:
			d.record(outcome)
		case <-d.done:
			for {
				select {
				case outcome := <-d.ch:
					d.record(outcome)
				default:
					return
				}
			}
		}
	}
}

func (d *OutcomeDispatcher) record(outcome domain.Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := d.sink.Record(ctx, outcome); err != nil {
		d.logger.Warn("failed to record outcome", "winner", outcome.Winner, "error", err)
	}
}

// Dispatch queues an outcome without blocking
func (d *OutcomeDispatcher) Dispatch(outcome domain.Outcome) {
	if d == nil || d.closed.Load() {
		return
	}

	select {
	case d.ch <- outcome:
	case <-d.done:
	default:
		d.dropped.Add(1)
		d.logger.Warn("outcome queue full, dropping outcome", "winner", outcome.Winner)
	}
}

// Dropped returns how many outcomes were discarded because the queue was full
func (d *OutcomeDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Close stops accepting outcomes and waits for the queue to drain
func (d *OutcomeDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}
