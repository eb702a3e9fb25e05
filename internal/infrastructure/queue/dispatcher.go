// Package queue fans account activity events out to a fixed set of workers
// that persist them off the request path.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/scoresync/account-service/internal/core/domain"
	"github.com/scoresync/account-service/internal/core/ports"
	"github.com/scoresync/account-service/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// Dispatcher routes activity events to a fixed set of workers using
// consistent hashing on the username, preserving per-account ordering.
type Dispatcher struct {
	workers []chan domain.ActivityEvent
	repo    ports.ActivityRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.ActivityEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ActivityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// after persisting whatever is still buffered.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record enqueues event on the worker responsible for its username. It never
// blocks: when that worker's buffer is full the event is dropped.
func (d *Dispatcher) Record(event domain.ActivityEvent) {
	idx := d.shardIndex(event.Username)
	depth := metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx))
	// Count before sending so the worker's Dec never runs first.
	depth.Inc()
	select {
	case d.workers[idx] <- event:
	default:
		depth.Dec()
		metrics.ActivityDroppedTotal.Inc()
		d.log.Warn().
			Str("username", event.Username).
			Str("kind", string(event.Kind)).
			Int("worker_id", idx).
			Msg("activity queue full, event dropped")
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ActivityEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			d.persist(ctx, id, event)
		}
	}
}

// drain persists the events still buffered in ch at shutdown.
func (d *Dispatcher) drain(id int, ch <-chan domain.ActivityEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-ch:
			d.persist(ctx, id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, event domain.ActivityEvent) {
	metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(id)).Dec()
	if err := d.repo.InsertActivity(ctx, event); err != nil {
		metrics.ActivityErrorsTotal.Inc()
		d.log.Error().Err(err).
			Str("username", event.Username).
			Str("kind", string(event.Kind)).
			Int("worker_id", id).
			Msg("activity persistence failed")
		return
	}
	metrics.ActivityRecordedTotal.WithLabelValues(string(event.Kind)).Inc()
}
