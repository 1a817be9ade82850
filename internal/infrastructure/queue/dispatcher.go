package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ghorer-khabar/mealclub/internal/api/metrics"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes vote-history writes to a fixed set of workers using
// consistent hashing on the member id, so one member's writes are applied
// in submission order.
type Dispatcher struct {
	workers []chan ports.VoteHistoryInput
	service ports.VoteHistoryService
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.VoteHistoryService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.VoteHistoryInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.VoteHistoryInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when ctx is cancelled
// or after Stop has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop closes every worker channel and waits for the queued writes to be
// applied. Enqueue after Stop drops the write.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Enqueue sends a write to the worker responsible for its member. The call
// is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(in ports.VoteHistoryInput) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("member_id", in.MemberID).Str("poll_id", in.PollID).Msg("dispatcher stopped, vote history write dropped")
		return
	}
	idx := d.shardIndex(in.MemberID)
	d.workers[idx] <- in
	metrics.VoteSyncQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a member id deterministically to a worker index.
func (d *Dispatcher) shardIndex(memberID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(memberID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.VoteHistoryInput) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			metrics.VoteSyncQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

			start := time.Now()
			err := d.service.Record(ctx, in)
			outcome := "ok"
			if err != nil {
				outcome = "error"
				d.log.Error().Err(err).
					Str("member_id", in.MemberID).
					Str("poll_id", in.PollID).
					Int("worker_id", id).
					Msg("vote history write failed")
			}
			metrics.VoteSyncDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		}
	}
}
