// Package dispatcher runs message handlers on a fixed pool of workers. All
// messages of a user land on the same worker, so a user never has two
// messages in flight and they are handled in arrival order.
package dispatcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/guilherme-santos/calbot/internal"
	"github.com/guilherme-santos/calbot/internal/metrics"
)

var (
	ErrRateLimited = errors.New("dispatcher: too many messages")
	ErrQueueFull   = errors.New("dispatcher: queue is full")
	ErrClosed      = errors.New("dispatcher: closed")
)

const sweepEvery = time.Minute

type HandlerFunc func(context.Context, internal.Message)

type Options struct {
	Workers    int
	QueueDepth int
	// Rate and Burst limit the messages accepted per user, no limit when Rate
	// is zero.
	Rate  rate.Limit
	Burst int
}

type Dispatcher struct {
	handle HandlerFunc
	shards []chan internal.Message
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	limitMu   sync.Mutex
	limiters  map[int64]*rate.Limiter
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// New starts the workers. Handlers run detached from ctx cancellation: a
// message that started is always handled to the end.
func New(ctx context.Context, opts Options, handle HandlerFunc) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = 1
	}
	if opts.Rate <= 0 {
		opts.Rate = rate.Inf
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	d := &Dispatcher{
		handle:   handle,
		shards:   make([]chan internal.Message, opts.Workers),
		limiters: make(map[int64]*rate.Limiter),
		rate:     opts.Rate,
		burst:    opts.Burst,
		now:      time.Now,
	}
	ctx = context.WithoutCancel(ctx)
	for i := range d.shards {
		d.shards[i] = make(chan internal.Message, opts.QueueDepth)
		d.wg.Add(1)
		go func(queue <-chan internal.Message) {
			defer d.wg.Done()
			d.run(ctx, queue)
		}(d.shards[i])
	}
	return d
}

func (d *Dispatcher) run(ctx context.Context, queue <-chan internal.Message) {
	for msg := range queue {
		metrics.QueueLength.Dec()
		d.handle(ctx, msg)
	}
}

// Submit enqueues msg without blocking.
func (d *Dispatcher) Submit(msg internal.Message) error {
	if !d.allow(msg.UserID) {
		metrics.MessagesRejected.WithLabelValues("rate_limited").Inc()
		return ErrRateLimited
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrClosed
	}
	metrics.QueueLength.Inc()
	select {
	case d.shards[d.shard(msg.UserID)] <- msg:
		return nil
	default:
		metrics.QueueLength.Dec()
		metrics.MessagesRejected.WithLabelValues("queue_full").Inc()
		return ErrQueueFull
	}
}

// Drain stops accepting messages and waits for the queued ones.
func (d *Dispatcher) Drain() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.shards {
			close(q)
		}
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Len returns how many messages are waiting.
func (d *Dispatcher) Len() int {
	n := 0
	for _, q := range d.shards {
		n += len(q)
	}
	return n
}

func (d *Dispatcher) shard(userID int64) int {
	return int(uint64(userID) % uint64(len(d.shards)))
}

func (d *Dispatcher) allow(userID int64) bool {
	if d.rate == rate.Inf {
		return true
	}

	d.limitMu.Lock()
	defer d.limitMu.Unlock()

	now := d.now()
	if now.Sub(d.lastSweep) >= sweepEvery {
		d.sweep(now)
	}

	l, ok := d.limiters[userID]
	if !ok {
		l = rate.NewLimiter(d.rate, d.burst)
		d.limiters[userID] = l
	}
	return l.AllowN(now, 1)
}

// sweep forgets limiters whose bucket refilled, a new one behaves the same.
func (d *Dispatcher) sweep(now time.Time) {
	for id, l := range d.limiters {
		if l.TokensAt(now) >= float64(d.burst) {
			delete(d.limiters, id)
		}
	}
	d.lastSweep = now
}
