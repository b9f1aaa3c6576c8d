package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Options struct {
	// QueueSize bounds each worker's queue.
	QueueSize      int
	Workers        int
	MaxAttempts    int
	Backoff        time.Duration
	HandlerTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 100
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.HandlerTimeout <= 0 {
		o.HandlerTimeout = 30 * time.Second
	}
	return o
}

// DeadLetterFunc receives an event a handler failed on after every attempt.
type DeadLetterFunc func(ctx context.Context, handler string, ev Event, attempts int, err error)

// Dispatcher fans committed events out to handlers on background workers.
// Publishing never blocks the request path. Events of one appointment always
// land on the same worker, so they are handled in publish order.
type Dispatcher struct {
	opts       Options
	handlers   []Handler
	deadLetter DeadLetterFunc
	queues     []chan Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(opts Options, deadLetter DeadLetterFunc, handlers ...Handler) *Dispatcher {
	opts = opts.withDefaults()

	d := &Dispatcher{
		opts:       opts,
		handlers:   handlers,
		deadLetter: deadLetter,
		queues:     make([]chan Event, opts.Workers),
	}

	for i := range d.queues {
		d.queues[i] = make(chan Event, opts.QueueSize)
		d.wg.Add(1)
		go d.worker(d.queues[i])
	}
	return d
}

func (d *Dispatcher) Publish(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		log.Warn().Str("kind", string(ev.Kind)).Uint("appointment_id", ev.AppointmentID).Msg("dispatcher closed, dropping event")
		return
	}

	select {
	case d.queues[ev.AppointmentID%uint(len(d.queues))] <- ev:
	default:
		log.Warn().Str("kind", string(ev.Kind)).Uint("appointment_id", ev.AppointmentID).Msg("notification queue full, dropping event")
	}
}

// Close stops accepting events and waits for queued ones to be handled.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker(queue <-chan Event) {
	defer d.wg.Done()

	for ev := range queue {
		for _, h := range d.handlers {
			d.deliver(h, ev)
		}
	}
}

func (d *Dispatcher) deliver(h Handler, ev Event) {
	var err error

	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		err = d.handleOnce(h, ev)
		if err == nil {
			return
		}

		log.Warn().
			Err(err).
			Str("handler", h.Name()).
			Str("kind", string(ev.Kind)).
			Uint("appointment_id", ev.AppointmentID).
			Int("attempt", attempt).
			Msg("notification handler failed")

		if attempt < d.opts.MaxAttempts && d.opts.Backoff > 0 {
			time.Sleep(d.opts.Backoff * time.Duration(attempt))
		}
	}

	log.Error().
		Err(err).
		Str("handler", h.Name()).
		Str("kind", string(ev.Kind)).
		Uint("appointment_id", ev.AppointmentID).
		Msg("notification dead-lettered")

	if d.deadLetter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.HandlerTimeout)
		defer cancel()
		d.deadLetter(ctx, h.Name(), ev, d.opts.MaxAttempts, err)
	}
}

func (d *Dispatcher) handleOnce(h Handler, ev Event) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.HandlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %s panicked: %v", h.Name(), r)
		}
	}()

	return h.Handle(ctx, ev)
}
