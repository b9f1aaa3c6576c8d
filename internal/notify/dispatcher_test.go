package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	name     string
	handleFn func(ctx context.Context, ev Event) error
	calls    atomic.Int32
}

func (f *fakeHandler) Name() string { return f.name }

func (f *fakeHandler) Handle(ctx context.Context, ev Event) error {
	f.calls.Add(1)
	if f.handleFn == nil {
		panic("Handle not configured")
	}
	return f.handleFn(ctx, ev)
}

type deadLetters struct {
	mu     sync.Mutex
	events []Event
	errs   []error
}

func (d *deadLetters) record(ctx context.Context, handler string, ev Event, attempts int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	d.errs = append(d.errs, err)
}

func TestDispatcher_RetriesUntilSuccess(t *testing.T) {
	var failures atomic.Int32
	h := &fakeHandler{name: "flaky", handleFn: func(ctx context.Context, ev Event) error {
		if failures.Add(1) <= 2 {
			return errors.New("smtp timeout")
		}
		return nil
	}}
	dl := &deadLetters{}

	d := NewDispatcher(Options{MaxAttempts: 3, Backoff: time.Millisecond}, dl.record, h)
	d.Publish(Event{Kind: KindBooked, AppointmentID: 1})
	d.Close()

	assert.Equal(t, int32(3), h.calls.Load())
	assert.Empty(t, dl.events)
}

func TestDispatcher_DeadLettersAfterMaxAttempts(t *testing.T) {
	boom := errors.New("calendar down")
	h := &fakeHandler{name: "calendar", handleFn: func(ctx context.Context, ev Event) error { return boom }}
	dl := &deadLetters{}

	d := NewDispatcher(Options{MaxAttempts: 2, Backoff: time.Millisecond}, dl.record, h)
	d.Publish(Event{Kind: KindCancelled, AppointmentID: 7})
	d.Close()

	assert.Equal(t, int32(2), h.calls.Load())
	require.Len(t, dl.events, 1)
	assert.Equal(t, uint(7), dl.events[0].AppointmentID)
	assert.ErrorIs(t, dl.errs[0], boom)
}

func TestDispatcher_OneHandlerFailureDoesNotBlockOthers(t *testing.T) {
	bad := &fakeHandler{name: "bad", handleFn: func(ctx context.Context, ev Event) error { panic("nil mailer") }}
	good := &fakeHandler{name: "good", handleFn: func(ctx context.Context, ev Event) error { return nil }}
	dl := &deadLetters{}

	d := NewDispatcher(Options{MaxAttempts: 1}, dl.record, bad, good)
	d.Publish(Event{Kind: KindBooked, AppointmentID: 3})
	d.Close()

	assert.Equal(t, int32(1), good.calls.Load())
	assert.Len(t, dl.events, 1)
}

func TestDispatcher_KeepsPerAppointmentOrder(t *testing.T) {
	var (
		mu      sync.Mutex
		handled = map[uint][]Kind{}
	)
	h := &fakeHandler{name: "calendar", handleFn: func(ctx context.Context, ev Event) error {
		if ev.Kind == KindBooked {
			time.Sleep(20 * time.Millisecond)
		}
		mu.Lock()
		defer mu.Unlock()
		handled[ev.AppointmentID] = append(handled[ev.AppointmentID], ev.Kind)
		return nil
	}}

	d := NewDispatcher(Options{Workers: 4}, nil, h)
	for id := uint(1); id <= 8; id++ {
		d.Publish(Event{Kind: KindBooked, AppointmentID: id})
		d.Publish(Event{Kind: KindCancelled, AppointmentID: id})
	}
	d.Close()

	require.Len(t, handled, 8)
	for id, kinds := range handled {
		assert.Equal(t, []Kind{KindBooked, KindCancelled}, kinds, "appointment %d", id)
	}
}

func TestDispatcher_PublishAfterCloseIsDropped(t *testing.T) {
	h := &fakeHandler{name: "noop", handleFn: func(ctx context.Context, ev Event) error { return nil }}

	d := NewDispatcher(Options{}, nil, h)
	d.Close()
	d.Publish(Event{Kind: KindBooked, AppointmentID: 1})
	d.Close()

	assert.Equal(t, int32(0), h.calls.Load())
}
