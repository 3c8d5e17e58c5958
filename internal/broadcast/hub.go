package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/nerrad567/challenge-tracker/internal/tracker"
)

// DefaultQueueSize is used when Options.QueueSize is not positive.
const DefaultQueueSize = 256

// Frame is one serialised snapshot pushed to subscribers.
type Frame struct {
	Version uint64
	Data    []byte
}

// Delivery is handed to every sink for each state change.
type Delivery struct {
	Event    tracker.Event
	Snapshot tracker.Snapshot
	Data     []byte // Snapshot as JSON
}

// Sink consumes deliveries. Deliver runs on the hub goroutine, one call at a time.
type Sink interface {
	Deliver(ctx context.Context, d Delivery) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, d Delivery) error

// Deliver calls f.
func (f SinkFunc) Deliver(ctx context.Context, d Delivery) error {
	return f(ctx, d)
}

// Logger defines the logging interface used by the Hub.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Hub.
type Options struct {
	QueueSize int
	Logger    Logger
}

type namedSink struct {
	name string
	sink Sink
}

// Stats are cumulative hub counters.
type Stats struct {
	Subscribers    int    `json:"subscribers"`
	Frames         uint64 `json:"frames"`
	FramesReplaced uint64 `json:"frames_replaced"`
	SinkDropped    uint64 `json:"sink_dropped"`
	SinkErrors     uint64 `json:"sink_errors"`
}

// Hub implements tracker.Observer.
type Hub struct {
	logger Logger
	queue  chan Delivery

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	sinks  []namedSink
	closed bool

	frames         atomic.Uint64
	framesReplaced atomic.Uint64
	sinkDropped    atomic.Uint64
	sinkErrors     atomic.Uint64
}

var _ tracker.Observer = (*Hub)(nil)

// NewHub creates a hub. Call Run to start sink delivery.
func NewHub(opts Options) *Hub {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	var logger Logger = noopLogger{}
	if opts.Logger != nil {
		logger = opts.Logger
	}
	return &Hub{
		logger: logger,
		queue:  make(chan Delivery, size),
		subs:   make(map[*Subscription]struct{}),
	}
}

// AddSink registers a sink. Sinks added after Run starts still receive
// subsequent deliveries.
func (h *Hub) AddSink(name string, s Sink) {
	h.mu.Lock()
	h.sinks = append(h.sinks, namedSink{name: name, sink: s})
	h.mu.Unlock()
}

// Subscribe returns a new subscription. After the hub has shut down the
// returned subscription is already closed.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		hub:     h,
		mailbox: make(chan Frame, 1),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.closeDone()
		return sub
	}
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()

	h.logger.Debug("subscriber added", "subscribers", count)
	return sub
}

// SubscriberCount returns the number of open subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stats returns the hub counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Subscribers:    h.SubscriberCount(),
		Frames:         h.frames.Load(),
		FramesReplaced: h.framesReplaced.Load(),
		SinkDropped:    h.sinkDropped.Load(),
		SinkErrors:     h.sinkErrors.Load(),
	}
}

// Observe marshals snap once, offers it to every subscriber and queues it
// for the sinks. It never blocks.
func (h *Hub) Observe(ev tracker.Event, snap tracker.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("failed to marshal snapshot", "error", err)
		return
	}
	frame := Frame{Version: snap.Version, Data: data}

	// Snapshot subscriber list under the lock, then release before offering
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	closed := h.closed
	h.mu.RUnlock()

	for _, sub := range subs {
		if sub.offer(frame) {
			h.framesReplaced.Add(1)
		}
	}
	h.frames.Add(1)

	if closed {
		return
	}
	select {
	case h.queue <- Delivery{Event: ev, Snapshot: snap, Data: data}:
	default:
		h.sinkDropped.Add(1)
		h.logger.Warn("sink queue full, dropping delivery", "kind", string(ev.Kind))
	}
}

// Run delivers queued changes to sinks until ctx is cancelled, then closes
// every subscription.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-h.queue:
			h.deliver(ctx, d)
		}
	}
}

func (h *Hub) deliver(ctx context.Context, d Delivery) {
	h.mu.RLock()
	sinks := h.sinks
	h.mu.RUnlock()

	for _, s := range sinks {
		if err := s.sink.Deliver(ctx, d); err != nil {
			h.sinkErrors.Add(1)
			h.logger.Warn("sink delivery failed", "sink", s.name, "kind", string(d.Event.Kind), "error", err)
		}
	}
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	_, existed := h.subs[sub]
	delete(h.subs, sub)
	count := len(h.subs)
	h.mu.Unlock()

	if existed {
		h.logger.Debug("subscriber removed", "subscribers", count)
	}
}

// closeAll ends every subscription and refuses new ones.
func (h *Hub) closeAll() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = make(map[*Subscription]struct{})
	h.mu.Unlock()

	for sub := range subs {
		sub.closeDone()
	}
}
