package broadcast

import "sync"

// Subscription is one observer's handle on the hub.
type Subscription struct {
	hub     *Hub
	mailbox chan Frame
	done    chan struct{}
	once    sync.Once
}

// C delivers the most recent unread frame.
func (s *Subscription) C() <-chan Frame {
	return s.mailbox
}

// Done is closed when the subscription ends, by Close or hub shutdown.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
	s.closeDone()
}

func (s *Subscription) closeDone() {
	s.once.Do(func() { close(s.done) })
}

// offer places f in the mailbox, replacing an unread frame if there is one.
// Reports whether a stale frame was replaced.
func (s *Subscription) offer(f Frame) bool {
	select {
	case s.mailbox <- f:
		return false
	default:
	}

	replaced := false
	select {
	case <-s.mailbox:
		replaced = true
	default:
	}
	select {
	case s.mailbox <- f:
	default:
		// Only the hub sends, so the slot cannot refill between the drain and
		// the send; a concurrent reader can only empty it.
	}
	return replaced
}
