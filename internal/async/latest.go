package async

import "sync"

// Ticket identifies one request against a Latest slot.
type Ticket uint64

// Latest keeps the result of the most recently started request that
// completed. Results of requests that were superseded before they finished
// are dropped; a request that fails is abandoned and supersedes nothing.
type Latest[T any] struct {
	mu      sync.Mutex
	next    Ticket
	open    []Ticket // outstanding, in issue order
	shown   Ticket
	value   T
	present bool
}

// Begin starts a request and returns its ticket.
func (l *Latest[T]) Begin() Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.open = append(l.open, l.next)
	return l.next
}

// Publish stores v if t is the newest outstanding ticket and newer than the
// displayed value. It reports whether the value was kept. The ticket is
// closed either way.
func (l *Latest[T]) Publish(t Ticket, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.open) == 0 {
		return false
	}
	newest := l.open[len(l.open)-1]
	if !l.close(t) || t != newest || t <= l.shown {
		return false
	}
	l.shown = t
	l.value = v
	l.present = true
	return true
}

// Abandon closes t without a result so that older requests still in flight
// are no longer superseded by it.
func (l *Latest[T]) Abandon(t Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.close(t)
}

// Current returns the displayed value, if any.
func (l *Latest[T]) Current() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.present
}

// Pending reports whether a request started after the displayed one is still
// in flight.
func (l *Latest[T]) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.open {
		if t > l.shown {
			return true
		}
	}
	return false
}

// Reset forgets the displayed value. Outstanding tickets become stale.
func (l *Latest[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	l.open = nil
	l.shown = l.next
	l.value = zero
	l.present = false
}

func (l *Latest[T]) close(t Ticket) bool {
	for i, o := range l.open {
		if o == t {
			l.open = append(l.open[:i], l.open[i+1:]...)
			return true
		}
	}
	return false
}
