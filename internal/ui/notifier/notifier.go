// Package notifier provides a simple broadcast mechanism for SSE updates.
package notifier

import "sync"

// Kind identifies what changed.
type Kind string

// Event kinds.
const (
	// DatasetReloaded means the graph was replaced and views were rebuilt.
	DatasetReloaded Kind = "dataset_reloaded"
	// DatasetError means a reload failed and the previous graph is still served.
	DatasetError Kind = "dataset_error"
)

// Event is delivered to every listener on Broadcast.
type Event struct {
	Kind    Kind
	Dataset string
	Message string
}

// Notifier broadcasts events to all subscribed listeners.
// Listeners hold at most one pending event; a newer event replaces an
// unread one so slow listeners always see the latest state.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Len returns the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast sends an event to all listeners without blocking.
func (n *Notifier) Broadcast(e Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- e:
			continue
		default:
		}
		// Full: drop the stale event and retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- e:
		default:
		}
	}
}
