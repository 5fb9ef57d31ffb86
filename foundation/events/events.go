// Package events fans mining progress out to any number of subscribers
// without ever making the miners wait on them.
package events

import (
	"fmt"
	"sync"
)

// subscriberBuffer is the number of events a subscriber can fall behind
// before new events are dropped for it.
const subscriberBuffer = 100

type subscriber struct {
	ch      chan string
	dropped uint64
}

// Events maintains the set of subscribers keyed by a unique id, usually
// the trace id of the request that subscribed.
type Events struct {
	mu   sync.Mutex
	subs map[string]*subscriber
}

// New constructs an empty set of subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]*subscriber),
	}
}

// Shutdown closes every subscriber channel. Receivers see their channel
// close and can stop reading.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.subs {
		delete(evt.subs, id)
		close(sub.ch)
	}
}

// Acquire subscribes the id and returns the channel events arrive on. A
// second call with the same id returns the same channel.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if sub, exists := evt.subs[id]; exists {
		return sub.ch
	}

	sub := subscriber{ch: make(chan string, subscriberBuffer)}
	evt.subs[id] = &sub

	return sub.ch
}

// Release unsubscribes the id, closes its channel and reports how many
// events it missed because it fell behind.
func (evt *Events) Release(id string) (uint64, error) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.subs[id]
	if !exists {
		return 0, fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.subs, id)
	close(sub.ch)

	return sub.dropped, nil
}

// Len returns the number of current subscribers.
func (evt *Events) Len() int {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	return len(evt.subs)
}

// Send delivers the event to every subscriber with room in its buffer.
// A full subscriber has the event counted as dropped instead.
func (evt *Events) Send(s string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for _, sub := range evt.subs {
		select {
		case sub.ch <- s:
		default:
			sub.dropped++
		}
	}
}
