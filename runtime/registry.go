package runtime

import (
	"conference-lab/contract"
	"sort"
	"sync"
)

// Registry keeps the sinks that want to be notified of every committed
// registry change (renderers, dialogs, journal).
type Registry struct {
	mu       sync.RWMutex
	Sessions map[string]contract.EventSink // map subscriber -> Sink
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions: make(map[string]contract.EventSink),
	}
}

// Subscribe registers sink under subscriberID, replacing any previous sink
// registered with the same id.
func (r *Registry) Subscribe(subscriberID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sessions[subscriberID] = sink
}

func (r *Registry) Unsubscribe(subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Sessions, subscriberID)
}

// Sinks returns the subscribed sinks ordered by subscriber id so that
// delivery order is stable between commits.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.Sessions))
	for id := range r.Sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sinks := make([]contract.EventSink, 0, len(ids))
	for _, id := range ids {
		sinks = append(sinks, r.Sessions[id])
	}
	return sinks
}
