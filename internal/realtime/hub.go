package realtime

import (
	"sync"

	"github.com/homesync/homesync-backend/internal/logger"
)

// Hub fans change events out to in-process subscribers, one buffered channel
// per subscriber. A subscriber that stops draining loses events rather than
// blocking publishers; the SSE handler closes over a fresh subscription per
// connection so a reconnect recovers by re-listing.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[chan ChangeEvent]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "ChangeHub"),
		subscriptions: make(map[string]map[chan ChangeEvent]bool),
	}
}

// Subscribe registers for one channel and returns the event stream plus an
// unsubscribe func. The stream is closed on unsubscribe.
func (h *Hub) Subscribe(channel string) (<-chan ChangeEvent, func()) {
	ch := make(chan ChangeEvent, 32)

	h.mu.Lock()
	subs, ok := h.subscriptions[channel]
	if !ok {
		subs = make(map[chan ChangeEvent]bool)
		h.subscriptions[channel] = subs
	}
	subs[ch] = true
	h.mu.Unlock()

	h.log.Debug("subscriber added", "channel", channel)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.subscriptions[channel]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscriptions, channel)
				}
			}
			h.mu.Unlock()
			close(ch)
			h.log.Debug("subscriber removed", "channel", channel)
		})
	}
	return ch, unsubscribe
}

// Publish delivers ev to every current subscriber of its channel without
// blocking.
func (h *Hub) Publish(ev ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscriptions[ev.Channel] {
		select {
		case ch <- ev:
		default:
			h.log.Warn("dropping change event for slow subscriber", "channel", ev.Channel, "op", ev.Op)
		}
	}
}
