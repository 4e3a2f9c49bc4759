package live

import (
	"sync"

	"github.com/gorilla/websocket"
)

// SlotEvent is pushed to every subscribed booking client when a slot changes
// state, so open booking forms can refresh availability without polling.
type SlotEvent struct {
	Event string `json:"event"` // "slot_booked" or "slot_freed"
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// subscriber serializes writes to one connection. gorilla/websocket allows
// only a single concurrent writer per conn, and broadcasts come in from
// arbitrary request goroutines.
type subscriber struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *subscriber) write(ev SlotEvent) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(ev)
}

type Hub struct {
	subscribers map[string]*subscriber
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]*subscriber),
	}
}

func (h *Hub) Register(connID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.subscribers[connID]; exists && old != nil {
		_ = old.conn.Close()
	}

	h.subscribers[connID] = &subscriber{conn: conn}
}

func (h *Hub) Unregister(connID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if sub, exists := h.subscribers[connID]; exists && sub != nil {
		_ = sub.conn.Close()
		delete(h.subscribers, connID)
	}
}

func (h *Hub) SubscriberCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.subscribers)
}

func (h *Hub) broadcast(ev SlotEvent) {
	h.mutex.RLock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, s := range h.subscribers {
		subs[id] = s
	}
	h.mutex.RUnlock()

	for id, sub := range subs {
		if sub == nil {
			continue
		}
		if err := sub.write(ev); err != nil {
			h.Unregister(id)
		}
	}
}

// SlotBooked implements the booking module's broadcaster.
func (h *Hub) SlotBooked(date, slotTime string) {
	h.broadcast(SlotEvent{Event: "slot_booked", Date: date, Time: slotTime})
}

// SlotFreed implements the admin module's broadcaster.
func (h *Hub) SlotFreed(date, slotTime string) {
	h.broadcast(SlotEvent{Event: "slot_freed", Date: date, Time: slotTime})
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, sub := range h.subscribers {
		if sub != nil {
			_ = sub.conn.Close()
		}
		delete(h.subscribers, id)
	}
}
