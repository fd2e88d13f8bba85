package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"nutridiary/models"
)

// WSClient is one websocket connection watching the auth state.
type WSClient struct {
	Conn *websocket.Conn
	wmu  sync.Mutex
	seq  uint64
}

// Write serializes writers; gorilla connections allow only one at a time.
func (c *WSClient) Write(messageType int, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// deliver writes hub message seq unless the client already has a newer one.
func (c *WSClient) deliver(seq uint64, data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if seq <= c.seq {
		return nil
	}
	c.seq = seq
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// RealtimeHub fans the auth state out to every connected UI.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
	last    []byte
	seq     uint64
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{clients: make(map[*WSClient]struct{})}
}

// Register adds c and sends it the latest state, if any.
func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	last, seq := h.last, h.seq
	h.mu.Unlock()

	if last != nil {
		if err := c.deliver(seq, last); err != nil {
			h.Unregister(c)
		}
	}
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		_ = c.Conn.Close()
	}
}

func (h *RealtimeHub) Broadcast(state models.UserAuthState) {
	msg, err := json.Marshal(state)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.last = msg
	clients := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.deliver(seq, msg); err != nil {
			h.Unregister(c)
		}
	}
}

// Follow broadcasts every value from states until the channel closes.
func (h *RealtimeHub) Follow(states <-chan models.UserAuthState) {
	for s := range states {
		h.Broadcast(s)
	}
}

func (h *RealtimeHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
