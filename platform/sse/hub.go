// Package sse provides Server-Sent Events fan-out for live updates.
package sse

import (
	"encoding/json"
	"sync"

	"evntly_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Event is a single SSE frame.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type client struct {
	events chan Event
}

// Hub broadcasts events to every client subscribed to a topic.
type Hub struct {
	mu      sync.RWMutex
	clients map[string][]*client
	buffer  int
	log     *logger.Logger
}

// NewHub creates a hub whose clients buffer up to 32 events.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string][]*client),
		buffer:  32,
		log:     log,
	}
}

// Subscribe registers a client on topic. The returned cancel func must be
// called once the consumer goes away; it closes the channel.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	c := &client{events: make(chan Event, h.buffer)}

	h.mu.Lock()
	h.clients[topic] = append(h.clients[topic], c)
	h.mu.Unlock()

	var once sync.Once
	return c.events, func() {
		once.Do(func() { h.remove(topic, c) })
	}
}

func (h *Hub) remove(topic string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[topic]
	for i, cl := range clients {
		if cl == c {
			h.clients[topic] = append(clients[:i], clients[i+1:]...)
			close(c.events)
			break
		}
	}
	if len(h.clients[topic]) == 0 {
		delete(h.clients, topic)
	}
}

// Publish sends event to all clients of topic. Full buffers drop the event.
func (h *Hub) Publish(topic string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients[topic] {
		select {
		case c.events <- event:
		default:
			h.log.Warn("sse buffer full, dropping event", "topic", topic, "type", event.Type)
		}
	}
}

// Subscribers reports how many clients are listening on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// Close drops every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for _, c := range clients {
			close(c.events)
		}
	}
	h.clients = make(map[string][]*client)
}

// WriteHeaders prepares the response for an event stream.
func WriteHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
}

// Send writes one JSON-encoded frame and flushes it.
func Send(c *gin.Context, eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	c.SSEvent(eventType, string(payload))
	c.Writer.Flush()
	return nil
}

// Stream copies events to the response until the request context ends or
// events is closed.
func Stream(c *gin.Context, events <-chan Event) {
	WriteHeaders(c)

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = Send(c, event.Type, event.Data)
		}
	}
}
