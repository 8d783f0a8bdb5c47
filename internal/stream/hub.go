package stream

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Topics follow a "{kind}" or "{kind}:{id}" convention: feed, post:{id},
// user:{id}, upload:{id}. Delivery is ordered per topic only; consumers that
// combine topics must tolerate transient disagreement between them.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Topic string
	Send  chan []byte
}

// Event is the wire envelope for every broadcast payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(topic string) *Client {
	client := &Client{
		Topic: topic,
		Send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[topic] == nil {
		h.clients[topic] = map[*Client]struct{}{}
	}
	h.clients[topic][client] = struct{}{}
	return client
}

// Unregister removes the client and closes its Send channel. Calling it again
// for the same client is a no-op, so callers may unregister eagerly on
// disconnect and still keep a deferred call as backstop.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topicClients, ok := h.clients[client.Topic]
	if !ok {
		return
	}
	if _, ok := topicClients[client]; !ok {
		return
	}
	delete(topicClients, client)
	if len(topicClients) == 0 {
		delete(h.clients, client.Topic)
	}
	close(client.Send)
}

func (h *Hub) Broadcast(topic string, payload []byte) {
	if h.redis == nil {
		h.deliver(topic, payload)
		return
	}

	// Local clients receive the message through the pub/sub subscription, so
	// every instance (this one included) delivers exactly once.
	err := h.redis.Publish(context.Background(), redisChannel(topic), payload).Err()
	if err != nil {
		log.Printf("redis publish error: %v", err)
	}
}

// BroadcastEvent marshals an Event and broadcasts it; slow subscribers drop
// messages rather than blocking the writer.
func (h *Hub) BroadcastEvent(topic, eventType string, data any) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return
	}
	h.Broadcast(topic, payload)
}

func (h *Hub) deliver(topic string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[topic]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "stream:*:broadcast")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(topicFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(topic string) string {
	return "stream:" + topic + ":broadcast"
}

func topicFromChannel(ch string) string {
	// stream:{topic}:broadcast
	const prefix = "stream:"
	const suffix = ":broadcast"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
