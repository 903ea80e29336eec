package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/models"
)

// EventsChannel is the Redis pub/sub channel shared by every process.
const EventsChannel = "chat:events"

const (
	// writeWait is the deadline for one frame to reach a client.
	writeWait = 10 * time.Second

	// sendBuffer is how many events may queue for a client before it is dropped.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub pushes history events to connected WebSocket clients. With a Redis
// client, events travel through pub/sub so every process sharing the Redis
// sees them; otherwise they are broadcast in-process.
type Hub struct {
	mu          sync.Mutex
	connections map[*websocket.Conn]*client
	redisClient *redis.Client
	auth        *middleware.JWTAuth
	cancel      context.CancelFunc
}

// NewHub returns a running hub. redisClient and auth are optional.
func NewHub(redisClient *redis.Client, auth *middleware.JWTAuth) *Hub {
	h := &Hub{
		connections: make(map[*websocket.Conn]*client),
		redisClient: redisClient,
		auth:        auth,
	}

	if redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go h.subscribeToPubSub(ctx)
	}

	return h
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.auth != nil {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" || h.auth.Verify(tokenStr) != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := h.registerConnection(conn)
	go c.writePump()

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// client owns the only writer of its connection.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("WebSocket write failed: %v", err)
			c.conn.Close()
			return
		}
	}
}

func (h *Hub) registerConnection(conn *websocket.Conn) *client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.connections[conn] = c
	log.Printf("WebSocket connected: %s (total: %d)", conn.RemoteAddr(), len(h.connections))
	return c
}

func (h *Hub) unregisterConnection(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.removeLocked(conn) {
		log.Printf("WebSocket disconnected: %s", conn.RemoteAddr())
	}
}

// removeLocked closes conn and its send queue once. h.mu must be held.
func (h *Hub) removeLocked(conn *websocket.Conn) bool {
	c, ok := h.connections[conn]
	if !ok {
		return false
	}
	delete(h.connections, conn)
	close(c.send)
	conn.Close()
	return true
}

// ConnectionCount reports how many clients are connected.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// Publish delivers msg to every connected client.
func (h *Hub) Publish(ctx context.Context, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("WebSocket event encode failed: %v", err)
		return
	}

	if h.redisClient != nil {
		if err := h.redisClient.Publish(ctx, EventsChannel, string(data)).Err(); err != nil {
			log.Printf("Redis publish failed: %v", err)
		}
		return
	}

	h.broadcast(data)
}

func (h *Hub) subscribeToPubSub(ctx context.Context) {
	pubsub := h.redisClient.Subscribe(ctx, EventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

// broadcast queues data for every client without waiting on the network.
// A client whose queue is full is dropped.
func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, c := range h.connections {
		select {
		case c.send <- data:
		default:
			log.Printf("WebSocket client %s too slow, dropping", conn.RemoteAddr())
			h.removeLocked(conn)
		}
	}
}

// Close stops the pub/sub subscription and drops every connection.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.connections {
		h.removeLocked(conn)
	}
}
