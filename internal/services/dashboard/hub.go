package dashboard

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

const (
	clientQueue  = 8
	writeTimeout = 5 * time.Second
)

// Hub pushes frames to connected websocket clients. Every client has its own
// queue and writer goroutine; Broadcast never waits on a client. A client
// whose queue is full, or whose write fails or times out, is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*hubClient]struct{}
	last    []byte
	logger  *log.Logger

	// WriteTimeout bounds a single frame write to one client.
	WriteTimeout time.Duration
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *hubClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:      make(map[*hubClient]struct{}),
		logger:       logger,
		WriteTimeout: writeTimeout,
	}
}

// Broadcast encodes v once and queues it for every client. The payload is
// kept so that new clients start from the latest frame.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Printf("dashboard: error marshaling frame: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Printf("dashboard: dropping slow websocket client %s", c.conn.Request().RemoteAddr)
			delete(h.clients, c)
			c.close()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler serves /ws. It blocks reading from the client until it goes away.
func (h *Hub) Handler() websocket.Handler {
	return func(ws *websocket.Conn) {
		c := &hubClient{conn: ws, send: make(chan []byte, clientQueue), done: make(chan struct{})}

		h.mu.Lock()
		h.clients[c] = struct{}{}
		if h.last != nil {
			c.send <- h.last // fresh queue, never full
		}
		h.mu.Unlock()

		defer h.remove(c)
		go h.writeLoop(c)

		var discard string
		for {
			if err := websocket.Message.Receive(ws, &discard); err != nil {
				return
			}
		}
	}
}

func (h *Hub) writeLoop(c *hubClient) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.WriteTimeout))
			if err := websocket.Message.Send(c.conn, string(msg)); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}
