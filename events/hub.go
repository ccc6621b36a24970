package events

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows all origins. Tighten this before exposing the server publicly.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

// client is one connected websocket listener, pinned to a restaurant.
type client struct {
	hub          *hub
	conn         *websocket.Conn
	restaurantID uint
	send         chan []byte
}

// readPump drains the connection so close/pong frames are processed.
// Listeners are receive-only; inbound payloads are ignored.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: unexpected close on %s hub: %v", c.hub.name, err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// envelope routes a serialized event to the listeners of one restaurant.
type envelope struct {
	restaurantID uint
	data         []byte
}

// hub maintains the active connections of one channel and routes each
// published event to the listeners of the event's restaurant only.
type hub struct {
	name       string
	clients    map[*client]bool
	broadcast  chan envelope
	register   chan *client
	unregister chan *client
}

func newHub(name string) *hub {
	return &hub{
		name:       name,
		clients:    make(map[*client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// run is the hub event loop. Must run in its own goroutine.
func (h *hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			log.Printf("ws: client connected to %s hub (restaurant %d, total %d)", h.name, c.restaurantID, len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				log.Printf("ws: client disconnected from %s hub (total %d)", h.name, len(h.clients))
			}

		case env := <-h.broadcast:
			for c := range h.clients {
				if c.restaurantID != env.restaurantID {
					continue
				}
				select {
				case c.send <- env.data:
				default:
					// Slow client: drop it rather than block the hub.
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// publish hands an envelope to the hub without ever blocking the caller.
// If the hub's buffer is full the event is dropped; delivery is
// best-effort by contract.
func (h *hub) publish(env envelope) {
	select {
	case h.broadcast <- env:
	default:
		log.Printf("ws: %s hub buffer full, dropping event for restaurant %d", h.name, env.restaurantID)
	}
}
