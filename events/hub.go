package events

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// dashboard is one admin socket. Only its writer goroutine touches conn for writing.
type dashboard struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes every published event to the connected admin dashboards.
type Hub struct {
	mu      sync.Mutex
	clients map[*dashboard]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*dashboard]struct{})}
}

// Handler upgrades the request and keeps the socket registered until the client goes away.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		d := &dashboard{conn: conn, send: make(chan []byte, sendBuffer)}
		h.register(d)
		go d.writeLoop()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.drop(d)
	}
}

func (d *dashboard) writeLoop() {
	defer d.conn.Close()
	for msg := range d.send {
		_ = d.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := d.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("⚠️ Websocket write failed: %v", err)
			// Unblocks the read loop in Handler, which then drops the client.
			d.conn.Close()
			for range d.send {
			}
			return
		}
	}
	_ = d.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

func (h *Hub) register(d *dashboard) {
	h.mu.Lock()
	h.clients[d] = struct{}{}
	h.mu.Unlock()
}

// drop unregisters d and closes its queue; safe to call more than once.
func (h *Hub) drop(d *dashboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[d]; ok {
		delete(h.clients, d)
		close(d.send)
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues the event for every dashboard without waiting on the network.
// A dashboard whose queue is full is disconnected.
func (h *Hub) Publish(_ context.Context, event string, data any) error {
	msg, err := json.Marshal(NewEnvelope(event, data))
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for d := range h.clients {
		select {
		case d.send <- msg:
		default:
			log.Printf("⚠️ Dropping slow websocket client")
			delete(h.clients, d)
			close(d.send)
		}
	}
	return nil
}
