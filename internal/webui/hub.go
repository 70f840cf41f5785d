package webui

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"detect_dashboard/internal/logbook"
	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/orchestrator"
	"detect_dashboard/internal/render"
)

const (
	EventLoading  = "loading"
	EventProgress = "progress"
	EventResult   = "result"
	EventAlert    = "alert"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	clientQueue = 16
)

// Event is one message pushed to connected pages.
type Event struct {
	Type    string          `json:"type"`
	Media   normalize.Media `json:"media"`
	Loading *bool           `json:"loading,omitempty"`
	Percent *int            `json:"percent,omitempty"`
	Frame   int             `json:"frame,omitempty"`
	Detail  string          `json:"detail,omitempty"`
	Message string          `json:"message,omitempty"`
	View    *render.View    `json:"view,omitempty"`
}

// client owns one connection. Only its write pump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to websocket clients. Publishing never blocks: a full
// hub queue drops the event and a client whose queue is full is disconnected.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     logbook.Logger

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewHub(logger logbook.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger,
		writeWait:  writeWait,
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mutex.Unlock()
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			total := len(h.clients)
			h.mutex.Unlock()
			logbook.Log(h.logger, logbook.LevelInfo, "WEB", "Client connected", countDetail(total))

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			logbook.Log(h.logger, logbook.LevelInfo, "WEB", "Client disconnected", countDetail(total))

		case message := <-h.broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					delete(h.clients, c)
					close(c.send)
					logbook.Log(h.logger, logbook.LevelRisk, "WEB", "Dropping slow client", countDetail(len(h.clients)))
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Serve registers conn and pumps it until the peer goes away or the hub
// stops. It blocks on the read side.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, clientQueue)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logbook.Log(h.logger, logbook.LevelRisk, "WEB", "Error sending message", err.Error())
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) Unregister(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues e for every client. It drops the event rather than wait
// when the hub is backed up.
func (h *Hub) Broadcast(e Event) {
	raw, err := json.Marshal(e)
	if err != nil {
		logbook.Log(h.logger, logbook.LevelRisk, "WEB", "Failed to encode event", err.Error())
		return
	}
	select {
	case h.broadcast <- raw:
	case <-h.done:
	default:
		logbook.Log(h.logger, logbook.LevelRisk, "WEB", "Dropped event", e.Type)
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Sink returns an orchestrator sink that publishes to this hub.
func (h *Hub) Sink() orchestrator.Sink {
	return orchestrator.Funcs{
		OnLoading: func(m normalize.Media, active bool) {
			h.Broadcast(Event{Type: EventLoading, Media: m, Loading: &active})
		},
		OnProgress: func(m normalize.Media, p orchestrator.ProgressState, detail string) {
			percent := p.Percent
			h.Broadcast(Event{Type: EventProgress, Media: m, Percent: &percent, Frame: p.Frame, Detail: detail})
		},
		OnResult: func(v render.View) {
			h.Broadcast(Event{Type: EventResult, Media: v.Media, View: &v})
		},
		OnAlert: func(m normalize.Media, message string) {
			h.Broadcast(Event{Type: EventAlert, Media: m, Message: message})
		},
	}
}

func countDetail(n int) string {
	return fmt.Sprintf("total=%d", n)
}
