package diagnostics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/pkg/errors"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	// Diagnostics are served to local tooling only.
	CheckOrigin: func(*http.Request) bool { return true },
}

// client is one stream subscriber. Slow clients are dropped rather than
// allowed to block the event loop.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func (m *Monitor) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn("stream upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}

	m.clientsMu.Lock()
	m.clients[c] = struct{}{}
	m.clientsMu.Unlock()
	m.log.Debug("stream client connected", zap.String("remote", r.RemoteAddr))

	go m.writePump(c)
	m.readPump(c)
}

// readPump discards client messages and detects disconnects.
func (m *Monitor) readPump(c *client) {
	defer m.drop(c)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.log.Debug("stream client read failed", zap.Error(err))
			}
			return
		}
	}
}

func (m *Monitor) writePump(c *client) {
	defer errors.Recover("diagnostics.writePump")
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				m.log.Debug("stream write failed", zap.Error(err))
				m.drop(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				m.drop(c)
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// drop unregisters c and stops its writer. It is safe to call repeatedly.
func (m *Monitor) drop(c *client) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()
	if _, ok := m.clients[c]; !ok {
		return
	}
	delete(m.clients, c)
	close(c.done)
}

func (m *Monitor) broadcast(rec Record) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()
	if len(m.clients) == 0 {
		return
	}
	msg, err := json.Marshal(rec)
	if err != nil {
		m.log.Error("encode record", zap.Error(err))
		return
	}
	for c := range m.clients {
		select {
		case c.send <- msg:
		default:
			m.log.Warn("dropping slow stream client")
			delete(m.clients, c)
			close(c.done)
		}
	}
}

// Clients returns the number of connected stream clients.
func (m *Monitor) Clients() int {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()
	return len(m.clients)
}

func (m *Monitor) closeClients() {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()
	for c := range m.clients {
		delete(m.clients, c)
		close(c.done)
	}
}
