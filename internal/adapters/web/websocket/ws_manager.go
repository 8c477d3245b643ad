package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/netpath/internal/core/domain"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
)

const (
	writeTimeout = 5 * time.Second
	queueSize    = 64
)

// WSMessage is the envelope for every frame sent to clients.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager fans new analyses out to connected websocket clients.
type WSManager struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	queue chan WSMessage

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

var _ ports.AnalysisPublisher = (*WSManager)(nil)

// NewWSManager creates a manager. Cross-origin upgrades are accepted only from
// allowedOrigins; requests without an Origin header and same-host origins are always accepted.
func NewWSManager(allowedOrigins []string, logger *slog.Logger) *WSManager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &WSManager{
		logger:  logger.With("component", "websocket"),
		queue:   make(chan WSMessage, queueSize),
		clients: make(map[*websocket.Conn]struct{}),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			m.logger.Warn("Rejected websocket origin", "origin", origin)
			return false
		},
	}
	return m
}

// Start delivers queued messages until ctx is cancelled, then closes all clients.
func (m *WSManager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				m.closeAll()
				return
			case msg := <-m.queue:
				m.broadcastMessage(msg)
			}
		}
	}()
}

// HandleWebSocket upgrades the connection and registers the client.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Debug("Upgrade failed", "error", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = struct{}{}
	m.mu.Unlock()
	m.logger.Debug("WebSocket connected", "remote", r.RemoteAddr)

	// Reads only detect the disconnect; clients do not send anything.
	go func() {
		defer m.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// PublishAnalysis queues a record for broadcast. Drops the message when the queue is full.
func (m *WSManager) PublishAnalysis(record domain.AnalysisRecord) {
	select {
	case m.queue <- WSMessage{Type: "analysis", Payload: record}:
	default:
		m.logger.Warn("Websocket queue full, dropping analysis", "id", record.ID)
	}
}

// ClientCount returns the number of connected clients.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *WSManager) remove(conn *websocket.Conn) {
	m.mu.Lock()
	_, ok := m.clients[conn]
	delete(m.clients, conn)
	m.mu.Unlock()
	if ok {
		conn.Close()
		m.logger.Debug("WebSocket disconnected")
	}
}

func (m *WSManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.Close()
		delete(m.clients, conn)
	}
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("JSON marshal error", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.clients, conn)
		}
	}
}
