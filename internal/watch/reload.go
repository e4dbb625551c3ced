package watch

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ReloadMessage is pushed to connected clients around each incremental
// pass.
type ReloadMessage struct {
	Type      string   `json:"type"` // "building", "success", "error"
	Files     []string `json:"files,omitempty"`
	Message   string   `json:"message,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// ReloadServer broadcasts pass progress over WebSocket so editors and
// viewers can refresh generated views after a successful pass.
type ReloadServer struct {
	connections map[*websocket.Conn]bool
	broadcast   chan *ReloadMessage
	register    chan *websocket.Conn
	unregister  chan *websocket.Conn
	done        chan struct{}
	closeOnce   sync.Once
	upgrader    websocket.Upgrader
	logger      *zap.Logger
	mutex       sync.RWMutex
}

// NewReloadServer creates the server and starts its connection loop.
func NewReloadServer(logger *zap.Logger) *ReloadServer {
	rs := &ReloadServer{
		connections: make(map[*websocket.Conn]bool),
		broadcast:   make(chan *ReloadMessage, 256),
		register:    make(chan *websocket.Conn),
		unregister:  make(chan *websocket.Conn),
		done:        make(chan struct{}),
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				// Local tools only
				return strings.HasPrefix(origin, "http://localhost") ||
					strings.HasPrefix(origin, "http://127.0.0.1")
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	go rs.run()

	return rs
}

func (rs *ReloadServer) run() {
	for {
		select {
		case <-rs.done:
			return

		case conn := <-rs.register:
			rs.mutex.Lock()
			rs.connections[conn] = true
			total := len(rs.connections)
			rs.mutex.Unlock()
			rs.logger.Info("reload client connected", zap.Int("total", total))

		case conn := <-rs.unregister:
			rs.mutex.Lock()
			if _, ok := rs.connections[conn]; ok {
				delete(rs.connections, conn)
				conn.Close()
			}
			rs.mutex.Unlock()

		case message := <-rs.broadcast:
			rs.sendToAll(message)
		}
	}
}

func (rs *ReloadServer) sendToAll(message *ReloadMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		rs.logger.Warn("failed to marshal reload message", zap.Error(err))
		return
	}

	rs.mutex.RLock()
	var failed []*websocket.Conn
	for conn := range rs.connections {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			failed = append(failed, conn)
		}
	}
	rs.mutex.RUnlock()

	if len(failed) > 0 {
		rs.mutex.Lock()
		for _, conn := range failed {
			if _, ok := rs.connections[conn]; ok {
				conn.Close()
				delete(rs.connections, conn)
			}
		}
		rs.mutex.Unlock()
	}
}

// HandleWebSocket upgrades an HTTP connection and registers it.
func (rs *ReloadServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := rs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rs.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	rs.register <- conn

	go func() {
		defer func() { rs.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// NotifyBuilding announces the start of a pass over the given files.
func (rs *ReloadServer) NotifyBuilding(files []string) {
	rs.send(&ReloadMessage{Type: "building", Files: files})
}

// NotifySuccess announces a completed pass.
func (rs *ReloadServer) NotifySuccess(duration time.Duration) {
	rs.send(&ReloadMessage{Type: "success", Message: duration.String()})
}

// NotifyError announces a failed pass.
func (rs *ReloadServer) NotifyError(message string) {
	rs.send(&ReloadMessage{Type: "error", Message: message})
}

func (rs *ReloadServer) send(message *ReloadMessage) {
	message.Timestamp = time.Now().UnixMilli()
	select {
	case rs.broadcast <- message:
	default:
		// Drop rather than block the build loop
	}
}

// ConnectionCount returns the number of connected clients.
func (rs *ReloadServer) ConnectionCount() int {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()
	return len(rs.connections)
}

// Close shuts the server down and drops all connections.
func (rs *ReloadServer) Close() {
	rs.closeOnce.Do(func() {
		close(rs.done)
	})

	rs.mutex.Lock()
	defer rs.mutex.Unlock()
	for conn := range rs.connections {
		conn.Close()
	}
	rs.connections = make(map[*websocket.Conn]bool)
}
