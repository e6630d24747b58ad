package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"finsight/internal/domain/models"
	applogger "finsight/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The feed is read-only advisory data; origin policy is left to the
	// fronting proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedEvent is the wire envelope pushed to subscribers.
type feedEvent struct {
	UserID          string                  `json:"user_id"`
	Recommendations []models.Recommendation `json:"recommendations"`
	PushedAt        time.Time               `json:"pushed_at"`
}

type client struct {
	id     string
	userID string // empty subscribes to all users
	conn   *websocket.Conn
	send   chan []byte
}

// FeedHub pushes freshly generated recommendations to connected websocket
// clients. Slow clients are disconnected rather than allowed to block the
// generation path.
type FeedHub struct {
	mu      sync.RWMutex
	clients map[string]*client
	l       *applogger.Logger
}

func NewFeedHub(l *applogger.Logger) *FeedHub {
	return &FeedHub{
		clients: make(map[string]*client),
		l:       l,
	}
}

// RegisterRoutes mounts the feed endpoint.
func (h *FeedHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/feed", h.Serve)
}

// Serve upgrades the connection and subscribes it. The optional user_id
// query parameter narrows the subscription to one user's feed.
func (h *FeedHub) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{
		id:     uuid.NewString(),
		userID: c.QueryParam("user_id"),
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()

	h.l.Info("feed client connected",
		applogger.String("client_id", cl.id),
		applogger.String("user_id", cl.userID),
	)

	go h.writePump(cl)
	go h.readPump(cl)
	return nil
}

// Broadcast fans one user's fresh recommendations out to matching
// subscribers. Never blocks: full client buffers cause a disconnect.
func (h *FeedHub) Broadcast(userID string, recs []models.Recommendation) {
	if len(recs) == 0 {
		return
	}
	payload, err := json.Marshal(feedEvent{
		UserID:          userID,
		Recommendations: recs,
		PushedAt:        time.Now().UTC(),
	})
	if err != nil {
		h.l.Error("feed marshal error", applogger.Error(err))
		return
	}

	h.mu.RLock()
	stale := make([]*client, 0)
	for _, cl := range h.clients {
		if cl.userID != "" && cl.userID != userID {
			continue
		}
		select {
		case cl.send <- payload:
		default:
			stale = append(stale, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range stale {
		h.l.Warn("disconnecting slow feed client", applogger.String("client_id", cl.id))
		h.remove(cl)
	}
}

// Close disconnects all clients.
func (h *FeedHub) Close() error {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, cl := range clients {
		close(cl.send)
	}
	return nil
}

func (h *FeedHub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, cl.id)
	h.mu.Unlock()
	close(cl.send)
}

// readPump drains control frames and detects disconnects.
func (h *FeedHub) readPump(cl *client) {
	defer func() {
		h.remove(cl)
		_ = cl.conn.Close()
	}()

	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.l.Debug("feed client read error",
					applogger.String("client_id", cl.id),
					applogger.Error(err),
				)
			}
			return
		}
	}
}

func (h *FeedHub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
