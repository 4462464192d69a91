package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/domain"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/service"
	"github.com/akshansh2332/driftclic-aesthetic-studio/internal/store"
	"github.com/akshansh2332/driftclic-aesthetic-studio/pkg/httputil"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Message types sent on the change stream.
const (
	MessageSnapshot = "snapshot"
	MessageChange   = "change"
)

// StreamMessage is one frame of the change stream. The first frame is the
// current snapshot; every later frame follows an effective store change.
type StreamMessage struct {
	Type     string           `json:"type"`
	Op       store.Op         `json:"op,omitempty"`
	Version  int              `json:"version"`
	Cart     service.CartView `json:"cart"`
	Wishlist []string         `json:"wishlist"`
}

func newStreamMessage(typ string, op store.Op, s domain.Session) StreamMessage {
	wishlist := s.Wishlist
	if wishlist == nil {
		wishlist = []string{}
	}
	return StreamMessage{
		Type:     typ,
		Op:       op,
		Version:  s.Version,
		Cart:     service.NewCartView(s),
		Wishlist: wishlist,
	}
}

// mailbox holds the newest undelivered change. Store listeners must not
// block, so a slow client sees intermediate changes coalesced into the
// latest one.
type mailbox struct {
	mu     sync.Mutex
	change *store.Change
	ready  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

func (m *mailbox) put(c store.Change) {
	m.mu.Lock()
	if m.change == nil || m.change.Snapshot.Version < c.Snapshot.Version {
		m.change = &c
	}
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *mailbox) take() (store.Change, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.change == nil {
		return store.Change{}, false
	}
	c := *m.change
	m.change = nil
	return c, true
}

// EventsHandler streams a session's store changes over WebSocket.
type EventsHandler struct {
	service  *service.SessionService
	upgrader websocket.Upgrader
	logger   *slog.Logger
	mu       sync.Mutex
	clients  map[*websocket.Conn]context.CancelFunc
}

// NewEventsHandler creates a new EventsHandler. checkOrigin may be nil to
// accept any origin.
func NewEventsHandler(svc *service.SessionService, logger *slog.Logger, checkOrigin func(*http.Request) bool) *EventsHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &EventsHandler{
		service: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]context.CancelFunc),
	}
}

// Stream handles GET /api/v1/sessions/events. The connection outlives the
// request, so the pumps run on their own context.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromContext(r.Context())
	box := newMailbox()

	initial, stop, err := h.service.Watch(r.Context(), sessionID, box.put)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		stop()
		h.logger.WarnContext(r.Context(), "failed to upgrade connection", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	h.mu.Lock()
	h.clients[conn] = cancel
	h.mu.Unlock()

	h.logger.InfoContext(r.Context(), "change stream opened",
		slog.String("session_id", sessionID),
		slog.String("remote_addr", conn.RemoteAddr().String()),
	)

	go h.writePump(ctx, conn, initial, box)
	go h.readPump(ctx, conn, cancel, stop)
}

// readPump drains client frames so pongs and close frames are processed.
func (h *EventsHandler) readPump(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc, stop func()) {
	defer func() {
		stop()
		cancel()
		h.removeClient(conn)
		if err := conn.Close(); err != nil {
			h.logger.Debug("error closing connection", slog.String("error", err.Error()))
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump sends the initial snapshot, then every newer change.
func (h *EventsHandler) writePump(ctx context.Context, conn *websocket.Conn, initial domain.Session, box *mailbox) {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	if err := h.send(conn, newStreamMessage(MessageSnapshot, "", initial)); err != nil {
		h.logger.Debug("failed to send snapshot", slog.String("error", err.Error()))
		return
	}
	sent := initial.Version

	for {
		select {
		case <-ctx.Done():
			h.sendCloseMessage(conn)
			return
		case <-box.ready:
			c, ok := box.take()
			if !ok || c.Snapshot.Version <= sent {
				continue
			}
			if err := h.send(conn, newStreamMessage(MessageChange, c.Op, c.Snapshot)); err != nil {
				h.logger.Debug("failed to send change", slog.String("error", err.Error()))
				return
			}
			sent = c.Snapshot.Version
		case <-pingTicker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Debug("failed to send ping", slog.String("error", err.Error()))
				return
			}
		}
	}
}

func (h *EventsHandler) send(conn *websocket.Conn, msg StreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (h *EventsHandler) sendCloseMessage(conn *websocket.Conn) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}
	closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		h.logger.Debug("failed to send close message", slog.String("error", err.Error()))
	}
}

func (h *EventsHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cancel, ok := h.clients[conn]; ok {
		cancel()
		delete(h.clients, conn)
	}
}

// Clients returns the number of open streams.
func (h *EventsHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll asks every open stream to close and waits up to grace for the
// clients to acknowledge before dropping the connections.
func (h *EventsHandler) CloseAll(grace time.Duration) {
	h.mu.Lock()
	for _, cancel := range h.clients {
		cancel()
	}
	h.mu.Unlock()

	deadline := time.Now().Add(grace)
	for h.Clients() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	h.mu.Lock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}
