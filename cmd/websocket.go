package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

const (
	readLimit          = 1 << 20
	readDeadline       = 120 * time.Second
	writeDeadline      = 5 * time.Second
	pingInterval       = 15 * time.Second
	firstHelloDeadline = 30 * time.Second
)

// StatusEvent is what the hub pushes when an application changes
// status.
type StatusEvent struct {
	ApplicationID string    `json:"application_id"`
	Status        string    `json:"status"`
	At            time.Time `json:"at"`
}

type wsClient struct {
	userID int
	conn   *websocket.Conn
}

type wsUnreg struct {
	userID int
	conn   *websocket.Conn
}

// StatusHub fans status events out to connected clients. All access to
// the client map happens in Run.
type StatusHub struct {
	clients    map[int]*websocket.Conn
	broadcast  chan StatusEvent
	register   chan wsClient
	unregister chan wsUnreg
	logger     *slog.Logger
}

func NewStatusHub(logger *slog.Logger) *StatusHub {
	return &StatusHub{
		clients:    make(map[int]*websocket.Conn),
		broadcast:  make(chan StatusEvent, 16),
		register:   make(chan wsClient),
		unregister: make(chan wsUnreg),
		logger:     logger,
	}
}

// BroadcastStatus implements services.StatusBroadcaster. Non-blocking:
// if the hub is saturated the event is dropped, the client can always
// re-read the application.
func (h *StatusHub) BroadcastStatus(appID models.ApplicationID, status string) {
	select {
	case h.broadcast <- StatusEvent{ApplicationID: appID.String(), Status: status, At: time.Now().UTC()}:
	default:
		h.logger.Warn("status event dropped, hub saturated")
	}
}

func (h *StatusHub) Run() {
	for {
		select {
		case client := <-h.register:
			if old, ok := h.clients[client.userID]; ok && old != nil && old != client.conn {
				_ = old.Close()
			}
			h.clients[client.userID] = client.conn
			h.logger.Info("ws register", "user_id", client.userID)

		case u := <-h.unregister:
			if cur, ok := h.clients[u.userID]; ok && cur == u.conn {
				_ = cur.Close()
				delete(h.clients, u.userID)
				h.logger.Info("ws unregister", "user_id", u.userID)
			}

		case event := <-h.broadcast:
			for id, conn := range h.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteJSON(event); err != nil {
					h.logger.Warn("ws write failed", "user_id", id, "err", err)
					_ = conn.Close()
					delete(h.clients, id)
				}
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// StatusSocketHandler upgrades the connection. The first frame must be
// { "userId": <int> }; after that the socket is write-only from the
// server side.
func (app *application) StatusSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.logger.Warn("ws upgrade failed", "err", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(firstHelloDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	var hello struct {
		UserID int `json:"userId"`
	}
	if err := conn.ReadJSON(&hello); err != nil || hello.UserID == 0 {
		_ = writeClose(conn, websocket.ClosePolicyViolation, "hello required")
		_ = conn.Close()
		return
	}
	conn.SetReadDeadline(time.Now().Add(readDeadline))

	app.hub.register <- wsClient{userID: hello.UserID, conn: conn}

	go app.pingLoop(conn, hello.UserID)
	go app.readLoop(conn, hello.UserID)
}

func (app *application) pingLoop(conn *websocket.Conn, uid int) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			_ = writeClose(conn, websocket.CloseGoingAway, "ping error")
			app.hub.unregister <- wsUnreg{userID: uid, conn: conn}
			return
		}
	}
}

// readLoop keeps the connection's read side alive for pongs and close
// frames; inbound frames carry no meaning on this socket.
func (app *application) readLoop(conn *websocket.Conn, uid int) {
	defer func() {
		app.hub.unregister <- wsUnreg{userID: uid, conn: conn}
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}
