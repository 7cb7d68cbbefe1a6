package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/boardhall/lobby-service/internal/domain"
	"github.com/boardhall/lobby-service/internal/notify"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type RoomGetter interface {
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
}

type TokenVerifier interface {
	UserIDFromToken(token string) (int64, error)
}

/*
Server — наблюдатели комнаты. Подключение только читает: посадка идёт
через HTTP, разрыв соединения состав комнаты не меняет. Каждый
подписчик получает текущий снапшот при подключении и далее по одному
на каждое изменение состава.
*/
type Server struct {
	upgrader websocket.Upgrader
	hub      *notify.Hub
	rooms    RoomGetter
	verifier TokenVerifier

	pingEvery time.Duration
}

func NewServer(hub *notify.Hub, rooms RoomGetter, verifier TokenVerifier) *Server {
	return &Server{
		hub:      hub,
		rooms:    rooms,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws/rooms/{id}?access_token=...
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("access_token"))
	if token == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return
	}
	uid, err := s.verifier.UserIDFromToken(token)
	if err != nil {
		http.Error(w, "invalid access_token", http.StatusUnauthorized)
		return
	}
	roomID := chi.URLParam(r, "id")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}

	// комната должна существовать до апгрейда
	room, err := s.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn)
	sub := s.hub.Subscribe(notify.Topic(roomID))
	defer func() {
		s.hub.Unsubscribe(sub)
		_ = c.Close()
	}()

	if err := c.Send(stateMessage(notify.SnapshotFromRoom(room))); err != nil {
		slog.Warn("ws send initial state failed", "room", roomID, "user", uid, "err", err)
		return
	}

	go s.readLoop(c)
	s.writeLoop(r.Context(), c, sub)

	slog.Debug("ws observer disconnected", "room", roomID, "user", uid)
}

// readLoop только поддерживает pong и замечает разрыв; входящие
// сообщения наблюдателей игнорируются.
func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(4 << 10)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn, sub *notify.Subscription) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			if err := c.Send(stateMessage(snap)); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

type wsConn struct {
	conn   *websocket.Conn
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}
