package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

// Жизненный цикл соединения: Connecting (хендшейк с bearer-токеном) →
// Open (токен проверен, пользователь записан в реестр) → Joined (клиент
// явно вошёл в свою комнату) → Closed. Вход в чужую комнату — нарушение
// протокола, соединение рвётся.
const (
	// клиент → сервер
	eventJoinRoom = "join-user-room"
	// сервер → клиент
	eventNotification = "notification"
)

type wsMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 45 * time.Second
	maxMessageSize = 512
	sendBuffer     = 16
)

type client struct {
	id     string
	userID domain.UserID
	conn   *websocket.Conn
	send   chan []byte
	joined atomic.Bool

	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// Hub — fan-out канал уведомлений поверх websocket.
// Диспетчеру доступны только EmitToUser/IsOnline; транспорт — деталь.
type Hub struct {
	log      *log.Logger
	tokens   domain.TokenManager
	registry *Registry

	mu      sync.RWMutex
	clients map[string]*client // по connection id

	upgrader websocket.Upgrader
}

func NewHub(logger *log.Logger, tokens domain.TokenManager, registry *Registry) *Hub {
	return &Hub{
		log:      logger,
		tokens:   tokens,
		registry: registry,
		clients:  make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// браузерный клиент ходит с другого origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleWS — GET /ws. Токен приходит в хендшейке (query ?token= или
// Authorization: Bearer), не в сообщении; без валидного токена
// соединение не открывается вовсе.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	raw := tokenFromHandshake(r)
	if raw == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.tokens.Parse(r.Context(), raw)
	if err != nil {
		h.log.Printf("handshake rejected: %v", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Printf("upgrade failed: %v", err)
		return
	}

	c := &client{
		id:     uuid.NewString(),
		userID: claims.UserID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.registry.Put(c.userID, c.id)

	h.log.Printf("connected user=%d conn=%s", c.userID, c.id)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg wsMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Printf("read error user=%d conn=%s: %v", c.userID, c.id, err)
			}
			return
		}

		switch msg.Event {
		case eventJoinRoom:
			var roomUser domain.UserID
			if err := json.Unmarshal(msg.Data, &roomUser); err != nil {
				h.log.Printf("bad join payload user=%d conn=%s: %v", c.userID, c.id, err)
				return
			}
			// комната должна принадлежать аутентифицированному пользователю:
			// чужая — разрыв (ни подмены, ни подслушивания)
			if roomUser != c.userID {
				h.log.Printf("room mismatch: conn=%s auth_user=%d requested=%d, closing",
					c.id, c.userID, roomUser)
				return
			}
			c.joined.Store(true)
			h.log.Printf("joined room user=%d conn=%s", c.userID, c.id)
		default:
			h.log.Printf("unknown event %q user=%d conn=%s", msg.Event, c.userID, c.id)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drop переводит соединение в Closed: снимает присутствие (не трогая
// запись более нового соединения) и закрывает сокет.
func (h *Hub) drop(c *client) {
	h.registry.Remove(c.userID, c.id)

	// закрытие канала — под тем же локом, под которым шлёт EmitToUser:
	// иначе возможна отправка в закрытый канал
	h.mu.Lock()
	delete(h.clients, c.id)
	c.close()
	h.mu.Unlock()

	h.log.Printf("disconnected user=%d conn=%s", c.userID, c.id)
}

// EmitToUser толкает payload в комнату пользователя. false — никто не
// в комнате или очередь соединения переполнена; это не ошибка,
// доставка best-effort.
func (h *Hub) EmitToUser(user domain.UserID, payload any) bool {
	connID, ok := h.registry.ConnID(user)
	if !ok {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	c := h.clients[connID]
	if c == nil || !c.joined.Load() {
		return false
	}

	b, err := json.Marshal(outMessage{Event: eventNotification, Data: payload})
	if err != nil {
		h.log.Printf("marshal payload user=%d: %v", user, err)
		return false
	}

	select {
	case c.send <- b:
		return true
	default:
		h.log.Printf("send buffer full user=%d conn=%s, dropping", user, c.id)
		return false
	}
}

func (h *Hub) IsOnline(user domain.UserID) bool {
	_, ok := h.registry.ConnID(user)
	return ok
}

type Stats struct {
	ConnectedUsers int `json:"connectedUsers"`
	TotalRooms     int `json:"totalRooms"`
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms := 0
	for _, c := range h.clients {
		if c.joined.Load() {
			rooms++
		}
	}
	return Stats{ConnectedUsers: h.registry.Count(), TotalRooms: rooms}
}

// Close рвёт все соединения (на shutdown).
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.drop(c)
	}
}

func tokenFromHandshake(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
