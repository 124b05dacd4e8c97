package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lucasvnborges/turborepo-todo/internal/auth/token"
	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

func newTestHub(t *testing.T) (*Hub, *token.Manager, *httptest.Server) {
	t.Helper()

	tm := token.New("test-secret", "test", time.Hour)
	hub := NewHub(log.New(io.Discard, "", 0), tm, NewRegistry())

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, tm, srv
}

func wsURL(srv *httptest.Server, rawToken string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + rawToken
}

func dial(t *testing.T, srv *httptest.Server, tm *token.Manager, user domain.UserID) *websocket.Conn {
	t.Helper()

	tok, _, err := tm.Issue(context.Background(), user, fmt.Sprintf("u%d@example.com", user))
	if err != nil {
		t.Fatal(err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, tok), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func join(t *testing.T, conn *websocket.Conn, user domain.UserID) {
	t.Helper()
	msg := fmt.Sprintf(`{"event":"join-user-room","data":%d}`, user)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("join: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	_, _, srv := newTestHub(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "not-a-jwt"), nil)
	if err == nil {
		t.Fatal("dial with a bogus token must fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	_, _, srv := newTestHub(t)

	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatal("dial without token must fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}

func TestJoinAndReceive(t *testing.T) {
	hub, tm, srv := newTestHub(t)

	conn := dial(t, srv, tm, 1)
	if !waitFor(t, func() bool { return hub.IsOnline(1) }) {
		t.Fatal("user 1 never showed up in the registry")
	}

	// до входа в комнату доставки нет
	if hub.EmitToUser(1, map[string]any{"x": 1}) {
		t.Fatal("emit before join must not deliver")
	}

	join(t, conn, 1)
	payload := map[string]any{
		"todoId":  float64(42),
		"type":    "TODO_CREATED",
		"title":   "New task created",
		"message": `Your task "Buy milk" was created successfully!`,
	}
	if !waitFor(t, func() bool { return hub.EmitToUser(1, payload) }) {
		t.Fatal("emit after join must deliver")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	if got.Event != "notification" {
		t.Fatalf("event = %q, want notification", got.Event)
	}
	if got.Data["todoId"] != float64(42) || got.Data["type"] != "TODO_CREATED" {
		t.Fatalf("unexpected payload: %v", got.Data)
	}
}

func TestEmitOfflineReturnsFalse(t *testing.T) {
	hub, _, _ := newTestHub(t)

	if hub.EmitToUser(99, map[string]any{}) {
		t.Fatal("emit to an offline user must return false")
	}
	if hub.IsOnline(99) {
		t.Fatal("nobody connected, IsOnline must be false")
	}
}

func TestJoinMismatchDisconnects(t *testing.T) {
	hub, tm, srv := newTestHub(t)

	conn := dial(t, srv, tm, 1)
	if !waitFor(t, func() bool { return hub.IsOnline(1) }) {
		t.Fatal("user 1 never showed up in the registry")
	}

	// попытка войти в чужую комнату — сервер рвёт соединение
	join(t, conn, 2)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection must be closed after a room mismatch")
	}
	if !waitFor(t, func() bool { return !hub.IsOnline(1) }) {
		t.Fatal("presence entry must be removed after the disconnect")
	}
}

// Уведомление пользователя 1 не должно дойти до комнаты пользователя 2.
func TestRoomIsolation(t *testing.T) {
	hub, tm, srv := newTestHub(t)

	conn2 := dial(t, srv, tm, 2)
	join(t, conn2, 2)
	if !waitFor(t, func() bool { return hub.Stats().TotalRooms == 1 }) {
		t.Fatal("user 2 never joined its room")
	}

	if hub.EmitToUser(1, map[string]any{"type": "TODO_CREATED"}) {
		t.Fatal("user 1 has no connection, emit must return false")
	}

	// и на сокет пользователя 2 ничего не приходит
	_ = conn2.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn2.ReadMessage(); err == nil {
		t.Fatal("user 2 must not receive user 1's notification")
	}
}

func TestLastConnectionWins(t *testing.T) {
	hub, tm, srv := newTestHub(t)

	old := dial(t, srv, tm, 1)
	join(t, old, 1)
	if !waitFor(t, func() bool { return hub.EmitToUser(1, map[string]any{"n": 1}) }) {
		t.Fatal("first connection never became deliverable")
	}

	// второй хендшейк того же пользователя перетирает запись присутствия
	fresh := dial(t, srv, tm, 1)
	join(t, fresh, 1)
	if !waitFor(t, func() bool { return hub.EmitToUser(1, map[string]any{"n": 2}) }) {
		t.Fatal("second connection never became deliverable")
	}

	_ = fresh.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := fresh.ReadMessage(); err != nil {
		t.Fatalf("fresh connection must receive: %v", err)
	}
}

func TestStats(t *testing.T) {
	hub, tm, srv := newTestHub(t)

	s := hub.Stats()
	if s.ConnectedUsers != 0 || s.TotalRooms != 0 {
		t.Fatalf("empty hub stats: %+v", s)
	}

	conn := dial(t, srv, tm, 1)
	if !waitFor(t, func() bool { return hub.Stats().ConnectedUsers == 1 }) {
		t.Fatal("connected user not counted")
	}
	if hub.Stats().TotalRooms != 0 {
		t.Fatal("room counted before join")
	}

	join(t, conn, 1)
	if !waitFor(t, func() bool { return hub.Stats().TotalRooms == 1 }) {
		t.Fatal("joined room not counted")
	}
}
