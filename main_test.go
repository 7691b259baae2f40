package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"arena-server/internal/config"
	"arena-server/internal/protocol"
	"arena-server/internal/room"
	"arena-server/internal/telemetry"
)

func TestIPRateLimiterCooldown(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newIPRateLimiter(2 * time.Second)
	if !rl.allow("1.2.3.4", now) {
		t.Fatalf("first connection rejected")
	}
	if rl.allow("1.2.3.4", now.Add(time.Second)) {
		t.Fatalf("connection inside cooldown admitted")
	}
	if !rl.allow("5.6.7.8", now.Add(time.Second)) {
		t.Fatalf("other IP rejected")
	}
	if !rl.allow("1.2.3.4", now.Add(3*time.Second)) {
		t.Fatalf("connection after cooldown rejected")
	}
	rl.prune(now.Add(time.Hour))
	if len(rl.times) != 0 {
		t.Fatalf("stale entries kept: %d", len(rl.times))
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.RemoteAddr = "10.0.0.7:5555"
	if got := clientIP(r); got != "10.0.0.7" {
		t.Fatalf("clientIP = %q", got)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.9" {
		t.Fatalf("clientIP behind proxy = %q", got)
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *room.Manager) {
	t.Helper()
	cfg := config.Default()
	cfg.EnableAI = false
	cfg.IPCooldown = 0
	cfg.StaticDir = t.TempDir()
	logger := telemetry.Discard()

	opts := roomOptions(cfg, logger)
	opts.Reporter = nil
	m := room.NewManager(opts)
	ts := httptest.NewServer(newServer(cfg, m, logger).routes())
	t.Cleanup(func() {
		m.Close("test over")
		ts.Close()
	})
	return ts, m
}

func TestPingAndStatus(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/ping")
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Fatalf("ping body %q", body)
	}

	resp, err = http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	var st statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Rooms.Rooms != 0 || st.Connections != 0 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func readUntil(t *testing.T, ws *websocket.Conn, typ string) protocol.Envelope {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		mt, b, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("read waiting for %s: %v", typ, err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		env, err := protocol.DecodeEnvelope(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.T == typ {
			return env
		}
	}
}

func send(t *testing.T, ws *websocket.Conn, typ string, payload any) {
	t.Helper()
	b, err := protocol.Encode(typ, payload)
	if err != nil {
		t.Fatalf("encode %s: %v", typ, err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func TestWebSocketJoinAndCashOut(t *testing.T) {
	ts, m := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	send(t, ws, protocol.MsgJoinGame, protocol.JoinGame{GameMode: "Classic", Username: "alice", Wager: 25})
	joined, err := protocol.DecodePayload[protocol.GameJoined](readUntil(t, ws, protocol.MsgGameJoined))
	if err != nil {
		t.Fatalf("decode gameJoined: %v", err)
	}
	if joined.GameMode != protocol.ModeClassic || joined.PlayerID == "" {
		t.Fatalf("unexpected gameJoined %+v", joined)
	}
	if m.RoomOf(joined.PlayerID) == nil {
		t.Fatalf("player not registered with the manager")
	}

	send(t, ws, protocol.MsgJoinGame, protocol.JoinGame{GameMode: "classic", Username: "alice"})
	e, _ := protocol.DecodePayload[protocol.Error](readUntil(t, ws, protocol.MsgError))
	if e.Message != "already in a game" {
		t.Fatalf("second join error %q", e.Message)
	}

	send(t, ws, protocol.MsgCashOut, struct{}{})
	res, _ := protocol.DecodePayload[protocol.CashoutResult](readUntil(t, ws, protocol.MsgCashoutResult))
	// A coin picked up on the way in can make this a real profit.
	if !res.Success && res.Reason == "" {
		t.Fatalf("failed cash-out must carry a reason, got %+v", res)
	}
}

func TestWebSocketRejectsUnknownMode(t *testing.T) {
	ts, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	send(t, ws, protocol.MsgJoinGame, protocol.JoinGame{GameMode: "royale", Username: "bob"})
	e, _ := protocol.DecodePayload[protocol.Error](readUntil(t, ws, protocol.MsgError))
	if e.Message != "unknown game mode" {
		t.Fatalf("error %q", e.Message)
	}
}
