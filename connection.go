package main

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"arena-server/internal/protocol"
	"arena-server/internal/room"
	"arena-server/internal/telemetry"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	sendQueueSize  = 64
)

var (
	errConnClosed   = errors.New("connection closed")
	errSlowConsumer = errors.New("send queue full")
)

type frame struct {
	binary bool
	data   []byte
}

// Conn is one websocket player session. Rooms write through a bounded
// queue drained by writePump, so a slow client never blocks a room tick.
type Conn struct {
	ID string

	ws   *websocket.Conn
	send chan frame
	done chan struct{}
	log  telemetry.Logger

	closeOnce sync.Once
	joined    bool // read loop only
}

// NewConn wraps ws with a fresh player ID.
func NewConn(ws *websocket.Conn, logger telemetry.Logger) *Conn {
	return &Conn{
		ID:   uuid.NewString(),
		ws:   ws,
		send: make(chan frame, sendQueueSize),
		done: make(chan struct{}),
		log:  logger,
	}
}

// Send queues a text frame.
func (c *Conn) Send(b []byte) error {
	return c.enqueue(frame{data: b})
}

// SendBinary queues a binary frame.
func (c *Conn) SendBinary(b []byte) error {
	return c.enqueue(frame{binary: true, data: b})
}

func (c *Conn) enqueue(f frame) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}
	select {
	case c.send <- f:
		return nil
	default:
		return errSlowConsumer
	}
}

// Close stops the session. Queued frames are flushed before the socket
// closes.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// writePump is the only writer on the socket.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case f := <-c.send:
			if err := c.write(f); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.flush()
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Conn) write(f frame) error {
	typ := websocket.TextMessage
	if f.binary {
		typ = websocket.BinaryMessage
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(typ, f.data)
}

func (c *Conn) flush() {
	for {
		select {
		case f := <-c.send:
			if c.write(f) != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Conn) sendError(msg string) {
	b, err := protocol.Encode(protocol.MsgError, protocol.Error{Message: msg})
	if err != nil {
		return
	}
	_ = c.Send(b)
}

// ReadLoop handles incoming messages until the client disconnects, then
// takes the player out of its room.
func (c *Conn) ReadLoop(m *room.Manager) {
	defer func() {
		m.RemovePlayer(c.ID)
		c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Printf("ws read error for %s: %v", c.ID, err)
			}
			return
		}
		env, err := protocol.DecodeEnvelope(raw)
		if err != nil {
			c.log.Printf("bad message from %s: %v", c.ID, err)
			continue
		}
		c.handle(m, env)
	}
}

func (c *Conn) handle(m *room.Manager, env protocol.Envelope) {
	switch env.T {
	case protocol.MsgJoinGame:
		c.join(m, env)

	case protocol.MsgPlayerInput:
		in, err := protocol.DecodePayload[protocol.PlayerInput](env)
		if err != nil {
			return
		}
		if in, ok := protocol.SanitizeInput(in); ok {
			c.route(m, room.Input{PlayerID: c.ID, Input: in})
		}

	case protocol.MsgPlayerShoot:
		s, err := protocol.DecodePayload[protocol.PlayerShoot](env)
		if err != nil {
			return
		}
		if s, ok := protocol.SanitizeShoot(s); ok {
			c.route(m, room.Shoot{PlayerID: c.ID, TargetX: s.TargetX, TargetY: s.TargetY})
		}

	case protocol.MsgSwitchWeapon:
		sw, err := protocol.DecodePayload[protocol.SwitchWeapon](env)
		if err != nil {
			return
		}
		c.route(m, room.Switch{PlayerID: c.ID, Slot: sw.Slot})

	case protocol.MsgCashOut:
		c.route(m, room.CashOut{PlayerID: c.ID})

	case protocol.MsgRespawn:
		c.route(m, room.Respawn{PlayerID: c.ID})

	case protocol.MsgChat:
		msg, err := protocol.DecodePayload[protocol.ChatMessage](env)
		if err != nil {
			return
		}
		if msg, ok := protocol.SanitizeChat(msg); ok {
			c.route(m, room.Chat{PlayerID: c.ID, Message: msg})
		}

	default:
		c.log.Printf("unknown message %q from %s", env.T, c.ID)
	}
}

func (c *Conn) join(m *room.Manager, env protocol.Envelope) {
	if c.joined {
		c.sendError("already in a game")
		return
	}
	req, err := protocol.DecodePayload[protocol.JoinGame](env)
	if err != nil {
		c.sendError("malformed joinGame")
		return
	}
	req, ok := protocol.SanitizeJoin(req)
	if !ok {
		c.sendError("unknown game mode")
		return
	}
	r, err := m.Join(req.GameMode, c.ID, c, req)
	if err != nil {
		c.log.Printf("join failed for %s: %v", c.ID, err)
		c.sendError(err.Error())
		return
	}
	c.joined = true
	c.log.Printf("player %s (%s) joined room %s", req.Username, c.ID, r.ID)
}

// route forwards a command. Commands sent outside a room are dropped, and
// a session whose room went away may join again.
func (c *Conn) route(m *room.Manager, cmd any) {
	if err := m.Route(c.ID, cmd); err != nil {
		c.joined = false
	}
}
