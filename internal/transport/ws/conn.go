package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/medportal-notify/internal/domain"
	"github.com/medportal-notify/internal/realtime"
)

// conn is one attached WebSocket. Writes go through a bounded buffer
// drained by writePump; a full buffer drops the event.
type conn struct {
	id   string
	ws   *websocket.Conn
	send chan realtime.Event

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(id string, ws *websocket.Conn) *conn {
	return &conn{
		id:   id,
		ws:   ws,
		send: make(chan realtime.Event, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *conn) ID() string { return c.id }

func (c *conn) Send(ev realtime.Event) error {
	select {
	case <-c.done:
		return fmt.Errorf("channel %s closed: %w", c.id, domain.ErrDelivery)
	default:
	}
	select {
	case c.send <- ev:
		return nil
	default:
		return fmt.Errorf("channel %s send buffer full: %w", c.id, domain.ErrDelivery)
	}
}

func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

func (c *conn) readPump(hub *realtime.Hub) {
	defer func() {
		hub.Detach(c.id)
		_ = c.Close()
		slog.Info("channel detached", "channel_id", c.id)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := c.ws.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				slog.Warn("ignoring malformed frame", "channel_id", c.id, "err", err)
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("channel read error", "channel_id", c.id, "err", err)
			}
			return
		}
		c.handle(hub, msg)
	}
}

func (c *conn) handle(hub *realtime.Hub, msg inbound) {
	switch msg.Event {
	case eventRegister:
		var userID string
		if err := json.Unmarshal(msg.Data, &userID); err != nil {
			slog.Warn("register frame without a user id", "channel_id", c.id, "err", err)
			return
		}
		if err := hub.Register(userID, c.id); err != nil {
			slog.Warn("register failed", "channel_id", c.id, "err", err)
		}
	default:
		slog.Debug("ignoring unknown event", "channel_id", c.id, "event", msg.Event)
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(ev); err != nil {
				slog.Warn("channel write failed", "channel_id", c.id, "err", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
