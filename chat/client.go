package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/extortion-watch/extortion-report-api/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound queue per connection.
	sendBufferSize = 256
)

// Client is one live websocket connection. A client is joined to at
// most one case room at a time; joining another case leaves the
// previous room first.
type Client struct {
	ID      string
	hub     *Hub
	conn    *websocket.Conn
	session models.Session

	send   chan []byte
	sendMu sync.Mutex
	closed bool
	room   *room
}

// NewClient wraps an upgraded connection for an authenticated session
func NewClient(hub *Hub, conn *websocket.Conn, sess models.Session) *Client {
	return &Client{
		ID:      uuid.New().String(),
		hub:     hub,
		conn:    conn,
		session: sess,
		send:    make(chan []byte, sendBufferSize),
	}
}

// ReadPump consumes events from the peer until the connection drops.
// It must run on the connection's serving goroutine; room membership
// transitions only ever happen here, so a client cannot race its own
// join/leave.
func (c *Client) ReadPump() {
	defer func() {
		c.leaveRoom()
		c.close()
		c.conn.Close()
		zap.S().Debugw("chat client disconnected", "clientID", c.ID)
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.S().Warnw("chat read error", "clientID", c.ID, "error", err)
			}
			break
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.sendEvent(Event{Event: EventError, Error: "malformed event"})
			continue
		}
		c.handleEvent(ev)
	}
}

func (c *Client) handleEvent(ev Event) {
	switch ev.Event {
	case EventJoinCase:
		if ev.CaseID == "" {
			c.sendEvent(Event{Event: EventError, Error: "joinCase requires a caseId"})
			return
		}
		c.joinCase(ev.CaseID)
	case EventSendMessage:
		if c.room == nil || c.room.caseID != ev.CaseID {
			c.sendEvent(Event{Event: EventError, CaseID: ev.CaseID, Error: "join the case room before sending"})
			return
		}
		if ev.Message == "" {
			c.sendEvent(Event{Event: EventError, CaseID: ev.CaseID, Error: "empty message"})
			return
		}
		c.room.send(c, c.session, ev.Message)
	case EventLeaveCase:
		c.leaveRoom()
	default:
		c.sendEvent(Event{Event: EventError, Error: "unknown event"})
	}
}

func (c *Client) joinCase(caseID string) {
	c.leaveRoom()
	r := c.hub.acquireRoom(caseID)
	c.room = r
	r.join(c)
	zap.S().Debugw("chat client joined case room", "clientID", c.ID, "caseID", caseID)
}

func (c *Client) leaveRoom() {
	if c.room == nil {
		return
	}
	r := c.room
	c.room = nil
	r.leave(c)
	c.hub.releaseRoom(r)
}

// sendEvent enqueues an event for the write pump. A peer that cannot
// drain its queue is cut off instead of stalling the room. The closed
// flag keeps a late room broadcast from hitting a closed channel.
func (c *Client) sendEvent(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		zap.S().Warnw("chat client send queue full, dropping client", "clientID", c.ID)
		c.closed = true
		close(c.send)
	}
}

func (c *Client) close() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WritePump writes queued events and keepalive pings to the peer
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
